package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/paulmach/orb/geojson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mini-rodalies-3d/metrograph/internal/metrics"
	"github.com/mini-rodalies-3d/metrograph/internal/metro"
	"github.com/mini-rodalies-3d/metrograph/internal/models"
	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
)

func testServer(t *testing.T) (*httptest.Server, *metrics.Metrics) {
	t.Helper()
	stations := []metro.Station{
		{Name: "Passeig de Gràcia", Line: "L2", Order: 1, Position: metro.Position{2.1649, 41.3917}, Color: "#9B3A97"},
		{Name: "Universitat", Line: "L2", Order: 2, Position: metro.Position{2.1636, 41.3853}, Color: "#9B3A97"},
		{Name: "Passeig de Gràcia", Line: "L3", Order: 1, Position: metro.Position{2.1655, 41.3920}, Color: "#1EB53A"},
		{Name: "Passeig de Gràcia", Line: "L4", Order: 1, Position: metro.Position{2.1670, 41.3925}, Color: "#F9B233"},
	}
	accesses := []metro.Access{
		{Name: "Aragó", StationName: "Passeig de Gràcia", Line: "L3", Accessibility: "Accessible", Position: metro.Position{2.165, 41.3915}, Color: metro.AccessColor},
	}
	g, err := metro.Build(stations, accesses, metro.Options{})
	require.NoError(t, err)

	res := &pipeline.Result{
		Graph:   g,
		Stats:   metro.Summarize(g),
		BuiltAt: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	srv := httptest.NewServer(NewRouter(res, m, reg, []string{"http://localhost:5173"}))
	t.Cleanup(srv.Close)
	return srv, m
}

func get(t *testing.T, srv *httptest.Server, path string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealth(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var h HealthResponse
	require.NoError(t, json.Unmarshal(body, &h))
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, 5, h.Nodes)
	assert.Equal(t, 4, h.Edges) // L2 0-1, plus the access to stations 0, 2 and 3
}

func TestGetGraph(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/graph")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var g models.Graph
	require.NoError(t, json.Unmarshal(body, &g))
	assert.Equal(t, 5, g.NodeCount)
	require.Len(t, g.Nodes, 5)
	assert.Equal(t, "Aragó#0", g.Nodes[4].Key)
	assert.Equal(t, "access", g.Nodes[4].Kind)
	assert.Nil(t, g.Nodes[4].Order)
	require.NotNil(t, g.Nodes[0].Order)
	assert.Equal(t, 1, *g.Nodes[0].Order)

	assert.Equal(t, models.Edge{From: 0, To: 1, Kind: "line", Line: "L2"}, g.Edges[0])
	for _, e := range g.Edges {
		assert.Less(t, e.From, e.To)
	}
}

func TestGetStats(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/graph/stats")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s metro.Stats
	require.NoError(t, json.Unmarshal(body, &s))
	assert.Equal(t, 4, s.Stations)
	assert.Equal(t, 1, s.Accesses)
	assert.Equal(t, 1, s.LineEdges)
	assert.Equal(t, 3, s.AccessEdges)
}

func TestGetGeoJSON(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/graph.geojson")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/geo+json", resp.Header.Get("Content-Type"))

	fc, err := geojson.UnmarshalFeatureCollection(body)
	require.NoError(t, err)
	assert.Len(t, fc.Features, 5+4)
}

func TestGetDOT(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/graph.dot")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(string(body), "strict graph metro {"))
}

func TestGetStationsByName(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/stations/"+url.PathEscape("Passeig de Gràcia"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sr models.StationsResponse
	require.NoError(t, json.Unmarshal(body, &sr))
	assert.Equal(t, 3, sr.Count)
	var lines []string
	for _, n := range sr.Stations {
		lines = append(lines, n.Line)
	}
	assert.Equal(t, []string{"L2", "L3", "L4"}, lines)

	resp, body = get(t, srv, "/api/stations/Fontana")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	var er ErrorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, "Station not found", er.Error)
}

func TestURLParamDecodesOnce(t *testing.T) {
	tests := []struct {
		name   string
		target string
		param  string
		want   string
	}{
		{name: "plain", target: "/api/stations/Fontana", param: "Fontana", want: "Fontana"},
		{name: "literal percent sequence", target: "/api/stations/A%2520B", param: "A%20B", want: "A%20B"},
		{name: "escaped slash", target: "/api/stations/a%2Fb", param: "a%2Fb", want: "a/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", tt.param)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			assert.Equal(t, tt.want, urlParam(req, "name"))
		})
	}
}

func TestGetLineStations(t *testing.T) {
	srv, _ := testServer(t)

	resp, body := get(t, srv, "/api/lines/L2")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sr models.StationsResponse
	require.NoError(t, json.Unmarshal(body, &sr))
	require.Equal(t, 2, sr.Count)
	assert.Equal(t, "Passeig de Gràcia", sr.Stations[0].Name)
	assert.Equal(t, "Universitat", sr.Stations[1].Name)

	resp, _ = get(t, srv, "/api/lines/L9S")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRequestsAreCounted(t *testing.T) {
	srv, m := testServer(t)

	get(t, srv, "/api/lines/L2")
	get(t, srv, "/api/lines/L2")
	get(t, srv, "/api/lines/L9S")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/lines/{lineCode}", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/lines/{lineCode}", "404")))

	resp, body := get(t, srv, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "metrograph_http_requests_total")
}

func TestCORS(t *testing.T) {
	srv, _ := testServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/graph/stats", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}
