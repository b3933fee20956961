package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/mini-rodalies-3d/metrograph/internal/models"
	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
	"github.com/mini-rodalies-3d/metrograph/internal/render"
)

// ErrorResponse is the JSON body of every non-2xx response
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// GraphHandler serves the graph built at startup. The graph is immutable, so
// handlers share it without locking.
type GraphHandler struct {
	res *pipeline.Result
}

// NewGraphHandler creates a new handler for a finished build
func NewGraphHandler(res *pipeline.Result) *GraphHandler {
	return &GraphHandler{res: res}
}

// GetGraph handles GET /api/graph
func (h *GraphHandler) GetGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.GraphFrom(h.res.Graph, h.res.BuiltAt))
}

// GetStats handles GET /api/graph/stats
func (h *GraphHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.res.Stats)
}

// GetGeoJSON handles GET /api/graph.geojson
func (h *GraphHandler) GetGeoJSON(w http.ResponseWriter, r *http.Request) {
	h.writeRendered(w, render.FormatGeoJSON, "application/geo+json")
}

// GetDOT handles GET /api/graph.dot
func (h *GraphHandler) GetDOT(w http.ResponseWriter, r *http.Request) {
	h.writeRendered(w, render.FormatDOT, "text/vnd.graphviz; charset=utf-8")
}

// GetStationsByName handles GET /api/stations/{name}
// Returns one node per line serving the named station.
func (h *GraphHandler) GetStationsByName(w http.ResponseWriter, r *http.Request) {
	name := urlParam(r, "name")
	if name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "name parameter is required"})
		return
	}

	nodes := h.res.Graph.StationsNamed(name)
	if len(nodes) == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "Station not found",
			Details: map[string]interface{}{"name": name},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.StationsResponse{
		Stations: models.NodesFrom(nodes),
		Count:    len(nodes),
	})
}

// GetLineStations handles GET /api/lines/{lineCode}
// Returns the stations of a line in id order.
func (h *GraphHandler) GetLineStations(w http.ResponseWriter, r *http.Request) {
	lineCode := urlParam(r, "lineCode")
	if lineCode == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "lineCode parameter is required"})
		return
	}

	nodes := h.res.Graph.LineStations(lineCode)
	if len(nodes) == 0 {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "Line not found",
			Details: map[string]interface{}{"lineCode": lineCode, "lines": h.res.Graph.Lines()},
		})
		return
	}

	writeJSON(w, http.StatusOK, models.StationsResponse{
		Stations: models.NodesFrom(nodes),
		Count:    len(nodes),
	})
}

func (h *GraphHandler) writeRendered(w http.ResponseWriter, format render.Format, contentType string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	if err := render.Render(w, format, h.res.Graph); err != nil {
		// Headers are already out; all we can do is log.
		log.Printf("Handlers: failed to render %s: %v", format, err)
	}
}

// urlParam returns a decoded path parameter. chi matches against RawPath when the
// request has one, and only then is the parameter still escaped.
func urlParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return v
	}
	if unescaped, err := url.PathUnescape(v); err == nil {
		return unescaped
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Handlers: failed to encode response: %v", err)
	}
}
