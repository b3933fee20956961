package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mini-rodalies-3d/metrograph/internal/metrics"
	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
)

// NewRouter wires every API route for a finished build
func NewRouter(res *pipeline.Result, m *metrics.Metrics, gatherer prometheus.Gatherer, allowedOrigins []string) http.Handler {
	graphHandler := NewGraphHandler(res)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))
	r.Use(CountRequests(m))

	r.Get("/health", Health(res))

	r.Get("/api/graph", graphHandler.GetGraph)
	r.Get("/api/graph/stats", graphHandler.GetStats)
	r.Get("/api/graph.geojson", graphHandler.GetGeoJSON)
	r.Get("/api/graph.dot", graphHandler.GetDOT)
	r.Get("/api/stations/{name}", graphHandler.GetStationsByName)
	r.Get("/api/lines/{lineCode}", graphHandler.GetLineStations)

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}
