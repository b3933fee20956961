package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/mini-rodalies-3d/metrograph/internal/config"
	"github.com/mini-rodalies-3d/metrograph/internal/handlers"
	"github.com/mini-rodalies-3d/metrograph/internal/metrics"
	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
)

func main() {
	// Load base .env first, then .env.local (which overrides for local development)
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	log.Printf("Building metro graph from %s and %s", cfg.StationsSource, cfg.AccessesSource)
	res, err := pipeline.Build(context.Background(), cfg, m)
	if err != nil {
		log.Fatalf("Failed to build metro graph: %v", err)
	}
	log.Printf("Metro graph ready: %d nodes, %d edges", res.Graph.Len(), res.Graph.EdgeCount())

	r := handlers.NewRouter(res, m, reg, cfg.AllowedOrigins)

	log.Printf("API server starting on :%s", cfg.Port)
	log.Println("Graph endpoints:")
	log.Println("  GET /api/graph")
	log.Println("  GET /api/graph/stats")
	log.Println("  GET /api/graph.geojson")
	log.Println("  GET /api/graph.dot")
	log.Println("Station endpoints:")
	log.Println("  GET /api/stations/{name}")
	log.Println("  GET /api/lines/{lineCode}")
	log.Println("Health:")
	log.Println("  GET /health")
	log.Println("  GET /metrics")

	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
