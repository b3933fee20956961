package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mini-rodalies-3d/metrograph/internal/config"
	"github.com/mini-rodalies-3d/metrograph/internal/db"
	"github.com/mini-rodalies-3d/metrograph/internal/pipeline"
)

const exportTimeout = time.Minute

func main() {
	// Base .env first, then .env.local which overrides it for local development
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	cfg := config.Load()

	output := flag.String("o", cfg.Output, "Output file; format from extension (png, svg, dot, geojson, pb)")
	stations := flag.String("stations", cfg.StationsSource, "Stations dataset: local path or http(s) URL")
	accesses := flag.String("accesses", cfg.AccessesSource, "Accesses dataset: local path or http(s) URL")
	dbPath := flag.String("db", cfg.SQLiteDatabase, "SQLite database to export the graph snapshot into (optional)")
	printStats := flag.Bool("stats", false, "Print graph statistics as JSON to stdout")
	verbose := flag.Bool("v", cfg.Verbose, "Verbose logging")
	flag.Parse()

	cfg.Output = *output
	cfg.StationsSource = *stations
	cfg.AccessesSource = *accesses
	cfg.SQLiteDatabase = *dbPath
	cfg.Verbose = *verbose

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.Verbose {
		log.Printf("Config loaded: stations=%s accesses=%s scheme=%s adjacency=%s unresolved=%s",
			cfg.StationsSource, cfg.AccessesSource, cfg.ColorScheme, cfg.Adjacency, cfg.UnresolvedPolicy)
	}

	ctx := context.Background()

	res, err := pipeline.Build(ctx, cfg, nil)
	if err != nil {
		log.Fatalf("Failed to build metro graph: %v", err)
	}

	if cfg.Output != "" {
		if err := cfg.RenderOptions().RenderFile(cfg.Output, res.Graph); err != nil {
			log.Fatalf("Failed to render graph: %v", err)
		}
	}

	if *printStats {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Stats); err != nil {
			log.Fatalf("Failed to write stats: %v", err)
		}
	}

	if err := export(ctx, cfg, res); err != nil {
		log.Fatalf("Failed to export snapshot: %v", err)
	}
}

// export stores the graph when a database is configured and prunes old snapshots
func export(ctx context.Context, cfg *config.Config, res *pipeline.Result) error {
	ctx, cancel := context.WithTimeout(ctx, exportTimeout)
	defer cancel()

	exporter, err := db.Open(ctx, cfg.SQLiteDatabase, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if exporter == nil {
		return nil
	}
	defer exporter.Close()

	snapshotID, err := exporter.ExportGraph(ctx, res.Graph, res.BuiltAt)
	if err != nil {
		return err
	}
	log.Printf("Exported snapshot %s (%d nodes, %d edges)", snapshotID, res.Graph.Len(), res.Graph.EdgeCount())

	return exporter.Cleanup(ctx, cfg.SnapshotRetention)
}
