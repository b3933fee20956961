// Package pipeline runs one complete build: resolve the datasets, load both
// record files, assemble the graph and summarise it.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mini-rodalies-3d/metrograph/internal/config"
	"github.com/mini-rodalies-3d/metrograph/internal/metrics"
	"github.com/mini-rodalies-3d/metrograph/internal/metro"
	"github.com/mini-rodalies-3d/metrograph/internal/record"
	"github.com/mini-rodalies-3d/metrograph/internal/source"
)

// fetchTimeout bounds dataset resolution, downloads included
const fetchTimeout = 2 * time.Minute

// Result is a finished build
type Result struct {
	Graph        *metro.Graph
	Stats        metro.Stats
	BuiltAt      time.Time
	Duration     time.Duration
	StationsPath string
	AccessesPath string
}

// Build runs the whole pipeline once. m may be nil. Any error aborts the build
// and no graph is returned.
func Build(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Result, error) {
	started := time.Now()
	res, err := build(ctx, cfg)
	if m != nil {
		var nodes, edges int
		if res != nil {
			nodes, edges = res.Graph.Len(), res.Graph.EdgeCount()
		}
		m.ObserveBuild(started, nodes, edges, err)
	}
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(started)
	if cfg.Verbose {
		log.Printf("Pipeline: built graph in %v", res.Duration)
	}
	return res, nil
}

func build(ctx context.Context, cfg *config.Config) (*Result, error) {
	color, err := cfg.Colorer()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.BuildOptions()
	if err != nil {
		return nil, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	fetcher := source.NewFetcher(cfg.CacheDir, cfg.SourceMaxAge, cfg.SourceAuth())
	stationsPath, err := fetcher.Resolve(fetchCtx, cfg.StationsSource)
	if err != nil {
		return nil, err
	}
	accessesPath, err := fetcher.Resolve(fetchCtx, cfg.AccessesSource)
	if err != nil {
		return nil, err
	}

	stations, err := record.LoadStations(stationsPath, color)
	if err != nil {
		return nil, fmt.Errorf("failed to load stations: %w", err)
	}
	accesses, err := record.LoadAccesses(accessesPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load accesses: %w", err)
	}

	g, err := metro.Build(stations, accesses, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph: %w", err)
	}

	stats := metro.Summarize(g)
	log.Printf("Pipeline: %d nodes (%d stations, %d accesses), %d edges, %d lines",
		stats.Nodes, stats.Stations, stats.Accesses, stats.Edges, len(stats.Lines))
	if stats.IsolatedAccesses > 0 {
		log.Printf("Pipeline: warning: %d accesses have no station", stats.IsolatedAccesses)
	}

	return &Result{
		Graph:        g,
		Stats:        stats,
		BuiltAt:      time.Now().UTC(),
		StationsPath: stationsPath,
		AccessesPath: accessesPath,
	}, nil
}
