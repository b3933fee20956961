package db

import (
	"context"
	"time"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// Exporter stores finished graphs as immutable snapshots. Snapshots are an
// archive for external tools; nothing in this module reads them back.
type Exporter interface {
	ExportGraph(ctx context.Context, g *metro.Graph, builtAt time.Time) (string, error)
	Cleanup(ctx context.Context, keep int) error
	Close() error
}

// Snapshot is the header row of an exported graph
type Snapshot struct {
	ID              string
	BuiltAt         time.Time
	NodeCount       int
	EdgeCount       int
	StationCount    int
	AccessCount     int
	UnresolvedCount int
}

// Open returns the configured exporter with its schema ensured: PostgreSQL when
// databaseURL is set, otherwise SQLite when sqlitePath is set. It returns nil and
// no error when neither is configured.
func Open(ctx context.Context, sqlitePath, databaseURL string) (Exporter, error) {
	switch {
	case databaseURL != "":
		pg, err := ConnectPostgres(ctx, databaseURL)
		if err != nil {
			return nil, err
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return pg, nil
	case sqlitePath != "":
		db, err := Connect(ctx, sqlitePath)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}
	return nil, nil
}

var nodeColumns = []string{
	"snapshot_id", "node_id", "node_key", "kind", "name", "station_name", "line",
	"station_order", "accessibility", "x", "y", "color",
}

var edgeColumns = []string{"snapshot_id", "from_id", "to_id", "kind", "line"}

func snapshotOf(id string, g *metro.Graph, builtAt time.Time) Snapshot {
	return Snapshot{
		ID:              id,
		BuiltAt:         builtAt.UTC(),
		NodeCount:       g.Len(),
		EdgeCount:       g.EdgeCount(),
		StationCount:    g.StationCount(),
		AccessCount:     g.AccessCount(),
		UnresolvedCount: len(g.Unresolved()),
	}
}

// nodeRows flattens nodes in id order, matching nodeColumns.
func nodeRows(id string, g *metro.Graph) [][]any {
	nodes := g.Nodes()
	rows := make([][]any, 0, len(nodes))
	for _, n := range nodes {
		var order, accessibility any
		if n.Kind == metro.KindStation {
			order = int64(n.Order)
		} else {
			accessibility = n.Accessibility
		}
		rows = append(rows, []any{
			id, n.ID(), n.Key(), n.Kind.String(), n.Name, n.StationName, n.Line,
			order, accessibility, n.Position.X(), n.Position.Y(), n.Color,
		})
	}
	return rows
}

// edgeRows flattens edges with the lower id first, matching edgeColumns.
func edgeRows(id string, g *metro.Graph) [][]any {
	edges := g.Edges()
	rows := make([][]any, 0, len(edges))
	for _, e := range edges {
		rows = append(rows, []any{id, e.F.ID(), e.T.ID(), e.Kind.String(), e.Line})
	}
	return rows
}

// builtAtLayout is fixed width so built_at_utc sorts chronologically as text
const builtAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(builtAtLayout)
}
