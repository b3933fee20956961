package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// PostgresDB exports snapshots to PostgreSQL using COPY for node and edge rows
type PostgresDB struct {
	pool *pgxpool.Pool
}

// ConnectPostgres opens a pool and verifies connectivity
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresDB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Connected to PostgreSQL database")
	return &PostgresDB{pool: pool}, nil
}

// Close releases the pool
func (p *PostgresDB) Close() error {
	p.pool.Close()
	return nil
}

// EnsureSchema creates the snapshot tables if they don't exist.
func (p *PostgresDB) EnsureSchema(ctx context.Context) error {
	// No arguments: pgx sends this over the simple protocol, which accepts
	// multiple statements.
	if _, err := p.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	log.Println("Database schema ensured (from embedded schema.sql)")
	return nil
}

// ExportGraph writes g as a new snapshot in one transaction and returns its ID
func (p *PostgresDB) ExportGraph(ctx context.Context, g *metro.Graph, builtAt time.Time) (string, error) {
	snapshotID := uuid.New().String()
	snap := snapshotOf(snapshotID, g, builtAt)

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO graph_snapshots (snapshot_id, built_at_utc, node_count, edge_count,
			station_count, access_count, unresolved_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, snap.ID, formatTime(snap.BuiltAt), int64(snap.NodeCount), int64(snap.EdgeCount),
		int64(snap.StationCount), int64(snap.AccessCount), int64(snap.UnresolvedCount))
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"graph_nodes"}, nodeColumns, pgx.CopyFromRows(nodeRows(snapshotID, g))); err != nil {
		return "", fmt.Errorf("failed to copy graph_nodes: %w", err)
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"graph_edges"}, edgeColumns, pgx.CopyFromRows(edgeRows(snapshotID, g))); err != nil {
		return "", fmt.Errorf("failed to copy graph_edges: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

// Cleanup deletes every snapshot except the newest keep. keep < 1 is treated as 1.
func (p *PostgresDB) Cleanup(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stale := `
		SELECT snapshot_id FROM graph_snapshots
		ORDER BY built_at_utc DESC, snapshot_id
		OFFSET $1
	`
	var deleted int64
	for _, table := range []string{"graph_edges", "graph_nodes", "graph_snapshots"} {
		tag, err := tx.Exec(ctx, "DELETE FROM "+table+" WHERE snapshot_id IN ("+stale+")", keep)
		if err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", table, err)
		}
		if table == "graph_snapshots" {
			deleted = tag.RowsAffected()
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if deleted > 0 {
		log.Printf("Cleanup: deleted %d snapshots, kept newest %d", deleted, keep)
	}
	return nil
}

// ListSnapshots returns snapshot headers, newest first
func (p *PostgresDB) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT snapshot_id, built_at_utc, node_count, edge_count,
			station_count, access_count, unresolved_count
		FROM graph_snapshots
		ORDER BY built_at_utc DESC, snapshot_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var builtAt string
		var nodes, edges, stations, accesses, unresolved int64
		if err := rows.Scan(&s.ID, &builtAt, &nodes, &edges, &stations, &accesses, &unresolved); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.NodeCount, s.EdgeCount = int(nodes), int(edges)
		s.StationCount, s.AccessCount, s.UnresolvedCount = int(stations), int(accesses), int(unresolved)
		s.BuiltAt, err = time.Parse(builtAtLayout, builtAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad built_at_utc %q: %w", s.ID, builtAt, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

var (
	_ Exporter = (*DB)(nil)
	_ Exporter = (*PostgresDB)(nil)
)
