package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mini-rodalies-3d/metrograph/internal/metro"
)

// ExportGraph writes g as a new snapshot in one transaction and returns its ID
func (db *DB) ExportGraph(ctx context.Context, g *metro.Graph, builtAt time.Time) (string, error) {
	snapshotID := uuid.New().String()
	snap := snapshotOf(snapshotID, g, builtAt)

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO graph_snapshots (snapshot_id, built_at_utc, node_count, edge_count,
			station_count, access_count, unresolved_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, formatTime(snap.BuiltAt), snap.NodeCount, snap.EdgeCount,
		snap.StationCount, snap.AccessCount, snap.UnresolvedCount)
	if err != nil {
		return "", fmt.Errorf("failed to create snapshot: %w", err)
	}

	if err := insertRows(ctx, tx, "graph_nodes", nodeColumns, nodeRows(snapshotID, g)); err != nil {
		return "", err
	}
	if err := insertRows(ctx, tx, "graph_edges", edgeColumns, edgeRows(snapshotID, g)); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snapshotID, nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), placeholders,
	))
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// ListSnapshots returns snapshot headers, newest first
func (db *DB) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := db.conn.QueryContext(ctx, `
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
		if err := rows.Scan(&s.ID, &builtAt, &s.NodeCount, &s.EdgeCount,
			&s.StationCount, &s.AccessCount, &s.UnresolvedCount); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		s.BuiltAt, err = time.Parse(builtAtLayout, builtAt)
		if err != nil {
			return nil, fmt.Errorf("snapshot %s: bad built_at_utc %q: %w", s.ID, builtAt, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountRows returns the node and edge row counts stored for a snapshot
func (db *DB) CountRows(ctx context.Context, snapshotID string) (nodes, edges int, err error) {
	err = db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM graph_nodes WHERE snapshot_id = ?),
			(SELECT COUNT(*) FROM graph_edges WHERE snapshot_id = ?)
	`, snapshotID, snapshotID).Scan(&nodes, &edges)
	return nodes, edges, err
}
