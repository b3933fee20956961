package db

import (
	"context"
	"fmt"
	"log"
)

// Cleanup deletes every snapshot except the newest keep. keep < 1 is treated as 1.
func (db *DB) Cleanup(ctx context.Context, keep int) error {
	if keep < 1 {
		keep = 1
	}

	db.LockWrite()
	defer db.UnlockWrite()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Children first so retention does not depend on foreign key enforcement
	stale := `
		SELECT snapshot_id FROM graph_snapshots
		ORDER BY built_at_utc DESC, snapshot_id
		LIMIT -1 OFFSET ?
	`
	queries := []struct {
		name  string
		query string
	}{
		{name: "edges", query: "DELETE FROM graph_edges WHERE snapshot_id IN (" + stale + ")"},
		{name: "nodes", query: "DELETE FROM graph_nodes WHERE snapshot_id IN (" + stale + ")"},
		{name: "snapshots", query: "DELETE FROM graph_snapshots WHERE snapshot_id IN (" + stale + ")"},
	}

	var deleted int64
	for _, q := range queries {
		result, err := tx.ExecContext(ctx, q.query, keep)
		if err != nil {
			return fmt.Errorf("failed to cleanup %s: %w", q.name, err)
		}
		if q.name == "snapshots" {
			deleted, _ = result.RowsAffected()
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cleanup: %w", err)
	}

	if deleted > 0 {
		log.Printf("Cleanup: deleted %d snapshots, kept newest %d", deleted, keep)
	}
	return nil
}
