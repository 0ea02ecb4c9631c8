package store

import (
	"context"

	"github.com/rcliao/recoengine/internal/core"
)

// PersistQEntry upserts a single (state, action) Q-value, called from the
// learning engine's periodic persistence (spec §4.3 "every N episodes").
func (s *Store) PersistQEntry(ctx context.Context, e core.QEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO q_table (state, action, q_value, updates, last_updated)
		VALUES ($1,$2,$3,$4,now())
		ON CONFLICT (state, action) DO UPDATE SET
			q_value = EXCLUDED.q_value,
			updates = EXCLUDED.updates,
			last_updated = now()
	`, e.State, e.Action, e.Value, e.Updates)
	return wrap("persist_q_entry", err)
}

// LoadQTable loads the full persisted Q-table into memory at process start.
func (s *Store) LoadQTable(ctx context.Context) ([]core.QEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT state, action, q_value, updates, last_updated FROM q_table`)
	if err != nil {
		return nil, wrap("load_q_table", err)
	}
	defer rows.Close()

	var out []core.QEntry
	for rows.Next() {
		var e core.QEntry
		if err := rows.Scan(&e.State, &e.Action, &e.Value, &e.Updates, &e.LastUpdated); err != nil {
			return nil, wrap("load_q_table_scan", err)
		}
		out = append(out, e)
	}
	return out, wrap("load_q_table_rows", rows.Err())
}
