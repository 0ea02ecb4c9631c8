package store

import (
	"context"
	"encoding/json"

	"github.com/rcliao/recoengine/internal/core"
)

// PersistReplay appends a single experience to the durable replay buffer
// mirror. The in-memory buffer (spec §4.3 "bounded replay buffer, FIFO
// eviction") is authoritative at runtime; this table is a checkpoint for
// restart.
func (s *Store) PersistReplay(ctx context.Context, e core.ReplayExperience) error {
	ctxBytes, err := json.Marshal(e.Context)
	if err != nil {
		return wrap("persist_replay_marshal_context", err)
	}
	_, execErr := s.db.ExecContext(ctx, `
		INSERT INTO experience_replay (state, action, reward, next_state, done, context, priority, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,now())
	`, e.State, e.Action, e.Reward, e.NextState, e.Done, ctxBytes, e.Priority)
	return wrap("persist_replay", execErr)
}

// LoadReplayBuffer loads the `limit` most recently created experiences,
// newest first (not ranked by priority), for warm-starting the in-memory
// buffer after a restart.
func (s *Store) LoadReplayBuffer(ctx context.Context, limit int) ([]core.ReplayExperience, error) {
	if limit <= 0 {
		limit = 10000
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, state, action, reward, next_state, done, context, priority, created_at
		FROM experience_replay ORDER BY created_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrap("load_replay_buffer", err)
	}
	defer rows.Close()

	var out []core.ReplayExperience
	for rows.Next() {
		var e core.ReplayExperience
		var ctxBytes []byte
		if err := rows.Scan(&e.ID, &e.State, &e.Action, &e.Reward, &e.NextState, &e.Done, &ctxBytes, &e.Priority, &e.CreatedAt); err != nil {
			return nil, wrap("load_replay_buffer_scan", err)
		}
		if err := json.Unmarshal(ctxBytes, &e.Context); err != nil {
			return nil, wrap("load_replay_buffer_unmarshal_context", err)
		}
		out = append(out, e)
	}
	return out, wrap("load_replay_buffer_rows", rows.Err())
}

// PruneReplay deletes all but the highest-priority `keep` rows, bounding the
// durable mirror's size. No code in this module calls it.
func (s *Store) PruneReplay(ctx context.Context, keep int) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM experience_replay WHERE id NOT IN (
			SELECT id FROM experience_replay ORDER BY priority DESC, created_at DESC LIMIT $1
		)
	`, keep)
	if err != nil {
		return 0, wrap("prune_replay", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("prune_replay_rows_affected", err)
}
