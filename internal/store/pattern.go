package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"

	"github.com/rcliao/recoengine/internal/core"
)

// UpsertPattern inserts a new pattern (ID == 0) or overwrites an existing
// one's full row, used by seeding and optimization-cycle synthesis. Returns
// the assigned ID.
func (s *Store) UpsertPattern(ctx context.Context, p core.Pattern) (int64, error) {
	ctxBytes, err := json.Marshal(p.Context)
	if err != nil {
		return 0, wrap("upsert_pattern_marshal_context", err)
	}
	var embeddingArg interface{}
	if len(p.Embedding) > 0 {
		embeddingArg = formatVector(p.Embedding)
	}

	if p.ID == 0 {
		var id int64
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO recommendation_patterns
				(task_type, approach, success_rate, total_uses, avg_reward, context, embedding, created_at, updated_at, last_used_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,now(),now(),$8)
			RETURNING id
		`, string(p.TaskType), p.Approach, p.SuccessRate, p.TotalUses, p.AvgReward, ctxBytes, embeddingArg, p.LastUsedAt).Scan(&id)
		return id, wrap("upsert_pattern_insert", err)
	}

	_, execErr := s.db.ExecContext(ctx, `
		UPDATE recommendation_patterns SET
			task_type = $1, approach = $2, success_rate = $3, total_uses = $4, avg_reward = $5,
			context = $6, embedding = COALESCE($7, embedding), updated_at = now(), last_used_at = $8
		WHERE id = $9
	`, string(p.TaskType), p.Approach, p.SuccessRate, p.TotalUses, p.AvgReward, ctxBytes, embeddingArg, p.LastUsedAt, p.ID)
	return p.ID, wrap("upsert_pattern_update", execErr)
}

// ListPatterns returns all patterns, optionally filtered by task type
// (empty string means no filter). Used by seeding's idempotency check and
// by the TUI pattern browser.
func (s *Store) ListPatterns(ctx context.Context, taskType string) ([]core.Pattern, error) {
	query := `SELECT id, task_type, approach, success_rate, total_uses, avg_reward, context, created_at, updated_at, last_used_at FROM recommendation_patterns`
	args := []interface{}{}
	if taskType != "" {
		query += ` WHERE task_type = $1`
		args = append(args, taskType)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrap("list_patterns", err)
	}
	defer rows.Close()

	var out []core.Pattern
	for rows.Next() {
		var p core.Pattern
		var taskTypeStr string
		var ctxBytes []byte
		if err := rows.Scan(&p.ID, &taskTypeStr, &p.Approach, &p.SuccessRate, &p.TotalUses, &p.AvgReward, &ctxBytes, &p.CreatedAt, &p.UpdatedAt, &p.LastUsedAt); err != nil {
			return nil, wrap("list_patterns_scan", err)
		}
		p.TaskType = core.TaskType(taskTypeStr)
		if err := json.Unmarshal(ctxBytes, &p.Context); err != nil {
			return nil, wrap("list_patterns_unmarshal_context", err)
		}
		out = append(out, p)
	}
	return out, wrap("list_patterns_rows", rows.Err())
}

// SearchPatterns runs a vector search over recommendation_patterns' context
// embeddings, the first stage of the Pattern Registry's findBestPattern
// (spec §4.1(c)).
func (s *Store) SearchPatterns(ctx context.Context, contextVec []float32, taskType string, k int) ([]VectorMatch, error) {
	extraWhere := ""
	var extraWhereArgs []interface{}
	if taskType != "" {
		extraWhere = "task_type = $2"
		extraWhereArgs = []interface{}{taskType}
	}
	return s.VectorSearch(ctx, contextVec, VectorSearchOptions{
		Table:          "recommendation_patterns",
		Column:         "embedding",
		IDColumn:       "id",
		K:              k,
		ExtraWhere:     extraWhere,
		ExtraWhereArgs: extraWhereArgs,
		UseCache:       true,
	})
}

// GetPattern loads a single pattern by ID.
func (s *Store) GetPattern(ctx context.Context, id int64) (*core.Pattern, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_type, approach, success_rate, total_uses, avg_reward, context, created_at, updated_at, last_used_at
		FROM recommendation_patterns WHERE id = $1
	`, id)

	var p core.Pattern
	var taskTypeStr string
	var ctxBytes []byte
	if err := row.Scan(&p.ID, &taskTypeStr, &p.Approach, &p.SuccessRate, &p.TotalUses, &p.AvgReward, &ctxBytes, &p.CreatedAt, &p.UpdatedAt, &p.LastUsedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Entity: "pattern", ID: strconv.FormatInt(id, 10)}
		}
		return nil, wrap("get_pattern", err)
	}
	p.TaskType = core.TaskType(taskTypeStr)
	if err := json.Unmarshal(ctxBytes, &p.Context); err != nil {
		return nil, wrap("get_pattern_unmarshal_context", err)
	}
	return &p, nil
}

// RecordPatternOutcome applies a running-mean update to a pattern's
// success_rate/avg_reward/total_uses under SELECT ... FOR UPDATE, so
// concurrent feedback for the same pattern serializes instead of racing
// (spec §4.3 "per-pattern statistics use row-level locking").
func (s *Store) RecordPatternOutcome(ctx context.Context, patternID int64, success bool, reward float64) error {
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		var totalUses int64
		var successRate, avgReward float64
		row := tx.QueryRowContext(ctx, `SELECT total_uses, success_rate, avg_reward FROM recommendation_patterns WHERE id = $1 FOR UPDATE`, patternID)
		if err := row.Scan(&totalUses, &successRate, &avgReward); err != nil {
			if err == sql.ErrNoRows {
				return &core.NotFoundError{Entity: "pattern", ID: strconv.FormatInt(patternID, 10)}
			}
			return wrap("record_pattern_outcome_select", err)
		}

		newTotal := totalUses + 1
		successVal := 0.0
		if success {
			successVal = 1.0
		}
		newSuccessRate := successRate + (successVal-successRate)/float64(newTotal)
		newAvgReward := avgReward + (reward-avgReward)/float64(newTotal)

		_, err := tx.ExecContext(ctx, `
			UPDATE recommendation_patterns
			SET total_uses = $1, success_rate = $2, avg_reward = $3, last_used_at = now(), updated_at = now()
			WHERE id = $4
		`, newTotal, newSuccessRate, newAvgReward, patternID)
		return wrap("record_pattern_outcome_update", err)
	})
}

// PrunePatterns deletes patterns with at least minUses uses and a
// success_rate below the threshold, removing dead strategies from the
// registry. No code in this module calls it; the optimization cycle does not.
func (s *Store) PrunePatterns(ctx context.Context, minUses int64, minSuccessRate float64) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM recommendation_patterns WHERE total_uses >= $1 AND success_rate < $2
	`, minUses, minSuccessRate)
	if err != nil {
		return 0, wrap("prune_patterns", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("prune_patterns_rows_affected", err)
}
