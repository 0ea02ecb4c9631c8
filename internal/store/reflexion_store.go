package store

import (
	"context"
	"time"

	"github.com/lib/pq"

	"github.com/rcliao/recoengine/internal/core"
)

// StoreEpisode appends a reflexion episode.
func (s *Store) StoreEpisode(ctx context.Context, ep core.ReflexionEpisode) (int64, error) {
	var embeddingArg interface{}
	if len(ep.Embedding) > 0 {
		embeddingArg = formatVector(ep.Embedding)
	}
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO reflexion_episodes (session_id, task, action, reward, success, critique, learnings, embedding, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		RETURNING id
	`, ep.SessionID, ep.Task, ep.Action, ep.Reward, ep.Success, ep.Critique, pq.Array(ep.Learnings), embeddingArg).Scan(&id)
	return id, wrap("store_episode", err)
}

// RetrieveRelevant runs a vector search over reflexion episodes for a given
// task, used by the reflexion layer to surface similar past attempts.
func (s *Store) RetrieveRelevant(ctx context.Context, task string, embedding []float32, k int) ([]VectorMatch, error) {
	return s.VectorSearch(ctx, embedding, VectorSearchOptions{
		Table:          "reflexion_episodes",
		Column:         "embedding",
		IDColumn:       "id",
		K:              k,
		ExtraWhere:     "task = $2",
		ExtraWhereArgs: []interface{}{task},
	})
}

// GetEpisode loads a single episode by ID.
func (s *Store) GetEpisode(ctx context.Context, id int64) (*core.ReflexionEpisode, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, session_id, task, action, reward, success, critique, learnings, created_at
		FROM reflexion_episodes WHERE id = $1
	`, id)
	var ep core.ReflexionEpisode
	if err := row.Scan(&ep.ID, &ep.SessionID, &ep.Task, &ep.Action, &ep.Reward, &ep.Success, &ep.Critique, pq.Array(&ep.Learnings), &ep.CreatedAt); err != nil {
		return nil, wrap("get_episode", err)
	}
	return &ep, nil
}

// PruneEpisodes deletes episodes older than ttl, keeping at least
// keepMinPerTask of the most recent rows for each task type.
func (s *Store) PruneEpisodes(ctx context.Context, ttl time.Duration, keepMinPerTask int) (int64, error) {
	cutoff := time.Now().Add(-ttl)
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM reflexion_episodes e
		WHERE e.created_at < $1
		AND e.id NOT IN (
			SELECT id FROM (
				SELECT id, row_number() OVER (PARTITION BY task ORDER BY created_at DESC) AS rn
				FROM reflexion_episodes
			) ranked WHERE ranked.rn <= $2
		)
	`, cutoff, keepMinPerTask)
	if err != nil {
		return 0, wrap("prune_episodes", err)
	}
	n, err := res.RowsAffected()
	return n, wrap("prune_episodes_rows_affected", err)
}

// UpsertSkill inserts a new distilled skill or updates an existing one's
// stats, keyed by name.
func (s *Store) UpsertSkill(ctx context.Context, sk core.Skill) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO skills (name, description, signature, code, domain, success_rate, usage_count, avg_execution_time_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,now())
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			success_rate = EXCLUDED.success_rate,
			usage_count = EXCLUDED.usage_count,
			avg_execution_time_ms = EXCLUDED.avg_execution_time_ms
	`, sk.Name, sk.Description, sk.Signature, sk.Code, sk.Domain, sk.SuccessRate, sk.UsageCount, sk.AvgExecutionTimeMs)
	return wrap("upsert_skill", err)
}

// ListSkills returns all distilled skills, newest first.
func (s *Store) ListSkills(ctx context.Context) ([]core.Skill, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, signature, code, domain, success_rate, usage_count, avg_execution_time_ms, created_at
		FROM skills ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, wrap("list_skills", err)
	}
	defer rows.Close()

	var out []core.Skill
	for rows.Next() {
		var sk core.Skill
		if err := rows.Scan(&sk.ID, &sk.Name, &sk.Description, &sk.Signature, &sk.Code, &sk.Domain, &sk.SuccessRate, &sk.UsageCount, &sk.AvgExecutionTimeMs, &sk.CreatedAt); err != nil {
			return nil, wrap("list_skills_scan", err)
		}
		out = append(out, sk)
	}
	return out, wrap("list_skills_rows", rows.Err())
}
