package store

import "context"

// schemaDDL is the canonical schema from spec §6: eight tables backing
// content, user state, learned patterns, feedback, reflexion episodes,
// Q-table entries, the replay buffer, and optimization-cycle checkpoints,
// plus a ninth table, skills, for the reflexion skills catalog.
// Mirrors the teacher's internal/vectorstore/pgvector.go migration style:
// one idempotent CREATE per statement, run in order at startup.
const schemaDDL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS content (
	id               TEXT PRIMARY KEY,
	kind             TEXT NOT NULL,
	title            TEXT NOT NULL,
	year             INT,
	overview         TEXT,
	genres           TEXT[] NOT NULL DEFAULT '{}',
	language         TEXT,
	country          TEXT,
	rating           DOUBLE PRECISION,
	network_name     TEXT,
	first_aired      TIMESTAMPTZ,
	image_url        TEXT,
	thumbnail_url    TEXT,
	embedding        vector(384),
	search_vector    tsvector,
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS content_embedding_hnsw_idx ON content
	USING hnsw (embedding vector_cosine_ops) WITH (m = 16, ef_construction = 64);
CREATE INDEX IF NOT EXISTS content_genres_gin_idx ON content USING gin (genres);
CREATE INDEX IF NOT EXISTS content_kind_idx ON content (kind);
CREATE INDEX IF NOT EXISTS content_search_vector_gin_idx ON content USING gin (search_vector);

CREATE TABLE IF NOT EXISTS user_preferences (
	user_id          TEXT PRIMARY KEY,
	preference_vec   vector(384),
	genre_weights    JSONB NOT NULL DEFAULT '{}',
	network_weights  JSONB NOT NULL DEFAULT '{}',
	watch_history    JSONB NOT NULL DEFAULT '[]',
	ratings          JSONB NOT NULL DEFAULT '{}',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS recommendation_patterns (
	id               BIGSERIAL PRIMARY KEY,
	task_type        TEXT NOT NULL,
	approach         TEXT NOT NULL,
	success_rate     DOUBLE PRECISION NOT NULL DEFAULT 0,
	total_uses       INT NOT NULL DEFAULT 0,
	avg_reward       DOUBLE PRECISION NOT NULL DEFAULT 0,
	context          JSONB NOT NULL DEFAULT '{}',
	embedding        vector(384),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	last_used_at     TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS patterns_embedding_hnsw_idx ON recommendation_patterns
	USING hnsw (embedding vector_cosine_ops) WITH (m = 16, ef_construction = 64);
CREATE INDEX IF NOT EXISTS patterns_task_type_idx ON recommendation_patterns (task_type);

CREATE TABLE IF NOT EXISTS learning_feedback (
	id                       BIGSERIAL PRIMARY KEY,
	user_id                  TEXT NOT NULL,
	content_id               TEXT NOT NULL,
	pattern_id               BIGINT REFERENCES recommendation_patterns(id),
	was_successful           BOOLEAN NOT NULL DEFAULT false,
	reward                   DOUBLE PRECISION NOT NULL,
	user_action              TEXT NOT NULL,
	recommendation_position  INT,
	created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS learning_feedback_created_at_idx ON learning_feedback (created_at);
CREATE INDEX IF NOT EXISTS learning_feedback_user_idx ON learning_feedback (user_id);

CREATE TABLE IF NOT EXISTS reflexion_episodes (
	id               BIGSERIAL PRIMARY KEY,
	session_id       TEXT NOT NULL,
	task             TEXT NOT NULL,
	action           TEXT NOT NULL,
	reward           DOUBLE PRECISION NOT NULL,
	success          BOOLEAN NOT NULL DEFAULT false,
	critique         TEXT,
	learnings        TEXT[] NOT NULL DEFAULT '{}',
	embedding        vector(384),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS reflexion_embedding_hnsw_idx ON reflexion_episodes
	USING hnsw (embedding vector_cosine_ops) WITH (m = 16, ef_construction = 64);
CREATE INDEX IF NOT EXISTS reflexion_task_idx ON reflexion_episodes (task);

CREATE TABLE IF NOT EXISTS skills (
	id                     BIGSERIAL PRIMARY KEY,
	name                   TEXT NOT NULL UNIQUE,
	description            TEXT NOT NULL,
	signature              TEXT,
	code                   TEXT,
	domain                 TEXT,
	success_rate           DOUBLE PRECISION NOT NULL DEFAULT 0,
	usage_count            BIGINT NOT NULL DEFAULT 0,
	avg_execution_time_ms  DOUBLE PRECISION NOT NULL DEFAULT 0,
	created_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS q_table (
	state            TEXT NOT NULL,
	action           TEXT NOT NULL,
	q_value          DOUBLE PRECISION NOT NULL DEFAULT 0,
	updates          BIGINT NOT NULL DEFAULT 0,
	last_updated     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (state, action)
);

CREATE TABLE IF NOT EXISTS experience_replay (
	id               BIGSERIAL PRIMARY KEY,
	state            TEXT NOT NULL,
	action           TEXT NOT NULL,
	reward           DOUBLE PRECISION NOT NULL,
	next_state       TEXT NOT NULL,
	done             BOOLEAN NOT NULL DEFAULT false,
	context          JSONB NOT NULL DEFAULT '{}',
	priority         DOUBLE PRECISION NOT NULL DEFAULT 1,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS experience_replay_priority_idx ON experience_replay (priority DESC);

CREATE TABLE IF NOT EXISTS sync_status (
	id                BIGSERIAL PRIMARY KEY,
	sync_type         TEXT NOT NULL,
	episode           BIGINT NOT NULL DEFAULT 0,
	total_reward      DOUBLE PRECISION NOT NULL DEFAULT 0,
	exploration_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
	best_strategy     TEXT,
	quality_score     DOUBLE PRECISION,
	completed_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS sync_status_type_idx ON sync_status (sync_type, completed_at DESC);
`

// Migrate applies schemaDDL. It is safe to call on every process start: every
// statement is an idempotent CREATE IF NOT EXISTS.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return wrap("migrate", err)
	}
	return nil
}
