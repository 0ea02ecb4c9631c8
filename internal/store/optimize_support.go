package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
)

// ContentVector is the slice of a content row the Optimization Cycle needs:
// its primary genre set and its embedding, nothing else.
type ContentVector struct {
	ID        string
	Genres    []string
	Embedding []float32
}

// SampleContentEmbeddings returns up to limit content rows that carry an
// embedding, ordered by updated_at desc so repeated cycles see the freshest
// content first. Used by cluster discovery (spec §4.6 step 2) and quality
// measurement (step 7).
func (s *Store) SampleContentEmbeddings(ctx context.Context, limit int) ([]ContentVector, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, genres, embedding::text
		FROM content
		WHERE embedding IS NOT NULL AND array_length(genres, 1) > 0
		ORDER BY updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrap("sample_content_embeddings", err)
	}
	defer rows.Close()

	var out []ContentVector
	for rows.Next() {
		var cv ContentVector
		var embText string
		if err := rows.Scan(&cv.ID, pq.Array(&cv.Genres), &embText); err != nil {
			return nil, wrap("sample_content_embeddings_scan", err)
		}
		vec, err := parseVector(embText)
		if err != nil {
			return nil, wrap("sample_content_embeddings_parse", err)
		}
		cv.Embedding = vec
		out = append(out, cv)
	}
	return out, wrap("sample_content_embeddings_rows", rows.Err())
}

// UpdateContentEmbeddings writes nudged embeddings back in a single
// transaction, the atomic realization of spec §4.6 step 5.
func (s *Store) UpdateContentEmbeddings(ctx context.Context, updates map[string][]float32) error {
	if len(updates) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `UPDATE content SET embedding = $2, updated_at = now() WHERE id = $1`)
		if err != nil {
			return wrap("update_content_embeddings_prepare", err)
		}
		defer stmt.Close()
		for id, vec := range updates {
			if _, err := stmt.ExecContext(ctx, id, formatVector(vec)); err != nil {
				return wrap("update_content_embeddings", err)
			}
		}
		return nil
	})
}

// ContentGenres fetches the full genre array for each of a batch of content
// IDs (the caller takes the first entry as the primary genre), used
// by reward aggregation (spec §4.6 step 4) to group feedback by genre
// without refetching full content rows.
func (s *Store) ContentGenres(ctx context.Context, ids []string) (map[string][]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, genres FROM content WHERE id = ANY($1::text[])`, pq.Array(ids))
	if err != nil {
		return nil, wrap("content_genres", err)
	}
	defer rows.Close()

	out := make(map[string][]string, len(ids))
	for rows.Next() {
		var id string
		var genres []string
		if err := rows.Scan(&id, pq.Array(&genres)); err != nil {
			return nil, wrap("content_genres_scan", err)
		}
		out[id] = genres
	}
	return out, wrap("content_genres_rows", rows.Err())
}
