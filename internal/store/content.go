package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/rcliao/recoengine/internal/core"
)

// UpsertContent idempotently inserts or updates a batch of content rows.
// A re-ingested item with a blank ImageURL/ThumbnailURL does not clobber a
// previously stored one, matching spec §6's "preserve existing image URLs
// on re-ingestion when the incoming value is empty".
func (s *Store) UpsertContent(ctx context.Context, items []core.Content) error {
	if len(items) == 0 {
		return nil
	}
	return s.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO content (id, kind, title, year, overview, genres, language, country,
				rating, network_name, first_aired, image_url, thumbnail_url, embedding, search_vector, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,
				setweight(to_tsvector('english', coalesce($3, '')), 'A') ||
				setweight(to_tsvector('english', coalesce($5, '')), 'B'),
				now())
			ON CONFLICT (id) DO UPDATE SET
				kind = EXCLUDED.kind,
				title = EXCLUDED.title,
				year = EXCLUDED.year,
				overview = EXCLUDED.overview,
				genres = EXCLUDED.genres,
				language = EXCLUDED.language,
				country = EXCLUDED.country,
				rating = EXCLUDED.rating,
				network_name = EXCLUDED.network_name,
				first_aired = EXCLUDED.first_aired,
				image_url = CASE WHEN EXCLUDED.image_url = '' THEN content.image_url ELSE EXCLUDED.image_url END,
				thumbnail_url = CASE WHEN EXCLUDED.thumbnail_url = '' THEN content.thumbnail_url ELSE EXCLUDED.thumbnail_url END,
				embedding = COALESCE(EXCLUDED.embedding, content.embedding),
				search_vector = EXCLUDED.search_vector,
				updated_at = now()
		`)
		if err != nil {
			return wrap("upsert_content_prepare", err)
		}
		defer stmt.Close()

		for _, c := range items {
			var embeddingArg interface{}
			if len(c.Embedding) > 0 {
				embeddingArg = formatVector(c.Embedding)
			}
			if _, err := stmt.ExecContext(ctx,
				c.ID, string(c.Kind), c.Title, c.Year, c.Overview, pq.Array(c.Genres),
				c.Language, c.Country, c.Rating, c.NetworkName, c.FirstAired,
				c.ImageURL, c.ThumbnailURL, embeddingArg,
			); err != nil {
				return wrap("upsert_content", err)
			}
		}
		return nil
	})
}

// GetContent fetches a single content row by ID.
func (s *Store) GetContent(ctx context.Context, id string) (*core.Content, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, title, year, overview, genres, language, country,
			rating, network_name, first_aired, image_url, thumbnail_url, updated_at
		FROM content WHERE id = $1
	`, id)

	var c core.Content
	var kind string
	if err := row.Scan(
		&c.ID, &kind, &c.Title, &c.Year, &c.Overview, pq.Array(&c.Genres), &c.Language, &c.Country,
		&c.Rating, &c.NetworkName, &c.FirstAired, &c.ImageURL, &c.ThumbnailURL, &c.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, &core.NotFoundError{Entity: "content", ID: id}
		}
		return nil, wrap("get_content", err)
	}
	c.Kind = core.ContentKind(kind)
	return &c, nil
}

// GetContentBatch fetches multiple content rows, skipping any IDs not found.
func (s *Store) GetContentBatch(ctx context.Context, ids []string) ([]core.Content, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, year, overview, genres, language, country,
			rating, network_name, first_aired, image_url, thumbnail_url, updated_at
		FROM content WHERE id = ANY($1::text[])
	`, pq.Array(ids))
	if err != nil {
		return nil, wrap("get_content_batch", err)
	}
	defer rows.Close()

	var out []core.Content
	for rows.Next() {
		var c core.Content
		var kind string
		if err := rows.Scan(
			&c.ID, &kind, &c.Title, &c.Year, &c.Overview, pq.Array(&c.Genres), &c.Language, &c.Country,
			&c.Rating, &c.NetworkName, &c.FirstAired, &c.ImageURL, &c.ThumbnailURL, &c.UpdatedAt,
		); err != nil {
			return nil, wrap("get_content_batch_scan", err)
		}
		c.Kind = core.ContentKind(kind)
		out = append(out, c)
	}
	return out, wrap("get_content_batch_rows", rows.Err())
}

// ListCandidatePool returns up to limit content rows carrying an embedding,
// ordered by updated_at desc, for the Recommendation Engine's candidate pool
// (spec §4.4 step 3: "candidates are drawn from content with a populated
// embedding").
func (s *Store) ListCandidatePool(ctx context.Context, limit int) ([]core.Content, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, year, overview, genres, language, country,
			rating, network_name, first_aired, image_url, thumbnail_url, embedding::text, updated_at
		FROM content
		WHERE embedding IS NOT NULL
		ORDER BY updated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, wrap("list_candidate_pool", err)
	}
	defer rows.Close()

	var out []core.Content
	for rows.Next() {
		var c core.Content
		var kind string
		var embText string
		if err := rows.Scan(
			&c.ID, &kind, &c.Title, &c.Year, &c.Overview, pq.Array(&c.Genres), &c.Language, &c.Country,
			&c.Rating, &c.NetworkName, &c.FirstAired, &c.ImageURL, &c.ThumbnailURL, &embText, &c.UpdatedAt,
		); err != nil {
			return nil, wrap("list_candidate_pool_scan", err)
		}
		c.Kind = core.ContentKind(kind)
		emb, err := parseVector(embText)
		if err != nil {
			return nil, wrap("list_candidate_pool_parse_vector", err)
		}
		c.Embedding = emb
		out = append(out, c)
	}
	return out, wrap("list_candidate_pool_rows", rows.Err())
}

// SearchContentText performs a lexical search over the content table's
// search_vector (title weighted above overview). Its only caller is the
// search CLI command: neither the Pattern Registry's embedding-failure
// fallback (which ranks patterns by success rate) nor the Recommendation
// Engine's (which falls back to cold start) uses it.
func (s *Store) SearchContentText(ctx context.Context, query string, limit int) ([]core.Content, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, title, year, overview, genres, language, country,
			rating, network_name, first_aired, image_url, thumbnail_url, updated_at
		FROM content
		WHERE search_vector @@ plainto_tsquery('english', $1)
		ORDER BY ts_rank(search_vector, plainto_tsquery('english', $1)) DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, wrap("search_content_text", err)
	}
	defer rows.Close()

	var out []core.Content
	for rows.Next() {
		var c core.Content
		var kind string
		if err := rows.Scan(
			&c.ID, &kind, &c.Title, &c.Year, &c.Overview, pq.Array(&c.Genres), &c.Language, &c.Country,
			&c.Rating, &c.NetworkName, &c.FirstAired, &c.ImageURL, &c.ThumbnailURL, &c.UpdatedAt,
		); err != nil {
			return nil, wrap("search_content_text_scan", err)
		}
		c.Kind = core.ContentKind(kind)
		out = append(out, c)
	}
	return out, wrap("search_content_text_rows", rows.Err())
}
