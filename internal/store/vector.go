package store

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// formatVector renders a float32 embedding in pgvector's literal syntax,
// following the teacher's vectorstore.formatVector.
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range embedding {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', 8, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// parseVector parses pgvector's text output (e.g. "[0.1,0.2,0.3]") back into
// a float32 slice, the inverse of formatVector.
func parseVector(text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "[")
	text = strings.TrimSuffix(text, "]")
	if text == "" {
		return nil, nil
	}
	parts := strings.Split(text, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("parse vector element %q: %w", p, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// VectorMatch is a single ANN hit: an entity ID plus its cosine similarity
// to the query vector.
type VectorMatch struct {
	ID         string
	Similarity float64
}

// VectorSearchOptions parameterizes VectorSearch against any table carrying
// a pgvector column, per spec §4.2 "approximate nearest-neighbor search".
type VectorSearchOptions struct {
	Table      string // e.g. "content", "recommendation_patterns"
	Column     string // e.g. "embedding"
	IDColumn   string // e.g. "id"
	K          int
	ExcludeIDs []string
	// ExtraWhere is a SQL fragment appended as "AND (<ExtraWhere>)". It may
	// reference placeholders starting at $2 (e.g. "task_type = $2"); the
	// corresponding values go in ExtraWhereArgs, in order. Table and Column
	// are still caller-controlled identifiers, never user input, but values
	// belong in ExtraWhereArgs so they're bound, not interpolated.
	ExtraWhere     string
	ExtraWhereArgs []interface{}
	UseCache       bool
}

// VectorSearch runs a cosine-distance ANN query against opts.Table. Results
// are cached for VectorCacheTTL keyed by table+vector+k+filter hash, per
// spec §5's "vector result cache".
func (s *Store) VectorSearch(ctx context.Context, queryVec []float32, opts VectorSearchOptions) ([]VectorMatch, error) {
	if opts.K <= 0 {
		opts.K = 10
	}
	vectorStr := formatVector(queryVec)
	cacheKey := vectorCacheKey(opts.Table, vectorStr, opts.K, opts.ExtraWhere, opts.ExtraWhereArgs, opts.ExcludeIDs)

	if opts.UseCache {
		if cached, ok := s.vecCache.Get(cacheKey); ok {
			return cached.([]VectorMatch), nil
		}
	}

	where := fmt.Sprintf("%s IS NOT NULL", opts.Column)
	args := []interface{}{vectorStr}
	argN := 1

	if opts.ExtraWhere != "" {
		where += fmt.Sprintf(" AND (%s)", opts.ExtraWhere)
		args = append(args, opts.ExtraWhereArgs...)
		argN += len(opts.ExtraWhereArgs)
	}
	if len(opts.ExcludeIDs) > 0 {
		argN++
		where += fmt.Sprintf(" AND %s NOT IN (SELECT unnest($%d::text[]))", opts.IDColumn, argN)
		args = append(args, pq.Array(opts.ExcludeIDs))
	}

	argN++
	query := fmt.Sprintf(`
		SELECT %s, 1 - (%s <=> $1::vector) AS similarity
		FROM %s
		WHERE %s
		ORDER BY %s <=> $1::vector
		LIMIT $%d
	`, opts.IDColumn, opts.Column, opts.Table, where, opts.Column, argN)
	args = append(args, opts.K)

	var results []VectorMatch
	err := s.breakered("vector_search", func() error {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return wrap("vector_search", err)
		}
		defer rows.Close()

		results = nil
		for rows.Next() {
			var m VectorMatch
			if err := rows.Scan(&m.ID, &m.Similarity); err != nil {
				return wrap("vector_search_scan", err)
			}
			results = append(results, m)
		}
		return wrap("vector_search_rows", rows.Err())
	})
	if err != nil {
		return nil, err
	}

	if opts.UseCache {
		s.vecCache.SetDefault(cacheKey, results)
	}
	return results, nil
}

func vectorCacheKey(table, vectorStr string, k int, extraWhere string, extraWhereArgs []interface{}, excludeIDs []string) string {
	h := sha1.New()
	h.Write([]byte(table))
	h.Write([]byte(vectorStr))
	h.Write([]byte(extraWhere))
	for _, a := range extraWhereArgs {
		fmt.Fprintf(h, "%v", a)
	}
	h.Write([]byte(strings.Join(excludeIDs, ",")))
	sum := hex.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s:%s:%d", table, sum, k)
}
