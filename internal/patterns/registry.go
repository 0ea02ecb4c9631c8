// Package patterns implements the Pattern Registry: semantic lookup over
// learned recommendation strategies and the running-mean statistics updates
// that keep their success rates current.
package patterns

import (
	"context"
	"fmt"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/logger"
	"github.com/rcliao/recoengine/internal/store"
)

// similarityWeight and successWeight combine a pattern's contextual
// similarity with its track record, per spec §4.1(c): score = 0.4*sim + 0.6*successRate.
const (
	similarityWeight = 0.4
	successWeight    = 0.6
	candidateK       = 5
)

// Registry resolves a PatternContext to the best matching learned strategy
// and records outcomes back into the store.
type Registry struct {
	store    *store.Store
	embedder embedding.Embedder
}

func New(st *store.Store, embedder embedding.Embedder) *Registry {
	return &Registry{store: st, embedder: embedder}
}

// scored pairs a candidate pattern with its computed score.
type scored struct {
	pattern core.Pattern
	score   float64
}

// FindBest embeds the context, fetches the top candidateK nearest patterns
// restricted to taskType (or any task type if empty), and returns the one
// with the highest weighted score. Falls back to the highest success_rate
// pattern for taskType if the embedding call degrades (spec §7 EmbeddingError
// "degrade to lexical fallback").
func (r *Registry) FindBest(ctx context.Context, pc core.PatternContext, taskType core.TaskType, preferenceSummary string) (*core.Pattern, error) {
	sentence := pc.ContextSentence(preferenceSummary)

	vec, err := r.embedder.Embed(ctx, sentence)
	if err != nil {
		logger.Warn("pattern context embedding failed, falling back to success-rate ranking", "error", err)
		return r.fallbackBest(ctx, taskType)
	}

	matches, err := r.store.SearchPatterns(ctx, vec, string(taskType), candidateK)
	if err != nil {
		return nil, fmt.Errorf("search patterns: %w", err)
	}
	if len(matches) == 0 {
		return r.fallbackBest(ctx, taskType)
	}

	var best *scored
	for _, m := range matches {
		id, err := parsePatternID(m.ID)
		if err != nil {
			continue
		}
		p, err := r.store.GetPattern(ctx, id)
		if err != nil {
			continue
		}
		s := similarityWeight*m.Similarity + successWeight*p.SuccessRate
		if best == nil || s > best.score {
			best = &scored{pattern: *p, score: s}
		}
	}
	if best == nil {
		return r.fallbackBest(ctx, taskType)
	}
	return &best.pattern, nil
}

// fallbackBest ranks by success_rate alone when semantic search is
// unavailable.
func (r *Registry) fallbackBest(ctx context.Context, taskType core.TaskType) (*core.Pattern, error) {
	candidates, err := r.store.ListPatterns(ctx, string(taskType))
	if err != nil {
		return nil, fmt.Errorf("list patterns fallback: %w", err)
	}
	if len(candidates) == 0 {
		return nil, &core.NotFoundError{Entity: "pattern", ID: string(taskType)}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.SuccessRate > best.SuccessRate {
			best = c
		}
	}
	return &best, nil
}

// RecordOutcome applies the running-mean update for a pattern's success_rate
// and avg_reward after a piece of feedback is attributed to it (spec
// §4.1(c) "update pattern stats with a running mean").
func (r *Registry) RecordOutcome(ctx context.Context, patternID int64, success bool, reward float64) error {
	return r.store.RecordPatternOutcome(ctx, patternID, success, reward)
}

func parsePatternID(s string) (int64, error) {
	var id int64
	_, err := fmt.Sscanf(s, "%d", &id)
	return id, err
}
