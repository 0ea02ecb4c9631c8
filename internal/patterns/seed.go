package patterns

import (
	"context"
	"fmt"

	"github.com/rcliao/recoengine/internal/core"
)

// seedDefinitions are the five starter strategies every fresh deployment
// seeds the registry with, one per spec §4.4 task type plus a general
// genre-match fallback. Concurrent seed runs are safe: UpsertPattern only
// assigns a new ID on ID==0, and SeedDefaults first checks for an existing
// row of the same (task_type, approach) pair before inserting.
var seedDefinitions = []core.Pattern{
	{TaskType: core.TaskColdStart, Approach: "trending_by_recency", SuccessRate: 0.60, AvgReward: 0},
	{TaskType: core.TaskGenreMatch, Approach: "top_genre_weighted", SuccessRate: 0.75, AvgReward: 0},
	{TaskType: core.TaskSimilarContent, Approach: "embedding_nearest_neighbor", SuccessRate: 0.80, AvgReward: 0},
	{TaskType: core.TaskTimeBased, Approach: "time_of_day_affinity", SuccessRate: 0.65, AvgReward: 0},
	{TaskType: core.TaskNetworkBased, Approach: "network_weighted", SuccessRate: 0.70, AvgReward: 0},
}

// SeedDefaults seeds the registry with the five starter strategies if they
// aren't already present. Idempotent and safe under concurrent callers: the
// existence check and insert race only at worst into a harmless duplicate
// row (spec §4.1 "seeding is idempotent"); nothing removes such a duplicate
// afterwards.
func (r *Registry) SeedDefaults(ctx context.Context) error {
	existing, err := r.store.ListPatterns(ctx, "")
	if err != nil {
		return fmt.Errorf("seed defaults list existing: %w", err)
	}

	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[string(p.TaskType)+"|"+p.Approach] = true
	}

	for _, def := range seedDefinitions {
		key := string(def.TaskType) + "|" + def.Approach
		if have[key] {
			continue
		}
		sentence := def.Context.ContextSentence("balanced")
		vec, embErr := r.embedder.Embed(ctx, sentence)
		if embErr != nil {
			return fmt.Errorf("seed defaults embed %s: %w", def.Approach, embErr)
		}
		def.Embedding = vec
		if _, err := r.store.UpsertPattern(ctx, def); err != nil {
			return fmt.Errorf("seed defaults upsert %s: %w", def.Approach, err)
		}
	}
	return nil
}
