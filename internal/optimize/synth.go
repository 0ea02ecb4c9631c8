package optimize

import (
	"context"
	"fmt"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/store"
)

// synthesizePatterns upserts one pattern per cluster carrying at least two
// primary genres, per spec §4.6 step 3. Returns the number of patterns
// written.
func synthesizePatterns(ctx context.Context, st *store.Store, emb embedding.Embedder, clusters []cluster) (int, error) {
	written := 0
	for _, c := range clusters {
		if len(c.genres) < 2 {
			continue
		}
		top := c.genres
		if len(top) > 3 {
			top = top[:3]
		}
		g1, g2 := c.genres[0], c.genres[1]
		approach := fmt.Sprintf("Cluster-based recommendation for %s + %s", g1, g2)

		pc := core.PatternContext{
			UserSegment:           "any",
			TimeOfDay:             core.TimeAny,
			Platform:              core.PlatformAny,
			ContentTypePreference: core.ContentPrefBoth,
			TopGenres:             top,
		}

		vec, err := emb.Embed(ctx, pc.ContextSentence("established"))
		if err != nil {
			return written, embedding.EmbeddingError("pattern_synthesis", err)
		}

		successRate := clamp01(0.7 + 0.2*c.avgSimilarity)

		p := core.Pattern{
			TaskType:    core.TaskCustom,
			Approach:    approach,
			SuccessRate: successRate,
			TotalUses:   int64(len(c.memberIDs)),
			Context:     pc,
			Embedding:   embedding.Normalize(vec),
		}
		if _, err := st.UpsertPattern(ctx, p); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
