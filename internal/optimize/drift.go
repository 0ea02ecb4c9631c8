package optimize

import (
	"context"

	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/store"
)

// driftShrinkFactor is the fraction each member embedding moves toward its
// genre's centroid per cycle, per spec §4.6 step 5.
const driftShrinkFactor = 0.05

// applyEmbeddingDrift nudges every sampled member of bestGenre toward the
// genre's centroid by driftShrinkFactor, renormalizes, and writes the
// result back atomically. Members of other genres are untouched. This is
// the concrete realization of the spec's abstract "learn from feedback"
// embedding update.
func applyEmbeddingDrift(ctx context.Context, st *store.Store, sample []store.ContentVector, bestGenre string) error {
	if bestGenre == "" {
		return nil
	}

	var members []store.ContentVector
	for _, cv := range sample {
		if primaryGenre(cv.Genres) == bestGenre {
			members = append(members, cv)
		}
	}
	if len(members) == 0 {
		return nil
	}

	centroid := centroidOf(members)

	updates := make(map[string][]float32, len(members))
	for _, cv := range members {
		nudged := make([]float32, len(cv.Embedding))
		for i, v := range cv.Embedding {
			nudged[i] = v + float32(driftShrinkFactor)*(centroid[i]-v)
		}
		updates[cv.ID] = embedding.Normalize(nudged)
	}

	return st.UpdateContentEmbeddings(ctx, updates)
}

func primaryGenre(genres []string) string {
	if len(genres) == 0 {
		return ""
	}
	return genres[0]
}

func centroidOf(members []store.ContentVector) []float32 {
	if len(members) == 0 {
		return nil
	}
	dim := len(members[0].Embedding)
	sum := make([]float64, dim)
	for _, m := range members {
		for i, v := range m.Embedding {
			if i < dim {
				sum[i] += float64(v)
			}
		}
	}
	out := make([]float32, dim)
	for i, s := range sum {
		out[i] = float32(s / float64(len(members)))
	}
	return out
}
