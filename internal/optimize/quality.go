package optimize

import (
	"github.com/rcliao/recoengine/internal/clustering"
	"github.com/rcliao/recoengine/internal/store"
)

// measureQuality samples content rows with embeddings and non-empty
// genres, assigns each to its primary-genre cluster, and returns the
// average silhouette score across the sample, per spec §4.6 step 7.
// Grounded on internal/clustering/silhouette.go's cosine-distance
// silhouette analysis, reused as-is rather than reimplemented: genre
// membership stands in for the cluster assignment a full k-means/HDBSCAN
// pass would otherwise produce.
func measureQuality(sample []store.ContentVector) float64 {
	genreIndex := make(map[string]int)
	embeddings := make([][]float64, 0, len(sample))
	assignments := make([]int, 0, len(sample))

	for _, cv := range sample {
		g := primaryGenre(cv.Genres)
		if g == "" {
			continue
		}
		idx, ok := genreIndex[g]
		if !ok {
			idx = len(genreIndex)
			genreIndex[g] = idx
		}
		embeddings = append(embeddings, toFloat64(cv.Embedding))
		assignments = append(assignments, idx)
	}
	if len(genreIndex) < 2 || len(embeddings) < 2 {
		return 0
	}

	analysis := clustering.PerformSilhouetteAnalysis(embeddings, assignments)
	return analysis.OverallScore
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}
