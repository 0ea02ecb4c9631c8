package optimize

import (
	"testing"

	"github.com/rcliao/recoengine/internal/store"
)

func unit(dims int, hot int) []float32 {
	v := make([]float32, dims)
	v[hot] = 1
	return v
}

func TestDiscoverClustersFindsConnectedComponent(t *testing.T) {
	items := []store.ContentVector{
		{ID: "a", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "b", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "c", Genres: []string{"Comedy"}, Embedding: unit(4, 0)},
		{ID: "d", Genres: []string{"Action"}, Embedding: unit(4, 3)},
	}
	clusters := discoverClusters(items)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if len(clusters[0].memberIDs) != 3 {
		t.Fatalf("expected 3 members in the cluster, got %d", len(clusters[0].memberIDs))
	}
}

func TestDiscoverClustersDropsBelowMinSize(t *testing.T) {
	items := []store.ContentVector{
		{ID: "a", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "b", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
	}
	clusters := discoverClusters(items)
	if len(clusters) != 0 {
		t.Fatalf("expected 0 clusters below min size, got %d", len(clusters))
	}
}

func TestDiscoverClustersAvgSimilarityIncludesEdgesUnderStaleRoots(t *testing.T) {
	// a-b and c-d each merge into their own component first; the later b-c
	// union then merges those two components under a single root. avgSimilarity
	// must still account for all four edges, not just the ones recorded under
	// whichever root b-c's union happens to produce.
	items := []store.ContentVector{
		{ID: "a", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "b", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "c", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "d", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
	}
	clusters := discoverClusters(items)
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}
	if clusters[0].avgSimilarity <= 0 {
		t.Fatalf("expected a positive avgSimilarity accounting for all edges, got %v", clusters[0].avgSimilarity)
	}
}

func TestUnionFindMergesTransitively(t *testing.T) {
	uf := newUnionFind(4)
	uf.union(0, 1)
	uf.union(1, 2)
	if uf.find(0) != uf.find(2) {
		t.Fatalf("expected 0 and 2 to share a root after transitive union")
	}
	if uf.find(0) == uf.find(3) {
		t.Fatalf("expected 3 to remain in its own set")
	}
}
