// Package optimize implements the Optimization Cycle: a scheduled
// background job that mines content clusters into new patterns, aggregates
// recent feedback into a reward-ranked genre preference, nudges the
// best-performing genre's embeddings toward its centroid, decays the
// exploration rate, measures cluster quality, and checkpoints all of it to
// the store (spec §4.6).
package optimize

import (
	"sort"

	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/store"
)

// maxPairs caps the number of similarity edges considered per cycle, per
// spec §4.6 step 2.
const (
	maxPairs            = 500
	pairSimilarityFloor = 0.75
	minClusterSize      = 3
)

// cluster is a connected component of content rows found similar enough to
// recommend together.
type cluster struct {
	memberIDs     []string
	genres        []string // representative genre set, union of primary genres
	avgSimilarity float64
}

// discoverClusters finds unordered content pairs with cosine similarity at
// or above pairSimilarityFloor, capped at maxPairs, and unions them via
// union-find into clusters of size >= minClusterSize. Grounded on the
// teacher's internal/clustering/semantic.go connected-components approach,
// generalized from DFS-over-adjacency-list to union-find-over-edge-list
// since the edge set here is already small and pre-capped.
func discoverClusters(items []store.ContentVector) []cluster {
	type edge struct {
		i, j int
		sim  float64
	}
	var edges []edge
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sim := embedding.CosineSimilarity(items[i].Embedding, items[j].Embedding)
			if sim >= pairSimilarityFloor {
				edges = append(edges, edge{i, j, sim})
			}
		}
	}
	if len(edges) > maxPairs {
		sort.Slice(edges, func(a, b int) bool { return edges[a].sim > edges[b].sim })
		edges = edges[:maxPairs]
	}

	uf := newUnionFind(len(items))
	for _, e := range edges {
		uf.union(e.i, e.j)
	}

	// Aggregate similarity sums by each edge's FINAL root, found only after
	// every union has run: a later union can change a component's root, so
	// keying by the root observed at union time would drop edges absorbed
	// under a now-stale intermediate root.
	simSum := make(map[int]float64)
	simCount := make(map[int]int)
	for _, e := range edges {
		root := uf.find(e.i)
		simSum[root] += e.sim
		simCount[root]++
	}

	groups := make(map[int][]int)
	for i := range items {
		root := uf.find(i)
		groups[root] = append(groups[root], i)
	}

	var clusters []cluster
	for root, members := range groups {
		if len(members) < minClusterSize {
			continue
		}
		c := cluster{}
		genreSet := make(map[string]bool)
		for _, idx := range members {
			c.memberIDs = append(c.memberIDs, items[idx].ID)
			if g := primaryGenre(items[idx].Genres); g != "" {
				genreSet[g] = true
			}
		}
		for g := range genreSet {
			c.genres = append(c.genres, g)
		}
		sort.Strings(c.genres)
		if n := simCount[root]; n > 0 {
			c.avgSimilarity = simSum[root] / float64(n)
		}
		clusters = append(clusters, c)
	}
	return clusters
}

// unionFind is a standard disjoint-set with path compression and
// union-by-rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x])
	}
	return uf.parent[x]
}

// union merges the sets containing a and b, returning the resulting root.
func (uf *unionFind) union(a, b int) int {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return ra
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
	return ra
}
