package recommend

import (
	"context"
	"sort"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/store"
)

// scoredCandidate pairs a candidate with its strategy-assigned base score
// and the human-readable reason to attach if it's ultimately selected.
type scoredCandidate struct {
	candidate Candidate
	score     float64
	reason    string
}

// strategyFunc implements one of spec §4.4 step 4's five dispatch branches.
// Strategies are pure over their inputs except similarContent and
// timeBased (which builds on similarContent), which may issue a vector
// search against the store.
type strategyFunc func(ctx context.Context, deps strategyDeps) ([]scoredCandidate, error)

type strategyDeps struct {
	store      *store.Store
	candidates []Candidate
	pref       core.UserPreference
	pc         core.PatternContext
	genres     []string // request-level genre filter, may be empty
	limit      int
}

func coldStartStrategy(_ context.Context, d strategyDeps) ([]scoredCandidate, error) {
	pool := d.candidates
	if len(d.genres) > 0 {
		wanted := toSet(d.genres)
		filtered := make([]Candidate, 0, len(pool))
		for _, c := range pool {
			if genreOverlap(c.Genres, wanted) > 0 {
				filtered = append(filtered, c)
			}
		}
		if len(filtered) > 0 {
			pool = filtered
		}
	}

	out := make([]scoredCandidate, len(pool))
	for i, c := range pool {
		rating := 0.0
		if c.Rating != nil {
			rating = *c.Rating
		}
		out[i] = scoredCandidate{candidate: c, score: rating, reason: "Popular content you might enjoy"}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

func genreMatchStrategy(_ context.Context, d strategyDeps) ([]scoredCandidate, error) {
	wanted := toSet(d.pc.TopGenres)
	out := make([]scoredCandidate, 0, len(d.candidates))
	for _, c := range d.candidates {
		denom := len(c.Genres)
		if denom == 0 {
			denom = 1
		}
		score := float64(genreOverlap(c.Genres, wanted)) / float64(denom)
		out = append(out, scoredCandidate{candidate: c, score: score, reason: "Matches your favorite genres"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

func similarContentStrategy(ctx context.Context, d strategyDeps) ([]scoredCandidate, error) {
	if d.pref.IsColdStart() {
		return coldStartStrategy(ctx, d)
	}

	k := d.limit * 2
	matches, err := d.store.VectorSearch(ctx, d.pref.PreferenceVec, store.VectorSearchOptions{
		Table:    "content",
		Column:   "embedding",
		IDColumn: "id",
		K:        k,
		UseCache: true,
	})
	if err != nil {
		return nil, err
	}

	byID := make(map[string]Candidate, len(d.candidates))
	for _, c := range d.candidates {
		byID[c.ContentID] = c
	}

	out := make([]scoredCandidate, 0, len(matches))
	for _, m := range matches {
		c, ok := byID[m.ID]
		if !ok {
			continue
		}
		out = append(out, scoredCandidate{candidate: c, score: m.Similarity, reason: "Similar to content you've watched"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

func timeBasedStrategy(ctx context.Context, d strategyDeps) ([]scoredCandidate, error) {
	base, err := similarContentStrategy(ctx, d)
	if err != nil {
		return nil, err
	}
	if d.pc.TimeOfDay != core.TimeEvening && d.pc.TimeOfDay != core.TimeNight {
		return base, nil
	}

	// Stable partition: series first, movies after, each sub-list keeping its
	// similar_content order (spec §4.4 step 4 time_based).
	series := make([]scoredCandidate, 0, len(base))
	movies := make([]scoredCandidate, 0, len(base))
	for _, sc := range base {
		if sc.candidate.Kind == core.ContentSeries {
			sc.reason = "Evening binge pick"
			series = append(series, sc)
		} else {
			movies = append(movies, sc)
		}
	}
	return append(series, movies...), nil
}

func networkBasedStrategy(ctx context.Context, d strategyDeps) ([]scoredCandidate, error) {
	topNetworks := topByWeight(d.pref.NetworkWeights, 5)
	wanted := toSet(topNetworks)

	if len(wanted) == 0 {
		return coldStartStrategy(ctx, d)
	}

	out := make([]scoredCandidate, 0, len(d.candidates))
	for _, c := range d.candidates {
		if !wanted[c.Network] {
			continue
		}
		out = append(out, scoredCandidate{
			candidate: c,
			score:     d.pref.NetworkWeights[c.Network],
			reason:    "From a network you watch often",
		})
	}
	if len(out) == 0 {
		return coldStartStrategy(ctx, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].score > out[j].score })
	return out, nil
}

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}

func genreOverlap(genres []string, wanted map[string]bool) int {
	n := 0
	for _, g := range genres {
		if wanted[g] {
			n++
		}
	}
	return n
}

func topByWeight(weights map[string]float64, n int) []string {
	type kv struct {
		key    string
		weight float64
	}
	kvs := make([]kv, 0, len(weights))
	for k, w := range weights {
		kvs = append(kvs, kv{k, w})
	}
	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].weight != kvs[j].weight {
			return kvs[i].weight > kvs[j].weight
		}
		return kvs[i].key < kvs[j].key
	})
	if n > len(kvs) {
		n = len(kvs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = kvs[i].key
	}
	return out
}

func strategyFor(taskType core.TaskType) strategyFunc {
	switch taskType {
	case core.TaskGenreMatch:
		return genreMatchStrategy
	case core.TaskSimilarContent:
		return similarContentStrategy
	case core.TaskTimeBased:
		return timeBasedStrategy
	case core.TaskNetworkBased:
		return networkBasedStrategy
	default:
		return coldStartStrategy
	}
}
