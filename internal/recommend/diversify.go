package recommend

// DefaultDiversityFactor is the weight given to novelty over base score in
// the greedy MMR pass, per spec §4.4 step 5.
const DefaultDiversityFactor = 0.2

// diversify applies a greedy max-marginal-relevance pass over ranked
// candidates: the top item is taken as-is, then each subsequent slot picks
// the remaining candidate maximizing diversityFactor*(1-minSim) +
// (1-diversityFactor)*baseScore, where minSim is the candidate's minimum
// genre-overlap similarity to anything already selected.
func diversify(ranked []scoredCandidate, diversityFactor float64) []scoredCandidate {
	if len(ranked) <= 1 {
		return ranked
	}

	selected := []scoredCandidate{ranked[0]}
	remaining := append([]scoredCandidate(nil), ranked[1:]...)

	for len(remaining) > 0 {
		bestIdx := -1
		bestScore := -1.0
		for i, cand := range remaining {
			minSim := 1.0
			for _, sel := range selected {
				sim := genreSimilarity(cand.candidate.Genres, sel.candidate.Genres)
				if sim < minSim {
					minSim = sim
				}
			}
			mmr := diversityFactor*(1-minSim) + (1-diversityFactor)*cand.score
			if mmr > bestScore {
				bestScore = mmr
				bestIdx = i
			}
		}
		selected = append(selected, remaining[bestIdx])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}
	return selected
}

// genreSimilarity is |gCand ∩ gSelected| / max(|gCand|, |gSelected|, 1), the
// overlap measure spec §4.4 step 5 names for the MMR pass.
func genreSimilarity(a, b []string) float64 {
	setB := toSet(b)
	overlap := genreOverlap(a, setB)
	denom := len(a)
	if len(b) > denom {
		denom = len(b)
	}
	if denom == 0 {
		denom = 1
	}
	return float64(overlap) / float64(denom)
}
