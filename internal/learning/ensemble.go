package learning

// Ensemble runs all four selectors and returns the majority vote, ties
// broken by the Thompson pick, per spec §4.5 "Action selection ensemble".
type Ensemble struct {
	EpsilonGreedy *EpsilonGreedySelector
	Thompson      *ThompsonSelector
	UCB1          *UCB1Selector
	LinUCB        *LinUCBSelector
}

func NewEnsemble(q *QTable) *Ensemble {
	return &Ensemble{
		EpsilonGreedy: NewEpsilonGreedySelector(q),
		Thompson:      NewThompsonSelector(Actions),
		UCB1:          NewUCB1Selector(Actions),
		LinUCB:        NewLinUCBSelector(Actions),
	}
}

// Select runs the vote. features may be nil when no 10-dim context vector is
// available, per spec §4.5's "if a 10-dim context feature vector is
// available" qualifier on LinUCB; in that case only three selectors vote.
func (e *Ensemble) Select(state string, features []float64) string {
	votes := map[string]int{}
	thompsonPick := e.Thompson.Select(Actions)

	votes[e.EpsilonGreedy.Select(state, Actions)]++
	votes[thompsonPick]++
	votes[e.UCB1.Select(Actions)]++
	if len(features) == linUCBDim {
		votes[e.LinUCB.Select(features, Actions)]++
	}

	best := thompsonPick
	bestVotes := 0
	for action, count := range votes {
		if count > bestVotes || (count == bestVotes && action == thompsonPick) {
			bestVotes = count
			best = action
		}
	}
	return best
}
