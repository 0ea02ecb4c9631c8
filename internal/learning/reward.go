package learning

import "github.com/rcliao/recoengine/internal/core"

// RewardForAction maps a UserAction (and, for "rated", a 0-10 rating) to a
// scalar reward per spec §4.4's reward rubric. completionPercent is only
// consulted for ActionWatched/ActionCompleted.
func RewardForAction(action core.UserAction, completionPercent float64, rating float64) float64 {
	switch action {
	case core.ActionCompleted:
		return 0.9 + 0.1*clamp01(completionPercent-0.9)/0.1
	case core.ActionWatched:
		switch {
		case completionPercent >= 0.9:
			return 0.9 + 0.1*clamp01((completionPercent-0.9)/0.1)
		case completionPercent >= 0.5:
			return 0.4 + 0.3*clamp01((completionPercent-0.5)/0.39)
		default:
			return -0.1 + 0.4*clamp01(completionPercent/0.5)
		}
	case core.ActionSkipped:
		return -0.25
	case core.ActionRated:
		r := (rating - 5) / 5
		return clamp(r, -1, 1)
	case core.ActionAddedWatchlist:
		return 0.5
	case core.ActionDismissed:
		return -0.2
	case core.ActionClicked:
		return 0.1
	default:
		return 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 { return clamp(v, 0, 1) }
