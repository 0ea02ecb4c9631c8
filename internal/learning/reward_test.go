package learning

import (
	"testing"

	"github.com/rcliao/recoengine/internal/core"
)

func TestRewardForActionCompletionTiers(t *testing.T) {
	cases := []struct {
		name       string
		action     core.UserAction
		completion float64
		want       float64
	}{
		{"skipped", core.ActionSkipped, 0, -0.25},
		{"dismissed", core.ActionDismissed, 0, -0.2},
		{"added watchlist", core.ActionAddedWatchlist, 0, 0.5},
		{"clicked", core.ActionClicked, 0, 0.1},
		{"watched low completion", core.ActionWatched, 0.2, -0.1 + 0.4*0.4},
		{"watched mid completion", core.ActionWatched, 0.7, 0.4 + 0.3*(0.2/0.39)},
		{"watched high completion", core.ActionWatched, 0.95, 0.9 + 0.1*0.5},
		{"unknown action", core.UserAction("bogus"), 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RewardForAction(tc.action, tc.completion, 0)
			if diff := got - tc.want; diff > 1e-6 || diff < -1e-6 {
				t.Fatalf("RewardForAction(%v, %v) = %v, want %v", tc.action, tc.completion, got, tc.want)
			}
		})
	}
}

func TestRewardForActionRatingClamped(t *testing.T) {
	if got := RewardForAction(core.ActionRated, 0, 10); got != 1 {
		t.Fatalf("rating 10 = %v, want 1", got)
	}
	if got := RewardForAction(core.ActionRated, 0, 0); got != -1 {
		t.Fatalf("rating 0 = %v, want -1", got)
	}
	if got := RewardForAction(core.ActionRated, 0, 5); got != 0 {
		t.Fatalf("rating 5 = %v, want 0", got)
	}
}
