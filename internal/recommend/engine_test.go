package recommend

import (
	"context"
	"testing"
	"time"

	"github.com/rcliao/recoengine/internal/core"
)

func ratingPtr(v float64) *float64 { return &v }

func TestColdStartStrategySortsByRatingDescNullAsZero(t *testing.T) {
	cands := []Candidate{
		{ContentID: "a", Rating: ratingPtr(3)},
		{ContentID: "b", Rating: nil},
		{ContentID: "c", Rating: ratingPtr(8)},
	}
	out, err := coldStartStrategy(context.Background(), strategyDeps{candidates: cands})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].candidate.ContentID != "c" || out[1].candidate.ContentID != "a" || out[2].candidate.ContentID != "b" {
		t.Fatalf("expected order c,a,b got %v %v %v", out[0].candidate.ContentID, out[1].candidate.ContentID, out[2].candidate.ContentID)
	}
}

func TestGenreMatchStrategyScoring(t *testing.T) {
	cands := []Candidate{
		{ContentID: "a", Genres: []string{"Comedy", "Drama"}},
		{ContentID: "b", Genres: []string{"Comedy"}},
	}
	pc := core.PatternContext{TopGenres: []string{"Comedy"}}
	out, err := genreMatchStrategy(context.Background(), strategyDeps{candidates: cands, pc: pc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// b: 1/1 = 1.0, a: 1/2 = 0.5 -> b ranks first
	if out[0].candidate.ContentID != "b" {
		t.Fatalf("expected b to rank first, got %s", out[0].candidate.ContentID)
	}
}

func TestNetworkBasedFallsBackToColdStartWithNoWeights(t *testing.T) {
	cands := []Candidate{{ContentID: "a", Rating: ratingPtr(5)}}
	out, err := networkBasedStrategy(context.Background(), strategyDeps{candidates: cands, pref: core.UserPreference{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0].reason != "Popular content you might enjoy" {
		t.Fatalf("expected cold start fallback, got %+v", out)
	}
}

func TestDiversifyPrefersNovelGenreOverRawScore(t *testing.T) {
	ranked := []scoredCandidate{
		{candidate: Candidate{ContentID: "a", Genres: []string{"Drama"}}, score: 1.0},
		{candidate: Candidate{ContentID: "b", Genres: []string{"Drama"}}, score: 0.9},
		{candidate: Candidate{ContentID: "c", Genres: []string{"Comedy"}}, score: 0.5},
	}
	out := diversify(ranked, 0.5)
	if out[0].candidate.ContentID != "a" {
		t.Fatalf("expected top item unchanged, got %s", out[0].candidate.ContentID)
	}
	if out[1].candidate.ContentID != "c" {
		t.Fatalf("expected comedy item to be favored for diversity at slot 2, got %s", out[1].candidate.ContentID)
	}
}

func TestResolveContextDefaultsPlatformAndComputesTopGenres(t *testing.T) {
	pref := core.UserPreference{GenreWeights: map[string]float64{"Drama": 5, "Comedy": 3, "Horror": 1, "Action": 9}}
	pc := resolveContext(Request{}, pref, time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC))
	if pc.Platform != core.PlatformWeb {
		t.Fatalf("expected default platform web, got %s", pc.Platform)
	}
	if len(pc.TopGenres) != 3 || pc.TopGenres[0] != "Action" {
		t.Fatalf("expected top genre Action first, got %v", pc.TopGenres)
	}
}

func TestFilterAudienceExcludesHorrorForKids(t *testing.T) {
	cands := []Candidate{
		{ContentID: "a", Genres: []string{"Horror"}},
		{ContentID: "b", Genres: []string{"Comedy"}},
	}
	out := filterAudience(cands, core.AudienceKids)
	if len(out) != 1 || out[0].ContentID != "b" {
		t.Fatalf("expected only b to survive kids filter, got %+v", out)
	}
}

func TestViolatesAudienceDetectsForgottenPreFilter(t *testing.T) {
	byID := map[string]Candidate{"a": {ContentID: "a", Genres: []string{"Horror"}}}
	results := []Result{{ContentID: "a"}}
	if !violatesAudience(results, byID, core.AudienceKids) {
		t.Fatalf("expected violation to be detected")
	}
}
