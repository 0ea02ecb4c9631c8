package httpapi

import (
	"errors"
	"testing"

	"github.com/rcliao/recoengine/internal/core"
	"github.com/rcliao/recoengine/internal/recommend"
)

func TestCandidateFromPreservesFields(t *testing.T) {
	rating := 8.5
	c := core.Content{
		ID: "c1", Kind: core.ContentSeries, Title: "Show", Overview: "ov",
		Genres: []string{"Drama"}, Rating: &rating, NetworkName: "HBO",
		Embedding: []float32{1, 0, 0},
	}
	got := candidateFrom(c)
	if got.ContentID != "c1" || got.Kind != core.ContentSeries || got.Network != "HBO" {
		t.Fatalf("candidateFrom() = %+v", got)
	}
	if got.Rating == nil || *got.Rating != rating {
		t.Fatalf("candidateFrom() rating = %v, want %v", got.Rating, rating)
	}
}

func TestFeedbackContextForUsesRequestGenresFirst(t *testing.T) {
	req := recommend.Request{Genres: []string{"Comedy"}, TimeOfDay: core.TimeEvening}
	pref := core.UserPreference{GenreWeights: map[string]float64{"Drama": 0.9}}

	fc := feedbackContextFor(req, pref)
	if len(fc.Genres) != 1 || fc.Genres[0] != "Comedy" {
		t.Fatalf("Genres = %v, want [Comedy] (request genres should win over preference weights)", fc.Genres)
	}
	if fc.TimeOfDay != core.TimeEvening {
		t.Fatalf("TimeOfDay = %q, want %q", fc.TimeOfDay, core.TimeEvening)
	}
}

func TestFeedbackContextForFallsBackToTopWeightedGenres(t *testing.T) {
	req := recommend.Request{}
	pref := core.UserPreference{GenreWeights: map[string]float64{"Drama": 0.9, "Comedy": 0.2}}

	fc := feedbackContextFor(req, pref)
	if len(fc.Genres) != 2 || fc.Genres[0] != "Drama" || fc.Genres[1] != "Comedy" {
		t.Fatalf("Genres = %v, want [Drama Comedy]", fc.Genres)
	}
}

func TestFeedbackContextForDerivesSegmentFromHistoryLength(t *testing.T) {
	req := recommend.Request{}
	pref := core.UserPreference{}
	fc := feedbackContextFor(req, pref)
	if fc.UserSegment != core.SegmentNew {
		t.Fatalf("UserSegment = %q, want %q for a user with no watch history", fc.UserSegment, core.SegmentNew)
	}
}

func TestTopWeightedGenresEmptyMapReturnsEmpty(t *testing.T) {
	if got := topWeightedGenres(nil, 2); len(got) != 0 {
		t.Fatalf("topWeightedGenres(nil, 2) = %v, want empty", got)
	}
}

func TestTopWeightedGenresCapsAtN(t *testing.T) {
	weights := map[string]float64{"Drama": 0.9, "Comedy": 0.2, "Horror": 0.5}
	got := topWeightedGenres(weights, 2)
	if len(got) != 2 || got[0] != "Drama" || got[1] != "Horror" {
		t.Fatalf("topWeightedGenres() = %v, want [Drama Horror]", got)
	}
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(&core.NotFoundError{Entity: "user_preference", ID: "u1"}) {
		t.Fatal("isNotFound() = false for a *core.NotFoundError")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatal("isNotFound() = true for an unrelated error")
	}
}

func TestDefaultString(t *testing.T) {
	if got := defaultString("", "fallback"); got != "fallback" {
		t.Fatalf("defaultString(\"\", fallback) = %q", got)
	}
	if got := defaultString("set", "fallback"); got != "set" {
		t.Fatalf("defaultString(set, fallback) = %q", got)
	}
}
