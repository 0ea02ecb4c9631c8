package learning

import (
	"testing"

	"github.com/rcliao/recoengine/internal/core"
)

func TestStateForIsStableAndDistinct(t *testing.T) {
	a := StateFor(FeedbackContext{UserSegment: core.SegmentRegular, Genres: []string{"Drama"}})
	b := StateFor(FeedbackContext{UserSegment: core.SegmentRegular, Genres: []string{"Drama"}})
	if a != b {
		t.Fatalf("StateFor() not stable: %q != %q", a, b)
	}
	c := StateFor(FeedbackContext{UserSegment: core.SegmentNew, Genres: []string{"Drama"}})
	if a == c {
		t.Fatalf("StateFor() did not distinguish different segments")
	}
}

func TestStateForHasVersionedPrefixAndLabeledFields(t *testing.T) {
	got := StateFor(FeedbackContext{
		UserSegment: core.SegmentNew,
		Genres:      []string{"Drama", "Action"},
		Mood:        "upbeat",
		ContentType: "movie",
	})
	want := "v2|Action,Drama|mood:upbeat|seg:new|type:movie"
	if got != want {
		t.Fatalf("StateFor() = %q, want %q", got, want)
	}
}

func TestStateForDefaultsMoodAndContentTypeWhenUnset(t *testing.T) {
	got := StateFor(FeedbackContext{UserSegment: core.SegmentCasual, Genres: []string{"Comedy"}})
	want := "v2|Comedy|mood:neutral|seg:casual|type:all"
	if got != want {
		t.Fatalf("StateFor() = %q, want %q", got, want)
	}
}

func TestStateForCapsGenresAtTwoAndSortsThem(t *testing.T) {
	got := StateFor(FeedbackContext{UserSegment: core.SegmentPower, Genres: []string{"Sci-Fi", "Action", "Drama"}})
	want := "v2|Action,Sci-Fi|mood:neutral|seg:power|type:all"
	if got != want {
		t.Fatalf("StateFor() = %q, want %q (only the first two genres, sorted, should appear)", got, want)
	}
}
