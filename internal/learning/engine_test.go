package learning

import (
	"context"
	"testing"

	"github.com/rcliao/recoengine/internal/core"
)

func TestSelectActionRecordsVisitAndReturnsValidAction(t *testing.T) {
	e := NewEngine(nil, nil)
	fc := FeedbackContext{UserSegment: core.SegmentRegular, TimeOfDay: core.TimeEvening, Genres: []string{"Drama"}}
	action := e.SelectAction(fc)

	found := false
	for _, a := range Actions {
		if a == action {
			found = true
		}
	}
	if !found {
		t.Fatalf("SelectAction() = %q, not in Actions", action)
	}
	if got := e.q.VisitCount(StateFor(fc)); got != 1 {
		t.Fatalf("VisitCount() = %d, want 1", got)
	}
}

func TestRecordFeedbackUpdatesQTableAndReplayBuffer(t *testing.T) {
	e := NewEngine(nil, nil)
	fb := Feedback{
		UserID:            "u1",
		ContentID:         "c1",
		Action:            core.ActionCompleted,
		CompletionPercent: 1.0,
		Context: FeedbackContext{
			UserSegment: core.SegmentPower,
			TimeOfDay:   core.TimeNight,
			Genres:      []string{"Sci-Fi"},
		},
	}
	state := StateFor(fb.Context)
	before := e.q.Mean(state, "content_based")

	if err := e.RecordFeedback(context.Background(), "content_based", fb); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}

	after := e.q.Mean(state, "content_based")
	if after <= before {
		t.Fatalf("expected Q-value to increase after a positive-reward completion, before=%v after=%v", before, after)
	}
	if e.replay.Len() != 1 {
		t.Fatalf("replay buffer len = %d, want 1", e.replay.Len())
	}
}

func TestRecordFeedbackDoesNotPersistBeforeThreshold(t *testing.T) {
	e := NewEngine(nil, nil)
	fb := Feedback{
		Action: core.ActionSkipped,
		Context: FeedbackContext{
			UserSegment: core.SegmentCasual,
			TimeOfDay:   core.TimeMorning,
			Genres:      []string{"Comedy"},
		},
	}
	// store and patterns are nil; RecordFeedback must not touch either before
	// the persistEvery-episode threshold or without a PatternID.
	for i := 0; i < persistEvery-1; i++ {
		if err := e.RecordFeedback(context.Background(), "recency_boosted", fb); err != nil {
			t.Fatalf("RecordFeedback() error = %v", err)
		}
	}
	if e.episodes != persistEvery-1 {
		t.Fatalf("episodes = %d, want %d", e.episodes, persistEvery-1)
	}
}
