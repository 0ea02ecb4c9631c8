package learning

import (
	"testing"

	"github.com/rcliao/recoengine/internal/core"
)

func TestReplayBufferEvictsOldestAtCapacity(t *testing.T) {
	b := NewReplayBuffer()
	b.capacity = 3
	for i := 0; i < 5; i++ {
		b.Insert(core.ReplayExperience{State: "s", Action: "a"}, 0.5)
	}
	if got := b.Len(); got != 3 {
		t.Fatalf("Len() = %d, want 3", got)
	}
}

func TestReplayBufferSampleReturnsWeightsInRange(t *testing.T) {
	b := NewReplayBuffer()
	for i := 0; i < 10; i++ {
		b.Insert(core.ReplayExperience{State: "s", Action: "a"}, float64(i))
	}
	batch, weights, indices := b.Sample()
	if len(batch) != 10 {
		t.Fatalf("Sample() batch len = %d, want 10 (capped by buffer size)", len(batch))
	}
	if len(weights) != len(batch) {
		t.Fatalf("weights len = %d, want %d", len(weights), len(batch))
	}
	if len(indices) != len(batch) {
		t.Fatalf("indices len = %d, want %d", len(indices), len(batch))
	}
	for _, w := range weights {
		if w < 0 || w > 1.0001 {
			t.Fatalf("weight out of [0,1]: %v", w)
		}
	}
}

func TestReplayBufferSampleEmpty(t *testing.T) {
	b := NewReplayBuffer()
	batch, weights, indices := b.Sample()
	if batch != nil || weights != nil || indices != nil {
		t.Fatalf("expected nil, nil, nil for empty buffer, got %v, %v, %v", batch, weights, indices)
	}
}

func TestReplayBufferUpdatePriorityRescoresSampledItem(t *testing.T) {
	b := NewReplayBuffer()
	b.Insert(core.ReplayExperience{State: "s", Action: "a"}, 0.1)
	before := b.items[0].priority
	b.UpdatePriority(0, 5.0)
	after := b.items[0].priority
	if after <= before {
		t.Fatalf("expected priority to increase after re-scoring with a larger TD error, before=%v after=%v", before, after)
	}
}

func TestReplayBufferUpdatePriorityIgnoresStaleIndex(t *testing.T) {
	b := NewReplayBuffer()
	b.Insert(core.ReplayExperience{State: "s", Action: "a"}, 0.1)
	b.UpdatePriority(5, 5.0) // out of range; must not panic
}

func TestReplayBufferTailReturnsMostRecent(t *testing.T) {
	b := NewReplayBuffer()
	for i := 0; i < 5; i++ {
		b.Insert(core.ReplayExperience{Action: string(rune('a' + i))}, 0.1)
	}
	tail := b.Tail(2)
	if len(tail) != 2 {
		t.Fatalf("Tail(2) len = %d, want 2", len(tail))
	}
	if tail[1].Action != "e" {
		t.Fatalf("Tail(2) last action = %q, want e", tail[1].Action)
	}
}

func TestReplayBufferBetaAnneals(t *testing.T) {
	b := NewReplayBuffer()
	for i := 0; i < 50; i++ {
		b.Insert(core.ReplayExperience{State: "s", Action: "a"}, 0.3)
	}
	before := b.beta
	b.Sample()
	if b.beta <= before {
		t.Fatalf("expected beta to anneal upward, before=%v after=%v", before, b.beta)
	}
}
