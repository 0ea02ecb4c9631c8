package learning

import "testing"

func TestUCB1SelectsUnpulledArmsFirst(t *testing.T) {
	actions := []string{"a", "b", "c"}
	s := NewUCB1Selector(actions)
	s.Update("a", 1.0)
	s.Update("a", 1.0)
	// b and c are still unpulled; Select must prefer one of them over a.
	got := s.Select(actions)
	if got != "b" && got != "c" {
		t.Fatalf("Select() = %q, want an unpulled arm (b or c)", got)
	}
}

func TestUCB1PrefersHigherMeanAfterAllPulled(t *testing.T) {
	actions := []string{"a", "b"}
	s := NewUCB1Selector(actions)
	for i := 0; i < 50; i++ {
		s.Update("a", 1.0)
		s.Update("b", 0.0)
	}
	if got := s.Select(actions); got != "a" {
		t.Fatalf("Select() = %q, want a (higher mean)", got)
	}
}

func TestThompsonSelectorUpdateShiftsPosterior(t *testing.T) {
	actions := []string{"a", "b"}
	s := NewThompsonSelector(actions)
	for i := 0; i < 200; i++ {
		s.Update("a", 1.0)
		s.Update("b", -1.0)
	}
	wins := 0
	for i := 0; i < 200; i++ {
		if s.Select(actions) == "a" {
			wins++
		}
	}
	if wins < 150 {
		t.Fatalf("expected arm a to dominate selection after strong positive updates, got %d/200", wins)
	}
}

func TestSampleBetaBounds(t *testing.T) {
	for i := 0; i < 100; i++ {
		v := sampleBeta(2, 3)
		if v < 0 || v > 1 {
			t.Fatalf("sampleBeta returned out-of-range value %v", v)
		}
	}
}

func TestEpsilonGreedyDecay(t *testing.T) {
	q := NewQTable()
	s := NewEpsilonGreedySelector(q)
	start := s.Epsilon()
	for i := 0; i < 100; i++ {
		s.DecayEpsilon()
	}
	if s.Epsilon() >= start {
		t.Fatalf("expected epsilon to decay below %v, got %v", start, s.Epsilon())
	}
	if s.Epsilon() < epsilonMin {
		t.Fatalf("epsilon decayed below floor: %v", s.Epsilon())
	}
}

func TestEpsilonGreedyDecayForCycleUsesDistinctRate(t *testing.T) {
	q := NewQTable()
	per := NewEpsilonGreedySelector(q)
	cycle := NewEpsilonGreedySelector(q)

	per.DecayEpsilon()
	cycle.DecayEpsilonForCycle()

	// 0.99 (per-cycle) < 0.995 (per-feedback), so one call of the per-cycle
	// decay shrinks epsilon further than one call of the per-feedback decay.
	if cycle.Epsilon() >= per.Epsilon() {
		t.Fatalf("expected DecayEpsilonForCycle's 0.99 factor to shrink epsilon more per call than DecayEpsilon's 0.995; per=%v cycle=%v", per.Epsilon(), cycle.Epsilon())
	}
}

func TestLinUCBPrefersArmAlignedWithReward(t *testing.T) {
	actions := []string{"a", "b"}
	s := NewLinUCBSelector(actions)
	x := make([]float64, linUCBDim)
	x[0] = 1
	for i := 0; i < 30; i++ {
		s.Update("a", x, 1.0)
		s.Update("b", x, -1.0)
	}
	if got := s.Select(x, actions); got != "a" {
		t.Fatalf("Select() = %q, want a", got)
	}
}

func TestInvertIdentity(t *testing.T) {
	m := [][]float64{{1, 0}, {0, 1}}
	inv := invert(m)
	for i := range m {
		for j := range m[i] {
			if (i == j && (inv[i][j] < 0.999 || inv[i][j] > 1.001)) || (i != j && (inv[i][j] < -0.001 || inv[i][j] > 0.001)) {
				t.Fatalf("invert(identity)[%d][%d] = %v", i, j, inv[i][j])
			}
		}
	}
}
