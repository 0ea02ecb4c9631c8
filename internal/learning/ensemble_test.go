package learning

import "testing"

func TestEnsembleSelectReturnsValidAction(t *testing.T) {
	q := NewQTable()
	e := NewEnsemble(q)
	got := e.Select("s1", nil)
	found := false
	for _, a := range Actions {
		if a == got {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("Select() = %q, not a member of Actions", got)
	}
}

func TestEnsembleSelectUsesLinUCBOnlyWithFullFeatureVector(t *testing.T) {
	q := NewQTable()
	e := NewEnsemble(q)
	short := make([]float64, linUCBDim-1)
	// Should not panic when features are short; LinUCB simply abstains.
	_ = e.Select("s1", short)

	full := make([]float64, linUCBDim)
	_ = e.Select("s1", full)
}
