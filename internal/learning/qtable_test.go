package learning

import "testing"

func TestQTableUpdateMovesTowardTarget(t *testing.T) {
	q := NewQTable()
	before := q.Mean("s1", "content_based")
	for i := 0; i < 20; i++ {
		q.Update("s1", "content_based", 1.0, "s1", true, Actions)
	}
	after := q.Mean("s1", "content_based")
	if after <= before {
		t.Fatalf("expected mean to increase toward reward 1.0, before=%v after=%v", before, after)
	}
	if after > 1.0001 {
		t.Fatalf("mean overshot target: %v", after)
	}
}

func TestQTableLoadSeedsBothTables(t *testing.T) {
	q := NewQTable()
	q.Load("s1", "content_based", 0.5, 3)
	if got := q.Mean("s1", "content_based"); got != 0.5 {
		t.Fatalf("Mean() = %v, want 0.5", got)
	}
}

func TestQTableSnapshotCoversBothTables(t *testing.T) {
	q := NewQTable()
	q.Update("s1", "content_based", 0.3, "s1", true, Actions)
	q.Update("s1", "genre_weighted", -0.1, "s1", true, Actions)
	snap := q.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() returned %d entries, want 2", len(snap))
	}
}

func TestQTableVisitCount(t *testing.T) {
	q := NewQTable()
	q.RecordVisit("s1")
	q.RecordVisit("s1")
	if got := q.VisitCount("s1"); got != 2 {
		t.Fatalf("VisitCount() = %d, want 2", got)
	}
}

func TestArgmaxOverPicksHighestValue(t *testing.T) {
	table := map[qKey]float64{
		{"s1", "content_based"}: 0.1,
		{"s1", "discovery_mode"}: 0.9,
	}
	got := argmaxOver(table, "s1", []string{"content_based", "discovery_mode"})
	if got != "discovery_mode" {
		t.Fatalf("argmaxOver() = %q, want discovery_mode", got)
	}
}
