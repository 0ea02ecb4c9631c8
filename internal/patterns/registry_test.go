package patterns

import "testing"

func TestParsePatternID(t *testing.T) {
	id, err := parsePatternID("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected 42, got %d", id)
	}
}

func TestParsePatternIDInvalid(t *testing.T) {
	if _, err := parsePatternID("not-a-number"); err == nil {
		t.Fatalf("expected error for non-numeric id")
	}
}

func TestScoreWeighting(t *testing.T) {
	s := scored{score: similarityWeight*0.9 + successWeight*0.2}
	want := 0.4*0.9 + 0.6*0.2
	if s.score != want {
		t.Fatalf("expected %f, got %f", want, s.score)
	}
}

func TestSeedDefinitionsCoverAllTaskTypes(t *testing.T) {
	seen := map[string]bool{}
	for _, d := range seedDefinitions {
		seen[string(d.TaskType)] = true
	}
	for _, tt := range []string{"cold_start", "genre_match", "similar_content", "time_based", "network_based"} {
		if !seen[tt] {
			t.Fatalf("expected seed definition for task type %s", tt)
		}
	}
}
