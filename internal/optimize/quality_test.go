package optimize

import (
	"testing"

	"github.com/rcliao/recoengine/internal/store"
)

func TestMeasureQualityAveragesWithinGenre(t *testing.T) {
	sample := []store.ContentVector{
		{ID: "a", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "b", Genres: []string{"Drama"}, Embedding: unit(4, 0)},
		{ID: "c", Genres: []string{"Comedy"}, Embedding: unit(4, 1)},
	}
	q := measureQuality(sample)
	if q != 1.0 {
		t.Fatalf("measureQuality() = %v, want 1.0 (identical Drama pair, Comedy has no pair)", q)
	}
}

func TestMeasureQualityEmptySample(t *testing.T) {
	if q := measureQuality(nil); q != 0 {
		t.Fatalf("measureQuality(nil) = %v, want 0", q)
	}
}

func TestMeasureQualityIgnoresEmptyGenres(t *testing.T) {
	sample := []store.ContentVector{
		{ID: "a", Genres: nil, Embedding: unit(4, 0)},
		{ID: "b", Genres: nil, Embedding: unit(4, 0)},
	}
	if q := measureQuality(sample); q != 0 {
		t.Fatalf("measureQuality() = %v, want 0 for ungenred content", q)
	}
}
