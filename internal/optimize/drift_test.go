package optimize

import (
	"math"
	"testing"

	"github.com/rcliao/recoengine/internal/embedding"
	"github.com/rcliao/recoengine/internal/store"
)

func TestCentroidOfAverages(t *testing.T) {
	members := []store.ContentVector{
		{Embedding: []float32{1, 0}},
		{Embedding: []float32{0, 1}},
	}
	c := centroidOf(members)
	if c[0] != 0.5 || c[1] != 0.5 {
		t.Fatalf("centroidOf() = %v, want [0.5, 0.5]", c)
	}
}

func TestPrimaryGenreEmpty(t *testing.T) {
	if g := primaryGenre(nil); g != "" {
		t.Fatalf("primaryGenre(nil) = %q, want empty", g)
	}
}

func TestCentroidOfEmpty(t *testing.T) {
	if c := centroidOf(nil); c != nil {
		t.Fatalf("centroidOf(nil) = %v, want nil", c)
	}
}

func TestDriftMovesTowardCentroidUnitNorm(t *testing.T) {
	// Two far-apart unit vectors drifting toward their midpoint should
	// each shrink slightly toward it and renormalize to unit length.
	a := []float32{1, 0}
	centroid := []float32{0.5, 0.5}
	nudged := make([]float32, 2)
	for i := range a {
		nudged[i] = a[i] + float32(driftShrinkFactor)*(centroid[i]-a[i])
	}
	if nudged[0] >= a[0] || nudged[1] <= a[1] {
		t.Fatalf("nudged vector %v did not move toward centroid %v", nudged, centroid)
	}
	n := embedding.Normalize(nudged)
	norm := math.Sqrt(float64(n[0]*n[0] + n[1]*n[1]))
	if math.Abs(norm-1) > 1e-5 {
		t.Fatalf("renormalized vector has norm %v, want 1", norm)
	}
}
