package embedding

import (
	"context"
	"math"
	"testing"
)

func TestNormalizeUnitNorm(t *testing.T) {
	v := []float32{3, 4, 0}
	n := Normalize(v)
	if !IsUnitNorm(n, 1e-6) {
		t.Fatalf("expected unit norm, got %v (norm=%f)", n, L2Norm(n))
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	v := []float32{0, 0, 0}
	n := Normalize(v)
	for _, x := range n {
		if x != 0 {
			t.Fatalf("expected zero vector to stay zero, got %v", n)
		}
	}
}

func TestCosineSimilaritySymmetric(t *testing.T) {
	u := Normalize([]float32{1, 2, 3})
	v := Normalize([]float32{4, -1, 2})
	a := CosineSimilarity(u, v)
	b := CosineSimilarity(v, u)
	if math.Abs(a-b) > 1e-6 {
		t.Fatalf("expected symmetric similarity, got %f vs %f", a, b)
	}
}

func TestCosineSimilaritySelf(t *testing.T) {
	u := Normalize([]float32{1, 2, 3, 4})
	if sim := CosineSimilarity(u, u); math.Abs(sim-1) > 1e-6 {
		t.Fatalf("expected self-similarity 1, got %f", sim)
	}
}

func TestPoincareDistanceFallsBackToInfOutsideBall(t *testing.T) {
	u := []float32{1, 0} // on the boundary, denom collapses to 0
	v := []float32{0, 0}
	d := PoincareDistance(u, v, -1.0)
	if !math.IsInf(d, 1) {
		t.Fatalf("expected +Inf fallback, got %f", d)
	}
}

func TestPoincareDistanceSymmetric(t *testing.T) {
	u := []float32{0.1, 0.2}
	v := []float32{0.2, -0.1}
	a := PoincareDistance(u, v, -1.0)
	b := PoincareDistance(v, u, -1.0)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("expected symmetric poincare distance, got %f vs %f", a, b)
	}
}

func TestExpMap0StaysInsideBall(t *testing.T) {
	v := []float32{5, 5, 5}
	mapped := ExpMap0(v, -1.0)
	if L2Norm(mapped) >= 1 {
		t.Fatalf("expected mapped vector inside unit ball, norm=%f", L2Norm(mapped))
	}
}

func TestQuantizeRoundTrip(t *testing.T) {
	v := []float32{-1, -0.5, 0, 0.5, 1}
	q := Quantize(v)
	recon := Dequantize(q)
	for i := range v {
		if math.Abs(float64(v[i]-recon[i])) > 0.05 {
			t.Fatalf("reconstruction error too large at %d: %f vs %f", i, v[i], recon[i])
		}
	}
}

func TestDeterministicEmbedderIsUnitNormAndStable(t *testing.T) {
	e := DeterministicEmbedder{}
	a, err := e.Embed(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(a) != 384 {
		t.Fatalf("expected 384 dims, got %d", len(a))
	}
	if !IsUnitNorm(a, 1e-4) {
		t.Fatalf("expected unit norm, got norm=%f", L2Norm(a))
	}

	b, _ := e.Embed(context.Background(), "hello world")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("expected deterministic output, differs at %d", i)
		}
	}
}

func TestCachedEmbedderServesFromCache(t *testing.T) {
	calls := 0
	inner := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return DeterministicEmbedder{}.Embed(ctx, text)
	})

	cached := NewCachedEmbedder(inner, 0, 0)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, "x"); err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if _, err := cached.Embed(ctx, "x"); err != nil {
		t.Fatalf("embed failed: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 underlying call, got %d", calls)
	}
}

func TestEmbedBatchPreservesOrderAndIsolatesFailures(t *testing.T) {
	inner := embedderFunc(func(ctx context.Context, text string) ([]float32, error) {
		if text == "bad" {
			return nil, EmbeddingError("boom", nil)
		}
		return DeterministicEmbedder{}.Embed(ctx, text)
	})

	texts := []string{"a", "bad", "c"}
	results := EmbedBatch(context.Background(), inner, texts, DefaultBatchConfig())

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if results[1].Err == nil {
		t.Fatalf("expected entry 1 to fail")
	}
	if results[0].Err != nil || results[2].Err != nil {
		t.Fatalf("expected neighbors of failed entry to succeed")
	}
}

type embedderFunc func(ctx context.Context, text string) ([]float32, error)

func (f embedderFunc) Embed(ctx context.Context, text string) ([]float32, error) {
	return f(ctx, text)
}
