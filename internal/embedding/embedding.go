// Package embedding provides the text->vector contract and the vector math
// (cosine, Poincaré, normalization, quantization) used by every other
// component. The concrete model call is an external collaborator (spec §1);
// this package depends only on the Embedder interface, with gemini.go
// providing one concrete implementation.
package embedding

import (
	"context"
	"math"

	"github.com/rcliao/recoengine/internal/core"
)

// Embedder turns text into a unit-norm f32[core.EmbeddingDim] vector.
// Implementations must normalize their output before returning it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// BatchEmbedder is an optional capability: batch embedding with bounded
// parallelism. A failure on one entry must not lose its neighbors' results.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([]BatchResult, error)
}

// BatchResult pairs an embedding with any per-entry failure, preserving
// input order even when some entries fail.
type BatchResult struct {
	Vector []float32
	Err    error
}

// Normalize returns v scaled to unit L2 norm. The zero vector is returned
// unchanged (cold-start sentinel, per spec §3 UserPreference invariant).
func Normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// L2Norm returns the Euclidean norm of v.
func L2Norm(v []float32) float64 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	return math.Sqrt(sumSq)
}

// IsUnitNorm reports whether v's L2 norm is within tol of 1, per the
// invariant in spec §8 ("abs(‖e‖ − 1) < 1e-4").
func IsUnitNorm(v []float32, tol float64) bool {
	if len(v) == 0 {
		return true
	}
	return math.Abs(L2Norm(v)-1) < tol
}

// Dot is the plain inner product of two equal-length vectors.
func Dot(a, b []float32) float64 {
	var sum float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// CosineDistance is 1 - <u,v> for unit vectors, per spec §4.1(b).
func CosineDistance(u, v []float32) float64 {
	return 1 - Dot(u, v)
}

// CosineSimilarity is 1 - cosine distance.
func CosineSimilarity(u, v []float32) float64 {
	return 1 - CosineDistance(u, v)
}

// EmbeddingError wraps a model failure into the core taxonomy.
func EmbeddingError(reason string, err error) error {
	return &core.EmbeddingError{Reason: reason, Err: err}
}
