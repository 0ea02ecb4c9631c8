package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
)

// DeterministicEmbedder derives a reproducible unit vector from a SHA-256
// stream seeded by the input text. It has no semantic meaning and exists so
// tests and offline tooling can exercise the pattern/recommendation/learning
// pipelines without a live model credential; no third-party library offers
// this (it is pure test plumbing, not a system concern), so the standard
// library suffices here.
type DeterministicEmbedder struct{}

func (DeterministicEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	out := make([]float32, 0, 384)
	seed := []byte(text)
	block := sha256.Sum256(seed)
	for len(out) < 384 {
		next := sha256.Sum256(append(seed, block[:]...))
		block = next
		for i := 0; i+4 <= len(block) && len(out) < 384; i += 4 {
			u := binary.LittleEndian.Uint32(block[i : i+4])
			// Map to roughly [-1, 1].
			out = append(out, float32(int32(u))/float32(1<<31))
		}
	}
	return Normalize(out), nil
}
