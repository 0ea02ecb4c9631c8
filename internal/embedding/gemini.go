package embedding

import (
	"context"
	"fmt"

	"github.com/rcliao/recoengine/internal/core"
	"google.golang.org/genai"
)

// GeminiEmbedder is a concrete Embedder backed by the Gemini embedding
// model, truncated/projected to core.EmbeddingDim via Matryoshka output
// dimensionality. Grounded directly on the teacher's Client.GenerateEmbedding.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder constructs a client against the Gemini API backend.
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed implements Embedder. The model's raw output is normalized before
// returning, since the model is not contractually guaranteed to emit a unit
// vector (spec §6 Embedding model).
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: text}},
		Role:  "user",
	}}

	dims := int32(core.EmbeddingDim)
	cfg := &genai.EmbedContentConfig{OutputDimensionality: &dims}

	resp, err := g.client.Models.EmbedContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, EmbeddingError("model call failed", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 || resp.Embeddings[0] == nil {
		return nil, EmbeddingError("no embedding values returned", nil)
	}

	values := resp.Embeddings[0].Values
	vec := make([]float32, len(values))
	copy(vec, values)

	return Normalize(vec), nil
}
