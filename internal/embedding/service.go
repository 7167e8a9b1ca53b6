// Package embedding turns interview text into vectors through a
// provider-abstracted client, with batching and cosine/L2 helpers.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/kb2232/insightdex/internal/config"
)

// Client is the provider-side embedding API.
type Client interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
}

// Service wraps a Client with empty-input filtering and batch slicing
// so callers can hand over whole chunk lists in one call.
type Service struct {
	cfg    *config.EmbeddingConfig
	client Client
}

// NewService selects the provider client from the config.
func NewService(cfg *config.EmbeddingConfig) (*Service, error) {
	var client Client
	var err error
	switch cfg.Provider {
	case "openai":
		client, err = NewOpenAIClient(cfg)
	case "ollama":
		client, err = NewOllamaClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}
	return &Service{cfg: cfg, client: client}, nil
}

// Embed returns the vector for one text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("cannot embed empty text")
	}
	return s.client.Embed(ctx, text)
}

// EmbedBatch embeds texts in provider-sized batches. Empty texts keep
// their slot in the result with a nil vector; the returned slice always
// has len(texts) entries.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	valid := make([]string, 0, len(texts))
	slots := make([]int, 0, len(texts))
	for i, text := range texts {
		if text != "" {
			valid = append(valid, text)
			slots = append(slots, i)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("no valid texts to embed")
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}

	results := make([][]float32, len(texts))
	for start := 0; start < len(valid); start += batchSize {
		end := start + batchSize
		if end > len(valid) {
			end = len(valid)
		}
		vectors, err := s.client.EmbedBatch(ctx, valid[start:end])
		if err != nil {
			return nil, fmt.Errorf("failed to embed batch %d-%d: %w", start, end, err)
		}
		for j, vec := range vectors {
			results[slots[start+j]] = vec
		}
	}
	return results, nil
}

// Dimensions reports the provider's vector width.
func (s *Service) Dimensions() int {
	return s.client.Dimensions()
}

// Similarity is the cosine similarity of two vectors. Panics on a
// dimension mismatch; a zero vector scores 0.
func Similarity(a, b []float32) float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
}

// L2Distance is the Euclidean distance between two vectors. Panics on
// a dimension mismatch.
func L2Distance(a, b []float32) float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("vector dimension mismatch: %d vs %d", len(a), len(b)))
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return float32(math.Sqrt(float64(sum)))
}
