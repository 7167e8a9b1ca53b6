package embedding

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/kb2232/insightdex/internal/config"
)

// OllamaClient talks to a local Ollama server's /api/embeddings
// endpoint, which handles one prompt per request.
type OllamaClient struct {
	baseURL    string
	model      string
	dimensions int
	httpClient *http.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaClient creates an Ollama embedding client with
// nomic-embed-text defaults. No api key is involved.
func NewOllamaClient(cfg *config.EmbeddingConfig) (*OllamaClient, error) {
	c := &OllamaClient{
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	if c.baseURL == "" {
		c.baseURL = "http://localhost:11434"
	}
	if c.model == "" {
		c.model = "nomic-embed-text"
	}
	if c.dimensions == 0 {
		c.dimensions = 768
	}
	return c, nil
}

// Embed embeds one text.
func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float32, error) {
	var resp ollamaEmbedResponse
	err := postJSON(ctx, c.httpClient, c.baseURL+"/api/embeddings", "",
		ollamaEmbedRequest{Model: c.model, Prompt: text}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Embedding, nil
}

// EmbedBatch embeds texts one request at a time, since the endpoint is
// single-prompt.
func (c *OllamaClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := c.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed text %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Dimensions reports the configured vector width.
func (c *OllamaClient) Dimensions() int {
	return c.dimensions
}
