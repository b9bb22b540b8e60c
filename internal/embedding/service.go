package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ServiceClient is an Embedder backed by a sentence-embedding HTTP service.
// The service owns the model; this client only moves text and vectors.
type ServiceClient struct {
	baseURL    string
	dimensions int
	client     *http.Client
}

// NewServiceClient creates a client for the embedding service at baseURL.
// timeout bounds each request; callers can tighten it further via context.
func NewServiceClient(baseURL string, dimensions int, timeout time.Duration) (*ServiceClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("embedding service URL is required")
	}
	if dimensions <= 0 {
		return nil, fmt.Errorf("dimensions must be positive")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceClient{
		baseURL:    baseURL,
		dimensions: dimensions,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

// Embed returns the embedding for a single text. Empty input embeds to the
// zero vector without calling the service.
func (c *ServiceClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return make([]float32, c.dimensions), nil
	}
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch embeds texts in one request.
func (c *ServiceClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embedding service: status %d", resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode embed response: %w", err)
	}
	if len(result.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embedding service: got %d embeddings for %d texts", len(result.Embeddings), len(texts))
	}
	for i, v := range result.Embeddings {
		if len(v) != c.dimensions {
			return nil, fmt.Errorf("embedding %d: dimension %d, expected %d", i, len(v), c.dimensions)
		}
	}
	return result.Embeddings, nil
}

// Dimensions returns the embedding dimension.
func (c *ServiceClient) Dimensions() int {
	return c.dimensions
}

// Close is a no-op; the underlying http.Client needs no teardown.
func (c *ServiceClient) Close() error {
	return nil
}
