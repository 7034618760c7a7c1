// Package embed provides the embedding-service client used by the
// catalog matcher's similarity strategy.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// Embedder converts text into a fixed-length, unit-normalized vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ClientConfig holds embedding service settings.
type ClientConfig struct {
	BaseURL    string
	Model      string
	Timeout    time.Duration
	Dimensions int
}

// Client talks to an Ollama-compatible embedding endpoint.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

var _ Embedder = (*Client)(nil)

func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Embed requests a vector for the text and normalizes it to unit
// length. A wrong-dimension response is reported as malformed.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	body := map[string]any{
		"model":  c.cfg.Model,
		"prompt": text,
	}
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/embeddings", bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("%w: status %d", common.ErrServiceUnavailable, resp.StatusCode)
	}

	var er struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return nil, fmt.Errorf("%w: decode embedding: %v", common.ErrMalformedResponse, err)
	}
	if len(er.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", common.ErrMalformedResponse)
	}
	if c.cfg.Dimensions > 0 && len(er.Embedding) != c.cfg.Dimensions {
		return nil, fmt.Errorf("%w: got %d dimensions, want %d",
			common.ErrMalformedResponse, len(er.Embedding), c.cfg.Dimensions)
	}
	return Normalize(er.Embedding), nil
}

// Normalize scales v to unit length. Zero vectors pass through
// unchanged so similarity against them stays zero.
func Normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
