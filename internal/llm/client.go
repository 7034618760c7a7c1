package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// ClientConfig holds text-generation service settings.
type ClientConfig struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to an Ollama-compatible text-generation service over HTTP.
type Client struct {
	cfg    ClientConfig
	http   *http.Client
	logger *slog.Logger
}

var _ Generator = (*Client)(nil)
var _ Pinger = (*Client)(nil)

// NewClient creates a reusable generation client.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

type generateBody struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate sends one prompt and returns the generated text. Connection
// failures and timeouts are wrapped as ErrServiceUnavailable so callers
// can degrade instead of aborting.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	reqID := uuid.New().String()
	start := time.Now()

	opts := map[string]any{
		"top_p": 0.9,
		"top_k": 40,
	}
	if req.Deterministic {
		opts["temperature"] = 0
	}
	if req.MaxTokens > 0 {
		opts["num_predict"] = req.MaxTokens
	}

	body := generateBody{
		Model:   c.cfg.Model,
		Prompt:  req.Prompt,
		Stream:  false,
		Options: opts,
	}

	c.logger.Debug("llm.generate.request",
		"req_id", reqID,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"max_tokens", req.MaxTokens,
	)

	raw, status, err := c.postJSON(ctx, c.cfg.BaseURL+"/api/generate", body)
	if err != nil {
		c.logger.Warn("llm.generate.failed",
			"req_id", reqID,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", classifyTransportError(err)
	}
	if status/100 != 2 {
		c.logger.Warn("llm.generate.bad_status", "req_id", reqID, "status", status)
		return "", fmt.Errorf("%w: status %d", common.ErrServiceUnavailable, status)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("%w: decode generate response: %v", common.ErrMalformedResponse, err)
	}

	c.logger.Debug("llm.generate.response",
		"req_id", reqID,
		"bytes", len(gr.Response),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return gr.Response, nil
}

// Ping verifies the service is reachable and the configured model is
// present in its tag list.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransportError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("%w: status %d", common.ErrServiceUnavailable, resp.StatusCode)
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return fmt.Errorf("decode tags: %w", err)
	}
	for _, m := range tags.Models {
		if m.Name == c.cfg.Model {
			return nil
		}
	}
	return fmt.Errorf("model %q not available on generation service", c.cfg.Model)
}

func (c *Client) postJSON(ctx context.Context, url string, body any) ([]byte, int, error) {
	bs, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("encode json: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bs))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

func classifyTransportError(err error) error {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: timeout: %v", common.ErrServiceUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: timeout: %v", common.ErrServiceUnavailable, err)
	}
	return fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
}
