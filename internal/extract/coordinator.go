package extract

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/agentic-rfp/rfp-engine/internal/llm"
)

// CoordinatorConfig tunes chunking and concurrency for field extraction.
type CoordinatorConfig struct {
	ChunkSize     int     // characters per chunk
	Workers       int     // bounded pool, one in-flight field per worker
	MaxTokens     int     // output cap per field query
	RateLimitRPS  float64 // global cap across workers; <=0 disables
	Deterministic bool
}

func (c CoordinatorConfig) withDefaults() CoordinatorConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 3000
	}
	if c.Workers <= 0 {
		c.Workers = 3
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 256
	}
	return c
}

// Coordinator extracts a value for every field of a schema from raw
// document text. Fields are independent, so they run concurrently
// over a bounded worker pool; within one field, chunks are scanned in
// order and scanning stops at the first non-sentinel value.
type Coordinator struct {
	gen    llm.Generator
	cfg    CoordinatorConfig
	logger *slog.Logger
}

func NewCoordinator(gen llm.Generator, cfg CoordinatorConfig, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{gen: gen, cfg: cfg.withDefaults(), logger: logger}
}

// SplitChunks cuts text into fixed-size, non-overlapping character
// chunks with no semantic boundary awareness.
func SplitChunks(text string, size int) []string {
	if size <= 0 || text == "" {
		return nil
	}
	var chunks []string
	for i := 0; i < len(text); i += size {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}

type fieldResult struct {
	field Field
	value string
}

// ExtractFields resolves one value per schema field. A service outage
// degrades to NotFound for the affected fields; it never fails the call.
func (c *Coordinator) ExtractFields(ctx context.Context, text string, schema []FieldSpec) FieldMap {
	chunks := SplitChunks(text, c.cfg.ChunkSize)

	out := make(FieldMap, len(schema))
	for _, fs := range schema {
		out[fs.Field] = NotFound
	}
	if len(chunks) == 0 {
		return out
	}

	var limiter *rate.Limiter
	if c.cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.cfg.RateLimitRPS), 1)
	}

	jobs := make(chan FieldSpec)
	results := make(chan fieldResult, len(schema))

	var wg sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fs := range jobs {
				results <- fieldResult{
					field: fs.Field,
					value: c.extractField(ctx, fs, chunks, limiter),
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, fs := range schema {
			select {
			case jobs <- fs:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Completion order is irrelevant: fields are disjoint keys.
	for r := range results {
		out[r.field] = r.value
	}
	return out
}

// extractField scans chunks in order and stops at the first usable
// value. Later chunks are never consulted once the field resolves;
// this is a speed/accuracy tradeoff, not a correctness guarantee.
func (c *Coordinator) extractField(ctx context.Context, fs FieldSpec, chunks []string, limiter *rate.Limiter) string {
	for i, chunk := range chunks {
		if ctx.Err() != nil {
			return NotFound
		}
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return NotFound
			}
		}

		prompt := llm.BuildFieldPrompt(string(fs.Field), fs.Description, chunk)
		resp, err := c.gen.Generate(ctx, llm.GenerateRequest{
			Prompt:        prompt,
			MaxTokens:     c.cfg.MaxTokens,
			Deterministic: c.cfg.Deterministic,
		})
		if err != nil {
			// Degrade, don't abort: an unreachable service means the
			// field stays unresolved for this chunk.
			c.logger.Warn("extract.field.call_failed", "field", fs.Field, "chunk", i, "error", err)
			continue
		}
		if llm.IsErrorEnvelope(resp) {
			c.logger.Warn("extract.field.service_error", "field", fs.Field, "chunk", i)
			continue
		}

		value := parseFieldValue(resp, fs.Field)
		if value != "" && value != NotFound {
			c.logger.Debug("extract.field.resolved", "field", fs.Field, "chunk", i)
			return value
		}
	}
	return NotFound
}

// parseFieldValue pulls the single field value out of a response,
// tolerating surrounding prose via bracket recovery. Numbers are
// rendered back to plain strings.
func parseFieldValue(resp string, field Field) string {
	var m map[string]any
	if err := llm.RecoverJSONObject(resp, &m); err != nil {
		return NotFound
	}
	switch v := m[string(field)].(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return NotFound
	}
}
