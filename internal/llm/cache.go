package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"sync"
)

// MemoryCache is a concurrency-safe prompt cache whose lifetime is
// owned by the caller (typically one pipeline run). Inserts are
// first-writer-wins so concurrent workers resolving the same prompt
// observe a single value.
type MemoryCache struct {
	mu sync.RWMutex
	m  map[string]string
}

var _ PromptCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{m: make(map[string]string)}
}

func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.m[key]
	return v, ok
}

func (c *MemoryCache) SetIfAbsent(key, value string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.m[key]; ok {
		return existing
	}
	c.m[key] = value
	return value
}

// Len reports the number of cached prompts.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

// PromptKey content-addresses a prompt for cache lookups.
func PromptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// ErrorEnvelope encodes a service failure as a structured payload so
// downstream parsing treats it as information rather than a fault.
func ErrorEnvelope(err error) string {
	b, _ := json.Marshal(map[string]string{"error": err.Error()})
	return string(b)
}

// IsErrorEnvelope reports whether a response text is a cached or fresh
// error payload rather than generated output.
func IsErrorEnvelope(text string) bool {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &env); err != nil {
		return false
	}
	return env.Error != ""
}

// CachedGenerator wraps a Generator with a prompt cache and converts
// service failures into error envelopes. Identical prompts within the
// cache's lifetime cost one underlying call, error payloads included.
type CachedGenerator struct {
	gen    Generator
	cache  PromptCache
	logger *slog.Logger
}

func NewCachedGenerator(gen Generator, cache PromptCache, logger *slog.Logger) *CachedGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedGenerator{gen: gen, cache: cache, logger: logger}
}

var _ Generator = (*CachedGenerator)(nil)

// Generate returns the cached response for an identical prompt, or
// issues one service call and caches its outcome. A failed call is
// cached as an error envelope and never returned as a Go error.
func (g *CachedGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	key := PromptKey(req.Prompt)
	if text, ok := g.cache.Get(key); ok {
		g.logger.Debug("llm.cache.hit", "key", key[:12])
		return text, nil
	}

	text, err := g.gen.Generate(ctx, req)
	if err != nil {
		g.logger.Warn("llm.cache.store_error_payload", "key", key[:12], "error", err)
		text = ErrorEnvelope(err)
	}
	return g.cache.SetIfAbsent(key, text), nil
}
