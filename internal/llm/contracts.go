package llm

import "context"

// GenerateRequest is one prompt sent to the text-generation service.
type GenerateRequest struct {
	Prompt        string
	MaxTokens     int  // cap on generated length; <=0 uses the service default
	Deterministic bool // greedy decoding for reproducible extraction
}

// Generator is the text-generation interface the pipeline depends on.
// Generate returns the raw generated text; transport and service
// failures surface as errors and are handled by the caller.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// Pinger is implemented by generators that can report availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PromptCache stores responses keyed by content address of the prompt.
// Implementations must be safe for concurrent use; SetIfAbsent keeps
// the first value written for a key and returns the surviving value.
type PromptCache interface {
	Get(key string) (string, bool)
	SetIfAbsent(key, value string) string
}
