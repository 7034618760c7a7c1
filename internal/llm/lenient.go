package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

// RecoverJSONObject parses raw as a JSON object. When direct parsing
// fails it falls back to the substring between the first '{' and the
// last '}', since models routinely wrap JSON in prose or markdown fences.
func RecoverJSONObject(raw string, out any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), out); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end <= start {
		return fmt.Errorf("%w: no JSON object found", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}

// RecoverJSONArray parses raw as a JSON array, with the same
// outermost-bracket fallback as RecoverJSONObject.
func RecoverJSONArray(raw string, out any) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), out); err == nil {
		return nil
	}

	start := strings.Index(trimmed, "[")
	end := strings.LastIndex(trimmed, "]")
	if start == -1 || end <= start {
		return fmt.Errorf("%w: no JSON array found", common.ErrMalformedResponse)
	}
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrMalformedResponse, err)
	}
	return nil
}
