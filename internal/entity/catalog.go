package entity

import (
	"sort"
	"strings"
)

// CatalogEntry is one product record (SKU) available for matching.
// Specifications and Embedding are each optional; which one is present
// decides the scoring strategy a matcher can apply.
type CatalogEntry struct {
	Code           string            `json:"sku_code"`
	Description    string            `json:"description"`
	Category       string            `json:"category"`
	Specifications map[string]string `json:"specifications,omitempty"`
	Embedding      []float32         `json:"embedding_vector,omitempty"`
}

// EmbeddingText concatenates description and specifications into the
// text an embedding is computed over. Spec keys are sorted so the text
// is stable across runs; falls back to the SKU code so it is never empty.
func (e CatalogEntry) EmbeddingText() string {
	keys := make([]string, 0, len(e.Specifications))
	for k := range e.Specifications {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(e.Description)
	var specs []string
	for _, k := range keys {
		specs = append(specs, k+": "+e.Specifications[k])
	}
	if len(specs) > 0 {
		b.WriteString(" | ")
		b.WriteString(strings.Join(specs, " ; "))
	}
	if b.Len() == 0 {
		return e.Code
	}
	return b.String()
}
