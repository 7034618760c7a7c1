package match

import (
	"context"

	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// Strategy scores one line item against a set of catalog entries.
// Entries a strategy cannot meaningfully compare (e.g. no overlapping
// attributes) are omitted from the result, not scored zero. Scores are
// on the 0-100 scale. Returned candidates carry no ordering guarantee.
type Strategy interface {
	Name() string
	// Prepare is called once per run with the full catalog before any
	// scoring, letting a strategy build per-run state such as a vector
	// index. The catalog is read-only for the rest of the run.
	Prepare(ctx context.Context, entries []entity.CatalogEntry) error
	Score(ctx context.Context, item entity.LineItem, entries []entity.CatalogEntry) ([]entity.MatchCandidate, error)
}

// StrategyFor picks the scoring strategy the catalog supports: entries
// exposing attribute maps get the weighted strategy, entries exposing
// vectors get the embedding strategy. Attribute maps win when both are
// present.
func StrategyFor(entries []entity.CatalogEntry, weighted *WeightedStrategy, embedding *EmbeddingStrategy) Strategy {
	var hasSpecs, hasVectors bool
	for _, e := range entries {
		if len(e.Specifications) > 0 {
			hasSpecs = true
		}
		if len(e.Embedding) > 0 {
			hasVectors = true
		}
	}
	if hasSpecs || !hasVectors || embedding == nil {
		return weighted
	}
	return embedding
}
