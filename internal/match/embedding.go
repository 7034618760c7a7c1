package match

import (
	"context"
	"fmt"
	"log/slog"

	chromem "github.com/philippgille/chromem-go"

	"github.com/agentic-rfp/rfp-engine/internal/embed"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// EmbeddingStrategy scores items by cosine similarity between the
// item text's vector and each catalog entry's vector, via an in-memory
// chromem index built once per run. Entries without a precomputed
// vector are embedded from their description at index-build time.
type EmbeddingStrategy struct {
	embedder embed.Embedder
	logger   *slog.Logger

	coll *chromem.Collection
}

var _ Strategy = (*EmbeddingStrategy)(nil)

func NewEmbeddingStrategy(embedder embed.Embedder, logger *slog.Logger) *EmbeddingStrategy {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingStrategy{embedder: embedder, logger: logger}
}

func (s *EmbeddingStrategy) Name() string { return "embedding-similarity" }

// Prepare builds a fresh index over the run's catalog. The index lives
// in memory and is read-only once built, so concurrent Score calls can
// share it without locking.
func (s *EmbeddingStrategy) Prepare(ctx context.Context, entries []entity.CatalogEntry) error {
	db := chromem.NewDB()
	coll, err := db.GetOrCreateCollection("catalog", nil, chromem.EmbeddingFunc(s.embedder.Embed))
	if err != nil {
		return fmt.Errorf("create catalog index: %w", err)
	}

	docs := make([]chromem.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, chromem.Document{
			ID:        e.Code,
			Content:   e.EmbeddingText(),
			Metadata:  map[string]string{"category": e.Category},
			Embedding: e.Embedding,
		})
	}
	if len(docs) > 0 {
		if err := coll.AddDocuments(ctx, docs, 4); err != nil {
			return fmt.Errorf("index catalog entries: %w", err)
		}
	}

	s.coll = coll
	s.logger.Debug("match.embedding.index_built", "entries", len(docs))
	return nil
}

// Score queries the run index with the item's vector and keeps only
// the entries the caller passed in. Negative similarity clamps to zero
// before scaling to the 0-100 range.
func (s *EmbeddingStrategy) Score(ctx context.Context, item entity.LineItem, entries []entity.CatalogEntry) ([]entity.MatchCandidate, error) {
	if s.coll == nil || s.coll.Count() == 0 || len(entries) == 0 {
		return nil, nil
	}

	vec, err := s.embedder.Embed(ctx, item.SearchText())
	if err != nil {
		return nil, fmt.Errorf("embed item %q: %w", item.Name, err)
	}

	results, err := s.coll.QueryEmbedding(ctx, vec, s.coll.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query catalog index: %w", err)
	}

	allowed := make(map[string]entity.CatalogEntry, len(entries))
	for _, e := range entries {
		allowed[e.Code] = e
	}

	var out []entity.MatchCandidate
	for _, r := range results {
		e, ok := allowed[r.ID]
		if !ok {
			continue
		}
		sim := float64(r.Similarity)
		if sim < 0 {
			sim = 0
		}
		out = append(out, entity.MatchCandidate{
			Code:        e.Code,
			Score:       round2(sim * 100),
			Description: e.Description,
			Category:    e.Category,
		})
	}
	return out, nil
}
