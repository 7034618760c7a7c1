package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// vectorEmbedder returns canned unit vectors by exact text.
type vectorEmbedder struct {
	vectors map[string][]float32
}

func (e vectorEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec, ok := e.vectors[text]
	if !ok {
		return []float32{0, 0}, nil
	}
	return vec, nil
}

func embeddingCatalog() []entity.CatalogEntry {
	return []entity.CatalogEntry{
		{Code: "SAME", Description: "identical direction", Category: "XLPE Power Cables", Embedding: []float32{1, 0}},
		{Code: "ORTHOGONAL", Description: "unrelated direction", Category: "Control Cables", Embedding: []float32{0, 1}},
		{Code: "OPPOSITE", Description: "anti-parallel direction", Category: "Control Cables", Embedding: []float32{-1, 0}},
	}
}

func preparedEmbeddingStrategy(t *testing.T, entries []entity.CatalogEntry) *EmbeddingStrategy {
	t.Helper()
	s := NewEmbeddingStrategy(vectorEmbedder{vectors: map[string][]float32{
		"Power Cable 11kV aluminium": {1, 0},
	}}, nil)
	require.NoError(t, s.Prepare(context.Background(), entries))
	return s
}

func TestEmbeddingStrategyScores(t *testing.T) {
	entries := embeddingCatalog()
	s := preparedEmbeddingStrategy(t, entries)

	item := entity.LineItem{Name: "Power Cable", RequiredSpecText: "11kV aluminium"}
	candidates, err := s.Score(context.Background(), item, entries)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	byCode := map[string]entity.MatchCandidate{}
	for _, c := range candidates {
		byCode[c.Code] = c
	}
	require.Equal(t, 100.0, byCode["SAME"].Score)
	require.Equal(t, 0.0, byCode["ORTHOGONAL"].Score)
	// Anti-parallel similarity is negative and must clamp to zero,
	// never go below it.
	require.Equal(t, 0.0, byCode["OPPOSITE"].Score)

	require.Equal(t, "XLPE Power Cables", byCode["SAME"].Category)
	require.Equal(t, "identical direction", byCode["SAME"].Description)
}

func TestEmbeddingStrategyScoresOnlyAllowedEntries(t *testing.T) {
	entries := embeddingCatalog()
	s := preparedEmbeddingStrategy(t, entries)

	// The index holds all three entries; Score must honor the caller's
	// (e.g. domain-filtered) subset.
	item := entity.LineItem{Name: "Power Cable", RequiredSpecText: "11kV aluminium"}
	candidates, err := s.Score(context.Background(), item, entries[:1])
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Equal(t, "SAME", candidates[0].Code)
}

func TestEmbeddingStrategyEmptyCatalog(t *testing.T) {
	s := preparedEmbeddingStrategy(t, nil)

	candidates, err := s.Score(context.Background(), entity.LineItem{Name: "anything"}, nil)
	require.NoError(t, err)
	require.Empty(t, candidates)
}

func TestEmbeddingStrategyName(t *testing.T) {
	require.Equal(t, "embedding-similarity", NewEmbeddingStrategy(nil, nil).Name())
}
