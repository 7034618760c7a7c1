// Package catalog loads the product records the matcher scores
// against, from either a JSON file or an XLSX workbook.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/embed"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

// Source produces the full catalog for a run. Loading happens once per
// run; the returned slice is treated as read-only afterwards.
type Source interface {
	Load(ctx context.Context) ([]entity.CatalogEntry, error)
}

// JSONSource reads catalog entries from a JSON array file, the same
// shape entity.CatalogEntry marshals to.
type JSONSource struct {
	path   string
	logger *slog.Logger
}

var _ Source = (*JSONSource)(nil)

func NewJSONSource(path string, logger *slog.Logger) *JSONSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &JSONSource{path: path, logger: logger}
}

func (s *JSONSource) Load(ctx context.Context) ([]entity.CatalogEntry, error) {
	bs, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: catalog file %q", common.ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var entries []entity.CatalogEntry
	if err := json.Unmarshal(bs, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse catalog %s: %v", common.ErrInvalidInput, s.path, err)
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.Code == "" {
			s.logger.Warn("catalog.entry_skipped", "reason", "missing sku_code")
			continue
		}
		kept = append(kept, e)
	}
	s.logger.Info("catalog.loaded", "source", "json", "path", s.path, "entries", len(kept))
	return kept, nil
}

// EmbeddingSource decorates another source by computing a vector for
// every entry that does not already carry one, enabling the embedding
// match strategy on attribute-only catalogs.
type EmbeddingSource struct {
	inner    Source
	embedder embed.Embedder
	logger   *slog.Logger
}

var _ Source = (*EmbeddingSource)(nil)

func WithEmbeddings(inner Source, embedder embed.Embedder, logger *slog.Logger) *EmbeddingSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmbeddingSource{inner: inner, embedder: embedder, logger: logger}
}

func (s *EmbeddingSource) Load(ctx context.Context) ([]entity.CatalogEntry, error) {
	entries, err := s.inner.Load(ctx)
	if err != nil {
		return nil, err
	}

	computed := 0
	for i := range entries {
		if len(entries[i].Embedding) > 0 {
			continue
		}
		vec, err := s.embedder.Embed(ctx, entries[i].EmbeddingText())
		if err != nil {
			// Entries without vectors still work through the
			// weighted strategy, so a flaky embedder degrades
			// rather than fails the load.
			s.logger.Warn("catalog.embedding_failed",
				"sku_code", entries[i].Code,
				"error", err)
			continue
		}
		entries[i].Embedding = vec
		computed++
	}
	if computed > 0 {
		s.logger.Info("catalog.embeddings_computed", "entries", computed)
	}
	return entries, nil
}
