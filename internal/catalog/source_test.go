package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentic-rfp/rfp-engine/internal/common"
	"github.com/agentic-rfp/rfp-engine/internal/entity"
)

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestJSONSourceLoad(t *testing.T) {
	path := writeCatalog(t, `[
		{"sku_code": "AL240-11KV", "description": "Aluminium XLPE", "category": "XLPE Power Cables",
		 "specifications": {"voltage": "11kv", "conductor": "aluminium"}},
		{"sku_code": "CU50-1.1KV", "description": "Copper control", "category": "Control Cables"}
	]`)

	entries, err := NewJSONSource(path, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "AL240-11KV", entries[0].Code)
	require.Equal(t, "11kv", entries[0].Specifications["voltage"])
}

func TestJSONSourceSkipsEntriesWithoutCode(t *testing.T) {
	path := writeCatalog(t, `[
		{"description": "anonymous entry"},
		{"sku_code": "CU50-1.1KV", "description": "Copper control"}
	]`)

	entries, err := NewJSONSource(path, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "CU50-1.1KV", entries[0].Code)
}

func TestJSONSourceMissingFile(t *testing.T) {
	_, err := NewJSONSource(filepath.Join(t.TempDir(), "absent.json"), nil).Load(context.Background())
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestJSONSourceMalformed(t *testing.T) {
	path := writeCatalog(t, `{"not": "an array"`)
	_, err := NewJSONSource(path, nil).Load(context.Background())
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

type staticSource struct {
	entries []entity.CatalogEntry
}

func (s staticSource) Load(context.Context) ([]entity.CatalogEntry, error) {
	return s.entries, nil
}

type stubEmbedder struct {
	err error
}

func (e stubEmbedder) Embed(context.Context, string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return []float32{0.6, 0.8}, nil
}

func TestWithEmbeddingsComputesMissingVectors(t *testing.T) {
	inner := staticSource{entries: []entity.CatalogEntry{
		{Code: "AL240", Description: "Aluminium"},
		{Code: "CU50", Description: "Copper", Embedding: []float32{1, 0}},
	}}

	entries, err := WithEmbeddings(inner, stubEmbedder{}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []float32{0.6, 0.8}, entries[0].Embedding)
	// Pre-computed vectors are left alone.
	require.Equal(t, []float32{1, 0}, entries[1].Embedding)
}

func TestWithEmbeddingsDegradesOnEmbedderFailure(t *testing.T) {
	inner := staticSource{entries: []entity.CatalogEntry{{Code: "AL240"}}}

	entries, err := WithEmbeddings(inner, stubEmbedder{err: errors.New("service down")}, nil).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].Embedding)
}
