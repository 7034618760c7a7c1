package embed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentic-rfp/rfp-engine/internal/common"
)

func TestNormalize(t *testing.T) {
	require.Equal(t, []float32{0.6, 0.8}, Normalize([]float32{3, 4}))
	require.Equal(t, []float32{0, 0, 0}, Normalize([]float32{0, 0, 0}))
	require.Equal(t, []float32{1}, Normalize([]float32{5}))
}

func embeddingServer(t *testing.T, vec []float32, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/embeddings", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.NotEmpty(t, body["prompt"])

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
	}))
}

func TestClientEmbed(t *testing.T) {
	srv := embeddingServer(t, []float32{3, 4}, http.StatusOK)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Model: "nomic-embed-text", Dimensions: 2}, nil)
	vec, err := c.Embed(context.Background(), "11kv xlpe aluminium cable")
	require.NoError(t, err)
	require.Equal(t, []float32{0.6, 0.8}, vec)
}

func TestClientEmbedDimensionMismatch(t *testing.T) {
	srv := embeddingServer(t, []float32{1, 2, 3}, http.StatusOK)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Dimensions: 2}, nil)
	_, err := c.Embed(context.Background(), "text")
	require.ErrorIs(t, err, common.ErrMalformedResponse)
}

func TestClientEmbedServiceErrors(t *testing.T) {
	srv := embeddingServer(t, nil, http.StatusInternalServerError)
	defer srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL}, nil)
	_, err := c.Embed(context.Background(), "text")
	require.ErrorIs(t, err, common.ErrServiceUnavailable)

	c = NewClient(ClientConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	_, err = c.Embed(context.Background(), "text")
	require.ErrorIs(t, err, common.ErrServiceUnavailable)
}
