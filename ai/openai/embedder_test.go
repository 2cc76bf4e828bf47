package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/poiesic/reqtrace/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingDatum struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

// newEmbeddingServer answers /v1/embeddings with a vector whose first
// component is the input's length.
func newEmbeddingServer(t *testing.T, requests *atomic.Int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data := make([]embeddingDatum, len(req.Input))
		for i, text := range req.Input {
			data[i] = embeddingDatum{Object: "embedding", Embedding: []float32{float32(len(text)), 1, 0}, Index: i}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
}

func TestEmbedder_EmbedTexts(t *testing.T) {
	var requests atomic.Int32
	server := newEmbeddingServer(t, &requests)
	defer server.Close()

	cfg := ai.NewConfig(ai.WithProxy(server.URL, "sk-test"), ai.WithMaxInputTokens(0))
	embedder, err := NewEmbedder(cfg)
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"display ecg", "alarm"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(len("display ecg")), vectors[0][0])
	assert.Equal(t, float32(len("alarm")), vectors[1][0])
	assert.Equal(t, int32(1), requests.Load())
}

func TestEmbedder_EmptyInputMakesNoRequest(t *testing.T) {
	var requests atomic.Int32
	server := newEmbeddingServer(t, &requests)
	defer server.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithProxy(server.URL, ""), ai.WithMaxInputTokens(0)))
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Equal(t, int32(0), requests.Load())
}

func TestEmbedder_BackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithProxy(server.URL, "wrong"), ai.WithMaxInputTokens(0)))
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"display ecg"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ai.ErrEmbeddingBackend))

	var be *ai.BackendError
	require.True(t, errors.As(err, &be))
	assert.Equal(t, ai.APITypeOpenAI, be.Backend)
}

func TestNewEmbedder_NotConfigured(t *testing.T) {
	_, err := NewEmbedder(ai.NewConfig())
	assert.ErrorIs(t, err, ai.ErrEmbeddingUnavailable)
}

func TestNewProvider(t *testing.T) {
	cfg := ai.NewConfig(ai.WithAzure("https://res.openai.azure.com/", "secret", "", "embed-large"))
	provider, err := NewProvider(cfg)
	require.NoError(t, err)
	defer provider.Close()

	assert.Equal(t, ai.APITypeAzure, provider.Backend())
	assert.NotNil(t, provider.Embedder())
}

func TestTruncator_Disabled(t *testing.T) {
	texts := []string{"a long requirement statement"}

	var nilTruncator *truncator
	assert.Equal(t, texts, nilTruncator.truncateAll(texts))

	tr := newTruncator(0, nil)
	assert.Equal(t, texts, tr.truncateAll(texts))
}
