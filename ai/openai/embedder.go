package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/reqtrace/ai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder implements ai.Embedder using Azure OpenAI or an OpenAI-compatible
// embedding API.
type Embedder struct {
	embedder  embeddings.Embedder
	truncator *truncator
	backend   string
	logger    *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if !config.RemoteConfigured() {
		return nil, ai.ErrEmbeddingUnavailable
	}

	client, err := openai.New(clientOptions(config)...)
	if err != nil {
		return nil, ai.NewBackendError(config.APIType, err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(config.BatchSize),
	)
	if err != nil {
		return nil, ai.NewBackendError(config.APIType, err)
	}

	logger := slog.Default().With("component", "openai-embedder", "backend", config.APIType)
	return &Embedder{
		embedder:  embedder,
		truncator: newTruncator(config.MaxInputTokens, logger),
		backend:   config.APIType,
		logger:    logger,
	}, nil
}

func clientOptions(config *ai.Config) []openai.Option {
	// Local OpenAI-compatible proxies often run without authentication, but
	// the client refuses an empty token.
	token := config.APIKey
	if token == "" {
		token = "none"
	}

	opts := []openai.Option{
		openai.WithBaseURL(config.Endpoint),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.Deployment),
	}
	if config.APIType == ai.APITypeAzure {
		opts = append(opts,
			openai.WithAPIType(openai.APITypeAzure),
			openai.WithAPIVersion(config.APIVersion),
		)
	}
	return opts
}

// NewEmbedder creates a new remote embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
// Any transport, authentication or quota failure is returned as an
// *ai.BackendError; nothing is retried here.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	inputs := e.truncator.truncateAll(texts)
	vectors, err := e.embedder.EmbedDocuments(ctx, inputs)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, ai.NewBackendError(e.backend, err)
	}
	if len(vectors) != len(texts) {
		return nil, ai.NewBackendError(e.backend,
			fmt.Errorf("backend returned %d vectors for %d texts", len(vectors), len(texts)))
	}

	return vectors, nil
}
