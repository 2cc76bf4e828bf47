package ai

import "context"

// Embedder turns texts into dense vectors.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedTexts returns one vector per input text, in input order.
	// All vectors from a single call share the same dimension.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Provider owns an Embedder and the resources behind it.
type Provider interface {
	// Embedder returns the embedding service.
	Embedder() Embedder

	// Backend names the selected backend, e.g. "azure", "openai" or "onnx".
	Backend() string

	// Close releases resources held by the provider and its embedder.
	// After Close is called, the embedder should not be used.
	Close() error
}
