package onnx

import (
	"log/slog"

	"github.com/poiesic/reqtrace/ai"
)

// Provider implements ai.Provider with a local ONNX encoder.
type Provider struct {
	embedder *Embedder
	logger   *slog.Logger
}

// NewProvider loads the configured local model.
// It fails with ai.ErrEmbeddingUnavailable when the model is not installed.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}
	return &Provider{
		embedder: embedder,
		logger:   slog.Default().With("component", "onnx-provider"),
	}, nil
}

// Embedder returns the local encoder.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Backend returns "onnx".
func (p *Provider) Backend() string {
	return backendName
}

// Close destroys the ONNX session.
func (p *Provider) Close() error {
	p.logger.Debug("closing local provider")
	return p.embedder.Close()
}
