// Package provider selects an embedding backend from configuration.
package provider

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/ai/onnx"
	"github.com/poiesic/reqtrace/ai/openai"
)

// Factory builds a provider for one backend.
type Factory func(config *ai.Config) (ai.Provider, error)

// Selector picks the first usable backend.
type Selector struct {
	Remote Factory
	Local  Factory
	Logger *slog.Logger
}

// DefaultSelector uses the remote OpenAI backend and the local ONNX encoder.
func DefaultSelector() *Selector {
	return &Selector{
		Remote: openai.NewProvider,
		Local:  onnx.NewProvider,
		Logger: slog.Default().With("component", "embedding-provider"),
	}
}

// New selects a backend with DefaultSelector.
func New(config *ai.Config) (ai.Provider, error) {
	return DefaultSelector().Select(config)
}

// Select returns the remote provider when it is configured and can be
// constructed, otherwise the local provider when its model is installed.
// With neither it fails with ai.ErrEmbeddingUnavailable.
func (s *Selector) Select(config *ai.Config) (ai.Provider, error) {
	if config == nil {
		config = ai.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var causes []error
	if config.RemoteConfigured() && s.Remote != nil {
		p, err := s.Remote(config)
		if err == nil {
			logger.Info("using remote embedding backend", "backend", p.Backend(), "deployment", config.Deployment)
			return p, nil
		}
		logger.Warn("remote embedding backend unusable, trying local model", "err", err)
		causes = append(causes, err)
	}

	if config.LocalConfigured() && s.Local != nil {
		p, err := s.Local(config)
		if err == nil {
			logger.Info("using local embedding backend", "model", config.LocalModel)
			return p, nil
		}
		causes = append(causes, err)
	}

	if len(causes) == 0 {
		return nil, fmt.Errorf("%w: set AZURE_OPENAI_ENDPOINT and AZURE_OPENAI_API_KEY, OPENAI_BASE_URL, or a local model directory", ai.ErrEmbeddingUnavailable)
	}
	return nil, fmt.Errorf("%w: %w", ai.ErrEmbeddingUnavailable, errors.Join(causes...))
}
