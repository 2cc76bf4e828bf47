// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"path/filepath"
	"strings"
)

// API types understood by the remote backend.
const (
	APITypeAzure  = "azure"
	APITypeOpenAI = "openai"
)

// Defaults mirror the environment variable fallbacks of the CLI.
const (
	DefaultAPIVersion     = "2024-02-01"
	DefaultDeployment     = "text-embedding-3-large"
	DefaultLocalModel     = "sentence-transformers/all-MiniLM-L6-v2"
	DefaultMaxInputTokens = 8191
	DefaultBatchSize      = 512
	DefaultMaxSeqLen      = 256
)

// Config holds configuration for the embedding backends.
// A remote backend is preferred when configured; otherwise a local ONNX
// encoder is used.
type Config struct {
	// APIType selects the remote flavour: "azure" for Azure OpenAI or
	// "openai" for an OpenAI-compatible server or proxy.
	APIType string

	// Endpoint is the remote base URL.
	// Example: "https://myresource.openai.azure.com/" or "http://localhost:4000"
	Endpoint string

	// APIKey authenticates against the remote backend.
	APIKey string

	// APIVersion is the Azure OpenAI API version. Ignored for "openai".
	APIVersion string

	// Deployment is the Azure deployment or the remote model name.
	Deployment string

	// MaxInputTokens truncates remote inputs to this many cl100k tokens.
	// Zero disables truncation.
	MaxInputTokens int

	// BatchSize caps the number of texts per remote request.
	BatchSize int

	// LocalModel is the sentence encoder name, resolved under LocalModelDir.
	LocalModel string

	// LocalModelDir holds exported models as <dir>/<model>/model.onnx and
	// <dir>/<model>/tokenizer.json. Empty disables the local backend.
	LocalModelDir string

	// ONNXLibrary is the path to the onnxruntime shared library.
	// Empty uses the platform default lookup.
	ONNXLibrary string

	// MaxSeqLen caps the local encoder input length in tokens.
	MaxSeqLen int
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithAzure configures the Azure OpenAI backend.
func WithAzure(endpoint, apiKey, apiVersion, deployment string) ConfigOption {
	return func(c *Config) {
		c.APIType = APITypeAzure
		c.Endpoint = endpoint
		c.APIKey = apiKey
		if apiVersion != "" {
			c.APIVersion = apiVersion
		}
		if deployment != "" {
			c.Deployment = deployment
		}
	}
}

// WithProxy configures an OpenAI-compatible endpoint such as a LiteLLM proxy.
func WithProxy(baseURL, apiKey string) ConfigOption {
	return func(c *Config) {
		c.APIType = APITypeOpenAI
		c.Endpoint = baseURL
		c.APIKey = apiKey
	}
}

// WithDeployment sets the deployment or remote model name.
func WithDeployment(deployment string) ConfigOption {
	return func(c *Config) {
		c.Deployment = deployment
	}
}

// WithMaxInputTokens sets the remote truncation limit. Zero disables it.
func WithMaxInputTokens(n int) ConfigOption {
	return func(c *Config) {
		c.MaxInputTokens = n
	}
}

// WithBatchSize sets the number of texts per remote request.
func WithBatchSize(n int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = n
	}
}

// WithLocalModel configures the local ONNX encoder.
func WithLocalModel(dir, model string) ConfigOption {
	return func(c *Config) {
		c.LocalModelDir = dir
		if model != "" {
			c.LocalModel = model
		}
	}
}

// WithONNXLibrary sets the onnxruntime shared library path.
func WithONNXLibrary(path string) ConfigOption {
	return func(c *Config) {
		c.ONNXLibrary = path
	}
}

// WithMaxSeqLen sets the local encoder sequence limit.
func WithMaxSeqLen(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSeqLen = n
	}
}

// DefaultConfig returns a Config with no backend configured and default
// model parameters.
func DefaultConfig() *Config {
	return &Config{
		APIType:        APITypeAzure,
		APIVersion:     DefaultAPIVersion,
		Deployment:     DefaultDeployment,
		MaxInputTokens: DefaultMaxInputTokens,
		BatchSize:      DefaultBatchSize,
		LocalModel:     DefaultLocalModel,
		MaxSeqLen:      DefaultMaxSeqLen,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAzure("https://myresource.openai.azure.com/", key, "", ""),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize trims whitespace and lower-cases the API type.
// For OpenAI-compatible endpoints it adds the /v1 suffix if missing, which
// most compatible servers (LiteLLM, Ollama, vLLM) expect.
func (c *Config) Normalize() {
	c.APIType = strings.ToLower(strings.TrimSpace(c.APIType))
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.APIKey = strings.TrimSpace(c.APIKey)
	c.Deployment = strings.TrimSpace(c.Deployment)
	c.LocalModelDir = strings.TrimSpace(c.LocalModelDir)
	c.LocalModel = strings.TrimSpace(c.LocalModel)

	if c.APIType == APITypeOpenAI && c.Endpoint != "" && !strings.HasSuffix(c.Endpoint, "/v1") {
		c.Endpoint = strings.TrimSuffix(c.Endpoint, "/") + "/v1"
	}
}

// RemoteConfigured reports whether enough is set to reach a remote backend.
// Azure needs both an endpoint and a key; a proxy only needs its base URL.
func (c *Config) RemoteConfigured() bool {
	if c.Endpoint == "" || c.Deployment == "" {
		return false
	}
	if c.APIType == APITypeAzure {
		return c.APIKey != ""
	}
	return true
}

// LocalConfigured reports whether a local model directory is set.
func (c *Config) LocalConfigured() bool {
	return c.LocalModelDir != "" && c.LocalModel != ""
}

// ModelPath returns the local ONNX model file.
func (c *Config) ModelPath() string {
	return filepath.Join(c.LocalModelDir, filepath.FromSlash(c.LocalModel), "model.onnx")
}

// TokenizerPath returns the local tokenizer definition.
func (c *Config) TokenizerPath() string {
	return filepath.Join(c.LocalModelDir, filepath.FromSlash(c.LocalModel), "tokenizer.json")
}

// Validate checks that the configuration is valid.
// It automatically normalizes the configuration before validation.
// Having no backend configured is not a validation error; backend
// selection reports that as ErrEmbeddingUnavailable.
func (c *Config) Validate() error {
	c.Normalize()

	if c.APIType != APITypeAzure && c.APIType != APITypeOpenAI {
		return errors.New("ai config: APIType must be \"azure\" or \"openai\"")
	}
	if c.APIType == APITypeAzure && c.Endpoint != "" && c.APIVersion == "" {
		return errors.New("ai config: APIVersion is required for azure")
	}
	if c.MaxInputTokens < 0 {
		return errors.New("ai config: MaxInputTokens must not be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("ai config: BatchSize must be at least 1")
	}
	if c.MaxSeqLen < 1 {
		return errors.New("ai config: MaxSeqLen must be at least 1")
	}
	return nil
}
