package ai

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigNormalize(t *testing.T) {
	tests := []struct {
		name             string
		apiType          string
		endpoint         string
		expectedEndpoint string
	}{
		{
			name:             "proxy without /v1",
			apiType:          APITypeOpenAI,
			endpoint:         "http://localhost:4000",
			expectedEndpoint: "http://localhost:4000/v1",
		},
		{
			name:             "proxy with trailing slash",
			apiType:          APITypeOpenAI,
			endpoint:         "http://localhost:4000/",
			expectedEndpoint: "http://localhost:4000/v1",
		},
		{
			name:             "proxy already has /v1",
			apiType:          "OpenAI",
			endpoint:         "http://localhost:4000/v1",
			expectedEndpoint: "http://localhost:4000/v1",
		},
		{
			name:             "azure endpoint untouched",
			apiType:          APITypeAzure,
			endpoint:         " https://res.openai.azure.com/ ",
			expectedEndpoint: "https://res.openai.azure.com/",
		},
		{
			name:             "empty endpoint",
			apiType:          APITypeOpenAI,
			endpoint:         "",
			expectedEndpoint: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{APIType: tt.apiType, Endpoint: tt.endpoint}
			cfg.Normalize()
			assert.Equal(t, tt.expectedEndpoint, cfg.Endpoint)
		})
	}
}

func TestConfigValidate(t *testing.T) {
	t.Run("default config is valid", func(t *testing.T) {
		require.NoError(t, DefaultConfig().Validate())
	})

	t.Run("unknown api type", func(t *testing.T) {
		cfg := NewConfig()
		cfg.APIType = "bedrock"
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIType")
	})

	t.Run("azure needs api version", func(t *testing.T) {
		cfg := NewConfig(WithAzure("https://res.openai.azure.com/", "key", "", ""))
		cfg.APIVersion = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "APIVersion")
	})

	t.Run("negative token limit", func(t *testing.T) {
		cfg := NewConfig(WithMaxInputTokens(-1))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxInputTokens")
	})

	t.Run("zero batch size", func(t *testing.T) {
		cfg := NewConfig(WithBatchSize(0))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "BatchSize")
	})

	t.Run("zero sequence length", func(t *testing.T) {
		cfg := NewConfig(WithMaxSeqLen(0))
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "MaxSeqLen")
	})
}

func TestConfigBackends(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		cfg := NewConfig()
		require.NoError(t, cfg.Validate())
		assert.False(t, cfg.RemoteConfigured())
		assert.False(t, cfg.LocalConfigured())
	})

	t.Run("azure needs a key", func(t *testing.T) {
		cfg := NewConfig(WithAzure("https://res.openai.azure.com/", "", "", ""))
		require.NoError(t, cfg.Validate())
		assert.False(t, cfg.RemoteConfigured())

		cfg = NewConfig(WithAzure("https://res.openai.azure.com/", "secret", "", ""))
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.RemoteConfigured())
		assert.Equal(t, DefaultAPIVersion, cfg.APIVersion)
		assert.Equal(t, DefaultDeployment, cfg.Deployment)
	})

	t.Run("proxy works without a key", func(t *testing.T) {
		cfg := NewConfig(WithProxy("http://localhost:4000", ""))
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.RemoteConfigured())
	})

	t.Run("local model paths", func(t *testing.T) {
		cfg := NewConfig(WithLocalModel("/models", ""))
		require.NoError(t, cfg.Validate())
		assert.True(t, cfg.LocalConfigured())

		base := filepath.Join("/models", "sentence-transformers", "all-MiniLM-L6-v2")
		assert.Equal(t, filepath.Join(base, "model.onnx"), cfg.ModelPath())
		assert.Equal(t, filepath.Join(base, "tokenizer.json"), cfg.TokenizerPath())
	})
}

func TestConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithDeployment("embed-small"),
		WithONNXLibrary("/usr/lib/libonnxruntime.so"),
		WithMaxSeqLen(128),
		WithBatchSize(16),
	)

	assert.Equal(t, "embed-small", cfg.Deployment)
	assert.Equal(t, "/usr/lib/libonnxruntime.so", cfg.ONNXLibrary)
	assert.Equal(t, 128, cfg.MaxSeqLen)
	assert.Equal(t, 16, cfg.BatchSize)
}
