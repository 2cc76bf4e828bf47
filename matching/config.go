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


package matching

import (
	"fmt"
	"strings"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/core"
)

// DefaultLexiconPath is the lexicon file looked up when none is configured.
const DefaultLexiconPath = "domain_lexicon.json"

// NgramRange is an inclusive word n-gram range for the TF-IDF space.
type NgramRange struct {
	Min int
	Max int
}

// Config holds the parameters of one ranking run.
type Config struct {
	// TopK is the number of parents kept per child. Must be at least 1.
	TopK int

	// NgramRange must satisfy 1 <= Min <= Max <= 3.
	NgramRange NgramRange

	// StopPhrases are removed from every text, in order, before scoring.
	StopPhrases []string

	// RulesEnabled turns on lexicon matching. The lexicon is only loaded
	// when this is set.
	RulesEnabled bool

	// LexicalMaxFeatures caps the TF-IDF vocabulary. Nil means no cap.
	LexicalMaxFeatures *int

	// LexicalStemming stems tokens before TF-IDF n-grams are formed.
	LexicalStemming bool

	// EmbeddingModelName names the local sentence encoder. The ranker does
	// not read it; EmbeddingConfig copies it into the provider config.
	EmbeddingModelName string

	// LexiconPath points at the JSON lexicon file.
	LexiconPath string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithTopK sets the number of parents kept per child.
func WithTopK(k int) ConfigOption {
	return func(c *Config) {
		c.TopK = k
	}
}

// WithNgramRange sets the TF-IDF n-gram range.
func WithNgramRange(lo, hi int) ConfigOption {
	return func(c *Config) {
		c.NgramRange = NgramRange{Min: lo, Max: hi}
	}
}

// WithStopPhrases replaces the stop phrase list.
func WithStopPhrases(phrases ...string) ConfigOption {
	return func(c *Config) {
		c.StopPhrases = append([]string(nil), phrases...)
	}
}

// WithRules enables or disables lexicon matching.
func WithRules(enabled bool) ConfigOption {
	return func(c *Config) {
		c.RulesEnabled = enabled
	}
}

// WithLexicalMaxFeatures caps the TF-IDF vocabulary size.
func WithLexicalMaxFeatures(n int) ConfigOption {
	return func(c *Config) {
		c.LexicalMaxFeatures = &n
	}
}

// WithLexicalStemming enables Snowball stemming in the TF-IDF analyzer.
func WithLexicalStemming(enabled bool) ConfigOption {
	return func(c *Config) {
		c.LexicalStemming = enabled
	}
}

// WithEmbeddingModelName sets the local encoder name.
func WithEmbeddingModelName(name string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModelName = name
	}
}

// WithLexiconPath sets the lexicon file.
func WithLexiconPath(path string) ConfigOption {
	return func(c *Config) {
		c.LexiconPath = path
	}
}

// DefaultStopPhrases returns the phrases that open most requirement
// statements and carry no meaning for matching.
func DefaultStopPhrases() []string {
	return []string{
		"the user shall be able to",
		"the user shall",
		"shall be able",
		"as a clinical user",
		"the monitor shall",
	}
}

// DefaultConfig returns the stock matching configuration.
func DefaultConfig() *Config {
	return &Config{
		TopK:               3,
		NgramRange:         NgramRange{Min: 1, Max: 3},
		StopPhrases:        DefaultStopPhrases(),
		RulesEnabled:       true,
		EmbeddingModelName: ai.DefaultLocalModel,
		LexiconPath:        DefaultLexiconPath,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks the configuration. Failures are *core.ConfigError.
func (c *Config) Validate() error {
	if c.TopK < 1 {
		return core.NewConfigError("top_k", fmt.Sprintf("must be at least 1, got %d", c.TopK), nil)
	}
	r := c.NgramRange
	if r.Min < 1 || r.Max > 3 {
		return core.NewConfigError("ngram_range", fmt.Sprintf("bounds must lie in 1..3, got (%d, %d)", r.Min, r.Max), nil)
	}
	if r.Min > r.Max {
		return core.NewConfigError("ngram_range", fmt.Sprintf("min %d exceeds max %d", r.Min, r.Max), nil)
	}
	if c.LexicalMaxFeatures != nil && *c.LexicalMaxFeatures < 1 {
		return core.NewConfigError("lexical_max_features", fmt.Sprintf("must be at least 1, got %d", *c.LexicalMaxFeatures), nil)
	}
	if c.RulesEnabled && c.LexiconPath == "" {
		return core.NewConfigError("lexicon_path", "required when rules are enabled", nil)
	}
	return nil
}

// EmbeddingConfig returns a copy of base with the local encoder taken from
// EmbeddingModelName. base is left untouched.
func (c *Config) EmbeddingConfig(base *ai.Config) *ai.Config {
	cfg := *base
	if name := strings.TrimSpace(c.EmbeddingModelName); name != "" {
		cfg.LocalModel = name
	}
	return &cfg
}
