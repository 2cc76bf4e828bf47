package matching

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/core"
)

// File is the on-disk TOML configuration. Unset keys leave defaults alone.
//
//	[matching]
//	top_k = 5
//	ngram_range = [1, 2]
//	stop_phrases = ["the user shall"]
//	rules_enabled = true
//	lexicon_path = "domain_lexicon.json"
//
//	[embedding]
//	deployment = "text-embedding-3-large"
//	model_dir = "/opt/models"
type File struct {
	Matching  MatchingSection  `toml:"matching"`
	Embedding EmbeddingSection `toml:"embedding"`
}

// MatchingSection overlays Config.
type MatchingSection struct {
	TopK               *int     `toml:"top_k"`
	NgramRange         []int    `toml:"ngram_range"`
	StopPhrases        []string `toml:"stop_phrases"`
	RulesEnabled       *bool    `toml:"rules_enabled"`
	LexicalMaxFeatures *int     `toml:"lexical_max_features"`
	LexicalStemming    *bool    `toml:"lexical_stemming"`
	EmbeddingModelName *string  `toml:"embedding_model_name"`
	LexiconPath        *string  `toml:"lexicon_path"`
	MinScoreThreshold  *float64 `toml:"min_score_threshold"`
}

// EmbeddingSection overlays ai.Config. Credentials are not read from files.
type EmbeddingSection struct {
	APIType        *string `toml:"api_type"`
	Endpoint       *string `toml:"endpoint"`
	APIVersion     *string `toml:"api_version"`
	Deployment     *string `toml:"deployment"`
	MaxInputTokens *int    `toml:"max_input_tokens"`
	BatchSize      *int    `toml:"batch_size"`
	ModelDir       *string `toml:"model_dir"`
	ONNXLibrary    *string `toml:"onnx_library"`
	MaxSeqLen      *int    `toml:"max_seq_len"`
}

// LoadConfigFile reads a TOML configuration file.
// Unreadable or malformed files are reported as *core.ConfigError.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError("config", fmt.Sprintf("cannot read %q", path), err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, core.NewConfigError("config", fmt.Sprintf("malformed TOML in %q", path), err)
	}
	if r := f.Matching.NgramRange; r != nil && len(r) != 2 {
		return nil, core.NewConfigError("ngram_range", fmt.Sprintf("expected [min, max], got %v", r), nil)
	}
	return &f, nil
}

// Apply overlays the matching section onto cfg.
func (f *File) Apply(cfg *Config) {
	m := f.Matching
	if m.TopK != nil {
		cfg.TopK = *m.TopK
	}
	if len(m.NgramRange) == 2 {
		cfg.NgramRange = NgramRange{Min: m.NgramRange[0], Max: m.NgramRange[1]}
	}
	if m.StopPhrases != nil {
		cfg.StopPhrases = append([]string(nil), m.StopPhrases...)
	}
	if m.RulesEnabled != nil {
		cfg.RulesEnabled = *m.RulesEnabled
	}
	if m.LexicalMaxFeatures != nil {
		n := *m.LexicalMaxFeatures
		cfg.LexicalMaxFeatures = &n
	}
	if m.LexicalStemming != nil {
		cfg.LexicalStemming = *m.LexicalStemming
	}
	if m.EmbeddingModelName != nil {
		cfg.EmbeddingModelName = *m.EmbeddingModelName
	}
	if m.LexiconPath != nil {
		cfg.LexiconPath = *m.LexiconPath
	}
}

// ApplyEmbedding overlays the embedding section onto cfg.
func (f *File) ApplyEmbedding(cfg *ai.Config) {
	e := f.Embedding
	setString(&cfg.APIType, e.APIType)
	setString(&cfg.Endpoint, e.Endpoint)
	setString(&cfg.APIVersion, e.APIVersion)
	setString(&cfg.Deployment, e.Deployment)
	setString(&cfg.LocalModelDir, e.ModelDir)
	setString(&cfg.ONNXLibrary, e.ONNXLibrary)
	setInt(&cfg.MaxInputTokens, e.MaxInputTokens)
	setInt(&cfg.BatchSize, e.BatchSize)
	setInt(&cfg.MaxSeqLen, e.MaxSeqLen)
}

// Threshold returns the configured coverage threshold or fallback.
func (f *File) Threshold(fallback float64) float64 {
	if f.Matching.MinScoreThreshold != nil {
		return *f.Matching.MinScoreThreshold
	}
	return fallback
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
