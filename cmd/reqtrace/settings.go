package main

import (
	"fmt"
	"path/filepath"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/ai/provider"
	"github.com/poiesic/reqtrace/batch"
	"github.com/poiesic/reqtrace/core"
	"github.com/poiesic/reqtrace/coverage"
	"github.com/poiesic/reqtrace/matching"
	"github.com/poiesic/reqtrace/workbook"
	"github.com/urfave/cli/v2"
)

// newProvider is swapped out in tests.
var newProvider = provider.New

// settings is the merged result of defaults, the config file and flags.
// Flags win over the file; the file wins over defaults.
type settings struct {
	matching   *matching.Config
	embedding  *ai.Config
	threshold  float64
	configPath string
}

func loadSettings(c *cli.Context) (*settings, error) {
	s := &settings{
		matching:   matching.DefaultConfig(),
		embedding:  ai.DefaultConfig(),
		threshold:  coverage.DefaultThreshold,
		configPath: c.String("config"),
	}

	if s.configPath != "" {
		file, err := matching.LoadConfigFile(s.configPath)
		if err != nil {
			return nil, err
		}
		file.Apply(s.matching)
		file.ApplyEmbedding(s.embedding)
		s.threshold = file.Threshold(s.threshold)
	}

	applyMatchingFlags(c, s.matching)
	applyBackendFlags(c, s.embedding)
	if c.IsSet("threshold") {
		s.threshold = c.Float64("threshold")
	}

	if err := s.matching.Validate(); err != nil {
		return nil, err
	}
	if err := s.embedding.Validate(); err != nil {
		return nil, core.NewConfigError("embedding", err.Error(), err)
	}
	return s, nil
}

func applyMatchingFlags(c *cli.Context, cfg *matching.Config) {
	if c.IsSet("top-k") {
		cfg.TopK = c.Int("top-k")
	}
	if c.IsSet("ngram-min") {
		cfg.NgramRange.Min = c.Int("ngram-min")
	}
	if c.IsSet("ngram-max") {
		cfg.NgramRange.Max = c.Int("ngram-max")
	}
	if c.IsSet("stop-phrase") {
		cfg.StopPhrases = c.StringSlice("stop-phrase")
	}
	if c.IsSet("no-rules") {
		cfg.RulesEnabled = !c.Bool("no-rules")
	}
	if c.IsSet("lexicon") {
		cfg.LexiconPath = c.String("lexicon")
	}
	if c.IsSet("max-features") {
		if n := c.Int("max-features"); n > 0 {
			cfg.LexicalMaxFeatures = &n
		} else {
			cfg.LexicalMaxFeatures = nil
		}
	}
	if c.IsSet("stem") {
		cfg.LexicalStemming = c.Bool("stem")
	}
	if c.IsSet("local-model") {
		cfg.EmbeddingModelName = c.String("local-model")
	}
}

func applyBackendFlags(c *cli.Context, cfg *ai.Config) {
	switch {
	case c.String("openai-base-url") != "":
		ai.WithProxy(c.String("openai-base-url"), c.String("openai-api-key"))(cfg)
	case c.String("azure-endpoint") != "":
		ai.WithAzure(c.String("azure-endpoint"), c.String("azure-api-key"), "", "")(cfg)
	}
	if c.IsSet("azure-api-version") {
		cfg.APIVersion = c.String("azure-api-version")
	}
	if c.IsSet("deployment") {
		cfg.Deployment = c.String("deployment")
	}
	if c.IsSet("model-dir") {
		ai.WithLocalModel(c.String("model-dir"), "")(cfg)
	}
	if c.IsSet("onnx-library") {
		cfg.ONNXLibrary = c.String("onnx-library")
	}
}

func mappings(c *cli.Context) (child, parent core.ColumnMapping) {
	child = core.ColumnMapping{IDColumn: c.String("child-id"), TextColumn: c.String("child-text")}
	parent = core.ColumnMapping{IDColumn: c.String("parent-id"), TextColumn: c.String("parent-text")}
	return child, parent
}

// matchJob builds the single job of the match and watch commands.
func matchJob(c *cli.Context) batch.Job {
	src := workbook.Source{
		ChildPath:   c.String("child"),
		ChildSheet:  c.String("child-sheet"),
		ParentPath:  c.String("parent"),
		ParentSheet: c.String("parent-sheet"),
	}
	if src.ParentPath == "" {
		src.ParentPath = src.ChildPath
	}
	childMap, parentMap := mappings(c)
	return batch.Job{
		Name:        filepath.Base(src.ChildPath),
		Source:      src,
		ChildMap:    childMap,
		ParentMap:   parentMap,
		ChildExtra:  c.StringSlice("child-extra"),
		ParentExtra: c.StringSlice("parent-extra"),
		Output:      c.String("output"),
		OutputSheet: c.String("output-sheet"),
	}
}

// providerFactory gives every job its own copy of the embedding config,
// since backend selection normalizes the config in place. The local encoder
// name comes from the matching config.
func providerFactory(m *matching.Config, cfg *ai.Config) batch.ProviderFactory {
	return func() (ai.Provider, error) {
		return newProvider(m.EmbeddingConfig(cfg))
	}
}

func newRunner(c *cli.Context, s *settings, opts ...batch.Option) (*batch.Runner, error) {
	opts = append([]batch.Option{
		batch.WithThreshold(s.threshold),
		batch.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
	}, opts...)
	runner, err := batch.NewRunner(providerFactory(s.matching, s.embedding), s.matching, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create runner: %w", err)
	}
	return runner, nil
}
