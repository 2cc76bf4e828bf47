package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/poiesic/reqtrace/ai"
	"github.com/poiesic/reqtrace/core"
	"github.com/poiesic/reqtrace/rules"
	"github.com/poiesic/reqtrace/similarity"
)

// Extras names the pass-through columns copied into each row.
type Extras struct {
	Child  []string
	Parent []string
}

// Ranker scores every child against every parent and keeps the best TopK.
// A Ranker owns its config and lexicon; it holds no other state, so separate
// Rankers can run concurrently.
type Ranker struct {
	embedder ai.Embedder
	config   Config
	lexicon  *rules.Lexicon
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*Ranker) error

// WithLogger sets the logger used by the ranker.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Ranker) error {
		r.logger = logger
		return nil
	}
}

// WithLexicon supplies a lexicon instead of loading Config.LexiconPath.
func WithLexicon(lex *rules.Lexicon) Option {
	return func(r *Ranker) error {
		r.lexicon = lex
		return nil
	}
}

// NewRanker validates cfg and loads the lexicon when rules are enabled.
// A nil cfg uses DefaultConfig. Configuration problems are reported as
// *core.ConfigError before any scoring happens.
func NewRanker(embedder ai.Embedder, cfg *Config, opts ...Option) (*Ranker, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Ranker{
		embedder: embedder,
		config:   *cfg,
		logger:   slog.Default().With("component", "ranker"),
	}
	r.config.StopPhrases = append([]string(nil), cfg.StopPhrases...)
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	if !r.config.RulesEnabled {
		r.lexicon = nil
		return r, nil
	}
	if r.lexicon == nil {
		lex, err := rules.LoadLexicon(r.config.LexiconPath)
		if err != nil {
			return nil, err
		}
		r.lexicon = lex
	}
	for _, kw := range r.lexicon.MultiWordKeywords() {
		r.logger.Warn("lexicon keyword spans several words and can never match", "keyword", kw)
	}
	r.logger.Debug("lexicon ready", "groups", r.lexicon.Len())
	return r, nil
}

// Config returns a copy of the ranker configuration.
func (r *Ranker) Config() Config {
	return r.config
}

// Rank produces the trace matrix. Children keep their input order; each
// child's rows are sorted by descending fused score. A child with blank text
// yields a single NoMatch placeholder row. The embedder is called at most
// twice, once per side. Any error aborts the run and no rows are returned.
func (r *Ranker) Rank(ctx context.Context, children, parents []core.RequirementRecord, extras Extras) (*core.TraceMatrix, error) {
	start := time.Now()

	childTexts := r.normalizeAll(children)
	parentTexts := r.normalizeAll(parents)

	childVecs, err := r.embedSide(ctx, "children", childTexts)
	if err != nil {
		return nil, err
	}
	parentVecs, err := r.embedSide(ctx, "parents", parentTexts)
	if err != nil {
		return nil, err
	}

	embMatrix, err := similarity.Embedding(childVecs, parentVecs)
	if err != nil {
		return nil, ai.NewBackendError("embedder", err)
	}
	tfidfMatrix := similarity.Lexical(childTexts, parentTexts, similarity.LexicalOptions{
		NgramMin:    r.config.NgramRange.Min,
		NgramMax:    r.config.NgramRange.Max,
		MaxFeatures: r.config.LexicalMaxFeatures,
		Stemming:    r.config.LexicalStemming,
	})

	var parentTokens []map[string]struct{}
	if r.lexicon != nil {
		parentTokens = make([]map[string]struct{}, len(parents))
		for j, text := range parentTexts {
			parentTokens[j] = rules.Tokens(text)
		}
	}

	matrix := &core.TraceMatrix{
		ChildColumns:  append([]string(nil), extras.Child...),
		ParentColumns: append([]string(nil), extras.Parent...),
	}

	for i := range children {
		child := &children[i]
		if strings.TrimSpace(child.Text) == "" {
			matrix.Rows = append(matrix.Rows, placeholderRow(child, extras))
			continue
		}

		ruleResults := make([]rules.Result, len(parents))
		for j := range ruleResults {
			ruleResults[j].Groups = []string{}
		}
		if r.lexicon != nil {
			childTokens := rules.Tokens(childTexts[i])
			for j := range parents {
				ruleResults[j] = rules.MatchTokens(childTokens, parentTokens[j], r.lexicon)
			}
		}

		scores := scorePairs(embMatrix.Row(i), tfidfMatrix.Row(i), ruleResults)
		for _, j := range selectTopK(scores, r.config.TopK) {
			parent := &parents[j]
			matrix.Rows = append(matrix.Rows, core.TraceRow{
				ChildID:       child.ID,
				ChildText:     child.Text,
				ParentID:      parent.ID,
				ParentText:    parent.Text,
				Score:         scores[j],
				MatchedGroups: ruleResults[j].Groups,
				ChildExtra:    extraValues(child, extras.Child),
				ParentExtra:   extraValues(parent, extras.Parent),
			})
		}
	}

	r.logger.Info("ranking complete",
		"children", len(children),
		"parents", len(parents),
		"rows", len(matrix.Rows),
		"elapsed", time.Since(start))
	return matrix, nil
}

func (r *Ranker) normalizeAll(records []core.RequirementRecord) []string {
	out := make([]string, len(records))
	for i := range records {
		out[i] = Normalize(records[i].Text, r.config.StopPhrases)
	}
	return out
}

// embedSide embeds one side in a single call. Identical texts are sent once
// and empty texts are not sent at all; they keep a nil vector, which scores 0.
func (r *Ranker) embedSide(ctx context.Context, side string, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))

	slot := make(map[core.ID]int)
	var unique []string
	positions := make([]int, len(texts))
	for i, text := range texts {
		positions[i] = -1
		if text == "" {
			continue
		}
		key := core.IDFromContent(text)
		idx, seen := slot[key]
		if !seen {
			idx = len(unique)
			slot[key] = idx
			unique = append(unique, text)
		}
		positions[i] = idx
	}
	if len(unique) == 0 {
		r.logger.Debug("nothing to embed", "side", side)
		return vectors, nil
	}

	r.logger.Debug("embedding texts", "side", side, "texts", len(texts), "unique", len(unique))
	embedded, err := r.embedder.EmbedTexts(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("embed %s: %w", side, asBackendError(err))
	}
	if len(embedded) != len(unique) {
		return nil, fmt.Errorf("embed %s: %w", side, ai.NewBackendError("embedder",
			fmt.Errorf("got %d vectors for %d texts", len(embedded), len(unique))))
	}

	for i, idx := range positions {
		if idx >= 0 {
			vectors[i] = embedded[idx]
		}
	}
	return vectors, nil
}

// asBackendError leaves typed embedding errors and context errors alone and
// wraps anything else as a backend failure.
func asBackendError(err error) error {
	switch {
	case errors.Is(err, ai.ErrEmbeddingBackend),
		errors.Is(err, ai.ErrEmbeddingUnavailable),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return ai.NewBackendError("embedder", err)
	}
}

// scorePairs fuses the signals of one child against every parent.
func scorePairs(embRow, tfidfRow []float64, ruleResults []rules.Result) []core.PairScore {
	scores := make([]core.PairScore, len(embRow))
	for j := range embRow {
		var rule *float64
		if j < len(ruleResults) {
			rule = ruleResults[j].Score
		}
		fused, method := Fuse(rule, embRow[j], tfidfRow[j])
		scores[j] = core.PairScore{
			RuleScore:      rule,
			EmbeddingScore: embRow[j],
			TFIDFScore:     tfidfRow[j],
			FusedScore:     fused,
			Method:         method,
		}
	}
	return scores
}

// selectTopK returns the indices of the k highest fused scores, best first.
// Equal scores keep parent order.
func selectTopK(scores []core.PairScore, k int) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]].FusedScore > scores[idx[b]].FusedScore
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}

func placeholderRow(child *core.RequirementRecord, extras Extras) core.TraceRow {
	return core.TraceRow{
		ChildID:       child.ID,
		Score:         core.PairScore{RuleScore: core.Float(0), Method: core.MethodNoMatch},
		MatchedGroups: []string{},
		ChildExtra:    extraValues(child, extras.Child),
		ParentExtra:   make([]string, len(extras.Parent)),
	}
}

func extraValues(rec *core.RequirementRecord, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = rec.ExtraValue(col)
	}
	return out
}
