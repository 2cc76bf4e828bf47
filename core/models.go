package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier used to deduplicate texts within a run.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// RequirementRecord is one row of a child or parent table.
// Records are immutable once loaded; the ranker only reads them.
type RequirementRecord struct {
	ID    string
	Text  string
	Extra map[string]string // Pass-through columns keyed by header name
}

// ExtraValue returns the named pass-through column, or "" when absent.
func (r *RequirementRecord) ExtraValue(column string) string {
	if r.Extra == nil {
		return ""
	}
	return r.Extra[column]
}

// Method identifies which signal produced a fused score.
type Method int

const (
	// MethodNoMatch marks the placeholder row emitted for an empty child.
	MethodNoMatch Method = iota
	// MethodFusion means a rule fired and the max of all signals was taken.
	MethodFusion
	// MethodEmbedding means the embedding similarity won (ties included).
	MethodEmbedding
	// MethodLexical means the TF-IDF similarity won.
	MethodLexical
)

var methodNames = map[Method]string{
	MethodNoMatch:   "NoMatch",
	MethodFusion:    "Fusion",
	MethodEmbedding: "Embedding",
	MethodLexical:   "Lexical",
}

// String returns the label written to exported trace matrices.
func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "Unknown"
}

// ParseMethod converts an exported label back to a Method.
func ParseMethod(label string) (Method, bool) {
	for m, name := range methodNames {
		if name == label {
			return m, true
		}
	}
	return MethodNoMatch, false
}

// PairScore holds every signal computed for one (child, parent) pair.
type PairScore struct {
	// RuleScore is nil when no lexicon group matched. A nil rule score is
	// "no rule evidence", which is not the same thing as a zero score.
	RuleScore      *float64
	EmbeddingScore float64
	TFIDFScore     float64
	FusedScore     float64
	Method         Method
}

// TraceRow is one (child, parent) pairing in the ranked result.
type TraceRow struct {
	ChildID       string
	ChildText     string
	ParentID      string
	ParentText    string
	Score         PairScore
	MatchedGroups []string
	ChildExtra    []string // Aligned with TraceMatrix.ChildColumns
	ParentExtra   []string // Aligned with TraceMatrix.ParentColumns
}

// IsPlaceholder reports whether the row stands in for an empty child.
func (r *TraceRow) IsPlaceholder() bool {
	return r.Score.Method == MethodNoMatch
}

// TraceMatrix is the ordered ranking output. Rows are grouped by child in
// input order and sorted by descending fused score within each child.
type TraceMatrix struct {
	ChildColumns  []string
	ParentColumns []string
	Rows          []TraceRow
}

// Totals summarizes the size of a ranking run.
type Totals struct {
	Children int
	Parents  int
	Traces   int
}

// ValidationReport lists coverage gaps in a trace matrix.
// Both ID lists have set semantics; their order carries no meaning.
type ValidationReport struct {
	OrphanChildren   []string
	ChildlessParents []string
	Totals           Totals
}

// HasWarnings reports whether any child or parent lacks coverage.
func (v *ValidationReport) HasWarnings() bool {
	return len(v.OrphanChildren) > 0 || len(v.ChildlessParents) > 0
}

// Float returns a pointer to v. Handy for optional scores.
func Float(v float64) *float64 {
	return &v
}
