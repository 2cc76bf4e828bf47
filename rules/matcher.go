package rules

import "strings"

// RuleConfidence is the score assigned to any pair with a matched group.
// Fusion takes the max with the other signals, so it acts as a floor.
const RuleConfidence = 0.85

// Result is the outcome of rule matching for one pair.
type Result struct {
	// Score is nil when no group matched.
	Score  *float64
	Groups []string
}

// Matched reports whether any group matched.
func (r Result) Matched() bool {
	return r.Score != nil
}

// Tokens splits normalized text into its set of whitespace tokens.
func Tokens(text string) map[string]struct{} {
	fields := strings.Fields(text)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Match checks both normalized texts against every lexicon group.
func Match(childText, parentText string, lex *Lexicon) Result {
	return MatchTokens(Tokens(childText), Tokens(parentText), lex)
}

// MatchTokens is Match over pre-split token sets. A group matches when both
// sides contain at least one of its keywords.
func MatchTokens(child, parent map[string]struct{}, lex *Lexicon) Result {
	if lex.Len() == 0 {
		return Result{Groups: []string{}}
	}

	groups := []string{}
	for _, name := range lex.names {
		kws := lex.keywords[name]
		if intersects(child, kws) && intersects(parent, kws) {
			groups = append(groups, name)
		}
	}
	if len(groups) == 0 {
		return Result{Groups: groups}
	}
	score := RuleConfidence
	return Result{Score: &score, Groups: groups}
}

func intersects(tokens, keywords map[string]struct{}) bool {
	small, large := tokens, keywords
	if len(small) > len(large) {
		small, large = large, small
	}
	for t := range small {
		if _, ok := large[t]; ok {
			return true
		}
	}
	return false
}
