package matching

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize lowercases text, removes every stop phrase and collapses
// whitespace. Phrases are literal substrings removed in the given order and
// replaced by a space. Passes repeat until the text is stable, so the result
// never contains a stop phrase and Normalize is idempotent.
func Normalize(text string, stopPhrases []string) string {
	phrases := normalizePhrases(stopPhrases)
	for {
		next := step(text, phrases)
		if next == text {
			return next
		}
		text = next
	}
}

func step(text string, phrases []string) string {
	text = collapse(strings.ToLower(norm.NFKC.String(text)))
	for _, p := range phrases {
		if strings.Contains(text, p) {
			text = collapse(strings.ReplaceAll(text, p, " "))
		}
	}
	return text
}

// normalizePhrases folds case and compatibility forms and drops blanks.
// Edge whitespace is kept, so " shall " only removes the whole word. Inner
// whitespace runs shrink to one space since collapsed text has no runs.
func normalizePhrases(stopPhrases []string) []string {
	out := make([]string, 0, len(stopPhrases))
	for _, p := range stopPhrases {
		p = strings.ToLower(norm.NFKC.String(p))
		inner := collapse(p)
		if inner == "" {
			continue
		}
		if strings.TrimLeftFunc(p, unicode.IsSpace) != p {
			inner = " " + inner
		}
		if strings.TrimRightFunc(p, unicode.IsSpace) != p {
			inner += " "
		}
		out = append(out, inner)
	}
	return out
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
