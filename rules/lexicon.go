package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/poiesic/reqtrace/core"
	"golang.org/x/text/unicode/norm"
)

const lexiconField = "lexicon_path"

// Lexicon maps upper-case group names to sets of lower-case keywords.
// Groups keep the order in which they first appear in the source file.
// A Lexicon is read-only once built and safe for concurrent use.
type Lexicon struct {
	names    []string
	keywords map[string]map[string]struct{}
}

// NewLexicon returns an empty lexicon.
func NewLexicon() *Lexicon {
	return &Lexicon{keywords: make(map[string]map[string]struct{})}
}

// Add sets the keywords of a group. The name is upper-cased and keywords are
// folded like requirement text (NFKC, then lower-case). Adding an existing group replaces its keywords but keeps its
// original position.
func (l *Lexicon) Add(name string, keywords ...string) *Lexicon {
	key := strings.ToUpper(name)
	if _, exists := l.keywords[key]; !exists {
		l.names = append(l.names, key)
	}
	set := make(map[string]struct{}, len(keywords))
	for _, kw := range keywords {
		set[strings.ToLower(norm.NFKC.String(kw))] = struct{}{}
	}
	l.keywords[key] = set
	return l
}

// Groups returns the group names in lexicon order.
func (l *Lexicon) Groups() []string {
	if l == nil {
		return nil
	}
	return append([]string(nil), l.names...)
}

// Len returns the number of groups.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.names)
}

// Contains reports whether keyword belongs to group.
func (l *Lexicon) Contains(group, keyword string) bool {
	if l == nil {
		return false
	}
	_, ok := l.keywords[group][keyword]
	return ok
}

// MultiWordKeywords lists keywords containing whitespace. Matching works on
// whitespace tokens, so such keywords can never match.
func (l *Lexicon) MultiWordKeywords() []string {
	if l == nil {
		return nil
	}
	var out []string
	for _, name := range l.names {
		for kw := range l.keywords[name] {
			if len(strings.Fields(kw)) != 1 {
				out = append(out, name+": "+kw)
			}
		}
	}
	slices.Sort(out)
	return out
}

// Keywords returns the sorted keywords of group.
func (l *Lexicon) Keywords(group string) []string {
	if l == nil {
		return nil
	}
	out := make([]string, 0, len(l.keywords[group]))
	for kw := range l.keywords[group] {
		out = append(out, kw)
	}
	slices.Sort(out)
	return out
}

// MarshalJSON writes the lexicon as a JSON object in group order, the
// format ParseLexicon reads.
func (l *Lexicon) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range l.Groups() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		keywords, err := json.Marshal(l.Keywords(name))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(keywords)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LoadLexicon reads a JSON lexicon file.
// A missing or malformed file is reported as a *core.ConfigError.
func LoadLexicon(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError(lexiconField, fmt.Sprintf("cannot read lexicon %q", path), err)
	}
	lex, err := ParseLexicon(bytes.NewReader(data))
	if err != nil {
		var cfgErr *core.ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Reason = fmt.Sprintf("%s in %q", cfgErr.Reason, path)
		}
		return nil, err
	}
	return lex, nil
}

// ParseLexicon decodes a JSON object of group name to keyword array,
// preserving group order.
func ParseLexicon(r io.Reader) (*Lexicon, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, malformed(err)
	}

	lex := NewLexicon()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, malformed(err)
		}
		name, ok := tok.(string)
		if !ok {
			return nil, malformed(fmt.Errorf("unexpected token %v", tok))
		}

		var keywords []string
		if err := dec.Decode(&keywords); err != nil {
			return nil, malformed(fmt.Errorf("group %q: %w", name, err))
		}
		lex.Add(name, keywords...)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, malformed(err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, malformed(errors.New("trailing data after lexicon object"))
	}
	return lex, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, found %v", want, tok)
	}
	return nil
}

func malformed(err error) error {
	return core.NewConfigError(lexiconField, "malformed lexicon", err)
}
