package openai

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the tokenizer used by the text-embedding-3 family.
const encodingName = "cl100k_base"

// truncator shortens texts to a token budget before they are sent.
// The encoding is loaded lazily on first use; if it cannot be loaded the
// texts pass through untouched and the remote side enforces its own limit.
type truncator struct {
	maxTokens int
	logger    *slog.Logger

	once     sync.Once
	mu       sync.Mutex
	encoding *tiktoken.Tiktoken
}

func newTruncator(maxTokens int, logger *slog.Logger) *truncator {
	return &truncator{maxTokens: maxTokens, logger: logger}
}

func (t *truncator) load() *tiktoken.Tiktoken {
	t.once.Do(func() {
		enc, err := tiktoken.GetEncoding(encodingName)
		if err != nil {
			t.logger.Warn("token truncation disabled", "encoding", encodingName, "err", err)
			return
		}
		t.encoding = enc
	})
	return t.encoding
}

// truncateAll returns texts with each entry cut to maxTokens tokens.
// The input slice is never modified.
func (t *truncator) truncateAll(texts []string) []string {
	if t == nil || t.maxTokens <= 0 {
		return texts
	}
	enc := t.load()
	if enc == nil {
		return texts
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(texts))
	for i, text := range texts {
		tokens := enc.Encode(text, nil, nil)
		if len(tokens) <= t.maxTokens {
			out[i] = text
			continue
		}
		out[i] = enc.Decode(tokens[:t.maxTokens])
		t.logger.Debug("truncated input", "index", i, "tokens", len(tokens), "max", t.maxTokens)
	}
	return out
}
