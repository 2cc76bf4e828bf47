package matching

import "errors"

var (
	// ErrEmbedderRequired is returned when NewRanker is given a nil embedder.
	ErrEmbedderRequired = errors.New("embedder is required")
)
