package ai

import (
	"errors"
	"fmt"
)

var (
	// ErrEmbeddingUnavailable means neither a remote nor a local backend is configured.
	ErrEmbeddingUnavailable = errors.New("no embedding backend configured")

	// ErrEmbeddingBackend marks a failure reported by a configured backend.
	ErrEmbeddingBackend = errors.New("embedding backend error")
)

// BackendError wraps a failure from a named embedding backend.
// It matches ErrEmbeddingBackend with errors.Is.
type BackendError struct {
	Backend string
	Err     error
}

// NewBackendError wraps err for the named backend. A nil err yields nil.
func NewBackendError(backend string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Backend: backend, Err: err}
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s (%s): %v", ErrEmbeddingBackend, e.Backend, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrEmbeddingBackend
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
