package batch

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrProviderFactoryRequired is returned when NewRunner gets a nil factory.
	ErrProviderFactoryRequired = errors.New("provider factory is required")

	// ErrNoInputs is returned when discovery matches no supported files.
	ErrNoInputs = errors.New("no input workbooks matched")
)
