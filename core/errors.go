// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Domain errors
var (
	// ErrInvalidConfig indicates a matching configuration or lexicon failed validation.
	ErrInvalidConfig = errors.New("invalid matching config")

	// ErrInputShape indicates a table is missing a required column after mapping.
	ErrInputShape = errors.New("invalid input shape")
)

// ConfigError describes an invalid configuration value. It matches
// ErrInvalidConfig with errors.Is.
type ConfigError struct {
	Field  string
	Reason string
	Err    error // Optional underlying cause (e.g. a JSON syntax error)
}

// NewConfigError creates a ConfigError for the given field.
func NewConfigError(field, reason string, cause error) *ConfigError {
	return &ConfigError{Field: field, Reason: reason, Err: cause}
}

func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s: %s", ErrInvalidConfig, e.Field, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// InputShapeError reports required columns absent from a table.
// It matches ErrInputShape with errors.Is.
type InputShapeError struct {
	Table    string
	Expected []string
	Actual   []string
	Reason   string

	// Suggestions maps each missing column to the closest actual header.
	Suggestions map[string]string
}

func (e *InputShapeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s table", ErrInputShape, e.Table)
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	fmt.Fprintf(&b, " (expected %s; got %s)", quoteList(e.Expected), quoteList(e.Actual))

	if len(e.Suggestions) > 0 {
		missing := make([]string, 0, len(e.Suggestions))
		for m := range e.Suggestions {
			missing = append(missing, m)
		}
		sort.Strings(missing)
		hints := make([]string, 0, len(missing))
		for _, m := range missing {
			hints = append(hints, fmt.Sprintf("%q -> %q", m, e.Suggestions[m]))
		}
		fmt.Fprintf(&b, "; did you mean %s?", strings.Join(hints, ", "))
	}
	return b.String()
}

func (e *InputShapeError) Is(target error) bool {
	return target == ErrInputShape
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = fmt.Sprintf("%q", item)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
