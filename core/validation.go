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
	"slices"
	"strings"

	"github.com/hbollon/go-edlib"
)

// suggestionThreshold is the minimum Jaro-Winkler similarity for a header
// to be offered as a "did you mean" hint.
const suggestionThreshold = 0.8

// ColumnMapping names the identifier and text columns of a table.
type ColumnMapping struct {
	IDColumn   string
	TextColumn string
}

// ValidateColumns checks that the mapped columns exist in the header.
//
// Validation rules:
//   - IDColumn and TextColumn must be set
//   - IDColumn and TextColumn must name different columns
//   - both must appear in header (exact match after trimming)
//
// Missing columns produce an InputShapeError carrying the closest header
// names, which is usually enough to spot a typo or a renamed sheet column.
func ValidateColumns(table string, header []string, mapping ColumnMapping) error {
	expected := []string{mapping.IDColumn, mapping.TextColumn}
	actual := make([]string, len(header))
	for i, h := range header {
		actual[i] = strings.TrimSpace(h)
	}

	if strings.TrimSpace(mapping.IDColumn) == "" || strings.TrimSpace(mapping.TextColumn) == "" {
		return &InputShapeError{
			Table:    table,
			Expected: expected,
			Actual:   actual,
			Reason:   "identifier and text columns are required",
		}
	}

	if mapping.IDColumn == mapping.TextColumn {
		return &InputShapeError{
			Table:    table,
			Expected: expected,
			Actual:   actual,
			Reason:   "identifier and text cannot be the same column",
		}
	}

	var missing []string
	for _, col := range expected {
		if !slices.Contains(actual, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	suggestions := make(map[string]string)
	for _, col := range missing {
		if best, ok := closestColumn(col, actual); ok {
			suggestions[col] = best
		}
	}

	return &InputShapeError{
		Table:       table,
		Expected:    expected,
		Actual:      actual,
		Reason:      "required columns missing after mapping",
		Suggestions: suggestions,
	}
}

// closestColumn returns the header most similar to name, if any clears
// suggestionThreshold. Comparison is case-insensitive.
func closestColumn(name string, header []string) (string, bool) {
	var (
		best      string
		bestScore float32
	)
	for _, h := range header {
		if h == "" {
			continue
		}
		score, err := edlib.StringsSimilarity(strings.ToLower(name), strings.ToLower(h), edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = h, score
		}
	}
	if bestScore < suggestionThreshold {
		return "", false
	}
	return best, true
}
