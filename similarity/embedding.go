package similarity

import (
	"errors"
	"fmt"
	"math"
)

// ErrDimensionMismatch means embedding vectors of different lengths were compared.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Embedding returns the cosine similarity of every child vector against every
// parent vector. Rows are L2-normalized before the product. Empty or
// zero-norm vectors score 0 against everything. If either side is empty the
// result is a zero matrix of shape len(child) × len(parent).
func Embedding(child, parent [][]float32) (Matrix, error) {
	m := NewMatrix(len(child), len(parent))
	if len(child) == 0 || len(parent) == 0 {
		return m, nil
	}

	dim := 0
	for _, set := range [][][]float32{child, parent} {
		for _, v := range set {
			if len(v) == 0 {
				continue
			}
			if dim == 0 {
				dim = len(v)
			} else if len(v) != dim {
				return Matrix{}, fmt.Errorf("%w: got %d and %d", ErrDimensionMismatch, dim, len(v))
			}
		}
	}
	if dim == 0 {
		return m, nil
	}

	cn := normalizeRows(child)
	pn := normalizeRows(parent)
	for i, c := range cn {
		if c == nil {
			continue
		}
		row := m.Row(i)
		for j, p := range pn {
			if p == nil {
				continue
			}
			var dot float64
			for k := range c {
				dot += c[k] * p[k]
			}
			row[j] = clamp(dot)
		}
	}
	return m, nil
}

// normalizeRows returns unit-length float64 copies; zero rows become nil.
func normalizeRows(vectors [][]float32) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		var sum float64
		for _, x := range v {
			sum += float64(x) * float64(x)
		}
		if sum == 0 {
			continue
		}
		norm := math.Sqrt(sum)
		row := make([]float64, len(v))
		for k, x := range v {
			row[k] = float64(x) / norm
		}
		out[i] = row
	}
	return out
}
