// Package similarity computes child × parent cosine similarity matrices from
// embedding vectors and from a jointly fitted TF-IDF space.
package similarity

// Matrix is a dense row-major children × parents score grid.
type Matrix struct {
	rows, cols int
	data       []float64
}

// NewMatrix returns a zero matrix of the given shape.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}
}

// Rows returns the number of children.
func (m Matrix) Rows() int { return m.rows }

// Cols returns the number of parents.
func (m Matrix) Cols() int { return m.cols }

// At returns the score of child i against parent j.
func (m Matrix) At(i, j int) float64 {
	return m.data[i*m.cols+j]
}

// Set stores the score of child i against parent j.
func (m Matrix) Set(i, j int, v float64) {
	m.data[i*m.cols+j] = v
}

// Row returns the scores of child i. The slice aliases the matrix.
func (m Matrix) Row(i int) []float64 {
	return m.data[i*m.cols : (i+1)*m.cols]
}

// FromRows builds a matrix from nested slices. All rows must have the same
// length as the first.
func FromRows(rows [][]float64) Matrix {
	if len(rows) == 0 {
		return NewMatrix(0, 0)
	}
	m := NewMatrix(len(rows), len(rows[0]))
	for i, row := range rows {
		copy(m.Row(i), row)
	}
	return m
}

// clamp keeps rounding noise from pushing cosines outside [-1, 1].
func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}
