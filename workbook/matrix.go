package workbook

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/poiesic/reqtrace/core"
)

// ReadTraceMatrix loads a trace matrix previously written by WriteXLSX or
// WriteCSV. An empty sheet name selects DefaultSheetName for workbooks.
func ReadTraceMatrix(path, sheet string) (*core.TraceMatrix, error) {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	t, err := ReadTable(path, sheet)
	if err != nil {
		return nil, err
	}
	return ParseTraceMatrix(t)
}

// ParseTraceMatrix converts an exported table back into a TraceMatrix.
func ParseTraceMatrix(t *Table) (*core.TraceMatrix, error) {
	if len(t.Header) < len(baseColumns) {
		return nil, fmt.Errorf("%w: expected at least %d columns, got %d", ErrMalformedMatrix, len(baseColumns), len(t.Header))
	}
	for i, col := range baseColumns {
		if t.Header[i] != col {
			return nil, fmt.Errorf("%w: column %d is %q, want %q", ErrMalformedMatrix, i+1, t.Header[i], col)
		}
	}

	matrix := &core.TraceMatrix{}
	inParent := false
	for _, col := range t.Header[len(baseColumns):] {
		switch {
		case !inParent && strings.HasPrefix(col, childPrefix):
			matrix.ChildColumns = append(matrix.ChildColumns, strings.TrimPrefix(col, childPrefix))
		case strings.HasPrefix(col, parentPrefix):
			inParent = true
			matrix.ParentColumns = append(matrix.ParentColumns, strings.TrimPrefix(col, parentPrefix))
		default:
			return nil, fmt.Errorf("%w: unexpected column %q", ErrMalformedMatrix, col)
		}
	}

	for n, cells := range t.Rows {
		row, err := parseRow(cells, len(matrix.ChildColumns), len(matrix.ParentColumns))
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", ErrMalformedMatrix, n+2, err)
		}
		matrix.Rows = append(matrix.Rows, row)
	}
	return matrix, nil
}

func parseRow(cells []string, childCols, parentCols int) (core.TraceRow, error) {
	row := core.TraceRow{
		ChildID:    cells[0],
		ChildText:  cells[1],
		ParentID:   cells[2],
		ParentText: cells[3],
	}

	if s := strings.TrimSpace(cells[4]); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return row, fmt.Errorf("Score_Rule: %w", err)
		}
		row.Score.RuleScore = &v
	}

	scores := []*float64{&row.Score.EmbeddingScore, &row.Score.TFIDFScore, &row.Score.FusedScore}
	for i, dst := range scores {
		v, err := parseScore(cells[5+i])
		if err != nil {
			return row, fmt.Errorf("%s: %w", baseColumns[5+i], err)
		}
		*dst = v
	}

	method, ok := core.ParseMethod(cells[8])
	if !ok {
		return row, fmt.Errorf("unknown method %q", cells[8])
	}
	row.Score.Method = method

	row.MatchedGroups = []string{}
	if g := strings.TrimSpace(cells[9]); g != "" {
		row.MatchedGroups = strings.Split(g, groupSep)
	}

	offset := len(baseColumns)
	row.ChildExtra = append([]string{}, cells[offset:offset+childCols]...)
	row.ParentExtra = append([]string{}, cells[offset+childCols:offset+childCols+parentCols]...)
	return row, nil
}

func parseScore(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
