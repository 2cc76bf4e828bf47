package workbook

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/reqtrace/core"
	"github.com/xuri/excelize/v2"
)

// DefaultSheetName is the sheet written by WriteXLSX when none is given.
const DefaultSheetName = "Trace_Matrix_Scores"

// swapSheet briefly holds the workbook open while a sheet is replaced.
const swapSheet = "reqtrace_swap"

// Fixed leading columns of an exported trace matrix.
var baseColumns = []string{
	"Child_ID",
	"Child_Text",
	"Parent_ID",
	"Parent_Text",
	"Score_Rule",
	"Score_Embedding",
	"Score_TFIDF",
	"Computed_Score",
	"Method_Used",
	"Matched_Groups",
}

const (
	childPrefix  = "Child_"
	parentPrefix = "Parent_"
	groupSep     = ", "
)

// Header returns the exported column names for matrix.
func Header(matrix *core.TraceMatrix) []string {
	header := append([]string(nil), baseColumns...)
	for _, col := range matrix.ChildColumns {
		header = append(header, childPrefix+col)
	}
	for _, col := range matrix.ParentColumns {
		header = append(header, parentPrefix+col)
	}
	return header
}

// rowValues returns one exported row. Scores stay float64 so spreadsheets
// store them as numbers; an absent rule score is nil (an empty cell).
func rowValues(row *core.TraceRow, childCols, parentCols int) []any {
	var rule any
	if row.Score.RuleScore != nil {
		rule = *row.Score.RuleScore
	}
	values := []any{
		row.ChildID,
		row.ChildText,
		row.ParentID,
		row.ParentText,
		rule,
		row.Score.EmbeddingScore,
		row.Score.TFIDFScore,
		row.Score.FusedScore,
		row.Score.Method.String(),
		strings.Join(row.MatchedGroups, groupSep),
	}
	values = appendPadded(values, row.ChildExtra, childCols)
	values = appendPadded(values, row.ParentExtra, parentCols)
	return values
}

func appendPadded(values []any, extra []string, n int) []any {
	for i := 0; i < n; i++ {
		v := ""
		if i < len(extra) {
			v = extra[i]
		}
		values = append(values, v)
	}
	return values
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// WriteCSV writes matrix as delimited text with a header row.
func WriteCSV(w io.Writer, matrix *core.TraceMatrix) error {
	rows := make([][]string, 0, len(matrix.Rows)+1)
	rows = append(rows, Header(matrix))
	for i := range matrix.Rows {
		values := rowValues(&matrix.Rows[i], len(matrix.ChildColumns), len(matrix.ParentColumns))
		cells := make([]string, len(values))
		for j, v := range values {
			cells[j] = formatCell(v)
		}
		rows = append(rows, cells)
	}
	return writeCSV(w, rows)
}

// WriteXLSX writes matrix to one sheet of the workbook at path. An existing
// workbook keeps its other sheets and the named sheet is replaced.
func WriteXLSX(path, sheet string, matrix *core.TraceMatrix) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}

	f, err := openOrCreate(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := prepareSheet(f, sheet); err != nil {
		return err
	}
	if err := streamMatrix(f, sheet, matrix); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}

// WriteXLSXTo writes a single-sheet workbook to w.
func WriteXLSXTo(w io.Writer, sheet string, matrix *core.TraceMatrix) error {
	if sheet == "" {
		sheet = DefaultSheetName
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := prepareSheet(f, sheet); err != nil {
		return err
	}
	if err := streamMatrix(f, sheet, matrix); err != nil {
		return err
	}
	_, err := f.WriteTo(w)
	return err
}

// WriteFile picks the writer from the file extension.
func WriteFile(path, sheet string, matrix *core.TraceMatrix) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if format == FormatXLSX {
		return WriteXLSX(path, sheet, matrix)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteCSV(out, matrix); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func openOrCreate(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open workbook %q: %w", path, err)
		}
		return f, nil
	}
	return excelize.NewFile(), nil
}

// prepareSheet leaves an empty sheet named sheet as the active sheet.
func prepareSheet(f *excelize.File, sheet string) error {
	sheets := f.GetSheetList()

	// A fresh file has only the default sheet; rename it.
	if len(sheets) == 1 && f.Path == "" {
		if sheets[0] != sheet {
			if err := f.SetSheetName(sheets[0], sheet); err != nil {
				return err
			}
		}
		return nil
	}

	if idx, err := f.GetSheetIndex(sheet); err == nil && idx >= 0 {
		// Keep one sheet alive while replacing the target.
		tmp := swapSheet
		if _, err := f.NewSheet(tmp); err != nil {
			return err
		}
		if err := f.DeleteSheet(sheet); err != nil {
			return err
		}
		if err := f.SetSheetName(tmp, sheet); err != nil {
			return err
		}
	} else if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return err
	}
	f.SetActiveSheet(idx)
	return nil
}

func streamMatrix(f *excelize.File, sheet string, matrix *core.TraceMatrix) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}

	header := Header(matrix)
	headerCells := make([]any, len(header))
	for i, h := range header {
		headerCells[i] = h
	}
	if err := sw.SetRow("A1", headerCells); err != nil {
		return err
	}

	for i := range matrix.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := rowValues(&matrix.Rows[i], len(matrix.ChildColumns), len(matrix.ParentColumns))
		if err := sw.SetRow(cell, values); err != nil {
			return err
		}
	}
	return sw.Flush()
}

// WriteTables writes each table to its own sheet of a new workbook at path,
// named after Table.Name. Existing files are overwritten.
func WriteTables(path string, tables ...*Table) error {
	if len(tables) == 0 {
		return fmt.Errorf("%w: nothing to write", ErrEmptyTable)
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetList()[0], t.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.Name); err != nil {
			return err
		}

		sw, err := f.NewStreamWriter(t.Name)
		if err != nil {
			return err
		}
		for r, cells := range append([][]string{t.Header}, t.Rows...) {
			values := make([]any, len(cells))
			for j, c := range cells {
				values[j] = c
			}
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := sw.SetRow(cell, values); err != nil {
				return err
			}
		}
		if err := sw.Flush(); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %q: %w", path, err)
	}
	return nil
}
