// Package workbook reads requirement tables from spreadsheets or CSV files
// and writes trace matrices back out.
package workbook

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/poiesic/reqtrace/core"
	"github.com/xuri/excelize/v2"
)

// Format is a supported file type.
type Format int

const (
	FormatXLSX Format = iota
	FormatCSV
)

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Table is a header row plus data rows. Every row has len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// SheetNames lists the sheets of a workbook. A CSV file has no sheets.
func SheetNames(path string) ([]string, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV {
		return nil, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// ReadTable loads one table. For workbooks an empty sheet name selects the
// first sheet; for CSV files the sheet is ignored.
func ReadTable(path, sheet string) (*Table, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var (
		name  string
		cells [][]string
	)
	switch format {
	case FormatCSV:
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		cells, err = readCSV(path)
	default:
		name, cells, err = readSheet(path, sheet)
	}
	if err != nil {
		return nil, err
	}
	return newTable(name, cells)
}

func readSheet(path, sheet string) (string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if sheet == "" {
		if len(sheets) == 0 {
			return "", nil, fmt.Errorf("%w: workbook %q has no sheets", ErrSheetNotFound, path)
		}
		sheet = sheets[0]
	}
	if !slices.Contains(sheets, sheet) {
		return "", nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(sheets, ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return sheet, rows, nil
}

func readCSV(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %q: %w", path, err)
	}
	return rows, nil
}

// newTable pads ragged rows to the header width and drops blank rows.
func newTable(name string, cells [][]string) (*Table, error) {
	if len(cells) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptyTable, name)
	}
	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	t := &Table{Name: name, Header: header}
	for _, raw := range cells[1:] {
		if isBlank(raw) {
			continue
		}
		row := make([]string, len(header))
		copy(row, raw)
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ExtraColumns returns the header names other than the mapped ID and text.
func (t *Table) ExtraColumns(mapping core.ColumnMapping) []string {
	var out []string
	for _, h := range t.Header {
		if h != "" && h != mapping.IDColumn && h != mapping.TextColumn {
			out = append(out, h)
		}
	}
	return out
}

// SelectExtras checks the requested pass-through columns against the table.
// Order is kept and duplicates are dropped. A name that is not an extra
// column is reported as a *core.InputShapeError listing the available ones.
func (t *Table) SelectExtras(mapping core.ColumnMapping, requested []string) ([]string, error) {
	available := t.ExtraColumns(mapping)
	var out, missing []string
	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		if !slices.Contains(available, name) {
			missing = append(missing, name)
			continue
		}
		out = append(out, name)
	}
	if len(missing) > 0 {
		return nil, &core.InputShapeError{
			Table:    t.Name,
			Expected: missing,
			Actual:   available,
			Reason:   "unknown extra columns",
		}
	}
	return out, nil
}

// Records maps the table to requirement records. Columns other than the
// ID and text are carried in Extra. A missing mapped column is reported as
// a *core.InputShapeError.
func (t *Table) Records(mapping core.ColumnMapping) ([]core.RequirementRecord, error) {
	if err := core.ValidateColumns(t.Name, t.Header, mapping); err != nil {
		return nil, err
	}
	idCol := slices.Index(t.Header, mapping.IDColumn)
	textCol := slices.Index(t.Header, mapping.TextColumn)

	records := make([]core.RequirementRecord, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := core.RequirementRecord{
			ID:    strings.TrimSpace(row[idCol]),
			Text:  row[textCol],
			Extra: make(map[string]string, len(t.Header)-2),
		}
		for i, h := range t.Header {
			if i == idCol || i == textCol || h == "" {
				continue
			}
			rec.Extra[h] = row[i]
		}
		records = append(records, rec)
	}
	return records, nil
}

// Source locates the child and parent tables of one run.
type Source struct {
	ChildPath   string
	ChildSheet  string
	ParentPath  string
	ParentSheet string
}

// Validate rejects a source that reads both sides from the same sheet.
func (s Source) Validate() error {
	if s.ChildPath == "" || s.ParentPath == "" {
		return core.NewConfigError("input", "child and parent tables are required", nil)
	}
	if filepath.Clean(s.ChildPath) == filepath.Clean(s.ParentPath) && s.ChildSheet == s.ParentSheet {
		return core.NewConfigError("sheets", "child and parent must be different sheets", nil)
	}
	return nil
}

// Inputs holds both tables of a run and their mapped records.
type Inputs struct {
	ChildTable  *Table
	ParentTable *Table
	Children    []core.RequirementRecord
	Parents     []core.RequirementRecord
}

// Load reads both tables and maps them to records.
func Load(src Source, child, parent core.ColumnMapping) (*Inputs, error) {
	if err := src.Validate(); err != nil {
		return nil, err
	}
	childTable, err := ReadTable(src.ChildPath, src.ChildSheet)
	if err != nil {
		return nil, fmt.Errorf("child table: %w", err)
	}
	parentTable, err := ReadTable(src.ParentPath, src.ParentSheet)
	if err != nil {
		return nil, fmt.Errorf("parent table: %w", err)
	}
	children, err := childTable.Records(child)
	if err != nil {
		return nil, err
	}
	parents, err := parentTable.Records(parent)
	if err != nil {
		return nil, err
	}
	return &Inputs{
		ChildTable:  childTable,
		ParentTable: parentTable,
		Children:    children,
		Parents:     parents,
	}, nil
}

// writeCSV is shared by table and matrix export.
func writeCSV(w io.Writer, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}
