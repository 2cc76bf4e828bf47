package workbook

import "errors"

var (
	// ErrUnsupportedFormat means the file extension is neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrSheetNotFound means the requested sheet is not in the workbook.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmptyTable means the table has no header row.
	ErrEmptyTable = errors.New("table has no header row")

	// ErrMalformedMatrix means a file does not hold an exported trace matrix.
	ErrMalformedMatrix = errors.New("malformed trace matrix")
)
