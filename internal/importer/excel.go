// Package importer ingests spreadsheet inventory exports into the remote
// store and the in-memory catalog.
package importer

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// ErrEmptyWorkbook indicates the first sheet held no data rows.
var ErrEmptyWorkbook = errors.New("importer: workbook has no data rows")

// ParseWorkbook reads the first sheet of an xlsx workbook into raw rows: one
// string-keyed map per data row, keyed by the header row's labels. Cell type
// interpretation is the spreadsheet library's concern; values arrive as
// strings and the normalizer coerces them.
func ParseWorkbook(r io.Reader) ([]map[string]any, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("importer: open workbook: %w", err)
	}
	defer func() { _ = book.Close() }()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("importer: read sheet %q: %w", sheets[0], err)
	}
	if len(rows) < 2 {
		return nil, ErrEmptyWorkbook
	}

	header := rows[0]
	raw := make([]map[string]any, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		row := make(map[string]any, len(header))
		for i, label := range header {
			if label == "" {
				continue
			}
			if i < len(cells) {
				row[label] = cells[i]
			}
		}
		if len(row) > 0 {
			raw = append(raw, row)
		}
	}
	if len(raw) == 0 {
		return nil, ErrEmptyWorkbook
	}
	return raw, nil
}
