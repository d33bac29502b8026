// Package xlsx reads timetable workbooks and writes rendered week-view
// grids using excelize.
package xlsx

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"tablecal/internal/table"
)

// ReadTable loads a worksheet into a table. The first row supplies the
// column names; empty cells are absent from the resulting rows rather than
// present as empty strings. An empty sheet name selects the first sheet.
func ReadTable(path, sheet string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook %s has no sheets", path)
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return table.New(nil), nil
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	t := table.New(headers)
	for _, raw := range rows[1:] {
		row := make(table.Row, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(raw) {
				continue
			}
			if cell := raw[i]; cell != "" {
				row[header] = cell
			}
		}
		t.Append(row)
	}
	return t, nil
}
