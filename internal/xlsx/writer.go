package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"tablecal/internal/weekview"
)

// borderStyles maps the template's border names onto excelize style codes.
var borderStyles = map[string]int{
	"thin":   1,
	"medium": 2,
	"dashed": 3,
	"dotted": 4,
	"thick":  5,
	"double": 6,
}

// Writer realizes week-view grids as worksheets. Styles are deduplicated
// through a cache since excelize allocates one style slot per NewStyle call.
type Writer struct {
	f      *excelize.File
	styles map[styleKey]int
	sheets int
}

type styleKey struct {
	fill     string
	bold     bool
	fontSize float64
	hAlign   string
	wrap     bool
	border   int
}

func NewWriter() *Writer {
	return &Writer{f: excelize.NewFile(), styles: make(map[styleKey]int)}
}

// File exposes the underlying workbook, mainly for tests.
func (w *Writer) File() *excelize.File { return w.f }

// Save writes the workbook to disk.
func (w *Writer) Save(path string) error {
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// AddGrid writes a rendered grid onto a new worksheet. The first grid
// replaces the default sheet so the workbook never carries an empty Sheet1.
func (w *Writer) AddGrid(sheet string, g *weekview.Grid) error {
	if w.sheets == 0 {
		if err := w.f.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
	} else if _, err := w.f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
	}
	w.sheets++

	border := borderStyles[g.BorderStyle]

	for r, row := range g.Cells {
		for c := range row {
			cell := &row[c]
			name, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if cell.Text != "" {
				if err := w.f.SetCellValue(sheet, name, cell.Text); err != nil {
					return fmt.Errorf("failed to write cell %s: %w", name, err)
				}
			}
			if *cell == (weekview.Cell{}) {
				continue
			}
			styleID, err := w.style(cell, border)
			if err != nil {
				return err
			}
			if err := w.f.SetCellStyle(sheet, name, name, styleID); err != nil {
				return fmt.Errorf("failed to style cell %s: %w", name, err)
			}
		}
	}

	for _, m := range g.Merges {
		start, err := excelize.CoordinatesToCellName(m.StartCol+1, m.StartRow+1)
		if err != nil {
			return err
		}
		end, err := excelize.CoordinatesToCellName(m.EndCol+1, m.EndRow+1)
		if err != nil {
			return err
		}
		if err := w.f.MergeCell(sheet, start, end); err != nil {
			return fmt.Errorf("failed to merge %s:%s: %w", start, end, err)
		}
	}

	for i, width := range g.ColWidths {
		if width <= 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}

	for row, height := range g.RowHeights {
		if height <= 0 {
			continue
		}
		if err := w.f.SetRowHeight(sheet, row+1, height); err != nil {
			return fmt.Errorf("failed to set height of row %d: %w", row+1, err)
		}
	}

	return nil
}

func (w *Writer) style(cell *weekview.Cell, border int) (int, error) {
	key := styleKey{
		fill:     cell.Fill,
		bold:     cell.Bold,
		fontSize: cell.FontSize,
		hAlign:   cell.HAlign,
		wrap:     cell.Wrap,
	}
	if cell.Border {
		key.border = border
	}
	if id, ok := w.styles[key]; ok {
		return id, nil
	}

	style := &excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: cell.Wrap},
	}
	if cell.HAlign != "" {
		style.Alignment.Horizontal = cell.HAlign
	}
	if cell.Bold || cell.FontSize > 0 {
		style.Font = &excelize.Font{Bold: cell.Bold, Size: cell.FontSize}
	}
	if cell.Fill != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{cell.Fill}}
	}
	if key.border > 0 {
		for _, side := range []string{"left", "right", "top", "bottom"} {
			style.Border = append(style.Border, excelize.Border{
				Type: side, Style: key.border, Color: "000000",
			})
		}
	}

	id, err := w.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("failed to build cell style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}
