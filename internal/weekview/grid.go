package weekview

// Alignment values understood by sinks.
const (
	AlignCenter = "center"
	AlignLeft   = "left"
)

// Cell is one styled grid cell. Zero value is an empty, unstyled cell.
type Cell struct {
	Text     string
	Fill     string // hex color, empty for no fill
	Bold     bool
	FontSize float64 // 0 uses the sink's default
	HAlign   string
	Wrap     bool
	Border   bool
}

// Merge is a rectangular cell range to be merged, inclusive, 0-based.
type Merge struct {
	StartRow, StartCol int
	EndRow, EndCol     int
}

// Grid is the rendered week view: a dense 2-D cell array plus the layout
// directives a spreadsheet sink needs to realize it. The renderer owns the
// grid while painting; afterwards it is read-only.
type Grid struct {
	Cells       [][]Cell
	Merges      []Merge
	ColWidths   []float64
	RowHeights  map[int]float64
	BorderStyle string

	// SkippedRows counts input rows that contributed nothing to the grid,
	// for diagnostics only.
	SkippedRows int
}

// newGrid allocates a rows x cols grid of empty cells.
func newGrid(rows, cols int) *Grid {
	cells := make([][]Cell, rows)
	for i := range cells {
		cells[i] = make([]Cell, cols)
	}
	return &Grid{Cells: cells, RowHeights: make(map[int]float64)}
}

// Rows returns the number of grid rows.
func (g *Grid) Rows() int { return len(g.Cells) }

// Cols returns the number of grid columns.
func (g *Grid) Cols() int {
	if len(g.Cells) == 0 {
		return 0
	}
	return len(g.Cells[0])
}

// At returns the cell at (row, col). It panics on out-of-range indices,
// like a slice access would.
func (g *Grid) At(row, col int) *Cell {
	return &g.Cells[row][col]
}

func (g *Grid) merge(startRow, startCol, endRow, endCol int) {
	g.Merges = append(g.Merges, Merge{StartRow: startRow, StartCol: startCol, EndRow: endRow, EndCol: endCol})
}
