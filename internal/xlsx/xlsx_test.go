package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"tablecal/internal/table"
	"tablecal/internal/weekview"
)

func writeWorkbook(t *testing.T, cells map[string]any) string {
	t.Helper()
	f := excelize.NewFile()
	for name, value := range cells {
		require.NoError(t, f.SetCellValue("Sheet1", name, value))
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestReadTable(t *testing.T) {
	path := writeWorkbook(t, map[string]any{
		"A1": "Day", "B1": " Start ", "C1": "Summary",
		"A2": "Monday", "B2": "09:00", "C2": "Lecture A",
		"A3": "Tuesday", "C3": "Tutorial B", // B3 left empty
	})

	tbl, err := ReadTable(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Day", "Start", "Summary"}, tbl.Columns)
	require.Equal(t, 2, tbl.Len())

	assert.Equal(t, "Monday", tbl.Rows[0]["Day"])
	assert.Equal(t, "09:00", tbl.Rows[0]["Start"])

	_, hasStart := tbl.Rows[1]["Start"]
	assert.False(t, hasStart, "empty cells must be absent, not empty strings")
}

func TestReadTable_MissingFile(t *testing.T) {
	_, err := ReadTable(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	require.Error(t, err)
}

func TestReadTable_UnknownSheet(t *testing.T) {
	path := writeWorkbook(t, map[string]any{"A1": "Day"})
	_, err := ReadTable(path, "Other")
	require.Error(t, err)
}

func renderGrid(t *testing.T) *weekview.Grid {
	t.Helper()
	g, err := weekview.Render([]table.Row{
		{"Day": "Monday", "Start": "08:00", "End": "10:00", "Summary": "Lecture A"},
	}, map[string]any{
		"columns": map[string]any{
			"day": "Day", "start_time": "Start", "end_time": "End", "summary": "Summary",
		},
		"layout": map[string]any{
			"days":       []any{"Monday", "Tuesday"},
			"start_time": "08:00",
			"end_time":   "10:00",
		},
	})
	require.NoError(t, err)
	return g
}

func TestWriter_AddGrid(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.AddGrid("Timetable", renderGrid(t)))

	f := w.File()
	assert.Equal(t, []string{"Timetable"}, f.GetSheetList())

	got, err := f.GetCellValue("Timetable", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Monday", got)

	got, err = f.GetCellValue("Timetable", "A2")
	require.NoError(t, err)
	assert.Equal(t, "08:00", got)

	got, err = f.GetCellValue("Timetable", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Lecture A", got)

	merges, err := f.GetMergeCells("Timetable")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "B2", merges[0].GetStartAxis())
	assert.Equal(t, "B3", merges[0].GetEndAxis())
}

func TestWriter_MultipleSheets(t *testing.T) {
	w := NewWriter()
	g := renderGrid(t)
	require.NoError(t, w.AddGrid("First", g))
	require.NoError(t, w.AddGrid("Second", g))

	assert.Equal(t, []string{"First", "Second"}, w.File().GetSheetList())
}

func TestWriter_SaveRoundTrip(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.AddGrid("Timetable", renderGrid(t)))

	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, w.Save(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetCellValue("Timetable", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Lecture A", got)
}

func TestSafeSheetTitle(t *testing.T) {
	used := map[string]bool{}

	assert.Equal(t, "Sem 1_ 2026", SafeSheetTitle("Sem 1: 2026", used))
	assert.Equal(t, "Sem 1_ 2026_2", SafeSheetTitle("Sem 1: 2026", used))
	assert.Equal(t, "Sheet", SafeSheetTitle("   ", used))
	assert.Equal(t, "Sheet_2", SafeSheetTitle("", used))

	long := "An extremely long calendar name that keeps going"
	first := SafeSheetTitle(long, used)
	assert.Len(t, first, 31)
	second := SafeSheetTitle(long, used)
	assert.Len(t, second, 31)
	assert.NotEqual(t, first, second)
	assert.Equal(t, "_2", second[len(second)-2:])
}
