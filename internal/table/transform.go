package table

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"tablecal/internal/timeparse"
)

// Args carries the positional and keyword arguments of a config-driven
// transform invocation, as loaded from a mapping file.
type Args struct {
	Args   []any          `json:"args"`
	Kwargs map[string]any `json:"kwargs"`
}

// TransformFunc rewrites a table into a new table. Implementations must not
// mutate the input.
type TransformFunc func(*Table, Args) (*Table, error)

// registry maps stable transform names to their implementations. It is
// populated at init so mapping files can invoke transforms by name.
var registry = map[string]TransformFunc{}

func init() {
	Register("rename_columns", renameColumns)
	Register("combine_date_time", combineDateTime)
	Register("expand_dates", expandDates)
}

// Register adds a named transform. Registering a duplicate name panics:
// that is a programming error, not a runtime condition.
func Register(name string, fn TransformFunc) {
	if _, ok := registry[name]; ok {
		panic("table: duplicate transform " + name)
	}
	registry[name] = fn
}

// TransformNames returns the registered transform names, sorted.
func TransformNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Transform applies the named transform to the table.
func (t *Table) Transform(name string, args Args) (*Table, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown transform %q (registered: %s)", name, strings.Join(TransformNames(), ", "))
	}
	out, err := fn(t, args)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", name, err)
	}
	return out, nil
}

// argument lookup: positional first, keyword fallback.

func (a Args) value(pos int, key string) (any, bool) {
	if pos >= 0 && pos < len(a.Args) {
		return a.Args[pos], true
	}
	if v, ok := a.Kwargs[key]; ok {
		return v, true
	}
	return nil, false
}

func (a Args) str(pos int, key string) (string, bool) {
	v, ok := a.value(pos, key)
	if !ok || v == nil {
		return "", false
	}
	return fmt.Sprint(v), true
}

func (a Args) boolean(pos int, key string) bool {
	v, ok := a.value(pos, key)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

func (a Args) integer(pos int, key string) (int, bool) {
	v, ok := a.value(pos, key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}

// renameColumns renames columns using a mapping of old name to new name.
// Unknown old names are ignored, matching the permissiveness of the
// spreadsheet sources this feeds on.
func renameColumns(t *Table, args Args) (*Table, error) {
	raw, ok := args.value(0, "mapper")
	if !ok {
		return nil, fmt.Errorf("rename_columns requires a mapper")
	}
	mapping, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("rename_columns mapper must be an object, got %T", raw)
	}

	rename := make(map[string]string, len(mapping))
	for old, v := range mapping {
		rename[old] = fmt.Sprint(v)
	}

	out := &Table{Columns: make([]string, len(t.Columns))}
	for i, col := range t.Columns {
		if newName, ok := rename[col]; ok {
			out.Columns[i] = newName
		} else {
			out.Columns[i] = col
		}
	}
	for _, row := range t.Rows {
		newRow := make(Row, len(row))
		for k, v := range row {
			if newName, ok := rename[k]; ok {
				newRow[newName] = v
			} else {
				newRow[k] = v
			}
		}
		out.Append(newRow)
	}
	return out, nil
}

// combineDateTime merges a date column and a time column into a single
// date-time column. Rows whose combined value fails to parse are an error
// unless drop_invalid is set, in which case they are dropped.
func combineDateTime(t *Table, args Args) (*Table, error) {
	dateCol, ok := args.str(0, "date_col")
	if !ok {
		return nil, fmt.Errorf("combine_date_time requires date_col")
	}
	timeCol, ok := args.str(1, "time_col")
	if !ok {
		return nil, fmt.Errorf("combine_date_time requires time_col")
	}
	dtCol, ok := args.str(2, "datetime_col")
	if !ok || dtCol == "" {
		dtCol = dateCol + "_" + timeCol
	}
	tzName, _ := args.str(3, "tz")
	dropInvalid := args.boolean(4, "drop_invalid")
	keepSource := args.boolean(5, "keep_source")

	resolvedDate, err := t.ResolveColumn(dateCol)
	if err != nil {
		return nil, err
	}
	resolvedTime, err := t.ResolveColumn(timeCol)
	if err != nil {
		return nil, err
	}

	var loc *time.Location
	if tzName != "" {
		loc, err = time.LoadLocation(tzName)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", tzName, err)
		}
	}

	out := &Table{}
	for _, col := range t.Columns {
		if !keepSource && (col == resolvedDate || col == resolvedTime) {
			continue
		}
		out.Columns = append(out.Columns, col)
	}
	out.Columns = append(out.Columns, dtCol)

	for _, row := range t.Rows {
		day, dayOK := timeparse.Stamp(row[resolvedDate])
		minutes, timeOK := timeparse.Clock(row[resolvedTime])
		if !dayOK || !timeOK {
			if dropInvalid {
				continue
			}
			return nil, fmt.Errorf("invalid date/time combination %v %v", row[resolvedDate], row[resolvedTime])
		}
		zone := day.Location()
		if loc != nil {
			zone = loc
		}
		stamp := time.Date(day.Year(), day.Month(), day.Day(), minutes/60, minutes%60, 0, 0, zone)

		newRow := copyRow(row)
		if !keepSource {
			delete(newRow, resolvedDate)
			delete(newRow, resolvedTime)
		}
		newRow[dtCol] = stamp
		out.Append(newRow)
	}
	return out, nil
}

// expandDates explodes a column of date ranges ("6/3-17/4, 1/5-29/5") into
// one row per concrete date. See dates.go for range semantics.
func expandDates(t *Table, args Args) (*Table, error) {
	datesCol, ok := args.str(0, "dates_col")
	if !ok {
		return nil, fmt.Errorf("expand_dates requires dates_col")
	}
	dateCol, ok := args.str(1, "date_col")
	if !ok || dateCol == "" {
		dateCol = datesCol
	}
	year, _ := args.integer(-1, "year")
	layout, ok := args.str(-1, "format")
	if !ok || layout == "" {
		layout = DefaultDateLayout
	}
	frequency, ok := args.str(-1, "frequency")
	if !ok || frequency == "" {
		frequency = "7D"
	}

	resolved, err := t.ResolveColumn(datesCol)
	if err != nil {
		return nil, err
	}

	out := t.clone()
	if dateCol != resolved {
		found := false
		for _, col := range out.Columns {
			if col == dateCol {
				found = true
				break
			}
		}
		if !found {
			out.Columns = append(out.Columns, dateCol)
		}
	}

	for _, row := range t.Rows {
		dates, err := ExtrapolateDateRanges(stringify(row[resolved]), year, layout, frequency)
		if err != nil {
			return nil, err
		}
		if len(dates) == 0 {
			newRow := copyRow(row)
			newRow[dateCol] = nil
			out.Append(newRow)
			continue
		}
		for _, d := range dates {
			newRow := copyRow(row)
			newRow[dateCol] = d
			out.Append(newRow)
		}
	}
	return out, nil
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
