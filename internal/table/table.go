// Package table holds the in-memory tabular model shared by the exporters:
// an ordered set of column names plus rows addressable by column name.
package table

import (
	"fmt"
	"strings"
)

// Row maps column names to cell values. Absent keys mean the cell was empty.
type Row map[string]any

// Table is an ordered collection of rows sharing a column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given column order.
func New(columns []string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row to the table.
func (t *Table) Append(r Row) {
	t.Rows = append(t.Rows, r)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.Rows) == 0 }

// clone returns a table with the same columns and no rows.
func (t *Table) clone() *Table {
	return New(t.Columns)
}

// copyRow returns a shallow copy of a row.
func copyRow(r Row) Row {
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ResolveColumn finds the actual column name for a possibly sloppy
// reference: exact match first, then whitespace-stripped, then
// case-insensitive. Spreadsheet headers routinely carry stray spaces and
// inconsistent casing.
func (t *Table) ResolveColumn(name string) (string, error) {
	for _, col := range t.Columns {
		if col == name {
			return col, nil
		}
	}

	target := strings.TrimSpace(name)
	for _, col := range t.Columns {
		if strings.TrimSpace(col) == target {
			return col, nil
		}
	}

	folded := strings.ToLower(target)
	for _, col := range t.Columns {
		if strings.ToLower(strings.TrimSpace(col)) == folded {
			return col, nil
		}
	}

	return "", fmt.Errorf("column not found: %q (available: %s)", name, strings.Join(t.Columns, ", "))
}

// Filter returns the rows matching every filter. A filter value may be a
// single value or a list, which matches any of its members. With exact=false
// matching is case-insensitive substring containment; with exact=true it is
// string equality.
func (t *Table) Filter(filters map[string]any, exact bool) (*Table, error) {
	return t.filter(filters, exact, false)
}

// Exclude returns the rows NOT matching the filters, with the same matching
// rules as Filter.
func (t *Table) Exclude(filters map[string]any, exact bool) (*Table, error) {
	return t.filter(filters, exact, true)
}

func (t *Table) filter(filters map[string]any, exact, invert bool) (*Table, error) {
	out := t.clone()
	if len(filters) == 0 {
		out.Rows = append(out.Rows, t.Rows...)
		return out, nil
	}

	type resolved struct {
		column string
		values []string
	}
	conds := make([]resolved, 0, len(filters))
	for column, values := range filters {
		col, err := t.ResolveColumn(column)
		if err != nil {
			return nil, err
		}
		conds = append(conds, resolved{column: col, values: filterValues(values)})
	}

	for _, row := range t.Rows {
		match := true
		for _, c := range conds {
			if !matchCell(row[c.column], c.values, exact) {
				match = false
				break
			}
		}
		if match != invert {
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func filterValues(v any) []string {
	switch vals := v.(type) {
	case []any:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case []string:
		return vals
	default:
		return []string{fmt.Sprint(v)}
	}
}

func matchCell(cell any, values []string, exact bool) bool {
	if cell == nil {
		return false
	}
	text := fmt.Sprint(cell)
	for _, v := range values {
		if exact {
			if text == v {
				return true
			}
		} else if strings.Contains(strings.ToLower(text), strings.ToLower(v)) {
			return true
		}
	}
	return false
}
