package table

import (
	"testing"
)

func sampleTable() *Table {
	t := New([]string{"Activity Name", "Day", "Summary"})
	t.Append(Row{"Activity Name": "AMME2500-S1C-ND-CC/Practical-IGN/64", "Day": "Monday", "Summary": "Dynamics"})
	t.Append(Row{"Activity Name": "AMME2500-S1C-ND-CC/Practical/63", "Day": "Tuesday", "Summary": "Dynamics"})
	t.Append(Row{"Activity Name": "MTRX2700-S1C-ND-CC/Practical_MP_P1/03", "Day": "Monday", "Summary": "Mechatronics"})
	return t
}

func TestResolveColumn(t *testing.T) {
	tbl := sampleTable()

	tests := []struct {
		name  string
		query string
		want  string
		ok    bool
	}{
		{"exact", "Day", "Day", true},
		{"stripped", " Day ", "Day", true},
		{"case insensitive", "activity name", "Activity Name", true},
		{"missing", "Room", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tbl.ResolveColumn(tt.query)
			if tt.ok && err != nil {
				t.Fatalf("ResolveColumn(%q) error: %v", tt.query, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("ResolveColumn(%q) expected error", tt.query)
			}
			if got != tt.want {
				t.Errorf("ResolveColumn(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestFilter_Contains(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Filter(map[string]any{"Activity Name": "practical"}, false)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", out.Len())
	}

	out, err = tbl.Filter(map[string]any{"Activity Name": "MTRX"}, false)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 1 {
		t.Errorf("expected 1 row, got %d", out.Len())
	}
}

func TestFilter_ListMatchesAny(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Filter(map[string]any{"Summary": []any{"Dynamics", "Mechatronics"}}, true)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 3 {
		t.Errorf("expected 3 rows, got %d", out.Len())
	}
}

func TestFilter_Exact(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Filter(map[string]any{"Summary": "dynamics"}, true)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("exact match should be case-sensitive, got %d rows", out.Len())
	}

	out, err = tbl.Filter(map[string]any{"Summary": "Dynamics"}, true)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", out.Len())
	}
}

func TestFilter_UnknownColumn(t *testing.T) {
	tbl := sampleTable()
	if _, err := tbl.Filter(map[string]any{"Room": "123"}, false); err == nil {
		t.Fatal("expected error for unknown column")
	}
}

func TestFilter_MissingCellNeverMatches(t *testing.T) {
	tbl := New([]string{"Summary"})
	tbl.Append(Row{"Summary": "Lecture"})
	tbl.Append(Row{}) // empty cell

	out, err := tbl.Filter(map[string]any{"Summary": "Lecture"}, false)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if out.Len() != 1 {
		t.Errorf("expected 1 row, got %d", out.Len())
	}
}

func TestExclude_Contains(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Exclude(map[string]any{"Activity Name": "IGN"}, false)
	if err != nil {
		t.Fatalf("Exclude: %v", err)
	}
	if out.Len() != 2 {
		t.Errorf("expected 2 rows, got %d", out.Len())
	}
	for _, row := range out.Rows {
		if matchCell(row["Activity Name"], []string{"IGN"}, false) {
			t.Errorf("excluded value still present: %v", row["Activity Name"])
		}
	}
}

func TestFilter_DoesNotMutateSource(t *testing.T) {
	tbl := sampleTable()
	before := tbl.Len()

	if _, err := tbl.Filter(map[string]any{"Day": "Monday"}, true); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if tbl.Len() != before {
		t.Errorf("source table mutated: %d rows, want %d", tbl.Len(), before)
	}
}
