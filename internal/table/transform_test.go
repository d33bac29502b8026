package table

import (
	"testing"
	"time"
)

func TestTransform_UnknownName(t *testing.T) {
	tbl := New([]string{"a"})
	if _, err := tbl.Transform("monkey_patch", Args{}); err == nil {
		t.Fatal("expected error for unknown transform")
	}
}

func TestRenameColumns(t *testing.T) {
	tbl := New([]string{"Teaching Day", "Start"})
	tbl.Append(Row{"Teaching Day": "Monday", "Start": "08:00"})

	out, err := tbl.Transform("rename_columns", Args{
		Args: []any{map[string]any{"Teaching Day": "Day"}},
	})
	if err != nil {
		t.Fatalf("rename_columns: %v", err)
	}

	if out.Columns[0] != "Day" || out.Columns[1] != "Start" {
		t.Errorf("unexpected columns: %v", out.Columns)
	}
	if out.Rows[0]["Day"] != "Monday" {
		t.Errorf("row value not carried over: %v", out.Rows[0])
	}
	if _, ok := out.Rows[0]["Teaching Day"]; ok {
		t.Error("old key still present after rename")
	}
}

func TestCombineDateTime(t *testing.T) {
	tbl := New([]string{"date", "time", "room"})
	tbl.Append(Row{"date": "2025-04-01", "time": "12:00:00", "room": "A"})
	tbl.Append(Row{"date": "2025-04-02", "time": "14:30:00", "room": "B"})

	out, err := tbl.Transform("combine_date_time", Args{
		Args:   []any{"date", "time", "datetime"},
		Kwargs: map[string]any{"tz": "UTC"},
	})
	if err != nil {
		t.Fatalf("combine_date_time: %v", err)
	}

	if len(out.Columns) != 2 || out.Columns[0] != "room" || out.Columns[1] != "datetime" {
		t.Errorf("unexpected columns: %v", out.Columns)
	}
	got, ok := out.Rows[0]["datetime"].(time.Time)
	if !ok {
		t.Fatalf("datetime cell is %T, want time.Time", out.Rows[0]["datetime"])
	}
	want := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("datetime = %v, want %v", got, want)
	}
	if _, ok := out.Rows[0]["date"]; ok {
		t.Error("source date column not dropped")
	}
}

func TestCombineDateTime_Invalid(t *testing.T) {
	tbl := New([]string{"date", "time"})
	tbl.Append(Row{"date": "not-a-date", "time": "zzz"})

	if _, err := tbl.Transform("combine_date_time", Args{Args: []any{"date", "time"}}); err == nil {
		t.Fatal("expected error for invalid combination")
	}

	out, err := tbl.Transform("combine_date_time", Args{
		Args:   []any{"date", "time"},
		Kwargs: map[string]any{"drop_invalid": true},
	})
	if err != nil {
		t.Fatalf("combine_date_time with drop_invalid: %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected invalid row to be dropped, got %d rows", out.Len())
	}
}

func TestExpandDates(t *testing.T) {
	tbl := New([]string{"dates", "other"})
	tbl.Append(Row{"dates": "6/3-17/4", "other": 1})
	tbl.Append(Row{"dates": "1/5-29/5", "other": 2})
	tbl.Append(Row{"dates": "5/5", "other": 3})

	out, err := tbl.Transform("expand_dates", Args{
		Args:   []any{"dates"},
		Kwargs: map[string]any{"year": 2025, "format": "2/1"},
	})
	if err != nil {
		t.Fatalf("expand_dates: %v", err)
	}

	if out.Len() != 13 {
		t.Fatalf("expected 13 rows, got %d", out.Len())
	}

	first, ok := out.Rows[0]["dates"].(time.Time)
	if !ok {
		t.Fatalf("dates cell is %T, want time.Time", out.Rows[0]["dates"])
	}
	if first.Year() != 2025 || first.Month() != time.March || first.Day() != 6 {
		t.Errorf("first date = %v, want 2025-03-06", first)
	}

	last, _ := out.Rows[12]["dates"].(time.Time)
	if last.Month() != time.May || last.Day() != 5 {
		t.Errorf("single date row = %v, want 2025-05-05", last)
	}
	if out.Rows[12]["other"] != 3 {
		t.Errorf("other column not carried: %v", out.Rows[12]["other"])
	}
}

func TestExpandDates_EmptyValueKeepsRow(t *testing.T) {
	tbl := New([]string{"dates", "other"})
	tbl.Append(Row{"other": "x"})

	out, err := tbl.Transform("expand_dates", Args{Args: []any{"dates"}})
	if err != nil {
		t.Fatalf("expand_dates: %v", err)
	}
	if out.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", out.Len())
	}
	if out.Rows[0]["dates"] != nil {
		t.Errorf("expected nil date value, got %v", out.Rows[0]["dates"])
	}
}
