// Package weekview renders timetable rows onto a day-by-time grid: it
// aggregates duplicate bookings, merges recurrence labels, resolves slot
// conflicts, and emits a styled Grid for a spreadsheet sink to realize.
package weekview

import (
	"fmt"
	"regexp"

	"tablecal/internal/timeparse"
)

// DefaultDays is the column order used when the template names none.
var DefaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// ConfigError reports a missing or invalid template field. These are fatal:
// they mean the template is broken, not that the data is messy.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("week view config: %s %s", e.Field, e.Reason)
}

// SummaryTransform splits a summary on separators and keeps one segment.
type SummaryTransform struct {
	SplitOn []string
	Take    int
}

// SummaryAnnotation extracts a regex capture group from another column to
// append to the summary.
type SummaryAnnotation struct {
	Column string
	Regex  *regexp.Regexp
	Group  int
}

// Formatting holds the visual knobs of the grid.
type Formatting struct {
	Palette         []string
	HeaderFill      string
	TimeFill        string
	Border          string
	DayColumnWidth  float64
	TimeColumnWidth float64
	RowHeight       float64
}

// Config is the resolved, flat render configuration. It is derived once per
// render and never mutated afterwards.
type Config struct {
	DayCol         string
	StartTimeCol   string
	EndTimeCol     string
	DurationCol    string
	SummaryCol     string
	DescriptionCol string
	PatternCol     string

	PatternPrefix  string
	FullTermTokens []string
	FullTermLabel  string

	SummaryTransform  *SummaryTransform
	SummaryAnnotation *SummaryAnnotation
	SummaryFormat     string

	Days            []string
	StartMinutes    int
	EndMinutes      int
	IntervalMinutes int

	Title              string
	IncludeWeekPattern bool
	FooterLines        []string

	Formatting Formatting
}

// SlotCount returns the number of time-slot rows on the grid.
func (c *Config) SlotCount() int {
	return (c.EndMinutes - c.StartMinutes) / c.IntervalMinutes
}

// DayIndex returns the grid column for a day label, or -1 when the day is
// not part of the grid.
func (c *Config) DayIndex(day string) int {
	for i, d := range c.Days {
		if d == day {
			return i
		}
	}
	return -1
}

// Resolve validates a nested template object (as decoded from JSON) and
// flattens it into a Config. Missing required columns and unparsable layout
// times are fatal; everything else has defaults.
func Resolve(raw map[string]any) (*Config, error) {
	columns := subMap(raw, "columns")
	layout := subMap(raw, "layout")
	formatting := subMap(raw, "formatting")

	cfg := &Config{
		DayCol:             getString(columns, "day"),
		StartTimeCol:       getString(columns, "start_time"),
		EndTimeCol:         getString(columns, "end_time"),
		DurationCol:        getString(columns, "duration"),
		SummaryCol:         getString(columns, "summary"),
		DescriptionCol:     getString(columns, "description"),
		PatternCol:         getString(columns, "week_pattern"),
		PatternPrefix:      getString(raw, "week_pattern_prefix"),
		FullTermTokens:     getStringSlice(raw, "week_pattern_full_term_tokens"),
		FullTermLabel:      getString(raw, "week_pattern_full_term_label"),
		SummaryFormat:      getString(raw, "summary_format"),
		Title:              getString(raw, "title"),
		IncludeWeekPattern: getBool(raw, "include_week_pattern", true),
	}

	if cfg.DayCol == "" {
		return nil, &ConfigError{Field: "columns.day", Reason: "is required"}
	}
	if cfg.StartTimeCol == "" {
		return nil, &ConfigError{Field: "columns.start_time", Reason: "is required"}
	}
	if cfg.SummaryCol == "" {
		return nil, &ConfigError{Field: "columns.summary", Reason: "is required"}
	}

	cfg.Days = getStringSlice(layout, "days")
	if len(cfg.Days) == 0 {
		cfg.Days = DefaultDays
	}

	startRaw := getString(layout, "start_time")
	if startRaw == "" {
		startRaw = "08:00"
	}
	endRaw := getString(layout, "end_time")
	if endRaw == "" {
		endRaw = "19:00"
	}
	start, ok := timeparse.Clock(startRaw)
	if !ok {
		return nil, &ConfigError{Field: "layout.start_time", Reason: fmt.Sprintf("is not a valid time: %q", startRaw)}
	}
	end, ok := timeparse.Clock(endRaw)
	if !ok {
		return nil, &ConfigError{Field: "layout.end_time", Reason: fmt.Sprintf("is not a valid time: %q", endRaw)}
	}
	cfg.StartMinutes = start
	cfg.EndMinutes = end

	cfg.IntervalMinutes = getInt(layout, "interval_minutes", 60)
	if cfg.IntervalMinutes <= 0 {
		return nil, &ConfigError{Field: "layout.interval_minutes", Reason: "must be a positive number of minutes"}
	}

	if tr := subMap(raw, "summary_transform"); len(tr) > 0 {
		cfg.SummaryTransform = &SummaryTransform{
			SplitOn: getStringSlice(tr, "split_on"),
			Take:    getInt(tr, "take", 0),
		}
	}

	if ann := subMap(raw, "summary_annotation"); len(ann) > 0 {
		sa := &SummaryAnnotation{
			Column: getString(ann, "column"),
			Group:  getInt(ann, "group", 1),
		}
		if pattern := getString(ann, "regex"); pattern != "" {
			// A broken pattern disables annotation rather than failing the
			// render; annotations are decorative.
			if re, err := regexp.Compile(pattern); err == nil {
				sa.Regex = re
			}
		}
		cfg.SummaryAnnotation = sa
	}

	if footer := subMap(raw, "footer"); len(footer) > 0 {
		if lines, ok := footer["lines"].([]any); ok {
			for _, line := range lines {
				if m, ok := line.(map[string]any); ok {
					cfg.FooterLines = append(cfg.FooterLines, getString(m, "text"))
				}
			}
		}
	}

	cfg.Formatting = Formatting{
		Palette:         getStringSlice(formatting, "palette"),
		HeaderFill:      getStringDefault(formatting, "header_fill", "D9D9D9"),
		TimeFill:        getStringDefault(formatting, "time_fill", "F2F2F2"),
		Border:          getStringDefault(formatting, "border", "thin"),
		DayColumnWidth:  getFloat(formatting, "day_column_width", 15),
		TimeColumnWidth: getFloat(formatting, "time_column_width", 10),
		RowHeight:       getFloat(formatting, "row_height", 22),
	}

	return cfg, nil
}

// JSON-shaped map accessors. JSON numbers arrive as float64.

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func getString(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

func getStringDefault(m map[string]any, key, def string) string {
	if s := getString(m, key); s != "" {
		return s
	}
	return def
}

func getStringSlice(m map[string]any, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func getBool(m map[string]any, key string, def bool) bool {
	if m == nil {
		return def
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return def
}

func getInt(m map[string]any, key string, def int) int {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func getFloat(m map[string]any, key string, def float64) float64 {
	if m == nil {
		return def
	}
	switch v := m[key].(type) {
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case float64:
		return v
	}
	return def
}
