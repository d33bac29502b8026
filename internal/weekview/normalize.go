package weekview

import (
	"fmt"
	"strings"
	"time"

	"tablecal/internal/table"
	"tablecal/internal/timeparse"
)

// Entry is one normalized booking. Day, Start, End and Summary form its
// identity; Pattern carries the recurrence label, when present. Start and
// End are minutes since midnight.
type Entry struct {
	Day        string
	Start      int
	End        int
	Summary    string
	Pattern    string
	HasPattern bool
}

// Normalize converts one raw row into an Entry. The second return value is
// false when the row does not belong on the grid: unknown day, unparsable
// times, empty summary, or a recurrence prefix mismatch. Those are normal
// data conditions, not errors.
func Normalize(row table.Row, cfg *Config) (Entry, bool) {
	day := strings.TrimSpace(stringify(row[cfg.DayCol]))
	if day == "" || cfg.DayIndex(day) < 0 {
		return Entry{}, false
	}

	start, ok := timeparse.Clock(row[cfg.StartTimeCol])
	if !ok {
		return Entry{}, false
	}

	end, ok := resolveEnd(row, cfg, start)
	if !ok {
		return Entry{}, false
	}

	summary := applySummaryTransform(row[cfg.SummaryCol], cfg.SummaryTransform)
	if summary == "" {
		return Entry{}, false
	}
	if ann := extractAnnotation(row, cfg); ann != "" {
		summary = formatSummary(summary, ann, cfg.SummaryFormat)
	}

	entry := Entry{Day: day, Start: start, End: end, Summary: summary}

	if cfg.PatternCol != "" {
		label, keep := normalizePattern(row[cfg.PatternCol], cfg)
		if !keep {
			return Entry{}, false
		}
		if label != "" {
			entry.Pattern = label
			entry.HasPattern = true
		}
	}

	return entry, true
}

// resolveEnd determines the end time: the end column when configured, else
// start plus the duration column.
func resolveEnd(row table.Row, cfg *Config, start int) (int, bool) {
	if cfg.EndTimeCol != "" {
		if end, ok := timeparse.Clock(row[cfg.EndTimeCol]); ok {
			return end, true
		}
	}
	if cfg.DurationCol != "" {
		if d, ok := timeparse.Duration(row[cfg.DurationCol]); ok {
			return start + int(d/time.Minute), true
		}
	}
	return 0, false
}

// applySummaryTransform trims and optionally splits the summary, keeping the
// configured segment. An out-of-range index falls back to the first segment.
func applySummaryTransform(value any, tr *SummaryTransform) string {
	text := strings.TrimSpace(stringify(value))
	if tr == nil || text == "" {
		return text
	}
	for _, sep := range tr.SplitOn {
		parts := strings.Split(text, sep)
		idx := tr.Take
		if idx < 0 {
			idx += len(parts)
		}
		if idx < 0 || idx >= len(parts) {
			idx = 0
		}
		text = strings.TrimSpace(parts[idx])
	}
	return text
}

// extractAnnotation pulls a regex capture group from the configured column.
// Any failure yields an empty annotation, never an error.
func extractAnnotation(row table.Row, cfg *Config) string {
	ann := cfg.SummaryAnnotation
	if ann == nil {
		return ""
	}
	col := ann.Column
	if col == "" {
		col = cfg.DescriptionCol
	}
	if col == "" || ann.Regex == nil {
		return ""
	}

	raw, ok := row[col]
	if !ok || raw == nil {
		return ""
	}

	m := ann.Regex.FindStringSubmatch(stringify(raw))
	if m == nil {
		return ""
	}
	group := ann.Group
	if group < 1 || group >= len(m) {
		group = 1
	}
	if group >= len(m) {
		return ""
	}
	return strings.TrimSpace(m[group])
}

func formatSummary(summary, annotation, format string) string {
	if format != "" {
		r := strings.NewReplacer("{summary}", summary, "{annotation}", annotation)
		return r.Replace(format)
	}
	return fmt.Sprintf("%s (%s)", summary, annotation)
}

// normalizePattern turns a raw recurrence value into a display label.
// keep=false drops the whole row: a configured prefix acts as a filter.
// A value without the "WK" marker keeps the row but yields no label.
func normalizePattern(value any, cfg *Config) (label string, keep bool) {
	text := strings.TrimSpace(stringify(value))
	if text == "" {
		return "", true
	}

	if cfg.PatternPrefix != "" && !strings.HasPrefix(text, cfg.PatternPrefix) {
		return "", false
	}

	if cfg.FullTermLabel != "" {
		for _, token := range cfg.FullTermTokens {
			if text == token {
				return cfg.FullTermLabel, true
			}
		}
	}

	i := strings.Index(text, "WK")
	if i < 0 {
		return "", true
	}
	wk := strings.TrimSpace(text[i:])
	if j := strings.Index(wk, "("); j >= 0 {
		wk = strings.TrimSpace(wk[:j])
	}
	return wk, true
}

func stringify(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
