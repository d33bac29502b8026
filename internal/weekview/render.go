package weekview

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"tablecal/internal/table"
	"tablecal/internal/timeparse"
)

// Render resolves the template, normalizes and aggregates the rows, and
// paints the grid. It is a pure function of its inputs: two calls with the
// same rows and template produce identical grids.
func Render(rows []table.Row, template map[string]any) (*Grid, error) {
	cfg, err := Resolve(template)
	if err != nil {
		return nil, err
	}
	return RenderConfigured(rows, cfg), nil
}

// RenderConfigured paints rows onto a grid using an already-resolved
// configuration.
func RenderConfigured(rows []table.Row, cfg *Config) *Grid {
	entries := make([]Entry, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		entry, ok := Normalize(row, cfg)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, entry)
	}

	aggregated := Aggregate(entries)

	g := paint(aggregated, cfg)
	g.SkippedRows = skipped
	return g
}

// layout carries the derived grid geometry: where the header sits and where
// the time-slot area begins.
type layout struct {
	headerRow int
	gridTop   int
	slotCount int
}

func paint(entries map[Key]PatternSet, cfg *Config) *Grid {
	slotCount := cfg.SlotCount()
	if slotCount < 0 {
		slotCount = 0
	}

	lay := layout{headerRow: 0, gridTop: 1, slotCount: slotCount}
	if cfg.Title != "" {
		lay.headerRow = 1
		lay.gridTop = 2
	}

	totalRows := lay.gridTop + slotCount
	if len(cfg.FooterLines) > 0 {
		totalRows += 2 + len(cfg.FooterLines)
	}

	g := newGrid(totalRows, 1+len(cfg.Days))
	g.BorderStyle = cfg.Formatting.Border

	g.ColWidths = make([]float64, 1+len(cfg.Days))
	g.ColWidths[0] = cfg.Formatting.TimeColumnWidth
	for i := range cfg.Days {
		g.ColWidths[1+i] = cfg.Formatting.DayColumnWidth
	}

	paintChrome(g, cfg, lay)
	paintEntries(g, entries, cfg, lay)
	paintFooter(g, cfg, lay)

	return g
}

// paintChrome writes the title, day headers, time-axis labels, and the
// borders of the booking area.
func paintChrome(g *Grid, cfg *Config, lay layout) {
	if cfg.Title != "" {
		title := g.At(0, 0)
		title.Text = cfg.Title
		title.Bold = true
		title.FontSize = 14
		title.HAlign = AlignCenter
		g.merge(0, 0, 0, len(cfg.Days))
	}

	for i, day := range cfg.Days {
		cell := g.At(lay.headerRow, 1+i)
		cell.Text = day
		cell.Bold = true
		cell.Fill = cfg.Formatting.HeaderFill
		cell.HAlign = AlignCenter
		cell.Wrap = true
		cell.Border = true
	}

	for i := 0; i < lay.slotCount; i++ {
		row := lay.gridTop + i
		label := g.At(row, 0)
		label.Text = timeparse.MinutesToClock(cfg.StartMinutes + i*cfg.IntervalMinutes)
		label.Bold = true
		label.Fill = cfg.Formatting.TimeFill
		label.HAlign = AlignCenter
		label.Wrap = true
		label.Border = true
		g.RowHeights[row] = cfg.Formatting.RowHeight

		// Borders for every booking cell, occupied or not, so the grid has
		// no visual gaps.
		for j := range cfg.Days {
			g.At(row, 1+j).Border = true
		}
	}
}

func paintEntries(g *Grid, entries map[Key]PatternSet, cfg *Config, lay layout) {
	occupied := make(map[int]map[int]bool, len(cfg.Days))
	for i := range cfg.Days {
		occupied[1+i] = make(map[int]bool)
	}

	for _, key := range sortedKeys(entries, cfg) {
		// Floor division: a start half a slot before the grid opens maps to
		// row -1 and is rejected, not rounded into row 0.
		startIndex := floorDiv(key.Start-cfg.StartMinutes, cfg.IntervalMinutes)
		endIndex := floorDiv(key.End-cfg.StartMinutes, cfg.IntervalMinutes)

		if startIndex < 0 || startIndex >= lay.slotCount || endIndex <= 0 {
			continue
		}
		if endIndex < startIndex+1 {
			endIndex = startIndex + 1
		}

		dayCol := 1 + cfg.DayIndex(key.Day)
		blockStart := lay.gridTop + startIndex
		blockEnd := lay.gridTop + min(endIndex, lay.slotCount) - 1

		display := displayText(key.Summary, entries[key], cfg)

		// Conflict scan: a block conflicts when any of its rows is already
		// claimed, or already shows different text.
		hasConflict := false
		for r := blockStart; r <= blockEnd; r++ {
			if occupied[dayCol][r] {
				hasConflict = true
				break
			}
			if txt := strings.TrimSpace(g.At(r, dayCol).Text); txt != "" && txt != display {
				hasConflict = true
				break
			}
		}

		// Write policy: append on a new line when another entry already owns
		// the top cell, unless the text is already there verbatim.
		top := g.At(blockStart, dayCol)
		existing := strings.TrimSpace(top.Text)
		switch {
		case existing == "":
			top.Text = display
		case existing == display || containsLine(existing, display):
			// Re-applying identical text is a no-op.
		default:
			top.Text = existing + "\n" + display
		}
		top.HAlign = AlignCenter
		top.Wrap = true

		if fill := colorForSummary(key.Summary, cfg.Formatting.Palette); fill != "" {
			for r := blockStart; r <= blockEnd; r++ {
				g.At(r, dayCol).Fill = fill
			}
		}

		// Multi-slot bookings become one visual cell, but never across a
		// conflict: unmerged rows keep every colliding text visible.
		if blockEnd > blockStart && !hasConflict {
			g.merge(blockStart, dayCol, blockEnd, dayCol)
		}

		for r := blockStart; r <= blockEnd; r++ {
			g.At(r, dayCol).Border = true
			occupied[dayCol][r] = true
		}
	}
}

func paintFooter(g *Grid, cfg *Config, lay layout) {
	if len(cfg.FooterLines) == 0 {
		return
	}
	footerStart := lay.gridTop + lay.slotCount + 2
	lastCol := len(cfg.Days) // column index of the last day

	for i, line := range cfg.FooterLines {
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		row := footerStart + i
		cell := g.At(row, 1)
		cell.Text = text
		cell.HAlign = AlignLeft
		if lastCol > 1 {
			g.merge(row, 1, row, lastCol)
		}
	}
}

// displayText builds the text block for an aggregated entry: the summary,
// plus a merged recurrence-label line when labels exist and are enabled.
func displayText(summary string, patterns PatternSet, cfg *Config) string {
	if !cfg.IncludeWeekPattern || len(patterns) == 0 {
		return summary
	}

	stripped := make([]string, 0, len(patterns))
	for p := range patterns {
		stripped = append(stripped, strings.TrimPrefix(p, "WK "))
	}
	sort.Slice(stripped, func(i, j int) bool {
		ki, kj := patternSortKey(stripped[i]), patternSortKey(stripped[j])
		if ki != kj {
			return ki < kj
		}
		return stripped[i] < stripped[j]
	})

	return summary + "\n(WK " + strings.Join(stripped, ", ") + ")"
}

// patternSortKey extracts the smallest week number from a label like
// "1-5, 9". Labels without any parsable number sort last.
func patternSortKey(text string) int {
	const sentinel = 9999
	key := sentinel
	for _, part := range strings.Split(strings.ReplaceAll(text, " ", ""), ",") {
		if a, b, ok := strings.Cut(part, "-"); ok {
			if n, err := strconv.Atoi(a); err == nil && n < key {
				key = n
			}
			if n, err := strconv.Atoi(b); err == nil && n < key {
				key = n
			}
		} else if n, err := strconv.Atoi(part); err == nil && n < key {
			key = n
		}
	}
	return key
}

// colorForSummary deterministically picks a palette color for a summary.
// FNV-1a keeps the assignment stable across runs.
func colorForSummary(summary string, palette []string) string {
	if summary == "" || len(palette) == 0 {
		return ""
	}
	h := fnv.New32a()
	h.Write([]byte(summary))
	return palette[int(h.Sum32()%uint32(len(palette)))]
}

func containsLine(block, line string) bool {
	for _, l := range strings.Split(block, "\n") {
		if l == line {
			return true
		}
	}
	return false
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
