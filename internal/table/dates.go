package table

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultDateLayout is the layout used for range endpoints when none is
// configured. Day-first, matching the timetabling sources.
const DefaultDateLayout = "2/1/2006"

// ParseDate parses a date string with the given layout. When year is
// non-zero the parsed year is replaced, which allows layouts without a year
// component ("2/1").
func ParseDate(s string, year int, layout string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q does not match layout %q: %w", s, layout, err)
	}
	if year != 0 {
		t = time.Date(year, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return t, nil
}

// parseFrequency reads a step like "7D" or "14D" into a day interval.
func parseFrequency(s string) (int, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if !strings.HasSuffix(s, "D") {
		return 0, fmt.Errorf("unsupported frequency %q (expected a day count like \"7D\")", s)
	}
	n, err := strconv.Atoi(strings.TrimSuffix(s, "D"))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("unsupported frequency %q (expected a day count like \"7D\")", s)
	}
	return n, nil
}

// ExtrapolateDateRange expands a single "start-end" range into the dates
// stepped by the given frequency, endpoints included.
func ExtrapolateDateRange(dateRange string, year int, layout, frequency string) ([]time.Time, error) {
	startStr, endStr, ok := strings.Cut(dateRange, "-")
	if !ok {
		return nil, fmt.Errorf("date range %q has no end", dateRange)
	}
	start, err := ParseDate(startStr, year, layout)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endStr, year, layout)
	if err != nil {
		return nil, err
	}
	interval, err := parseFrequency(frequency)
	if err != nil {
		return nil, err
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Interval: interval,
		Dtstart:  start,
		Until:    end,
	})
	if err != nil {
		return nil, fmt.Errorf("building recurrence for %q: %w", dateRange, err)
	}
	return r.All(), nil
}

// ExtrapolateDateRanges expands a comma-separated list of dates and date
// ranges ("6/3-17/4, 1/5-29/5, 5/5") into concrete dates. Ranges step by
// frequency independently of each other; bare dates pass through.
func ExtrapolateDateRanges(dateRanges string, year int, layout, frequency string) ([]time.Time, error) {
	var all []time.Time
	for _, part := range strings.Split(dateRanges, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "-") {
			d, err := ParseDate(part, year, layout)
			if err != nil {
				return nil, err
			}
			all = append(all, d)
			continue
		}
		dates, err := ExtrapolateDateRange(part, year, layout, frequency)
		if err != nil {
			return nil, err
		}
		all = append(all, dates...)
	}
	return all, nil
}
