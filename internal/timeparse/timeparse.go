// Package timeparse provides best-effort parsing of the loosely-typed
// time, date, and duration values found in real-world timetable spreadsheets.
package timeparse

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	naturaldate "github.com/tj/go-naturaldate"
)

// clockLayouts are tried in order for time-of-day values.
var clockLayouts = []string{
	"15:04",
	"15:04:05",
	"3:04 PM",
	"3:04PM",
	"3:04 pm",
	"3:04pm",
}

// stampLayouts are tried in order for date-time values.
var stampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2/1/2006 15:04",
	"2/1/2006",
}

// Clock extracts a time of day as minutes since midnight. It accepts
// time.Time values, clock strings ("09:30", "2:15 PM"), and full date-time
// strings, from which the time component is taken.
func Clock(v any) (int, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		return t.Hour()*60 + t.Minute(), true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return 0, false
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	if t, ok := Stamp(s); ok {
		return t.Hour()*60 + t.Minute(), true
	}
	return 0, false
}

// Stamp parses a date-time value. Strings go through a layout ladder and
// fall back to natural-language parsing ("tomorrow 9am").
func Stamp(v any) (time.Time, bool) {
	switch t := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		return t, true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range stampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if t, err := naturaldate.Parse(s, time.Now(), naturaldate.WithDirection(naturaldate.Future)); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// Duration parses a duration value. It accepts Go duration strings
// ("1h30m"), colon forms ("1:30" meaning hours:minutes, or "1:30:00"),
// and bare numbers, which are read as a count of hours.
func Duration(v any) (time.Duration, bool) {
	switch d := v.(type) {
	case nil:
		return 0, false
	case time.Duration:
		return d, true
	case int:
		return time.Duration(d) * time.Hour, true
	case int64:
		return time.Duration(d) * time.Hour, true
	case float64:
		return time.Duration(d * float64(time.Hour)), true
	}

	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, true
	}
	if d, ok := parseColonDuration(s); ok {
		return d, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(f * float64(time.Hour)), true
	}
	return 0, false
}

func parseColonDuration(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		nums[i] = n
	}
	d := time.Duration(nums[0])*time.Hour + time.Duration(nums[1])*time.Minute
	if len(nums) == 3 {
		d += time.Duration(nums[2]) * time.Second
	}
	return d, true
}

// MinutesToClock formats minutes since midnight as "HH:MM", clamped to a
// single day.
func MinutesToClock(m int) string {
	if m < 0 {
		m = 0
	}
	if m >= 24*60 {
		m = 24*60 - 1
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}
