// Package ics turns tabular timetable data into iCalendar files.
package ics

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"

	"tablecal/internal/table"
	"tablecal/internal/timeparse"
)

// requiredFields must always be mapped for a calendar to make sense.
var requiredFields = []string{"summary", "location"}

// validFields are the event properties a column mapping may target. Keys
// outside this list are ignored rather than rejected, so one mapping file can
// feed both the calendar export and the week view.
var validFields = []string{
	"summary", "location", "description", "dtstart", "dtend",
	"duration", "category", "attendee", "organizer", "url",
}

// Generator builds VCALENDAR documents from table rows according to a
// field-to-column mapping.
type Generator struct {
	columns  map[string]string
	location *time.Location
	company  string
}

// NewGenerator validates the mapping and prepares a generator. The mapping
// needs summary and location, and either dtstart with dtend or dtstart with
// duration.
func NewGenerator(columns map[string]string, timezone, company string) (*Generator, error) {
	for _, field := range requiredFields {
		if _, ok := columns[field]; !ok {
			return nil, fmt.Errorf("missing required field in mapping: %s", field)
		}
	}

	_, hasStart := columns["dtstart"]
	_, hasEnd := columns["dtend"]
	_, hasDuration := columns["duration"]
	if !hasStart || (!hasEnd && !hasDuration) {
		return nil, fmt.Errorf("event time fields need to be mapped as (dtstart & dtend) or (dtstart & duration)")
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", timezone, err)
	}

	if company == "" {
		company = "tablecal"
	}

	return &Generator{columns: columns, location: loc, company: company}, nil
}

// Generate produces one VEVENT per table row. Rows keep their order; each
// event gets a fresh UID and DTSTAMP.
func (g *Generator) Generate(t *table.Table) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//"+g.company+"//tablecal//EN")

	for i, row := range t.Rows {
		event := ical.NewComponent(ical.CompEvent)
		event.Props.SetText(ical.PropUID, uuid.NewString())
		event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

		for field, column := range g.columns {
			value, ok := row[column]
			if !ok || value == nil {
				continue
			}
			if err := g.setProperty(event, field, value); err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
		}

		cal.Children = append(cal.Children, event)
	}

	return cal, nil
}

// Write encodes the generated calendar for the given rows onto w.
func (g *Generator) Write(w io.Writer, t *table.Table) error {
	cal, err := g.Generate(t)
	if err != nil {
		return err
	}
	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}

func (g *Generator) setProperty(event *ical.Component, field string, value any) error {
	switch field {
	case "dtstart", "dtend":
		ts, ok := timeparse.Stamp(value)
		if !ok {
			return fmt.Errorf("unparseable %s value %v", field, value)
		}
		event.Props.SetDateTime(strings.ToUpper(field), g.localize(ts))
	case "duration":
		d, ok := timeparse.Duration(value)
		if !ok {
			return fmt.Errorf("unsupported duration format: %v", value)
		}
		event.Props.SetText(ical.PropDuration, formatDuration(d))
	default:
		if !isValidField(field) {
			return nil
		}
		text := strings.TrimSpace(fmt.Sprint(value))
		if text == "" {
			return nil
		}
		event.Props.SetText(strings.ToUpper(field), text)
	}
	return nil
}

// localize pins a wall-clock reading to the generator's timezone. Parsed
// timestamps carry no real zone, so the components are kept and only the
// location changes.
func (g *Generator) localize(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, g.location)
}

func isValidField(field string) bool {
	for _, f := range validFields {
		if f == field {
			return true
		}
	}
	return false
}

// formatDuration renders a duration in the RFC 5545 form, e.g. PT1H30M.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var b strings.Builder
	b.WriteString("PT")
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if seconds > 0 || (hours == 0 && minutes == 0) {
		fmt.Fprintf(&b, "%dS", seconds)
	}
	return b.String()
}
