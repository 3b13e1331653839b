package calendar

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Month-first is preferred for slashed dates.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-1-2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"20060102",
	"2006-01",
	"2006",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"2 January 2006",
	"2-Jan-2006",
	"02-Jan-2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseIncidentDate parses a free-form incident date.
func ParseIncidentDate(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IncidentYear extracts the calendar year of an incident date. Unparsable
// dates yield Unknown; such incidents cannot be attributed to any year.
func IncidentYear(raw string) Year {
	t, ok := ParseIncidentDate(raw)
	if !ok {
		return UnknownYear()
	}
	return KnownYear(t.Year())
}
