// Package timeseries expands the mission table into a dense mission-year
// table over a fixed horizon and joins in fatality counts from the incident
// log.
package timeseries

import (
	"cmp"
	"slices"

	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Key identifies a mission-year.
type Key struct {
	Mission string
	Year    int
}

// Aggregate counts incidents per mission-year. Its keys are exactly the
// mission-years observed in the incident log; absent keys count zero.
type Aggregate struct {
	counts map[Key]int

	// Total is the number of incident rows seen.
	Total int
	// Undated is the number of incidents whose date did not parse.
	Undated int
	// Unattributed is the number of dated incidents with an empty acronym.
	Unattributed int
}

// NewAggregate reduces the incident log in one pass. Incidents without a
// parseable date or without a mission acronym cannot be attributed to a key
// and are only counted.
func NewAggregate(incidents []records.Incident) *Aggregate {
	agg := &Aggregate{counts: make(map[Key]int)}
	for _, inc := range incidents {
		agg.Add(inc)
	}
	return agg
}

// Add folds one incident into the aggregate.
func (a *Aggregate) Add(inc records.Incident) {
	if a.counts == nil {
		a.counts = make(map[Key]int)
	}
	a.Total++

	year, ok := calendar.IncidentYear(inc.Date).Value()
	if !ok {
		a.Undated++
		return
	}
	if inc.Mission == "" {
		a.Unattributed++
		return
	}
	a.counts[Key{Mission: inc.Mission, Year: year}]++
}

// Count returns the number of incidents for a mission-year, zero when none
// were recorded.
func (a *Aggregate) Count(mission string, year int) int {
	if a == nil {
		return 0
	}
	return a.counts[Key{Mission: mission, Year: year}]
}

// Len returns the number of observed mission-years.
func (a *Aggregate) Len() int {
	if a == nil {
		return 0
	}
	return len(a.counts)
}

// Attributed returns the number of incidents counted under some key.
func (a *Aggregate) Attributed() int {
	if a == nil {
		return 0
	}
	return a.Total - a.Undated - a.Unattributed
}

// Unassigned returns the counts whose mission is not in known, sorted by
// mission then year. Years outside any horizon are included.
func (a *Aggregate) Unassigned(known map[string]bool) []records.Unassigned {
	if a == nil {
		return nil
	}
	var out []records.Unassigned
	for k, n := range a.counts {
		if known[k.Mission] {
			continue
		}
		out = append(out, records.Unassigned{Mission: k.Mission, Year: k.Year, Fatalities: n})
	}
	slices.SortFunc(out, func(x, y records.Unassigned) int {
		return cmp.Or(cmp.Compare(x.Mission, y.Mission), cmp.Compare(x.Year, y.Year))
	})
	return out
}
