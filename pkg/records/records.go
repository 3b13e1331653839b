// Package records defines the tables the pipeline consumes and produces, and
// their CSV encoding.
//
// Input tables are read by header name; extra columns are ignored and a missing
// required column is a SchemaError. Empty cells are missing values.
package records

import (
	"time"

	"github.com/agentstation/peacekeeping/pkg/calendar"
)

// Mission is one row of mission metadata as produced by the upstream
// enrichment step. Countries is owned by the vocabulary reconciler; Start and
// End are owned by the year normalizer. RawStart and RawEnd keep the text the
// enrichment step produced.
type Mission struct {
	Acronym   string
	Countries *string
	RawStart  string
	RawEnd    string
	Start     calendar.Year
	End       calendar.Year
}

// Incident is one casualty record. Mission is a key into the mission table
// that is not enforced.
type Incident struct {
	Mission string
	Date    string
}

// CountryProjection is the (mission, reconciled countries) pair handed to
// mapping tools.
type CountryProjection struct {
	Mission   string  `json:"mission_acronym" yaml:"mission_acronym"`
	Countries *string `json:"countries_of_operation" yaml:"countries_of_operation"`
}

// Row is one mission-year of the dense output table.
type Row struct {
	Date       time.Time `json:"date" yaml:"date"`
	Mission    string    `json:"mission_acronym" yaml:"mission_acronym"`
	Countries  *string   `json:"countries_of_operation" yaml:"countries_of_operation"`
	Active     bool      `json:"active_operation" yaml:"active_operation"`
	Fatalities int       `json:"fatalities" yaml:"fatalities"`
}

// Year returns the calendar year the row stands for.
func (r Row) Year() int {
	return r.Date.Year()
}

// Unassigned counts fatalities in one year for a mission acronym that has no
// metadata row.
type Unassigned struct {
	Mission    string `json:"mission_acronym" yaml:"mission_acronym"`
	Year       int    `json:"year" yaml:"year"`
	Fatalities int    `json:"fatalities" yaml:"fatalities"`
}

// Projection returns the country projection of the missions, in table order.
// It is a pass-through of whatever the Countries field currently holds.
func Projection(missions []Mission) []CountryProjection {
	out := make([]CountryProjection, len(missions))
	for i, m := range missions {
		out[i] = CountryProjection{Mission: m.Acronym, Countries: m.Countries}
	}
	return out
}

// DedupeMissions keeps the first row of every acronym and drops later ones.
// It returns the kept rows in their original order and the acronyms that
// had duplicates, in order of first duplicate.
func DedupeMissions(missions []Mission) ([]Mission, []string) {
	seen := make(map[string]bool, len(missions))
	reported := make(map[string]bool)
	kept := make([]Mission, 0, len(missions))
	var duplicates []string

	for _, m := range missions {
		if seen[m.Acronym] {
			if !reported[m.Acronym] {
				reported[m.Acronym] = true
				duplicates = append(duplicates, m.Acronym)
			}
			continue
		}
		seen[m.Acronym] = true
		kept = append(kept, m)
	}
	return kept, duplicates
}
