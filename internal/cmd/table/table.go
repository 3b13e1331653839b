// Package table converts pipeline diagnostics into rows for table output.
package table

import (
	"strconv"

	"github.com/agentstation/peacekeeping/internal/utils/ptr"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// UnmatchedToTableData lists every unmatched country name with the check
// phases it was reported in.
func UnmatchedToTableData(before, after []string) Data {
	remaining := make(map[string]bool, len(after))
	for _, name := range after {
		remaining[name] = true
	}

	rows := make([][]string, 0, len(before)+len(after))
	seen := make(map[string]bool, len(before))
	for _, name := range before {
		seen[name] = true
		status := "substituted"
		if remaining[name] {
			status = "unmatched"
		}
		rows = append(rows, []string{name, status})
	}
	// Names can only appear after substitution when a table target is
	// missing from the reference set.
	for _, name := range after {
		if !seen[name] {
			rows = append(rows, []string{name, "introduced"})
		}
	}

	return Data{
		Headers: []string{"Country", "Status"},
		Rows:    rows,
	}
}

// ProjectionToTableData converts the country projection to table format.
func ProjectionToTableData(projection []records.CountryProjection) Data {
	rows := make([][]string, 0, len(projection))
	for _, p := range projection {
		countries := ptr.Value(p.Countries)
		if countries == "" {
			countries = "-"
		}
		rows = append(rows, []string{p.Mission, countries})
	}
	return Data{
		Headers: []string{"Mission", "Countries"},
		Rows:    rows,
	}
}

// UnassignedToTableData converts unassigned fatalities to table format.
func UnassignedToTableData(unassigned []records.Unassigned) Data {
	rows := make([][]string, 0, len(unassigned))
	for _, u := range unassigned {
		rows = append(rows, []string{u.Mission, strconv.Itoa(u.Year), strconv.Itoa(u.Fatalities)})
	}
	return Data{
		Headers:         []string{"Mission", "Year", "Fatalities"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignRight},
	}
}

// SummaryToTableData converts run statistics to a key-value table.
func SummaryToTableData(result *pipeline.Result) Data {
	s := result.Stats
	rows := [][]string{
		{"Run ID", result.Metadata.RunID},
		{"Horizon", result.Metadata.Horizon.String()},
		{"Missions", strconv.Itoa(s.Missions)},
		{"Duplicate missions", strconv.Itoa(len(result.DuplicateMissions))},
		{"Rows", strconv.Itoa(s.Rows)},
		{"Substituted countries", strconv.Itoa(s.Substituted)},
		{"Unmatched before", strconv.Itoa(len(result.UnmatchedBefore))},
		{"Unmatched after", strconv.Itoa(len(result.UnmatchedAfter))},
		{"Ongoing missions", strconv.Itoa(s.Years.Ongoing)},
		{"Unknown start years", strconv.Itoa(s.Years.UnknownStart)},
		{"Unknown end years", strconv.Itoa(s.Years.UnknownEnd)},
		{"Incidents", strconv.Itoa(s.Incidents)},
		{"Attributed", strconv.Itoa(s.AttributedIncidents)},
		{"Undated", strconv.Itoa(s.UndatedIncidents)},
		{"Unattributed", strconv.Itoa(s.UnattributedIncidents)},
		{"Unassigned", strconv.Itoa(s.UnassignedIncidents)},
		{"Fatalities in table", strconv.Itoa(s.Fatalities)},
		{"Duration", result.Metadata.Duration.String()},
	}
	return Data{
		Headers:         []string{"Property", "Value"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}
