package pipeline

import (
	"fmt"
	"time"

	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/normalizer"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Result represents the outcome of a pipeline run.
type Result struct {
	// Core data
	Missions   []records.Mission
	Rows       []records.Row
	Projection []records.CountryProjection
	Unassigned []records.Unassigned

	// Vocabulary diagnostics
	UnmatchedBefore []string
	UnmatchedAfter  []string

	// Mission acronyms dropped as duplicates
	DuplicateMissions []string

	Stats    Stats
	Metadata Metadata

	// Issues
	Warnings []string
}

// Stats contains counters about the run.
type Stats struct {
	Missions    int `json:"missions" yaml:"missions"`
	Rows        int `json:"rows" yaml:"rows"`
	Referenced  int `json:"referenced_countries" yaml:"referenced_countries"`
	Substituted int `json:"substituted_countries" yaml:"substituted_countries"`

	Years normalizer.Stats `json:"years" yaml:"years"`

	Incidents             int `json:"incidents" yaml:"incidents"`
	AttributedIncidents   int `json:"attributed_incidents" yaml:"attributed_incidents"`
	UndatedIncidents      int `json:"undated_incidents" yaml:"undated_incidents"`
	UnattributedIncidents int `json:"unattributed_incidents" yaml:"unattributed_incidents"`
	UnassignedIncidents   int `json:"unassigned_incidents" yaml:"unassigned_incidents"`
	Fatalities            int `json:"fatalities" yaml:"fatalities"`
}

// Metadata describes the run itself.
type Metadata struct {
	RunID     string           `json:"run_id" yaml:"run_id"`
	StartTime time.Time        `json:"start_time" yaml:"start_time"`
	EndTime   time.Time        `json:"end_time" yaml:"end_time"`
	Duration  time.Duration    `json:"duration" yaml:"duration"`
	Horizon   calendar.Horizon `json:"horizon" yaml:"horizon"`
}

// HasWarnings returns true if the run degraded any rows.
func (r *Result) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// Converged reports whether every country name matched after substitution.
func (r *Result) Converged() bool {
	return len(r.UnmatchedAfter) == 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	return fmt.Sprintf("Built %d rows for %d missions over %s (%d fatalities, %d unassigned, %d undated)",
		r.Stats.Rows,
		r.Stats.Missions,
		r.Metadata.Horizon,
		r.Stats.Fatalities,
		r.Stats.UnassignedIncidents,
		r.Stats.UndatedIncidents,
	)
}
