// Package metrics records per-run pipeline counters in a Prometheus registry
// and exports them as a node-exporter textfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/agentstation/peacekeeping/pkg/errors"
)

// Incident statuses.
const (
	StatusAttributed   = "attributed"
	StatusUndated      = "undated"
	StatusUnassigned   = "unassigned"
	StatusUnattributed = "unattributed"
)

// Mismatch check phases.
const (
	PhaseBefore = "before"
	PhaseAfter  = "after"
)

// Metrics provides observability for a pipeline batch.
type Metrics struct {
	registry *prometheus.Registry

	// Missions processed after duplicate removal
	Missions prometheus.Counter

	// Rows emitted to the mission-year table
	Rows prometheus.Counter

	// Incidents by attribution status
	Incidents *prometheus.CounterVec

	// Unmatched country names by check phase
	UnmatchedCountries *prometheus.GaugeVec

	// Mission rows dropped as duplicates
	DuplicateMissions prometheus.Counter

	// Stage latencies
	StageDuration *prometheus.HistogramVec
}

// New creates a Metrics instance registered on its own registry, so every
// batch can be exported independently of the process default registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		Missions: factory.NewCounter(prometheus.CounterOpts{
			Name: "peacekeeping_missions_total",
			Help: "Total missions expanded into the mission-year table",
		}),

		Rows: factory.NewCounter(prometheus.CounterOpts{
			Name: "peacekeeping_rows_total",
			Help: "Total mission-year rows emitted",
		}),

		Incidents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "peacekeeping_incidents_total",
			Help: "Total incident records by attribution status",
		}, []string{"status"}), // status: "attributed", "undated", "unassigned", "unattributed"

		UnmatchedCountries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "peacekeeping_unmatched_countries",
			Help: "Country names without a match in the reference set",
		}, []string{"phase"}), // phase: "before", "after"

		DuplicateMissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "peacekeeping_duplicate_missions_total",
			Help: "Total mission acronyms that appeared more than once",
		}),

		StageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "peacekeeping_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		}, []string{"stage"}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// AddMissions records missions expanded by the builder.
func (m *Metrics) AddMissions(n int) {
	if m != nil {
		m.Missions.Add(float64(n))
	}
}

// AddRows records emitted mission-year rows.
func (m *Metrics) AddRows(n int) {
	if m != nil {
		m.Rows.Add(float64(n))
	}
}

// AddIncidents records incidents with the given status.
func (m *Metrics) AddIncidents(status string, n int) {
	if m != nil {
		m.Incidents.WithLabelValues(status).Add(float64(n))
	}
}

// SetUnmatched records the unmatched name count of a check phase.
func (m *Metrics) SetUnmatched(phase string, n int) {
	if m != nil {
		m.UnmatchedCountries.WithLabelValues(phase).Set(float64(n))
	}
}

// AddDuplicates records duplicate mission acronyms.
func (m *Metrics) AddDuplicates(n int) {
	if m != nil {
		m.DuplicateMissions.Add(float64(n))
	}
}

// ObserveStage records the duration of a pipeline stage.
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m != nil {
		m.StageDuration.WithLabelValues(stage).Observe(d.Seconds())
	}
}

// WriteTextfile writes the metrics in the Prometheus text format, suitable
// for a node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
