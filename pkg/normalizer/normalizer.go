// Package normalizer converts the raw start and end year fields of the mission
// table into tagged calendar years.
package normalizer

import (
	"context"

	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Stats summarizes a normalization pass.
type Stats struct {
	Missions     int `json:"missions" yaml:"missions"`
	UnknownStart int `json:"unknown_start" yaml:"unknown_start"`
	UnknownEnd   int `json:"unknown_end" yaml:"unknown_end"`
	Ongoing      int `json:"ongoing" yaml:"ongoing"`
}

// Normalizer resolves mission years against an analysis horizon.
type Normalizer struct {
	horizon calendar.Horizon
}

// New creates a Normalizer. Ongoing end years resolve to the last year of
// the horizon.
func New(horizon calendar.Horizon) (*Normalizer, error) {
	if err := horizon.Validate(); err != nil {
		return nil, err
	}
	return &Normalizer{horizon: horizon}, nil
}

// Horizon returns the horizon ongoing years resolve against.
func (n *Normalizer) Horizon() calendar.Horizon {
	return n.horizon
}

// Year returns the normalized start and end year for raw field values.
func (n *Normalizer) Year(rawStart, rawEnd string) (start, end calendar.Year) {
	start = calendar.ParseStartYear(rawStart)
	end = calendar.ParseEndYear(rawEnd).Resolve(n.horizon.End)
	return start, end
}

// Normalize sets Start and End of every mission from its raw fields. Only the
// year fields are touched, so Normalize may run alongside the vocabulary
// reconciler. Running it twice gives the same result.
func (n *Normalizer) Normalize(ctx context.Context, missions []records.Mission) Stats {
	logger := logging.FromContext(ctx)
	stats := Stats{Missions: len(missions)}

	for i := range missions {
		m := &missions[i]
		if calendar.ParseEndYear(m.RawEnd).Kind() == calendar.Ongoing {
			stats.Ongoing++
		}
		m.Start, m.End = n.Year(m.RawStart, m.RawEnd)

		if !m.Start.IsKnown() {
			stats.UnknownStart++
		}
		if !m.End.IsKnown() {
			stats.UnknownEnd++
		}
		if !m.Start.IsKnown() || !m.End.IsKnown() {
			logger.Debug().
				Str("mission", m.Acronym).
				Str("start_year", m.RawStart).
				Str("end_year", m.RawEnd).
				Msg("Mission has a missing year bound")
		}
	}

	logger.Info().
		Int("missions", stats.Missions).
		Int("unknown_start", stats.UnknownStart).
		Int("unknown_end", stats.UnknownEnd).
		Int("ongoing", stats.Ongoing).
		Msg("Normalized mission years")
	return stats
}
