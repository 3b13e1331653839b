package timeseries

import (
	"context"

	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Active reports whether year falls within a mission's declared mandate.
// A missing bound makes every year inactive.
func Active(start, end calendar.Year, year int) bool {
	s, ok := start.Value()
	if !ok {
		return false
	}
	e, ok := end.Value()
	if !ok {
		return false
	}
	return s <= year && year <= e
}

// Builder produces the dense mission-year table.
type Builder struct {
	horizon calendar.Horizon
}

type options struct {
	horizon calendar.Horizon
}

// Option configures a Builder.
type Option func(*options) error

// WithHorizon overrides the default 1947-2025 horizon.
func WithHorizon(h calendar.Horizon) Option {
	return func(o *options) error {
		if err := h.Validate(); err != nil {
			return err
		}
		o.horizon = h
		return nil
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) (*Builder, error) {
	o := &options{horizon: calendar.DefaultHorizon()}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return &Builder{horizon: o.horizon}, nil
}

// Horizon returns the year range the builder expands over.
func (b *Builder) Horizon() calendar.Horizon {
	return b.horizon
}

// Build emits one row per mission and horizon year, grouped by mission in
// table order and ascending by year within a mission. Missions must already
// be reconciled and normalized. Context cancellation is checked between
// missions.
func (b *Builder) Build(ctx context.Context, missions []records.Mission, agg *Aggregate) ([]records.Row, error) {
	logger := logging.FromContext(ctx)
	years := b.horizon.Years()
	rows := make([]records.Row, 0, len(missions)*len(years))

	var active, fatalities int
	for _, m := range missions {
		if err := ctx.Err(); err != nil {
			return nil, errors.Join(errors.ErrCanceled, err)
		}
		for _, y := range years {
			row := records.Row{
				Date:       calendar.Anchor(y),
				Mission:    m.Acronym,
				Countries:  m.Countries,
				Active:     Active(m.Start, m.End, y),
				Fatalities: agg.Count(m.Acronym, y),
			}
			if row.Active {
				active++
			}
			fatalities += row.Fatalities
			rows = append(rows, row)
		}
	}

	logger.Info().
		Int("missions", len(missions)).
		Int("rows", len(rows)).
		Int("active_rows", active).
		Int("fatalities", fatalities).
		Str("horizon", b.horizon.String()).
		Msg("Built mission-year table")
	return rows, nil
}
