package pipeline

import (
	"github.com/agentstation/peacekeeping/internal/metrics"
	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/vocabulary"
)

// options configures a Pipeline.
type options struct {
	horizon       calendar.Horizon
	substitutions vocabulary.Substitutions
	metrics       *metrics.Metrics
	runID         string
}

func defaultOptions() *options {
	return &options{
		horizon:       calendar.DefaultHorizon(),
		substitutions: vocabulary.DefaultSubstitutions(),
	}
}

// Option is a function that configures a Pipeline.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns pipeline options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithHorizon sets the analysis year range.
func WithHorizon(h calendar.Horizon) Option {
	return func(o *options) error {
		if err := h.Validate(); err != nil {
			return err
		}
		o.horizon = h
		return nil
	}
}

// WithSubstitutions sets the country-name substitution table.
func WithSubstitutions(subs vocabulary.Substitutions) Option {
	return func(o *options) error {
		if subs == nil {
			return &errors.ValidationError{
				Field:   "substitutions",
				Message: "cannot be nil",
			}
		}
		if err := subs.Validate(); err != nil {
			return err
		}
		o.substitutions = subs
		return nil
	}
}

// WithSubstitutionsFile loads the substitution table from a YAML file. An
// empty path keeps the built-in table.
func WithSubstitutionsFile(path string) Option {
	return func(o *options) error {
		if path == "" {
			return nil
		}
		subs, err := vocabulary.LoadSubstitutions(path)
		if err != nil {
			return err
		}
		o.substitutions = subs
		return nil
	}
}

// WithMetrics records batch metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithRunID fixes the batch run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(o *options) error {
		if id == "" {
			return &errors.ValidationError{
				Field:   "run_id",
				Message: "cannot be empty",
			}
		}
		o.runID = id
		return nil
	}
}
