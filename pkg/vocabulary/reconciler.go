package vocabulary

import (
	"context"
	"slices"

	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Reconciler detects and repairs country-name mismatches in the mission table.
type Reconciler struct {
	reference     *ReferenceSet
	substitutions Substitutions
}

// options configures a Reconciler.
type options struct {
	substitutions Substitutions
}

func defaultOptions() *options {
	return &options{substitutions: DefaultSubstitutions()}
}

// Option is a function that configures a Reconciler.
type Option func(*options) error

func (o *options) apply(opts ...Option) (*options, error) {
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// newOptions returns reconciler options with default values.
func newOptions(opts ...Option) (*options, error) {
	return defaultOptions().apply(opts...)
}

// WithSubstitutions replaces the built-in substitution table.
func WithSubstitutions(subs Substitutions) Option {
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

// New creates a Reconciler against the given reference set.
func New(reference *ReferenceSet, opts ...Option) (*Reconciler, error) {
	if reference == nil {
		return nil, &errors.ValidationError{
			Field:   "reference",
			Message: "cannot be nil",
		}
	}

	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &Reconciler{reference: reference, substitutions: o.substitutions}, nil
}

// Substitutions returns the table the reconciler applies.
func (r *Reconciler) Substitutions() Substitutions {
	return r.substitutions
}

// Report is the outcome of a mismatch check.
type Report struct {
	// Referenced is the number of distinct country names in the mission table.
	Referenced int `json:"referenced" yaml:"referenced"`

	// Unmatched are the referenced names absent from the reference set, sorted.
	Unmatched []string `json:"unmatched" yaml:"unmatched"`
}

// Matched reports whether every referenced name is canonical.
func (r Report) Matched() bool {
	return len(r.Unmatched) == 0
}

// Check collects every trimmed country name referenced by the missions and
// reports those without a literal match in the reference set. Missing lists
// and empty tokens are not names.
func (r *Reconciler) Check(missions []records.Mission) Report {
	referenced := make(map[string]struct{})
	for _, m := range missions {
		if m.Countries == nil {
			continue
		}
		for _, token := range SplitCountries(*m.Countries) {
			if token != "" {
				referenced[token] = struct{}{}
			}
		}
	}

	unmatched := make([]string, 0)
	for name := range referenced {
		if !r.reference.Contains(name) {
			unmatched = append(unmatched, name)
		}
	}
	slices.Sort(unmatched)

	return Report{Referenced: len(referenced), Unmatched: unmatched}
}

// LogReport writes a check report as diagnostics. Unmatched names are
// warnings so an operator can extend the substitution table; they never fail
// the run.
func LogReport(ctx context.Context, report Report) {
	logger := logging.FromContext(ctx)
	if report.Matched() {
		logger.Info().
			Int("referenced", report.Referenced).
			Msg("All country names match")
		return
	}
	for _, name := range report.Unmatched {
		logger.Warn().Str("country", name).Msg("Unmatched country name")
	}
	logger.Warn().
		Int("referenced", report.Referenced).
		Int("unmatched", len(report.Unmatched)).
		Msg("Country names missing from reference set")
}

// ApplyStats summarizes a substitution pass.
type ApplyStats struct {
	// Lists is the number of non-missing country lists processed.
	Lists int
	// Substituted is the number of tokens rewritten by the table.
	Substituted int
}

// Apply rewrites the Countries field of every mission in place. Only the
// country field is touched, so Apply may run alongside the year normalizer.
func (r *Reconciler) Apply(ctx context.Context, missions []records.Mission) ApplyStats {
	logger := logging.FromContext(ctx)
	var stats ApplyStats

	for i := range missions {
		m := &missions[i]
		if m.Countries == nil {
			continue
		}
		stats.Lists++
		for _, token := range SplitCountries(*m.Countries) {
			if canonical, ok := r.substitutions[token]; ok && canonical != token {
				stats.Substituted++
				logger.Debug().
					Str("mission", m.Acronym).
					Str("from", token).
					Str("to", canonical).
					Msg("Substituted country name")
			}
		}
		m.Countries = r.substitutions.ApplyList(m.Countries)
	}

	logger.Info().
		Int("lists", stats.Lists).
		Int("substituted", stats.Substituted).
		Msg("Reconciled country names")
	return stats
}
