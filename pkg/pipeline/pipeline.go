// Package pipeline runs the vocabulary reconciler, the year normalizer and the
// time-series builder over fully loaded input tables.
//
// Inputs are read concurrently. The reconciler and the normalizer own
// disjoint mission fields and run concurrently; the builder starts once both
// are done. No row-level problem aborts a run: unknown names, years and dates
// degrade into diagnostics, stats and warnings on the Result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/agentstation/peacekeeping/internal/metrics"
	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/normalizer"
	"github.com/agentstation/peacekeeping/pkg/records"
	"github.com/agentstation/peacekeeping/pkg/timeseries"
	"github.com/agentstation/peacekeeping/pkg/vocabulary"
)

// Stage names used on logs and metrics.
const (
	StageReconcile = "reconcile"
	StageNormalize = "normalize"
	StageAggregate = "aggregate"
	StageBuild     = "build"
	StageWrite     = "write"
)

// Pipeline turns the input tables into the mission-year table.
type Pipeline struct {
	options *options
	norm    *normalizer.Normalizer
	builder *timeseries.Builder
}

// New creates a Pipeline.
func New(opts ...Option) (*Pipeline, error) {
	o, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	norm, err := normalizer.New(o.horizon)
	if err != nil {
		return nil, err
	}
	builder, err := timeseries.NewBuilder(timeseries.WithHorizon(o.horizon))
	if err != nil {
		return nil, err
	}

	return &Pipeline{options: o, norm: norm, builder: builder}, nil
}

// Horizon returns the analysis year range.
func (p *Pipeline) Horizon() calendar.Horizon {
	return p.options.horizon
}

// Metrics returns the metrics the pipeline records on, which may be nil.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.options.metrics
}

// Reconciliation is the outcome of the vocabulary stage alone.
type Reconciliation struct {
	Missions          []records.Mission
	Projection        []records.CountryProjection
	Before            vocabulary.Report
	After             vocabulary.Report
	DuplicateMissions []string
	Substituted       int
}

// Reconcile removes duplicate missions, checks country names, applies the
// substitution table and checks again. Years are left untouched.
func (p *Pipeline) Reconcile(ctx context.Context, in *Inputs) (*Reconciliation, error) {
	if in == nil {
		return nil, &errors.ValidationError{Field: "inputs", Message: "cannot be nil"}
	}
	ctx = logging.WithStage(ctx, StageReconcile)

	rec, err := vocabulary.New(in.Reference, vocabulary.WithSubstitutions(p.options.substitutions))
	if err != nil {
		return nil, err
	}

	missions, duplicates := p.dedupe(ctx, in.Missions)

	before := rec.Check(missions)
	vocabulary.LogReport(ctx, before)
	stats := rec.Apply(ctx, missions)
	after := rec.Check(missions)
	vocabulary.LogReport(ctx, after)

	p.options.metrics.SetUnmatched(metrics.PhaseBefore, len(before.Unmatched))
	p.options.metrics.SetUnmatched(metrics.PhaseAfter, len(after.Unmatched))

	return &Reconciliation{
		Missions:          missions,
		Projection:        records.Projection(missions),
		Before:            before,
		After:             after,
		DuplicateMissions: duplicates,
		Substituted:       stats.Substituted,
	}, nil
}

func (p *Pipeline) dedupe(ctx context.Context, missions []records.Mission) ([]records.Mission, []string) {
	kept, duplicates := records.DedupeMissions(missions)
	if len(duplicates) > 0 {
		logging.FromContext(ctx).Warn().
			Strs("missions", duplicates).
			Int("dropped", len(missions)-len(kept)).
			Msg("Duplicate mission acronyms, keeping first occurrence")
		p.options.metrics.AddDuplicates(len(duplicates))
	}
	return kept, duplicates
}

// Run executes the full pipeline over in. The caller's mission slice is not
// modified; the reconciled and normalized missions are returned on the
// Result.
func (p *Pipeline) Run(ctx context.Context, in *Inputs) (*Result, error) {
	if in == nil {
		return nil, &errors.ValidationError{Field: "inputs", Message: "cannot be nil"}
	}

	runID := p.options.runID
	if runID == "" {
		runID = uuid.New().String()
	}
	ctx = logging.WithRunID(ctx, runID)
	logger := logging.FromContext(ctx)

	result := &Result{
		Metadata: Metadata{
			RunID:     runID,
			StartTime: time.Now(),
			Horizon:   p.options.horizon,
		},
	}

	rec, err := vocabulary.New(in.Reference, vocabulary.WithSubstitutions(p.options.substitutions))
	if err != nil {
		return nil, err
	}

	missions, duplicates := p.dedupe(ctx, in.Missions)
	result.DuplicateMissions = duplicates
	for _, d := range duplicates {
		result.Warnings = append(result.Warnings, fmt.Sprintf("duplicate mission %q: kept first row", d))
	}

	before := rec.Check(missions)
	vocabulary.LogReport(logging.WithStage(ctx, StageReconcile), before)

	// The reconciler writes only Countries and the normalizer writes only
	// Start and End, so both may walk the same slice at once.
	var applied vocabulary.ApplyStats
	var years normalizer.Stats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		start := time.Now()
		applied = rec.Apply(logging.WithStage(gctx, StageReconcile), missions)
		p.options.metrics.ObserveStage(StageReconcile, time.Since(start))
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		years = p.norm.Normalize(logging.WithStage(gctx, StageNormalize), missions)
		p.options.metrics.ObserveStage(StageNormalize, time.Since(start))
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	after := rec.Check(missions)
	vocabulary.LogReport(logging.WithStage(ctx, StageReconcile), after)
	p.options.metrics.SetUnmatched(metrics.PhaseBefore, len(before.Unmatched))
	p.options.metrics.SetUnmatched(metrics.PhaseAfter, len(after.Unmatched))

	start := time.Now()
	agg := timeseries.NewAggregate(in.Incidents)
	known := make(map[string]bool, len(missions))
	for _, m := range missions {
		known[m.Acronym] = true
	}
	unassigned := agg.Unassigned(known)
	p.options.metrics.ObserveStage(StageAggregate, time.Since(start))

	start = time.Now()
	rows, err := p.builder.Build(logging.WithStage(ctx, StageBuild), missions, agg)
	if err != nil {
		return nil, err
	}
	p.options.metrics.ObserveStage(StageBuild, time.Since(start))

	result.Missions = missions
	result.Rows = rows
	result.Projection = records.Projection(missions)
	result.Unassigned = unassigned
	result.UnmatchedBefore = before.Unmatched
	result.UnmatchedAfter = after.Unmatched

	unassignedCount := 0
	for _, u := range unassigned {
		unassignedCount += u.Fatalities
	}
	fatalities := 0
	for _, r := range rows {
		fatalities += r.Fatalities
	}

	result.Stats = Stats{
		Missions:              len(missions),
		Rows:                  len(rows),
		Referenced:            before.Referenced,
		Substituted:           applied.Substituted,
		Years:                 years,
		Incidents:             agg.Total,
		AttributedIncidents:   agg.Attributed() - unassignedCount,
		UndatedIncidents:      agg.Undated,
		UnattributedIncidents: agg.Unattributed,
		UnassignedIncidents:   unassignedCount,
		Fatalities:            fatalities,
	}
	p.recordStats(result.Stats)
	result.Warnings = append(result.Warnings, warnings(result)...)

	for _, w := range result.Warnings {
		logger.Warn().Msg(w)
	}

	result.Metadata.EndTime = time.Now()
	result.Metadata.Duration = result.Metadata.EndTime.Sub(result.Metadata.StartTime)

	logger.Info().
		Int("missions", result.Stats.Missions).
		Int("rows", result.Stats.Rows).
		Int("fatalities", result.Stats.Fatalities).
		Dur("duration", result.Metadata.Duration).
		Msg("Pipeline completed")
	return result, nil
}

func (p *Pipeline) recordStats(s Stats) {
	m := p.options.metrics
	m.AddMissions(s.Missions)
	m.AddRows(s.Rows)
	m.AddIncidents(metrics.StatusAttributed, s.AttributedIncidents)
	m.AddIncidents(metrics.StatusUndated, s.UndatedIncidents)
	m.AddIncidents(metrics.StatusUnassigned, s.UnassignedIncidents)
	m.AddIncidents(metrics.StatusUnattributed, s.UnattributedIncidents)
}

func warnings(r *Result) []string {
	var out []string
	if n := len(r.UnmatchedAfter); n > 0 {
		out = append(out, fmt.Sprintf("%d country names remain unmatched after substitution", n))
	}
	if n := r.Stats.UndatedIncidents; n > 0 {
		out = append(out, fmt.Sprintf("%d incidents have no parseable date and were excluded", n))
	}
	if n := r.Stats.UnattributedIncidents; n > 0 {
		out = append(out, fmt.Sprintf("%d incidents have no mission acronym and were excluded", n))
	}
	if n := r.Stats.UnassignedIncidents; n > 0 {
		out = append(out, fmt.Sprintf("%d fatalities belong to missions without metadata", n))
	}
	if y := r.Stats.Years; y.UnknownStart > 0 || y.UnknownEnd > 0 {
		out = append(out, fmt.Sprintf("%d unknown start years and %d unknown end years; those missions are never active", y.UnknownStart, y.UnknownEnd))
	}
	return out
}
