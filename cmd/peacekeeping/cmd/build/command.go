// Package build provides the build command, which runs the full pipeline.
package build

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/peacekeeping/internal/appcontext"
	"github.com/agentstation/peacekeeping/internal/cmd/output"
	"github.com/agentstation/peacekeeping/internal/cmd/table"
	"github.com/agentstation/peacekeeping/internal/metrics"
	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// options holds the build flags.
type options struct {
	sqlite      string
	metricsFile string
	startYear   int
	endYear     int
	dryRun      bool
}

// Report is the machine-readable output of the build command.
type Report struct {
	Metadata       pipeline.Metadata    `json:"metadata" yaml:"metadata"`
	Stats          pipeline.Stats       `json:"stats" yaml:"stats"`
	UnmatchedAfter []string             `json:"unmatched_after" yaml:"unmatched_after"`
	Duplicates     []string             `json:"duplicate_missions" yaml:"duplicate_missions"`
	Unassigned     []records.Unassigned `json:"unassigned" yaml:"unassigned"`
	Warnings       []string             `json:"warnings" yaml:"warnings"`
	Written        []string             `json:"written" yaml:"written"`
}

// NewCommand creates the build command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "build",
		GroupID: "core",
		Short:   "Build the mission-year fatalities table",
		Long: `Build loads the mission, country and incident tables, reconciles country
names, normalizes mission years and expands every mission into one row
per year of the horizon with its activity flag and fatality count.

Outputs (relative to --output-dir):
  missions_countries_for_qgis.csv   reconciled country projection
  mission_year_fatalities.csv       dense mission-year table
  unassigned_fatalities.csv         fatalities of missions without metadata

Optionally the tables are exported to SQLite (--sqlite) and batch metrics
are written as a Prometheus textfile (--metrics-file).`,
		Example: `  peacekeeping build --missions missions.csv --countries countries.csv --incidents incidents.csv
  peacekeeping build --output-dir out --sqlite peacekeeping.db --metrics-file peacekeeping.prom
  peacekeeping build --dry-run -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, opts)
		},
	}

	cmd.Flags().StringVar(&opts.sqlite, "sqlite", "", "export the tables to this SQLite database")
	cmd.Flags().StringVar(&opts.metricsFile, "metrics-file", "", "write batch metrics to this Prometheus textfile")
	cmd.Flags().IntVar(&opts.startYear, "start-year", constants.HorizonStart, "first year of the horizon")
	cmd.Flags().IntVar(&opts.endYear, "end-year", constants.HorizonEnd, "last year of the horizon; ongoing missions end here")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "run the pipeline without writing any file")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, opts *options) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, app.Logger())

	paths := app.Inputs()
	if paths.Incidents == "" {
		return &errors.ValidationError{Field: "incidents", Message: "path is required"}
	}

	out := app.Outputs()
	if opts.sqlite != "" {
		out.SQLitePath = opts.sqlite
	}
	if opts.metricsFile != "" {
		out.MetricsFile = opts.metricsFile
	}

	horizon, err := calendar.NewHorizon(opts.startYear, opts.endYear)
	if err != nil {
		return err
	}
	pipelineOpts := []pipeline.Option{pipeline.WithHorizon(horizon)}
	if out.MetricsFile != "" {
		pipelineOpts = append(pipelineOpts, pipeline.WithMetrics(metrics.New()))
	}

	p, err := app.Pipeline(pipelineOpts...)
	if err != nil {
		return err
	}

	in, err := pipeline.Load(ctx, paths)
	if err != nil {
		return err
	}

	result, err := p.Run(ctx, in)
	if err != nil {
		return err
	}

	written := []string{}
	if !opts.dryRun {
		written, err = p.Write(ctx, result, out)
		if err != nil {
			return err
		}
	}

	report := Report{
		Metadata:       result.Metadata,
		Stats:          result.Stats,
		UnmatchedAfter: nonNil(result.UnmatchedAfter),
		Duplicates:     nonNil(result.DuplicateMissions),
		Unassigned:     result.Unassigned,
		Warnings:       nonNil(result.Warnings),
		Written:        written,
	}
	if report.Unassigned == nil {
		report.Unassigned = []records.Unassigned{}
	}

	format := output.DetectFormat(app.OutputFormat())
	if err := output.Write(cmd.OutOrStdout(), format, table.SummaryToTableData(result), report); err != nil {
		return err
	}
	if format == output.FormatTable || format == "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
