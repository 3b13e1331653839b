// Package reconcile provides the reconcile command, which writes the
// reconciled country projection for mapping tools.
package reconcile

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/peacekeeping/internal/appcontext"
	"github.com/agentstation/peacekeeping/internal/cmd/output"
	"github.com/agentstation/peacekeeping/internal/cmd/table"
	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Report is the machine-readable output of the reconcile command.
type Report struct {
	Path           string                      `json:"path" yaml:"path"`
	UnmatchedAfter []string                    `json:"unmatched_after" yaml:"unmatched_after"`
	Projection     []records.CountryProjection `json:"projection" yaml:"projection"`
}

// NewCommand creates the reconcile command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var projectionFile string

	cmd := &cobra.Command{
		Use:     "reconcile",
		GroupID: "core",
		Short:   "Write the reconciled mission country projection",
		Long: `Reconcile applies the country-name substitution table to the mission
table and writes the projection (mission_acronym, countries_of_operation)
consumed by GIS tools. Mission years and incidents are not read.`,
		Example: `  peacekeeping reconcile --missions missions.csv --countries countries.csv
  peacekeeping reconcile --file qgis.csv --output-dir out`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()
			ctx = logging.WithLogger(ctx, app.Logger())

			paths := app.Inputs()
			paths.Incidents = ""
			in, err := pipeline.Load(ctx, paths)
			if err != nil {
				return err
			}

			p, err := app.Pipeline()
			if err != nil {
				return err
			}

			rec, err := p.Reconcile(ctx, in)
			if err != nil {
				return err
			}

			out := app.Outputs()
			if projectionFile != "" {
				out.ProjectionFile = projectionFile
			}
			path, err := pipeline.WriteProjection(ctx, rec.Projection, out)
			if err != nil {
				return err
			}

			report := Report{Path: path, UnmatchedAfter: rec.After.Unmatched, Projection: rec.Projection}
			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format, table.ProjectionToTableData(rec.Projection), report)
		},
	}

	cmd.Flags().StringVar(&projectionFile, "file", "", "projection file name (default from projection_file)")

	return cmd
}
