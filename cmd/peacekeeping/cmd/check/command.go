// Package check provides the check command, which reports country names
// that do not match the reference vocabulary.
package check

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/agentstation/peacekeeping/internal/appcontext"
	"github.com/agentstation/peacekeeping/internal/cmd/output"
	"github.com/agentstation/peacekeeping/internal/cmd/table"
	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
)

// Report is the machine-readable output of the check command.
type Report struct {
	Referenced        int      `json:"referenced" yaml:"referenced"`
	Substituted       int      `json:"substituted" yaml:"substituted"`
	UnmatchedBefore   []string `json:"unmatched_before" yaml:"unmatched_before"`
	UnmatchedAfter    []string `json:"unmatched_after" yaml:"unmatched_after"`
	DuplicateMissions []string `json:"duplicate_missions" yaml:"duplicate_missions"`
}

// NewCommand creates the check command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "check",
		GroupID: "diagnostics",
		Short:   "Report country names missing from the reference set",
		Long: `Check compares every country named in the mission table with the
reference country set, before and after applying the substitution table.

Unmatched names are diagnostics: the command succeeds even when names
remain unmatched, so the list can be used to extend the substitution file.`,
		Example: `  peacekeeping check --missions missions.csv --countries countries.csv
  peacekeeping check -o json --substitutions names.yaml`,
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

			report := Report{
				Referenced:        rec.Before.Referenced,
				Substituted:       rec.Substituted,
				UnmatchedBefore:   rec.Before.Unmatched,
				UnmatchedAfter:    rec.After.Unmatched,
				DuplicateMissions: rec.DuplicateMissions,
			}
			if report.DuplicateMissions == nil {
				report.DuplicateMissions = []string{}
			}

			format := output.DetectFormat(app.OutputFormat())
			return output.Write(cmd.OutOrStdout(), format,
				table.UnmatchedToTableData(report.UnmatchedBefore, report.UnmatchedAfter),
				report,
			)
		},
	}
}
