package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/peacekeeping/cmd/peacekeeping/cmd/build"
	"github.com/agentstation/peacekeeping/cmd/peacekeeping/cmd/check"
	"github.com/agentstation/peacekeeping/cmd/peacekeeping/cmd/reconcile"
)

// CreateBuildCommand creates the build command with app dependencies.
func (a *App) CreateBuildCommand() *cobra.Command {
	return build.NewCommand(a)
}

// CreateReconcileCommand creates the reconcile command with app dependencies.
func (a *App) CreateReconcileCommand() *cobra.Command {
	return reconcile.NewCommand(a)
}

// CreateCheckCommand creates the check command with app dependencies.
func (a *App) CreateCheckCommand() *cobra.Command {
	return check.NewCommand(a)
}

// CreateVersionCommand creates the version command.
func (a *App) CreateVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("peacekeeping %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
