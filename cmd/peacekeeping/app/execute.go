package app

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/peacekeeping/internal/cmd/output"
	"github.com/agentstation/peacekeeping/pkg/logging"
)

// Execute runs the peacekeeping CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	// The config file must be read before flags are defined, since flag
	// defaults come from the loaded configuration.
	if path := configFileFromArgs(args); path != "" {
		config, err := LoadConfig(path)
		if err != nil {
			return err
		}
		a.config = config
	}

	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "peacekeeping",
		Short:   "UN peacekeeping mission-year fatalities pipeline",
		Version: a.version,
		Long: `Peacekeeping reconciles UN peacekeeping mission metadata, a reference list
of country names and a casualty incident log into one dense time series:
one row per mission and year from 1947 through 2025, with an activity flag
and a fatality count.

Country names are repaired through a substitution table, mission years are
normalized ("ongoing" becomes the last horizon year) and incident dates are
reduced to calendar years.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "diagnostics",
		Title: "Diagnostic Commands:",
	})

	cfg := a.config
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "config file (default is $HOME/.peacekeeping.yaml)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "verbose output (shortcut for --log-level=debug)")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", cfg.Quiet, "minimal output (shortcut for --log-level=warn)")
	flags.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "disable colored output")
	flags.StringVarP(&cfg.Format, "format", "o", cfg.Format, "output format: table, json, yaml")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Input tables
	flags.StringVar(&cfg.Missions, "missions", cfg.Missions, "mission metadata CSV (mission_acronym, countries_of_operation, start_year, end_year)")
	flags.StringVar(&cfg.Countries, "countries", cfg.Countries, "reference country CSV (NAME)")
	flags.StringVar(&cfg.Incidents, "incidents", cfg.Incidents, "casualty incident CSV (mission_acronym, incident_date)")
	flags.StringVar(&cfg.Substitutions, "substitutions", cfg.Substitutions, "YAML country-name substitution file extending the built-in table")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "directory for output files")

	rootCmd.SetVersionTemplate("peacekeeping {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	if _, err := output.ParseFormat(format); err != nil {
		return err
	}

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)

	// Reinitialize logger with updated config
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)

	return nil
}

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(a.CreateBuildCommand())
	rootCmd.AddCommand(a.CreateReconcileCommand())

	// Diagnostic commands
	rootCmd.AddCommand(a.CreateCheckCommand())

	// Utility commands
	rootCmd.AddCommand(a.CreateVersionCommand())
}

// configFileFromArgs finds an explicit --config value in raw arguments.
func configFileFromArgs(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		if value, ok := strings.CutPrefix(arg, "--config="); ok {
			return value
		}
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
