// Package app provides the application context and dependency management
// for the peacekeeping CLI. It centralizes configuration, logging and
// pipeline construction so commands only depend on appcontext.Interface.
package app

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peacekeeping/internal/appcontext"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
)

// App represents the peacekeeping application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger
}

// Ensure App implements appcontext.Interface at compile time.
var _ appcontext.Interface = (*App)(nil)

// New creates a new App instance with the given version information.
// The app is initialized with configuration from the environment and the
// default config file, which can be replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig("")
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the configured output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Inputs returns the configured input table paths.
func (a *App) Inputs() pipeline.Paths {
	return pipeline.Paths{
		Missions:  a.config.Missions,
		Countries: a.config.Countries,
		Incidents: a.config.Incidents,
	}
}

// Outputs returns the configured output locations.
func (a *App) Outputs() pipeline.Outputs {
	return pipeline.Outputs{
		Dir:            a.config.OutputDir,
		ProjectionFile: a.config.ProjectionFile,
		TimeSeriesFile: a.config.TimeSeriesFile,
		UnassignedFile: a.config.UnassignedFile,
		SQLitePath:     a.config.SQLite,
		MetricsFile:    a.config.MetricsFile,
	}
}

// Pipeline creates a pipeline from the configuration. Extra options are
// applied after the configured ones.
func (a *App) Pipeline(extra ...pipeline.Option) (*pipeline.Pipeline, error) {
	opts := []pipeline.Option{
		pipeline.WithSubstitutionsFile(a.config.Substitutions),
	}
	opts = append(opts, extra...)

	p, err := pipeline.New(opts...)
	if err != nil {
		return nil, errors.NewConfigError("pipeline", "invalid pipeline configuration", err)
	}
	return p, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		if config == nil {
			return &errors.ValidationError{Field: "config", Message: "cannot be nil"}
		}
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}
