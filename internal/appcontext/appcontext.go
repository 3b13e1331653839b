// Package appcontext provides the shared application context interface
// used by all commands. Commands accept this interface rather than the
// concrete App type so they can be tested with Mock.
package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peacekeeping/pkg/pipeline"
)

// Interface defines the application context interface that commands need.
type Interface interface {
	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Inputs returns the configured input table paths.
	Inputs() pipeline.Paths

	// Outputs returns the configured output locations.
	Outputs() pipeline.Outputs

	// Pipeline creates a pipeline configured from the application settings.
	Pipeline(extra ...pipeline.Option) (*pipeline.Pipeline, error)

	// Version returns the application version string.
	Version() string
}
