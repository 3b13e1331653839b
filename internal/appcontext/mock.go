package appcontext

import (
	"github.com/rs/zerolog"

	"github.com/agentstation/peacekeeping/pkg/pipeline"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	LoggerFunc       func() *zerolog.Logger
	OutputFormatFunc func() string
	InputsFunc       func() pipeline.Paths
	OutputsFunc      func() pipeline.Outputs
	PipelineFunc     func(extra ...pipeline.Option) (*pipeline.Pipeline, error)
	VersionFunc      func() string
}

var _ Interface = (*Mock)(nil)

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the output format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.OutputFormatFunc != nil {
		return m.OutputFormatFunc()
	}
	return "table"
}

// Inputs returns input paths using the mock function or empty paths.
func (m *Mock) Inputs() pipeline.Paths {
	if m.InputsFunc != nil {
		return m.InputsFunc()
	}
	return pipeline.Paths{}
}

// Outputs returns output locations using the mock function or empty outputs.
func (m *Mock) Outputs() pipeline.Outputs {
	if m.OutputsFunc != nil {
		return m.OutputsFunc()
	}
	return pipeline.Outputs{}
}

// Pipeline returns a pipeline using the mock function or a default pipeline.
func (m *Mock) Pipeline(extra ...pipeline.Option) (*pipeline.Pipeline, error) {
	if m.PipelineFunc != nil {
		return m.PipelineFunc(extra...)
	}
	return pipeline.New(extra...)
}

// Version returns the version using the mock function or "test".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "test"
}
