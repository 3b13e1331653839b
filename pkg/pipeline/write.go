package pipeline

import (
	"context"
	"io"
	"path/filepath"
	"time"

	"github.com/agentstation/peacekeeping/internal/store/sqlite"
	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Outputs locates the files a run writes. Relative file names resolve
// against Dir; an empty name skips that output.
type Outputs struct {
	Dir            string
	ProjectionFile string
	TimeSeriesFile string
	UnassignedFile string
	SQLitePath     string
	MetricsFile    string
}

// DefaultOutputs returns the standard file names under dir.
func DefaultOutputs(dir string) Outputs {
	return Outputs{
		Dir:            dir,
		ProjectionFile: constants.ProjectionFile,
		TimeSeriesFile: constants.TimeSeriesFile,
		UnassignedFile: constants.UnassignedFile,
	}
}

func (o Outputs) path(name string) string {
	if name == "" || filepath.IsAbs(name) || o.Dir == "" {
		return name
	}
	return filepath.Join(o.Dir, name)
}

// WriteProjection writes only the country projection and returns its path.
func WriteProjection(ctx context.Context, projection []records.CountryProjection, out Outputs) (string, error) {
	path := out.path(out.ProjectionFile)
	if path == "" {
		return "", &errors.ValidationError{Field: "projection_file", Message: "cannot be empty"}
	}
	if err := records.WriteFile(path, func(w io.Writer) error {
		return records.WriteProjection(w, projection)
	}); err != nil {
		return "", err
	}
	logging.FromContext(ctx).Info().
		Str("path", path).
		Int("missions", len(projection)).
		Msg("Wrote country projection")
	return path, nil
}

// Write writes every configured output of a run and returns the paths
// written, in order.
func (p *Pipeline) Write(ctx context.Context, result *Result, out Outputs) ([]string, error) {
	if result == nil {
		return nil, &errors.ValidationError{Field: "result", Message: "cannot be nil"}
	}
	ctx = logging.WithStage(logging.WithRunID(ctx, result.Metadata.RunID), StageWrite)
	logger := logging.FromContext(ctx)
	start := time.Now()

	var written []string

	if out.ProjectionFile != "" {
		path, err := WriteProjection(ctx, result.Projection, out)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if path := out.path(out.TimeSeriesFile); path != "" {
		if err := records.WriteFile(path, func(w io.Writer) error {
			return records.WriteTimeSeries(w, result.Rows)
		}); err != nil {
			return written, err
		}
		logger.Info().Str("path", path).Int("rows", len(result.Rows)).Msg("Wrote mission-year table")
		written = append(written, path)
	}

	if path := out.path(out.UnassignedFile); path != "" {
		if err := records.WriteFile(path, func(w io.Writer) error {
			return records.WriteUnassigned(w, result.Unassigned)
		}); err != nil {
			return written, err
		}
		logger.Info().Str("path", path).Int("rows", len(result.Unassigned)).Msg("Wrote unassigned fatalities")
		written = append(written, path)
	}

	if path := out.path(out.SQLitePath); path != "" {
		if err := exportSQLite(ctx, path, result); err != nil {
			return written, err
		}
		logger.Info().Str("path", path).Msg("Exported to SQLite")
		written = append(written, path)
	}

	p.options.metrics.ObserveStage(StageWrite, time.Since(start))

	// Metrics go last so the write stage itself is included.
	if path := out.path(out.MetricsFile); path != "" && p.options.metrics != nil {
		if err := p.options.metrics.WriteTextfile(path); err != nil {
			return written, err
		}
		logger.Info().Str("path", path).Msg("Wrote metrics textfile")
		written = append(written, path)
	}

	return written, nil
}

func exportSQLite(ctx context.Context, path string, result *Result) error {
	store, err := sqlite.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Replace(ctx, result.Rows, result.Projection)
}
