package pipeline

import (
	"context"
	"io"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/records"
	"github.com/agentstation/peacekeeping/pkg/vocabulary"
)

// Paths locates the input tables.
type Paths struct {
	Missions  string
	Countries string
	// Incidents may be empty when only the vocabulary is needed.
	Incidents string
}

// Inputs are the fully materialized input tables.
type Inputs struct {
	Missions  []records.Mission
	Reference *vocabulary.ReferenceSet
	Incidents []records.Incident
}

// Load reads the input tables concurrently. The first failure cancels the
// remaining reads.
func Load(ctx context.Context, paths Paths) (*Inputs, error) {
	if paths.Missions == "" {
		return nil, &errors.ValidationError{Field: "missions", Message: "path is required"}
	}
	if paths.Countries == "" {
		return nil, &errors.ValidationError{Field: "countries", Message: "path is required"}
	}

	logger := logging.FromContext(ctx)
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	inputs := &Inputs{}

	g.Go(func() error {
		missions, err := read(ctx, paths.Missions, records.ReadMissions)
		if err != nil {
			return err
		}
		inputs.Missions = missions
		return nil
	})

	g.Go(func() error {
		names, err := read(ctx, paths.Countries, records.ReadReferenceNames)
		if err != nil {
			return err
		}
		inputs.Reference = vocabulary.NewReferenceSet(names)
		return nil
	})

	if paths.Incidents != "" {
		g.Go(func() error {
			incidents, err := read(ctx, paths.Incidents, records.ReadIncidents)
			if err != nil {
				return err
			}
			inputs.Incidents = incidents
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info().
		Int("missions", len(inputs.Missions)).
		Int("countries", inputs.Reference.Len()).
		Int("incidents", len(inputs.Incidents)).
		Dur("duration", time.Since(start)).
		Msg("Loaded input tables")
	return inputs, nil
}

// read loads one table unless ctx is already done.
func read[T ~[]E, E any](ctx context.Context, path string, parse func(io.Reader) (T, error)) (T, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Join(errors.ErrCanceled, err)
	}
	rows, err := records.ReadFile(path, parse)
	if err != nil {
		return nil, err
	}
	logging.FromContext(logging.WithSource(ctx, path)).Debug().Int("rows", len(rows)).Msg("Read table")
	return rows, nil
}
