package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/agentstation/peacekeeping/internal/metrics"
	"github.com/agentstation/peacekeeping/internal/store/sqlite"
	"github.com/agentstation/peacekeeping/pkg/calendar"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/logging"
	"github.com/agentstation/peacekeeping/pkg/pipeline"
	"github.com/agentstation/peacekeeping/pkg/vocabulary"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const missionsCSV = `mission_acronym,countries_of_operation,start_year,end_year,notes
XYZMISSION,East Timor,2001,ongoing,enriched
UNEF,"Egypt, Israel",1956,1967,
MINUSCA,"Central African Republic,Chad",2014,Ongoing,
GHOST,,,unknown,
UNEF,Egypt,1973,1979,second row
`

const countriesCSV = `NAME,ISO
Timor-Leste,TL
Egypt,EG
Israel,IL
Central African Rep.,CF
`

const incidentsCSV = `mission_acronym,incident_date,type
XYZMISSION,2010-03-01,x
XYZMISSION,2010-09-15,x
UNEF,1957-06-01,x
UNEF,not a date,x
ORPHAN,1999-01-01,x
ORPHAN,1999-07-01,x
,2000-01-01,x
GHOST,1990-05-05,x
`

func writeInputs(t *testing.T) pipeline.Paths {
	t.Helper()
	dir := t.TempDir()
	paths := pipeline.Paths{
		Missions:  filepath.Join(dir, "missions.csv"),
		Countries: filepath.Join(dir, "countries.csv"),
		Incidents: filepath.Join(dir, "incidents.csv"),
	}
	require.NoError(t, os.WriteFile(paths.Missions, []byte(missionsCSV), 0o644))
	require.NoError(t, os.WriteFile(paths.Countries, []byte(countriesCSV), 0o644))
	require.NoError(t, os.WriteFile(paths.Incidents, []byte(incidentsCSV), 0o644))
	return paths
}

func TestLoad(t *testing.T) {
	in, err := pipeline.Load(context.Background(), writeInputs(t))
	require.NoError(t, err)
	assert.Len(t, in.Missions, 5)
	assert.Equal(t, 4, in.Reference.Len())
	assert.Len(t, in.Incidents, 8)
}

func TestLoadWithoutIncidents(t *testing.T) {
	paths := writeInputs(t)
	paths.Incidents = ""
	in, err := pipeline.Load(context.Background(), paths)
	require.NoError(t, err)
	assert.Empty(t, in.Incidents)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := pipeline.Load(context.Background(), pipeline.Paths{Countries: "c.csv"})
		require.Error(t, err)
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		paths := writeInputs(t)
		paths.Incidents = filepath.Join(t.TempDir(), "nope.csv")
		_, err := pipeline.Load(context.Background(), paths)
		require.Error(t, err)
		var ioErr *errors.IOError
		assert.True(t, errors.As(err, &ioErr))
	})

	t.Run("missing column", func(t *testing.T) {
		paths := writeInputs(t)
		require.NoError(t, os.WriteFile(paths.Countries, []byte("ISO\nTL\n"), 0o644))
		_, err := pipeline.Load(context.Background(), paths)
		require.Error(t, err)
		assert.True(t, errors.IsMissingColumn(err))
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := pipeline.Load(ctx, writeInputs(t))
		require.Error(t, err)
		assert.True(t, errors.IsCanceled(err))
	})
}

func TestNew(t *testing.T) {
	_, err := pipeline.New(pipeline.WithHorizon(calendar.Horizon{Start: 2000, End: 1999}))
	assert.True(t, errors.IsValidationError(err))

	_, err = pipeline.New(pipeline.WithSubstitutions(nil))
	assert.True(t, errors.IsValidationError(err))

	_, err = pipeline.New(pipeline.WithRunID(""))
	assert.True(t, errors.IsValidationError(err))

	_, err = pipeline.New(pipeline.WithSubstitutionsFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, err)

	p, err := pipeline.New(pipeline.WithSubstitutionsFile(""))
	require.NoError(t, err)
	assert.Equal(t, calendar.DefaultHorizon(), p.Horizon())
	assert.Nil(t, p.Metrics())
}

func TestRun(t *testing.T) {
	testLogger := logging.NewTestLogger(t)
	ctx := logging.WithLogger(context.Background(), testLogger.Logger)

	in, err := pipeline.Load(ctx, writeInputs(t))
	require.NoError(t, err)

	m := metrics.New()
	p, err := pipeline.New(pipeline.WithMetrics(m))
	require.NoError(t, err)

	result, err := p.Run(ctx, in)
	require.NoError(t, err)

	_, err = uuid.Parse(result.Metadata.RunID)
	require.NoError(t, err)
	assert.Equal(t, calendar.DefaultHorizon(), result.Metadata.Horizon)
	assert.False(t, result.Metadata.EndTime.Before(result.Metadata.StartTime))

	assert.Equal(t, []string{"UNEF"}, result.DuplicateMissions)
	require.Len(t, result.Missions, 4)
	require.Len(t, result.Rows, 4*79)
	assert.Len(t, in.Missions, 5, "input table is left intact")

	assert.Equal(t, []string{"Central African Republic", "Chad", "East Timor"}, result.UnmatchedBefore)
	assert.Equal(t, []string{"Chad"}, result.UnmatchedAfter)
	assert.False(t, result.Converged())

	require.Len(t, result.Projection, 4)
	assert.Equal(t, "Timor-Leste", *result.Projection[0].Countries)
	assert.Equal(t, "Egypt, Israel", *result.Projection[1].Countries)
	assert.Equal(t, "Central African Rep., Chad", *result.Projection[2].Countries)
	assert.Nil(t, result.Projection[3].Countries)

	row := func(mission string, year int) (active bool, fatalities int) {
		for _, r := range result.Rows {
			if r.Mission == mission && r.Year() == year {
				return r.Active, r.Fatalities
			}
		}
		t.Fatalf("no row for %s %d", mission, year)
		return false, 0
	}

	active, fatalities := row("XYZMISSION", 2010)
	assert.True(t, active)
	assert.Equal(t, 2, fatalities)
	active, _ = row("XYZMISSION", 2024)
	assert.True(t, active)
	active, _ = row("XYZMISSION", 1999)
	assert.False(t, active)
	active, _ = row("XYZMISSION", 2025)
	assert.True(t, active)

	active, fatalities = row("UNEF", 1957)
	assert.True(t, active)
	assert.Equal(t, 1, fatalities)
	active, _ = row("UNEF", 1975)
	assert.False(t, active, "the second UNEF row was dropped")

	active, fatalities = row("GHOST", 1990)
	assert.False(t, active)
	assert.Equal(t, 1, fatalities)

	require.Len(t, result.Unassigned, 1)
	assert.Equal(t, "ORPHAN", result.Unassigned[0].Mission)
	assert.Equal(t, 1999, result.Unassigned[0].Year)
	assert.Equal(t, 2, result.Unassigned[0].Fatalities)

	assert.Equal(t, pipeline.Stats{
		Missions:              4,
		Rows:                  316,
		Referenced:            5,
		Substituted:           2,
		Years:                 result.Stats.Years,
		Incidents:             8,
		AttributedIncidents:   4,
		UndatedIncidents:      1,
		UnattributedIncidents: 1,
		UnassignedIncidents:   2,
		Fatalities:            4,
	}, result.Stats)
	assert.Equal(t, 2, result.Stats.Years.Ongoing)
	assert.Equal(t, 1, result.Stats.Years.UnknownStart)

	assert.True(t, result.HasWarnings())
	assert.Contains(t, result.Summary(), "316 rows for 4 missions over 1947-2025")

	assert.Equal(t, 316.0, testutil.ToFloat64(m.Rows))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.Missions))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Incidents.WithLabelValues(metrics.StatusUnassigned)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.UnmatchedCountries.WithLabelValues(metrics.PhaseBefore)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnmatchedCountries.WithLabelValues(metrics.PhaseAfter)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicateMissions))

	testLogger.AssertContains(t, result.Metadata.RunID)
	testLogger.AssertContains(t, `"country":"Chad"`)
	testLogger.AssertContains(t, "Duplicate mission acronyms")
}

func TestRunDeterministic(t *testing.T) {
	ctx := context.Background()
	paths := writeInputs(t)

	p, err := pipeline.New(pipeline.WithRunID("fixed"))
	require.NoError(t, err)

	var first []string
	for i := 0; i < 3; i++ {
		in, err := pipeline.Load(ctx, paths)
		require.NoError(t, err)
		result, err := p.Run(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "fixed", result.Metadata.RunID)

		var got []string
		for _, r := range result.Rows {
			got = append(got, r.Mission+r.Date.String())
		}
		if first == nil {
			first = got
			continue
		}
		assert.Equal(t, first, got)
	}
}

func TestRunCustomSubstitutions(t *testing.T) {
	ctx := context.Background()
	in, err := pipeline.Load(ctx, writeInputs(t))
	require.NoError(t, err)

	subs := vocabulary.DefaultSubstitutions().Merge(vocabulary.Substitutions{"Chad": "Egypt"})
	p, err := pipeline.New(pipeline.WithSubstitutions(subs))
	require.NoError(t, err)

	result, err := p.Run(ctx, in)
	require.NoError(t, err)
	assert.True(t, result.Converged())
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	paths := writeInputs(t)
	paths.Incidents = ""
	in, err := pipeline.Load(ctx, paths)
	require.NoError(t, err)

	p, err := pipeline.New()
	require.NoError(t, err)

	rec, err := p.Reconcile(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"UNEF"}, rec.DuplicateMissions)
	assert.Equal(t, []string{"Central African Republic", "Chad", "East Timor"}, rec.Before.Unmatched)
	assert.Equal(t, []string{"Chad"}, rec.After.Unmatched)
	assert.Equal(t, 2, rec.Substituted)
	require.Len(t, rec.Projection, 4)
	assert.False(t, rec.Missions[0].End.IsKnown(), "years are not normalized")

	_, err = p.Reconcile(ctx, nil)
	assert.True(t, errors.IsValidationError(err))
}

func TestRunCanceled(t *testing.T) {
	in, err := pipeline.Load(context.Background(), writeInputs(t))
	require.NoError(t, err)
	p, err := pipeline.New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Run(ctx, in)
	require.Error(t, err)
	assert.True(t, errors.IsCanceled(err))
}

func TestWrite(t *testing.T) {
	ctx := context.Background()
	in, err := pipeline.Load(ctx, writeInputs(t))
	require.NoError(t, err)

	m := metrics.New()
	p, err := pipeline.New(pipeline.WithMetrics(m))
	require.NoError(t, err)
	result, err := p.Run(ctx, in)
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	out := pipeline.DefaultOutputs(dir)
	out.SQLitePath = "peacekeeping.db"
	out.MetricsFile = "peacekeeping.prom"

	written, err := p.Write(ctx, result, out)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "missions_countries_for_qgis.csv"),
		filepath.Join(dir, "mission_year_fatalities.csv"),
		filepath.Join(dir, "unassigned_fatalities.csv"),
		filepath.Join(dir, "peacekeeping.db"),
		filepath.Join(dir, "peacekeeping.prom"),
	}, written)

	projection, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Equal(t, "mission_acronym,countries_of_operation\n"+
		"XYZMISSION,Timor-Leste\n"+
		"UNEF,\"Egypt, Israel\"\n"+
		"MINUSCA,\"Central African Rep., Chad\"\n"+
		"GHOST,\n", string(projection))

	series, err := os.ReadFile(written[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(series)), "\n")
	require.Len(t, lines, 1+316)
	assert.Equal(t, "date,mission_acronym,countries_of_operation,active_operation,fatalities", lines[0])
	assert.Equal(t, "1947-04-12,XYZMISSION,Timor-Leste,0,0", lines[1])
	assert.Contains(t, lines, "2010-04-12,XYZMISSION,Timor-Leste,1,2")
	assert.Equal(t, "2025-04-12,GHOST,,0,0", lines[316])

	unassigned, err := os.ReadFile(written[2])
	require.NoError(t, err)
	assert.Equal(t, "mission_acronym,year,fatalities\nORPHAN,1999,2\n", string(unassigned))

	store, err := sqlite.NewStore(written[3])
	require.NoError(t, err)
	defer store.Close()
	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 316, n)

	prom, err := os.ReadFile(written[4])
	require.NoError(t, err)
	assert.Contains(t, string(prom), "peacekeeping_rows_total 316")
}

func TestWriteSkipsEmpty(t *testing.T) {
	ctx := context.Background()
	in, err := pipeline.Load(ctx, writeInputs(t))
	require.NoError(t, err)
	p, err := pipeline.New()
	require.NoError(t, err)
	result, err := p.Run(ctx, in)
	require.NoError(t, err)

	dir := t.TempDir()
	written, err := p.Write(ctx, result, pipeline.Outputs{Dir: dir, TimeSeriesFile: "series.csv", MetricsFile: "m.prom"})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "series.csv")}, written)

	_, err = p.Write(ctx, nil, pipeline.Outputs{})
	assert.True(t, errors.IsValidationError(err))
}

func TestWriteProjection(t *testing.T) {
	dir := t.TempDir()
	path, err := pipeline.WriteProjection(context.Background(), nil, pipeline.DefaultOutputs(dir))
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "mission_acronym,countries_of_operation\n", string(data))

	_, err = pipeline.WriteProjection(context.Background(), nil, pipeline.Outputs{})
	assert.True(t, errors.IsValidationError(err))
}
