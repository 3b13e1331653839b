package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/peacekeeping/internal/store/sqlite"
	"github.com/agentstation/peacekeeping/internal/utils/ptr"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/records"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.NewStore(filepath.Join(t.TempDir(), "out", "peacekeeping.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func row(mission string, year int, active bool, fatalities int) records.Row {
	return records.Row{
		Date:       time.Date(year, time.April, 12, 0, 0, 0, 0, time.UTC),
		Mission:    mission,
		Countries:  ptr.To("Mali"),
		Active:     active,
		Fatalities: fatalities,
	}
}

func TestReplace(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rows := []records.Row{
		row("MINUSMA", 2013, true, 12),
		row("MINUSMA", 2014, true, 0),
		{Date: time.Date(2013, time.April, 12, 0, 0, 0, 0, time.UTC), Mission: "GHOST"},
	}
	projection := []records.CountryProjection{
		{Mission: "MINUSMA", Countries: ptr.To("Mali")},
		{Mission: "GHOST"},
	}

	require.NoError(t, store.Replace(ctx, rows, projection))

	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	f, ok, err := store.Fatalities(ctx, "MINUSMA", 2013)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 12, f)

	_, ok, err = store.Fatalities(ctx, "MINUSMA", 1999)
	require.NoError(t, err)
	assert.False(t, ok)

	countries, err := store.Countries(ctx, "MINUSMA")
	require.NoError(t, err)
	require.NotNil(t, countries)
	assert.Equal(t, "Mali", *countries)

	countries, err = store.Countries(ctx, "GHOST")
	require.NoError(t, err)
	assert.Nil(t, countries)

	_, err = store.Countries(ctx, "NOBODY")
	assert.True(t, errors.IsNotFound(err))
}

func TestReplaceOverwrites(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Replace(ctx, []records.Row{row("A", 2000, true, 1), row("B", 2000, false, 0)}, nil))
	require.NoError(t, store.Replace(ctx, []records.Row{row("A", 2000, true, 5)}, nil))

	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	f, _, err := store.Fatalities(ctx, "A", 2000)
	require.NoError(t, err)
	assert.Equal(t, 5, f)
}

func TestReplaceRollsBackOnConflict(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.Replace(ctx, []records.Row{row("A", 2000, true, 1)}, nil))

	err := store.Replace(ctx, []records.Row{row("B", 2000, true, 1), row("B", 2000, true, 2)}, nil)
	require.Error(t, err)

	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	f, ok, err := store.Fatalities(ctx, "A", 2000)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f)
}

func TestReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "peacekeeping.db")

	store, err := sqlite.NewStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Replace(ctx, []records.Row{row("A", 2000, true, 1)}, nil))
	require.NoError(t, store.Close())

	store, err = sqlite.NewStore(path)
	require.NoError(t, err)
	defer store.Close()

	n, err := store.CountRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
