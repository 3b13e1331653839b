// Package sqlite exports the pipeline outputs to a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
	"github.com/agentstation/peacekeeping/pkg/records"
)

// Store holds the exported mission-year table and country projection.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore creates or opens the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), constants.DirPermissions); err != nil {
		return nil, errors.WrapIO("create", filepath.Dir(dbPath), err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.WrapIO("open", dbPath, err)
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS mission_year_fatalities (
		date TEXT NOT NULL,
		mission_acronym TEXT NOT NULL,
		countries_of_operation TEXT,
		active_operation INTEGER NOT NULL CHECK (active_operation IN (0, 1)),
		fatalities INTEGER NOT NULL CHECK (fatalities >= 0),
		PRIMARY KEY (mission_acronym, date)
	);
	CREATE INDEX IF NOT EXISTS idx_fatalities_date ON mission_year_fatalities(date);

	CREATE TABLE IF NOT EXISTS mission_countries (
		mission_acronym TEXT PRIMARY KEY,
		countries_of_operation TEXT
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return errors.WrapIO("initialize schema", s.dbPath, err)
	}
	return nil
}

// Replace swaps the stored tables for the given rows and projection in a
// single transaction.
func (s *Store) Replace(ctx context.Context, rows []records.Row, projection []records.CountryProjection) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapIO("begin", s.dbPath, err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"mission_year_fatalities", "mission_countries"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return errors.WrapIO("clear "+table, s.dbPath, err)
		}
	}

	rowStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mission_year_fatalities (date, mission_acronym, countries_of_operation, active_operation, fatalities)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.WrapIO("prepare", s.dbPath, err)
	}
	defer rowStmt.Close()

	for _, r := range rows {
		if _, err := rowStmt.ExecContext(ctx,
			r.Date.Format(constants.DateLayout),
			r.Mission,
			nullString(r.Countries),
			boolToInt(r.Active),
			r.Fatalities,
		); err != nil {
			return errors.WrapIO("insert mission_year_fatalities", s.dbPath, err)
		}
	}

	projStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO mission_countries (mission_acronym, countries_of_operation)
		VALUES (?, ?)`)
	if err != nil {
		return errors.WrapIO("prepare", s.dbPath, err)
	}
	defer projStmt.Close()

	for _, p := range projection {
		if _, err := projStmt.ExecContext(ctx, p.Mission, nullString(p.Countries)); err != nil {
			return errors.WrapIO("insert mission_countries", s.dbPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapIO("commit", s.dbPath, err)
	}
	return nil
}

// CountRows returns the number of stored mission-year rows.
func (s *Store) CountRows(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM mission_year_fatalities").Scan(&n); err != nil {
		return 0, errors.WrapIO("query", s.dbPath, err)
	}
	return n, nil
}

// Fatalities returns the stored fatality count for a mission-year, and false
// when no row exists.
func (s *Store) Fatalities(ctx context.Context, mission string, year int) (int, bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT fatalities FROM mission_year_fatalities WHERE mission_acronym = ? AND substr(date, 1, 4) = printf('%04d', ?)",
		mission, year,
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.WrapIO("query", s.dbPath, err)
	}
	return n, true, nil
}

// Countries returns the stored country list of a mission.
func (s *Store) Countries(ctx context.Context, mission string) (*string, error) {
	var countries sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT countries_of_operation FROM mission_countries WHERE mission_acronym = ?",
		mission,
	).Scan(&countries)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFoundError("mission", mission)
	}
	if err != nil {
		return nil, errors.WrapIO("query", s.dbPath, err)
	}
	if !countries.Valid {
		return nil, nil
	}
	return &countries.String, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
