package records

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agentstation/peacekeeping/internal/utils/ptr"
	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
)

// Table names used in errors and logs.
const (
	TableMissions  = "missions"
	TableCountries = "countries"
	TableIncidents = "incidents"
)

const utf8BOM = "\ufeff"

// table is a CSV body indexed by header name.
type table struct {
	name    string
	columns map[string]int
	rows    [][]string
}

// readTable reads a whole CSV document and checks the required columns.
func readTable(r io.Reader, name string, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.NewSchemaError(name, required[0])
	}
	if err != nil {
		return nil, csvError(err)
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		h = strings.TrimSpace(h)
		if _, dup := columns[h]; !dup {
			columns[h] = i
		}
	}
	for _, col := range required {
		if _, ok := columns[col]; !ok {
			return nil, errors.NewSchemaError(name, col)
		}
	}

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, csvError(err)
	}
	return &table{name: name, columns: columns, rows: rows}, nil
}

// cell returns the named cell of a row; short rows read as empty cells.
func (t *table) cell(row []string, column string) string {
	idx, ok := t.columns[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func csvError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return &errors.ParseError{Format: "csv", Line: perr.Line, Message: perr.Err.Error(), Err: err}
	}
	return errors.NewParseError("csv", "", err.Error(), err)
}

// ReadMissions reads the mission metadata table. Start and End are left
// Unknown; the year normalizer fills them from RawStart and RawEnd.
func ReadMissions(r io.Reader) ([]Mission, error) {
	t, err := readTable(r, TableMissions,
		constants.ColumnMissionAcronym,
		constants.ColumnCountries,
		constants.ColumnStartYear,
		constants.ColumnEndYear,
	)
	if err != nil {
		return nil, err
	}

	missions := make([]Mission, 0, len(t.rows))
	for _, row := range t.rows {
		missions = append(missions, Mission{
			Acronym:   t.cell(row, constants.ColumnMissionAcronym),
			Countries: ptr.NonEmpty(t.cell(row, constants.ColumnCountries)),
			RawStart:  t.cell(row, constants.ColumnStartYear),
			RawEnd:    t.cell(row, constants.ColumnEndYear),
		})
	}
	return missions, nil
}

// ReadReferenceNames reads the NAME column of the reference country table.
// Empty names are skipped; duplicates are kept for the caller to fold.
func ReadReferenceNames(r io.Reader) ([]string, error) {
	t, err := readTable(r, TableCountries, constants.ColumnCountryName)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(t.rows))
	for _, row := range t.rows {
		if name := t.cell(row, constants.ColumnCountryName); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

// ReadIncidents reads the casualty incident log.
func ReadIncidents(r io.Reader) ([]Incident, error) {
	t, err := readTable(r, TableIncidents,
		constants.ColumnMissionAcronym,
		constants.ColumnIncidentDate,
	)
	if err != nil {
		return nil, err
	}

	incidents := make([]Incident, 0, len(t.rows))
	for _, row := range t.rows {
		incidents = append(incidents, Incident{
			Mission: t.cell(row, constants.ColumnMissionAcronym),
			Date:    t.cell(row, constants.ColumnIncidentDate),
		})
	}
	return incidents, nil
}

// WriteProjection writes the country projection table.
func WriteProjection(w io.Writer, projection []CountryProjection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{constants.ColumnMissionAcronym, constants.ColumnCountries}); err != nil {
		return err
	}
	for _, p := range projection {
		if err := cw.Write([]string{p.Mission, ptr.Value(p.Countries)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTimeSeries writes the dense mission-year table.
func WriteTimeSeries(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	header := []string{
		constants.ColumnDate,
		constants.ColumnMissionAcronym,
		constants.ColumnCountries,
		constants.ColumnActive,
		constants.ColumnFatalities,
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.Date.Format(constants.DateLayout),
			r.Mission,
			ptr.Value(r.Countries),
			FormatActive(r.Active),
			strconv.Itoa(r.Fatalities),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteUnassigned writes fatalities whose mission has no metadata row.
func WriteUnassigned(w io.Writer, unassigned []Unassigned) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{constants.ColumnMissionAcronym, constants.ColumnYear, constants.ColumnFatalities}); err != nil {
		return err
	}
	for _, u := range unassigned {
		if err := cw.Write([]string{u.Mission, strconv.Itoa(u.Year), strconv.Itoa(u.Fatalities)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FormatActive encodes the activity flag as 0 or 1.
func FormatActive(active bool) string {
	if active {
		return "1"
	}
	return "0"
}

// ReadFile opens path and decodes it with read, attaching the path to errors.
func ReadFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		var perr *errors.ParseError
		if errors.As(err, &perr) {
			perr.File = path
		}
		return zero, err
	}
	return v, nil
}

// WriteFile creates path, including parent directories, and encodes into it.
func WriteFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
			return errors.WrapIO("create", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, constants.FilePermissions)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	return nil
}
