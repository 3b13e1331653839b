// Package constants provides shared constants used throughout the peacekeeping codebase.
// This includes the analysis horizon, the output anchor date, default file names
// and file permissions that should be consistent across the application.
package constants

import "time"

// Horizon constants define the fixed analysis year range
const (
	// HorizonStart is the first year of the analysis horizon (inclusive)
	HorizonStart = 1947

	// HorizonEnd is the last year of the analysis horizon (inclusive).
	// An "ongoing" end year resolves to this value.
	HorizonEnd = 2025
)

// Anchor date constants define the synthetic per-year date of an output row
const (
	// AnchorMonth is the month of the per-year anchor date
	AnchorMonth = time.April

	// AnchorDay is the day of month of the per-year anchor date
	AnchorDay = 12
)

// Token constants define literal values with special meaning in input tables
const (
	// OngoingToken marks a mission without an end year. Matched case-insensitively
	// against the whole raw value.
	OngoingToken = "ongoing"

	// CountrySeparator splits a country-of-operation list into tokens
	CountrySeparator = ","

	// CountryJoiner rejoins reconciled country tokens
	CountryJoiner = ", "
)

// Column constants define the input and output table schemas
const (
	ColumnMissionAcronym = "mission_acronym"
	ColumnCountries      = "countries_of_operation"
	ColumnStartYear      = "start_year"
	ColumnEndYear        = "end_year"
	ColumnCountryName    = "NAME"
	ColumnIncidentDate   = "incident_date"
	ColumnDate           = "date"
	ColumnActive         = "active_operation"
	ColumnFatalities     = "fatalities"
	ColumnYear           = "year"
)

// File name constants define the default output artifacts
const (
	// ProjectionFile is the country-list projection consumed by GIS tooling
	ProjectionFile = "missions_countries_for_qgis.csv"

	// TimeSeriesFile is the dense mission-year table
	TimeSeriesFile = "mission_year_fatalities.csv"

	// UnassignedFile lists fatalities whose mission has no metadata row
	UnassignedFile = "unassigned_fatalities.csv"

	// DateLayout is the layout used for the output date column
	DateLayout = "2006-01-02"
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Timeout constants
const (
	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 10 * time.Minute

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)
