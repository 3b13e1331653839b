package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/peacekeeping/pkg/constants"
	"github.com/agentstation/peacekeeping/pkg/errors"
)

// envPrefix prefixes every environment variable the CLI reads through viper.
const envPrefix = "PEACEKEEPING"

// Config holds the application configuration loaded from various sources
// including config files, environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file
	ConfigFile string

	// Input tables
	Missions  string
	Countries string
	Incidents string

	// Substitution table file
	Substitutions string

	// Outputs
	OutputDir      string
	ProjectionFile string
	TimeSeriesFile string
	UnassignedFile string
	SQLite         string
	MetricsFile    string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (PEACEKEEPING_*, plus LOG_LEVEL/LOG_FORMAT/LOG_OUTPUT)
// 3. .env.local and .env files
// 4. Config file (configFile, or .peacekeeping.yaml in $HOME or the working directory)
// 5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("config", "failed to read "+configFile, err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".peacekeeping")

		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, errors.NewConfigError("config", "failed to read config file", err)
			}
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Missions:  v.GetString("missions"),
		Countries: v.GetString("countries"),
		Incidents: v.GetString("incidents"),

		Substitutions: v.GetString("substitutions"),

		OutputDir:      v.GetString("output_dir"),
		ProjectionFile: v.GetString("projection_file"),
		TimeSeriesFile: v.GetString("timeseries_file"),
		UnassignedFile: v.GetString("unassigned_file"),
		SQLite:         v.GetString("sqlite"),
		MetricsFile:    v.GetString("metrics_file"),

		LogLevel:  firstNonEmpty(os.Getenv("LOG_LEVEL"), v.GetString("log_level")),
		LogFormat: firstNonEmpty(os.Getenv("LOG_FORMAT"), v.GetString("log_format")),
		LogOutput: firstNonEmpty(os.Getenv("LOG_OUTPUT"), v.GetString("log_output")),
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("projection_file", constants.ProjectionFile)
	v.SetDefault("timeseries_file", constants.TimeSeriesFile)
	v.SetDefault("unassigned_file", constants.UnassignedFile)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags updates config values from parsed command flags.
// This should be called after cobra parses flags to ensure flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files. Existing
// variables are never overwritten, so .env.local is loaded first to take
// precedence over .env.
func loadEnvFiles() {
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// firstNonEmpty returns the first non-empty value.
func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
