package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/agentstation/peacekeeping/pkg/constants"
)

// isolate points HOME and the working directory at empty temp dirs so no
// real config or .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Chdir(dir)
	return dir
}

// TestLoadConfig verifies basic config loading.
func TestLoadConfig(t *testing.T) {
	isolate(t)

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.LogFormat != "auto" {
		t.Errorf("LogFormat = %q, want auto", config.LogFormat)
	}
	if config.LogLevel != "" {
		t.Errorf("LogLevel = %q, want empty so -v/-q apply", config.LogLevel)
	}
	if config.OutputDir != "." {
		t.Errorf("OutputDir = %q, want .", config.OutputDir)
	}
	if config.TimeSeriesFile != constants.TimeSeriesFile {
		t.Errorf("TimeSeriesFile = %q, want %q", config.TimeSeriesFile, constants.TimeSeriesFile)
	}
	if config.ConfigFile != "" {
		t.Errorf("ConfigFile = %q, want none", config.ConfigFile)
	}
}

// TestConfig_File verifies an explicit config file is read.
func TestConfig_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := "missions: m.csv\ncountries: c.csv\nincidents: i.csv\noutput_dir: out\nsqlite: pk.db\nformat: yaml\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.Missions != "m.csv" || config.Countries != "c.csv" || config.Incidents != "i.csv" {
		t.Errorf("inputs = %q %q %q", config.Missions, config.Countries, config.Incidents)
	}
	if config.OutputDir != "out" {
		t.Errorf("OutputDir = %q, want out", config.OutputDir)
	}
	if config.SQLite != "pk.db" {
		t.Errorf("SQLite = %q, want pk.db", config.SQLite)
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
	if config.ConfigFile != path {
		t.Errorf("ConfigFile = %q, want %q", config.ConfigFile, path)
	}
}

// TestConfig_DefaultFile verifies .peacekeeping.yaml in the working directory is found.
func TestConfig_DefaultFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".peacekeeping.yaml"), []byte("missions: found.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Missions != "found.csv" {
		t.Errorf("Missions = %q, want found.csv", config.Missions)
	}
}

// TestConfig_MissingFile verifies an explicit missing config file is an error.
func TestConfig_MissingFile(t *testing.T) {
	dir := isolate(t)
	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() with missing file should fail")
	}
}

// TestConfig_EnvironmentVariables verifies environment variables override the config file.
func TestConfig_EnvironmentVariables(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("output_dir: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PEACEKEEPING_OUTPUT_DIR", "from-env")
	t.Setenv("PEACEKEEPING_VERBOSE", "true")
	t.Setenv("LOG_LEVEL", "error")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}

	if config.OutputDir != "from-env" {
		t.Errorf("OutputDir = %q, want from-env", config.OutputDir)
	}
	if !config.Verbose {
		t.Error("PEACEKEEPING_VERBOSE not loaded")
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", config.LogLevel)
	}
}

// TestConfig_LogEnvOverridesFile verifies LOG_* variables beat the config file.
func TestConfig_LogEnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	content := "log_level: debug\nlog_format: console\nlog_output: stdout\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogLevel != "debug" || config.LogFormat != "console" || config.LogOutput != "stdout" {
		t.Errorf("file values not loaded: %q %q %q", config.LogLevel, config.LogFormat, config.LogOutput)
	}

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "discard")

	config, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", config.LogLevel)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", config.LogFormat)
	}
	if config.LogOutput != "discard" {
		t.Errorf("LogOutput = %q, want discard", config.LogOutput)
	}
}

// TestConfig_EnvFile verifies .env files are loaded.
func TestConfig_EnvFile(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PEACEKEEPING_COUNTRIES=from-dotenv.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ".env.local"), []byte("PEACEKEEPING_MISSIONS=from-local.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("PEACEKEEPING_COUNTRIES")
		os.Unsetenv("PEACEKEEPING_MISSIONS")
	})

	config, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if config.Countries != "from-dotenv.csv" {
		t.Errorf("Countries = %q, want from-dotenv.csv", config.Countries)
	}
	if config.Missions != "from-local.csv" {
		t.Errorf("Missions = %q, want from-local.csv", config.Missions)
	}
}

// TestConfig_UpdateFromFlags verifies flag values take precedence.
func TestConfig_UpdateFromFlags(t *testing.T) {
	config := &Config{Format: "json", LogLevel: "warn"}

	config.UpdateFromFlags(true, false, true, "", "")
	if !config.Verbose || config.Quiet || !config.NoColor {
		t.Errorf("booleans not updated: %+v", config)
	}
	if config.Format != "json" {
		t.Errorf("empty format flag replaced Format: %q", config.Format)
	}

	config.UpdateFromFlags(false, false, false, "yaml", "debug")
	if config.Format != "yaml" || config.LogLevel != "debug" {
		t.Errorf("Format/LogLevel = %q/%q, want yaml/debug", config.Format, config.LogLevel)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty = %q, want b", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}
