// Package config provides configuration management for lvmmag.
//
// This package has no I/O dependencies; loading from files, flags and
// environment variables happens in internal/ioconfig.
//
// Precedence (highest to lowest): CLI flags > env vars > config file >
// defaults. Environment variables use the LVMMAG_ prefix with
// underscores for nesting (database.host -> LVMMAG_DATABASE_HOST).
package config

import (
	"fmt"
	"strings"
)

// Config represents the complete lvmmag configuration.
type Config struct {
	// Database contains PostgreSQL connection settings for the
	// source catalog and the destination table.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Extract contains settings for the parallel extraction run.
	Extract ExtractConfig `mapstructure:"extract" yaml:"extract"`

	// Ingest contains settings for the bulk-load run.
	Ingest IngestConfig `mapstructure:"ingest" yaml:"ingest"`

	Log LogConfig `mapstructure:"log" yaml:"log"`
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	// Host is the PostgreSQL server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the PostgreSQL server port number.
	Port int `mapstructure:"port" yaml:"port"`

	// User is the PostgreSQL database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the PostgreSQL database password. May be empty when
	// peer or .pgpass authentication is in place.
	Password string `mapstructure:"password" yaml:"password"`

	// Database is the database name to connect to.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode.
	// Valid values: "disable", "prefer", "require", "verify-ca",
	// "verify-full".
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`

	// WorkMem is the value for the per-transaction work_mem override
	// used by the spectra queries. The sampled spectra blow up sort
	// and hash memory, so this is much larger than the server default.
	// Applied with SET LOCAL, so it never leaks past the transaction.
	WorkMem string `mapstructure:"work_mem" yaml:"work_mem"`
}

// ExtractConfig contains settings for the extraction stage.
type ExtractConfig struct {
	// Order is the HEALPix resolution order used to tessellate the
	// sky. The number of work units is 12*4^order.
	Order int `mapstructure:"order" yaml:"order"`

	// Jobs is the number of concurrent extraction workers. Each
	// worker owns its own database connection.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// OutputDir is the directory where per-pixel artifact files are
	// written.
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`

	// Overwrite regenerates artifacts that already exist. When false,
	// an existing artifact counts as completed work (resumability).
	Overwrite bool `mapstructure:"overwrite" yaml:"overwrite"`

	// MaxGmag, when positive, restricts the query to sources with a
	// Gaia G magnitude not fainter than this value. Zero disables
	// the cutoff.
	MaxGmag float64 `mapstructure:"max_gmag" yaml:"max_gmag"`

	// Filter selects the transmission curve variant used to compute
	// magnitudes: "optimistic", "pessimistic", or "mean".
	Filter string `mapstructure:"filter" yaml:"filter"`

	// ContinueOnError logs failed pixels and keeps going instead of
	// aborting the whole run on the first failure.
	ContinueOnError bool `mapstructure:"continue_on_error" yaml:"continue_on_error"`
}

// IngestConfig contains settings for the bulk-load stage.
type IngestConfig struct {
	// Jobs is the number of concurrent load workers. Each worker owns
	// its own database connection.
	Jobs int `mapstructure:"jobs" yaml:"jobs"`

	// Schema is the destination schema name.
	Schema string `mapstructure:"schema" yaml:"schema"`

	// Table is the destination table name. The table must already
	// exist; lvmmag never creates it.
	Table string `mapstructure:"table" yaml:"table"`

	// Dir is the directory searched for artifact files when no
	// explicit file list is given.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Pattern is the glob used to select files from Dir.
	Pattern string `mapstructure:"pattern" yaml:"pattern"`

	// Files is an explicit list of artifact files to load. When set,
	// Dir and Pattern are ignored.
	Files []string `mapstructure:"files" yaml:"files"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is the minimum log level: "debug", "info", "warn",
	// "error".
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log output format: "text" or "json".
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns a Config with all default values set. The default
// config is always valid.
func Defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "sdss",
			Database: "sdss5db",
			SSLMode:  "disable",
			WorkMem:  "20GB",
		},
		Extract: ExtractConfig{
			Order:     8,
			Jobs:      5,
			OutputDir: "./",
			Filter:    "optimistic",
		},
		Ingest: IngestConfig{
			Jobs:    1,
			Schema:  "catalogdb",
			Table:   "lvm_magnitude",
			Dir:     "./",
			Pattern: "*.parquet",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// MergeWithDefaults fills in zero-valued fields from Defaults().
// Boolean fields are runtime flags and are left alone.
func (c *Config) MergeWithDefaults() {
	d := Defaults()

	if c.Database.Host == "" {
		c.Database.Host = d.Database.Host
	}
	if c.Database.Port == 0 {
		c.Database.Port = d.Database.Port
	}
	if c.Database.User == "" {
		c.Database.User = d.Database.User
	}
	if c.Database.Database == "" {
		c.Database.Database = d.Database.Database
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = d.Database.SSLMode
	}
	if c.Database.WorkMem == "" {
		c.Database.WorkMem = d.Database.WorkMem
	}

	if c.Extract.Order == 0 {
		c.Extract.Order = d.Extract.Order
	}
	if c.Extract.Jobs == 0 {
		c.Extract.Jobs = d.Extract.Jobs
	}
	if c.Extract.OutputDir == "" {
		c.Extract.OutputDir = d.Extract.OutputDir
	}
	if c.Extract.Filter == "" {
		c.Extract.Filter = d.Extract.Filter
	}

	if c.Ingest.Jobs == 0 {
		c.Ingest.Jobs = d.Ingest.Jobs
	}
	if c.Ingest.Schema == "" {
		c.Ingest.Schema = d.Ingest.Schema
	}
	if c.Ingest.Table == "" {
		c.Ingest.Table = d.Ingest.Table
	}
	if c.Ingest.Dir == "" {
		c.Ingest.Dir = d.Ingest.Dir
	}
	if c.Ingest.Pattern == "" {
		c.Ingest.Pattern = d.Ingest.Pattern
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("database.host cannot be empty")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		return fmt.Errorf("database.port %d out of range", c.Database.Port)
	}
	switch strings.ToLower(c.Database.SSLMode) {
	case "disable", "prefer", "require", "verify-ca", "verify-full":
	default:
		return fmt.Errorf("database.ssl_mode %q not recognized", c.Database.SSLMode)
	}

	if c.Extract.Order < 0 || c.Extract.Order > 29 {
		return fmt.Errorf("extract.order %d out of range [0, 29]", c.Extract.Order)
	}
	if c.Extract.Jobs < 1 {
		return fmt.Errorf("extract.jobs must be at least 1")
	}
	switch strings.ToLower(c.Extract.Filter) {
	case "optimistic", "pessimistic", "mean":
	default:
		return fmt.Errorf("extract.filter %q not recognized", c.Extract.Filter)
	}

	if c.Ingest.Jobs < 1 {
		return fmt.Errorf("ingest.jobs must be at least 1")
	}
	if c.Ingest.Schema == "" || c.Ingest.Table == "" {
		return fmt.Errorf("ingest.schema and ingest.table cannot be empty")
	}

	return nil
}
