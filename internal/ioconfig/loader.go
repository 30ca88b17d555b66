// Package ioconfig loads configuration from files, environment
// variables and flags. This is an impure package; the pure
// configuration model lives in pkg/config.
package ioconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/sdss/lvmmag/pkg/config"
)

// LoadResult contains the loaded configuration and metadata about the
// source.
type LoadResult struct {
	Config     *config.Config
	SourcePath string // path to the config file used, empty for defaults
	Source     string // "file", "defaults", or "defaults+env"
}

// Load reads configuration from a YAML file and returns a validated
// Config with source info. If configPath is empty, it searches default
// locations:
//   - ./lvmmag.yaml
//   - ~/.config/lvmmag/lvmmag.yaml
//
// Returns an error if the file is malformed or validation fails.
func Load(configPath string) (*LoadResult, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Precedence: flags > env vars > config file > defaults.
	v.SetEnvPrefix("LVMMAG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Defaults must be registered before reading the config so that
	// AutomaticEnv knows which keys to check.
	d := config.Defaults()
	v.SetDefault("database.host", d.Database.Host)
	v.SetDefault("database.port", d.Database.Port)
	v.SetDefault("database.user", d.Database.User)
	v.SetDefault("database.password", d.Database.Password)
	v.SetDefault("database.database", d.Database.Database)
	v.SetDefault("database.ssl_mode", d.Database.SSLMode)
	v.SetDefault("database.work_mem", d.Database.WorkMem)
	v.SetDefault("extract.order", d.Extract.Order)
	v.SetDefault("extract.jobs", d.Extract.Jobs)
	v.SetDefault("extract.output_dir", d.Extract.OutputDir)
	v.SetDefault("extract.overwrite", d.Extract.Overwrite)
	v.SetDefault("extract.max_gmag", d.Extract.MaxGmag)
	v.SetDefault("extract.filter", d.Extract.Filter)
	v.SetDefault("extract.continue_on_error", d.Extract.ContinueOnError)
	v.SetDefault("ingest.jobs", d.Ingest.Jobs)
	v.SetDefault("ingest.schema", d.Ingest.Schema)
	v.SetDefault("ingest.table", d.Ingest.Table)
	v.SetDefault("ingest.dir", d.Ingest.Dir)
	v.SetDefault("ingest.pattern", d.Ingest.Pattern)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		if _, err := os.Stat("lvmmag.yaml"); err == nil {
			v.SetConfigFile("lvmmag.yaml")
		} else if defaultPath, err := GetDefaultConfigPath(); err == nil {
			if _, statErr := os.Stat(defaultPath); statErr == nil {
				v.SetConfigFile(defaultPath)
			}
		}
	}

	configFileRead := false
	usedConfigPath := ""

	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if notFound || os.IsNotExist(err) {
			if configPath != "" {
				return nil, fmt.Errorf("config file not found: %s", configPath)
			}
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		configFileRead = true
		usedConfigPath = v.ConfigFileUsed()
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	source := "defaults"
	if configFileRead {
		source = "file"
	} else if hasEnvVars() {
		source = "defaults+env"
	}

	return &LoadResult{
		Config:     &cfg,
		SourcePath: usedConfigPath,
		Source:     source,
	}, nil
}

// hasEnvVars checks if any LVMMAG_* environment variables are set.
func hasEnvVars() bool {
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, "LVMMAG_") {
			return true
		}
	}
	return false
}
