package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sdss/lvmmag/internal/ioconfig"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lvmmag",
		Short: "lvmmag computes LVM guide-camera magnitudes from Gaia XP spectra",
		Long: `lvmmag converts Gaia DR3 XP sampled spectra into synthetic magnitudes
through the LVM acquisition and guiding camera passband, and loads the
results into the catalog database.

The pipeline runs in two phases:
  - extract: tessellate the sky into HEALPix pixels, query the spectra
    of each pixel, compute magnitudes and write one Parquet artifact
    per pixel. Interrupted runs resume where they left off.
  - ingest: bulk-load the artifact files into the destination table
    over the COPY protocol. The table must already exist.

Configuration precedence (highest to lowest):
  1. CLI flags (--db-host, --jobs, etc.)
  2. Environment variables (LVMMAG_*)
  3. Config file (lvmmag.yaml)
  4. Built-in defaults

Environment Variables:
  Nested fields use underscores (database.host -> LVMMAG_DATABASE_HOST).

  Examples:
    LVMMAG_DATABASE_HOST       PostgreSQL host
    LVMMAG_DATABASE_PASSWORD   PostgreSQL password
    LVMMAG_DATABASE_WORK_MEM   work_mem override for spectra queries
    LVMMAG_EXTRACT_ORDER       HEALPix order of the tessellation
    LVMMAG_EXTRACT_JOBS        concurrent extraction workers
    LVMMAG_LOG_LEVEL           log level (debug/info/warn/error)

  See 'go doc github.com/sdss/lvmmag/pkg/config' for the complete list.`,
		Version:           Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: bootstrap,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./lvmmag.yaml or ~/.config/lvmmag/lvmmag.yaml)")
	rootCmd.PersistentFlags().String("db-host", "", "PostgreSQL host")
	rootCmd.PersistentFlags().Int("db-port", 0, "PostgreSQL port")
	rootCmd.PersistentFlags().String("db-user", "", "PostgreSQL user")
	rootCmd.PersistentFlags().String("db-password", "", "PostgreSQL password")
	rootCmd.PersistentFlags().String("db-name", "", "database name")
	rootCmd.PersistentFlags().String("log-level", "",
		"log level (debug/info/warn/error)")

	rootCmd.AddCommand(getExtractCmd())
	rootCmd.AddCommand(getIngestCmd())
	rootCmd.AddCommand(getConfigCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	result, err := ioconfig.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = result.Config

	flags := cmd.Flags()
	if flags.Changed("db-host") {
		cfg.Database.Host, _ = flags.GetString("db-host")
	}
	if flags.Changed("db-port") {
		cfg.Database.Port, _ = flags.GetInt("db-port")
	}
	if flags.Changed("db-user") {
		cfg.Database.User, _ = flags.GetString("db-user")
	}
	if flags.Changed("db-password") {
		cfg.Database.Password, _ = flags.GetString("db-password")
	}
	if flags.Changed("db-name") {
		cfg.Database.Database, _ = flags.GetString("db-name")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.SetDefault(logger.New(&cfg.Log))

	if result.Source == "file" {
		slog.Debug("Configuration loaded", "path", result.SourcePath)
	} else {
		slog.Debug("Configuration loaded", "source", result.Source)
	}
	return nil
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *config.Config {
	return cfg
}
