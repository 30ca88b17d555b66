package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sdss/lvmmag/internal/iodb"
	"github.com/sdss/lvmmag/internal/ioingest"
)

func getIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [artifact files...]",
		Short: "Bulk-loads magnitude artifacts into the destination table",
		Long: `Loads per-pixel magnitude artifacts into the destination table over
the PostgreSQL COPY protocol. The destination table must already
exist; lvmmag never creates or migrates schema.

Files can be given explicitly as arguments, otherwise every file
matching the configured glob pattern in the artifact directory is
loaded. A missing or unreadable file is reported as a warning and the
load continues.

Examples:
  lvmmag ingest --dir /data/lvmmag
  lvmmag ingest --jobs 4 --schema catalogdb --table lvm_magnitude
  lvmmag ingest /data/lvmmag/gaia_dr3_xp_sampled_mean_spectrum_256_000042.parquet`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			flags := cmd.Flags()
			if flags.Changed("jobs") {
				cfg.Ingest.Jobs, _ = flags.GetInt("jobs")
			}
			if flags.Changed("schema") {
				cfg.Ingest.Schema, _ = flags.GetString("schema")
			}
			if flags.Changed("table") {
				cfg.Ingest.Table, _ = flags.GetString("table")
			}
			if flags.Changed("dir") {
				cfg.Ingest.Dir, _ = flags.GetString("dir")
			}
			if flags.Changed("pattern") {
				cfg.Ingest.Pattern, _ = flags.GetString("pattern")
			}
			if len(args) > 0 {
				cfg.Ingest.Files = args
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt,
			)
			defer stop()

			ing := ioingest.New(cfg, iodb.NewPgxOperator(), nil)
			stats, err := ing.Ingest(ctx)
			if err != nil {
				return fmt.Errorf("load failed: %w", err)
			}
			if stats.Warnings > 0 {
				fmt.Printf("Loaded %d of %d files (%d warnings)\n",
					stats.Loaded, stats.Files, stats.Warnings)
			}
			return nil
		},
	}

	cmd.Flags().IntP("jobs", "j", 0, "number of concurrent load workers")
	cmd.Flags().String("schema", "", "destination schema")
	cmd.Flags().String("table", "", "destination table")
	cmd.Flags().StringP("dir", "d", "", "directory with artifact files")
	cmd.Flags().String("pattern", "", "glob pattern for artifact files")

	return cmd
}
