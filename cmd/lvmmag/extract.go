package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/sdss/lvmmag/internal/ioextract"
)

func getExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extracts spectra and computes per-pixel magnitude artifacts",
		Long: `Extracts Gaia DR3 XP sampled spectra pixel by pixel, computes
synthetic LVM AG magnitudes and writes one Parquet artifact per
HEALPix pixel.

Existing artifacts are skipped, so an interrupted run picks up where
it stopped. Use --overwrite to regenerate everything from scratch.

Examples:
  lvmmag extract
  lvmmag extract --order 6 --jobs 10 --output-dir /data/lvmmag
  lvmmag extract --filter mean --max-gmag 17 --overwrite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfig()

			flags := cmd.Flags()
			if flags.Changed("order") {
				cfg.Extract.Order, _ = flags.GetInt("order")
			}
			if flags.Changed("jobs") {
				cfg.Extract.Jobs, _ = flags.GetInt("jobs")
			}
			if flags.Changed("output-dir") {
				cfg.Extract.OutputDir, _ = flags.GetString("output-dir")
			}
			if flags.Changed("overwrite") {
				cfg.Extract.Overwrite, _ = flags.GetBool("overwrite")
			}
			if flags.Changed("max-gmag") {
				cfg.Extract.MaxGmag, _ = flags.GetFloat64("max-gmag")
			}
			if flags.Changed("filter") {
				cfg.Extract.Filter, _ = flags.GetString("filter")
			}
			if flags.Changed("continue-on-error") {
				cfg.Extract.ContinueOnError, _ = flags.GetBool("continue-on-error")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(
				cmd.Context(), os.Interrupt,
			)
			defer stop()

			ext := ioextract.New(cfg, nil)
			stats, err := ext.Extract(ctx)
			if err != nil {
				return fmt.Errorf("extraction failed: %w", err)
			}
			if stats.Failed > 0 {
				return fmt.Errorf("extraction finished with %d failed pixels",
					stats.Failed)
			}
			return nil
		},
	}

	cmd.Flags().Int("order", 0, "HEALPix order of the tessellation")
	cmd.Flags().IntP("jobs", "j", 0, "number of concurrent workers")
	cmd.Flags().StringP("output-dir", "o", "", "directory for artifact files")
	cmd.Flags().Bool("overwrite", false, "regenerate existing artifacts")
	cmd.Flags().Float64("max-gmag", 0, "faint Gaia G magnitude cutoff (0 = none)")
	cmd.Flags().String("filter", "",
		"transmission curve variant: optimistic, pessimistic, mean")
	cmd.Flags().Bool("continue-on-error", false,
		"log failed pixels and keep going")

	return cmd
}
