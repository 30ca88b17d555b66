// Package lvmmag defines the public contracts of the lvmmag pipeline:
// the parallel extraction stage that turns Gaia XP spectra into
// synthetic LVM autoguider magnitudes, and the bulk-load stage that
// moves the per-pixel artifacts into the catalog database.
package lvmmag

import "context"

// Version and Build are set by build flags.
var (
	Version = "dev"
	Build   = "unknown"
)

// Extractor runs the HEALPix-tessellated extraction: one
// query-transform-persist task per pixel, in parallel, resumable via
// existing artifact files.
type Extractor interface {
	// Extract processes every pixel of the configured tessellation and
	// returns run statistics. The returned error is fatal for the run;
	// per-pixel failures are only reflected in the statistics when the
	// continue-on-error policy is enabled.
	Extract(ctx context.Context) (*ExtractStats, error)
}

// Ingester bulk-loads previously extracted artifact files into the
// destination table.
type Ingester interface {
	// Ingest loads every resolved artifact file. Individual file
	// failures are reported as warnings in the statistics and never
	// abort the batch; the returned error covers preflight and setup
	// failures only.
	Ingest(ctx context.Context) (*IngestStats, error)
}

// ExtractStats summarizes an extraction run.
type ExtractStats struct {
	// Total is the number of pixels in the tessellation.
	Total int64
	// Completed is the number of pixels queried and written during
	// this run.
	Completed int64
	// Skipped is the number of pixels whose artifact already existed.
	Skipped int64
	// Failed is the number of pixels that errored (always zero unless
	// continue-on-error is set).
	Failed int64
}

// IngestStats summarizes a bulk-load run.
type IngestStats struct {
	// Files is the number of artifact files resolved for the run.
	Files int64
	// Loaded is the number of files copied into the destination.
	Loaded int64
	// Rows is the total number of rows copied.
	Rows int64
	// Warnings counts missing or failed files; they never abort the
	// batch.
	Warnings int64
}
