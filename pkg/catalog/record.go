// Package catalog defines the data model shared by the pipeline
// stages: the source records retrieved from the catalog database and
// the rows persisted to the per-pixel artifact files.
package catalog

// Record is one row of the gaia_dr3_source x xp_sampled_mean_spectrum
// join: a unique source identifier, sky coordinates, the sampled flux
// and flux-error spectra on the fixed XP wavelength grid, and the
// broad-band Gaia magnitudes. Records are read-only; they are
// retrieved transiently per pixel query and never written back.
type Record struct {
	SourceID  int64
	RA        float64
	Dec       float64
	Flux      []float32
	FluxError []float32

	// Broad-band magnitudes can be NULL in the catalog.
	GMag  *float64
	BPMag *float64
	RPMag *float64
}

// ArtifactRow is the persisted form of a Record after the synthetic
// photometry has been appended. One Parquet file per HEALPix pixel
// holds these rows with maximal column compression; the file is never
// mutated after creation.
type ArtifactRow struct {
	SourceID  int64     `parquet:"source_id,zstd"`
	RA        float64   `parquet:"ra,zstd"`
	Dec       float64   `parquet:"dec,zstd"`
	Flux      []float32 `parquet:"flux,zstd"`
	FluxError []float32 `parquet:"flux_error,zstd"`

	GMag  *float64 `parquet:"phot_g_mean_mag,optional,zstd"`
	BPMag *float64 `parquet:"phot_bp_mean_mag,optional,zstd"`
	RPMag *float64 `parquet:"phot_rp_mean_mag,optional,zstd"`

	// Synthetic photometry through the LVM AG passband. LFlux is in
	// W m-2 nm-1.
	LFlux    float64 `parquet:"lflux,zstd"`
	LMagAB   float64 `parquet:"lmag_ab,zstd"`
	LMagVega float64 `parquet:"lmag_vega,zstd"`
}

// DestinationColumns are the columns of the destination table, in
// COPY order. The artifact files carry a superset; the bulk loader
// projects down to exactly these.
var DestinationColumns = []string{
	"source_id", "ra", "dec", "lflux", "lmag_ab", "lmag_vega",
}
