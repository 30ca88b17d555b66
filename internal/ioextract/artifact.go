package ioextract

import (
	"fmt"
	"math"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/sdss/lvmmag/pkg/catalog"
)

// FileName returns the deterministic artifact filename for a pixel.
// The index is zero-padded to the width of the largest index at this
// resolution, so a pixel's "done" state is a pure function of
// (nside, ipix) and a directory listing sorts in pixel order.
func FileName(nside, npix, ipix int64) string {
	zpad := int(math.Log10(float64(npix))) + 1
	return fmt.Sprintf(
		"gaia_dr3_xp_sampled_mean_spectrum_%d_%0*d.parquet",
		nside, zpad, ipix,
	)
}

// WriteArtifact persists the rows of one pixel as a Parquet file with
// zstd column compression. The file is written to a temporary path
// and renamed into place, so a failing write never leaves a partial
// artifact behind and never corrupts an existing one.
func WriteArtifact(path string, rows []catalog.ArtifactRow) error {
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return &ArtifactWriteError{Path: path, Err: err}
	}

	w := parquet.NewGenericWriter[catalog.ArtifactRow](
		f, parquet.Compression(&parquet.Zstd),
	)
	if len(rows) > 0 {
		if _, err = w.Write(rows); err != nil {
			w.Close()
			f.Close()
			os.Remove(tmp)
			return &ArtifactWriteError{Path: path, Err: err}
		}
	}
	if err = w.Close(); err != nil {
		f.Close()
		os.Remove(tmp)
		return &ArtifactWriteError{Path: path, Err: err}
	}
	if err = f.Close(); err != nil {
		os.Remove(tmp)
		return &ArtifactWriteError{Path: path, Err: err}
	}

	if err = os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return &ArtifactWriteError{Path: path, Err: err}
	}
	return nil
}

// ReadArtifact loads every row of a previously written artifact file.
func ReadArtifact(path string) ([]catalog.ArtifactRow, error) {
	rows, err := parquet.ReadFile[catalog.ArtifactRow](path)
	if err != nil {
		return nil, &ArtifactReadError{Path: path, Err: err}
	}
	return rows, nil
}
