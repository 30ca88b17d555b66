package ioextract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss/lvmmag/pkg/catalog"
)

func TestArtifactRoundTrip(t *testing.T) {
	gmag := 14.25
	rows := []catalog.ArtifactRow{
		{
			SourceID:  4295806720,
			RA:        44.996,
			Dec:       0.005,
			Flux:      []float32{1.5e-17, 1.6e-17, 1.4e-17},
			FluxError: []float32{1e-19, 1e-19, 1e-19},
			GMag:      &gmag,
			LFlux:     2.3e-16,
			LMagAB:    14.1,
			LMagVega:  14.0,
		},
		{
			SourceID: 4295806721,
			RA:       45.1,
			Dec:      -0.2,
			LFlux:    1.1e-16,
			LMagAB:   15.2,
			LMagVega: 15.1,
		},
	}

	path := filepath.Join(t.TempDir(), "artifact.parquet")
	require.NoError(t, WriteArtifact(path, rows))

	got, err := ReadArtifact(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rows[0].SourceID, got[0].SourceID)
	assert.Equal(t, rows[0].Flux, got[0].Flux)
	require.NotNil(t, got[0].GMag)
	assert.Equal(t, gmag, *got[0].GMag)
	assert.Nil(t, got[1].GMag)
	assert.Equal(t, rows[1].LMagAB, got[1].LMagAB)
}

func TestWriteArtifactEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteArtifact(path, nil))

	got, err := ReadArtifact(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteArtifactAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pix.parquet")
	require.NoError(t, WriteArtifact(path, nil))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temporary files left behind")
	assert.Equal(t, "pix.parquet", entries[0].Name())
}

func TestReadArtifactMissing(t *testing.T) {
	_, err := ReadArtifact(filepath.Join(t.TempDir(), "nope.parquet"))
	require.Error(t, err)
	var rerr *ArtifactReadError
	assert.ErrorAs(t, err, &rerr)
}
