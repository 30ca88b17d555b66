package ioextract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdss/lvmmag/internal/ioquery"
	"github.com/sdss/lvmmag/pkg/catalog"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/photometry"
)

type fakeQuerier struct {
	queries *atomic.Int64
	failOn  map[int64]bool
}

func (f *fakeQuerier) QueryPixel(
	_ context.Context, ipix int64,
) ([]catalog.Record, error) {
	f.queries.Add(1)
	if f.failOn[ipix] {
		return nil, errors.New("synthetic query failure")
	}
	return []catalog.Record{testRecord(ipix)}, nil
}

func (f *fakeQuerier) Close(_ context.Context) error { return nil }

func testRecord(ipix int64) catalog.Record {
	n := len(photometry.DefaultWavelengthGrid())
	flux := make([]float32, n)
	ferr := make([]float32, n)
	for i := range flux {
		flux[i] = 1e-17
		ferr[i] = 1e-19
	}
	gmag := 12.5
	return catalog.Record{
		SourceID:  1000 + ipix,
		RA:        float64(ipix),
		Dec:       -10.0,
		Flux:      flux,
		FluxError: ferr,
		GMag:      &gmag,
	}
}

func testSetup(t *testing.T, failOn map[int64]bool,
) (*config.Config, *atomic.Int64, QuerierFactory) {
	t.Helper()
	cfg := config.Defaults()
	cfg.Extract.Order = 0
	cfg.Extract.Jobs = 2
	cfg.Extract.OutputDir = t.TempDir()
	cfg.Extract.Filter = "mean"

	var queries atomic.Int64
	factory := func(_ context.Context) (ioquery.PixelQuerier, error) {
		return &fakeQuerier{queries: &queries, failOn: failOn}, nil
	}
	return cfg, &queries, factory
}

func TestFileName(t *testing.T) {
	tests := []struct {
		msg   string
		nside int64
		npix  int64
		ipix  int64
		name  string
	}{
		{"order 0", 1, 12, 3,
			"gaia_dr3_xp_sampled_mean_spectrum_1_03.parquet"},
		{"order 8", 256, 786432, 42,
			"gaia_dr3_xp_sampled_mean_spectrum_256_000042.parquet"},
		{"last pixel", 256, 786432, 786431,
			"gaia_dr3_xp_sampled_mean_spectrum_256_786431.parquet"},
	}
	for _, v := range tests {
		assert.Equal(t, v.name, FileName(v.nside, v.npix, v.ipix), v.msg)
	}
}

func TestExtract(t *testing.T) {
	cfg, queries, factory := testSetup(t, nil)

	stats, err := New(cfg, factory).Extract(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Total)
	assert.Equal(t, int64(12), stats.Completed)
	assert.Equal(t, int64(0), stats.Skipped)
	assert.Equal(t, int64(0), stats.Failed)
	assert.Equal(t, int64(12), queries.Load())

	files, err := filepath.Glob(
		filepath.Join(cfg.Extract.OutputDir, "*.parquet"),
	)
	require.NoError(t, err)
	assert.Len(t, files, 12)

	rows, err := ReadArtifact(files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Greater(t, rows[0].LFlux, 0.0)
	assert.NotZero(t, rows[0].LMagAB)
	assert.NotZero(t, rows[0].LMagVega)
	require.NotNil(t, rows[0].GMag)
	assert.InEpsilon(t, 12.5, *rows[0].GMag, 1e-12)
}

func TestExtractResume(t *testing.T) {
	cfg, queries, factory := testSetup(t, nil)
	ext := New(cfg, factory)

	_, err := ext.Extract(t.Context())
	require.NoError(t, err)
	require.Equal(t, int64(12), queries.Load())

	ext = New(cfg, factory)
	stats, err := ext.Extract(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Skipped)
	assert.Equal(t, int64(0), stats.Completed)
	assert.Equal(t, int64(12), queries.Load(), "resume must not re-query")
}

func TestExtractOverwrite(t *testing.T) {
	cfg, queries, factory := testSetup(t, nil)

	_, err := New(cfg, factory).Extract(t.Context())
	require.NoError(t, err)

	cfg.Extract.Overwrite = true
	stats, err := New(cfg, factory).Extract(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Completed)
	assert.Equal(t, int64(0), stats.Skipped)
	assert.Equal(t, int64(24), queries.Load())
}

func TestExtractFailFast(t *testing.T) {
	cfg, _, factory := testSetup(t, map[int64]bool{5: true})

	stats, err := New(cfg, factory).Extract(t.Context())
	require.Error(t, err)
	var perr *PixelError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, int64(5), perr.Pixel)
	assert.Less(t, stats.Completed, int64(12))
}

func TestExtractContinueOnError(t *testing.T) {
	cfg, _, factory := testSetup(t, map[int64]bool{5: true})
	cfg.Extract.ContinueOnError = true

	stats, err := New(cfg, factory).Extract(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(11), stats.Completed)
	assert.Equal(t, int64(1), stats.Failed)

	bad := filepath.Join(cfg.Extract.OutputDir, FileName(1, 12, 5))
	_, err = os.Stat(bad)
	assert.True(t, os.IsNotExist(err), "failed pixel must leave no artifact")
}

func TestExtractFactoryFailure(t *testing.T) {
	cfg, _, _ := testSetup(t, nil)
	factory := func(_ context.Context) (ioquery.PixelQuerier, error) {
		return nil, errors.New("no database")
	}

	_, err := New(cfg, factory).Extract(t.Context())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database")
}

func TestExtractBadFilter(t *testing.T) {
	cfg, _, factory := testSetup(t, nil)
	cfg.Extract.Filter = "shiny"

	_, err := New(cfg, factory).Extract(t.Context())
	require.Error(t, err)
	var cerr *photometry.UnknownChoiceError
	assert.ErrorAs(t, err, &cerr)
}
