package ioextract

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"github.com/sdss/lvmmag/pkg/catalog"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/healpix"
	"github.com/sdss/lvmmag/pkg/lvmmag"
	"github.com/sdss/lvmmag/pkg/photometry"

	"github.com/sdss/lvmmag/internal/ioquery"
)

// QuerierFactory creates one pixel querier per worker. Each worker
// owns its querier for the whole run; queriers are never shared
// between goroutines.
type QuerierFactory func(ctx context.Context) (ioquery.PixelQuerier, error)

type extractor struct {
	cfg        *config.Config
	newQuerier QuerierFactory

	completed atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// New creates an Extractor that tessellates the sky at the configured
// HEALPix order and writes one magnitude artifact per pixel.
func New(cfg *config.Config, factory QuerierFactory) lvmmag.Extractor {
	if factory == nil {
		factory = func(ctx context.Context) (ioquery.PixelQuerier, error) {
			return ioquery.New(ctx, cfg)
		}
	}
	return &extractor{cfg: cfg, newQuerier: factory}
}

func (e *extractor) Extract(ctx context.Context) (*lvmmag.ExtractStats, error) {
	pix, err := healpix.New(e.cfg.Extract.Order)
	if err != nil {
		return nil, err
	}
	choice, err := photometry.ParseChoice(e.cfg.Extract.Filter)
	if err != nil {
		return nil, err
	}

	outDir, err := filepath.Abs(e.cfg.Extract.OutputDir)
	if err != nil {
		return nil, &OutputDirError{Dir: e.cfg.Extract.OutputDir, Err: err}
	}
	if err = os.MkdirAll(outDir, 0o755); err != nil {
		return nil, &OutputDirError{Dir: outDir, Err: err}
	}

	// Fail fast on a bad database setup instead of surfacing the
	// same connection error once per worker.
	q, err := e.newQuerier(ctx)
	if err != nil {
		return nil, err
	}
	_ = q.Close(ctx)

	slog.Info("Starting extraction",
		"order", e.cfg.Extract.Order,
		"nside", pix.Nside(),
		"pixels", pix.Npix(),
		"jobs", e.cfg.Extract.Jobs,
		"filter", string(choice),
		"output", outDir,
	)

	bar := pb.Full.Start64(pix.Npix())
	bar.Set("prefix", "Extracting pixels: ")
	bar.Set(pb.CleanOnFinish, true)

	chIn := make(chan int64)
	g, gctx := errgroup.WithContext(ctx)
	for range e.cfg.Extract.Jobs {
		g.Go(func() error {
			return e.worker(gctx, pix, choice, outDir, chIn, bar)
		})
	}
	g.Go(func() error {
		defer close(chIn)
		for ipix := int64(0); ipix < pix.Npix(); ipix++ {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chIn <- ipix:
			}
		}
		return nil
	})
	err = g.Wait()
	bar.Finish()

	stats := &lvmmag.ExtractStats{
		Total:     pix.Npix(),
		Completed: e.completed.Load(),
		Skipped:   e.skipped.Load(),
		Failed:    e.failed.Load(),
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return stats, err
	}

	slog.Info("Extraction finished",
		"completed", humanize.Comma(stats.Completed),
		"skipped", humanize.Comma(stats.Skipped),
		"failed", humanize.Comma(stats.Failed),
	)
	return stats, nil
}

func (e *extractor) worker(
	ctx context.Context,
	pix *healpix.Pixelization,
	choice photometry.Choice,
	outDir string,
	chIn <-chan int64,
	bar *pb.ProgressBar,
) error {
	q, err := e.newQuerier(ctx)
	if err != nil {
		return err
	}
	defer q.Close(context.Background())

	for ipix := range chIn {
		err = e.processPixel(ctx, q, pix, choice, outDir, ipix)
		if err != nil {
			if !e.cfg.Extract.ContinueOnError {
				return &PixelError{Pixel: ipix, Err: err}
			}
			e.failed.Add(1)
			slog.Error("Pixel extraction failed", "ipix", ipix, "error", err)
		}
		bar.Increment()

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
	return nil
}

func (e *extractor) processPixel(
	ctx context.Context,
	q ioquery.PixelQuerier,
	pix *healpix.Pixelization,
	choice photometry.Choice,
	outDir string,
	ipix int64,
) error {
	path := filepath.Join(outDir, FileName(pix.Nside(), pix.Npix(), ipix))
	if _, err := os.Stat(path); err == nil {
		if !e.cfg.Extract.Overwrite {
			e.skipped.Add(1)
			return nil
		}
		if err = os.Remove(path); err != nil {
			return &ArtifactWriteError{Path: path, Err: err}
		}
	}

	records, err := q.QueryPixel(ctx, ipix)
	if err != nil {
		return err
	}

	rows, err := buildRows(records, choice)
	if err != nil {
		return err
	}
	if err = WriteArtifact(path, rows); err != nil {
		return err
	}
	e.completed.Add(1)
	return nil
}

// buildRows converts the spectra of one pixel into artifact rows with
// synthetic magnitudes attached. An empty pixel yields an empty, but
// still valid, artifact.
func buildRows(
	records []catalog.Record,
	choice photometry.Choice,
) ([]catalog.ArtifactRow, error) {
	sflux := make([][]float64, len(records))
	for i, rec := range records {
		spectrum := make([]float64, len(rec.Flux))
		for j, v := range rec.Flux {
			spectrum[j] = float64(v)
		}
		sflux[i] = spectrum
	}

	mags, err := photometry.CalculateMagnitudes(
		sflux, nil, choice, photometry.UnitWattPerM2Nm,
	)
	if err != nil {
		return nil, err
	}

	rows := make([]catalog.ArtifactRow, len(records))
	for i, rec := range records {
		rows[i] = catalog.ArtifactRow{
			SourceID:  rec.SourceID,
			RA:        rec.RA,
			Dec:       rec.Dec,
			Flux:      rec.Flux,
			FluxError: rec.FluxError,
			GMag:      rec.GMag,
			BPMag:     rec.BPMag,
			RPMag:     rec.RPMag,
			LFlux:     mags[i].Flux,
			LMagAB:    mags[i].AB,
			LMagVega:  mags[i].Vega,
		}
	}
	return rows, nil
}
