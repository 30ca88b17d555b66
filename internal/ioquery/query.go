// Package ioquery implements the pixel query engine: given a HEALPix
// pixel it retrieves the Gaia XP spectra of the sources inside it
// from the catalog database.
//
// The retrieval is a deliberate two-phase fetch-then-filter: a cone
// search over-fetches every source within a circle that covers the
// pixel, then the exact pixel index is re-derived from each source's
// coordinates and only matching rows are kept. This avoids requiring
// the catalog to evaluate tessellation membership natively.
package ioquery

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5"
	"github.com/sdss/lvmmag/internal/iodb"
	"github.com/sdss/lvmmag/pkg/catalog"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/healpix"
)

// PixelQuerier retrieves the source records belonging to one HEALPix
// pixel. Implementations own a dedicated database connection and are
// not safe for concurrent use; every worker gets its own.
type PixelQuerier interface {
	// QueryPixel returns the records whose exact coordinates fall in
	// the pixel with the given nested index. An empty result is not
	// an error.
	QueryPixel(ctx context.Context, ipix int64) ([]catalog.Record, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}

// The XP spectra join. q3c_radial_query bounds the great-circle
// distance from the cone center; the spectrum columns come back as
// string-encoded arrays and are decoded client-side.
const coneSearchSQL = `
SELECT xp.source_id, xp.ra, xp.dec, xp.flux, xp.flux_error,
	g.phot_g_mean_mag, g.phot_bp_mean_mag, g.phot_rp_mean_mag
FROM catalogdb.gaia_dr3_source AS g
JOIN catalogdb.gaia_dr3_xp_sampled_mean_spectrum AS xp
	ON xp.source_id = g.source_id
WHERE q3c_radial_query(g.ra, g.dec, $1, $2, $3)`

var workMemRe = regexp.MustCompile(`^[0-9]+\s*(?:[kMGT]B|B)?$`)

type querier struct {
	conn    *pgx.Conn
	pix     *healpix.Pixelization
	workMem string
	maxGmag float64
}

// New opens a dedicated catalog connection and returns a PixelQuerier
// for the configured tessellation. A connection failure is fatal and
// is not retried at this layer.
func New(ctx context.Context, cfg *config.Config) (PixelQuerier, error) {
	pix, err := healpix.New(cfg.Extract.Order)
	if err != nil {
		return nil, err
	}

	if !workMemRe.MatchString(cfg.Database.WorkMem) {
		return nil, &WorkMemError{Value: cfg.Database.WorkMem}
	}

	conn, err := pgx.Connect(ctx, iodb.ConnString(&cfg.Database))
	if err != nil {
		return nil, &iodb.ConnectionError{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			Database: cfg.Database.Database,
			Err:      err,
		}
	}

	return &querier{
		conn:    conn,
		pix:     pix,
		workMem: cfg.Database.WorkMem,
		maxGmag: cfg.Extract.MaxGmag,
	}, nil
}

// QueryPixel resolves the pixel to its center and a conservative
// inclusion radius (half the maximum pixel radius of the order),
// cone-searches that region and post-filters to exact membership.
func (q *querier) QueryPixel(
	ctx context.Context,
	ipix int64,
) ([]catalog.Record, error) {
	ra, dec, err := q.pix.PixelCenter(ipix)
	if err != nil {
		return nil, err
	}
	radius := q.pix.MaxPixelRadius() / 2

	records, err := q.ConeSearch(ctx, ra, dec, radius)
	if err != nil {
		return nil, &QueryError{Pixel: ipix, Err: err}
	}

	kept := FilterToPixel(records, q.pix, ipix)
	slog.Debug("pixel query done",
		"ipix", ipix,
		"fetched", len(records),
		"kept", len(kept),
	)
	return kept, nil
}

// ConeSearch retrieves the XP spectra of every source within radius
// degrees of (ra, dec), optionally limited to sources brighter than
// the configured Gaia G cutoff. It runs inside its own transaction
// with an elevated work_mem that is scoped to the transaction via
// SET LOCAL.
func (q *querier) ConeSearch(
	ctx context.Context,
	ra, dec, radius float64,
) ([]catalog.Record, error) {
	sql := coneSearchSQL
	args := []any{ra, dec, radius}
	if q.maxGmag > 0 {
		sql += " AND g.phot_g_mean_mag <= $4"
		args = append(args, q.maxGmag)
	}

	tx, err := q.conn.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// workMem is validated against a size pattern at construction, so
	// it is safe to splice; SET LOCAL does not take bind parameters.
	_, err = tx.Exec(ctx, "SET LOCAL work_mem = '"+q.workMem+"'")
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	records, err := scanRecords(rows)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return records, nil
}

// Close releases the querier's connection.
func (q *querier) Close(ctx context.Context) error {
	return q.conn.Close(ctx)
}

// scanRecords drains the result set, decoding the string-encoded
// spectrum arrays into numeric form.
func scanRecords(rows pgx.Rows) ([]catalog.Record, error) {
	defer rows.Close()

	var records []catalog.Record
	for rows.Next() {
		var (
			rec       catalog.Record
			flux      string
			fluxError string
		)
		err := rows.Scan(
			&rec.SourceID, &rec.RA, &rec.Dec, &flux, &fluxError,
			&rec.GMag, &rec.BPMag, &rec.RPMag,
		)
		if err != nil {
			return nil, err
		}

		rec.Flux, err = ParseFloatArray(flux)
		if err != nil {
			return nil, &DecodeError{
				SourceID: rec.SourceID, Column: "flux", Err: err,
			}
		}
		rec.FluxError, err = ParseFloatArray(fluxError)
		if err != nil {
			return nil, &DecodeError{
				SourceID: rec.SourceID, Column: "flux_error", Err: err,
			}
		}

		records = append(records, rec)
	}
	return records, rows.Err()
}

// FilterToPixel keeps only the records whose coordinates re-derive to
// the target pixel index. Forward-index then inverse-index is the
// identity, so sources inside the pixel are never dropped.
func FilterToPixel(
	records []catalog.Record,
	pix *healpix.Pixelization,
	ipix int64,
) []catalog.Record {
	var kept []catalog.Record
	for _, rec := range records {
		if pix.PixelForCoords(rec.RA, rec.Dec) == ipix {
			kept = append(kept, rec)
		}
	}
	return kept
}
