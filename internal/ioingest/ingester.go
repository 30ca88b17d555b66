// Package ioingest bulk-loads the per-pixel magnitude artifacts into
// the destination table over the PostgreSQL COPY protocol.
package ioingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/sdss/lvmmag/internal/iodb"
	"github.com/sdss/lvmmag/internal/ioextract"
	"github.com/sdss/lvmmag/pkg/catalog"
	"github.com/sdss/lvmmag/pkg/config"
	"github.com/sdss/lvmmag/pkg/db"
	"github.com/sdss/lvmmag/pkg/lvmmag"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Copier streams one CSV payload into the destination table and
// reports the number of rows written. Each load worker owns one
// Copier for the whole run.
type Copier interface {
	CopyCSV(ctx context.Context, payload []byte) (int64, error)
	Close(ctx context.Context) error
}

// CopierFactory creates one Copier per worker.
type CopierFactory func(ctx context.Context) (Copier, error)

type ingester struct {
	cfg       *config.Config
	op        db.Operator
	newCopier CopierFactory

	loaded   atomic.Int64
	rows     atomic.Int64
	warnings atomic.Int64
}

// New creates an Ingester that loads artifact files into the
// configured destination table. The table must already exist.
func New(cfg *config.Config, op db.Operator, factory CopierFactory) lvmmag.Ingester {
	res := &ingester{cfg: cfg, op: op}
	if factory == nil {
		factory = res.pgxCopier
	}
	res.newCopier = factory
	return res
}

func (ing *ingester) Ingest(ctx context.Context) (*lvmmag.IngestStats, error) {
	schema := ing.cfg.Ingest.Schema
	table := ing.cfg.Ingest.Table
	if !identRe.MatchString(schema) {
		return nil, &IdentifierError{Name: schema}
	}
	if !identRe.MatchString(table) {
		return nil, &IdentifierError{Name: table}
	}

	files, err := ing.resolveFiles()
	if err != nil {
		return nil, err
	}

	if err = ing.preflight(ctx, schema, table); err != nil {
		return nil, err
	}

	slog.Info("Starting load",
		"files", len(files),
		"jobs", ing.cfg.Ingest.Jobs,
		"destination", schema+"."+table,
	)

	bar := pb.Full.Start(len(files))
	bar.Set("prefix", "Loading artifacts: ")
	bar.Set(pb.CleanOnFinish, true)

	chIn := make(chan string)
	g, gctx := errgroup.WithContext(ctx)
	for range ing.cfg.Ingest.Jobs {
		g.Go(func() error {
			return ing.worker(gctx, schema, table, chIn, bar)
		})
	}
	g.Go(func() error {
		defer close(chIn)
		for _, path := range files {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case chIn <- path:
			}
		}
		return nil
	})
	err = g.Wait()
	bar.Finish()

	stats := &lvmmag.IngestStats{
		Files:    int64(len(files)),
		Loaded:   ing.loaded.Load(),
		Rows:     ing.rows.Load(),
		Warnings: ing.warnings.Load(),
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return stats, err
	}

	slog.Info("Load finished",
		"files", humanize.Comma(stats.Loaded),
		"rows", humanize.Comma(stats.Rows),
		"warnings", humanize.Comma(stats.Warnings),
	)
	return stats, nil
}

// resolveFiles returns the artifact set: the explicitly listed files
// when given, otherwise every match of the configured glob pattern.
func (ing *ingester) resolveFiles() ([]string, error) {
	if len(ing.cfg.Ingest.Files) > 0 {
		return ing.cfg.Ingest.Files, nil
	}
	pattern := filepath.Join(ing.cfg.Ingest.Dir, ing.cfg.Ingest.Pattern)
	files, err := filepath.Glob(pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoFilesError{
			Dir:     ing.cfg.Ingest.Dir,
			Pattern: ing.cfg.Ingest.Pattern,
		}
	}
	return files, nil
}

func (ing *ingester) preflight(ctx context.Context, schema, table string) error {
	if err := ing.op.Connect(ctx, &ing.cfg.Database); err != nil {
		return err
	}
	defer ing.op.Close()

	exists, err := ing.op.TableExists(ctx, schema, table)
	if err != nil {
		return err
	}
	if !exists {
		return &iodb.MissingTableError{
			Schema:   schema,
			Table:    table,
			Database: ing.cfg.Database.Database,
		}
	}
	return nil
}

func (ing *ingester) worker(
	ctx context.Context,
	schema, table string,
	chIn <-chan string,
	bar *pb.ProgressBar,
) error {
	cp, err := ing.newCopier(ctx)
	if err != nil {
		return err
	}
	defer cp.Close(context.Background())

	for path := range chIn {
		if err = ing.loadFile(ctx, cp, path); err != nil {
			ing.warnings.Add(1)
			slog.Warn("Skipping artifact", "path", path, "error", err)
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

func (ing *ingester) loadFile(
	ctx context.Context, cp Copier, path string,
) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}
	rows, err := ioextract.ReadArtifact(path)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		ing.loaded.Add(1)
		return nil
	}

	payload, err := encodeCSV(rows)
	if err != nil {
		return err
	}
	n, err := cp.CopyCSV(ctx, payload)
	if err != nil {
		return &CopyError{Path: path, Err: err}
	}
	ing.loaded.Add(1)
	ing.rows.Add(n)
	return nil
}

// pgxCopier is the production CopierFactory: a dedicated pgx
// connection per worker, streaming each payload through a COPY inside
// its own transaction.
func (ing *ingester) pgxCopier(ctx context.Context) (Copier, error) {
	conn, err := pgx.Connect(ctx, iodb.ConnString(&ing.cfg.Database))
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf(
		"COPY %s.%s (%s) FROM STDIN WITH (FORMAT csv, HEADER true)",
		ing.cfg.Ingest.Schema,
		ing.cfg.Ingest.Table,
		strings.Join(catalog.DestinationColumns, ", "),
	)
	return &copier{conn: conn, sql: sql}, nil
}

type copier struct {
	conn *pgx.Conn
	sql  string
}

func (c *copier) CopyCSV(ctx context.Context, payload []byte) (int64, error) {
	tx, err := c.conn.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := tx.Conn().PgConn().CopyFrom(
		ctx, bytes.NewReader(payload), c.sql,
	)
	if err != nil {
		return 0, err
	}
	if err = tx.Commit(ctx); err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c *copier) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}
