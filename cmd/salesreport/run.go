// Package main wires the sales report end-to-end: open the database, ingest
// the CSV, replace and load the sales table, run the aggregates, print
// previews, export the workbook, cross-check totals, render charts and close
// the connection.
//
// The steps run strictly in sequence. The CLI layer depends only on
// storage-agnostic interfaces; backends are linked in through
// internal/storage/all.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	"salesreport/internal/chart"
	"salesreport/internal/config"
	"salesreport/internal/datasource"
	"salesreport/internal/datasource/file"
	"salesreport/internal/export"
	"salesreport/internal/metrics"
	csvparser "salesreport/internal/parser/csv"
	"salesreport/internal/preview"
	"salesreport/internal/reconcile"
	"salesreport/internal/report"
	"salesreport/internal/schema"
	"salesreport/internal/storage"
)

// Repository is the storage surface the runner needs.
type Repository = storage.Repository

// ErrReconcile is returned in strict mode when database totals disagree with
// the totals recomputed from the input.
var ErrReconcile = errors.New("per-store totals do not reconcile")

// Function variables used to introduce test seams.
// In production these point to real implementations; tests can override them.
var (
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return storage.New(ctx, cfg)
	}

	openSourceFn = openSource
)

// summary collects the figures reported at the end of a run.
type summary struct {
	rows         int
	missingDates int
	inserted     int64
	stores       int
	days         int
	mismatches   int
	checksum     uint64
}

// run executes the pipeline for spec. Status lines and previews go to out;
// diagnostics go to log.
//
// On failure nothing beyond the deferred connection close is cleaned up: the
// table and any files already written stay as they are.
func run(ctx context.Context, spec config.Pipeline, out io.Writer, log *logrus.Entry) error {
	start := time.Now()
	var sum summary

	step := func(name string, fn func() error) error {
		t0 := time.Now()
		err := fn()
		d := time.Since(t0)
		metrics.RecordStep(spec.Job, name, err, d)
		if err != nil {
			log.WithField("step", name).Errorf("failed after %s: %v", d.Truncate(time.Millisecond), err)
			return fmt.Errorf("%s: %w", name, err)
		}
		log.WithField("step", name).Debugf("done in %s", d.Truncate(time.Millisecond))
		return nil
	}

	// The connection is opened before the input is read; a run that fails to
	// ingest still leaves an empty database file behind.
	log.Infof("storage: kind=%s table=%s", spec.Storage.Kind, spec.Storage.DB.Table)
	repo, err := initRepository(ctx, spec)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			_ = repo.Close()
		}
	}()

	// 1) Ingest.
	var recs []schema.Record
	if err := step("ingest", func() error {
		src, err := openSourceFn(ctx, spec)
		if err != nil {
			return err
		}
		defer src.Close()

		var st csvparser.Stats
		recs, st, err = csvparser.ReadSales(ctx, src, csvparser.Options{
			Comma:     spec.Parser.Options.CommaRune(),
			TrimSpace: spec.Parser.Options.TrimSpace,
			HeaderMap: spec.Parser.Options.HeaderMap,
			Layout:    spec.Parser.Options.Layout,
		})
		if err != nil {
			return fmt.Errorf("read %s: %w", spec.Source.File.Path, err)
		}
		sum.rows, sum.missingDates, sum.checksum = st.Rows, st.MissingDates, src.Checksum()
		if st.MissingDates > 0 {
			log.Warnf("reader: %d of %d rows have a date that is not %s; stored as NULL",
				st.MissingDates, st.Rows, spec.Parser.Options.Layout)
		}
		metrics.RecordRow(spec.Job, "ingested", int64(st.Rows))
		metrics.RecordRow(spec.Job, "missing_dates", int64(st.MissingDates))
		return nil
	}); err != nil {
		return err
	}

	// 2) Load.
	if err := step("load", func() error {
		if err := storage.ReplaceTable(ctx, spec.Storage.Kind, repo, spec.Storage.DB.Table); err != nil {
			return err
		}
		rows := make([][]any, len(recs))
		for i, r := range recs {
			rows[i] = r.Values()
		}
		n, err := storage.LoadRows(ctx, schema.Columns, rows, spec.Storage.DB.BatchSize, repo.CopyFrom)
		sum.inserted = n
		metrics.RecordRow(spec.Job, "inserted", n)
		return err
	}); err != nil {
		return err
	}
	fmt.Fprintln(out, "Data inserted successfully!")

	// 3) Aggregate and preview.
	ph := report.Placeholder(spec.Storage.Kind)
	var (
		stores []schema.StoreTotal
		days   []schema.DateTotal
	)
	if err := step("aggregate", func() error {
		var err error
		if stores, err = report.StoreTotals(ctx, repo, spec.Storage.DB.Table, ph); err != nil {
			return err
		}
		if days, err = report.DailyTotals(ctx, repo, spec.Storage.DB.Table, ph); err != nil {
			return err
		}
		sum.stores, sum.days = len(stores), len(days)
		metrics.RecordAggregate(spec.Job, "stores", len(stores))
		metrics.RecordAggregate(spec.Job, "days", len(days))
		return nil
	}); err != nil {
		return err
	}

	lim := preview.Limit{MaxRows: spec.Preview.MaxRows, Edge: spec.Preview.Rows}
	if err := preview.Print(out, preview.Stores("Total Sales Per Store:", stores), lim); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := preview.Print(out, preview.Days("Sales Trend:", days), lim); err != nil {
		return fmt.Errorf("preview: %w", err)
	}

	// 4) Export.
	if err := step("export", func() error {
		return export.WriteWorkbook(spec.Output.Workbook, stores, days)
	}); err != nil {
		return err
	}
	fmt.Fprintln(out, "Excel report generated successfully!")

	// 5) Reconcile.
	if err := step("reconcile", func() error {
		mm := reconcile.Compare(recs, stores)
		sum.mismatches = len(mm)
		for _, m := range mm {
			log.Warnf("reconcile: store=%d expected=%s got=%s", m.Store, m.Expected, m.Got)
		}
		if len(mm) > 0 && spec.Reconcile.Strict {
			return fmt.Errorf("%w: %d stores", ErrReconcile, len(mm))
		}
		return nil
	}); err != nil {
		return err
	}

	// 6) Visualize.
	if err := step("chart", func() error {
		barPath := filepath.Join(spec.Output.ChartsDir, chart.StoreBarFile)
		if err := chart.StoreBar(stores, barPath); err != nil {
			return err
		}
		trendPath := filepath.Join(spec.Output.ChartsDir, chart.SalesTrendFile)
		if err := chart.SalesTrend(days, trendPath); err != nil {
			return err
		}
		log.Infof("chart: wrote %s and %s", barPath, trendPath)
		return nil
	}); err != nil {
		return err
	}

	// 7) Teardown.
	if err := step("close", func() error {
		closed = true
		return repo.Close()
	}); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database connection closed.")

	log.WithFields(logrus.Fields{
		"rows":          sum.rows,
		"missing_dates": sum.missingDates,
		"inserted":      sum.inserted,
		"stores":        sum.stores,
		"days":          sum.days,
		"mismatches":    sum.mismatches,
		"checksum":      fmt.Sprintf("%016x", sum.checksum),
		"elapsed":       time.Since(start).Truncate(time.Millisecond).String(),
	}).Info("summary")
	return nil
}

// initRepository opens the configured backend through the factory seam.
func initRepository(ctx context.Context, spec config.Pipeline) (Repository, error) {
	repo, err := newRepositoryFn(ctx, storage.Config{
		Kind:    spec.Storage.Kind,
		DSN:     spec.Storage.DB.DSN,
		Table:   spec.Storage.DB.Table,
		Columns: schema.Columns,
	})
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	return repo, nil
}

// openSource maps source configuration to a concrete datasource.
func openSource(ctx context.Context, spec config.Pipeline) (datasource.Stream, error) {
	switch spec.Source.Kind {
	case "file":
		return file.NewLocal(spec.Source.File.Path).Open(ctx)
	default:
		return nil, fmt.Errorf("unsupported source.kind=%s", spec.Source.Kind)
	}
}
