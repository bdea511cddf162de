package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salesreport/internal/chart"
	"salesreport/internal/config"
	"salesreport/internal/export"
	"salesreport/internal/schema"
	"salesreport/internal/storage"
)

const salesCSV = "Store,Date,Weekly_Sales,Holiday_Flag,Temperature,Fuel_Price,CPI,Unemployment\n" +
	"1,05-02-2010,1000,0,42.31,2.572,211.0963582,8.106\n" +
	"2,05-02-2010,250.5,0,38.51,2.548,211.2421698,8.106\n" +
	"1,12-02-2010,500,1,39.93,2.514,211.2891429,8.106\n" +
	"2,not-a-date,99,0,40,2.5,211,8\n"

// testSpec returns a sqlite pipeline rooted in a fresh temp dir.
func testSpec(t *testing.T, body string) config.Pipeline {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "Walmart.csv")
	require.NoError(t, os.WriteFile(in, []byte(body), 0o644))

	var p config.Pipeline
	p.Job = "salesreport_test"
	p.Source.Kind = "file"
	p.Source.File.Path = in
	p.Parser.Kind = "csv"
	p.Parser.Options.Comma = ","
	p.Parser.Options.Layout = schema.DateLayout
	p.Storage.Kind = "sqlite"
	p.Storage.DB.DSN = filepath.Join(dir, "sales_data.db")
	p.Storage.DB.Table = "Sales"
	p.Output.Workbook = filepath.Join(dir, "sales_report.xlsx")
	p.Output.ChartsDir = filepath.Join(dir, "charts")
	p.Preview.MaxRows = 60
	p.Preview.Rows = 5
	p.Metrics.Backend = "none"
	p.Log.Level = "error"
	return p
}

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func sheetRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestRun_EndToEnd(t *testing.T) {
	spec := testSpec(t, salesCSV)
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), spec, &out, discardLog()))

	stdout := out.String()
	iInserted := strings.Index(stdout, "Data inserted successfully!")
	iExcel := strings.Index(stdout, "Excel report generated successfully!")
	iClosed := strings.Index(stdout, "Database connection closed.")
	require.True(t, iInserted >= 0 && iExcel > iInserted && iClosed > iExcel, "unexpected stdout:\n%s", stdout)
	assert.Contains(t, stdout, "Total Sales Per Store:")
	assert.Contains(t, stdout, "1500.00")
	assert.Contains(t, stdout, "349.50")

	assert.Equal(t, [][]string{
		{"Store", "TotalSales"},
		{"1", "1500"},
		{"2", "349.5"},
	}, sheetRows(t, spec.Output.Workbook, export.SheetStores))

	// The row with an unparseable date is counted per store but has no day.
	assert.Equal(t, [][]string{
		{"Date", "DailySales"},
		{"2010-02-05", "1250.5"},
		{"2010-02-12", "500"},
	}, sheetRows(t, spec.Output.Workbook, export.SheetTrend))

	for _, name := range []string{chart.StoreBarFile, chart.SalesTrendFile} {
		b, err := os.ReadFile(filepath.Join(spec.Output.ChartsDir, name))
		require.NoError(t, err, name)
		assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")), "%s is not a PNG", name)
	}
}

func TestRun_RerunReplacesTable(t *testing.T) {
	spec := testSpec(t, salesCSV)

	require.NoError(t, run(context.Background(), spec, io.Discard, discardLog()))
	require.NoError(t, run(context.Background(), spec, io.Discard, discardLog()))

	// A second run must not double the totals.
	assert.Equal(t, [][]string{
		{"Store", "TotalSales"},
		{"1", "1500"},
		{"2", "349.5"},
	}, sheetRows(t, spec.Output.Workbook, export.SheetStores))
}

func TestRun_HeaderOnly(t *testing.T) {
	spec := testSpec(t, "Store,Date,Weekly_Sales,Holiday_Flag,Temperature,Fuel_Price,CPI,Unemployment\n")
	var out bytes.Buffer

	require.NoError(t, run(context.Background(), spec, &out, discardLog()))
	assert.Contains(t, out.String(), "Database connection closed.")
	assert.Equal(t, [][]string{{"Store", "TotalSales"}}, sheetRows(t, spec.Output.Workbook, export.SheetStores))
}

func TestRun_MissingInput(t *testing.T) {
	d := withTrackedRepo(t, 0)
	spec := testSpec(t, salesCSV)
	spec.Source.File.Path = filepath.Join(t.TempDir(), "nope.csv")
	var out bytes.Buffer

	err := run(context.Background(), spec, &out, discardLog())
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.True(t, strings.HasPrefix(err.Error(), "ingest: "), err.Error())
	assert.Empty(t, out.String())

	// The connection is opened first and closed on the way out.
	assert.FileExists(t, spec.Storage.DB.DSN)
	assert.Equal(t, 1, d.closes)
	_, statErr := os.Stat(spec.Output.Workbook)
	assert.True(t, errors.Is(statErr, os.ErrNotExist), "workbook must not be written")
}

func TestRun_MissingColumnIsFatal(t *testing.T) {
	spec := testSpec(t, "Store,Date\n1,05-02-2010\n")

	err := run(context.Background(), spec, io.Discard, discardLog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestRun_UnsupportedSourceKind(t *testing.T) {
	spec := testSpec(t, salesCSV)
	spec.Source.Kind = "http"

	err := run(context.Background(), spec, io.Discard, discardLog())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported source.kind=http")
}

func TestRun_RepositoryInitFailure(t *testing.T) {
	orig := newRepositoryFn
	t.Cleanup(func() { newRepositoryFn = orig })

	boom := errors.New("boom")
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		return nil, boom
	}

	spec := testSpec(t, salesCSV)
	var out bytes.Buffer
	err := run(context.Background(), spec, &out, discardLog())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "init repo")
	assert.False(t, strings.HasPrefix(err.Error(), "ingest"), "input must not be read without a connection")
	assert.NotContains(t, out.String(), "Data inserted successfully!")
}

// trackedRepo wraps the real repository. It counts Close calls and, when
// dropStore is set, loses every row of that store on insert so the database
// totals disagree with the input.
type trackedRepo struct {
	Repository
	dropStore int
	closes    int
}

func (d *trackedRepo) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if d.dropStore == 0 {
		return d.Repository.CopyFrom(ctx, columns, rows)
	}
	kept := rows[:0:0]
	for _, r := range rows {
		if r[0].(int) != d.dropStore {
			kept = append(kept, r)
		}
	}
	return d.Repository.CopyFrom(ctx, columns, kept)
}

func (d *trackedRepo) Close() error {
	d.closes++
	return d.Repository.Close()
}

func withTrackedRepo(t *testing.T, dropStore int) *trackedRepo {
	t.Helper()
	orig := newRepositoryFn
	t.Cleanup(func() { newRepositoryFn = orig })

	d := &trackedRepo{dropStore: dropStore}
	newRepositoryFn = func(ctx context.Context, cfg storage.Config) (Repository, error) {
		r, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.Repository = r
		return d, nil
	}
	return d
}

func TestRun_ReconcileWarnsByDefault(t *testing.T) {
	d := withTrackedRepo(t, 2)
	spec := testSpec(t, salesCSV)

	var logs bytes.Buffer
	l := logrus.New()
	l.SetOutput(&logs)

	require.NoError(t, run(context.Background(), spec, io.Discard, logrus.NewEntry(l)))
	assert.Contains(t, logs.String(), "reconcile: store=2")
	assert.Equal(t, 1, d.closes)
}

func TestRun_ReconcileStrictFails(t *testing.T) {
	d := withTrackedRepo(t, 2)
	spec := testSpec(t, salesCSV)
	spec.Reconcile.Strict = true

	var out bytes.Buffer
	err := run(context.Background(), spec, &out, discardLog())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReconcile)
	assert.Contains(t, out.String(), "Excel report generated successfully!")
	assert.NotContains(t, out.String(), "Database connection closed.")
	assert.Equal(t, 1, d.closes, "connection must be closed on failure")
}

func TestRootCmd_Validate(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		wantOut string
	}{
		{"defaults are valid", []string{"--validate"}, false, "configuration is valid"},
		{"bad storage kind", []string{"--validate", "--storage-kind", "oracle"}, true, "error: storage.kind:"},
		{"bad metrics backend", []string{"--validate", "--metrics-backend", "statsd"}, true, "metrics.backend"},
		{"unexpected arg", []string{"extra"}, true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			cmd := newRootCmd(&stdout, &stderr)
			cmd.SetArgs(tt.args)
			cmd.SetOut(&stderr)
			cmd.SetErr(&stderr)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Contains(t, stderr.String(), tt.wantOut)
			assert.Empty(t, stdout.String())
		})
	}
}

func TestRootCmd_Run(t *testing.T) {
	spec := testSpec(t, salesCSV)
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{
		"--input", spec.Source.File.Path,
		"--db", spec.Storage.DB.DSN,
		"--workbook", spec.Output.Workbook,
		"--charts-dir", spec.Output.ChartsDir,
		"--preview-rows", "1",
		"--log-level", "error",
	})
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	require.NoError(t, cmd.Execute(), stderr.String())
	assert.Contains(t, stdout.String(), "Database connection closed.")
	assert.FileExists(t, spec.Output.Workbook)
}

func TestRootCmd_HelpNamesChartsDir(t *testing.T) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)

	assert.Contains(t, cmd.Long, "output.charts_dir")
	assert.Contains(t, cmd.Long, chart.StoreBarFile)
	assert.Contains(t, cmd.Long, chart.SalesTrendFile)
	assert.Contains(t, cmd.Flags().Lookup("charts-dir").Usage, "PNG")
}
