package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"salesreport/internal/chart"
	"salesreport/internal/config"
	"salesreport/internal/metrics"
	"salesreport/internal/metrics/datadog"
	"salesreport/internal/metrics/prompush"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "salesreport/internal/storage/all"
)

// flagKeys binds command-line flags to config keys.
var flagKeys = map[string]string{
	"input":           "source.file.path",
	"db":              "storage.db.dsn",
	"table":           "storage.db.table",
	"storage-kind":    "storage.kind",
	"batch-size":      "storage.db.batch_size",
	"workbook":        "output.workbook",
	"charts-dir":      "output.charts_dir",
	"preview-rows":    "preview.rows",
	"preview-max":     "preview.max_rows",
	"strict":          "reconcile.strict",
	"metrics-backend": "metrics.backend",
	"pushgateway-url": "metrics.pushgateway_url",
	"log-level":       "log.level",
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the salesreport command. Report output goes to stdout,
// logs and config issues to stderr.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var (
		cfgPath  string
		validate bool
	)
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "salesreport",
		Short: "Load the Walmart sales CSV into a database and build the sales report",
		Long: "salesreport reads the sales CSV, replaces the Sales table with its rows,\n" +
			"prints per-store and per-date totals, writes an Excel workbook and renders\n" +
			"two charts.\n\n" +
			"The charts are not displayed. They are written as PNG files\n" +
			"(" + chart.StoreBarFile + ", " + chart.SalesTrendFile + ") into\n" +
			"output.charts_dir, set with --charts-dir (default \"charts\").",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if envFile, err := config.LoadEnvFile(".env"); err != nil {
				return fmt.Errorf("load env: %w", err)
			} else if envFile != "" {
				logrus.Debugf("config: loaded %s", envFile)
			}

			spec, err := config.Load(v, cfgPath)
			if err != nil {
				fmt.Fprintln(stderr, err)
				return err
			}

			// Validate pipeline config.
			issues := config.Validate(spec)
			for _, iss := range issues {
				fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
			}
			if config.HasErrors(issues) {
				err := fmt.Errorf("configuration is invalid")
				fmt.Fprintln(stderr, err)
				return err
			}
			if validate {
				fmt.Fprintln(stderr, "configuration is valid")
				return nil
			}

			log := newLogger(stderr, spec)

			flush := initMetrics(spec, log)
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Infof("pipeline: source=%s storage=%s table=%s",
				spec.Source.File.Path, spec.Storage.Kind, spec.Storage.DB.Table)
			if err := run(ctx, spec, stdout, log); err != nil {
				log.Errorf("run failed: %v", err)
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, "config", "", "optional config file (json, yaml or toml)")
	f.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	f.String("input", "", "sales CSV path")
	f.String("db", "", "database DSN (SQLite file path or Postgres URL)")
	f.String("table", "", "sales table name")
	f.String("storage-kind", "", "storage backend: sqlite or postgres")
	f.Int("batch-size", 0, "rows per insert batch; 0 loads all rows in one transaction")
	f.String("workbook", "", "Excel workbook output path")
	f.String("charts-dir", "", "directory for the chart PNGs")
	f.Int("preview-rows", 0, "head and tail rows kept when a preview is truncated")
	f.Int("preview-max", 0, "longest preview printed in full; 0 never truncates")
	f.Bool("strict", false, "fail when database totals do not reconcile with the input")
	f.String("metrics-backend", "", "metrics backend: none, prometheus or datadog")
	f.String("pushgateway-url", "", "Prometheus Pushgateway base URL")
	f.String("log-level", "", "log level (debug, info, warn, error)")

	for name, key := range flagKeys {
		// Unset flags do not shadow defaults, the file or the environment.
		_ = v.BindPFlag(key, f.Lookup(name))
	}
	return cmd
}

// newLogger configures a logrus logger writing to w and returns an entry
// tagged with the job and a fresh run id.
func newLogger(w io.Writer, spec config.Pipeline) *logrus.Entry {
	l := logrus.New()
	l.SetOutput(w)
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	if lvl, err := logrus.ParseLevel(spec.Log.Level); err == nil {
		l.SetLevel(lvl)
	}
	// Package-level logging in the reader and config loader follows the same
	// level.
	logrus.SetOutput(w)
	logrus.SetLevel(l.GetLevel())

	return l.WithFields(logrus.Fields{
		"job":    spec.Job,
		"run_id": uuid.NewString(),
	})
}

// initMetrics installs the configured metrics backend and returns the flush
// to run at exit. Backend init failures keep the nop backend.
func initMetrics(spec config.Pipeline, log *logrus.Entry) func() {
	noop := func() {}

	var (
		b   metrics.Backend
		err error
	)
	switch name := strings.ToLower(spec.Metrics.Backend); name {
	case "prometheus":
		gwURL := spec.Metrics.PushgatewayURL
		b, err = prompush.NewBackend(spec.Job, gwURL)
		if err == nil {
			log.Infof("metrics: url=%v, backend=%v, job_name=%v", gwURL, name, spec.Job)
		}
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{Addr: spec.Metrics.DatadogAddr})
		if err == nil {
			log.Infof("metrics: addr=%v, backend=%v", spec.Metrics.DatadogAddr, name)
		}
	case "", "none":
		log.Debugf("metrics: disabled (backend=%q)", name)
		return noop
	default:
		log.Warnf("metrics: unknown backend %q; metrics disabled", name)
		return noop
	}
	if err != nil {
		log.Warnf("metrics: failed to init %s backend: %v; using nop", spec.Metrics.Backend, err)
		return noop
	}

	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warnf("metrics: flush error: %v", err)
		}
	}
}
