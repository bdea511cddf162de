// This file adds a lightweight linter for Pipeline values. It performs static
// checks over a decoded Pipeline and returns a list of issues (errors and
// warnings) that the CLI surfaces before running.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that blocks execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding.
//
// Path is a dotted path into the config (e.g. "storage.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Validate lints p without mutating it.
func Validate(p Pipeline) []Issue {
	var issues []Issue
	add := func(sev IssueSeverity, path, format string, args ...any) {
		issues = append(issues, Issue{Severity: sev, Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if strings.TrimSpace(p.Job) == "" {
		add(SeverityError, "job", "job must not be empty; it labels logs and metrics")
	}

	// Source.
	if p.Source.Kind != "file" {
		add(SeverityError, "source.kind", "unsupported source kind %q; only \"file\" is available", p.Source.Kind)
	}
	if strings.TrimSpace(p.Source.File.Path) == "" {
		add(SeverityError, "source.file.path", "file source requires a non-empty path")
	}

	// Parser.
	if p.Parser.Kind != "csv" {
		add(SeverityError, "parser.kind", "unsupported parser kind %q; only \"csv\" is available", p.Parser.Kind)
	}
	if n := utf8.RuneCountInString(p.Parser.Options.Comma); n > 1 {
		add(SeverityError, "parser.options.comma", "comma must be a single character, got %q", p.Parser.Options.Comma)
	} else if c := p.Parser.Options.CommaRune(); c == '"' || c == '\r' || c == '\n' {
		add(SeverityError, "parser.options.comma", "comma %q is not a valid delimiter", c)
	}
	if l := p.Parser.Options.Layout; l != "" && !isDateLayout(l) {
		add(SeverityError, "parser.options.layout", "layout %q does not carry year, month and day", l)
	}

	// Storage.
	switch p.Storage.Kind {
	case "sqlite", "postgres":
	case "":
		add(SeverityError, "storage.kind", "storage.kind must not be empty")
	default:
		add(SeverityError, "storage.kind", "unknown storage kind %q; expected sqlite or postgres", p.Storage.Kind)
	}
	if strings.TrimSpace(p.Storage.DB.DSN) == "" {
		add(SeverityError, "storage.db.dsn", "dsn must not be empty")
	}
	if strings.TrimSpace(p.Storage.DB.Table) == "" {
		add(SeverityError, "storage.db.table", "table must not be empty")
	}
	if p.Storage.DB.BatchSize < 0 {
		add(SeverityError, "storage.db.batch_size", "batch_size must be >= 0 (0 loads all rows in one transaction)")
	} else if p.Storage.DB.BatchSize > 0 {
		add(SeverityWarning, "storage.db.batch_size", "batch_size > 0 commits per batch; a failed run may leave a partial table")
	}

	// Output.
	if strings.TrimSpace(p.Output.Workbook) == "" {
		add(SeverityError, "output.workbook", "workbook path must not be empty")
	} else if !strings.EqualFold(filepath.Ext(p.Output.Workbook), ".xlsx") {
		add(SeverityWarning, "output.workbook", "workbook %q does not end in .xlsx", p.Output.Workbook)
	}
	if strings.TrimSpace(p.Output.ChartsDir) == "" {
		add(SeverityError, "output.charts_dir", "charts_dir must not be empty")
	}

	if p.Preview.Rows < 0 {
		add(SeverityError, "preview.rows", "preview.rows must be >= 0")
	}
	if p.Preview.MaxRows < 0 {
		add(SeverityError, "preview.max_rows", "preview.max_rows must be >= 0 (0 never truncates)")
	}

	// Metrics.
	switch p.Metrics.Backend {
	case "", "none":
	case "prometheus":
		if p.Metrics.PushgatewayURL == "" {
			add(SeverityError, "metrics.pushgateway_url", "prometheus backend requires pushgateway_url")
		}
	case "datadog":
		if p.Metrics.DatadogAddr == "" {
			add(SeverityError, "metrics.datadog_addr", "datadog backend requires datadog_addr")
		}
	default:
		add(SeverityError, "metrics.backend", "unknown metrics backend %q; expected none, prometheus or datadog", p.Metrics.Backend)
	}

	if _, err := logrus.ParseLevel(p.Log.Level); err != nil {
		add(SeverityError, "log.level", "%v", err)
	}

	return issues
}

// isDateLayout reports whether layout round-trips a date with distinct year,
// month and day.
func isDateLayout(layout string) bool {
	ref := time.Date(2013, time.November, 27, 0, 0, 0, 0, time.UTC)
	got, err := time.Parse(layout, ref.Format(layout))
	if err != nil {
		return false
	}
	return got.Year() == ref.Year() && got.Month() == ref.Month() && got.Day() == ref.Day()
}
