// Package config defines the run configuration of the sales report and loads
// it with viper.
//
// Sources, lowest precedence first:
//
//  1. Built-in defaults (the fixed paths of a plain run).
//  2. An optional JSON/YAML/TOML file passed with --config.
//  3. Environment variables prefixed SALESREPORT_ (a .env file is loaded
//     into the environment first when present), e.g. SALESREPORT_STORAGE_DB_DSN.
//  4. Command-line flags bound by the caller.
//
// Example (YAML):
//
//	job: salesreport
//	source: { kind: file, file: { path: data/Walmart.csv } }
//	storage: { kind: sqlite, db: { dsn: sales_data.db, table: Sales } }
//	output: { workbook: out/sales_report.xlsx, charts_dir: out/charts }
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "SALESREPORT"

// Pipeline is the full run configuration.
type Pipeline struct {
	// Job names the run in logs and metrics.
	Job string `mapstructure:"job" json:"job"`

	Source    Source    `mapstructure:"source" json:"source"`
	Parser    Parser    `mapstructure:"parser" json:"parser"`
	Storage   Storage   `mapstructure:"storage" json:"storage"`
	Output    Output    `mapstructure:"output" json:"output"`
	Preview   Preview   `mapstructure:"preview" json:"preview"`
	Reconcile Reconcile `mapstructure:"reconcile" json:"reconcile"`
	Metrics   Metrics   `mapstructure:"metrics" json:"metrics"`
	Log       Log       `mapstructure:"log" json:"log"`
}

// Source identifies the input. Only the "file" kind exists.
type Source struct {
	Kind string     `mapstructure:"kind" json:"kind"`
	File SourceFile `mapstructure:"file" json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	// Path is the local filesystem path to the sales CSV.
	Path string `mapstructure:"path" json:"path"`
}

// Parser configures the CSV reader.
type Parser struct {
	Kind    string        `mapstructure:"kind" json:"kind"`
	Options ParserOptions `mapstructure:"options" json:"options"`
}

// ParserOptions are the CSV reader options.
type ParserOptions struct {
	// Comma is the single-character field delimiter.
	Comma string `mapstructure:"comma" json:"comma"`

	// TrimSpace trims surrounding white space from every cell.
	TrimSpace bool `mapstructure:"trim_space" json:"trim_space"`

	// HeaderMap renames source headers to the canonical column names.
	HeaderMap map[string]string `mapstructure:"header_map" json:"header_map"`

	// Layout is the Go time layout of the Date column.
	Layout string `mapstructure:"layout" json:"layout"`
}

// CommaRune returns the delimiter as a rune, ',' when unset.
func (o ParserOptions) CommaRune() rune {
	if o.Comma == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(o.Comma)
	return r
}

// Storage selects the database backend.
type Storage struct {
	// Kind selects the backend: "sqlite" or "postgres".
	Kind string   `mapstructure:"kind" json:"kind"`
	DB   DBConfig `mapstructure:"db" json:"db"`
}

// DBConfig configures the database sink.
type DBConfig struct {
	// DSN is the SQLite file path or the Postgres connection string.
	DSN string `mapstructure:"dsn" json:"dsn"`

	// Table is the sales table name, optionally schema-qualified.
	Table string `mapstructure:"table" json:"table"`

	// BatchSize is the number of rows per insert batch; 0 loads every row in
	// one transaction.
	BatchSize int `mapstructure:"batch_size" json:"batch_size"`
}

// Output locates the generated artifacts.
type Output struct {
	Workbook  string `mapstructure:"workbook" json:"workbook"`
	ChartsDir string `mapstructure:"charts_dir" json:"charts_dir"`
}

// Preview controls the console previews.
type Preview struct {
	// MaxRows is the longest table printed in full; 0 never truncates.
	MaxRows int `mapstructure:"max_rows" json:"max_rows"`

	// Rows is how many head and tail rows a truncated table keeps.
	Rows int `mapstructure:"rows" json:"rows"`
}

// Reconcile controls the in-memory cross-check of per-store totals.
type Reconcile struct {
	// Strict turns a mismatch into a failed run instead of a warning.
	Strict bool `mapstructure:"strict" json:"strict"`
}

// Metrics selects the metrics backend: "none", "prometheus" or "datadog".
type Metrics struct {
	Backend        string `mapstructure:"backend" json:"backend"`
	PushgatewayURL string `mapstructure:"pushgateway_url" json:"pushgateway_url"`
	DatadogAddr    string `mapstructure:"datadog_addr" json:"datadog_addr"`
}

// Log configures logrus.
type Log struct {
	Level string `mapstructure:"level" json:"level"`
}

// SetDefaults registers the built-in defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("job", "salesreport")

	v.SetDefault("source.kind", "file")
	v.SetDefault("source.file.path", "Walmart.csv")

	v.SetDefault("parser.kind", "csv")
	v.SetDefault("parser.options.comma", ",")
	v.SetDefault("parser.options.trim_space", false)
	v.SetDefault("parser.options.header_map", map[string]string{})
	v.SetDefault("parser.options.layout", "2-1-2006")

	v.SetDefault("storage.kind", "sqlite")
	v.SetDefault("storage.db.dsn", "sales_data.db")
	v.SetDefault("storage.db.table", "Sales")
	v.SetDefault("storage.db.batch_size", 0)

	v.SetDefault("output.workbook", "sales_report.xlsx")
	v.SetDefault("output.charts_dir", "charts")

	v.SetDefault("preview.max_rows", 60)
	v.SetDefault("preview.rows", 5)
	v.SetDefault("reconcile.strict", false)

	v.SetDefault("metrics.backend", "none")
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.datadog_addr", "127.0.0.1:8125")

	v.SetDefault("log.level", "info")
}

// Load applies defaults, the optional config file at path and environment
// overrides to v, then decodes the result. Flags must be bound to v before
// calling Load.
func Load(v *viper.Viper, path string) (Pipeline, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Pipeline{}, fmt.Errorf("read config %s: %w", path, err)
		}
		logrus.Debugf("config: loaded %s", v.ConfigFileUsed())
	}

	var p Pipeline
	err := v.Unmarshal(&p, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

// LoadEnvFile loads the first existing file of paths into the process
// environment without overriding variables that are already set. Missing
// files are skipped; it reports the file loaded, if any.
func LoadEnvFile(paths ...string) (string, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", err
		}
		if err := godotenv.Load(p); err != nil {
			return "", fmt.Errorf("load %s: %w", p, err)
		}
		return p, nil
	}
	return "", nil
}
