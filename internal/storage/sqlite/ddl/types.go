// Package ddl contains SQLite-specific helpers for generating DDL.
//
// It maps the logical column kinds of the sales schema into SQLite column
// types and applies the drop-and-create bootstrap.
package ddl

import "strings"

// MapType maps a logical type string (e.g., "int", "float", "date") into a
// SQLite column type.
//
// SQLite is dynamically typed, so this mapping uses the canonical affinities:
//   - integer-ish types -> INTEGER
//   - boolean          -> INTEGER (0/1)
//   - floating point   -> REAL
//   - date/time        -> TEXT (ISO-8601 strings)
//   - others           -> TEXT
func MapType(kind string) string {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "int", "integer", "bigint":
		return "INTEGER"
	case "bool", "boolean":
		return "INTEGER"
	case "float", "double", "real":
		return "REAL"
	case "numeric", "decimal":
		return "NUMERIC"
	case "date", "timestamp", "datetime", "timestamptz":
		return "TEXT"
	case "blob", "bytes":
		return "BLOB"
	default:
		return "TEXT"
	}
}
