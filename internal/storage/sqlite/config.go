// Package sqlite implements a SQLite-backed storage.Repository.
package sqlite

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "sales_data.db"
	//   "file:sales.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string

	// Table is the target table name for inserts, e.g. "Sales". FQN values
	// such as "main.Sales" are accepted; each segment is quoted.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}
