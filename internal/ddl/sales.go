package ddl

import "salesreport/internal/schema"

// SalesTable returns the fixed definition of the sales table named fqn.
// mapType turns the logical types of schema.ColumnTypes into backend SQL
// types. Every column is nullable: a record with a missing date must load.
func SalesTable(fqn string, mapType func(kind string) string) TableDef {
	cols := make([]ColumnDef, 0, len(schema.Columns))
	for _, name := range schema.Columns {
		cols = append(cols, ColumnDef{
			Name:     name,
			SQLType:  mapType(schema.ColumnTypes[name]),
			Nullable: true,
		})
	}
	return TableDef{FQN: fqn, Columns: cols}
}
