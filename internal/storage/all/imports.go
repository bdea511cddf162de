// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each concrete backend, which register
// their factories and table replacers with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "sqlite"   (salesreport/internal/storage/sqlite)
//   - "postgres" (salesreport/internal/storage/postgres)
//
// Typical usage (in cmd/salesreport or a similar wiring layer):
//
//	import _ "salesreport/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "sales_data.db", Table: "Sales"})
//	if err != nil {
//	    // handle error
//	}
//	defer repo.Close()
//
//	if err := storage.ReplaceTable(ctx, "sqlite", repo, "Sales"); err != nil {
//	    // handle DDL error
//	}
package all

import (
	_ "salesreport/internal/storage/postgres"
	_ "salesreport/internal/storage/sqlite"
)
