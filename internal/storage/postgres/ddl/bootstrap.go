package ddl

import (
	"context"
	"fmt"

	gddl "salesreport/internal/ddl"
	"salesreport/internal/storage"
)

// ReplaceSalesTable drops fqn (if present) and recreates it with the sales
// columns. Both statements run in one transaction so a failed create leaves
// the previous table in place.
func ReplaceSalesTable(ctx context.Context, repo storage.Repository, fqn string) error {
	drop, err := gddl.BuildDropTableSQL(fqn)
	if err != nil {
		return err
	}
	create, err := gddl.BuildCreateTableSQL(gddl.SalesTable(fqn, MapType))
	if err != nil {
		return err
	}
	return repo.Exec(ctx, fmt.Sprintf("BEGIN;\n%s\n%s\nCOMMIT;", drop, create))
}
