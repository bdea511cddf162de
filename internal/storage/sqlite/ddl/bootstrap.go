package ddl

import (
	"context"

	gddl "salesreport/internal/ddl"
	"salesreport/internal/storage"
)

// ReplaceSalesTable drops fqn if it exists and creates it again with the
// sales columns mapped through MapType.
func ReplaceSalesTable(ctx context.Context, repo storage.Repository, fqn string) error {
	drop, err := gddl.BuildDropTableSQL(fqn)
	if err != nil {
		return err
	}
	create, err := gddl.BuildCreateTableSQL(gddl.SalesTable(fqn, MapType))
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, drop); err != nil {
		return err
	}
	return repo.Exec(ctx, create)
}
