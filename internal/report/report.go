// Package report runs the two aggregate queries over the sales table.
//
// Both queries are read-only; running them again over an unchanged table
// yields the same result.
package report

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	gddl "salesreport/internal/ddl"
	"salesreport/internal/schema"
	"salesreport/internal/storage"
)

// Querier is the read side of storage.Repository.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (storage.Rows, error)
}

// Placeholder returns the bind-parameter style for a storage kind.
func Placeholder(kind string) sq.PlaceholderFormat {
	if kind == "postgres" {
		return sq.Dollar
	}
	return sq.Question
}

var (
	store = gddl.QuoteIdent(schema.ColStore)
	date  = gddl.QuoteIdent(schema.ColDate)
	sales = gddl.QuoteIdent(schema.ColWeeklySales)
)

// StoreTotalsQuery sums Weekly_Sales per store, ordered by store.
func StoreTotalsQuery(table string, ph sq.PlaceholderFormat) (string, []any, error) {
	return sq.
		Select(store, fmt.Sprintf("SUM(%s) AS %s", sales, gddl.QuoteIdent("TotalSales"))).
		From(gddl.QuoteFQN(table)).
		GroupBy(store).
		OrderBy(store).
		PlaceholderFormat(ph).
		ToSql()
}

// DailyTotalsQuery sums Weekly_Sales per date, ascending. Rows without a date
// are left out of the series.
func DailyTotalsQuery(table string, ph sq.PlaceholderFormat) (string, []any, error) {
	return sq.
		Select(date, fmt.Sprintf("SUM(%s) AS %s", sales, gddl.QuoteIdent("DailySales"))).
		From(gddl.QuoteFQN(table)).
		Where(sq.NotEq{date: nil}).
		GroupBy(date).
		OrderBy(date).
		PlaceholderFormat(ph).
		ToSql()
}

// StoreTotals runs the per-store aggregate.
func StoreTotals(ctx context.Context, q Querier, table string, ph sq.PlaceholderFormat) ([]schema.StoreTotal, error) {
	query, args, err := StoreTotalsQuery(table, ph)
	if err != nil {
		return nil, fmt.Errorf("build store totals query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store totals: %w", err)
	}
	defer rows.Close()

	var out []schema.StoreTotal
	for rows.Next() {
		var t schema.StoreTotal
		if err := rows.Scan(&t.Store, &t.TotalSales); err != nil {
			return nil, fmt.Errorf("store totals: scan: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store totals: %w", err)
	}
	return out, nil
}

// DailyTotals runs the per-date aggregate. Dates are read back in
// schema.StoredDateLayout.
func DailyTotals(ctx context.Context, q Querier, table string, ph sq.PlaceholderFormat) ([]schema.DateTotal, error) {
	query, args, err := DailyTotalsQuery(table, ph)
	if err != nil {
		return nil, fmt.Errorf("build daily totals query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	defer rows.Close()

	var out []schema.DateTotal
	for rows.Next() {
		var (
			raw string
			t   schema.DateTotal
		)
		if err := rows.Scan(&raw, &t.DailySales); err != nil {
			return nil, fmt.Errorf("daily totals: scan: %w", err)
		}
		d, err := time.Parse(schema.StoredDateLayout, raw)
		if err != nil {
			return nil, fmt.Errorf("daily totals: stored date %q: %w", raw, err)
		}
		t.Date = d
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	return out, nil
}
