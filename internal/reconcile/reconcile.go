// Package reconcile recomputes per-store totals from the ingested records and
// compares them with the totals the database returned.
package reconcile

import (
	"sort"

	"github.com/shopspring/decimal"

	"salesreport/internal/schema"
)

// Mismatch is one store whose database total differs from the recomputed one
// at cent precision. A store missing on either side is reported with a zero
// value on that side.
type Mismatch struct {
	Store    int
	Expected decimal.Decimal // recomputed from the records
	Got      decimal.Decimal // returned by the database
}

// Totals sums WeeklySales per store with decimal arithmetic.
func Totals(recs []schema.Record) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal)
	for _, r := range recs {
		out[r.Store] = out[r.Store].Add(decimal.NewFromFloat(r.WeeklySales))
	}
	return out
}

// Compare returns the stores whose totals disagree, ordered by store.
func Compare(recs []schema.Record, got []schema.StoreTotal) []Mismatch {
	want := Totals(recs)

	have := make(map[int]decimal.Decimal, len(got))
	for _, t := range got {
		have[t.Store] = decimal.NewFromFloat(t.TotalSales)
	}

	stores := make(map[int]struct{}, len(want)+len(have))
	for s := range want {
		stores[s] = struct{}{}
	}
	for s := range have {
		stores[s] = struct{}{}
	}

	var out []Mismatch
	for s := range stores {
		e, g := want[s].Round(2), have[s].Round(2)
		if !e.Equal(g) {
			out = append(out, Mismatch{Store: s, Expected: e, Got: g})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Store < out[j].Store })
	return out
}
