// Package preview prints aggregate result sets as aligned console tables.
package preview

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"salesreport/internal/schema"
)

// Table is a titled two-column result set ready to print.
type Table struct {
	Title   string
	Headers [2]string
	Rows    [][2]string
}

// Stores builds the preview of the per-store aggregate.
func Stores(title string, in []schema.StoreTotal) Table {
	t := Table{Title: title, Headers: [2]string{"Store", "TotalSales"}}
	for _, s := range in {
		t.Rows = append(t.Rows, [2]string{strconv.Itoa(s.Store), formatFloat(s.TotalSales)})
	}
	return t
}

// Days builds the preview of the per-date aggregate.
func Days(title string, in []schema.DateTotal) Table {
	t := Table{Title: title, Headers: [2]string{"Date", "DailySales"}}
	for _, d := range in {
		t.Rows = append(t.Rows, [2]string{d.Date.Format(schema.StoredDateLayout), formatFloat(d.DailySales)})
	}
	return t
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// Limit controls truncation the way dataframes are displayed: a table longer
// than MaxRows is cut down to its first and last Edge rows. MaxRows <= 0
// never truncates.
type Limit struct {
	MaxRows int
	Edge    int
}

// DefaultLimit prints up to 60 rows in full and 5 head and tail rows beyond.
var DefaultLimit = Limit{MaxRows: 60, Edge: 5}

// truncates reports whether a table of n rows is cut down.
func (l Limit) truncates(n int) bool {
	return l.MaxRows > 0 && n > l.MaxRows && l.Edge > 0 && n > 2*l.Edge
}

// Print writes the table to w. When lim truncates it only the first and last
// lim.Edge rows are printed, separated by "...", followed by a
// "[N rows x 2 columns]" footer.
func Print(w io.Writer, t Table, lim Limit) error {
	if _, err := fmt.Fprintln(w, t.Title); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t%s\t\n", t.Headers[0], t.Headers[1])

	row := func(i int) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t\n", i, t.Rows[i][0], t.Rows[i][1])
	}

	n := len(t.Rows)
	truncated := lim.truncates(n)
	if truncated {
		for i := 0; i < lim.Edge; i++ {
			row(i)
		}
		fmt.Fprintf(tw, "...\t...\t...\t\n")
		for i := n - lim.Edge; i < n; i++ {
			row(i)
		}
	} else {
		for i := range t.Rows {
			row(i)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if truncated {
		if _, err := fmt.Fprintf(w, "\n[%d rows x 2 columns]\n", n); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
