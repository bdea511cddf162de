// Package csv reads the sales CSV into typed records.
//
// The reader is strict about structure and lenient about dates: a missing
// column, a row of the wrong width or a non-numeric value in a numeric column
// aborts the read, while a date that does not match the layout becomes a
// missing date.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"salesreport/internal/schema"
	"salesreport/internal/transformer/builtin"
)

var (
	// ErrMissingColumn is returned when the header lacks an expected column.
	ErrMissingColumn = errors.New("missing required column")

	// ErrRowWidth is returned when a data row has a different number of fields
	// than the header.
	ErrRowWidth = errors.New("incorrect number of fields")
)

// Options configures the sales reader. Zero values select the defaults.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace trims leading/trailing white space from each cell.
	TrimSpace bool

	// HeaderMap renames source headers to canonical column names before
	// matching, e.g. {"Weekly Sales": "Weekly_Sales"}.
	HeaderMap map[string]string

	// Layout is the Go layout of the Date column; schema.DateLayout when empty.
	Layout string
}

// Stats summarizes a read.
type Stats struct {
	Rows         int // data rows read
	MissingDates int // rows whose date did not parse
}

// logEveryN controls the reader progress heartbeat.
const logEveryN = 50_000

// ReadSales reads every data row of src into a schema.Record.
//
// The first line must be a header containing every column of schema.Columns
// (matched case-insensitively, after HeaderMap renames); extra columns are
// ignored. Numeric cells must parse; the error names the line and column and
// wraps builtin.ErrInvalidNumber. Dates that do not parse under Layout are
// stored as nil and counted in Stats.MissingDates.
func ReadSales(ctx context.Context, src io.Reader, opt Options) ([]schema.Record, Stats, error) {
	var st Stats

	cr := csv.NewReader(src)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.ReuseRecord = true
	cr.FieldsPerRecord = -1 // width is checked below so the error can name the line

	layout := opt.Layout
	if layout == "" {
		layout = schema.DateLayout
	}
	coerce := builtin.Coerce{Types: schema.ColumnTypes, Layout: layout}

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, st, fmt.Errorf("read csv header: empty input")
		}
		return nil, st, fmt.Errorf("read csv header: %w", err)
	}
	width := len(header)

	idx, missing := columnIndex(header, schema.Columns, opt.HeaderMap)
	if len(missing) > 0 {
		return nil, st, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	var out []schema.Record
	for {
		select {
		case <-ctx.Done():
			return nil, st, ctx.Err()
		default:
		}

		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, st, fmt.Errorf("csv read: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if len(rec) != width {
			return nil, st, fmt.Errorf("line %d: %w: expected %d, got %d", line, ErrRowWidth, width, len(rec))
		}

		r, err := toRecord(rec, idx, coerce, opt.TrimSpace)
		if err != nil {
			return nil, st, fmt.Errorf("line %d: %w", line, err)
		}
		if r.Date == nil {
			st.MissingDates++
		}
		out = append(out, r)
		st.Rows++

		if st.Rows%logEveryN == 0 {
			logrus.Debugf("reader: line=%d rows=%d", line, st.Rows)
		}
	}

	return out, st, nil
}

// toRecord converts one CSV row into a Record using the column positions in
// idx.
func toRecord(rec []string, idx map[string]int, c builtin.Coerce, trim bool) (schema.Record, error) {
	var r schema.Record

	cell := func(col string) (any, error) {
		v := rec[idx[col]]
		if trim {
			v = strings.TrimSpace(v)
		}
		out, err := c.Value(col, v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col, err)
		}
		return out, nil
	}

	for _, col := range schema.Columns {
		v, err := cell(col)
		if err != nil {
			return r, err
		}
		switch col {
		case schema.ColStore:
			r.Store = v.(int)
		case schema.ColDate:
			r.Date = v.(*time.Time)
		case schema.ColWeeklySales:
			r.WeeklySales = v.(float64)
		case schema.ColHolidayFlag:
			r.HolidayFlag = v.(int)
		case schema.ColTemperature:
			r.Temperature = v.(float64)
		case schema.ColFuelPrice:
			r.FuelPrice = v.(float64)
		case schema.ColCPI:
			r.CPI = v.(float64)
		case schema.ColUnemployment:
			r.Unemployment = v.(float64)
		}
	}
	return r, nil
}
