// Package schema holds the sales domain model shared by the reader, the
// storage backends and the report layer.
package schema

import "time"

const (
	// DateLayout is the layout of the Date column in the source CSV
	// (DD-MM-YYYY). Day and month take one or two digits.
	DateLayout = "2-1-2006"

	// StoredDateLayout is the TEXT form a date takes in the Sales table and in
	// the exported workbook.
	StoredDateLayout = "2006-01-02"

	// Table is the default name of the sales table.
	Table = "Sales"
)

// Column names, shared by the CSV header and the Sales table.
const (
	ColStore        = "Store"
	ColDate         = "Date"
	ColWeeklySales  = "Weekly_Sales"
	ColHolidayFlag  = "Holiday_Flag"
	ColTemperature  = "Temperature"
	ColFuelPrice    = "Fuel_Price"
	ColCPI          = "CPI"
	ColUnemployment = "Unemployment"
)

// Columns is the ordered column list used for ingestion and bulk inserts.
var Columns = []string{
	ColStore,
	ColDate,
	ColWeeklySales,
	ColHolidayFlag,
	ColTemperature,
	ColFuelPrice,
	ColCPI,
	ColUnemployment,
}

// ColumnTypes maps each column to its logical type (int, date, float). The
// coerce transform and the DDL builders both read it.
var ColumnTypes = map[string]string{
	ColStore:        "int",
	ColDate:         "date",
	ColWeeklySales:  "float",
	ColHolidayFlag:  "int",
	ColTemperature:  "float",
	ColFuelPrice:    "float",
	ColCPI:          "float",
	ColUnemployment: "float",
}

// Record is one row of the source CSV: one store's sales for one week.
type Record struct {
	Store        int        `db:"Store"`
	Date         *time.Time `db:"Date"` // nil when the source value did not parse
	WeeklySales  float64    `db:"Weekly_Sales"`
	HolidayFlag  int        `db:"Holiday_Flag"`
	Temperature  float64    `db:"Temperature"`
	FuelPrice    float64    `db:"Fuel_Price"`
	CPI          float64    `db:"CPI"`
	Unemployment float64    `db:"Unemployment"`
}

// Values returns the record aligned to Columns. A missing date is returned as
// nil so the backend stores NULL.
func (r Record) Values() []any {
	var date any
	if r.Date != nil {
		date = r.Date.Format(StoredDateLayout)
	}
	return []any{
		r.Store,
		date,
		r.WeeklySales,
		r.HolidayFlag,
		r.Temperature,
		r.FuelPrice,
		r.CPI,
		r.Unemployment,
	}
}

// StoreTotal is one row of the per-store aggregate.
type StoreTotal struct {
	Store      int
	TotalSales float64
}

// DateTotal is one row of the per-date aggregate.
type DateTotal struct {
	Date       time.Time
	DailySales float64
}
