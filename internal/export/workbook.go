// Package export writes the aggregate results to an .xlsx workbook.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"salesreport/internal/schema"
)

// Sheet names of the exported workbook.
const (
	SheetStores = "Total Sales Per Store"
	SheetTrend  = "Sales Trend"
)

// WriteWorkbook writes a workbook with exactly two sheets to path, replacing
// any existing file. Each sheet starts with its header row; an empty result
// set produces a header-only sheet. Dates are written as YYYY-MM-DD text.
func WriteWorkbook(path string, stores []schema.StoreTotal, days []schema.DateTotal) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStores); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(SheetTrend); err != nil {
		return fmt.Errorf("export: add sheet: %w", err)
	}

	storeRows := make([][]any, 0, len(stores))
	for _, s := range stores {
		storeRows = append(storeRows, []any{s.Store, s.TotalSales})
	}
	if err := writeSheet(f, SheetStores, []any{"Store", "TotalSales"}, storeRows); err != nil {
		return err
	}

	dayRows := make([][]any, 0, len(days))
	for _, d := range days {
		dayRows = append(dayRows, []any{d.Date.Format(schema.StoredDateLayout), d.DailySales})
	}
	if err := writeSheet(f, SheetTrend, []any{"Date", "DailySales"}, dayRows); err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: create dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("export: save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("export: %s header: %w", sheet, err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("export: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
