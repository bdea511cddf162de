// Package chart renders the aggregate results as PNG charts.
package chart

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"salesreport/internal/schema"
)

// File names written into the charts directory.
const (
	StoreBarFile   = "total_sales_per_store.png"
	SalesTrendFile = "sales_trend.png"
)

// StoreBarPlot builds a bar chart with one bar per store, labeled by store id.
func StoreBarPlot(stores []schema.StoreTotal) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Total Sales Per Store"
	p.X.Label.Text = "Store"
	p.Y.Label.Text = "Total Sales"

	if len(stores) == 0 {
		return p, nil
	}

	vals := make(plotter.Values, len(stores))
	names := make([]string, len(stores))
	for i, s := range stores {
		vals[i] = s.TotalSales
		names[i] = strconv.Itoa(s.Store)
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(8))
	if err != nil {
		return nil, fmt.Errorf("chart: bars: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(names...)
	return p, nil
}

// SalesTrendPlot builds a line chart of daily sales with point markers and
// date tick labels rotated 45 degrees.
func SalesTrendPlot(days []schema.DateTotal) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Sales Trend Over Time"
	p.X.Label.Text = "Date"
	p.Y.Label.Text = "Sales"
	p.X.Tick.Marker = plot.TimeTicks{Format: schema.StoredDateLayout}
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	p.Add(plotter.NewGrid())

	if len(days) == 0 {
		return p, nil
	}

	xys := make(plotter.XYs, len(days))
	for i, d := range days {
		xys[i].X = float64(d.Date.Unix())
		xys[i].Y = d.DailySales
	}

	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("chart: line: %w", err)
	}
	p.Add(line, points)
	return p, nil
}

// StoreBar renders the per-store bar chart to path (8x5 inch PNG).
func StoreBar(stores []schema.StoreTotal, path string) error {
	p, err := StoreBarPlot(stores)
	if err != nil {
		return err
	}
	return save(p, 8*vg.Inch, 5*vg.Inch, path)
}

// SalesTrend renders the daily sales line chart to path (10x5 inch PNG).
func SalesTrend(days []schema.DateTotal, path string) error {
	p, err := SalesTrendPlot(days)
	if err != nil {
		return err
	}
	return save(p, 10*vg.Inch, 5*vg.Inch, path)
}

func save(p *plot.Plot, w, h vg.Length, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("chart: create dir: %w", err)
	}
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("chart: save %s: %w", path, err)
	}
	return nil
}
