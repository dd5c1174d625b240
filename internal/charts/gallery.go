package charts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"macrodash/internal/catalog"
	"macrodash/internal/table"
)

// Frames is the data a gallery chart draws from. Merged holds every sheet
// joined on date and Monthly the month-start analysis frame. Charts are cut
// to [Start, End] unless they declare their own window.
type Frames struct {
	Merged  *table.Table
	Monthly *table.Table
	Start   time.Time
	End     time.Time
}

func (f Frames) merged() *table.Table  { return window(f.Merged, f.Start, f.End) }
func (f Frames) monthly() *table.Table { return window(f.Monthly, f.Start, f.End) }

func window(t *table.Table, start, end time.Time) *table.Table {
	if t == nil {
		return table.Empty("")
	}
	return t.FilterRange(start, end)
}

// GridStart is the first date of the production grid.
var GridStart = time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC)

// Indicator names the gallery draws.
const (
	unemployment = "Unemployment Rate"
	sp500        = "S&P 500"
	cpi          = "CPI"
	coreCPI      = "Core CPI"
	pce          = "PCE"
	corePCE      = "Core PCE"
	indpro       = "Industrial Production"
	capacity     = "Capacity Utilization"
	durables     = "Durable Goods Orders"
	ppi          = "Producer Price Index"
	fedFunds     = "Federal Funds Rate"
)

var (
	production = []string{indpro, capacity, durables, ppi}
	yoyRates   = []string{
		catalog.DerivedName(cpi, catalog.YoY),
		catalog.DerivedName(coreCPI, catalog.YoY),
		catalog.DerivedName(pce, catalog.YoY),
		catalog.DerivedName(corePCE, catalog.YoY),
	}
)

// Chart is one named entry of the gallery.
type Chart struct {
	Name  string `json:"name"`
	Title string `json:"title"`

	draw func(w io.Writer, f Frames, size Options) error
}

// ErrUnknownChart is returned for a name that is not in the gallery.
var ErrUnknownChart = errors.New("unknown chart")

var gallery = []Chart{
	{Name: "unemployment", Title: "Unemployment Rate", draw: single(unemployment, "Percent", false)},
	{Name: "sp500", Title: "S&P 500", draw: single(sp500, "Index", true)},
	{Name: "sp500-unemployment", Title: "S&P 500 vs Unemployment Rate", draw: func(w io.Writer, f Frames, o Options) error {
		t := f.merged()
		left, _ := LinesFrom(t, sp500)
		right, _ := LinesFrom(t, unemployment)
		o.YLabel, o.Y2Label = sp500, "Unemployment Rate (%)"
		return Dual(w, o, left, right)
	}},
	{Name: "inflation-index", Title: "Price Indexes", draw: several("Index", cpi, coreCPI, pce, corePCE)},
	{Name: "inflation-rates", Title: "Headline Inflation (YoY %)", draw: several("Percent", yoyRates[0], yoyRates[2])},
	{Name: "core-inflation-rates", Title: "Core Inflation (YoY %)", draw: several("Percent", yoyRates[1], yoyRates[3])},
	{Name: "industrial-production", Title: "Industrial Production", draw: single(indpro, "Index", false)},
	{Name: "capacity-utilization", Title: "Capacity Utilization", draw: single(capacity, "Percent", false)},
	{Name: "durable-goods", Title: "Durable Goods Orders", draw: single(durables, "Millions of dollars", false)},
	{Name: "ppi", Title: "Producer Price Index", draw: single(ppi, "Index", false)},
	{Name: "production-dual", Title: "Industrial Production vs Capacity Utilization", draw: func(w io.Writer, f Frames, o Options) error {
		t := f.monthly()
		left, _ := LinesFrom(t, indpro)
		right, _ := LinesFrom(t, capacity)
		o.YLabel, o.Y2Label = "Index", "Percent"
		return Dual(w, o, left, right)
	}},
	{Name: "production-grid", Title: "Production Indicators since 2016", draw: func(w io.Writer, f Frames, o Options) error {
		t := window(f.Monthly, GridStart, f.End)
		var panels [4]Panel
		for i, col := range production {
			lines, _ := LinesFrom(t, col)
			for j := range lines {
				lines[j].Color = i
			}
			panels[i] = Panel{Title: col, Lines: lines}
		}
		return Grid(w, o.Title, panels, o.Width, o.Height)
	}},
	{Name: "production-rebased", Title: "Production Indicators (Rebased)", draw: func(w io.Writer, f Frames, o Options) error {
		return RebasedLines(w, o, f.monthly(), production...)
	}},
	{Name: "inflation-trends", Title: "Inflation with 12-Month Trend", draw: func(w io.Writer, f Frames, o Options) error {
		cols := []string{yoyRates[0], yoyRates[1]}
		t, err := table.AddTrends(f.monthly(), DefaultRollingWindow, cols...)
		if errors.Is(err, table.ErrColumnNotFound) {
			return ErrNotEnoughData
		}
		if err != nil {
			return err
		}
		var lines []Line
		for i, col := range cols {
			raw, _ := LinesFrom(t, col)
			trend, _ := LinesFrom(t, catalog.TrendName(col))
			for j := range trend {
				trend[j].Dashed = true
			}
			for _, l := range append(raw, trend...) {
				l.Color = i
				lines = append(lines, l)
			}
		}
		o.YLabel = "Percent"
		return Lines(w, o, lines...)
	}},
	{Name: "inflation-correlation", Title: "Correlation of Inflation Measures", draw: func(w io.Writer, f Frames, o Options) error {
		o.Width, o.Height = 0, 0
		return CorrelationHeatmap(w, o, f.monthly(), yoyRates...)
	}},
	{Name: "cpi-trend", Title: "CPI with Linear Trend", draw: func(w io.Writer, f Frames, o Options) error {
		t := f.monthly()
		v, ok := t.Column(cpi)
		if !ok {
			return ErrNotEnoughData
		}
		o.YLabel = "Index"
		return TrendLines(w, o, cpi, t.Dates(), v)
	}},
	{Name: "core-rolling-correlation", Title: "Rolling Correlation of Core CPI and Core PCE", draw: func(w io.Writer, f Frames, o Options) error {
		return RollingCorrelationLines(w, o, f.monthly(), yoyRates[1], yoyRates[3], DefaultRollingWindow)
	}},
	{Name: "macro-overview", Title: "Macro Overview", draw: func(w io.Writer, f Frames, o Options) error {
		t := f.monthly()
		var panels [4]Panel
		for i, col := range []string{unemployment, yoyRates[0], fedFunds, indpro} {
			lines, _ := LinesFrom(t, col)
			for j := range lines {
				lines[j].Color = i
			}
			panels[i] = Panel{Title: col, Lines: lines}
		}
		return Grid(w, o.Title, panels, o.Width, o.Height)
	}},
}

func single(col, unit string, daily bool) func(io.Writer, Frames, Options) error {
	return func(w io.Writer, f Frames, o Options) error {
		t := f.monthly()
		if daily {
			t = f.merged()
		}
		lines, _ := LinesFrom(t, col)
		o.YLabel = unit
		return Lines(w, o, lines...)
	}
}

func several(unit string, cols ...string) func(io.Writer, Frames, Options) error {
	return func(w io.Writer, f Frames, o Options) error {
		lines, _ := LinesFrom(f.monthly(), cols...)
		o.YLabel = unit
		return Lines(w, o, lines...)
	}
}

// Gallery lists the charts in display order.
func Gallery() []Chart {
	return append([]Chart(nil), gallery...)
}

// Lookup finds a gallery chart by name.
func Lookup(name string) (Chart, bool) {
	for _, c := range gallery {
		if c.Name == name {
			return c, true
		}
	}
	return Chart{}, false
}

// Render draws the named gallery chart as PNG.
func Render(w io.Writer, name string, f Frames, width, height int) error {
	c, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	return c.Render(w, f, width, height)
}

// Render draws the chart as PNG.
func (c Chart) Render(w io.Writer, f Frames, width, height int) error {
	return c.draw(w, f, Options{Title: c.Title, Width: width, Height: height})
}

// Result reports the outcome of rendering one chart to disk.
type Result struct {
	Name string
	Path string
	Err  error
}

// RenderAll writes every gallery chart to dir as <name>.png, at most
// workers at a time. Charts without data are reported in their Result and
// do not stop the others; other failures cancel the run.
func RenderAll(ctx context.Context, dir string, f Frames, width, height, workers int) ([]Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if workers <= 0 {
		workers = 4
	}

	results := make([]Result, len(gallery))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, c := range gallery {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res := Result{Name: c.Name}
			var buf bytes.Buffer
			switch err := c.Render(&buf, f, width, height); {
			case errors.Is(err, ErrNotEnoughData):
				res.Err = err
			case err != nil:
				return fmt.Errorf("%s: %w", c.Name, err)
			default:
				res.Path = filepath.Join(dir, c.Name+".png")
				if err := os.WriteFile(res.Path, buf.Bytes(), 0o644); err != nil {
					return fmt.Errorf("%s: %w", c.Name, err)
				}
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
