package charts

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"macrodash/internal/series"
)

// Default canvas size in pixels.
const (
	DefaultWidth  = 1000
	DefaultHeight = 500
)

// ErrNotEnoughData is returned when no series has two plottable points.
var ErrNotEnoughData = errors.New("not enough data to plot; every series needs at least two points")

// dark2 is the qualitative palette used for series colors.
var dark2 = []drawing.Color{
	drawing.ColorFromHex("1b9e77"),
	drawing.ColorFromHex("d95f02"),
	drawing.ColorFromHex("7570b3"),
	drawing.ColorFromHex("e7298a"),
	drawing.ColorFromHex("66a61e"),
	drawing.ColorFromHex("e6ab02"),
	drawing.ColorFromHex("a6761d"),
	drawing.ColorFromHex("666666"),
}

// PaletteColor returns the i-th palette color, wrapping around.
func PaletteColor(i int) drawing.Color {
	if i < 0 {
		i = -i
	}
	return dark2[i%len(dark2)]
}

// Line is one plotted series. Missing values are dropped point by point.
type Line struct {
	Name      string
	Dates     []time.Time
	Values    []float64
	Color     int
	Secondary bool
	Dashed    bool
}

// Options configures a chart canvas.
type Options struct {
	Title      string
	XLabel     string
	YLabel     string
	Y2Label    string
	Width      int
	Height     int
	DateFormat string
}

func (o Options) size() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Lines renders a time-series line chart as PNG.
func Lines(w io.Writer, opts Options, lines ...Line) error {
	ch, err := lineChart(opts, lines)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return fmt.Errorf("failed to render %q: %w", opts.Title, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func lineChart(opts Options, lines []Line) (*chart.Chart, error) {
	var (
		plotted      []chart.TimeSeries
		primary      bounds
		secondary    bounds
		hasSecondary bool
	)
	for _, l := range lines {
		xs, ys := dense(l.Dates, l.Values)
		if len(xs) < 2 {
			continue
		}

		style := chart.Style{StrokeColor: PaletteColor(l.Color), StrokeWidth: 2}
		if l.Dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		ts := chart.TimeSeries{Name: l.Name, XValues: xs, YValues: ys, Style: style}
		if l.Secondary {
			ts.YAxis = chart.YAxisSecondary
			hasSecondary = true
			secondary.add(ys)
		} else {
			primary.add(ys)
		}
		plotted = append(plotted, ts)
	}
	if len(plotted) == 0 {
		return nil, ErrNotEnoughData
	}
	// go-chart cannot size an empty primary axis; a lone secondary side
	// moves onto it.
	if !primary.set {
		for i := range plotted {
			plotted[i].YAxis = chart.YAxisPrimary
		}
		primary, secondary, hasSecondary = secondary, bounds{}, false
		if opts.Y2Label != "" {
			opts.YLabel = opts.Y2Label
		}
	}
	rendered := make([]chart.Series, len(plotted))
	for i := range plotted {
		rendered[i] = plotted[i]
	}

	format := opts.DateFormat
	if format == "" {
		format = "2006"
	}
	width, height := opts.size()
	ch := &chart.Chart{
		Title:      opts.Title,
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           opts.XLabel,
			ValueFormatter: chart.TimeValueFormatterWithFormat(format),
		},
		YAxis:  chart.YAxis{Name: opts.YLabel, Range: primary.flatRange()},
		Series: rendered,
	}
	if hasSecondary {
		ch.YAxisSecondary = chart.YAxis{Name: opts.Y2Label, Range: secondary.flatRange()}
	}
	ch.Elements = []chart.Renderable{chart.LegendLeft(ch)}
	return ch, nil
}

// dense drops points where the value is missing.
func dense(dates []time.Time, values []float64) ([]time.Time, []float64) {
	n := len(dates)
	if len(values) < n {
		n = len(values)
	}
	xs := make([]time.Time, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if series.Missing(values[i]) {
			continue
		}
		xs = append(xs, dates[i])
		ys = append(ys, values[i])
	}
	return xs, ys
}

type bounds struct {
	min, max float64
	set      bool
}

func (b *bounds) add(values []float64) {
	for _, v := range values {
		if !b.set {
			b.min, b.max, b.set = v, v, true
			continue
		}
		b.min = math.Min(b.min, v)
		b.max = math.Max(b.max, v)
	}
}

// flatRange pads a zero-height range, which go-chart refuses to draw.
// Nil leaves the range to go-chart.
func (b bounds) flatRange() chart.Range {
	if !b.set || b.max > b.min {
		return nil
	}
	pad := math.Max(math.Abs(b.min)*0.05, 1)
	return &chart.ContinuousRange{Min: b.min - pad, Max: b.max + pad}
}
