package charts

import (
	"errors"
	"fmt"
	"io"
	"time"

	"macrodash/internal/analysis"
	"macrodash/internal/catalog"
	"macrodash/internal/series"
	"macrodash/internal/table"
)

// DefaultRollingWindow is the window, in rows, of rolling statistics.
const DefaultRollingWindow = 12

var rebasedLabel = fmt.Sprintf("Index (first common month = %.0f)", series.RebaseBase)

// LinesFrom builds one Line per present column of t. Missing columns are
// skipped and reported.
func LinesFrom(t *table.Table, cols ...string) ([]Line, []string) {
	var (
		lines   []Line
		missing []string
	)
	for i, col := range cols {
		values, ok := t.Column(col)
		if !ok {
			missing = append(missing, col)
			continue
		}
		lines = append(lines, Line{Name: col, Dates: t.Dates(), Values: values, Color: i})
	}
	return lines, missing
}

// Dual renders left on the primary axis and right on the secondary axis.
func Dual(w io.Writer, opts Options, left, right []Line) error {
	all := make([]Line, 0, len(left)+len(right))
	all = append(all, left...)
	for i, l := range right {
		l.Secondary = true
		l.Color = len(left) + i
		all = append(all, l)
	}
	return Lines(w, opts, all...)
}

// RebasedLines renders cols rebased to 100 at the first row where all of
// them are present.
func RebasedLines(w io.Writer, opts Options, t *table.Table, cols ...string) error {
	rebased, err := table.Rebased(t, cols...)
	if errors.Is(err, table.ErrColumnNotFound) || errors.Is(err, series.ErrEmptySeries) {
		return ErrNotEnoughData
	}
	if err != nil {
		return err
	}
	if opts.YLabel == "" {
		opts.YLabel = rebasedLabel
	}
	lines, _ := LinesFrom(rebased, rebased.Columns()...)
	return Lines(w, opts, lines...)
}

// TrendLines renders a series with its OLS time trend as a dashed line.
func TrendLines(w io.Writer, opts Options, name string, dates []time.Time, values []float64) error {
	xs, ys := dense(dates, values)
	if len(xs) < 2 {
		return ErrNotEnoughData
	}
	trend, err := analysis.TimeTrend(ys)
	if err != nil {
		return fmt.Errorf("trend of %s: %w", name, err)
	}
	return Lines(w, opts,
		Line{Name: name, Dates: xs, Values: ys},
		Line{Name: catalog.TrendName(name), Dates: xs, Values: trend.Fitted, Color: 1, Dashed: true},
	)
}

// RollingCorrelationLines renders the rolling correlation of two columns.
func RollingCorrelationLines(w io.Writer, opts Options, t *table.Table, a, b string, window int) error {
	x, okA := t.Column(a)
	y, okB := t.Column(b)
	if !okA || !okB {
		return ErrNotEnoughData
	}
	if window <= 0 {
		window = DefaultRollingWindow
	}
	corr, err := series.RollingCorrelation(x, y, window)
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%d-month correlation: %s vs %s", window, a, b)
	return Lines(w, opts, Line{Name: name, Dates: t.Dates(), Values: corr})
}

// CorrelationHeatmap renders the pairwise correlation matrix of cols.
func CorrelationHeatmap(w io.Writer, opts Options, t *table.Table, cols ...string) error {
	m, err := analysis.Correlations(t, cols...)
	if errors.Is(err, table.ErrColumnNotFound) {
		return ErrNotEnoughData
	}
	if err != nil {
		return err
	}
	return Heatmap(w, opts.Title, m.Variables, m.Values, opts.Width, opts.Height)
}
