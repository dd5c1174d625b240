package table

import (
	"fmt"

	"macrodash/internal/catalog"
	"macrodash/internal/series"
)

// AddPercentChanges appends the MoM and YoY columns of every catalog
// derived indicator whose base column exists. The table must already be
// sorted and sampled at the cadence the lags assume. Derived columns
// already present are recomputed.
func AddPercentChanges(t *Table, cat *catalog.Catalog) (*Table, []ColumnWarning) {
	var warnings []ColumnWarning
	out := t
	for _, d := range cat.Derived() {
		base, ok := out.Column(d.Base)
		if !ok {
			warnings = append(warnings, ColumnWarning{
				Column:  d.Name,
				Message: fmt.Sprintf("base column %q not found in sheet %q", d.Base, t.name),
			})
			continue
		}
		next, err := out.WithColumn(d.Name, series.PercentChange(base, d.Kind.Lag()))
		if err != nil {
			warnings = append(warnings, ColumnWarning{Column: d.Name, Message: err.Error()})
			continue
		}
		out = next
	}
	return out, warnings
}

// AddTrends appends a trailing mean of window n for each named column.
func AddTrends(t *Table, n int, cols ...string) (*Table, error) {
	out := t
	for _, col := range cols {
		v, ok := out.Column(col)
		if !ok {
			return nil, fmt.Errorf("trend: %w: %q", ErrColumnNotFound, col)
		}
		var err error
		out, err = out.WithColumn(catalog.TrendName(col), series.RollingMean(v, n))
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Rebased drops rows missing any named column, then rebases each to 100 at
// the first remaining row. The result holds only the rebased columns.
func Rebased(t *Table, cols ...string) (*Table, error) {
	clean, err := t.SortByDate().DropMissing(cols...)
	if err != nil {
		return nil, fmt.Errorf("rebase: %w", err)
	}

	names := make([]string, 0, len(cols))
	values := make(map[string][]float64, len(cols))
	for _, col := range cols {
		v, _ := clean.Column(col)
		r, err := series.Rebase(v)
		if err != nil {
			return nil, fmt.Errorf("rebase %q: %w", col, err)
		}
		name := catalog.RebasedName(col)
		names = append(names, name)
		values[name] = r
	}
	return New(t.name, clean.dates, names, values)
}

// Monthly builds the frame the analysis runs on: month-start rows in date
// order with percent-change columns added.
func Monthly(t *Table, cat *catalog.Catalog) (*Table, []ColumnWarning) {
	return AddPercentChanges(t.SortByDate().MonthStarts(), cat)
}
