// Package table holds the in-memory observation table: rows keyed by date,
// one float64 column per indicator, NaN for a missing cell.
//
// Tables are immutable. Every operation returns a new table and leaves its
// receiver untouched, so a loaded workbook can be shared freely between
// request handlers.
package table

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"macrodash/internal/series"
)

// DateColumn is the header every sheet keys its rows by.
const DateColumn = "Date"

var (
	// ErrColumnNotFound is returned when an operation names an absent column.
	ErrColumnNotFound = errors.New("column not found")
	// ErrLengthMismatch is returned when a column does not match the date index.
	ErrLengthMismatch = errors.New("column length does not match date index")
	// ErrDuplicateColumn is returned when a column name repeats.
	ErrDuplicateColumn = errors.New("duplicate column")
)

// Table is an ordered, date-indexed set of numeric columns.
type Table struct {
	name    string
	dates   []time.Time
	columns []string
	values  map[string][]float64
}

// ColumnWarning describes a requested column that could not be served.
type ColumnWarning struct {
	Column  string `json:"column"`
	Message string `json:"message"`
}

func (w ColumnWarning) String() string {
	return fmt.Sprintf("%s: %s", w.Column, w.Message)
}

// New builds a table from a date index and columns in display order. The
// slices are copied.
func New(name string, dates []time.Time, columns []string, values map[string][]float64) (*Table, error) {
	t := &Table{
		name:    name,
		dates:   append([]time.Time(nil), dates...),
		columns: make([]string, 0, len(columns)),
		values:  make(map[string][]float64, len(columns)),
	}
	for _, col := range columns {
		if _, dup := t.values[col]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col)
		}
		v, ok := values[col]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
		}
		if len(v) != len(dates) {
			return nil, fmt.Errorf("%w: %q has %d values for %d dates", ErrLengthMismatch, col, len(v), len(dates))
		}
		t.columns = append(t.columns, col)
		t.values[col] = append([]float64(nil), v...)
	}
	return t, nil
}

// Empty returns a table with no rows and no columns.
func Empty(name string) *Table {
	return &Table{name: name, values: map[string][]float64{}}
}

// Name returns the table name, usually the sheet it was read from.
func (t *Table) Name() string { return t.name }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.dates) }

// Dates returns a copy of the date index.
func (t *Table) Dates() []time.Time {
	return append([]time.Time(nil), t.dates...)
}

// Columns returns the column names in display order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.columns...)
}

// Has reports whether the table carries the named column.
func (t *Table) Has(col string) bool {
	_, ok := t.values[col]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(col string) ([]float64, bool) {
	v, ok := t.values[col]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), v...), true
}

// Value returns the cell at row i of col, NaN when absent.
func (t *Table) Value(i int, col string) float64 {
	v, ok := t.values[col]
	if !ok || i < 0 || i >= len(v) {
		return math.NaN()
	}
	return v[i]
}

// Bounds returns the first and last date. ok is false for an empty table.
func (t *Table) Bounds() (first, last time.Time, ok bool) {
	if len(t.dates) == 0 {
		return time.Time{}, time.Time{}, false
	}
	return t.dates[0], t.dates[len(t.dates)-1], true
}

// Rename returns the same data under a new name.
func (t *Table) Rename(name string) *Table {
	out := t.keep(allRows(t.Len()), t.columns)
	out.name = name
	return out
}

// FilterRange keeps rows whose date lies in [start, end], both inclusive,
// in their original order. A zero start or end leaves that side open.
func (t *Table) FilterRange(start, end time.Time) *Table {
	rows := make([]int, 0, len(t.dates))
	for i, d := range t.dates {
		if !start.IsZero() && d.Before(start) {
			continue
		}
		if !end.IsZero() && d.After(end) {
			continue
		}
		rows = append(rows, i)
	}
	return t.keep(rows, t.columns)
}

// DropMissing keeps rows where every named column is present. Naming a
// column the table does not have is an error.
func (t *Table) DropMissing(cols ...string) (*Table, error) {
	if missing := t.absent(cols); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}

	rows := make([]int, 0, len(t.dates))
	for i := range t.dates {
		complete := true
		for _, col := range cols {
			if series.Missing(t.values[col][i]) {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, i)
		}
	}
	return t.keep(rows, t.columns), nil
}

// Select keeps the named columns that exist, in the requested order, and
// returns one warning per column that does not.
func (t *Table) Select(cols ...string) (*Table, []ColumnWarning) {
	var (
		present  []string
		warnings []ColumnWarning
		seen     = make(map[string]bool, len(cols))
	)
	for _, col := range cols {
		if seen[col] {
			continue
		}
		seen[col] = true
		if !t.Has(col) {
			warnings = append(warnings, ColumnWarning{
				Column:  col,
				Message: fmt.Sprintf("column %q not found in sheet %q", col, t.name),
			})
			continue
		}
		present = append(present, col)
	}
	return t.keep(allRows(t.Len()), present), warnings
}

// SortByDate returns the rows in ascending date order. Rows sharing a date
// keep their relative order.
func (t *Table) SortByDate() *Table {
	rows := allRows(t.Len())
	sort.SliceStable(rows, func(a, b int) bool {
		return t.dates[rows[a]].Before(t.dates[rows[b]])
	})
	return t.keep(rows, t.columns)
}

// MonthStarts keeps rows dated on the first day of a month.
func (t *Table) MonthStarts() *Table {
	rows := make([]int, 0, len(t.dates))
	for i, d := range t.dates {
		if d.Day() == 1 {
			rows = append(rows, i)
		}
	}
	return t.keep(rows, t.columns)
}

// WithColumn adds or replaces a column. New columns go last.
func (t *Table) WithColumn(name string, values []float64) (*Table, error) {
	if len(values) != len(t.dates) {
		return nil, fmt.Errorf("%w: %q has %d values for %d dates", ErrLengthMismatch, name, len(values), len(t.dates))
	}
	out := t.keep(allRows(t.Len()), t.columns)
	if !out.Has(name) {
		out.columns = append(out.columns, name)
	}
	out.values[name] = append([]float64(nil), values...)
	return out, nil
}

// Shift adds name as col moved k rows later.
func (t *Table) Shift(col string, k int, name string) (*Table, error) {
	v, ok := t.values[col]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, col)
	}
	return t.WithColumn(name, series.Shift(v, k))
}

// Merge outer-joins tables on date. Columns keep the order of first
// appearance; a column name already taken by an earlier table is skipped.
func Merge(name string, tables ...*Table) *Table {
	index := make(map[int64]int)
	var dates []time.Time
	for _, tb := range tables {
		for _, d := range tb.dates {
			key := d.Unix()
			if _, ok := index[key]; ok {
				continue
			}
			index[key] = len(dates)
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(a, b int) bool { return dates[a].Before(dates[b]) })
	for i, d := range dates {
		index[d.Unix()] = i
	}

	out := &Table{name: name, dates: dates, values: make(map[string][]float64)}
	for _, tb := range tables {
		for _, col := range tb.columns {
			if out.Has(col) {
				continue
			}
			merged := series.Undefined(len(dates))
			for i, d := range tb.dates {
				merged[index[d.Unix()]] = tb.values[col][i]
			}
			out.columns = append(out.columns, col)
			out.values[col] = merged
		}
	}
	return out
}

func (t *Table) absent(cols []string) []string {
	var missing []string
	for _, col := range cols {
		if !t.Has(col) {
			missing = append(missing, col)
		}
	}
	return missing
}

func (t *Table) keep(rows []int, cols []string) *Table {
	out := &Table{
		name:    t.name,
		dates:   make([]time.Time, len(rows)),
		columns: append([]string(nil), cols...),
		values:  make(map[string][]float64, len(cols)),
	}
	for j, i := range rows {
		out.dates[j] = t.dates[i]
	}
	for _, col := range cols {
		src := t.values[col]
		dst := make([]float64, len(rows))
		for j, i := range rows {
			dst[j] = src[i]
		}
		out.values[col] = dst
	}
	return out
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
