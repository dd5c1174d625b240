// Package dataset assembles the in-memory snapshot the dashboard serves:
// the workbook as loaded, the merged frame across sheets and the monthly
// analysis frame with derived columns.
package dataset

import (
	"errors"
	"fmt"
	"time"

	"macrodash/internal/analysis"
	"macrodash/internal/catalog"
	"macrodash/internal/charts"
	"macrodash/internal/table"
	"macrodash/internal/workbook"
)

// MergedSheet names the frame that joins every sheet on date.
const MergedSheet = "Merged"

// Default analysis window.
var (
	DefaultStart = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultEnd   = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// ErrSheetNotFound is returned for a sheet the workbook does not have.
var ErrSheetNotFound = errors.New("sheet not found")

// Snapshot is an immutable view of one workbook load.
type Snapshot struct {
	wb       *workbook.Workbook
	cat      *catalog.Catalog
	merged   *table.Table
	monthly  *table.Table
	warnings []string
}

// Build canonicalizes wb against cat and derives the merged and monthly
// frames. Problems deriving columns become warnings.
func Build(wb *workbook.Workbook, cat *catalog.Catalog) *Snapshot {
	wb = wb.Canonicalize(cat)
	s := &Snapshot{wb: wb, cat: cat, warnings: wb.Warnings()}

	s.merged = wb.Merged()
	if wb.IsEmpty() {
		s.monthly = table.Empty("Monthly")
		return s
	}

	monthly, colWarnings := table.Monthly(s.merged, cat)
	for _, w := range colWarnings {
		s.warnings = append(s.warnings, w.String())
	}
	prepared, err := analysis.PrepareMonthly(monthly)
	if err != nil {
		s.warnings = append(s.warnings, fmt.Sprintf("monthly frame: %v", err))
		prepared = monthly
	}
	s.monthly = prepared.Rename("Monthly")
	return s
}

// Workbook returns the canonicalized workbook.
func (s *Snapshot) Workbook() *workbook.Workbook { return s.wb }

// Catalog returns the catalog the snapshot was built against.
func (s *Snapshot) Catalog() *catalog.Catalog { return s.cat }

// Merged returns every sheet outer-joined on date.
func (s *Snapshot) Merged() *table.Table { return s.merged }

// Monthly returns the month-start frame with MoM, YoY and lag columns.
func (s *Snapshot) Monthly() *table.Table { return s.monthly }

// Warnings lists load and derivation problems.
func (s *Snapshot) Warnings() []string { return append([]string(nil), s.warnings...) }

// IsEmpty reports whether there is no data to show.
func (s *Snapshot) IsEmpty() bool { return s.wb.IsEmpty() }

// LoadedAt returns when the underlying workbook was read.
func (s *Snapshot) LoadedAt() time.Time { return s.wb.LoadedAt() }

// Sheet returns a workbook sheet by name, or the merged frame.
func (s *Snapshot) Sheet(name string) (*table.Table, error) {
	if catalog.Normalize(name) == catalog.Normalize(MergedSheet) {
		return s.merged, nil
	}
	t, ok := s.wb.Sheet(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, name)
	}
	return t, nil
}

// Frequency returns the sheet holding indicators of frequency f.
func (s *Snapshot) Frequency(f catalog.Frequency) (*table.Table, error) {
	t, ok := s.wb.Frequency(f)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, f.SheetName())
	}
	return t, nil
}

// Query selects columns from one frame of the snapshot.
type Query struct {
	Sheet     string            // sheet name; wins over Frequency
	Frequency catalog.Frequency // used when Sheet is empty
	Variables []string          // names, codes or aliases; empty selects all
	Start     time.Time         // zero is open
	End       time.Time         // zero is open
	Derive    bool              // read from the monthly frame, which carries derived columns
}

// Select resolves q against the snapshot. Variables that do not exist in
// the chosen frame are reported per column and omitted.
func (s *Snapshot) Select(q Query) (*table.Table, []table.ColumnWarning, error) {
	src, err := s.source(q)
	if err != nil {
		return nil, nil, err
	}
	src = src.FilterRange(q.Start, q.End)
	if len(q.Variables) == 0 {
		return src, nil, nil
	}

	cols := make([]string, len(q.Variables))
	for i, v := range q.Variables {
		cols[i] = s.cat.Resolve(v)
	}
	out, warnings := src.Select(cols...)
	return out, warnings, nil
}

func (s *Snapshot) source(q Query) (*table.Table, error) {
	switch {
	case q.Derive:
		return s.monthly, nil
	case q.Sheet != "":
		return s.Sheet(q.Sheet)
	case q.Frequency != "":
		return s.Frequency(q.Frequency)
	default:
		return s.Sheet(s.wb.DefaultSheet())
	}
}

// View returns every sheet joined on date with the derived monthly
// columns added, cut to [start, end]. It backs the filtered download.
// Merge keeps the first copy of a column, so the merged frame goes first
// and daily and weekly values survive between month starts.
func (s *Snapshot) View(start, end time.Time) *table.Table {
	return table.Merge("View", s.merged, s.monthly).FilterRange(start, end)
}

// Frames returns the chart inputs for the window [start, end].
func (s *Snapshot) Frames(start, end time.Time) charts.Frames {
	return charts.Frames{Merged: s.merged, Monthly: s.monthly, Start: start, End: end}
}
