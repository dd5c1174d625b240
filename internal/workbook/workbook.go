package workbook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"macrodash/internal/catalog"
	"macrodash/internal/table"
)

// DefaultSheet is preferred for the table view when present.
const DefaultSheet = "Monthly"

var (
	// ErrWorkbookNotFound is returned when the source file does not exist.
	ErrWorkbookNotFound = errors.New("workbook not found")
	// ErrNoSheets is returned when no sheet could be read.
	ErrNoSheets = errors.New("workbook has no readable sheets")
)

// Source produces a workbook snapshot.
type Source interface {
	Load(ctx context.Context) (*Workbook, error)
	String() string
}

// Workbook is an immutable set of sheets read from one source.
type Workbook struct {
	source   string
	sheets   []*table.Table
	byName   map[string]*table.Table
	warnings []string
	loadedAt time.Time
}

// New assembles a workbook. Sheets keep the given order.
func New(source string, sheets []*table.Table, warnings []string) *Workbook {
	wb := &Workbook{
		source:   source,
		sheets:   append([]*table.Table(nil), sheets...),
		byName:   make(map[string]*table.Table, len(sheets)),
		warnings: append([]string(nil), warnings...),
		loadedAt: time.Now().UTC(),
	}
	for _, s := range wb.sheets {
		wb.byName[catalog.Normalize(s.Name())] = s
	}
	return wb
}

// Empty returns a workbook without sheets, carrying the given warnings.
func Empty(source string, warnings ...string) *Workbook {
	return New(source, nil, warnings)
}

// Source describes where the workbook came from.
func (w *Workbook) Source() string { return w.source }

// LoadedAt returns when the snapshot was assembled.
func (w *Workbook) LoadedAt() time.Time { return w.loadedAt }

// IsEmpty reports whether the workbook has no sheets.
func (w *Workbook) IsEmpty() bool { return len(w.sheets) == 0 }

// Warnings returns the problems met while reading.
func (w *Workbook) Warnings() []string {
	return append([]string(nil), w.warnings...)
}

// SheetNames returns the sheet names in source order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.sheets))
	for i, s := range w.sheets {
		names[i] = s.Name()
	}
	return names
}

// Sheets returns the sheets in source order.
func (w *Workbook) Sheets() []*table.Table {
	return append([]*table.Table(nil), w.sheets...)
}

// Sheet looks a sheet up by name, ignoring case and surrounding space.
func (w *Workbook) Sheet(name string) (*table.Table, bool) {
	s, ok := w.byName[catalog.Normalize(name)]
	return s, ok
}

// Frequency returns the sheet holding indicators of frequency f.
func (w *Workbook) Frequency(f catalog.Frequency) (*table.Table, bool) {
	return w.Sheet(f.SheetName())
}

// DefaultSheet returns the Monthly sheet name when present, else the
// first sheet, else "".
func (w *Workbook) DefaultSheet() string {
	if s, ok := w.Sheet(DefaultSheet); ok {
		return s.Name()
	}
	if len(w.sheets) > 0 {
		return w.sheets[0].Name()
	}
	return ""
}

// Merged outer-joins every sheet on date.
func (w *Workbook) Merged() *table.Table {
	return table.Merge("Merged", w.sheets...)
}

// Canonicalize renames indicator columns headed by a FRED code or a
// variant spelling to their catalog name. Unknown headers are kept.
func (w *Workbook) Canonicalize(cat *catalog.Catalog) *Workbook {
	sheets := make([]*table.Table, 0, len(w.sheets))
	warnings := w.Warnings()
	for _, s := range w.sheets {
		renamed, ws := canonicalColumns(s, cat)
		sheets = append(sheets, renamed)
		warnings = append(warnings, ws...)
	}
	out := New(w.source, sheets, warnings)
	out.loadedAt = w.loadedAt
	return out
}

func canonicalColumns(s *table.Table, cat *catalog.Catalog) (*table.Table, []string) {
	var warnings []string
	cols := s.Columns()
	names := make([]string, 0, len(cols))
	values := make(map[string][]float64, len(cols))
	for _, col := range cols {
		name := cat.Resolve(col)
		if _, dup := values[name]; dup {
			warnings = append(warnings, fmt.Sprintf("sheet %s: column %q duplicates %q; ignored", s.Name(), col, name))
			continue
		}
		v, _ := s.Column(col)
		names = append(names, name)
		values[name] = v
	}
	out, err := table.New(s.Name(), s.Dates(), names, values)
	if err != nil {
		// names are unique and lengths come from s, so New cannot fail
		return s, append(warnings, err.Error())
	}
	return out, warnings
}
