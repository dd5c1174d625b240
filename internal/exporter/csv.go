package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"macrodash/internal/table"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// Options configures CSV writing.
type Options struct {
	BOM        bool   // UTF-8 byte order mark for Excel
	DateLayout string // defaults to DateLayout
	Precision  int    // decimals; negative keeps full precision
}

// DefaultOptions writes full precision with a BOM.
func DefaultOptions() Options {
	return Options{BOM: true, Precision: -1}
}

// WriteCSV writes t with a leading Date column followed by its columns in
// display order.
func WriteCSV(w io.Writer, t *table.Table, opts Options) error {
	if opts.BOM {
		if _, err := w.Write(bom); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	cols := t.Columns()
	if err := cw.Write(append([]string{table.DateColumn}, cols...)); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	data := make([][]float64, len(cols))
	for j, col := range cols {
		data[j], _ = t.Column(col)
	}
	record := make([]string, len(cols)+1)
	for i, d := range t.Dates() {
		record[0] = formatDate(d, opts.DateLayout)
		for j := range cols {
			record[j+1] = formatFloat(data[j][i], opts.Precision)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Writer exports tables under a base directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, logger: logger.With(slog.String("component", "exporter"))}
}

// Dir returns the base directory.
func (w *Writer) Dir() string { return w.dir }

// WriteCSVFile writes t to name, relative to the base directory unless
// absolute, and returns the full path.
func (w *Writer) WriteCSVFile(name string, t *table.Table, opts Options) (string, error) {
	return w.create(name, func(f io.Writer) error { return WriteCSV(f, t, opts) },
		slog.String("table", t.Name()), slog.Int("rows", t.Len()))
}

// WriteXLSXFile writes tables as one workbook to name and returns the
// full path.
func (w *Writer) WriteXLSXFile(name string, tables ...*table.Table) (string, error) {
	return w.create(name, func(f io.Writer) error { return WriteXLSX(f, tables...) },
		slog.Int("sheets", len(tables)))
}

func (w *Writer) create(name string, write func(io.Writer) error, attrs ...any) (path string, err error) {
	path = w.resolvePath(name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()

	if err := write(f); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	w.logger.Info("exported file", append([]any{slog.String("path", path)}, attrs...)...)
	return path, nil
}

func (w *Writer) resolvePath(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(w.dir, name)
}
