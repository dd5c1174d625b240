package workbook

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/xuri/excelize/v2"

	"macrodash/internal/table"
)

// FileSource reads a workbook from a local .xlsx file.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a source for path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With(slog.String("component", "workbook"), slog.String("path", path)),
	}
}

func (s *FileSource) String() string { return s.path }

// Path returns the file the source reads.
func (s *FileSource) Path() string { return s.path }

// Load reads every sheet of the file.
func (s *FileSource) Load(ctx context.Context) (*Workbook, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrWorkbookNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to stat workbook: %w", err)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	return readFile(ctx, s.path, f, s.logger)
}

func readFile(ctx context.Context, source string, f *excelize.File, logger *slog.Logger) (*Workbook, error) {
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}

	var (
		sheets   []*table.Table
		warnings []string
	)
	for _, name := range f.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %s: %v", name, err))
			continue
		}
		t, ws, err := parseSheet(name, rows, date1904)
		warnings = append(warnings, ws...)
		if err != nil {
			logger.Warn("Skipping sheet", "sheet", name, "error", err)
			warnings = append(warnings, err.Error())
			continue
		}

		logger.Debug("Sheet loaded", "sheet", name, "rows", t.Len(), "columns", len(t.Columns()))
		sheets = append(sheets, t)
	}

	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSheets, source)
	}

	logger.Info("Workbook loaded", "sheets", len(sheets), "warnings", len(warnings))
	return New(source, sheets, warnings), nil
}
