package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"macrodash/internal/catalog"
	"macrodash/internal/config"
	"macrodash/internal/dataset"
	"macrodash/internal/exporter"
	"macrodash/internal/infrastructure"
	"macrodash/internal/table"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

// SnapshotStore is the part of dataset.Store the services read.
type SnapshotStore interface {
	Current() *dataset.Snapshot
	Load(ctx context.Context) (*dataset.Snapshot, error)
	Loaded() bool
	Source() string
}

// Download kinds
const (
	DownloadWorkbook = "workbook"
	DownloadScript   = "script"
)

// DatasetService serves the catalog and the tables of the current snapshot.
type DatasetService struct {
	store   SnapshotStore
	cfg     config.DataConfig
	metrics *infrastructure.DomainMetrics
	logger  *slog.Logger
}

// NewDatasetService creates a dataset service. metrics may be nil.
func NewDatasetService(store SnapshotStore, cfg config.DataConfig, metrics *infrastructure.DomainMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DatasetService{
		store:   store,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_service")),
	}
}

// Variables returns the variable list: every indicator followed by the
// derived indicators.
func (s *DatasetService) Variables(ctx context.Context) []domain.Variable {
	rows := s.store.Current().Catalog().Variables()
	out := make([]domain.Variable, len(rows))
	for i, r := range rows {
		out[i] = domain.Variable{Name: r.Name, Code: r.Code, Frequency: r.Frequency}
	}
	return out
}

// Lookup resolves a name, code or legacy spelling.
func (s *DatasetService) Lookup(ctx context.Context, key string) (*domain.LookupResult, error) {
	entry, ok := s.store.Current().Catalog().Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrVariableNotFound, key)
	}

	res := &domain.LookupResult{Key: key, Name: entry.Name()}
	switch {
	case entry.Indicator != nil:
		res.Kind = domain.EntryIndicator
		res.Code = entry.Indicator.Code
		res.Frequency = entry.Indicator.Frequency.SheetName()
	case entry.Derived != nil:
		res.Kind = domain.EntryDerived
		res.Base = entry.Derived.Base
		res.Change = string(entry.Derived.Kind)
	}
	return res, nil
}

// Sheets describes the sheets of the current snapshot.
func (s *DatasetService) Sheets(ctx context.Context) *domain.SheetsResponse {
	snap := s.store.Current()
	wb := snap.Workbook()

	resp := &domain.SheetsResponse{
		Source:   wb.Source(),
		LoadedAt: snap.LoadedAt(),
		Default:  defaultSheet(snap, s.cfg.DefaultSheet),
		Sheets:   make([]domain.SheetInfo, 0, len(wb.SheetNames())),
		Warnings: snap.Warnings(),
	}
	for _, t := range wb.Sheets() {
		info := domain.SheetInfo{Name: t.Name(), Rows: t.Len(), Columns: t.Columns()}
		if first, last, ok := t.Bounds(); ok {
			info.Start, info.End = &first, &last
		}
		resp.Sheets = append(resp.Sheets, info)
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	return resp
}

// Sheet returns one sheet, or the merged frame, cut to the query range.
func (s *DatasetService) Sheet(ctx context.Context, name string, q api.SheetQuery) (*domain.TableResponse, error) {
	start, end, err := parseWindow(q.Start, q.End, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	t, err := s.store.Current().Sheet(name)
	if err != nil {
		return nil, err
	}
	return tableResponse(t.FilterRange(start, end), nil), nil
}

// Series selects variables from a sheet, a frequency or the derived
// monthly frame. Requested variables absent from the frame are listed as
// warnings. With no data loaded the result is an empty table.
func (s *DatasetService) Series(ctx context.Context, q api.SeriesQuery) (*domain.TableResponse, error) {
	start, end, err := parseWindow(q.Start, q.End, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	snap := s.store.Current()
	query, err := selection(snap, q, s.cfg.DefaultSheet, start, end)
	if err != nil {
		return nil, err
	}

	if snap.IsEmpty() {
		return &domain.TableResponse{Name: query.Sheet, Columns: []string{}, Rows: []domain.Row{}}, nil
	}

	t, warnings, err := snap.Select(query)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		s.logger.DebugContext(ctx, "series selection incomplete",
			slog.String("frame", t.Name()),
			slog.Int("missing_columns", len(warnings)))
	}
	return tableResponse(t, warnings), nil
}

// Reload reads the workbook again. On failure the previous snapshot stays
// in place and the error is returned.
func (s *DatasetService) Reload(ctx context.Context) (*domain.ReloadResponse, error) {
	start := time.Now()
	snap, err := s.store.Load(ctx)
	if err != nil {
		infrastructure.RecordDatasetLoad(ctx, s.metrics, nil, err)
		return nil, err
	}

	rows := make(map[string]int)
	for _, t := range snap.Workbook().Sheets() {
		rows[t.Name()] = t.Len()
	}
	infrastructure.RecordDatasetLoad(ctx, s.metrics, rows, nil)

	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("source", s.store.Source()),
		slog.Duration("duration", time.Since(start)))

	return &domain.ReloadResponse{
		Source:   snap.Workbook().Source(),
		LoadedAt: snap.LoadedAt(),
		Sheets:   snap.Workbook().SheetNames(),
		Rows:     snap.Merged().Len(),
		Warnings: snap.Warnings(),
	}, nil
}

// ExportCSV writes the filtered view, the monthly frame joined with every
// sheet, as CSV. Missing bounds default to the configured window.
func (s *DatasetService) ExportCSV(ctx context.Context, w io.Writer, q api.RangeQuery) error {
	snap, start, end, err := s.exportWindow(q)
	if err != nil {
		return err
	}
	return exporter.WriteCSV(w, snap.View(start, end), exporter.DefaultOptions())
}

// ExportXLSX writes the filtered view followed by every sheet, each cut
// to the same range, as one workbook.
func (s *DatasetService) ExportXLSX(ctx context.Context, w io.Writer, q api.RangeQuery) error {
	snap, start, end, err := s.exportWindow(q)
	if err != nil {
		return err
	}
	tables := []*table.Table{snap.View(start, end)}
	for _, t := range snap.Workbook().Sheets() {
		tables = append(tables, t.FilterRange(start, end))
	}
	return exporter.WriteXLSX(w, tables...)
}

func (s *DatasetService) exportWindow(q api.RangeQuery) (*dataset.Snapshot, time.Time, time.Time, error) {
	start, end, err := parseWindow(q.Start, q.End, s.cfg.Start(), s.cfg.End())
	if err != nil {
		return nil, start, end, err
	}
	snap := s.store.Current()
	if snap.IsEmpty() {
		return nil, start, end, ErrNoData
	}
	return snap, start, end, nil
}

// Download returns the path and attachment name of a downloadable file.
func (s *DatasetService) Download(ctx context.Context, kind string) (path, name string, err error) {
	switch kind {
	case DownloadWorkbook:
		path, name = s.cfg.WorkbookPath, s.cfg.WorkbookName
	case DownloadScript:
		path, name = s.cfg.ScriptPath, s.cfg.ScriptName
	default:
		return "", "", fmt.Errorf("%w: %q", ErrFileNotFound, kind)
	}
	if path == "" {
		return "", "", fmt.Errorf("%w: no %s configured", ErrFileNotFound, kind)
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.logger.WarnContext(ctx, "download unavailable",
			slog.String("kind", kind),
			slog.String("path", path))
		return "", "", fmt.Errorf("%w: %s", ErrFileNotFound, kind)
	}
	if name == "" {
		name = filepath.Base(path)
	}
	return path, name, nil
}

// defaultSheet returns preferred when the snapshot has it, or has no
// sheets at all, else the workbook's default.
func defaultSheet(snap *dataset.Snapshot, preferred string) string {
	if preferred != "" {
		if _, err := snap.Sheet(preferred); err == nil || snap.IsEmpty() {
			return preferred
		}
	}
	return snap.Workbook().DefaultSheet()
}

// selection builds the snapshot query of a series request. Without a
// sheet or frequency it reads the default sheet.
func selection(snap *dataset.Snapshot, q api.SeriesQuery, preferred string, start, end time.Time) (dataset.Query, error) {
	query := dataset.Query{
		Sheet:     q.Sheet,
		Variables: q.Variables(),
		Start:     start,
		End:       end,
		Derive:    q.Derive,
	}
	if q.Frequency != "" {
		f, err := catalog.ParseFrequency(q.Frequency)
		if err != nil {
			return query, err
		}
		query.Frequency = f
	} else if q.Sheet == "" {
		query.Sheet = defaultSheet(snap, preferred)
	}
	return query, nil
}

// parseWindow parses optional YYYY-MM-DD bounds. Empty bounds take the
// defaults; a zero default leaves that side open.
func parseWindow(start, end string, defStart, defEnd time.Time) (time.Time, time.Time, error) {
	from, to := defStart, defEnd
	var err error
	if start != "" {
		if from, err = time.Parse(domain.DateLayout, start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: start %q", ErrInvalidDate, start)
		}
	}
	if end != "" {
		if to, err = time.Parse(domain.DateLayout, end); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: end %q", ErrInvalidDate, end)
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: %s < %s", ErrInvalidRange,
			to.Format(domain.DateLayout), from.Format(domain.DateLayout))
	}
	return from, to, nil
}

// tableResponse converts t, with missing cells as null.
func tableResponse(t *table.Table, warnings []table.ColumnWarning) *domain.TableResponse {
	cols := t.Columns()
	if cols == nil {
		cols = []string{}
	}
	data := make([][]float64, len(cols))
	for j, c := range cols {
		data[j], _ = t.Column(c)
	}

	rows := make([]domain.Row, t.Len())
	for i, d := range t.Dates() {
		values := make([]*float64, len(cols))
		for j := range cols {
			values[j] = domain.Number(data[j][i])
		}
		rows[i] = domain.Row{Date: d.Format(domain.DateLayout), Values: values}
	}

	resp := &domain.TableResponse{Name: t.Name(), Columns: cols, Rows: rows}
	for _, w := range warnings {
		resp.Warnings = append(resp.Warnings, domain.ColumnWarning{Column: w.Column, Message: w.Message})
	}
	return resp
}
