package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"macrodash/internal/charts"
	"macrodash/internal/config"
	"macrodash/internal/infrastructure"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

// GalleryPath is the URL prefix of gallery charts.
const GalleryPath = "/api/charts/gallery/"

// ChartImage is a rendered PNG with the columns that could not be drawn.
type ChartImage struct {
	PNG      []byte
	Warnings []domain.ColumnWarning
}

// ChartService renders charts of the current snapshot.
type ChartService struct {
	store   SnapshotStore
	data    config.DataConfig
	charts  config.ChartsConfig
	metrics *infrastructure.DomainMetrics
	logger  *slog.Logger
}

// NewChartService creates a chart service. metrics may be nil.
func NewChartService(store SnapshotStore, data config.DataConfig, chartsCfg config.ChartsConfig, metrics *infrastructure.DomainMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChartService{
		store:   store,
		data:    data,
		charts:  chartsCfg,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "chart_service")),
	}
}

// LineChart draws the selected variables as one line chart. Variables
// absent from the frame are skipped and reported.
func (s *ChartService) LineChart(ctx context.Context, q api.LineChartQuery) (*ChartImage, error) {
	start, end, err := parseWindow(q.Start, q.End, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}
	snap := s.store.Current()
	if snap.IsEmpty() {
		return nil, fmt.Errorf("%w: %s", charts.ErrNotEnoughData, ErrNoData)
	}
	query, err := selection(snap, q.Series(), s.data.DefaultSheet, start, end)
	if err != nil {
		return nil, err
	}
	t, warnings, err := snap.Select(query)
	if err != nil {
		return nil, err
	}

	lines, _ := charts.LinesFrom(t, t.Columns()...)
	title := q.Title
	if title == "" {
		title = strings.Join(t.Columns(), ", ")
	}
	opts := charts.Options{
		Title:  title,
		Width:  s.size(q.Width, s.charts.Width),
		Height: s.size(q.Height, s.charts.Height),
	}

	img := &ChartImage{}
	for _, w := range warnings {
		img.Warnings = append(img.Warnings, domain.ColumnWarning{Column: w.Column, Message: w.Message})
	}
	img.PNG, err = s.render(ctx, "line", func(buf *bytes.Buffer) error {
		return charts.Lines(buf, opts, lines...)
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// Gallery lists the gallery charts in display order.
func (s *ChartService) Gallery(ctx context.Context) []domain.ChartInfo {
	gallery := charts.Gallery()
	out := make([]domain.ChartInfo, len(gallery))
	for i, c := range gallery {
		out[i] = domain.ChartInfo{Name: c.Name, Title: c.Title, URL: GalleryPath + c.Name}
	}
	return out
}

// GalleryChart draws one gallery chart over the query range, which
// defaults to the configured analysis window.
func (s *ChartService) GalleryChart(ctx context.Context, name string, q api.GalleryQuery) ([]byte, error) {
	c, ok := charts.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", charts.ErrUnknownChart, name)
	}
	start, end, err := parseWindow(q.Start, q.End, s.data.Start(), s.data.End())
	if err != nil {
		return nil, err
	}
	frames := s.store.Current().Frames(start, end)
	width := s.size(q.Width, s.charts.Width)
	height := s.size(q.Height, s.charts.Height)

	return s.render(ctx, c.Name, func(buf *bytes.Buffer) error {
		return c.Render(buf, frames, width, height)
	})
}

func (s *ChartService) render(ctx context.Context, name string, draw func(*bytes.Buffer) error) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()
	var buf bytes.Buffer
	err := draw(&buf)
	elapsed := time.Since(start)
	infrastructure.RecordChartRender(ctx, s.metrics, name, elapsed, err)
	if err != nil {
		s.logger.DebugContext(ctx, "chart not rendered",
			slog.String("chart", name),
			slog.String("error", err.Error()))
		return nil, err
	}
	s.logger.DebugContext(ctx, "chart rendered",
		slog.String("chart", name),
		slog.Int("bytes", buf.Len()),
		slog.Duration("duration", elapsed))
	return buf.Bytes(), nil
}

func (s *ChartService) size(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	return configured
}
