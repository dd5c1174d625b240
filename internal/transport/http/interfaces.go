package http

import (
	"context"
	"io"

	"macrodash/internal/services"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

// DatasetService is the catalog, table and export surface of
// services.DatasetService.
type DatasetService interface {
	Variables(ctx context.Context) []domain.Variable
	Lookup(ctx context.Context, key string) (*domain.LookupResult, error)
	Sheets(ctx context.Context) *domain.SheetsResponse
	Sheet(ctx context.Context, name string, q api.SheetQuery) (*domain.TableResponse, error)
	Series(ctx context.Context, q api.SeriesQuery) (*domain.TableResponse, error)
	Reload(ctx context.Context) (*domain.ReloadResponse, error)
	ExportCSV(ctx context.Context, w io.Writer, q api.RangeQuery) error
	ExportXLSX(ctx context.Context, w io.Writer, q api.RangeQuery) error
	Download(ctx context.Context, kind string) (path, name string, err error)
}

// ChartService renders PNG charts.
type ChartService interface {
	LineChart(ctx context.Context, q api.LineChartQuery) (*services.ChartImage, error)
	Gallery(ctx context.Context) []domain.ChartInfo
	GalleryChart(ctx context.Context, name string, q api.GalleryQuery) ([]byte, error)
}

// AnalysisService runs regressions and summary statistics.
type AnalysisService interface {
	Regressions() []string
	Regression(ctx context.Context, name string) (*domain.Regression, error)
	Correlation(ctx context.Context, q api.CorrelationQuery) (*domain.Correlation, error)
	Describe(ctx context.Context, q api.DescribeQuery) (*domain.Description, error)
}

// HealthService reports liveness and readiness.
type HealthService interface {
	Health(ctx context.Context) domain.HealthResponse
	Ready(ctx context.Context) domain.HealthResponse
}

var (
	_ DatasetService  = (*services.DatasetService)(nil)
	_ ChartService    = (*services.ChartService)(nil)
	_ AnalysisService = (*services.AnalysisService)(nil)
	_ HealthService   = (*services.HealthService)(nil)
)
