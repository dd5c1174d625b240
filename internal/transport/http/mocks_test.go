package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "macrodash/internal/errors"
	mw "macrodash/internal/middleware"
	"macrodash/internal/services"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newDeps() (*mw.Validator, *apierrors.ErrorHandler) {
	return mw.NewValidator(), apierrors.NewErrorHandler(discardLogger(), false)
}

func decodeBody(t *testing.T, body *bytes.Buffer) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body.Bytes(), &out))
	return out
}

type mockDatasetService struct{ mock.Mock }

func (m *mockDatasetService) Variables(ctx context.Context) []domain.Variable {
	return m.Called(ctx).Get(0).([]domain.Variable)
}

func (m *mockDatasetService) Lookup(ctx context.Context, key string) (*domain.LookupResult, error) {
	args := m.Called(ctx, key)
	res, _ := args.Get(0).(*domain.LookupResult)
	return res, args.Error(1)
}

func (m *mockDatasetService) Sheets(ctx context.Context) *domain.SheetsResponse {
	return m.Called(ctx).Get(0).(*domain.SheetsResponse)
}

func (m *mockDatasetService) Sheet(ctx context.Context, name string, q api.SheetQuery) (*domain.TableResponse, error) {
	args := m.Called(ctx, name, q)
	res, _ := args.Get(0).(*domain.TableResponse)
	return res, args.Error(1)
}

func (m *mockDatasetService) Series(ctx context.Context, q api.SeriesQuery) (*domain.TableResponse, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).(*domain.TableResponse)
	return res, args.Error(1)
}

func (m *mockDatasetService) Reload(ctx context.Context) (*domain.ReloadResponse, error) {
	args := m.Called(ctx)
	res, _ := args.Get(0).(*domain.ReloadResponse)
	return res, args.Error(1)
}

func (m *mockDatasetService) ExportCSV(ctx context.Context, w io.Writer, q api.RangeQuery) error {
	return m.Called(ctx, w, q).Error(0)
}

func (m *mockDatasetService) ExportXLSX(ctx context.Context, w io.Writer, q api.RangeQuery) error {
	return m.Called(ctx, w, q).Error(0)
}

func (m *mockDatasetService) Download(ctx context.Context, kind string) (string, string, error) {
	args := m.Called(ctx, kind)
	return args.String(0), args.String(1), args.Error(2)
}

type mockChartService struct{ mock.Mock }

func (m *mockChartService) LineChart(ctx context.Context, q api.LineChartQuery) (*services.ChartImage, error) {
	args := m.Called(ctx, q)
	img, _ := args.Get(0).(*services.ChartImage)
	return img, args.Error(1)
}

func (m *mockChartService) Gallery(ctx context.Context) []domain.ChartInfo {
	return m.Called(ctx).Get(0).([]domain.ChartInfo)
}

func (m *mockChartService) GalleryChart(ctx context.Context, name string, q api.GalleryQuery) ([]byte, error) {
	args := m.Called(ctx, name, q)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

type mockAnalysisService struct{ mock.Mock }

func (m *mockAnalysisService) Regressions() []string {
	return m.Called().Get(0).([]string)
}

func (m *mockAnalysisService) Regression(ctx context.Context, name string) (*domain.Regression, error) {
	args := m.Called(ctx, name)
	res, _ := args.Get(0).(*domain.Regression)
	return res, args.Error(1)
}

func (m *mockAnalysisService) Correlation(ctx context.Context, q api.CorrelationQuery) (*domain.Correlation, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).(*domain.Correlation)
	return res, args.Error(1)
}

func (m *mockAnalysisService) Describe(ctx context.Context, q api.DescribeQuery) (*domain.Description, error) {
	args := m.Called(ctx, q)
	res, _ := args.Get(0).(*domain.Description)
	return res, args.Error(1)
}

type mockHealthService struct{ mock.Mock }

func (m *mockHealthService) Health(ctx context.Context) domain.HealthResponse {
	return m.Called(ctx).Get(0).(domain.HealthResponse)
}

func (m *mockHealthService) Ready(ctx context.Context) domain.HealthResponse {
	return m.Called(ctx).Get(0).(domain.HealthResponse)
}
