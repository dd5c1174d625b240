package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

func testOTel(t *testing.T) *OTelProviders {
	t.Helper()
	cfg := DefaultOTelConfig()
	cfg.TraceExporter = "stdout"
	cfg.TraceWriter = io.Discard
	cfg.Registry = promclient.NewRegistry()

	providers, err := InitializeOTel(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, providers.Shutdown(ctx))
	})
	return providers
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestInitializeOTel(t *testing.T) {
	providers := testOTel(t)

	assert.NotNil(t, providers.TracerProvider)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	assert.Len(t, TraceIDFromContext(ctx), 32)
	RecordError(ctx, errors.New("boom"))
	span.End()
}

func TestInitializeOTelRejectsUnknownExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.MetricExporter = "statsd"
	_, err := InitializeOTel(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported metric exporter")
}

func TestDomainMetricsExported(t *testing.T) {
	providers := testOTel(t)
	m, err := CreateDomainMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	RecordDatasetLoad(ctx, m, map[string]int{"Monthly": 96}, nil)
	RecordChartRender(ctx, m, "unemployment", 20*time.Millisecond, nil)
	RecordRegression(ctx, m, "lag", errors.New("empty"))

	body := scrape(t, providers.PrometheusHTTP)
	assert.Contains(t, body, "dataset_loads_total")
	assert.Contains(t, body, `sheet="Monthly"`)
	assert.Contains(t, body, `chart="unemployment"`)
	assert.Contains(t, body, "chart_render_duration_seconds")
	assert.Contains(t, body, `regression="lag"`)
	assert.Contains(t, body, `status="failure"`)
}

func TestRecordHelpersAcceptNil(t *testing.T) {
	ctx := context.Background()
	assert.NotPanics(t, func() {
		RecordDatasetLoad(ctx, nil, map[string]int{"Daily": 1}, nil)
		RecordChartRender(ctx, nil, "x", time.Second, nil)
		RecordRegression(ctx, nil, "multi", nil)
	})
}

func TestCreateDomainMetricsNoop(t *testing.T) {
	m, err := CreateDomainMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	assert.NotPanics(t, func() {
		RecordChartRender(context.Background(), m, "x", time.Second, nil)
	})
}
