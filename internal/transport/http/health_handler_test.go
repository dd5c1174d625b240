package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"macrodash/pkg/contracts"
	"macrodash/pkg/contracts/domain"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*mockHealthService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "liveness",
			target: "/",
			setup: func(m *mockHealthService) {
				m.On("Health", mock.Anything).Return(domain.HealthResponse{Status: domain.HealthStatusHealthy})
			},
			wantStatus: http.StatusOK,
			wantBody:   domain.HealthStatusHealthy,
		},
		{
			name:   "ready while degraded",
			target: "/ready",
			setup: func(m *mockHealthService) {
				m.On("Ready", mock.Anything).Return(domain.HealthResponse{Status: domain.HealthStatusDegraded})
			},
			wantStatus: http.StatusOK,
			wantBody:   domain.HealthStatusDegraded,
		},
		{
			name:   "not ready before first load",
			target: "/ready",
			setup: func(m *mockHealthService) {
				m.On("Ready", mock.Anything).Return(domain.HealthResponse{
					Status: domain.HealthStatusUnhealthy,
					Checks: map[string]domain.HealthCheck{
						"dataset": {Status: domain.HealthStatusUnhealthy, Message: "dataset not loaded yet"},
					},
				})
			},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   domain.HealthStatusUnhealthy,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockHealthService)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			NewHealthHandler(svc, discardLogger()).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantBody, decodeBody(t, rec.Body)["status"])
			svc.AssertExpectations(t)
		})
	}
}

func TestHealthHandler_Version(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(new(mockHealthService), discardLogger()).Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, contracts.Version, decodeBody(t, rec.Body)["version"])
}
