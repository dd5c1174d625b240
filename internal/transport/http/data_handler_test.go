package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"macrodash/internal/dataset"
	apierrors "macrodash/internal/errors"
	"macrodash/internal/services"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

func newDataHandler(svc *mockDatasetService) *DataHandler {
	v, eh := newDeps()
	return NewDataHandler(svc, v, discardLogger(), eh)
}

func TestDataHandler_GetVariables(t *testing.T) {
	svc := new(mockDatasetService)
	svc.On("Variables", mock.Anything).Return([]domain.Variable{
		{Name: "CPI", Code: "CPIAUCSL", Frequency: "Monthly"},
		{Name: "CPI MoM", Code: "N/A (Derived)", Frequency: "Calculated"},
	})

	rec := httptest.NewRecorder()
	newDataHandler(svc).CatalogRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/variables", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	assert.Equal(t, float64(2), body["count"])
	vars := body["variables"].([]any)
	assert.Equal(t, "CPIAUCSL", vars[0].(map[string]any)["code"])
	svc.AssertExpectations(t)
}

func TestDataHandler_Lookup(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*mockDatasetService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "found",
			target: "/lookup?key=fedfunds",
			setup: func(m *mockDatasetService) {
				m.On("Lookup", mock.Anything, "fedfunds").
					Return(&domain.LookupResult{Key: "fedfunds", Name: "Federal Funds Rate", Kind: domain.EntryIndicator}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "unknown",
			target: "/lookup?key=nope",
			setup: func(m *mockDatasetService) {
				m.On("Lookup", mock.Anything, "nope").
					Return(nil, fmt.Errorf("%w: %q", services.ErrVariableNotFound, "nope"))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeNotFound,
		},
		{
			name:       "missing key",
			target:     "/lookup",
			setup:      func(*mockDatasetService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockDatasetService)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			newDataHandler(svc).CatalogRoutes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody(t, rec.Body)["error_code"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDataHandler_GetSheet(t *testing.T) {
	t.Run("rows with nulls", func(t *testing.T) {
		v := 1.5
		svc := new(mockDatasetService)
		svc.On("Sheet", mock.Anything, "Monthly", api.SheetQuery{Start: "2020-01-01"}).Return(&domain.TableResponse{
			Name:    "Monthly",
			Columns: []string{"CPI", "UNRATE"},
			Rows:    []domain.Row{{Date: "2020-01-01", Values: []*float64{&v, nil}}},
		}, nil)

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sheets/Monthly?start=2020-01-01", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"name":"Monthly","columns":["CPI","UNRATE"],"rows":[{"date":"2020-01-01","values":[1.5,null]}]}`, rec.Body.String())
	})

	t.Run("unknown sheet", func(t *testing.T) {
		svc := new(mockDatasetService)
		svc.On("Sheet", mock.Anything, "Hourly", api.SheetQuery{}).
			Return(nil, fmt.Errorf("%w: %q", dataset.ErrSheetNotFound, "Hourly"))

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sheets/Hourly", nil))

		assert.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec.Body)
		assert.Equal(t, apierrors.CodeSheetNotFound, body["error_code"])
		assert.Equal(t, "/sheets/Hourly", body["instance"])
	})

	t.Run("inverted range", func(t *testing.T) {
		svc := new(mockDatasetService)
		svc.On("Sheet", mock.Anything, "Monthly", api.SheetQuery{Start: "2021-01-01", End: "2020-01-01"}).
			Return(nil, services.ErrInvalidRange)

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec,
			httptest.NewRequest(http.MethodGet, "/sheets/Monthly?start=2021-01-01&end=2020-01-01", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierrors.CodeValidationFailed, decodeBody(t, rec.Body)["error_code"])
	})
}

func TestDataHandler_GetSeries(t *testing.T) {
	t.Run("bad frequency never reaches the service", func(t *testing.T) {
		svc := new(mockDatasetService)
		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/series?frequency=hourly", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "Series", mock.Anything, mock.Anything)
	})

	t.Run("warnings", func(t *testing.T) {
		svc := new(mockDatasetService)
		svc.On("Series", mock.Anything, api.SeriesQuery{Frequency: "monthly", Vars: "CPI,GDP"}).Return(&domain.TableResponse{
			Name:     "Monthly",
			Columns:  []string{"CPI"},
			Rows:     []domain.Row{},
			Warnings: []domain.ColumnWarning{{Column: "GDP", Message: "not in Monthly"}},
		}, nil)

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/series?frequency=monthly&vars=CPI,GDP", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		warnings := decodeBody(t, rec.Body)["warnings"].([]any)
		require.Len(t, warnings, 1)
		assert.Equal(t, "GDP", warnings[0].(map[string]any)["column"])
	})
}

func TestDataHandler_Reload(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := new(mockDatasetService)
		svc.On("Reload", mock.Anything).Return(&domain.ReloadResponse{
			Source: "data.xlsx", Sheets: []string{"Monthly"}, Rows: 60, Warnings: []string{},
		}, nil)

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, float64(60), decodeBody(t, rec.Body)["rows"])
	})

	t.Run("failure keeps previous data", func(t *testing.T) {
		svc := new(mockDatasetService)
		svc.On("Reload", mock.Anything).Return(nil, errors.New("zip: not a valid zip file"))

		rec := httptest.NewRecorder()
		newDataHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reload", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, apierrors.CodeReloadFailed, decodeBody(t, rec.Body)["error_code"])
	})
}
