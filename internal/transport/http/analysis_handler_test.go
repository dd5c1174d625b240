package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"macrodash/internal/analysis"
	apierrors "macrodash/internal/errors"
	"macrodash/internal/services"
	api "macrodash/pkg/contracts/api/v1"
	"macrodash/pkg/contracts/domain"
)

func newAnalysisHandler(svc *mockAnalysisService) *AnalysisHandler {
	v, eh := newDeps()
	return NewAnalysisHandler(svc, v, discardLogger(), eh)
}

func TestAnalysisHandler_Regressions(t *testing.T) {
	r2 := 0.42
	svc := new(mockAnalysisService)
	svc.On("Regressions").Return([]string{"lag", "multi"})
	svc.On("Regression", mock.Anything, "multi").Return(&domain.Regression{
		Name: "multi", Dependent: "CPI", Observations: 48, R2: &r2,
	}, nil)
	h := newAnalysisHandler(svc).Routes()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regressions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"lag", "multi"}, decodeBody(t, rec.Body)["regressions"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/regressions/multi", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec.Body)
	assert.Equal(t, float64(48), body["observations"])
	assert.Equal(t, 0.42, body["r2"])
}

func TestAnalysisHandler_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setup      func(*mockAnalysisService)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "unknown regression",
			target: "/regressions/quadratic",
			setup: func(m *mockAnalysisService) {
				m.On("Regression", mock.Anything, "quadratic").
					Return(nil, fmt.Errorf("%w: %q", services.ErrUnknownRegression, "quadratic"))
			},
			wantStatus: http.StatusNotFound,
			wantCode:   apierrors.CodeNotFound,
		},
		{
			name:   "regression empty after dropping missing values",
			target: "/regressions/lag",
			setup: func(m *mockAnalysisService) {
				m.On("Regression", mock.Anything, "lag").Return(nil, analysis.ErrEmptyDataset)
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeEmptyDataset,
		},
		{
			name:   "singular design",
			target: "/regressions/multi",
			setup: func(m *mockAnalysisService) {
				m.On("Regression", mock.Anything, "multi").Return(nil, fmt.Errorf("multi: %w", analysis.ErrSingularDesign))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeRegressionFailed,
		},
		{
			name:   "too few variables",
			target: "/correlation?vars=CPI",
			setup: func(m *mockAnalysisService) {
				m.On("Correlation", mock.Anything, api.CorrelationQuery{Vars: "CPI"}).
					Return(nil, fmt.Errorf("%w: 1 usable", services.ErrTooFewVariables))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeNotEnoughData,
		},
		{
			name:       "describe without var",
			target:     "/describe?frequency=monthly",
			setup:      func(*mockAnalysisService) {},
			wantStatus: http.StatusBadRequest,
			wantCode:   apierrors.CodeValidationFailed,
		},
		{
			name:   "describe with no observations",
			target: "/describe?var=CPI",
			setup: func(m *mockAnalysisService) {
				m.On("Describe", mock.Anything, api.DescribeQuery{Var: "CPI"}).
					Return(nil, fmt.Errorf("describe CPI: %w", analysis.ErrEmptyDataset))
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   apierrors.CodeNotEnoughData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(mockAnalysisService)
			tt.setup(svc)

			rec := httptest.NewRecorder()
			newAnalysisHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, rec.Body)["error_code"])
			svc.AssertExpectations(t)
		})
	}
}

func TestAnalysisHandler_Correlation(t *testing.T) {
	one, half := 1.0, 0.5
	svc := new(mockAnalysisService)
	svc.On("Correlation", mock.Anything, api.CorrelationQuery{Vars: "CPI,UNRATE"}).Return(&domain.Correlation{
		Variables: []string{"CPI", "UNRATE"},
		Values:    [][]*float64{{&one, &half}, {&half, &one}},
		Pairs:     [][]int{{48, 48}, {48, 48}},
	}, nil)

	rec := httptest.NewRecorder()
	newAnalysisHandler(svc).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/correlation?vars=CPI,UNRATE", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"variables":["CPI","UNRATE"],"values":[[1,0.5],[0.5,1]],"pairs":[[48,48],[48,48]]}`, rec.Body.String())
}
