package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "macrodash/internal/errors"
	api "macrodash/pkg/contracts/api/v1"
)

func bind(t *testing.T, target string, dst interface{}) error {
	t.Helper()
	return NewValidator().BindQuery(httptest.NewRequest(http.MethodGet, target, nil), dst)
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr), "got %v", err)
	require.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	require.Equal(t, apierrors.CodeValidationFailed, apiErr.ErrorCode)
	details, ok := apiErr.Details.(apierrors.ValidationErrors)
	require.True(t, ok)
	out := make(map[string]string)
	for _, e := range details.Errors {
		out[e.Field] = e.Message
	}
	return out
}

func TestBindQuerySeries(t *testing.T) {
	var q api.SeriesQuery
	err := bind(t, "/api/data/series?frequency=Monthly&vars=CPI,%20UNRATE&vars=PCE&start=2018-01-01&derive=true&unknown=1", &q)
	require.NoError(t, err)

	assert.Equal(t, "Monthly", q.Frequency)
	assert.Equal(t, []string{"CPI", "UNRATE", "PCE"}, q.Variables())
	assert.Equal(t, "2018-01-01", q.Start)
	assert.Empty(t, q.End)
	assert.True(t, q.Derive)
}

func TestBindQueryValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
		dst    func() interface{}
		want   map[string]string
	}{
		{
			name:   "bad frequency",
			target: "/?frequency=hourly",
			dst:    func() interface{} { return &api.SeriesQuery{} },
			want:   map[string]string{"frequency": "frequency must be one of: daily, weekly, monthly, quarterly"},
		},
		{
			name:   "bad dates",
			target: "/?start=2020-13-01&end=01/02/2020",
			dst:    func() interface{} { return &api.SheetQuery{} },
			want: map[string]string{
				"start": "start must be a date in YYYY-MM-DD format",
				"end":   "end must be a date in YYYY-MM-DD format",
			},
		},
		{
			name:   "missing required var",
			target: "/?frequency=monthly",
			dst:    func() interface{} { return &api.DescribeQuery{} },
			want:   map[string]string{"var": "var is required"},
		},
		{
			name:   "chart too small",
			target: "/?vars=CPI&width=50",
			dst:    func() interface{} { return &api.LineChartQuery{} },
			want:   map[string]string{"width": "width must be at least 200"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bind(t, tt.target, tt.dst())
			assert.Equal(t, tt.want, fieldErrors(t, err))
		})
	}
}

func TestBindQueryMalformed(t *testing.T) {
	var q api.SeriesQuery
	err := bind(t, "/?derive=maybe", &q)

	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, apierrors.CodeInvalidRequest, apiErr.ErrorCode)
}

func TestBindQueryEmpty(t *testing.T) {
	var q api.GalleryQuery
	require.NoError(t, bind(t, "/", &q))
	assert.Zero(t, q)
}
