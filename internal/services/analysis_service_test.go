package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrodash/internal/analysis"
	"macrodash/internal/dataset"
	"macrodash/internal/table"
	api "macrodash/pkg/contracts/api/v1"
)

func newAnalysisService(t *testing.T, store SnapshotStore) *AnalysisService {
	t.Helper()
	return NewAnalysisService(store, testDataConfig(), nil, discardLogger())
}

func TestAnalysisServiceRegressions(t *testing.T) {
	svc := newAnalysisService(t, loadedStore(t))
	assert.Equal(t, []string{"lag", "multi"}, svc.Regressions())
}

func TestAnalysisServiceRegression(t *testing.T) {
	svc := newAnalysisService(t, loadedStore(t))
	ctx := context.Background()

	t.Run("multi", func(t *testing.T) {
		r, err := svc.Regression(ctx, "multi")
		require.NoError(t, err)
		assert.Equal(t, "Unemployment Rate", r.Dependent)
		assert.Equal(t, []string{analysis.ConstName, "Retail Sales", "CPI YoY %", "Industrial Production"}, r.Variables)
		// CPI YoY % starts in month 13; the missing retail month is earlier.
		assert.Equal(t, fixtureMonths-12, r.Observations)
		require.Len(t, r.Inference, 3)
		assert.Equal(t, "HAC", r.Inference[2].CovType)
		assert.Len(t, r.VIF, 4)
		assert.Len(t, r.Standardized, 3)
		require.NotNil(t, r.R2)
		assert.Contains(t, r.Summary, "Unemployment Rate")
	})

	t.Run("lag", func(t *testing.T) {
		r, err := svc.Regression(ctx, "lag")
		require.NoError(t, err)
		assert.Equal(t, "CPI YoY %", r.Dependent)
		assert.Equal(t, "Federal Funds Rate (Lag 3)", r.Variables[1])
		require.Len(t, r.Inference, 1)
		assert.Empty(t, r.VIF)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := svc.Regression(ctx, "probit")
		assert.ErrorIs(t, err, ErrUnknownRegression)
	})
}

func TestAnalysisServiceRegressionWithoutData(t *testing.T) {
	svc := newAnalysisService(t, emptyStore(t))
	_, err := svc.Regression(context.Background(), "multi")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestAnalysisServiceCorrelation(t *testing.T) {
	svc := newAnalysisService(t, loadedStore(t))
	ctx := context.Background()

	t.Run("default variables", func(t *testing.T) {
		c, err := svc.Correlation(ctx, api.CorrelationQuery{})
		require.NoError(t, err)
		assert.Contains(t, c.Variables, "CPI")
		assert.Contains(t, c.Variables, "Unemployment Rate")
		for i := range c.Variables {
			require.NotNil(t, c.Values[i][i])
			assert.InDelta(t, 1, *c.Values[i][i], 1e-9)
		}
	})

	t.Run("missing variable warns", func(t *testing.T) {
		c, err := svc.Correlation(ctx, api.CorrelationQuery{Vars: "CPI,UNRATE,Bogus"})
		require.NoError(t, err)
		assert.Equal(t, []string{"CPI", "Unemployment Rate"}, c.Variables)
		require.Len(t, c.Warnings, 1)
		assert.Equal(t, "Bogus", c.Warnings[0].Column)
		assert.Equal(t, fixtureMonths, c.Pairs[0][1])
	})

	t.Run("too few", func(t *testing.T) {
		_, err := svc.Correlation(ctx, api.CorrelationQuery{Vars: "CPI,cpiaucsl,Bogus"})
		assert.ErrorIs(t, err, ErrTooFewVariables)
	})
}

func TestAnalysisServiceDescribe(t *testing.T) {
	svc := newAnalysisService(t, loadedStore(t))
	ctx := context.Background()

	d, err := svc.Describe(ctx, api.DescribeQuery{Var: "unrate"})
	require.NoError(t, err)
	assert.Equal(t, "Unemployment Rate", d.Name)
	assert.Equal(t, "Monthly", d.Source)
	assert.Equal(t, fixtureMonths, d.Count)
	require.NotNil(t, d.Median)

	d, err = svc.Describe(ctx, api.DescribeQuery{Var: "Retail Sales", End: "2017-12-31"})
	require.NoError(t, err)
	assert.Equal(t, 11, d.Count)
	assert.Equal(t, 1, d.Missing)

	d, err = svc.Describe(ctx, api.DescribeQuery{Var: "S&P 500", Frequency: "daily"})
	require.NoError(t, err)
	assert.Equal(t, "Daily", d.Source)
	assert.Equal(t, 3, d.Count)
	assert.Nil(t, d.Stationarity)

	_, err = svc.Describe(ctx, api.DescribeQuery{Var: "Bogus"})
	assert.ErrorIs(t, err, ErrVariableNotFound)

	_, err = svc.Describe(ctx, api.DescribeQuery{Var: "CPI", Frequency: "quarterly"})
	assert.ErrorIs(t, err, dataset.ErrSheetNotFound)

	_, err = svc.Describe(ctx, api.DescribeQuery{Var: "CPI", Start: "2030-01-01"})
	assert.ErrorIs(t, err, analysis.ErrEmptyDataset)
}
