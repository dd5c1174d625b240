package analysis

import (
	"bytes"
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrodash/internal/catalog"
	"macrodash/internal/table"
)

func monthlyFrame(t *testing.T, n int) *table.Table {
	t.Helper()

	dates := make([]time.Time, n)
	cols := map[string][]float64{
		ColUnemployment:   make([]float64, n),
		ColRetailSales:    make([]float64, n),
		ColIndustrialProd: make([]float64, n),
		ColFedFunds:       make([]float64, n),
		ColCPI:            make([]float64, n),
	}
	for i := 0; i < n; i++ {
		dates[i] = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		f := float64(i)
		cols[ColCPI][i] = 240 * math.Pow(1.002, f) * (1 + 0.001*math.Sin(f))
		cols[ColRetailSales][i] = 400000 + 1500*f + 3000*math.Cos(f/3)
		cols[ColIndustrialProd][i] = 100 + 0.1*f + 2*math.Sin(f/5)
		cols[ColFedFunds][i] = 0.5 + 0.05*f + 0.2*math.Cos(f/2)
		cols[ColUnemployment][i] = 6 - 0.03*f + 0.2*math.Sin(f/4)
	}
	order := []string{ColUnemployment, ColRetailSales, ColIndustrialProd, ColFedFunds, ColCPI}
	tb, err := table.New("Monthly", dates, order, cols)
	require.NoError(t, err)

	withChanges, _ := table.AddPercentChanges(tb, catalog.Default())
	prepared, err := PrepareMonthly(withChanges)
	require.NoError(t, err)
	return prepared
}

func TestRunLagRegression(t *testing.T) {
	frame := monthlyFrame(t, 60)

	report, err := Run(context.Background(), frame, LagSpec())
	require.NoError(t, err)

	// YoY needs 12 prior rows, the lag needs 3.
	assert.Equal(t, 48, report.Observations)
	assert.Equal(t, []string{ConstName, "Federal Funds Rate (Lag 3)"}, report.Variables)
	assert.Equal(t, "CPI YoY %", report.Dependent)
	require.Len(t, report.Inference, 1)
	assert.Equal(t, NonRobust, report.Inference[0].CovType)
	assert.Empty(t, report.VIF)
	assert.Empty(t, report.Standardized)
	assert.Equal(t, time.Date(2016, 1, 1, 0, 0, 0, 0, time.UTC), report.Start)
	assert.NotNil(t, report.Model())
}

func TestRunMultiRegression(t *testing.T) {
	frame := monthlyFrame(t, 60)

	report, err := Run(context.Background(), frame, MultiSpec())
	require.NoError(t, err)

	assert.Equal(t, 48, report.Observations)
	require.Len(t, report.Inference, 3)
	assert.Equal(t, []CovType{NonRobust, HC1, HAC}, []CovType{
		report.Inference[0].CovType, report.Inference[1].CovType, report.Inference[2].CovType,
	})
	assert.Equal(t, DefaultHACLags, report.Inference[2].MaxLags)
	require.Len(t, report.VIF, 4)
	require.Len(t, report.Standardized, 3)
	assert.Equal(t, ColRetailSales, report.Standardized[0].Name)
	assert.False(t, math.IsNaN(report.DurbinWatson))
	assert.NotNil(t, report.LjungBox)

	var buf bytes.Buffer
	require.NoError(t, report.WriteSummary(&buf))
	out := buf.String()
	assert.Contains(t, out, "Unemployment Rate on Retail Sales")
	assert.Contains(t, out, "HAC (maxlags=1)")
	assert.Contains(t, out, "Variance inflation factors")
	assert.Contains(t, out, "Standardized betas")
}

func TestRunEmptyAfterDroppingMissing(t *testing.T) {
	frame := monthlyFrame(t, 12)

	_, err := Run(context.Background(), frame, LagSpec())
	require.ErrorIs(t, err, ErrEmptyDataset)
	assert.Contains(t, err.Error(), "empty after dropping missing values")
}

func TestRunMissingColumn(t *testing.T) {
	tb, err := table.New("Monthly", nil, nil, nil)
	require.NoError(t, err)

	_, err = Run(context.Background(), tb, MultiSpec())
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, monthlyFrame(t, 60), LagSpec())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpecs(t *testing.T) {
	specs := Specs()
	assert.Contains(t, specs, "lag")
	assert.Contains(t, specs, "multi")
	assert.Equal(t, []string{"Retail Sales", "CPI YoY %", "Industrial Production"}, specs["multi"].Regressors)
}

func TestPrepareMonthlyWithoutFedFunds(t *testing.T) {
	tb, err := table.New("Monthly", nil, nil, nil)
	require.NoError(t, err)
	out, err := PrepareMonthly(tb)
	require.NoError(t, err)
	assert.Same(t, tb, out)
}
