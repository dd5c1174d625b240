package analysis

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrodash/internal/table"
)

func TestCorrelations(t *testing.T) {
	nan := math.NaN()
	dates := make([]time.Time, 5)
	for i := range dates {
		dates[i] = time.Date(2020, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}
	tb, err := table.New("Monthly", dates, []string{"a", "b", "c", "flat"}, map[string][]float64{
		"a":    {1, 2, 3, 4, 5},
		"b":    {2, 4, nan, 8, 10},
		"c":    {5, 4, 3, 2, 1},
		"flat": {1, 1, 1, 1, 1},
	})
	require.NoError(t, err)

	cm, err := Correlations(tb, "a", "b", "c", "flat")
	require.NoError(t, err)

	assert.InDelta(t, 1, cm.Values[0][0], 1e-12)
	ab, ok := cm.At("a", "b")
	require.True(t, ok)
	assert.InDelta(t, 1, ab, 1e-12)
	assert.Equal(t, 4, cm.Pairs[0][1], "pairwise complete")
	ac, _ := cm.At("c", "a")
	assert.InDelta(t, -1, ac, 1e-12)
	flat, _ := cm.At("a", "flat")
	assert.True(t, math.IsNaN(flat))

	_, ok = cm.At("a", "zzz")
	assert.False(t, ok)

	_, err = Correlations(tb, "a", "missing")
	assert.ErrorIs(t, err, table.ErrColumnNotFound)
}

func TestDescribe(t *testing.T) {
	s, err := Describe("CPI", []float64{1, 2, math.NaN(), 3, 4, 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 1, s.Missing)
	assert.InDelta(t, 3, s.Mean, 1e-12)
	assert.InDelta(t, 1, s.Min, 1e-12)
	assert.InDelta(t, 5, s.Max, 1e-12)
	assert.InDelta(t, math.Sqrt(2.5), s.Std, 1e-12)

	_, err = Describe("empty", []float64{math.NaN()})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

func TestADF(t *testing.T) {
	assert.Nil(t, ADF([]float64{1, 2, 3}))

	rng := rand.New(rand.NewSource(42))
	noise := make([]float64, 96)
	walk := make([]float64, 96)
	level := 100.0
	for i := range noise {
		noise[i] = rng.NormFloat64()
		level += 0.5 + rng.NormFloat64()
		walk[i] = level
	}

	tests := []struct {
		name       string
		values     []float64
		stationary bool
	}{
		{name: "white noise", values: noise, stationary: true},
		{name: "random walk with drift", values: walk, stationary: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ADF(tt.values)
			require.NotNil(t, res)
			assert.Equal(t, tt.stationary, res.Stationary, "statistic %.3f p %.3f", res.Statistic, res.PValue)
			assert.Equal(t, res.PValue < 0.05, res.Stationary)
			assert.Greater(t, res.Observations, 0)
			assert.Contains(t, res.CriticalValues, "5%")
		})
	}
}
