package analysis

import "fmt"

// Trend is a straight line fitted to a series against its row index.
type Trend struct {
	Intercept float64   `json:"intercept"`
	Slope     float64   `json:"slope"`
	R2        float64   `json:"r2"`
	Fitted    []float64 `json:"fitted"`
}

// TimeTrend regresses values on 0..n-1. The values must be dense.
func TimeTrend(values []float64) (*Trend, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}
	index := make([]float64, len(values))
	for i := range index {
		index[i] = float64(i)
	}
	m, err := OLS("trend", values, []string{"t"}, [][]float64{index})
	if err != nil {
		return nil, fmt.Errorf("time trend: %w", err)
	}
	return &Trend{Intercept: m.Coef[0], Slope: m.Coef[1], R2: m.R2, Fitted: m.Fitted}, nil
}
