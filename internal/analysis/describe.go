package analysis

import (
	"github.com/go-gota/gota/series"

	macroseries "macrodash/internal/series"
)

// Summary is the descriptive profile of one column.
type Summary struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Missing int     `json:"missing"`
	Mean    float64 `json:"mean"`
	Std     float64 `json:"std"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
}

// Describe summarizes the defined values of a column.
func Describe(name string, values []float64) (*Summary, error) {
	dense := make([]float64, 0, len(values))
	for _, v := range values {
		if !macroseries.Missing(v) {
			dense = append(dense, v)
		}
	}
	if len(dense) == 0 {
		return nil, ErrEmptyDataset
	}

	s := series.New(dense, series.Float, name)
	return &Summary{
		Name:    name,
		Count:   s.Len(),
		Missing: len(values) - len(dense),
		Mean:    s.Mean(),
		Std:     s.StdDev(),
		Min:     s.Min(),
		Q1:      s.Quantile(0.25),
		Median:  s.Median(),
		Q3:      s.Quantile(0.75),
		Max:     s.Max(),
	}, nil
}
