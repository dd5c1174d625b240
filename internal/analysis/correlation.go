package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"macrodash/internal/series"
	"macrodash/internal/table"
)

// CorrelationMatrix is a symmetric matrix of Pearson coefficients.
type CorrelationMatrix struct {
	Variables []string    `json:"variables"`
	Values    [][]float64 `json:"values"`
	Pairs     [][]int     `json:"pairs"`
}

// Correlations computes pairwise-complete Pearson correlations between the
// named columns. A pair with fewer than two complete observations or zero
// variance is NaN.
func Correlations(t *table.Table, cols ...string) (*CorrelationMatrix, error) {
	data := make([][]float64, len(cols))
	for i, col := range cols {
		v, ok := t.Column(col)
		if !ok {
			return nil, fmt.Errorf("correlation: %w: %q", table.ErrColumnNotFound, col)
		}
		data[i] = v
	}

	n := len(cols)
	cm := &CorrelationMatrix{
		Variables: append([]string(nil), cols...),
		Values:    make([][]float64, n),
		Pairs:     make([][]int, n),
	}
	for i := range cm.Values {
		cm.Values[i] = make([]float64, n)
		cm.Pairs[i] = make([]int, n)
	}

	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			x, y := complete(data[i], data[j])
			r := math.NaN()
			if len(x) >= 2 && stat.Variance(x, nil) > 0 && stat.Variance(y, nil) > 0 {
				r = stat.Correlation(x, y, nil)
			}
			cm.Values[i][j], cm.Values[j][i] = r, r
			cm.Pairs[i][j], cm.Pairs[j][i] = len(x), len(x)
		}
	}
	return cm, nil
}

// At returns the coefficient for two named variables.
func (c *CorrelationMatrix) At(a, b string) (float64, bool) {
	i, j := -1, -1
	for k, v := range c.Variables {
		if v == a {
			i = k
		}
		if v == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN(), false
	}
	return c.Values[i][j], true
}

func complete(a, b []float64) ([]float64, []float64) {
	var x, y []float64
	for i := range a {
		if series.Missing(a[i]) || series.Missing(b[i]) {
			continue
		}
		x = append(x, a[i])
		y = append(y, b[i])
	}
	return x, y
}
