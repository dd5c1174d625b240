package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/sartorproj/goarima/stats"
	"github.com/sartorproj/goarima/timeseries"
	"gonum.org/v1/gonum/stat"
)

// DefaultLjungBoxLags is the lag count used for residual checks.
const DefaultLjungBoxLags = 10

// ErrConstantSeries is returned when a variable has zero variance.
var ErrConstantSeries = errors.New("variable has zero variance")

// VIF is the variance inflation factor of one design column.
type VIF struct {
	Variable string  `json:"variable"`
	VIF      float64 `json:"vif"`
}

// LjungBox summarizes a Ljung-Box test on residuals.
type LjungBox struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
	Lags      int     `json:"lags"`
}

// Stationarity summarizes an augmented Dickey-Fuller test.
type Stationarity struct {
	Statistic      float64            `json:"statistic"`
	PValue         float64            `json:"p_value"`
	Lags           int                `json:"lags"`
	Observations   int                `json:"observations"`
	CriticalValues map[string]float64 `json:"critical_values"`
	Stationary     bool               `json:"stationary"`
}

// VIFs computes the variance inflation factor of every design column,
// the intercept included. Each column is regressed on the others; the
// R-squared is centered when the others contain the intercept.
func (m *Model) VIFs() ([]VIF, error) {
	out := make([]VIF, 0, m.K)
	cols := make([][]float64, m.K)
	for j := 0; j < m.K; j++ {
		cols[j] = make([]float64, m.N)
		for i := 0; i < m.N; i++ {
			cols[j][i] = m.x.At(i, j)
		}
	}
	hasConst := len(m.Names) > 0 && m.Names[0] == ConstName

	for j := 0; j < m.K; j++ {
		var others [][]float64
		var names []string
		for o := 0; o < m.K; o++ {
			if o != j {
				others = append(others, cols[o])
				names = append(names, m.Names[o])
			}
		}
		if len(others) == 0 {
			out = append(out, VIF{Variable: m.Names[j], VIF: math.NaN()})
			continue
		}

		aux, err := fit(m.Names[j], cols[j], names, others, false)
		if err != nil {
			return nil, fmt.Errorf("vif %q: %w", m.Names[j], err)
		}
		r2 := rSquared(cols[j], aux.Residuals, hasConst && j != 0)
		out = append(out, VIF{Variable: m.Names[j], VIF: 1 / (1 - r2)})
	}
	return out, nil
}

func rSquared(y, resid []float64, centered bool) float64 {
	mean := 0.0
	if centered {
		mean = stat.Mean(y, nil)
	}
	var ssr, sst float64
	for i := range y {
		ssr += resid[i] * resid[i]
		sst += (y[i] - mean) * (y[i] - mean)
	}
	if sst == 0 {
		return math.NaN()
	}
	return 1 - ssr/sst
}

// DurbinWatson returns the Durbin-Watson statistic of the residuals, NaN
// when it is undefined.
func (m *Model) DurbinWatson() float64 {
	dw := stats.DurbinWatson(m.Residuals)
	if dw == nil {
		return math.NaN()
	}
	return dw.Statistic
}

// LjungBox tests the residuals for autocorrelation. It returns nil when the
// sample is too short.
func (m *Model) LjungBox(lags int) *LjungBox {
	lb := stats.LjungBox(timeseries.New(m.Residuals), lags, 0)
	if lb == nil {
		return nil
	}
	return &LjungBox{Statistic: lb.Statistic, PValue: lb.PValue, Lags: lb.Lags}
}

// StandardizedBetas refits the regression on z-scored variables and
// returns the slope coefficients, which are comparable across regressors.
func StandardizedBetas(y []float64, names []string, columns [][]float64) (*Model, error) {
	zy, err := zscore(y)
	if err != nil {
		return nil, fmt.Errorf("dependent: %w", err)
	}
	zc := make([][]float64, len(columns))
	for i, col := range columns {
		if zc[i], err = zscore(col); err != nil {
			return nil, fmt.Errorf("%s: %w", names[i], err)
		}
	}
	return OLS("standardized", zy, names, zc)
}

func zscore(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmptyDataset
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return nil, ErrConstantSeries
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = (v - mean) / std
	}
	return out, nil
}

// ADF runs an augmented Dickey-Fuller test with automatic lag selection.
// It returns nil when the series is too short or the regression is
// degenerate.
func ADF(values []float64) *Stationarity {
	res := stats.ADF(timeseries.New(values), 0)
	if res == nil {
		return nil
	}
	return &Stationarity{
		Statistic:      res.Statistic,
		PValue:         res.PValue,
		Lags:           res.Lags,
		Observations:   res.NObs,
		CriticalValues: res.CriticalVals,
		Stationary:     res.IsStationary,
	}
}
