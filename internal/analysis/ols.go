package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// ConstName labels the intercept.
const ConstName = "const"

var (
	// ErrEmptyDataset is returned when no complete observations remain.
	ErrEmptyDataset = errors.New("the data for regression is empty after dropping missing values")
	// ErrTooFewObservations is returned when n does not exceed the number
	// of parameters.
	ErrTooFewObservations = errors.New("not enough observations for the number of parameters")
	// ErrSingularDesign is returned when X'X cannot be inverted.
	ErrSingularDesign = errors.New("design matrix is singular")
	// ErrDimensionMismatch is returned for regressors of unequal length.
	ErrDimensionMismatch = errors.New("regressor length does not match dependent variable")
)

// CovType selects the coefficient covariance estimator.
type CovType string

const (
	NonRobust CovType = "nonrobust"
	HC1       CovType = "HC1"
	HAC       CovType = "HAC"
)

// Model is a fitted OLS regression with an intercept.
type Model struct {
	Dependent string
	Names     []string
	Coef      []float64
	Residuals []float64
	Fitted    []float64

	N       int
	K       int
	DFResid int
	DFModel int

	R2      float64
	AdjR2   float64
	FStat   float64
	FPValue float64
	SSR     float64

	x      *mat.Dense
	xtxInv *mat.Dense
}

// Inference holds standard errors and tests under one covariance estimator.
type Inference struct {
	CovType CovType   `json:"cov_type"`
	MaxLags int       `json:"max_lags,omitempty"`
	StdErr  []float64 `json:"std_err"`
	TStat   []float64 `json:"t_stat"`
	PValue  []float64 `json:"p_value"`
}

// OLS regresses y on the given columns plus an intercept. Columns must be
// dense; drop missing rows first.
func OLS(dependent string, y []float64, names []string, columns [][]float64) (*Model, error) {
	return fit(dependent, y, names, columns, true)
}

func fit(dependent string, y []float64, names []string, columns [][]float64, intercept bool) (*Model, error) {
	n := len(y)
	if n == 0 {
		return nil, ErrEmptyDataset
	}
	if len(names) != len(columns) {
		return nil, fmt.Errorf("%d names for %d columns", len(names), len(columns))
	}
	for i, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("%w: %q has %d rows, want %d", ErrDimensionMismatch, names[i], len(col), n)
		}
	}

	k := len(columns)
	labels := append([]string(nil), names...)
	if intercept {
		k++
		labels = append([]string{ConstName}, labels...)
	}
	if n <= k {
		return nil, fmt.Errorf("%w: n=%d, k=%d", ErrTooFewObservations, n, k)
	}

	x := mat.NewDense(n, k, nil)
	for i := 0; i < n; i++ {
		j := 0
		if intercept {
			x.Set(i, 0, 1)
			j = 1
		}
		for c, col := range columns {
			x.Set(i, j+c, col[i])
		}
	}

	var xtx mat.Dense
	xtx.Mul(x.T(), x)
	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		// An ill-conditioned but invertible X'X still yields usable estimates.
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 0) || math.IsNaN(float64(cond)) {
			return nil, fmt.Errorf("%w: %v", ErrSingularDesign, err)
		}
	}

	yv := mat.NewVecDense(n, append([]float64(nil), y...))
	var xty mat.VecDense
	xty.MulVec(x.T(), yv)
	var beta mat.VecDense
	beta.MulVec(&xtxInv, &xty)

	var fitted mat.VecDense
	fitted.MulVec(x, &beta)

	m := &Model{
		Dependent: dependent,
		Names:     labels,
		Coef:      make([]float64, k),
		Residuals: make([]float64, n),
		Fitted:    make([]float64, n),
		N:         n,
		K:         k,
		DFResid:   n - k,
		DFModel:   k,
		x:         x,
		xtxInv:    &xtxInv,
	}
	if intercept {
		m.DFModel = k - 1
	}
	for j := 0; j < k; j++ {
		m.Coef[j] = beta.AtVec(j)
	}

	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(n)

	var ssr, sst float64
	for i := 0; i < n; i++ {
		m.Fitted[i] = fitted.AtVec(i)
		m.Residuals[i] = y[i] - m.Fitted[i]
		ssr += m.Residuals[i] * m.Residuals[i]
		if intercept {
			sst += (y[i] - mean) * (y[i] - mean)
		} else {
			sst += y[i] * y[i]
		}
	}
	m.SSR = ssr

	m.R2, m.AdjR2, m.FStat, m.FPValue = math.NaN(), math.NaN(), math.NaN(), math.NaN()
	if sst > 0 {
		m.R2 = 1 - ssr/sst
		m.AdjR2 = 1 - (1-m.R2)*float64(n-boolInt(intercept))/float64(m.DFResid)
	}
	if m.DFModel > 0 && ssr > 0 && sst > 0 {
		m.FStat = ((sst - ssr) / float64(m.DFModel)) / (ssr / float64(m.DFResid))
		f := distuv.F{D1: float64(m.DFModel), D2: float64(m.DFResid)}
		m.FPValue = f.Survival(m.FStat)
	}
	return m, nil
}

// Inference computes standard errors under the chosen estimator. maxLags
// is used by HAC only.
func (m *Model) Inference(cov CovType, maxLags int) (Inference, error) {
	var c *mat.Dense
	switch cov {
	case NonRobust:
		c = m.classicalCov()
	case HC1:
		c = m.hc1Cov()
	case HAC:
		if maxLags < 0 {
			return Inference{}, fmt.Errorf("HAC max lags must be non-negative, got %d", maxLags)
		}
		c = m.hacCov(maxLags)
	default:
		return Inference{}, fmt.Errorf("unknown covariance type %q", cov)
	}

	inf := Inference{
		CovType: cov,
		StdErr:  make([]float64, m.K),
		TStat:   make([]float64, m.K),
		PValue:  make([]float64, m.K),
	}
	if cov == HAC {
		inf.MaxLags = maxLags
	}

	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(m.DFResid)}
	for j := 0; j < m.K; j++ {
		v := c.At(j, j)
		if v < 0 {
			v = 0
		}
		se := math.Sqrt(v)
		inf.StdErr[j] = se
		if se == 0 {
			inf.TStat[j] = math.NaN()
			inf.PValue[j] = math.NaN()
			continue
		}
		inf.TStat[j] = m.Coef[j] / se
		inf.PValue[j] = 2 * t.Survival(math.Abs(inf.TStat[j]))
	}
	return inf, nil
}

func (m *Model) classicalCov() *mat.Dense {
	sigma2 := m.SSR / float64(m.DFResid)
	var c mat.Dense
	c.Scale(sigma2, m.xtxInv)
	return &c
}

// hc1Cov is White's estimator scaled by n/(n-k).
func (m *Model) hc1Cov() *mat.Dense {
	meat := mat.NewDense(m.K, m.K, nil)
	row := make([]float64, m.K)
	for i := 0; i < m.N; i++ {
		mat.Row(row, i, m.x)
		e2 := m.Residuals[i] * m.Residuals[i]
		for a := 0; a < m.K; a++ {
			for b := 0; b < m.K; b++ {
				meat.Set(a, b, meat.At(a, b)+e2*row[a]*row[b])
			}
		}
	}
	c := m.sandwich(meat)
	c.Scale(float64(m.N)/float64(m.DFResid), c)
	return c
}

// hacCov is the Newey-West estimator with Bartlett weights.
func (m *Model) hacCov(maxLags int) *mat.Dense {
	scores := mat.NewDense(m.N, m.K, nil)
	for i := 0; i < m.N; i++ {
		for j := 0; j < m.K; j++ {
			scores.Set(i, j, m.x.At(i, j)*m.Residuals[i])
		}
	}

	meat := mat.NewDense(m.K, m.K, nil)
	meat.Mul(scores.T(), scores)
	for lag := 1; lag <= maxLags && lag < m.N; lag++ {
		w := 1 - float64(lag)/float64(maxLags+1)
		lead := scores.Slice(lag, m.N, 0, m.K)
		back := scores.Slice(0, m.N-lag, 0, m.K)
		var gamma mat.Dense
		gamma.Mul(lead.T(), back)
		var both mat.Dense
		both.Add(&gamma, gamma.T())
		both.Scale(w, &both)
		meat.Add(meat, &both)
	}
	return m.sandwich(meat)
}

func (m *Model) sandwich(meat mat.Matrix) *mat.Dense {
	var tmp, c mat.Dense
	tmp.Mul(m.xtxInv, meat)
	c.Mul(&tmp, m.xtxInv)
	return &c
}

// Predict returns the fitted value for regressor values (intercept
// excluded).
func (m *Model) Predict(values ...float64) (float64, error) {
	offset := 0
	if len(m.Names) > 0 && m.Names[0] == ConstName {
		offset = 1
	}
	if len(values) != m.K-offset {
		return 0, fmt.Errorf("predict: got %d values, want %d", len(values), m.K-offset)
	}
	out := 0.0
	if offset == 1 {
		out = m.Coef[0]
	}
	for i, v := range values {
		out += m.Coef[i+offset] * v
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
