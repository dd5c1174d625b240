package domain

import "time"

// Inference holds the tests of one covariance estimator, aligned with the
// report's Variables.
type Inference struct {
	CovType string     `json:"cov_type"`
	MaxLags int        `json:"max_lags,omitempty"`
	StdErr  []*float64 `json:"std_err"`
	TStat   []*float64 `json:"t_stat"`
	PValue  []*float64 `json:"p_value"`
}

// VIF is the variance inflation factor of one design column.
type VIF struct {
	Variable string   `json:"variable"`
	VIF      *float64 `json:"vif"`
}

// Coefficient is a named estimate.
type Coefficient struct {
	Name  string   `json:"name"`
	Value *float64 `json:"value"`
}

// LjungBox is a residual autocorrelation test.
type LjungBox struct {
	Statistic *float64 `json:"statistic"`
	PValue    *float64 `json:"p_value"`
	Lags      int      `json:"lags"`
}

// Regression is a fitted regression with diagnostics.
type Regression struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Dependent    string        `json:"dependent"`
	Variables    []string      `json:"variables"`
	Observations int           `json:"observations"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Coefficients []*float64    `json:"coefficients"`
	R2           *float64      `json:"r2"`
	AdjR2        *float64      `json:"adj_r2"`
	FStat        *float64      `json:"f_stat"`
	FPValue      *float64      `json:"f_p_value"`
	Inference    []Inference   `json:"inference"`
	VIF          []VIF         `json:"vif,omitempty"`
	DurbinWatson *float64      `json:"durbin_watson"`
	LjungBox     *LjungBox     `json:"ljung_box,omitempty"`
	Standardized []Coefficient `json:"standardized_betas,omitempty"`
	Summary      string        `json:"summary"`
}

// Correlation is a symmetric matrix of Pearson coefficients with the
// number of complete pairs behind each cell.
type Correlation struct {
	Variables []string        `json:"variables"`
	Values    [][]*float64    `json:"values"`
	Pairs     [][]int         `json:"pairs"`
	Warnings  []ColumnWarning `json:"warnings,omitempty"`
}

// Stationarity is an augmented Dickey-Fuller result.
type Stationarity struct {
	Statistic      *float64           `json:"statistic"`
	PValue         *float64           `json:"p_value"`
	Lags           int                `json:"lags"`
	Observations   int                `json:"observations"`
	CriticalValues map[string]float64 `json:"critical_values,omitempty"`
	Stationary     bool               `json:"stationary"`
}

// Description profiles one variable.
type Description struct {
	Name         string        `json:"name"`
	Source       string        `json:"source"`
	Count        int           `json:"count"`
	Missing      int           `json:"missing"`
	Mean         *float64      `json:"mean"`
	Std          *float64      `json:"std"`
	Min          *float64      `json:"min"`
	Q1           *float64      `json:"q1"`
	Median       *float64      `json:"median"`
	Q3           *float64      `json:"q3"`
	Max          *float64      `json:"max"`
	Stationarity *Stationarity `json:"stationarity,omitempty"`
}
