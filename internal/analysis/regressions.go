package analysis

import (
	"context"
	"fmt"
	"time"

	"macrodash/internal/catalog"
	"macrodash/internal/table"
)

// Column names the standard regressions read from the monthly frame.
const (
	ColUnemployment   = "Unemployment Rate"
	ColRetailSales    = "Retail Sales"
	ColIndustrialProd = "Industrial Production"
	ColFedFunds       = "Federal Funds Rate"
	ColCPI            = "CPI"
)

// FedFundsLag is the lag, in monthly rows, of the policy-rate regressor.
const FedFundsLag = 3

// DefaultHACLags is the Newey-West truncation lag.
const DefaultHACLags = 1

// Spec describes a regression over columns of a table.
type Spec struct {
	Name       string
	Title      string
	Dependent  string
	Regressors []string
	HACLags    int
	Robust     bool
}

// LagSpec regresses CPI YoY % on the Fed Funds Rate lagged three months.
func LagSpec() Spec {
	return Spec{
		Name:       "lag",
		Title:      "CPI YoY on Federal Funds Rate lagged 3 months",
		Dependent:  catalog.DerivedName(ColCPI, catalog.YoY),
		Regressors: []string{catalog.LagName(ColFedFunds, FedFundsLag)},
	}
}

// MultiSpec regresses the unemployment rate on retail sales, CPI YoY %
// and industrial production, with robust errors and diagnostics.
func MultiSpec() Spec {
	return Spec{
		Name:       "multi",
		Title:      "Unemployment Rate on Retail Sales, CPI YoY and Industrial Production",
		Dependent:  ColUnemployment,
		Regressors: []string{ColRetailSales, catalog.DerivedName(ColCPI, catalog.YoY), ColIndustrialProd},
		HACLags:    DefaultHACLags,
		Robust:     true,
	}
}

// Specs lists the standard regressions by name.
func Specs() map[string]Spec {
	lag, multi := LagSpec(), MultiSpec()
	return map[string]Spec{lag.Name: lag, multi.Name: multi}
}

// Report is a fitted regression with its diagnostics.
type Report struct {
	Name         string        `json:"name"`
	Title        string        `json:"title"`
	Dependent    string        `json:"dependent"`
	Variables    []string      `json:"variables"`
	Observations int           `json:"observations"`
	Start        time.Time     `json:"start"`
	End          time.Time     `json:"end"`
	Coefficients []float64     `json:"coefficients"`
	R2           float64       `json:"r2"`
	AdjR2        float64       `json:"adj_r2"`
	FStat        float64       `json:"f_stat"`
	FPValue      float64       `json:"f_p_value"`
	Inference    []Inference   `json:"inference"`
	VIF          []VIF         `json:"vif,omitempty"`
	DurbinWatson float64       `json:"durbin_watson"`
	LjungBox     *LjungBox     `json:"ljung_box,omitempty"`
	Standardized []Coefficient `json:"standardized_betas,omitempty"`

	model *Model
}

// Coefficient is a named estimate.
type Coefficient struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Model returns the underlying fit.
func (r *Report) Model() *Model { return r.model }

// PrepareMonthly adds the lagged policy-rate column the lag regression
// needs. The input must be the monthly frame with percent changes added.
func PrepareMonthly(monthly *table.Table) (*table.Table, error) {
	if !monthly.Has(ColFedFunds) {
		return monthly, nil
	}
	return monthly.Shift(ColFedFunds, FedFundsLag, catalog.LagName(ColFedFunds, FedFundsLag))
}

// Run fits spec on the rows of t where every named column is present.
func Run(ctx context.Context, t *table.Table, spec Spec) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cols := append([]string{spec.Dependent}, spec.Regressors...)
	frame, err := t.DropMissing(cols...)
	if err != nil {
		return nil, fmt.Errorf("%s regression: %w", spec.Name, err)
	}
	if frame.Len() == 0 {
		return nil, fmt.Errorf("%s regression: %w", spec.Name, ErrEmptyDataset)
	}

	y, _ := frame.Column(spec.Dependent)
	x := make([][]float64, len(spec.Regressors))
	for i, col := range spec.Regressors {
		x[i], _ = frame.Column(col)
	}

	m, err := OLS(spec.Dependent, y, spec.Regressors, x)
	if err != nil {
		return nil, fmt.Errorf("%s regression: %w", spec.Name, err)
	}

	start, end, _ := frame.Bounds()
	r := &Report{
		Name:         spec.Name,
		Title:        spec.Title,
		Dependent:    spec.Dependent,
		Variables:    m.Names,
		Observations: m.N,
		Start:        start,
		End:          end,
		Coefficients: m.Coef,
		R2:           m.R2,
		AdjR2:        m.AdjR2,
		FStat:        m.FStat,
		FPValue:      m.FPValue,
		DurbinWatson: m.DurbinWatson(),
		LjungBox:     m.LjungBox(DefaultLjungBoxLags),
		model:        m,
	}

	covs := []CovType{NonRobust}
	if spec.Robust {
		covs = append(covs, HC1, HAC)
	}
	for _, c := range covs {
		inf, err := m.Inference(c, spec.HACLags)
		if err != nil {
			return nil, fmt.Errorf("%s regression: %w", spec.Name, err)
		}
		r.Inference = append(r.Inference, inf)
	}

	if spec.Robust {
		if r.VIF, err = m.VIFs(); err != nil {
			return nil, fmt.Errorf("%s regression: %w", spec.Name, err)
		}
		std, err := StandardizedBetas(y, spec.Regressors, x)
		if err != nil {
			return nil, fmt.Errorf("%s regression: standardized betas: %w", spec.Name, err)
		}
		for i, name := range spec.Regressors {
			r.Standardized = append(r.Standardized, Coefficient{Name: name, Value: std.Coef[i+1]})
		}
	}

	return r, nil
}
