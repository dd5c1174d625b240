// Package series implements the derived-metric calculations used by the
// dashboard: percent changes, trailing means, rebasing and rolling
// correlations.
//
// Every function works on a plain []float64 that is already sorted by date
// and returns a new slice of the same length. A missing observation is
// represented as NaN, both on input and on output. Lags and windows are
// positional: a gap in reporting shifts the effective calendar lag, so
// callers sample and sort their data before deriving.
//
// # Usage Example
//
//	yoy := series.PercentChange(cpi, series.LagYoY)
//	trend := series.RollingMean(yoy, 12)
//	rebased, err := series.Rebase(production)
//	if err != nil {
//	    return err
//	}
package series
