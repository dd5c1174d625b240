package series

import (
	"errors"
	"fmt"
	"math"
)

// Positional lags for monthly data.
const (
	LagMoM = 1
	LagYoY = 12
)

// RebaseBase is the value a rebased series takes at its anchor.
const RebaseBase = 100.0

var (
	// ErrZeroBaseline is returned when the rebase anchor is zero.
	ErrZeroBaseline = errors.New("rebase baseline is zero")
	// ErrMissingBaseline is returned when the rebase anchor is missing.
	ErrMissingBaseline = errors.New("rebase baseline is missing")
	// ErrEmptySeries is returned when a series has no observations.
	ErrEmptySeries = errors.New("series is empty")
	// ErrInvalidWindow is returned for a lag or window smaller than one.
	ErrInvalidWindow = errors.New("window must be at least 1")
)

// Missing reports whether v is an undefined observation.
func Missing(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}

// Undefined returns a slice of n missing values.
func Undefined(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// PercentChange returns (v[t]/v[t-k] - 1) * 100 for every position where
// both observations exist. A zero denominator yields a missing value.
func PercentChange(values []float64, k int) []float64 {
	out := Undefined(len(values))
	if k < 1 {
		return out
	}
	for t := k; t < len(values); t++ {
		cur, prev := values[t], values[t-k]
		if Missing(cur) || Missing(prev) || prev == 0 {
			continue
		}
		out[t] = (cur/prev - 1) * 100
	}
	return out
}

// RollingMean returns the trailing mean of the n most recent values ending
// at each position. Positions with an incomplete or gapped window are
// missing.
func RollingMean(values []float64, n int) []float64 {
	out := Undefined(len(values))
	if n < 1 {
		return out
	}

	for t := n - 1; t < len(values); t++ {
		sum := 0.0
		complete := true
		for _, v := range values[t-n+1 : t+1] {
			if Missing(v) {
				complete = false
				break
			}
			sum += v
		}
		if complete {
			out[t] = sum / float64(n)
		}
	}
	return out
}

// Rebase scales values so the first observation equals 100. The first
// element is the anchor; callers drop missing rows before rebasing.
func Rebase(values []float64) ([]float64, error) {
	if len(values) == 0 {
		return nil, ErrEmptySeries
	}
	base := values[0]
	if Missing(base) {
		return nil, ErrMissingBaseline
	}
	if base == 0 {
		return nil, ErrZeroBaseline
	}

	out := make([]float64, len(values))
	out[0] = RebaseBase
	for i := 1; i < len(values); i++ {
		if Missing(values[i]) {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i] * RebaseBase / base
	}
	return out, nil
}

// RollingCorrelation returns the Pearson correlation of the n most recent
// paired observations ending at each position. A window with any missing
// pair, or with zero variance on either side, is missing.
func RollingCorrelation(x, y []float64, n int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("rolling correlation: length mismatch %d != %d", len(x), len(y))
	}
	if n < 1 {
		return nil, ErrInvalidWindow
	}

	out := Undefined(len(x))
	for t := n - 1; t < len(x); t++ {
		r, ok := pearson(x[t-n+1:t+1], y[t-n+1:t+1])
		if ok {
			out[t] = r
		}
	}
	return out, nil
}

// Shift moves values k positions later, filling the head with missing
// values. A negative k leads the series instead.
func Shift(values []float64, k int) []float64 {
	out := Undefined(len(values))
	for i := range values {
		j := i - k
		if j >= 0 && j < len(values) {
			out[i] = values[j]
		}
	}
	return out
}

// Valid returns the number of defined observations.
func Valid(values []float64) int {
	n := 0
	for _, v := range values {
		if !Missing(v) {
			n++
		}
	}
	return n
}

// Pearson returns the correlation of the pairs where both values exist.
// ok is false when fewer than two complete pairs remain or either side has
// zero variance.
func Pearson(x, y []float64) (r float64, ok bool) {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) || Missing(x[i]) || Missing(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return pearson(xs, ys)
}

func pearson(x, y []float64) (float64, bool) {
	n := len(x)
	if n < 2 {
		return math.NaN(), false
	}
	var mx, my float64
	for i := 0; i < n; i++ {
		if Missing(x[i]) || Missing(y[i]) {
			return math.NaN(), false
		}
		mx += x[i]
		my += y[i]
	}
	mx /= float64(n)
	my /= float64(n)

	var sxy, sxx, syy float64
	for i := 0; i < n; i++ {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN(), false
	}
	r := sxy / math.Sqrt(sxx*syy)
	// clamp rounding noise
	return math.Max(-1, math.Min(1, r)), true
}
