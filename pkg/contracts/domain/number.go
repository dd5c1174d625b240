// Package domain contains the JSON payloads of the macrodash API.
//
// Statistics may be undefined (a missing cell, a zero-variance
// correlation, an infinite variance inflation factor). Such values are
// carried as nil pointers and encode as JSON null.
package domain

import "math"

// Number returns a pointer to v, or nil when v is NaN or infinite.
func Number(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Numbers converts a slice with Number.
func Numbers(values []float64) []*float64 {
	if values == nil {
		return nil
	}
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = Number(v)
	}
	return out
}

// Matrix converts every row with Numbers.
func Matrix(values [][]float64) [][]*float64 {
	out := make([][]*float64, len(values))
	for i, row := range values {
		out[i] = Numbers(row)
	}
	return out
}
