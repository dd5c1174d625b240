package domain

// Variable is one row of the variable list.
type Variable struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Frequency string `json:"frequency"`
}

// Entry kinds
const (
	EntryIndicator = "indicator"
	EntryDerived   = "derived"
)

// LookupResult is the answer to a catalog lookup.
type LookupResult struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Code      string `json:"code,omitempty"`
	Frequency string `json:"frequency,omitempty"`
	Base      string `json:"base,omitempty"`
	Change    string `json:"change,omitempty"`
}
