package catalog

import (
	"fmt"
	"strings"
)

// Kind is the type of a derived percent-change indicator.
type Kind string

const (
	MoM Kind = "MoM"
	YoY Kind = "YoY"
)

// Lag returns the positional lag of the kind on monthly data.
func (k Kind) Lag() int {
	if k == YoY {
		return 12
	}
	return 1
}

func (k Kind) suffix() string { return " " + string(k) + " %" }

// DerivedName is the canonical name of a percent-change indicator, e.g.
// "CPI YoY %".
func DerivedName(base string, kind Kind) string {
	return base + kind.suffix()
}

func legacyDerivedName(base string, kind Kind) string {
	return DerivedName(base, kind) + " Change"
}

// ParseDerivedName splits a canonical derived name into its base and kind.
func ParseDerivedName(name string) (base string, kind Kind, ok bool) {
	name = strings.Join(strings.Fields(name), " ")
	for _, k := range []Kind{MoM, YoY} {
		if b, found := strings.CutSuffix(name, k.suffix()); found && b != "" {
			return b, k, true
		}
	}
	return "", "", false
}

// TrendName names the trailing-mean trend of col.
func TrendName(col string) string { return col + " Trend" }

// RebasedName names col rebased to 100.
func RebasedName(col string) string { return col + " (Rebased)" }

// LagName names col shifted k rows later.
func LagName(col string, k int) string { return fmt.Sprintf("%s (Lag %d)", col, k) }
