package catalog

import (
	"fmt"
	"strings"
)

// Frequency is the native reporting cadence of an indicator. Each
// frequency has its own workbook sheet.
type Frequency string

const (
	Daily     Frequency = "daily"
	Weekly    Frequency = "weekly"
	Monthly   Frequency = "monthly"
	Quarterly Frequency = "quarterly"
)

// Frequencies lists the known frequencies in sheet order.
var Frequencies = []Frequency{Daily, Weekly, Monthly, Quarterly}

// ParseFrequency accepts a frequency or sheet name in any case.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Quarterly:
		return true
	}
	return false
}

// SheetName is the capitalized frequency, as used for workbook sheets and
// the variable list.
func (f Frequency) SheetName() string {
	if f == "" {
		return ""
	}
	return strings.ToUpper(string(f[:1])) + string(f[1:])
}

func (f Frequency) String() string { return string(f) }
