package exporter

import (
	"strconv"
	"time"

	"macrodash/internal/series"
)

// DateLayout is the layout of the Date column in CSV output.
const DateLayout = "2006-01-02"

// formatFloat renders a value with the given number of decimals, or the
// shortest exact representation when precision is negative. Missing values
// are empty.
func formatFloat(v float64, precision int) string {
	if series.Missing(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', precision, 64)
}

func formatDate(t time.Time, layout string) string {
	if layout == "" {
		layout = DateLayout
	}
	return t.Format(layout)
}
