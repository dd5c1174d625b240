package workbook

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"macrodash/internal/table"
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"1/2/06",
	"01-02-06",
	"2006/01/02",
}

// parseSheet turns raw rows, header first, into a date-sorted table.
// Duplicate dates keep the last row.
func parseSheet(name string, rows [][]string, date1904 bool) (*table.Table, []string, error) {
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", name)
	}

	header := rows[0]
	dateIdx := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(h), table.DateColumn) {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return nil, nil, fmt.Errorf("sheet %q has no %s column", name, table.DateColumn)
	}

	var (
		warnings []string
		columns  []string
		colIdx   []int
		seen     = make(map[string]bool)
	)
	for i, h := range header {
		h = strings.TrimSpace(h)
		if i == dateIdx || h == "" {
			continue
		}
		if seen[h] {
			warnings = append(warnings, fmt.Sprintf("sheet %s: duplicate column %q ignored", name, h))
			continue
		}
		seen[h] = true
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}

	type row struct {
		date   time.Time
		values []float64
	}
	parsed := make([]row, 0, len(rows)-1)
	skipped := 0
	for _, raw := range rows[1:] {
		if isBlank(raw) {
			continue
		}
		d, ok := parseDate(cell(raw, dateIdx), date1904)
		if !ok {
			skipped++
			continue
		}
		values := make([]float64, len(columns))
		for j, i := range colIdx {
			values[j] = parseNumber(cell(raw, i))
		}
		parsed = append(parsed, row{date: d, values: values})
	}
	if skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("sheet %s: %d rows without a valid date skipped", name, skipped))
	}

	sort.SliceStable(parsed, func(a, b int) bool { return parsed[a].date.Before(parsed[b].date) })

	dates := make([]time.Time, 0, len(parsed))
	data := make(map[string][]float64, len(columns))
	for _, col := range columns {
		data[col] = make([]float64, 0, len(parsed))
	}
	for _, r := range parsed {
		last := len(dates) - 1
		if last >= 0 && dates[last].Equal(r.date) {
			for j, col := range columns {
				data[col][last] = r.values[j]
			}
			continue
		}
		dates = append(dates, r.date)
		for j, col := range columns {
			data[col] = append(data[col], r.values[j])
		}
	}

	t, err := table.New(name, dates, columns, data)
	if err != nil {
		return nil, warnings, err
	}
	return t, warnings, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseDate accepts an Excel serial number or a handful of text layouts.
// The time of day is dropped.
func parseDate(s string, date1904 bool) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			return time.Time{}, false
		}
		return midnight(t), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return midnight(t), true
		}
	}
	return time.Time{}, false
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseNumber reads a cell as float64. Blank cells and FRED's "." marker
// are missing.
func parseNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" || s == "." {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
