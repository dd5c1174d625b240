// Package api contains the query contracts of the macrodash HTTP API.
// Version v1 represents the current stable API version.
package api

import "strings"

// Fields carry three tags: form for query binding, json for field names in
// validation messages, validate for the rules.

// RangeQuery restricts a response to a date range.
type RangeQuery struct {
	Start string `form:"start" json:"start" validate:"omitempty,isodate"`
	End   string `form:"end" json:"end" validate:"omitempty,isodate"`
}

// SheetQuery reads one workbook sheet.
type SheetQuery struct {
	Start string `form:"start" json:"start" validate:"omitempty,isodate"`
	End   string `form:"end" json:"end" validate:"omitempty,isodate"`
}

// SeriesQuery selects variables from a sheet, a frequency or the derived
// monthly frame.
type SeriesQuery struct {
	Sheet     string `form:"sheet" json:"sheet" validate:"omitempty,max=64"`
	Frequency string `form:"frequency" json:"frequency" validate:"omitempty,frequency"`
	Vars      string `form:"vars" json:"vars" validate:"omitempty,max=2048"`
	Start     string `form:"start" json:"start" validate:"omitempty,isodate"`
	End       string `form:"end" json:"end" validate:"omitempty,isodate"`
	Derive    bool   `form:"derive" json:"derive"`
}

// Variables splits the comma-separated variable list.
func (q SeriesQuery) Variables() []string { return SplitList(q.Vars) }

// LineChartQuery renders a selection as a PNG line chart.
type LineChartQuery struct {
	Sheet     string `form:"sheet" json:"sheet" validate:"omitempty,max=64"`
	Frequency string `form:"frequency" json:"frequency" validate:"omitempty,frequency"`
	Vars      string `form:"vars" json:"vars" validate:"required,max=2048"`
	Start     string `form:"start" json:"start" validate:"omitempty,isodate"`
	End       string `form:"end" json:"end" validate:"omitempty,isodate"`
	Derive    bool   `form:"derive" json:"derive"`
	Title     string `form:"title" json:"title" validate:"omitempty,max=200"`
	Width     int    `form:"width" json:"width" validate:"omitempty,min=200,max=4000"`
	Height    int    `form:"height" json:"height" validate:"omitempty,min=150,max=3000"`
}

// Series returns the selection part of the query.
func (q LineChartQuery) Series() SeriesQuery {
	return SeriesQuery{
		Sheet:     q.Sheet,
		Frequency: q.Frequency,
		Vars:      q.Vars,
		Start:     q.Start,
		End:       q.End,
		Derive:    q.Derive,
	}
}

// GalleryQuery renders one gallery chart.
type GalleryQuery struct {
	Start  string `form:"start" json:"start" validate:"omitempty,isodate"`
	End    string `form:"end" json:"end" validate:"omitempty,isodate"`
	Width  int    `form:"width" json:"width" validate:"omitempty,min=200,max=4000"`
	Height int    `form:"height" json:"height" validate:"omitempty,min=150,max=3000"`
}

// CorrelationQuery computes a correlation matrix over monthly variables.
type CorrelationQuery struct {
	Vars  string `form:"vars" json:"vars" validate:"omitempty,max=2048"`
	Start string `form:"start" json:"start" validate:"omitempty,isodate"`
	End   string `form:"end" json:"end" validate:"omitempty,isodate"`
}

// Variables splits the comma-separated variable list.
func (q CorrelationQuery) Variables() []string { return SplitList(q.Vars) }

// DescribeQuery profiles one variable.
type DescribeQuery struct {
	Frequency string `form:"frequency" json:"frequency" validate:"omitempty,frequency"`
	Var       string `form:"var" json:"var" validate:"required,max=128"`
	Start     string `form:"start" json:"start" validate:"omitempty,isodate"`
	End       string `form:"end" json:"end" validate:"omitempty,isodate"`
}

// LookupQuery resolves a variable name or code.
type LookupQuery struct {
	Key string `form:"key" json:"key" validate:"required,max=128"`
}

// ClientLogRequest is a log entry posted by the viewer.
type ClientLogRequest struct {
	Level   string                 `json:"level" validate:"omitempty,oneof=debug info warn error"`
	Message string                 `json:"message" validate:"required,max=2000"`
	Source  string                 `json:"source" validate:"omitempty,max=200"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// SplitList splits a comma-separated list, trimming blanks and dropping
// empty items.
func SplitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
