// Package charts renders the dashboard's PNG charts: multi-series line
// charts (optionally dual-axis and dashed), 2x2 panel grids, annotated
// correlation heatmaps, and the fixed gallery of analysis charts.
//
// Line charts are drawn with go-chart. Grids compose rendered panels with
// image/draw, and heatmaps are painted cell by cell with a basicfont
// overlay, since go-chart has neither.
package charts
