// Package workbook loads the macroeconomic workbook into memory.
//
// A workbook has one sheet per reporting frequency ("Daily", "Weekly",
// "Monthly", "Quarterly"). Each sheet carries a Date column followed by one
// column per indicator, headed either by the indicator name or its FRED
// code. Two sources are supported:
//
//   - FileSource reads a local .xlsx file with excelize.
//   - SheetsSource reads the same layout from a Google Sheets spreadsheet.
//
// Both produce a *Workbook: an immutable set of date-sorted tables plus the
// warnings raised while reading them. A missing file is not fatal; callers
// check for ErrWorkbookNotFound and fall back to an empty workbook.
package workbook
