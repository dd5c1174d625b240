package exporter

import (
	"errors"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"macrodash/internal/series"
	"macrodash/internal/table"
)

// ErrNoTables is returned when a workbook would have no sheets.
var ErrNoTables = errors.New("no tables to export")

// dateFormat is the built-in yyyy-mm-dd number format.
const dateFormat = "yyyy-mm-dd"

// WriteXLSX writes each table to its own sheet, named after the table.
func WriteXLSX(w io.Writer, tables ...*table.Table) error {
	if len(tables) == 0 {
		return ErrNoTables
	}

	f := excelize.NewFile()
	defer f.Close()

	custom := dateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &custom})
	if err != nil {
		return fmt.Errorf("failed to create date style: %w", err)
	}

	first := f.GetSheetName(0)
	for i, t := range tables {
		name := sheetName(t, i)
		if i == 0 {
			if err := f.SetSheetName(first, name); err != nil {
				return fmt.Errorf("sheet %q: %w", name, err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("sheet %q: %w", name, err)
		}
		if err := writeSheet(f, name, t, dateStyle); err != nil {
			return err
		}
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, name string, t *table.Table, dateStyle int) error {
	sw, err := f.NewStreamWriter(name)
	if err != nil {
		return fmt.Errorf("sheet %q: %w", name, err)
	}

	cols := t.Columns()
	header := make([]interface{}, 0, len(cols)+1)
	header = append(header, table.DateColumn)
	for _, c := range cols {
		header = append(header, c)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("sheet %q header: %w", name, err)
	}

	data := make([][]float64, len(cols))
	for j, col := range cols {
		data[j], _ = t.Column(col)
	}
	for i, d := range t.Dates() {
		row := make([]interface{}, len(cols)+1)
		row[0] = excelize.Cell{StyleID: dateStyle, Value: d}
		for j := range cols {
			if v := data[j][i]; !series.Missing(v) {
				row[j+1] = v
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("sheet %q row %d: %w", name, i+2, err)
		}
	}
	return sw.Flush()
}

func sheetName(t *table.Table, i int) string {
	if t.Name() != "" {
		return t.Name()
	}
	return fmt.Sprintf("Sheet%d", i+1)
}
