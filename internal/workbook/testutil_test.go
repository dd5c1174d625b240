package workbook

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeWorkbook saves sheets (name -> rows, header first) to a temp file.
// nil cells are left blank.
func writeWorkbook(t *testing.T, order []string, sheets map[string][][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, name := range order {
		if i == 0 {
			require.NoError(t, f.SetSheetName(f.GetSheetName(0), name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for r, row := range sheets[name] {
			for c, v := range row {
				if v == nil {
					continue
				}
				cell, err := excelize.CoordinatesToCellName(c+1, r+1)
				require.NoError(t, err)
				require.NoError(t, f.SetCellValue(name, cell, v))
			}
		}
	}

	path := filepath.Join(t.TempDir(), "Economic_Indicators.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type timeOnly struct {
	Year  int
	Month time.Month
	Day   int
}

func days(ts []time.Time) []timeOnly {
	out := make([]timeOnly, len(ts))
	for i, t := range ts {
		y, m, d := t.Date()
		out[i] = timeOnly{y, m, d}
	}
	return out
}
