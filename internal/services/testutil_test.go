package services

import (
	"context"
	"io"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"macrodash/internal/catalog"
	"macrodash/internal/config"
	"macrodash/internal/dataset"
	"macrodash/internal/table"
	"macrodash/internal/workbook"
)

const fixtureMonths = 60

type stubSource struct {
	wb  *workbook.Workbook
	err error
}

func (s *stubSource) Load(context.Context) (*workbook.Workbook, error) { return s.wb, s.err }
func (s *stubSource) String() string                                  { return "fixture.xlsx" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func testDataConfig() config.DataConfig {
	return config.Default().Data
}

// fixtureWorkbook holds five years of monthly indicators from 2017 and a
// few daily S&P 500 closes in 2018. Unemployment is headed by its code.
// Retail Sales misses one month.
func fixtureWorkbook(t *testing.T) *workbook.Workbook {
	t.Helper()
	dates := make([]time.Time, fixtureMonths)
	cols := map[string][]float64{
		"CPI":                   make([]float64, fixtureMonths),
		"Federal Funds Rate":    make([]float64, fixtureMonths),
		"UNRATE":                make([]float64, fixtureMonths),
		"Retail Sales":          make([]float64, fixtureMonths),
		"Industrial Production": make([]float64, fixtureMonths),
	}
	for i := range dates {
		x := float64(i)
		dates[i] = time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		cols["CPI"][i] = 240 * math.Pow(1.002, x) * (1 + 0.003*math.Sin(1.3*x))
		cols["Federal Funds Rate"][i] = 1 + 0.02*x + 0.2*math.Cos(0.5*x)
		cols["Retail Sales"][i] = 500000 + 1000*x + 3000*math.Cos(0.9*x)
		cols["Industrial Production"][i] = 100 + 2*math.Sin(0.4*x) + 0.05*x
		cols["UNRATE"][i] = 5 - 0.01*x + 0.3*math.Sin(0.7*x)
	}
	cols["Retail Sales"][7] = math.NaN()

	monthly, err := table.New("Monthly", dates,
		[]string{"CPI", "Federal Funds Rate", "UNRATE", "Retail Sales", "Industrial Production"}, cols)
	require.NoError(t, err)

	days := []time.Time{
		time.Date(2018, time.March, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2018, time.March, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2018, time.March, 5, 0, 0, 0, 0, time.UTC),
	}
	daily, err := table.New("Daily", days, []string{"S&P 500"}, map[string][]float64{"S&P 500": {2700, 2690, 2720}})
	require.NoError(t, err)

	return workbook.New("fixture.xlsx", []*table.Table{daily, monthly}, nil)
}

// loadedStore returns a store that has loaded the fixture workbook.
func loadedStore(t *testing.T) *dataset.Store {
	t.Helper()
	store := dataset.NewStore(&stubSource{wb: fixtureWorkbook(t)}, catalog.Default(), discardLogger())
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}

// emptyStore returns a store whose workbook was not found.
func emptyStore(t *testing.T) *dataset.Store {
	t.Helper()
	store := dataset.NewStore(&stubSource{err: workbook.ErrWorkbookNotFound}, catalog.Default(), discardLogger())
	_, err := store.Load(context.Background())
	require.NoError(t, err)
	return store
}
