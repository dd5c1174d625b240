package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Len(t, c.Indicators(), 37)
	assert.Len(t, c.Derived(), 8)
	assert.Equal(t, 45, c.Len())
	assert.Equal(t, []string{"CPI", "Core CPI", "Core PCE", "PCE"}, c.DerivedBases())
}

func TestLookup(t *testing.T) {
	c := Default()

	tests := []struct {
		key      string
		expected string
		found    bool
	}{
		{key: "Unemployment Rate", expected: "Unemployment Rate", found: true},
		{key: "  unemployment   RATE ", expected: "Unemployment Rate", found: true},
		{key: "UNRATE", expected: "Unemployment Rate", found: true},
		{key: "unrate", expected: "Unemployment Rate", found: true},
		{key: "cpi yoy %", expected: "CPI YoY %", found: true},
		{key: "CPI YoY % Change", expected: "CPI YoY %", found: true},
		{key: "Core PCE MoM % Change", expected: "Core PCE MoM %", found: true},
		{key: "S&P 500", expected: "S&P 500", found: true},
		{key: "Bitcoin", found: false},
		{key: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry, ok := c.Lookup(tt.key)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.expected, entry.Name())
			}
		})
	}
}

func TestLookupEntryKinds(t *testing.T) {
	c := Default()

	entry, ok := c.Lookup("CPIAUCSL")
	require.True(t, ok)
	require.NotNil(t, entry.Indicator)
	assert.Nil(t, entry.Derived)
	assert.Equal(t, Monthly, entry.Indicator.Frequency)

	entry, ok = c.Lookup("Core CPI YoY %")
	require.True(t, ok)
	require.NotNil(t, entry.Derived)
	assert.Equal(t, "Core CPI", entry.Derived.Base)
	assert.Equal(t, YoY, entry.Derived.Kind)
	assert.Equal(t, 12, entry.Derived.Kind.Lag())
}

func TestNewRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name       string
		indicators []Indicator
		derived    []string
		err        error
	}{
		{
			name: "same name twice",
			indicators: []Indicator{
				{Name: "CPI", Code: "CPIAUCSL", Frequency: Monthly},
				{Name: "cpi", Code: "OTHER", Frequency: Monthly},
			},
			err: ErrDuplicateKey,
		},
		{
			name: "name collides with another code",
			indicators: []Indicator{
				{Name: "Nominal GDP", Code: "GDP", Frequency: Quarterly},
				{Name: "gdp", Code: "GDPX", Frequency: Quarterly},
			},
			err: ErrDuplicateKey,
		},
		{
			name:       "derived listed twice",
			indicators: []Indicator{{Name: "CPI", Code: "CPIAUCSL", Frequency: Monthly}},
			derived:    []string{"CPI MoM %", "CPI  MoM %"},
			err:        ErrDuplicateKey,
		},
		{
			name:       "derived with unknown base",
			indicators: []Indicator{{Name: "CPI", Code: "CPIAUCSL", Frequency: Monthly}},
			derived:    []string{"PPI MoM %"},
			err:        ErrUnknownBase,
		},
		{
			name:       "derived without canonical suffix",
			indicators: []Indicator{{Name: "CPI", Code: "CPIAUCSL", Frequency: Monthly}},
			derived:    []string{"CPI month change"},
			err:        ErrInvalidEntry,
		},
		{
			name:       "missing code",
			indicators: []Indicator{{Name: "CPI", Frequency: Monthly}},
			err:        ErrInvalidEntry,
		},
		{
			name:       "bad frequency",
			indicators: []Indicator{{Name: "CPI", Code: "CPIAUCSL", Frequency: "hourly"}},
			err:        ErrInvalidEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.indicators, tt.derived)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestDerivedNamesAreCanonicalized(t *testing.T) {
	c, err := New([]Indicator{{Name: "CPI", Code: "CPIAUCSL", Frequency: "Monthly"}}, []string{"cpi YoY %"})
	require.NoError(t, err)

	derived := c.Derived()
	require.Len(t, derived, 1)
	assert.Equal(t, "CPI YoY %", derived[0].Name)
	assert.Equal(t, Monthly, c.Indicators()[0].Frequency)
}

func TestVariables(t *testing.T) {
	rows := Default().Variables()
	require.Len(t, rows, 45)

	assert.Equal(t, VariableRow{Name: "Real GDP", Code: "GDPC1", Frequency: "Quarterly"}, rows[0])
	assert.Equal(t, VariableRow{Name: "CPI MoM %", Code: DerivedCode, Frequency: DerivedFrequency}, rows[37])
	assert.Equal(t, "Core PCE YoY %", rows[44].Name)
}

func TestByFrequency(t *testing.T) {
	daily := Default().ByFrequency(Daily)
	names := make([]string, 0, len(daily))
	for _, ind := range daily {
		names = append(names, ind.Name)
	}
	assert.Contains(t, names, "S&P 500")
	assert.Contains(t, names, "10-Year Treasury Yield")
	assert.NotContains(t, names, "CPI")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
indicators:
  - {name: CPI, code: CPIAUCSL, frequency: monthly}
derived:
  - CPI YoY %
`), 0o644))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("indicators:\n  - {name: CPI, code: X, frequency: monthly, unit: pct}\n"))
	assert.Error(t, err)
}

func TestParseDerivedName(t *testing.T) {
	base, kind, ok := ParseDerivedName("Core PCE  YoY %")
	require.True(t, ok)
	assert.Equal(t, "Core PCE", base)
	assert.Equal(t, YoY, kind)

	_, _, ok = ParseDerivedName("MoM %")
	assert.False(t, ok)
}

func TestNamingHelpers(t *testing.T) {
	assert.Equal(t, "CPI MoM %", DerivedName("CPI", MoM))
	assert.Equal(t, "CPI YoY % Trend", TrendName("CPI YoY %"))
	assert.Equal(t, "Industrial Production (Rebased)", RebasedName("Industrial Production"))
	assert.Equal(t, "Federal Funds Rate (Lag 3)", LagName("Federal Funds Rate", 3))
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency(" Monthly ")
	require.NoError(t, err)
	assert.Equal(t, Monthly, f)
	assert.Equal(t, "Monthly", f.SheetName())

	_, err = ParseFrequency("annual")
	assert.Error(t, err)
}
