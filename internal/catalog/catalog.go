// Package catalog defines the indicator catalog: the static mapping from a
// human-readable indicator name to its FRED series code and native
// frequency, plus the derived indicators computed from them.
//
// A Catalog is built once at startup and never mutated. Names, codes and
// legacy spellings of derived names all share one normalized key space;
// a key that would resolve to two different entries is rejected when the
// catalog is constructed, not when it is queried.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Derived code and frequency labels shown in the variable list.
const (
	DerivedCode      = "N/A (Derived)"
	DerivedFrequency = "Calculated"
)

var (
	// ErrDuplicateKey is returned when two entries normalize to the same key.
	ErrDuplicateKey = errors.New("duplicate catalog key")
	// ErrInvalidEntry is returned for an incomplete or malformed entry.
	ErrInvalidEntry = errors.New("invalid catalog entry")
	// ErrUnknownBase is returned when a derived indicator names a base the
	// catalog does not define.
	ErrUnknownBase = errors.New("derived indicator has unknown base")
)

// Indicator describes one source series.
type Indicator struct {
	Name      string    `yaml:"name" json:"name"`
	Code      string    `yaml:"code" json:"code"`
	Frequency Frequency `yaml:"frequency" json:"frequency"`
	Group     string    `yaml:"group" json:"group,omitempty"`
}

// Derived describes an indicator computed from a base indicator.
type Derived struct {
	Name string `json:"name"`
	Base string `json:"base"`
	Kind Kind   `json:"kind"`
}

// Entry is the result of a catalog lookup: exactly one of Indicator and
// Derived is set.
type Entry struct {
	Indicator *Indicator
	Derived   *Derived
}

// Name returns the canonical name of the entry.
func (e Entry) Name() string {
	if e.Derived != nil {
		return e.Derived.Name
	}
	if e.Indicator != nil {
		return e.Indicator.Name
	}
	return ""
}

// VariableRow is one line of the variable list.
type VariableRow struct {
	Name      string `json:"name"`
	Code      string `json:"code"`
	Frequency string `json:"frequency"`
}

// Catalog is the immutable indicator catalog.
type Catalog struct {
	indicators []Indicator
	derived    []Derived
	byKey      map[string]Entry
}

type document struct {
	Indicators []Indicator `yaml:"indicators"`
	Derived    []string    `yaml:"derived"`
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from its YAML form.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(doc.Indicators, doc.Derived)
}

// New validates the entries and builds the lookup index.
func New(indicators []Indicator, derivedNames []string) (*Catalog, error) {
	c := &Catalog{
		indicators: make([]Indicator, 0, len(indicators)),
		derived:    make([]Derived, 0, len(derivedNames)),
		byKey:      make(map[string]Entry, 2*len(indicators)+2*len(derivedNames)),
	}

	for _, ind := range indicators {
		ind.Name = strings.TrimSpace(ind.Name)
		ind.Code = strings.TrimSpace(ind.Code)
		if ind.Name == "" || ind.Code == "" {
			return nil, fmt.Errorf("%w: indicator %q needs a name and a code", ErrInvalidEntry, ind.Name)
		}
		freq, err := ParseFrequency(string(ind.Frequency))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidEntry, ind.Name, err)
		}
		ind.Frequency = freq
		c.indicators = append(c.indicators, ind)
	}

	// Index after the slice is final so entries point at stable elements.
	for i := range c.indicators {
		ind := &c.indicators[i]
		entry := Entry{Indicator: ind}
		if err := c.index(ind.Name, entry); err != nil {
			return nil, err
		}
		if err := c.index(ind.Code, entry); err != nil {
			return nil, err
		}
	}

	for _, name := range derivedNames {
		base, kind, ok := ParseDerivedName(name)
		if !ok {
			return nil, fmt.Errorf("%w: derived name %q must end in %q or %q",
				ErrInvalidEntry, name, MoM.suffix(), YoY.suffix())
		}
		entry, found := c.Lookup(base)
		if !found || entry.Indicator == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBase, name)
		}
		c.derived = append(c.derived, Derived{
			Name: DerivedName(entry.Indicator.Name, kind),
			Base: entry.Indicator.Name,
			Kind: kind,
		})
	}
	for i := range c.derived {
		d := &c.derived[i]
		entry := Entry{Derived: d}
		if err := c.index(d.Name, entry); err != nil {
			return nil, err
		}
		if err := c.index(legacyDerivedName(d.Base, d.Kind), entry); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) index(key string, entry Entry) error {
	k := Normalize(key)
	if k == "" {
		return fmt.Errorf("%w: empty key for %q", ErrInvalidEntry, entry.Name())
	}
	if existing, ok := c.byKey[k]; ok {
		return fmt.Errorf("%w: %q resolves to both %q and %q", ErrDuplicateKey, key, existing.Name(), entry.Name())
	}
	c.byKey[k] = entry
	return nil
}

// Normalize folds case and collapses whitespace.
func Normalize(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), " "))
}

// Lookup resolves a name, code or legacy derived spelling.
func (c *Catalog) Lookup(key string) (Entry, bool) {
	e, ok := c.byKey[Normalize(key)]
	return e, ok
}

// Resolve returns the canonical name for key, or key unchanged when the
// catalog does not know it.
func (c *Catalog) Resolve(key string) string {
	if e, ok := c.Lookup(key); ok {
		return e.Name()
	}
	return key
}

// Indicators returns the source indicators in catalog order.
func (c *Catalog) Indicators() []Indicator {
	return append([]Indicator(nil), c.indicators...)
}

// Derived returns the derived indicators in catalog order.
func (c *Catalog) Derived() []Derived {
	return append([]Derived(nil), c.derived...)
}

// ByFrequency returns the indicators reported at f.
func (c *Catalog) ByFrequency(f Frequency) []Indicator {
	var out []Indicator
	for _, ind := range c.indicators {
		if ind.Frequency == f {
			out = append(out, ind)
		}
	}
	return out
}

// DerivedBases returns the distinct base indicators of derived entries,
// sorted by name.
func (c *Catalog) DerivedBases() []string {
	seen := make(map[string]bool)
	var out []string
	for _, d := range c.derived {
		if !seen[d.Base] {
			seen[d.Base] = true
			out = append(out, d.Base)
		}
	}
	sort.Strings(out)
	return out
}

// Variables returns the variable list: source indicators first, then
// derived indicators.
func (c *Catalog) Variables() []VariableRow {
	rows := make([]VariableRow, 0, len(c.indicators)+len(c.derived))
	for _, ind := range c.indicators {
		rows = append(rows, VariableRow{Name: ind.Name, Code: ind.Code, Frequency: ind.Frequency.SheetName()})
	}
	for _, d := range c.derived {
		rows = append(rows, VariableRow{Name: d.Name, Code: DerivedCode, Frequency: DerivedFrequency})
	}
	return rows
}

// Len returns the total number of entries.
func (c *Catalog) Len() int {
	return len(c.indicators) + len(c.derived)
}
