package domain

import "time"

// DateLayout formats row dates.
const DateLayout = "2006-01-02"

// ColumnWarning reports a requested column that could not be served.
type ColumnWarning struct {
	Column  string `json:"column"`
	Message string `json:"message"`
}

// SheetInfo describes one sheet of the snapshot.
type SheetInfo struct {
	Name    string     `json:"name"`
	Rows    int        `json:"rows"`
	Columns []string   `json:"columns"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
}

// SheetsResponse lists the sheets of the current snapshot.
type SheetsResponse struct {
	Source   string      `json:"source"`
	LoadedAt time.Time   `json:"loaded_at"`
	Default  string      `json:"default_sheet"`
	Sheets   []SheetInfo `json:"sheets"`
	Warnings []string    `json:"warnings"`
}

// Row is one dated row; Values aligns with the table's Columns.
type Row struct {
	Date   string     `json:"date"`
	Values []*float64 `json:"values"`
}

// TableResponse is a table with missing cells as null.
type TableResponse struct {
	Name     string          `json:"name"`
	Columns  []string        `json:"columns"`
	Rows     []Row           `json:"rows"`
	Warnings []ColumnWarning `json:"warnings,omitempty"`
}

// ReloadResponse reports the outcome of a dataset reload.
type ReloadResponse struct {
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
	Sheets   []string  `json:"sheets"`
	Rows     int       `json:"rows"`
	Warnings []string  `json:"warnings"`
}
