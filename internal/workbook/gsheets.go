package workbook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"macrodash/internal/table"
)

// SheetsSource reads the workbook layout from a Google Sheets spreadsheet,
// one tab per frequency.
type SheetsSource struct {
	service       *sheets.Service
	spreadsheetID string
	logger        *slog.Logger
}

// NewSheetsSource creates a client for spreadsheetID. Credentials and
// endpoints are passed as client options.
func NewSheetsSource(ctx context.Context, spreadsheetID string, logger *slog.Logger, opts ...option.ClientOption) (*SheetsSource, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &SheetsSource{
		service:       svc,
		spreadsheetID: spreadsheetID,
		logger:        logger.With(slog.String("component", "workbook"), slog.String("spreadsheet_id", spreadsheetID)),
	}, nil
}

func (s *SheetsSource) String() string {
	return "gsheets:" + s.spreadsheetID
}

// Load reads every tab of the spreadsheet.
func (s *SheetsSource) Load(ctx context.Context) (*Workbook, error) {
	ss, err := s.service.Spreadsheets.Get(s.spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet: %w", err)
	}

	var (
		tables   []*table.Table
		warnings []string
	)
	for _, sh := range ss.Sheets {
		if sh.Properties == nil {
			continue
		}
		title := sh.Properties.Title

		resp, err := s.service.Spreadsheets.Values.Get(s.spreadsheetID, title).
			ValueRenderOption("UNFORMATTED_VALUE").
			DateTimeRenderOption("SERIAL_NUMBER").
			Context(ctx).
			Do()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("sheet %s: %v", title, err))
			continue
		}

		t, ws, err := parseSheet(title, stringRows(resp.Values), false)
		warnings = append(warnings, ws...)
		if err != nil {
			s.logger.Warn("Skipping sheet", "sheet", title, "error", err)
			warnings = append(warnings, err.Error())
			continue
		}
		tables = append(tables, t)
	}

	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoSheets, s)
	}

	s.logger.Info("Spreadsheet loaded", "sheets", len(tables), "warnings", len(warnings))
	return New(s.String(), tables, warnings), nil
}

func stringRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, raw := range values {
		row := make([]string, len(raw))
		for j, v := range raw {
			switch x := v.(type) {
			case float64:
				row[j] = strconv.FormatFloat(x, 'f', -1, 64)
			case string:
				row[j] = x
			case bool:
				row[j] = strconv.FormatBool(x)
			case nil:
			default:
				row[j] = fmt.Sprint(x)
			}
		}
		rows[i] = row
	}
	return rows
}
