// Package sheets persists the invoice ledger and the vendor reference
// list in a Google Spreadsheet. Worksheets are read whole at the start
// of a run and written whole at the end; concurrent edits during a run
// are not guarded against.
package sheets

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"

	"inboxledger/internal/ledger"
	"inboxledger/internal/logger"
	"inboxledger/internal/vendor"
)

// TableStore reads and writes worksheet-backed tables.
type TableStore interface {
	Read(ctx context.Context, worksheet string) (*ledger.Table, error)
	Write(ctx context.Context, worksheet string, table *ledger.Table) error
}

// Service handles Google Sheets operations.
type Service struct {
	sheetsService *sheetsv4.Service
	spreadsheetID string
	log           zerolog.Logger
}

// NewService creates a sheets service for the spreadsheet behind the
// given URL, with service-account credentials from the environment.
func NewService(ctx context.Context, sheetURL string) (*Service, error) {
	const op = "NewService"

	log := logger.WithComponent("sheets")

	spreadsheetID, err := extractSpreadsheetID(sheetURL)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to extract spreadsheet ID: %w", op, err)
	}
	log.Debug().Str("spreadsheet_id", spreadsheetID).Msg("Extracted spreadsheet ID")

	var creds []byte
	if credsFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credsFile != "" {
		creds, err = os.ReadFile(credsFile)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to read credentials file: %w", op, err)
		}
	} else if credsJSON := os.Getenv("GOOGLE_CREDENTIALS"); credsJSON != "" {
		creds = []byte(credsJSON)
	} else {
		return nil, fmt.Errorf("%s: neither GOOGLE_APPLICATION_CREDENTIALS nor GOOGLE_CREDENTIALS is set", op)
	}

	config, err := google.JWTConfigFromJSON(creds, sheetsv4.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse credentials: %w", op, err)
	}

	client := config.Client(ctx)
	sheetsService, err := sheetsv4.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create sheets service: %w", op, err)
	}

	return &Service{
		sheetsService: sheetsService,
		spreadsheetID: spreadsheetID,
		log:           log,
	}, nil
}

// extractSpreadsheetID extracts the spreadsheet ID from a Google Sheets URL.
func extractSpreadsheetID(url string) (string, error) {
	re := regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)
	matches := re.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("invalid Google Sheets URL format")
	}
	return matches[1], nil
}

// Read loads the worksheet into a table. A missing or empty worksheet
// yields a table with the standard ledger headers and no rows.
func (s *Service) Read(ctx context.Context, worksheet string) (*ledger.Table, error) {
	const op = "Read"

	if err := s.ensureWorksheet(ctx, worksheet, ledger.Columns); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	resp, err := s.sheetsService.Spreadsheets.Values.Get(
		s.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read worksheet %q: %w", op, worksheet, err)
	}
	if len(resp.Values) == 0 {
		return ledger.NewTable(ledger.Columns), nil
	}

	table := ledger.NewTable(toStrings(resp.Values[0]))
	for _, row := range resp.Values[1:] {
		table.AppendRow(toStrings(row))
	}

	s.log.Debug().Str("worksheet", worksheet).Int("rows", table.Len()).Msg("Read worksheet")
	return table, nil
}

// Write replaces the worksheet contents with the table.
func (s *Service) Write(ctx context.Context, worksheet string, table *ledger.Table) error {
	const op = "Write"

	values := make([][]interface{}, 0, len(table.Rows)+1)
	values = append(values, toInterfaces(table.Headers))
	for _, row := range table.Rows {
		values = append(values, toInterfaces(row))
	}

	if _, err := s.sheetsService.Spreadsheets.Values.Clear(
		s.spreadsheetID, worksheet, &sheetsv4.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to clear worksheet %q: %w", op, worksheet, err)
	}

	valueRange := &sheetsv4.ValueRange{Values: values}
	_, err := s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		fmt.Sprintf("%s!A1", worksheet),
		valueRange,
	).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to write worksheet %q: %w", op, worksheet, err)
	}

	s.log.Info().Str("worksheet", worksheet).Int("rows", table.Len()).Msg("Wrote worksheet")
	return nil
}

// LoadVendorReference reads the vendor worksheet, whose header row holds
// owner identifiers and whose columns list that owner's vendor names.
func (s *Service) LoadVendorReference(ctx context.Context, worksheet string) (*vendor.Reference, error) {
	const op = "LoadVendorReference"

	resp, err := s.sheetsService.Spreadsheets.Values.Get(
		s.spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%s: failed to read worksheet %q: %w", op, worksheet, err)
	}

	ref := vendor.NewReference()
	if len(resp.Values) < 2 {
		s.log.Warn().Str("worksheet", worksheet).Msg("Vendor worksheet is empty")
		return ref, nil
	}

	owners := toStrings(resp.Values[0])
	for _, row := range resp.Values[1:] {
		cells := toStrings(row)
		for col, name := range cells {
			if col >= len(owners) || owners[col] == "" || name == "" {
				continue
			}
			ref.Add(name, owners[col])
		}
	}

	s.log.Info().Str("worksheet", worksheet).Int("vendors", ref.Len()).Msg("Loaded vendor reference")
	return ref, nil
}

// ensureWorksheet creates the worksheet with a header row when it does
// not exist yet.
func (s *Service) ensureWorksheet(ctx context.Context, worksheet string, headers []string) error {
	const op = "ensureWorksheet"

	spreadsheet, err := s.sheetsService.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("%s: failed to get spreadsheet: %w", op, err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == worksheet {
			return nil
		}
	}

	s.log.Info().Str("worksheet", worksheet).Msg("Creating worksheet")
	batchUpdateReq := &sheetsv4.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsv4.Request{
			{AddSheet: &sheetsv4.AddSheetRequest{
				Properties: &sheetsv4.SheetProperties{Title: worksheet},
			}},
		},
	}
	if _, err := s.sheetsService.Spreadsheets.BatchUpdate(
		s.spreadsheetID, batchUpdateReq).Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to create worksheet: %w", op, err)
	}

	valueRange := &sheetsv4.ValueRange{Values: [][]interface{}{toInterfaces(headers)}}
	if _, err := s.sheetsService.Spreadsheets.Values.Update(
		s.spreadsheetID,
		fmt.Sprintf("%s!A1", worksheet),
		valueRange,
	).ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return fmt.Errorf("%s: failed to add headers: %w", op, err)
	}
	return nil
}

func toStrings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprintf("%v", v)
	}
	return out
}

func toInterfaces(row []string) []interface{} {
	out := make([]interface{}, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
