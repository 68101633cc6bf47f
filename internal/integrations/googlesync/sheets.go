package googlesync

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/niranjan-aware/resonance-system/internal/config"
	"github.com/niranjan-aware/resonance-system/internal/domain"
)

var sheetHeaders = []any{
	"Booking ID", "Created At", "Customer Name", "Email", "Phone",
	"Studio", "Date", "Start Time", "End Time", "Session Type",
	"Participants/Musicians", "Base Amount", "Taxes", "Total Amount",
	"Payment Status", "Booking Status", "Special Requirements",
}

// SheetService appends and updates reservation rows in the master
// spreadsheet. One row per reservation, keyed by reference code in column A.
type SheetService struct {
	svc       *sheets.Service
	sheetID   string
	sheetName string
	loc       *time.Location
}

// NewSheetService returns nil when credentials are absent, same contract as
// NewCalendarService.
func NewSheetService(ctx context.Context, cfg config.GoogleConfig, loc *time.Location) (*SheetService, error) {
	if len(cfg.CredentialsJSON) == 0 || cfg.SheetID == "" {
		return nil, nil
	}
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsJSON(cfg.CredentialsJSON),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("googlesync: sheets service: %w", err)
	}
	return &SheetService{svc: svc, sheetID: cfg.SheetID, sheetName: cfg.SheetName, loc: loc}, nil
}

// AppendRow adds the reservation at the bottom of the sheet, creating the
// tab with a header row on first use.
func (s *SheetService) AppendRow(ctx context.Context, res *domain.Reservation) error {
	if err := s.ensureSheet(ctx); err != nil {
		return err
	}
	rng := fmt.Sprintf("'%s'!A:Q", s.sheetName)
	_, err := s.svc.Spreadsheets.Values.Append(s.sheetID, rng, &sheets.ValueRange{
		Values: [][]any{s.rowFor(res)},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: append row: %w", err)
	}
	return nil
}

// UpdateRow rewrites the reservation's row in place, located by reference
// code in column A. Missing rows fall back to an append.
func (s *SheetService) UpdateRow(ctx context.Context, res *domain.Reservation) error {
	rng := fmt.Sprintf("'%s'!A:A", s.sheetName)
	resp, err := s.svc.Spreadsheets.Values.Get(s.sheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: read key column: %w", err)
	}

	rowNumber := 0
	for i, row := range resp.Values {
		if len(row) > 0 && fmt.Sprint(row[0]) == res.ReferenceCode {
			rowNumber = i + 1
			break
		}
	}
	if rowNumber == 0 {
		return s.AppendRow(ctx, res)
	}

	updateRange := fmt.Sprintf("'%s'!A%d:Q%d", s.sheetName, rowNumber, rowNumber)
	_, err = s.svc.Spreadsheets.Values.Update(s.sheetID, updateRange, &sheets.ValueRange{
		Values: [][]any{s.rowFor(res)},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: update row: %w", err)
	}
	return nil
}

func (s *SheetService) rowFor(res *domain.Reservation) []any {
	name, email, phone := "N/A", "N/A", "N/A"
	if res.Customer != nil {
		name = res.Customer.Name
		if res.Customer.Email != "" {
			email = res.Customer.Email
		}
		phone = res.Customer.Phone
	}
	studio := "N/A"
	if res.Studio != nil {
		studio = res.Studio.Name
	}
	headcount := "N/A"
	if res.Details.Participants > 0 {
		headcount = strconv.Itoa(res.Details.Participants)
	} else if res.Details.Musicians > 0 {
		headcount = strconv.Itoa(res.Details.Musicians)
	}
	requirements := "None"
	if res.Details.SpecialRequirements != "" {
		requirements = res.Details.SpecialRequirements
	}
	createdAt := res.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return []any{
		res.ReferenceCode,
		createdAt.In(s.loc).Format("2006-01-02 15:04:05"),
		name,
		email,
		phone,
		studio,
		res.Date.Format("2006-01-02"),
		res.StartTime,
		res.EndTime,
		string(res.SessionKind),
		headcount,
		res.Pricing.BaseAmount,
		res.Pricing.TaxAmount,
		res.Pricing.TotalAmount,
		"offline",
		string(res.Status),
		requirements,
	}
}

// ensureSheet creates the named tab and its header row when missing.
func (s *SheetService) ensureSheet(ctx context.Context) error {
	spreadsheet, err := s.svc.Spreadsheets.Get(s.sheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: get spreadsheet: %w", err)
	}
	for _, sh := range spreadsheet.Sheets {
		if sh.Properties != nil && sh.Properties.Title == s.sheetName {
			return nil
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.sheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: s.sheetName},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: add sheet: %w", err)
	}

	headerRange := fmt.Sprintf("'%s'!A1:Q1", s.sheetName)
	_, err = s.svc.Spreadsheets.Values.Update(s.sheetID, headerRange, &sheets.ValueRange{
		Values: [][]any{sheetHeaders},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("googlesync: write headers: %w", err)
	}
	return nil
}
