// Package google mirrors fee records into a Google Sheets tab.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"schoolsite/internal/core"
	"schoolsite/internal/ports"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ ports.FeeSheetWriter = (*FeeSheet)(nil)

// Header is written to row 1 of an empty tab.
var Header = []any{"ID", "Class", "Category", "Admission", "Monthly", "Other", "Annual", "Total Annual", "Active"}

const (
	lastColumn       = "I"
	defaultCacheTTL  = 5 * time.Minute
	valueInputOption = "USER_ENTERED"
)

// Config selects the spreadsheet and the service account used to write it.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// valuesAPI is the subset of the Sheets values API the exporter uses.
type valuesAPI interface {
	Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error)
	Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error
	Clear(ctx context.Context, spreadsheetID, rng string) error
}

// FeeSheet keeps one row per fee record, keyed by the id in column A.
type FeeSheet struct {
	values        valuesAPI
	spreadsheetID string
	sheetName     string

	mu                 sync.Mutex
	rows               map[int64]int
	nextRow            int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

// NewFeeSheet authenticates with a service account and returns a writer for
// cfg.SheetName.
func NewFeeSheet(ctx context.Context, cfg Config) (*FeeSheet, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	creds, err := loadCredentials(cfg)
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "sheet", cfg.SheetName)

	return newFeeSheet(sheetsValues{svc: svc}, cfg.SpreadsheetID, cfg.SheetName), nil
}

func newFeeSheet(values valuesAPI, spreadsheetID, sheetName string) *FeeSheet {
	return &FeeSheet{
		values:             values,
		spreadsheetID:      spreadsheetID,
		sheetName:          sheetName,
		cacheValidDuration: defaultCacheTTL,
	}
}

func loadCredentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	}
	return nil, errors.New("missing service account credentials")
}

// FeeRow renders r as a sheet row. Derived amounts are recomputed.
func FeeRow(r core.FeeRecord) []any {
	r = r.WithDerived()
	active := "No"
	if r.IsActive {
		active = "Yes"
	}
	return []any{
		r.ID,
		r.ClassName,
		string(r.Tier()),
		r.AdmissionFee.Int64(),
		r.MonthlyFee.Int64(),
		r.OtherCharges.Int64(),
		r.AnnualFee.Int64(),
		r.TotalAnnual.Int64(),
		active,
	}
}

func (s *FeeSheet) rowRange(row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", s.sheetName, row, lastColumn, row)
}

// UpsertFee implements ports.FeeSheetWriter.
func (s *FeeSheet) UpsertFee(ctx context.Context, r core.FeeRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadIndexLocked(ctx); err != nil {
		return 0, err
	}
	row, ok := s.rows[r.ID]
	if !ok {
		row = s.nextRow
	}
	if err := s.values.Update(ctx, s.spreadsheetID, s.rowRange(row), [][]any{FeeRow(r)}); err != nil {
		s.invalidateLocked()
		return 0, fmt.Errorf("write fee %d to row %d: %w", r.ID, row, err)
	}
	if !ok {
		s.rows[r.ID] = row
		s.nextRow++
	}
	return row, nil
}

// DeleteFee implements ports.FeeSheetWriter.
func (s *FeeSheet) DeleteFee(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadIndexLocked(ctx); err != nil {
		return err
	}
	row, ok := s.rows[id]
	if !ok {
		return nil
	}
	if err := s.values.Clear(ctx, s.spreadsheetID, s.rowRange(row)); err != nil {
		s.invalidateLocked()
		return fmt.Errorf("clear fee %d at row %d: %w", id, row, err)
	}
	delete(s.rows, id)
	return nil
}

// invalidateLocked forces the next write to re-read column A.
func (s *FeeSheet) invalidateLocked() {
	s.cacheExpiresAt = time.Time{}
}

// loadIndexLocked maps ids to rows from column A, writing the header into
// an empty tab. The index is reused until it expires.
func (s *FeeSheet) loadIndexLocked(ctx context.Context) error {
	if s.rows != nil && time.Now().Before(s.cacheExpiresAt) {
		return nil
	}
	col, err := s.values.Get(ctx, s.spreadsheetID, fmt.Sprintf("%s!A:A", s.sheetName))
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", s.sheetName, err)
	}
	if len(col) == 0 {
		if err := s.values.Update(ctx, s.spreadsheetID, s.rowRange(1), [][]any{Header}); err != nil {
			return fmt.Errorf("write header to %s: %w", s.sheetName, err)
		}
		col = [][]any{{Header[0]}}
	}

	s.rows = indexRows(col)
	s.nextRow = len(col) + 1
	s.cacheExpiresAt = time.Now().Add(s.cacheValidDuration)
	return nil
}

// indexRows maps the numeric ids in column A to their 1-based rows. The
// header and blank or non-numeric cells are skipped.
func indexRows(col [][]any) map[int64]int {
	rows := make(map[int64]int, len(col))
	for i, cells := range col {
		if len(cells) == 0 {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSpace(fmt.Sprint(cells[0])), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		rows[id] = i + 1
	}
	return rows
}

type sheetsValues struct {
	svc *gsheet.Service
}

func (v sheetsValues) Get(ctx context.Context, spreadsheetID, rng string) ([][]any, error) {
	resp, err := v.svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (v sheetsValues) Update(ctx context.Context, spreadsheetID, rng string, values [][]any) error {
	_, err := v.svc.Spreadsheets.Values.Update(spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	return err
}

func (v sheetsValues) Clear(ctx context.Context, spreadsheetID, rng string) error {
	_, err := v.svc.Spreadsheets.Values.Clear(spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}
