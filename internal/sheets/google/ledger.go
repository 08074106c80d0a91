package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"contas/internal/core"
	"contas/internal/sheets"
)

// Ledger columns: A due date, B paid date, C title, D amount, E obligation,
// F instance key, G recorded at. Rows are found by the key in column F.
const (
	keyColumn = 5
	lastCol   = "G"
)

var header = []any{"Vencimento", "Pago em", "Conta", "Valor", "Obrigação", "Chave", "Registrado em"}

var _ sheets.LedgerWriter = (*Ledger)(nil)

type Config struct {
	SpreadsheetID string
	// SheetName may contain %d, replaced by the due date's year.
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// values is the subset of the Sheets values API the ledger needs.
type values interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	Clear(ctx context.Context, rng string) error
}

// Ledger writes paid instances to a Google Sheet, one row each.
type Ledger struct {
	values    values
	sheetName string
}

// New creates a ledger backed by the Sheets API using service account credentials.
func New(ctx context.Context, cfg Config) (*Ledger, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newLedger(&serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.SheetName), nil
}

func newLedger(v values, sheetName string) *Ledger {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Pagamentos"
	}
	return &Ledger{values: v, sheetName: sheetName}
}

// newSheetsService initializes a Sheets Service from inline JSON or a
// credentials file, inline JSON first.
func newSheetsService(ctx context.Context, credentialsJSON, credentialsFile string) (*gsheet.Service, error) {
	var creds []byte
	switch {
	case strings.TrimSpace(credentialsJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		creds = []byte(credentialsJSON)
	case strings.TrimSpace(credentialsFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", credentialsFile)
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		creds = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(creds),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// Upsert writes the row of e, reusing the existing row of the same instance.
func (l *Ledger) Upsert(ctx context.Context, e sheets.LedgerEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	sheet := l.sheetFor(e.DueDate.Year())

	rows, err := l.values.Get(ctx, fmt.Sprintf("%s!A:%s", sheet, lastCol))
	if err != nil {
		return "", fmt.Errorf("read ledger %s: %w", sheet, err)
	}

	row := findRow(rows, e.InstanceKey)
	if row == 0 {
		if len(rows) == 0 {
			if err := l.values.Update(ctx, rowRange(sheet, 1), [][]any{header}); err != nil {
				return "", fmt.Errorf("write ledger header: %w", err)
			}
			rows = [][]any{header}
		}
		row = len(rows) + 1
	}

	ref := rowRange(sheet, row)
	if err := l.values.Update(ctx, ref, [][]any{entryRow(e)}); err != nil {
		return "", fmt.Errorf("update %s: %w", ref, err)
	}
	slog.InfoContext(ctx, "Ledger row written", "instance_key", e.InstanceKey, "range", ref)
	return ref, nil
}

// Remove clears the row of instanceKey. The row stays in place, empty.
func (l *Ledger) Remove(ctx context.Context, instanceKey string) error {
	_, due, err := core.ParseInstanceKey(instanceKey)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	sheet := l.sheetFor(due.Year())

	rows, err := l.values.Get(ctx, fmt.Sprintf("%s!A:%s", sheet, lastCol))
	if err != nil {
		return fmt.Errorf("read ledger %s: %w", sheet, err)
	}
	row := findRow(rows, instanceKey)
	if row == 0 {
		slog.DebugContext(ctx, "Ledger row not found, nothing to remove", "instance_key", instanceKey)
		return nil
	}
	ref := rowRange(sheet, row)
	if err := l.values.Clear(ctx, ref); err != nil {
		return fmt.Errorf("clear %s: %w", ref, err)
	}
	slog.InfoContext(ctx, "Ledger row cleared", "instance_key", instanceKey, "range", ref)
	return nil
}

func (l *Ledger) sheetFor(year int) string {
	if strings.Contains(l.sheetName, "%d") {
		return fmt.Sprintf(l.sheetName, year)
	}
	return l.sheetName
}

// findRow returns the 1-based row holding key, or 0.
func findRow(rows [][]any, key string) int {
	for i, row := range rows {
		cols := toStrings(row)
		if len(cols) > keyColumn && cols[keyColumn] == key {
			return i + 1
		}
	}
	return 0
}

func rowRange(sheet string, row int) string {
	return fmt.Sprintf("%s!A%d:%s%d", sheet, row, lastCol, row)
}

func entryRow(e sheets.LedgerEntry) []any {
	paid := ""
	if !e.PaidDate.IsZero() {
		paid = e.PaidDate.String()
	}
	recorded := ""
	if !e.RecordedAt.IsZero() {
		recorded = e.RecordedAt.UTC().Format(time.RFC3339)
	}
	return []any{
		e.DueDate.String(),
		paid,
		e.Title,
		decimal.New(e.Amount.Cents, -2).StringFixed(2),
		e.ObligationID,
		e.InstanceKey,
		recorded,
	}
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

// parseAmountCents reads column D back. Sheets may return the amount
// formatted with a decimal comma.
func parseAmountCents(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, false
	}
	return d.Shift(2).Round(0).IntPart(), true
}

// Entries reads the ledger rows of year back, skipping the header and
// cleared rows.
func (l *Ledger) Entries(ctx context.Context, year int) ([]sheets.LedgerEntry, error) {
	sheet := l.sheetFor(year)
	rows, err := l.values.Get(ctx, fmt.Sprintf("%s!A:%s", sheet, lastCol))
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", sheet, err)
	}
	var out []sheets.LedgerEntry
	for _, row := range rows {
		cols := toStrings(row)
		if len(cols) <= keyColumn || cols[keyColumn] == "" {
			continue
		}
		due, err := core.ParseDate(cols[0])
		if err != nil {
			continue
		}
		cents, ok := parseAmountCents(cols[3])
		if !ok {
			continue
		}
		e := sheets.LedgerEntry{
			DueDate:      due,
			Title:        cols[2],
			Amount:       core.Money{Cents: cents},
			ObligationID: cols[4],
			InstanceKey:  cols[keyColumn],
		}
		if paid, err := core.ParseDate(cols[1]); err == nil {
			e.PaidDate = paid
		}
		if len(cols) > 6 {
			if at, err := time.Parse(time.RFC3339, cols[6]); err == nil {
				e.RecordedAt = at
			}
		}
		out = append(out, e)
	}
	return out, nil
}

type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceValues) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceValues) Update(ctx context.Context, rng string, rows [][]any) error {
	vr := &gsheet.ValueRange{Values: rows}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}
