package google

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/sheets"
)

// fakeValues is a sparse grid keyed by sheet name.
type fakeValues struct {
	sheets  map[string][][]any
	updates []string
	getErr  error
}

func newFakeValues() *fakeValues {
	return &fakeValues{sheets: map[string][][]any{}}
}

func splitRange(rng string) (sheet string, row int) {
	sheet, cells, _ := strings.Cut(rng, "!")
	start, _, _ := strings.Cut(cells, ":")
	row, _ = strconv.Atoi(strings.TrimLeft(start, "ABCDEFGHIJKLMNOPQRSTUVWXYZ"))
	return sheet, row
}

func (f *fakeValues) Get(_ context.Context, rng string) ([][]any, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sheet, _ := splitRange(rng)
	rows := f.sheets[sheet]
	// the API trims trailing empty rows
	end := len(rows)
	for end > 0 && len(rows[end-1]) == 0 {
		end--
	}
	return rows[:end], nil
}

func (f *fakeValues) Update(_ context.Context, rng string, rows [][]any) error {
	f.updates = append(f.updates, rng)
	sheet, row := splitRange(rng)
	grid := f.sheets[sheet]
	for len(grid) < row {
		grid = append(grid, nil)
	}
	grid[row-1] = rows[0]
	f.sheets[sheet] = grid
	return nil
}

func (f *fakeValues) Clear(_ context.Context, rng string) error {
	sheet, row := splitRange(rng)
	f.sheets[sheet][row-1] = []any{}
	return nil
}

func entry(key string, due core.Date, cents int64) sheets.LedgerEntry {
	id := key[strings.LastIndex(key, "-")+1:]
	return sheets.LedgerEntry{
		InstanceKey:  key,
		ObligationID: id,
		Title:        "Obligation " + id,
		DueDate:      due,
		PaidDate:     due,
		Amount:       core.Money{Cents: cents},
		RecordedAt:   time.Date(2024, 12, 9, 10, 0, 0, 0, time.UTC),
	}
}

func TestLedgerUpsert(t *testing.T) {
	ctx := context.Background()
	fv := newFakeValues()
	l := newLedger(fv, "")

	ref, err := l.Upsert(ctx, entry("2024-12-10-2", core.NewDate(2024, 12, 10), 120000))
	if err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if ref != "Pagamentos!A2:G2" {
		t.Errorf("ref = %q, want Pagamentos!A2:G2", ref)
	}
	grid := fv.sheets["Pagamentos"]
	if len(grid) != 2 || grid[0][0] != "Vencimento" {
		t.Fatalf("grid = %v", grid)
	}
	if grid[1][3] != "1200.00" || grid[1][5] != "2024-12-10-2" || grid[1][6] != "2024-12-09T10:00:00Z" {
		t.Errorf("row = %v", grid[1])
	}

	// same instance again rewrites its row
	ref, _ = l.Upsert(ctx, entry("2024-12-10-2", core.NewDate(2024, 12, 10), 125050))
	if ref != "Pagamentos!A2:G2" {
		t.Errorf("second ref = %q", ref)
	}
	if grid := fv.sheets["Pagamentos"]; len(grid) != 2 || grid[1][3] != "1250.50" {
		t.Errorf("grid after rewrite = %v", grid)
	}

	ref, _ = l.Upsert(ctx, entry("2024-12-15-1", core.NewDate(2024, 12, 15), 4590))
	if ref != "Pagamentos!A3:G3" {
		t.Errorf("third ref = %q", ref)
	}
}

func TestLedgerRemove(t *testing.T) {
	ctx := context.Background()
	fv := newFakeValues()
	l := newLedger(fv, "")
	for _, e := range []sheets.LedgerEntry{
		entry("2024-12-10-2", core.NewDate(2024, 12, 10), 120000),
		entry("2024-12-15-1", core.NewDate(2024, 12, 15), 4590),
	} {
		if _, err := l.Upsert(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	if err := l.Remove(ctx, "2024-12-10-2"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := l.Remove(ctx, "2024-12-20-4"); err != nil {
		t.Errorf("Remove(missing) error = %v", err)
	}
	if err := l.Remove(ctx, "garbage"); err == nil {
		t.Error("Remove(garbage) should fail")
	}

	got, err := l.Entries(ctx, 2024)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].InstanceKey != "2024-12-15-1" || got[0].Amount.Cents != 4590 {
		t.Errorf("Entries() = %+v", got)
	}
}

func TestLedgerSheetPerYear(t *testing.T) {
	ctx := context.Background()
	fv := newFakeValues()
	l := newLedger(fv, "%d Pagamentos")

	if _, err := l.Upsert(ctx, entry("2025-01-05-3", core.NewDate(2025, 1, 5), 2190)); err != nil {
		t.Fatal(err)
	}
	if _, ok := fv.sheets["2025 Pagamentos"]; !ok {
		t.Errorf("sheets written = %v", fv.updates)
	}
}

func TestLedgerErrors(t *testing.T) {
	ctx := context.Background()
	fv := newFakeValues()
	l := newLedger(fv, "")

	if _, err := l.Upsert(ctx, sheets.LedgerEntry{}); err == nil {
		t.Error("empty entry accepted")
	}

	fv.getErr = errors.New("googleapi: Error 403")
	_, err := l.Upsert(ctx, entry("2024-12-10-2", core.NewDate(2024, 12, 10), 1))
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Errorf("Upsert() error = %v", err)
	}
}

func TestParseAmountCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
		ok   bool
	}{
		{"1200.00", 120000, true},
		{"45,90", 4590, true},
		{"7", 700, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.in), func(t *testing.T) {
			got, ok := parseAmountCents(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseAmountCents(%q) = %d, %v", tt.in, got, ok)
			}
		})
	}
}

func TestNewMissingConfig(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Error("expected error without spreadsheet ID")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("New() error = %v", err)
	}
	_, err = New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: "/nonexistent/creds.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Errorf("New() error = %v", err)
	}
}
