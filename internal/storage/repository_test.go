package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"contas/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "contas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestObligationCRUD(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	o := core.RecurringObligation{
		Title:         "Netflix",
		Description:   "Assinatura mensal",
		Amount:        core.Money{Cents: 4590},
		DueDay:        15,
		Recurrence:    core.Monthly,
		StartDate:     core.NewDate(2024, 1, 15),
		IsActive:      true,
		CategoryID:    "7",
		PaymentMethod: core.PaymentCreditCard,
		ReminderDays:  3,
	}
	id, err := repo.CreateObligation(ctx, o)
	if err != nil {
		t.Fatalf("CreateObligation() error = %v", err)
	}
	if id == "" {
		t.Fatal("CreateObligation() returned empty id")
	}

	got, err := repo.GetObligation(ctx, id)
	if err != nil {
		t.Fatalf("GetObligation() error = %v", err)
	}
	o.ID = id
	if got != o {
		t.Errorf("GetObligation() = %+v, want %+v", got, o)
	}

	got.Amount = core.Money{Cents: 5590}
	got.EndDate = core.NewDate(2025, 12, 31)
	if err := repo.UpdateObligation(ctx, got); err != nil {
		t.Fatalf("UpdateObligation() error = %v", err)
	}
	updated, _ := repo.GetObligation(ctx, id)
	if updated.Amount.Cents != 5590 || !updated.EndDate.Equal(core.NewDate(2025, 12, 31)) {
		t.Errorf("updated obligation = %+v", updated)
	}

	if err := repo.DeactivateObligation(ctx, id); err != nil {
		t.Fatalf("DeactivateObligation() error = %v", err)
	}
	list, err := repo.ListObligations(ctx)
	if err != nil {
		t.Fatalf("ListObligations() error = %v", err)
	}
	if len(list) != 1 || list[0].IsActive {
		t.Errorf("ListObligations() = %+v, want one inactive obligation", list)
	}
}

func TestObligationNotFound(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	if _, err := repo.GetObligation(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetObligation() error = %v, want ErrNotFound", err)
	}
	if err := repo.DeactivateObligation(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeactivateObligation() error = %v, want ErrNotFound", err)
	}
	err := repo.UpdateObligation(ctx, core.RecurringObligation{ID: "missing", StartDate: core.NewDate(2024, 1, 1)})
	if !errors.Is(err, core.ErrNotFound) {
		t.Errorf("UpdateObligation() error = %v, want ErrNotFound", err)
	}
}

func TestPaidMarkers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	marker := core.PaidMarker{
		InstanceKey:  "2024-12-10-2",
		ObligationID: "2",
		DueDate:      core.NewDate(2024, 12, 10),
		Amount:       core.Money{Cents: 150000},
		PaidDate:     core.NewDate(2024, 12, 9),
	}
	if err := repo.MarkPaid(ctx, marker); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}
	// marking twice updates instead of failing
	marker.Notes = "pix"
	if err := repo.MarkPaid(ctx, marker); err != nil {
		t.Fatalf("MarkPaid() second call error = %v", err)
	}

	dec, err := repo.PaidKeys(ctx, core.FirstOfMonth(2024, time.December), core.LastOfMonth(2024, time.December))
	if err != nil {
		t.Fatalf("PaidKeys() error = %v", err)
	}
	if !dec.Has("2024-12-10-2") || len(dec) != 1 {
		t.Errorf("PaidKeys(december) = %v", dec)
	}

	got, err := repo.PaidMarker(ctx, "2024-12-10-2")
	if err != nil {
		t.Fatalf("PaidMarker() error = %v", err)
	}
	if got.Amount.Cents != 150000 || got.Notes != "pix" || !got.DueDate.Equal(marker.DueDate) || !got.PaidDate.Equal(marker.PaidDate) {
		t.Errorf("PaidMarker() = %+v", got)
	}

	nov, _ := repo.PaidKeys(ctx, core.FirstOfMonth(2024, time.November), core.LastOfMonth(2024, time.November))
	if len(nov) != 0 {
		t.Errorf("PaidKeys(november) = %v, want empty", nov)
	}

	if err := repo.MarkUnpaid(ctx, "2024-12-10-2"); err != nil {
		t.Fatalf("MarkUnpaid() error = %v", err)
	}
	if err := repo.MarkUnpaid(ctx, "2024-12-10-2"); err != nil {
		t.Fatalf("MarkUnpaid() on missing key error = %v", err)
	}
	dec, _ = repo.PaidKeys(ctx, core.FirstOfMonth(2024, time.December), core.LastOfMonth(2024, time.December))
	if dec.Has("2024-12-10-2") {
		t.Error("key still paid after MarkUnpaid")
	}
	if _, err := repo.PaidMarker(ctx, "2024-12-10-2"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("PaidMarker() after MarkUnpaid error = %v, want ErrNotFound", err)
	}

	if err := repo.MarkPaid(ctx, core.PaidMarker{}); !errors.Is(err, core.ErrEmptyInstanceKey) {
		t.Errorf("MarkPaid(empty) error = %v, want ErrEmptyInstanceKey", err)
	}
}

func TestReferenceData(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	cats, err := repo.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(cats) != 7 {
		t.Errorf("seeded categories = %d, want 7", len(cats))
	}

	id, err := repo.UpsertCategory(ctx, core.Category{Name: "Impostos", Color: "#111111", IsActive: true})
	if err != nil {
		t.Fatalf("UpsertCategory() error = %v", err)
	}
	if _, err := repo.UpsertCategory(ctx, core.Category{ID: id, Name: "Impostos", IsActive: false}); err != nil {
		t.Fatalf("UpsertCategory() update error = %v", err)
	}
	cats, _ = repo.ListCategories(ctx)
	if len(cats) != 7 {
		t.Errorf("inactive category should be hidden, got %d", len(cats))
	}

	card := core.CreditCard{Name: "Cartão Principal", Bank: "Banco do Brasil", LastFourDigits: "1234",
		CreditLimit: core.Money{Cents: 500000}, ClosingDay: 15, DueDay: 10, IsActive: true}
	if _, err := repo.UpsertCreditCard(ctx, card); err != nil {
		t.Fatalf("UpsertCreditCard() error = %v", err)
	}
	cards, err := repo.ListCreditCards(ctx)
	if err != nil {
		t.Fatalf("ListCreditCards() error = %v", err)
	}
	if len(cards) != 1 || cards[0].ClosingDay != 15 || cards[0].CreditLimit.Cents != 500000 {
		t.Errorf("ListCreditCards() = %+v", cards)
	}

	card.DueDay = 0
	if _, err := repo.UpsertCreditCard(ctx, card); err == nil {
		t.Error("UpsertCreditCard() accepted due day 0")
	}
}

func TestReminderLog(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	sent, err := repo.ReminderSent(ctx, "2024-12-10-2", "upcoming")
	if err != nil || sent {
		t.Fatalf("ReminderSent() = %v, %v", sent, err)
	}
	if err := repo.RecordReminder(ctx, "2024-12-10-2", "upcoming", time.Now()); err != nil {
		t.Fatalf("RecordReminder() error = %v", err)
	}
	sent, _ = repo.ReminderSent(ctx, "2024-12-10-2", "upcoming")
	if !sent {
		t.Error("expected reminder to be recorded")
	}
	other, _ := repo.ReminderSent(ctx, "2024-12-10-2", "overdue")
	if other {
		t.Error("kinds must be tracked separately")
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contas.db")
	for i := 0; i < 2; i++ {
		repo, err := NewSQLiteRepository(path)
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		repo.Close()
	}
}
