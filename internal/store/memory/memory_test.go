package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/store"
)

var _ store.Store = (*Store)(nil)

func TestNewDemo(t *testing.T) {
	s := NewDemo()
	ctx := context.Background()

	obs, _ := s.ListObligations(ctx)
	if len(obs) != 4 {
		t.Fatalf("ListObligations() = %d, want 4", len(obs))
	}
	if obs[0].Title != "Netflix" {
		t.Errorf("first obligation = %q, want insertion order", obs[0].Title)
	}
	cats, _ := s.ListCategories(ctx)
	if len(cats) != 7 {
		t.Errorf("ListCategories() = %d, want 7", len(cats))
	}
	cards, _ := s.ListCreditCards(ctx)
	if len(cards) != 2 {
		t.Errorf("ListCreditCards() = %d, want 2", len(cards))
	}
	for _, o := range obs {
		if err := o.Validate(); err != nil {
			t.Errorf("demo obligation %s invalid: %v", o.ID, err)
		}
	}
}

func TestNewFromFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFromFiles(dir)
	cats, _ := s.ListCategories(context.Background())
	if len(cats) != 7 {
		t.Fatalf("expected demo categories when file missing, got %d", len(cats))
	}

	content := "# header\nCasa\nLuz\nCasa\n\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_categories.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	s = NewFromFiles(dir)
	cats, _ = s.ListCategories(context.Background())
	if len(cats) != 2 || cats[0].Name != "Casa" || cats[1].Name != "Luz" {
		t.Errorf("ListCategories() = %+v", cats)
	}
}

func TestObligationLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	id, err := s.CreateObligation(ctx, core.RecurringObligation{Title: "Luz", DueDay: 5, IsActive: true})
	if err != nil || id == "" {
		t.Fatalf("CreateObligation() = %q, %v", id, err)
	}
	if _, err := s.CreateObligation(ctx, core.RecurringObligation{ID: id}); err == nil {
		t.Error("duplicate id accepted")
	}

	o, err := s.GetObligation(ctx, id)
	if err != nil || o.Title != "Luz" {
		t.Fatalf("GetObligation() = %+v, %v", o, err)
	}
	o.Title = "Energia"
	if err := s.UpdateObligation(ctx, o); err != nil {
		t.Fatal(err)
	}
	if err := s.DeactivateObligation(ctx, id); err != nil {
		t.Fatal(err)
	}
	o, _ = s.GetObligation(ctx, id)
	if o.Title != "Energia" || o.IsActive {
		t.Errorf("after update/deactivate = %+v", o)
	}

	for name, err := range map[string]error{
		"get":        func() error { _, err := s.GetObligation(ctx, "x"); return err }(),
		"update":     s.UpdateObligation(ctx, core.RecurringObligation{ID: "x"}),
		"deactivate": s.DeactivateObligation(ctx, "x"),
	} {
		if !errors.Is(err, core.ErrNotFound) {
			t.Errorf("%s missing: error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestPaidKeysRange(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, m := range []core.PaidMarker{
		{InstanceKey: "2024-04-30-1", ObligationID: "1", DueDate: core.NewDate(2024, 4, 30)},
		{InstanceKey: "2024-05-01-1", ObligationID: "1", DueDate: core.NewDate(2024, 5, 1)},
		{InstanceKey: "2024-05-31-2", ObligationID: "2", DueDate: core.NewDate(2024, 5, 31)},
	} {
		if err := s.MarkPaid(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.PaidKeys(ctx, core.FirstOfMonth(2024, time.May), core.LastOfMonth(2024, time.May))
	if len(got) != 2 || !got.Has("2024-05-01-1") || !got.Has("2024-05-31-2") {
		t.Errorf("PaidKeys(may) = %v", got)
	}

	_ = s.MarkUnpaid(ctx, "2024-05-01-1")
	if _, ok := s.Marker("2024-05-01-1"); ok {
		t.Error("marker still present after MarkUnpaid")
	}
	if _, err := s.PaidMarker(ctx, "2024-05-01-1"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("PaidMarker() error = %v, want ErrNotFound", err)
	}
	if m, err := s.PaidMarker(ctx, "2024-05-31-2"); err != nil || m.ObligationID != "2" {
		t.Errorf("PaidMarker() = %+v, %v", m, err)
	}
	if err := s.MarkPaid(ctx, core.PaidMarker{}); err == nil {
		t.Error("empty marker accepted")
	}
}

func TestReminders(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.RecordReminder(ctx, "k", "upcoming", time.Now())
	if ok, _ := s.ReminderSent(ctx, "k", "upcoming"); !ok {
		t.Error("reminder not recorded")
	}
	if ok, _ := s.ReminderSent(ctx, "k", "overdue"); ok {
		t.Error("kinds must be separate")
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewDemo()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			key := core.InstanceKey("1", 2024, time.May, i+1)
			_ = s.MarkPaid(ctx, core.PaidMarker{InstanceKey: key, ObligationID: "1", DueDate: core.NewDate(2024, 5, i+1)})
		}(i)
		go func() {
			defer wg.Done()
			_, _ = s.ListObligations(ctx)
			_, _ = s.PaidKeys(ctx, core.FirstOfMonth(2024, time.May), core.LastOfMonth(2024, time.May))
		}()
	}
	wg.Wait()
	got, _ := s.PaidKeys(ctx, core.FirstOfMonth(2024, time.May), core.LastOfMonth(2024, time.May))
	if len(got) != 20 {
		t.Errorf("PaidKeys() = %d, want 20", len(got))
	}
}
