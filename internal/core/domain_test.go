package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("expected ok for zero, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestLastOfMonth(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		want  string
	}{
		{2024, time.February, "2024-02-29"},
		{2023, time.February, "2023-02-28"},
		{2024, time.April, "2024-04-30"},
		{2024, time.December, "2024-12-31"},
	}
	for _, tt := range tests {
		if got := LastOfMonth(tt.year, tt.month).String(); got != tt.want {
			t.Errorf("LastOfMonth(%d, %v) = %s, want %s", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestDateOfDropsClock(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := DateOf(time.Date(2024, 12, 31, 23, 30, 0, 0, loc))
	if !got.Equal(NewDate(2024, 12, 31)) {
		t.Errorf("DateOf() = %s, want 2024-12-31", got)
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}
	b, err := json.Marshal(payload{Start: NewDate(2024, 3, 1)})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"start":"2024-03-01","end":null}` {
		t.Fatalf("unexpected json %s", b)
	}

	var p payload
	if err := json.Unmarshal([]byte(`{"start":"2025-01-05","end":""}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Start.Equal(NewDate(2025, 1, 5)) || !p.End.IsZero() {
		t.Fatalf("unexpected decode %+v", p)
	}
	if err := json.Unmarshal([]byte(`{"start":"05/01/2025"}`), &p); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func validObligation() RecurringObligation {
	return RecurringObligation{
		ID:         "1",
		Title:      "Rent",
		Amount:     Money{Cents: 150000},
		DueDay:     10,
		Recurrence: Monthly,
		StartDate:  NewDate(2024, 1, 1),
		IsActive:   true,
	}
}

func TestRecurringObligationValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *RecurringObligation)
		wantErr error
	}{
		{"valid", func(o *RecurringObligation) {}, nil},
		{"empty title", func(o *RecurringObligation) { o.Title = "  " }, ErrEmptyTitle},
		{"negative amount", func(o *RecurringObligation) { o.Amount = Money{Cents: -1} }, ErrInvalidAmount},
		{"due day zero", func(o *RecurringObligation) { o.DueDay = 0 }, ErrInvalidDueDay},
		{"due day 32", func(o *RecurringObligation) { o.DueDay = 32 }, ErrInvalidDueDay},
		{"unknown recurrence", func(o *RecurringObligation) { o.Recurrence = "weekly" }, ErrInvalidRecurrence},
		{"end before start", func(o *RecurringObligation) { o.EndDate = NewDate(2023, 12, 31) }, ErrEndBeforeStart},
		{"bad payment", func(o *RecurringObligation) { o.PaymentMethod = "cash" }, ErrInvalidPayment},
		{"reminder too large", func(o *RecurringObligation) { o.ReminderDays = 40 }, ErrInvalidReminderDay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := validObligation()
			tt.mutate(&o)
			err := o.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveReminderDays(t *testing.T) {
	o := validObligation()
	if got := o.EffectiveReminderDays(); got != DefaultReminderDays {
		t.Errorf("EffectiveReminderDays() = %d, want %d", got, DefaultReminderDays)
	}
	o.ReminderDays = 7
	if got := o.EffectiveReminderDays(); got != 7 {
		t.Errorf("EffectiveReminderDays() = %d, want 7", got)
	}
}
