package recurrence

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"contas/internal/core"
)

func d(y int, m time.Month, day int) core.Date { return core.NewDate(y, m, day) }

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		start  core.Date
		dueDay int
		rt     core.RecurrenceType
		ref    core.Date
		want   core.Date
	}{
		{"monthly same month", d(2024, 1, 1), 10, core.Monthly, d(2024, 6, 5), d(2024, 6, 10)},
		{"monthly due today", d(2024, 1, 1), 10, core.Monthly, d(2024, 6, 10), d(2024, 6, 10)},
		{"monthly passed", d(2024, 1, 1), 10, core.Monthly, d(2024, 6, 11), d(2024, 7, 10)},
		{"monthly december rollover", d(2024, 1, 1), 5, core.Monthly, d(2024, 12, 20), d(2025, 1, 5)},
		{"monthly clamp april", d(2024, 1, 1), 31, core.Monthly, d(2024, 4, 2), d(2024, 4, 30)},
		{"monthly clamp february", d(2024, 1, 1), 31, core.Monthly, d(2024, 2, 29), d(2024, 2, 29)},
		{"monthly after clamped day", d(2024, 1, 1), 31, core.Monthly, d(2025, 4, 30), d(2025, 4, 30)},
		{"monthly ref before start", d(2024, 3, 15), 10, core.Monthly, d(2024, 1, 1), d(2024, 4, 10)},
		{"monthly ref before start fits", d(2024, 3, 1), 15, core.Monthly, d(2023, 12, 1), d(2024, 3, 15)},
		{"yearly this year", d(2020, 8, 1), 20, core.Yearly, d(2024, 3, 1), d(2024, 8, 20)},
		{"yearly passed", d(2020, 8, 1), 20, core.Yearly, d(2024, 8, 21), d(2025, 8, 20)},
		{"yearly anniversary today", d(2020, 8, 1), 20, core.Yearly, d(2024, 8, 20), d(2024, 8, 20)},
		{"yearly leap clamp", d(2024, 2, 1), 29, core.Yearly, d(2025, 1, 10), d(2025, 2, 28)},
		{"yearly leap kept", d(2024, 2, 1), 29, core.Yearly, d(2024, 1, 10), d(2024, 2, 29)},
		{"yearly ref before start", d(2026, 5, 1), 3, core.Yearly, d(2024, 1, 1), d(2026, 5, 3)},
		{"yearly start after anniversary day", d(2026, 5, 10), 3, core.Yearly, d(2024, 1, 1), d(2027, 5, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.start, tt.dueDay, tt.rt, tt.ref)
			if err != nil {
				t.Fatalf("NextOccurrence() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("NextOccurrence() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestNextOccurrenceNeverBeforeStartOrRef(t *testing.T) {
	start := d(2024, 3, 17)
	for due := 1; due <= 31; due++ {
		for offset := -60; offset <= 400; offset += 7 {
			ref := core.DateOf(start.AddDate(0, 0, offset))
			for _, rt := range []core.RecurrenceType{core.Monthly, core.Yearly} {
				got, err := NextOccurrence(start, due, rt, ref)
				if err != nil {
					t.Fatal(err)
				}
				if got.Before(start) || got.Before(ref) {
					t.Fatalf("NextOccurrence(%s, %d, %s, %s) = %s before max(start, ref)", start, due, rt, ref, got)
				}
			}
		}
	}
}

func TestNextOccurrenceMonthlyAdvancesOnlyWhenPassed(t *testing.T) {
	for due := 1; due <= 31; due++ {
		for day := 1; day <= 30; day++ {
			ref := d(2024, 4, day)
			got, err := NextOccurrence(d(2020, 1, 1), due, core.Monthly, ref)
			if err != nil {
				t.Fatal(err)
			}
			clamped := ClampDueDay(due, 2024, time.April)
			if day <= clamped && got.Month() != time.April {
				t.Fatalf("due %d ref %s: got %s, want april", due, ref, got)
			}
			if day > clamped && got.Month() != time.May {
				t.Fatalf("due %d ref %s: got %s, want may", due, ref, got)
			}
		}
	}
}

func TestNextOccurrenceErrors(t *testing.T) {
	for _, due := range []int{0, -1, 32} {
		_, err := NextOccurrence(d(2024, 1, 1), due, core.Monthly, d(2024, 1, 1))
		var dueErr *core.InvalidDueDayError
		if !errors.As(err, &dueErr) || dueErr.DueDay != due {
			t.Errorf("NextOccurrence(dueDay=%d) error = %v, want InvalidDueDayError", due, err)
		}
	}

	_, err := NextOccurrence(d(2024, 1, 1), 10, "weekly", d(2024, 1, 1))
	if !errors.Is(err, core.ErrConfiguration) {
		t.Errorf("NextOccurrence(weekly) error = %v, want ConfigurationError", err)
	}
}

func TestProjectOccurrences(t *testing.T) {
	tests := []struct {
		name   string
		start  core.Date
		dueDay int
		rt     core.RecurrenceType
		ref    core.Date
		count  int
		want   []core.Date
	}{
		{
			name: "31st does not stick after february", start: d(2024, 1, 1), dueDay: 31, rt: core.Monthly,
			ref: d(2024, 1, 15), count: 4,
			want: []core.Date{d(2024, 1, 31), d(2024, 2, 29), d(2024, 3, 31), d(2024, 4, 30)},
		},
		{
			name: "year rollover", start: d(2024, 1, 1), dueDay: 5, rt: core.Monthly,
			ref: d(2024, 12, 20), count: 3,
			want: []core.Date{d(2025, 1, 5), d(2025, 2, 5), d(2025, 3, 5)},
		},
		{
			name: "yearly leap", start: d(2024, 2, 1), dueDay: 29, rt: core.Yearly,
			ref: d(2024, 1, 1), count: 5,
			want: []core.Date{d(2024, 2, 29), d(2025, 2, 28), d(2026, 2, 28), d(2027, 2, 28), d(2028, 2, 29)},
		},
		{
			name: "zero count", start: d(2024, 1, 1), dueDay: 5, rt: core.Monthly,
			ref: d(2024, 1, 1), count: 0, want: []core.Date{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectOccurrences(tt.start, tt.dueDay, tt.rt, tt.ref, tt.count)
			if err != nil {
				t.Fatalf("ProjectOccurrences() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ProjectOccurrences() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectOccurrencesProperties(t *testing.T) {
	ref := d(2024, 12, 20)
	for _, rt := range []core.RecurrenceType{core.Monthly, core.Yearly} {
		for due := 1; due <= 31; due++ {
			first, err := ProjectOccurrences(d(2023, 2, 1), due, rt, ref, DefaultProjectionCount)
			if err != nil {
				t.Fatal(err)
			}
			if len(first) != DefaultProjectionCount {
				t.Fatalf("len = %d, want %d", len(first), DefaultProjectionCount)
			}
			for i := 1; i < len(first); i++ {
				if !first[i-1].Before(first[i]) {
					t.Fatalf("%s due %d: not strictly increasing at %d: %v", rt, due, i, first)
				}
			}
			again, _ := ProjectOccurrences(d(2023, 2, 1), due, rt, ref, DefaultProjectionCount)
			if !reflect.DeepEqual(first, again) {
				t.Fatalf("%s due %d: projection not deterministic", rt, due)
			}
		}
	}
}

func TestProjectObligation(t *testing.T) {
	o := core.RecurringObligation{
		ID: "7", DueDay: 10, Recurrence: core.Monthly,
		StartDate: d(2024, 1, 1), EndDate: d(2024, 3, 10),
	}
	got, err := ProjectObligation(o, d(2024, 1, 1), 12)
	if err != nil {
		t.Fatal(err)
	}
	want := []core.Date{d(2024, 1, 10), d(2024, 2, 10), d(2024, 3, 10)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProjectObligation() = %v, want %v", got, want)
	}

	o.DueDay = 40
	_, err = ProjectObligation(o, d(2024, 1, 1), 12)
	var cfg *core.ConfigurationError
	if !errors.As(err, &cfg) || cfg.ObligationID != "7" || !errors.Is(err, core.ErrInvalidDueDay) {
		t.Errorf("ProjectObligation() error = %v, want ConfigurationError wrapping InvalidDueDayError", err)
	}

	o.DueDay = 10
	o.EndDate = d(2023, 1, 1)
	if _, err := ProjectObligation(o, d(2024, 1, 1), 12); !errors.Is(err, core.ErrEndBeforeStart) {
		t.Errorf("ProjectObligation() error = %v, want ErrEndBeforeStart", err)
	}
}

func TestCadenceRegistry(t *testing.T) {
	if _, err := CadenceFor(core.Monthly); err != nil {
		t.Errorf("CadenceFor(monthly) error = %v", err)
	}
	if _, err := CadenceFor(core.Yearly); err != nil {
		t.Errorf("CadenceFor(yearly) error = %v", err)
	}

	const quarterly core.RecurrenceType = "quarterly"
	if _, err := CadenceFor(quarterly); err == nil {
		t.Fatal("expected error before registration")
	}
	RegisterCadence(quarterly, quarterlyCadence{})
	t.Cleanup(func() { delete(cadences, quarterly) })

	got, err := ProjectOccurrences(d(2024, 1, 1), 15, quarterly, d(2024, 1, 1), 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []core.Date{d(2024, 1, 15), d(2024, 4, 15), d(2024, 7, 15)}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ProjectOccurrences(quarterly) = %v, want %v", got, want)
	}
}

type quarterlyCadence struct{ MonthlyCadence }

func (quarterlyCadence) Step(year int, month time.Month) (int, time.Month) {
	return addMonths(year, month, 3)
}

func TestYearlyFallsIn(t *testing.T) {
	c := YearlyCadence{}
	if !c.FallsIn(d(2024, 2, 1), 2025, time.February) {
		t.Error("expected february")
	}
	if c.FallsIn(d(2024, 2, 1), 2025, time.March) {
		t.Error("unexpected march")
	}
}
