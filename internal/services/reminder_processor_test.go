package services

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"contas/internal/core"
	"contas/internal/store/memory"
)

type recordingNotifier struct {
	got    []Reminder
	failOn map[string]bool
}

func (n *recordingNotifier) Notify(_ context.Context, r Reminder) error {
	if n.failOn[r.Instance.InstanceKey] {
		return errors.New("smtp unavailable")
	}
	n.got = append(n.got, r)
	return nil
}

func (n *recordingNotifier) keys() []string {
	out := make([]string, 0, len(n.got))
	for _, r := range n.got {
		out = append(out, r.Kind+":"+r.Instance.InstanceKey)
	}
	sort.Strings(out)
	return out
}

func TestProcessReminders(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDemo()
	n := &recordingNotifier{}
	p := NewReminderProcessor(st, n, nil)
	today := d(2024, 12, 12)

	res, err := p.ProcessReminders(ctx, today)
	if err != nil {
		t.Fatalf("ProcessReminders() error = %v", err)
	}
	if res.Sent != 3 || res.Skipped != 0 || res.Failed != 0 {
		t.Errorf("first run = %+v", res)
	}

	// Netflix is 3 days away with a 3 day window; Plano de Saúde is 8 days
	// away with a 5 day window.
	want := []string{"overdue:2024-12-05-3", "overdue:2024-12-10-2", "upcoming:2024-12-15-1"}
	got := n.keys()
	if len(got) != len(want) {
		t.Fatalf("notified %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notified[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	for _, r := range n.got {
		if r.Instance.InstanceKey == "2024-12-05-3" && r.DaysLeft != -7 {
			t.Errorf("DaysLeft = %d, want -7", r.DaysLeft)
		}
	}

	res, _ = p.ProcessReminders(ctx, today)
	if res.Sent != 0 || res.Skipped != 3 {
		t.Errorf("second run = %+v, want everything skipped", res)
	}
}

func TestProcessRemindersSkipsPaid(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDemo()
	err := st.MarkPaid(ctx, core.PaidMarker{
		InstanceKey: "2024-12-10-2", ObligationID: "2",
		DueDate: d(2024, 12, 10), Amount: core.Money{Cents: 120000}, PaidDate: d(2024, 12, 9),
	})
	if err != nil {
		t.Fatal(err)
	}

	n := &recordingNotifier{}
	res, err := NewReminderProcessor(st, n, nil).ProcessReminders(ctx, d(2024, 12, 12))
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 2 {
		t.Errorf("Sent = %d, want 2", res.Sent)
	}
	for _, r := range n.got {
		if r.Instance.InstanceKey == "2024-12-10-2" {
			t.Error("paid instance was notified")
		}
	}
}

func TestProcessRemindersFailureIsRetried(t *testing.T) {
	ctx := context.Background()
	st := memory.NewDemo()
	n := &recordingNotifier{failOn: map[string]bool{"2024-12-05-3": true}}
	p := NewReminderProcessor(st, n, nil)
	today := d(2024, 12, 12)

	res, err := p.ProcessReminders(ctx, today)
	if err != nil {
		t.Fatalf("ProcessReminders() error = %v", err)
	}
	if res.Sent != 2 || res.Failed != 1 {
		t.Errorf("first run = %+v", res)
	}

	n.failOn = nil
	res, _ = p.ProcessReminders(ctx, today)
	if res.Sent != 1 || res.Skipped != 2 {
		t.Errorf("retry run = %+v", res)
	}
}

func TestProcessRemindersAcrossYearEnd(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	o := obligation("ipva", 2, core.Monthly, d(2024, 1, 2))
	o.ReminderDays = 3
	if _, err := st.CreateObligation(ctx, o); err != nil {
		t.Fatal(err)
	}

	n := &recordingNotifier{}
	res, err := NewReminderProcessor(st, n, nil).ProcessReminders(ctx, d(2024, 12, 30))
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 1 || n.got[0].Instance.InstanceKey != "2025-01-02-ipva" || n.got[0].DaysLeft != 3 {
		t.Errorf("result = %+v, notified = %+v", res, n.got)
	}
}

func TestProcessRemindersNotInitialized(t *testing.T) {
	p := NewReminderProcessor(nil, nil, nil)
	if _, err := p.ProcessReminders(context.Background(), d(2024, 1, 1)); err == nil {
		t.Error("expected error")
	}
}

func TestProcessRemindersOverdueAcrossMonthEnd(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	o := obligation("luz", 31, core.Monthly, d(2024, 1, 31))
	o.ReminderDays = 3
	if _, err := st.CreateObligation(ctx, o); err != nil {
		t.Fatal(err)
	}

	n := &recordingNotifier{}
	p := NewReminderProcessor(st, n, nil)
	for day := d(2024, 10, 28); !day.After(d(2024, 11, 5)); day = core.DateOf(day.AddDate(0, 0, 1)) {
		if _, err := p.ProcessReminders(ctx, day); err != nil {
			t.Fatalf("ProcessReminders(%s) error = %v", day, err)
		}
	}

	want := []string{"overdue:2024-10-31-luz", "upcoming:2024-10-31-luz"}
	got := n.keys()
	if len(got) != len(want) {
		t.Fatalf("notified %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notified[%d] = %s, want %s", i, got[i], want[i])
		}
	}
	for _, r := range n.got {
		if r.Kind == ReminderOverdue && r.DaysLeft != -1 {
			t.Errorf("overdue DaysLeft = %d, want -1", r.DaysLeft)
		}
	}
}

func TestProcessRemindersOverdueLookback(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		today core.Date
		want  int
	}{
		{d(2024, 11, 27), 1}, // 7 days late
		{d(2024, 11, 28), 0}, // 8 days late
		{d(2024, 12, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.today.String(), func(t *testing.T) {
			st := memory.New()
			if _, err := st.CreateObligation(ctx, obligation("agua", 20, core.Monthly, d(2024, 1, 20))); err != nil {
				t.Fatal(err)
			}
			n := &recordingNotifier{}
			if _, err := NewReminderProcessor(st, n, nil).ProcessReminders(ctx, tt.today); err != nil {
				t.Fatal(err)
			}
			overdue := 0
			for _, r := range n.got {
				if r.Kind == ReminderOverdue {
					overdue++
				}
			}
			if overdue != tt.want {
				t.Errorf("overdue notices = %d, want %d (%v)", overdue, tt.want, n.keys())
			}
		})
	}
}

func TestReminderMonths(t *testing.T) {
	tests := []struct {
		today core.Date
		want  []yearMonth
	}{
		{d(2024, 12, 12), []yearMonth{{2024, time.December}, {2025, time.January}}},
		{d(2024, 11, 3), []yearMonth{{2024, time.October}, {2024, time.November}, {2024, time.December}}},
		{d(2025, 1, 2), []yearMonth{{2024, time.December}, {2025, time.January}, {2025, time.February}}},
	}
	for _, tt := range tests {
		got := reminderMonths(tt.today)
		if len(got) != len(tt.want) {
			t.Fatalf("reminderMonths(%s) = %v, want %v", tt.today, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("reminderMonths(%s)[%d] = %v, want %v", tt.today, i, got[i], tt.want[i])
			}
		}
	}
}
