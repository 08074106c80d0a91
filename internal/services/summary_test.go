package services

import (
	"testing"
	"time"

	"contas/internal/core"
)

func inst(id string, due core.Date, cents int64, status core.Status, category string) core.ObligationInstance {
	return core.ObligationInstance{
		ObligationID: id,
		InstanceKey:  core.InstanceKey(id, due.Year(), due.Month(), due.Day()),
		DueDate:      due,
		Amount:       core.Money{Cents: cents},
		Status:       status,
		CategoryID:   category,
	}
}

func TestSummarize(t *testing.T) {
	view := MonthView{
		Year:  2024,
		Month: time.December,
		Instances: []core.ObligationInstance{
			inst("1", d(2024, 12, 5), 1000, core.StatusPaid, ""),
			inst("2", d(2024, 12, 10), 2000, core.StatusOverdue, ""),
			inst("3", d(2024, 12, 20), 3000, core.StatusPending, ""),
			inst("4", d(2024, 12, 25), 4000, core.StatusPending, ""),
		},
	}
	got := Summarize(view)
	want := core.MonthlySummary{
		Year: 2024, Month: time.December,
		Total: core.Money{Cents: 10000}, Paid: core.Money{Cents: 1000},
		Pending: core.Money{Cents: 7000}, Overdue: core.Money{Cents: 2000},
		Count: 4, PaidCount: 1, PendingCount: 2, OverdueCount: 1,
	}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	got := Summarize(MonthView{Year: 2024, Month: time.March})
	if got.Count != 0 || got.Total.Cents != 0 {
		t.Errorf("Summarize(empty) = %+v", got)
	}
}

func TestSummarizeByCategory(t *testing.T) {
	cats := []core.Category{
		{ID: "1", Name: "Moradia", Color: "#EF4444"},
		{ID: "7", Name: "Serviços Digitais", Color: "#8B5CF6"},
		{ID: "3", Name: "Transporte"},
	}
	instances := []core.ObligationInstance{
		inst("a", d(2024, 5, 1), 4590, core.StatusPending, "7"),
		inst("b", d(2024, 5, 5), 150000, core.StatusPaid, "1"),
		inst("c", d(2024, 5, 9), 2190, core.StatusPending, "7"),
		inst("d", d(2024, 5, 9), 500, core.StatusPending, "missing"),
		inst("e", d(2024, 5, 9), 500, core.StatusPending, "3"),
	}
	got := SummarizeByCategory(instances, cats)

	want := []struct {
		name  string
		total int64
		count int
	}{
		{"Moradia", 150000, 1},
		{"Serviços Digitais", 6780, 2},
		{UncategorizedName, 500, 1},
		{"Transporte", 500, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("SummarizeByCategory() = %d entries, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].CategoryName != w.name || got[i].Total.Cents != w.total || got[i].Count != w.count {
			t.Errorf("entry %d = %+v, want %s %d %d", i, got[i], w.name, w.total, w.count)
		}
	}
	if got[0].Color != "#EF4444" {
		t.Errorf("color = %q, want #EF4444", got[0].Color)
	}
}

func TestUpcoming(t *testing.T) {
	today := d(2024, 5, 10)
	instances := []core.ObligationInstance{
		inst("past", d(2024, 5, 9), 100, core.StatusOverdue, ""),
		inst("today", d(2024, 5, 10), 100, core.StatusPending, ""),
		inst("paid", d(2024, 5, 11), 100, core.StatusPaid, ""),
		inst("b", d(2024, 5, 12), 100, core.StatusPending, ""),
		inst("a", d(2024, 5, 12), 100, core.StatusPending, ""),
		inst("edge", d(2024, 5, 17), 100, core.StatusPending, ""),
		inst("far", d(2024, 5, 18), 100, core.StatusPending, ""),
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"no limit", 0, []string{"today", "a", "b", "edge"}},
		{"limited", 2, []string{"today", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Upcoming(instances, today, DefaultUpcomingDays, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Upcoming() = %d, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ObligationID != id {
					t.Errorf("Upcoming()[%d] = %s, want %s", i, got[i].ObligationID, id)
				}
			}
		})
	}
}

func TestGroupByDay(t *testing.T) {
	instances := []core.ObligationInstance{
		inst("1", d(2024, 5, 5), 100, core.StatusPending, ""),
		inst("2", d(2024, 5, 5), 250, core.StatusPending, ""),
		inst("3", d(2024, 5, 9), 300, core.StatusPending, ""),
	}
	groups := GroupByDay(instances)
	if len(groups) != 2 {
		t.Fatalf("GroupByDay() = %d groups, want 2", len(groups))
	}
	if !groups[0].Date.Equal(d(2024, 5, 5)) || len(groups[0].Instances) != 2 || groups[0].Total.Cents != 350 {
		t.Errorf("group 0 = %+v", groups[0])
	}
	if !groups[1].Date.Equal(d(2024, 5, 9)) || len(groups[1].Instances) != 1 {
		t.Errorf("group 1 = %+v", groups[1])
	}
	if got := GroupByDay(nil); len(got) != 0 {
		t.Errorf("GroupByDay(nil) = %+v, want empty", got)
	}
}
