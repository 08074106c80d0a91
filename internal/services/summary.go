package services

import (
	"sort"

	"contas/internal/core"
)

// UncategorizedName labels instances whose category is missing or unknown.
const UncategorizedName = "Sem categoria"

// DefaultUpcomingDays and DefaultUpcomingLimit match the dashboard widget.
const (
	DefaultUpcomingDays  = 7
	DefaultUpcomingLimit = 5
	// MaxUpcomingDays bounds the window; each month in it is built.
	MaxUpcomingDays = 366
)

// Summarize totals a month view by status.
func Summarize(view MonthView) core.MonthlySummary {
	s := core.MonthlySummary{Year: view.Year, Month: view.Month}
	for _, inst := range view.Instances {
		s.Total = s.Total.Add(inst.Amount)
		s.Count++
		switch inst.Status {
		case core.StatusPaid:
			s.Paid = s.Paid.Add(inst.Amount)
			s.PaidCount++
		case core.StatusOverdue:
			s.Overdue = s.Overdue.Add(inst.Amount)
			s.OverdueCount++
		default:
			s.Pending = s.Pending.Add(inst.Amount)
			s.PendingCount++
		}
	}
	return s
}

// SummarizeByCategory totals instances per category, largest total first.
// Ties are ordered by category name.
func SummarizeByCategory(instances []core.ObligationInstance, categories []core.Category) []core.CategorySummary {
	byID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	totals := map[string]*core.CategorySummary{}
	var order []string
	for _, inst := range instances {
		id := inst.CategoryID
		if _, ok := byID[id]; !ok {
			id = ""
		}
		cs, ok := totals[id]
		if !ok {
			cs = &core.CategorySummary{CategoryID: id, CategoryName: UncategorizedName}
			if c, found := byID[id]; found {
				cs.CategoryName = c.Name
				cs.Color = c.Color
			}
			totals[id] = cs
			order = append(order, id)
		}
		cs.Total = cs.Total.Add(inst.Amount)
		cs.Count++
	}

	out := make([]core.CategorySummary, 0, len(order))
	for _, id := range order {
		out = append(out, *totals[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Total.Cents != out[j].Total.Cents {
			return out[i].Total.Cents > out[j].Total.Cents
		}
		return out[i].CategoryName < out[j].CategoryName
	})
	return out
}

// Upcoming returns the pending instances due from today through today+days,
// at most limit of them. A limit of zero or less means no limit.
func Upcoming(instances []core.ObligationInstance, today core.Date, days, limit int) []core.ObligationInstance {
	horizon := core.DateOf(today.AddDate(0, 0, days))
	out := []core.ObligationInstance{}
	for _, inst := range instances {
		if inst.Status != core.StatusPending {
			continue
		}
		if inst.DueDate.Before(today) || inst.DueDate.After(horizon) {
			continue
		}
		out = append(out, inst)
	}
	SortInstances(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// GroupByDay groups sorted instances by due date for the timeline.
func GroupByDay(instances []core.ObligationInstance) []core.DayGroup {
	groups := []core.DayGroup{}
	for _, inst := range instances {
		n := len(groups)
		if n == 0 || !groups[n-1].Date.Equal(inst.DueDate) {
			groups = append(groups, core.DayGroup{Date: inst.DueDate})
			n++
		}
		groups[n-1].Instances = append(groups[n-1].Instances, inst)
		groups[n-1].Total = groups[n-1].Total.Add(inst.Amount)
	}
	return groups
}
