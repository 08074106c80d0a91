package core

import "time"

// MonthlySummary aggregates the instances of one month by status.
type MonthlySummary struct {
	Year         int
	Month        time.Month
	Total        Money
	Paid         Money
	Pending      Money
	Overdue      Money
	Count        int
	PaidCount    int
	PendingCount int
	OverdueCount int
}

// CategorySummary is the total of one category within a month.
type CategorySummary struct {
	CategoryID   string
	CategoryName string
	Color        string
	Total        Money
	Count        int
}

// DayGroup holds the instances sharing a due date.
type DayGroup struct {
	Date      Date
	Instances []ObligationInstance
	Total     Money
}
