package recurrence

import (
	"testing"
	"time"
)

func TestIsLeapYear(t *testing.T) {
	tests := []struct {
		year int
		want bool
	}{
		{2024, true},
		{2025, false},
		{1900, false},
		{2000, true},
		{2100, false},
	}
	for _, tt := range tests {
		if got := IsLeapYear(tt.year); got != tt.want {
			t.Errorf("IsLeapYear(%d) = %v, want %v", tt.year, got, tt.want)
		}
	}
}

func TestDaysInMonth(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  int
	}{
		{"january", 2025, time.January, 31},
		{"february leap", 2024, time.February, 29},
		{"february common", 2025, time.February, 28},
		{"february century", 1900, time.February, 28},
		{"february 400", 2000, time.February, 29},
		{"april", 2024, time.April, 30},
		{"december", 2024, time.December, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysInMonth(tt.year, tt.month); got != tt.want {
				t.Errorf("DaysInMonth() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampDueDay(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int
		year   int
		month  time.Month
		want   int
	}{
		{"31 in april", 31, 2024, time.April, 30},
		{"31 in february leap", 31, 2024, time.February, 29},
		{"29 in february common", 29, 2025, time.February, 28},
		{"fits", 15, 2024, time.February, 15},
		{"31 in january", 31, 2024, time.January, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampDueDay(tt.dueDay, tt.year, tt.month); got != tt.want {
				t.Errorf("ClampDueDay() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestClampDueDayProperties(t *testing.T) {
	for _, year := range []int{1900, 2000, 2023, 2024} {
		for m := time.January; m <= time.December; m++ {
			days := DaysInMonth(year, m)
			for due := 1; due <= 31; due++ {
				got := ClampDueDay(due, year, m)
				if got > days {
					t.Fatalf("ClampDueDay(%d, %d, %v) = %d exceeds %d", due, year, m, got, days)
				}
				if due <= days && got != due {
					t.Fatalf("ClampDueDay(%d, %d, %v) = %d, want unchanged", due, year, m, got)
				}
			}
		}
	}
}

func TestAddMonths(t *testing.T) {
	tests := []struct {
		year      int
		month     time.Month
		n         int
		wantYear  int
		wantMonth time.Month
	}{
		{2024, time.December, 1, 2025, time.January},
		{2024, time.January, 1, 2024, time.February},
		{2024, time.March, 13, 2025, time.April},
		{2024, time.January, -1, 2023, time.December},
	}
	for _, tt := range tests {
		y, m := addMonths(tt.year, tt.month, tt.n)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("addMonths(%d, %v, %d) = %d %v, want %d %v", tt.year, tt.month, tt.n, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}
