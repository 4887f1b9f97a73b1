package stats

import (
	"testing"
	"time"

	"moneta/internal/core"
)

func TestMonthAndDayKeys(t *testing.T) {
	d := core.NewDate(2024, 3, 5)
	if got := MonthKey(d); got != "2024_03" {
		t.Fatalf("MonthKey = %q", got)
	}
	if got := DayKey(d); got != "05" {
		t.Fatalf("DayKey = %q", got)
	}
}

func TestMonthKeyNavigation(t *testing.T) {
	cases := []struct {
		key        string
		prev, next string
	}{
		{"2024_03", "2024_02", "2024_04"},
		{"2024_01", "2023_12", "2024_02"},
		{"2024_12", "2024_11", "2025_01"},
	}
	for _, tc := range cases {
		prev, err := PrevMonthKey(tc.key)
		if err != nil || prev != tc.prev {
			t.Fatalf("PrevMonthKey(%s) = %q, %v; want %q", tc.key, prev, err, tc.prev)
		}
		next, err := NextMonthKey(tc.key)
		if err != nil || next != tc.next {
			t.Fatalf("NextMonthKey(%s) = %q, %v; want %q", tc.key, next, err, tc.next)
		}
	}
	if _, err := PrevMonthKey("garbage"); err == nil {
		t.Fatal("expected error for malformed key")
	}
}

func TestIsFutureMonth(t *testing.T) {
	now := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if IsFutureMonth("2024_03", now) {
		t.Fatal("current month is not future")
	}
	if !IsFutureMonth("2024_04", now) {
		t.Fatal("next month is future")
	}
	if IsFutureMonth("2023_12", now) {
		t.Fatal("past month is not future")
	}
}

func TestFormatMonthDisplay(t *testing.T) {
	if got := FormatMonthDisplay("2024_03"); got != "March 2024" {
		t.Fatalf("FormatMonthDisplay = %q", got)
	}
}
