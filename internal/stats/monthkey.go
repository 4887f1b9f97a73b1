package stats

import (
	"fmt"
	"time"

	"moneta/internal/core"
)

// MonthKey formats a date's month as yyyy_MM, the bucket document id.
func MonthKey(d core.Date) string {
	return MonthKeyOf(d.Year(), int(d.Month()))
}

// MonthKeyOf builds the bucket id for an explicit year and month (1-12).
func MonthKeyOf(year, month int) string {
	return fmt.Sprintf("%04d_%02d", year, month)
}

// DayKey formats a date's day-of-month as the two-digit dailyExpense sub-key.
func DayKey(d core.Date) string {
	return fmt.Sprintf("%02d", d.Day())
}

// ParseMonthKey splits a yyyy_MM key back into year and month.
func ParseMonthKey(key string) (year, month int, err error) {
	if _, err = fmt.Sscanf(key, "%4d_%2d", &year, &month); err != nil {
		return 0, 0, fmt.Errorf("parse month key %q: %w", key, err)
	}
	if month < 1 || month > 12 {
		return 0, 0, fmt.Errorf("parse month key %q: month out of range", key)
	}
	return year, month, nil
}

// PrevMonthKey returns the key of the preceding calendar month.
func PrevMonthKey(key string) (string, error) {
	return shiftMonthKey(key, -1)
}

// NextMonthKey returns the key of the following calendar month.
func NextMonthKey(key string) (string, error) {
	return shiftMonthKey(key, 1)
}

func shiftMonthKey(key string, months int) (string, error) {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, months, 0)
	return MonthKeyOf(t.Year(), int(t.Month())), nil
}

// FormatMonthDisplay renders a month key for display, e.g. "March 2024".
func FormatMonthDisplay(key string) string {
	year, month, err := ParseMonthKey(key)
	if err != nil {
		return key
	}
	return fmt.Sprintf("%s %d", time.Month(month).String(), year)
}

// IsFutureMonth reports whether the key names a month after now's. Keys
// compare lexicographically because of the zero padding.
func IsFutureMonth(key string, now time.Time) bool {
	return key > MonthKeyOf(now.Year(), int(now.Month()))
}
