package stats

import (
	"testing"

	"moneta/internal/core"
)

func TestDecode(t *testing.T) {
	flat := map[string]any{
		"totalExpense":            int64(1250),
		"totalIncome":             float64(100000),
		"expenseByCategory.food":  int64(1250),
		"incomeByCategory.salary": int64(100000),
		"dailyExpense.05":         int64(1250),
		"someUnknownField":        int64(42),
	}
	s := Decode("2024_03", flat)

	if s.MonthKey != "2024_03" {
		t.Fatalf("month key = %q", s.MonthKey)
	}
	if s.TotalExpense.Cents != 1250 || s.TotalIncome.Cents != 100000 {
		t.Fatalf("totals = %d / %d", s.TotalExpense.Cents, s.TotalIncome.Cents)
	}
	if s.ExpenseByCategory["food"].Cents != 1250 {
		t.Fatalf("expenseByCategory.food = %d", s.ExpenseByCategory["food"].Cents)
	}
	if s.IncomeByCategory["salary"].Cents != 100000 {
		t.Fatalf("incomeByCategory.salary = %d", s.IncomeByCategory["salary"].Cents)
	}
	if s.DailyExpense["05"].Cents != 1250 {
		t.Fatalf("dailyExpense.05 = %d", s.DailyExpense["05"].Cents)
	}
	if err := s.Consistent(); err != nil {
		t.Fatalf("expected consistent bucket: %v", err)
	}
}

func TestDecodeMissingBucket(t *testing.T) {
	s := Decode("2024_03", nil)
	if s.TotalExpense.Cents != 0 || s.TotalIncome.Cents != 0 {
		t.Fatal("missing bucket should decode to zero totals")
	}
	if len(s.ExpenseByCategory) != 0 || len(s.IncomeByCategory) != 0 || len(s.DailyExpense) != 0 {
		t.Fatal("missing bucket should decode to empty maps")
	}
}

func TestDeltaPatchExpense(t *testing.T) {
	patch := DeltaPatch(core.Expense, "food", "05", core.Money{Cents: 1250}, 1)
	want := map[string]int64{
		"totalExpense":           1250,
		"expenseByCategory.food": 1250,
		"dailyExpense.05":        1250,
	}
	assertPatch(t, patch, want)

	// reversal negates every field
	patch = DeltaPatch(core.Expense, "food", "05", core.Money{Cents: 1250}, -1)
	for k, v := range patch {
		if v != -want[k] {
			t.Fatalf("reversal %s = %d, want %d", k, v, -want[k])
		}
	}
}

func TestDeltaPatchIncome(t *testing.T) {
	patch := DeltaPatch(core.Income, "salary", "10", core.Money{Cents: 100000}, 1)
	want := map[string]int64{
		"totalIncome":             100000,
		"incomeByCategory.salary": 100000,
	}
	assertPatch(t, patch, want)
	if _, ok := patch["dailyExpense.10"]; ok {
		t.Fatal("income must not touch the daily expense breakdown")
	}
}

func TestDeltaPatchSanitizesKey(t *testing.T) {
	patch := DeltaPatch(core.Expense, "evil.id", "05", core.Money{Cents: 1}, 1)
	if _, ok := patch["expenseByCategory.evil_id"]; !ok {
		t.Fatalf("dots in category ids must be sanitized, got %v", patch)
	}
}

func TestDeltaPatchDiscardsSign(t *testing.T) {
	patch := DeltaPatch(core.Expense, "food", "05", core.Money{Cents: -1250}, 1)
	if patch["totalExpense"] != 1250 {
		t.Fatalf("magnitude must be taken, got %d", patch["totalExpense"])
	}
}

func assertPatch(t *testing.T, got map[string]int64, want map[string]int64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("patch has %d fields, want %d: %v", len(got), len(want), got)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("patch[%s] = %d, want %d", k, got[k], v)
		}
	}
}
