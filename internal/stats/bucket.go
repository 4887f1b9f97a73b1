// Package stats models the per-month aggregate bucket and the codec between
// its nested in-memory form and the flattened dotted-key fields it is stored
// as. One bucket exists per user per calendar month, keyed yyyy_MM.
package stats

import (
	"encoding/json"
	"fmt"
	"strings"

	"moneta/internal/core"
)

// Flattened field names. The sub-maps are stored as top-level fields with a
// "prefix.key" name; the prefix set is closed.
const (
	FieldTotalExpense = "totalExpense"
	FieldTotalIncome  = "totalIncome"

	prefixExpenseByCategory = "expenseByCategory"
	prefixIncomeByCategory  = "incomeByCategory"
	prefixDailyExpense      = "dailyExpense"
)

// MonthlyStats is the canonical nested form. All amounts are unsigned cents.
type MonthlyStats struct {
	MonthKey          string
	TotalExpense      core.Money
	TotalIncome       core.Money
	ExpenseByCategory map[string]core.Money
	IncomeByCategory  map[string]core.Money
	DailyExpense      map[string]core.Money // key is a two-digit day: "01".."31"
}

// Empty returns the all-zero bucket for a month. A bucket absent from storage
// decodes to this, never to an error.
func Empty(monthKey string) MonthlyStats {
	return MonthlyStats{
		MonthKey:          monthKey,
		ExpenseByCategory: map[string]core.Money{},
		IncomeByCategory:  map[string]core.Money{},
		DailyExpense:      map[string]core.Money{},
	}
}

// Decode unflattens a stored bucket document. Keys with a known prefix land
// in the corresponding sub-map; the two totals are read directly; anything
// else is ignored.
func Decode(monthKey string, flat map[string]any) MonthlyStats {
	s := Empty(monthKey)
	for key, raw := range flat {
		value := asCents(raw)
		switch {
		case key == FieldTotalExpense:
			s.TotalExpense = value
		case key == FieldTotalIncome:
			s.TotalIncome = value
		case strings.HasPrefix(key, prefixExpenseByCategory+"."):
			s.ExpenseByCategory[strings.TrimPrefix(key, prefixExpenseByCategory+".")] = value
		case strings.HasPrefix(key, prefixIncomeByCategory+"."):
			s.IncomeByCategory[strings.TrimPrefix(key, prefixIncomeByCategory+".")] = value
		case strings.HasPrefix(key, prefixDailyExpense+"."):
			s.DailyExpense[strings.TrimPrefix(key, prefixDailyExpense+".")] = value
		}
	}
	return s
}

// DeltaPatch builds the additive field deltas one transaction contributes to
// its month bucket. amount is an unsigned magnitude; sign is +1 to apply and
// -1 to reverse. Income deliberately has no daily breakdown.
func DeltaPatch(t core.CategoryType, categoryID, dayKey string, amount core.Money, sign int64) map[string]int64 {
	delta := sign * amount.Abs().Cents
	if t == core.Expense {
		return map[string]int64{
			FieldTotalExpense: delta,
			fieldKey(prefixExpenseByCategory, categoryID): delta,
			fieldKey(prefixDailyExpense, dayKey):          delta,
		}
	}
	return map[string]int64{
		FieldTotalIncome: delta,
		fieldKey(prefixIncomeByCategory, categoryID): delta,
	}
}

// fieldKey builds a flattened field name from one of the fixed prefixes. The
// key part is sanitized so a hostile id cannot smuggle extra path segments.
func fieldKey(prefix, key string) string {
	key = strings.ReplaceAll(key, ".", "_")
	return prefix + "." + key
}

// asCents normalizes a stored numeric value. The memory store keeps int64,
// JSON round-trips produce float64 or json.Number.
func asCents(v any) core.Money {
	switch n := v.(type) {
	case int64:
		return core.Money{Cents: n}
	case int:
		return core.Money{Cents: int64(n)}
	case float64:
		return core.Money{Cents: int64(n)}
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return core.Money{Cents: i}
		}
	}
	return core.Money{}
}

// Consistent reports whether the bucket's totals match its sub-maps: the
// expense total must equal both the per-category and the per-day sums, the
// income total the per-category sum.
func (s MonthlyStats) Consistent() error {
	var expByCat, expByDay, incByCat int64
	for _, v := range s.ExpenseByCategory {
		expByCat += v.Cents
	}
	for _, v := range s.DailyExpense {
		expByDay += v.Cents
	}
	for _, v := range s.IncomeByCategory {
		incByCat += v.Cents
	}
	if s.TotalExpense.Cents != expByCat || s.TotalExpense.Cents != expByDay {
		return fmt.Errorf("expense total %d does not match by-category %d / by-day %d",
			s.TotalExpense.Cents, expByCat, expByDay)
	}
	if s.TotalIncome.Cents != incByCat {
		return fmt.Errorf("income total %d does not match by-category %d", s.TotalIncome.Cents, incByCat)
	}
	return nil
}
