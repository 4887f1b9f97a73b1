package ledger

import (
	"context"
	"testing"

	"moneta/internal/core"
)

func applyOn(t *testing.T, l *Ledger, date core.Date, cents int64) string {
	t.Helper()
	id, err := l.Apply(context.Background(), testUID, draft(cents, date, "acc1", "food"),
		testAccount("acc1"), testCategory("food", "Food", core.Expense))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	return id
}

func TestRecentTransactionsOrder(t *testing.T) {
	l, _ := newTestLedger(t)

	applyOn(t, l, core.NewDate(2024, 3, 1), 100)
	applyOn(t, l, core.NewDate(2024, 3, 20), 200)
	applyOn(t, l, core.NewDate(2024, 3, 10), 300)

	txs, err := l.RecentTransactions(context.Background(), testUID, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions", len(txs))
	}
	if !txs[0].Date.SameDay(core.NewDate(2024, 3, 20)) || !txs[2].Date.SameDay(core.NewDate(2024, 3, 1)) {
		t.Fatalf("not newest-first: %v, %v, %v", txs[0].Date, txs[1].Date, txs[2].Date)
	}

	limited, err := l.RecentTransactions(context.Background(), testUID, 2)
	if err != nil {
		t.Fatalf("recent limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit ignored: got %d", len(limited))
	}
}

func TestTodayTransactions(t *testing.T) {
	l, _ := newTestLedger(t)

	// ledger clock is pinned to 2024-03-15
	applyOn(t, l, core.NewDate(2024, 3, 15), 100)
	applyOn(t, l, core.NewDate(2024, 3, 15), 200)
	applyOn(t, l, core.NewDate(2024, 3, 14), 300)

	today, err := l.TodayTransactions(context.Background(), testUID)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(today) != 2 {
		t.Fatalf("got %d transactions for today, want 2", len(today))
	}
	for _, tx := range today {
		if !tx.Date.SameDay(core.NewDate(2024, 3, 15)) {
			t.Fatalf("foreign day leaked: %v", tx.Date)
		}
	}
}

func TestMonthlyStatsMissingMonth(t *testing.T) {
	l, _ := newTestLedger(t)

	s, err := l.MonthlyStats(context.Background(), testUID, 2019, 1)
	if err != nil {
		t.Fatalf("missing month must not error: %v", err)
	}
	if s.MonthKey != "2019_01" || s.TotalExpense.Cents != 0 {
		t.Fatalf("unexpected bucket: %+v", s)
	}
}

func TestLedgerIsolatedPerUser(t *testing.T) {
	l, _ := newTestLedger(t)
	applyOn(t, l, core.NewDate(2024, 3, 5), 100)

	txs, err := l.RecentTransactions(context.Background(), "someone-else", 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(txs) != 0 {
		t.Fatalf("cross-user leak: %d transactions", len(txs))
	}
}
