package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"moneta/internal/core"
	"moneta/internal/docstore"
	"moneta/internal/docstore/memory"
)

const testUID = "user-1"

func newTestLedger(t *testing.T) (*Ledger, *memory.Store) {
	t.Helper()
	store := memory.New()
	l := New(store, nil)
	l.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }

	seedAccount(t, store, "acc1", "Checking", 0)
	seedCategory(t, store, "food", "Food", core.Expense)
	seedCategory(t, store, "salary", "Salary", core.Income)
	return l, store
}

func seedAccount(t *testing.T, store *memory.Store, id, name string, balance int64) {
	t.Helper()
	var b docstore.Batch
	b.Set(docstore.AccountsCollection(testUID), id, map[string]any{
		"name":     name,
		"type":     "debit",
		"currency": "USD",
		"balance":  balance,
	})
	if err := store.Commit(context.Background(), &b); err != nil {
		t.Fatalf("seed account: %v", err)
	}
}

func seedCategory(t *testing.T, store *memory.Store, id, name string, typ core.CategoryType) {
	t.Helper()
	var b docstore.Batch
	b.Set(docstore.CategoriesCollection(testUID), id, map[string]any{
		"name": name,
		"type": string(typ),
	})
	if err := store.Commit(context.Background(), &b); err != nil {
		t.Fatalf("seed category: %v", err)
	}
}

func balance(t *testing.T, store *memory.Store, accountID string) int64 {
	t.Helper()
	fields, err := store.Get(context.Background(), docstore.AccountsCollection(testUID), accountID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	return docstore.AsInt64(fields["balance"])
}

func testAccount(id string) core.Account {
	return core.Account{ID: id, Name: "Checking", Type: core.Debit, Currency: "USD"}
}

func testCategory(id, name string, typ core.CategoryType) core.Category {
	return core.Category{ID: id, Name: name, Type: typ, Icon: "x", Color: "#000000"}
}

func draft(cents int64, date core.Date, accountID, categoryID string) core.TransactionDraft {
	return core.TransactionDraft{
		Amount:     core.Money{Cents: cents},
		Date:       date,
		Note:       "test",
		AccountID:  accountID,
		CategoryID: categoryID,
	}
}

func TestApplyExpense(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	// Scenario A: expense 12.50 on 2024-03-05
	id, err := l.Apply(ctx, testUID, draft(1250, core.NewDate(2024, 3, 5), "acc1", "food"),
		testAccount("acc1"), testCategory("food", "Food", core.Expense))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := balance(t, store, "acc1"); got != -1250 {
		t.Fatalf("balance = %d, want -1250", got)
	}

	s, err := l.MonthlyStats(ctx, testUID, 2024, 3)
	if err != nil {
		t.Fatalf("monthly stats: %v", err)
	}
	if s.TotalExpense.Cents != 1250 {
		t.Fatalf("totalExpense = %d, want 1250", s.TotalExpense.Cents)
	}
	if s.ExpenseByCategory["food"].Cents != 1250 {
		t.Fatalf("expenseByCategory.food = %d, want 1250", s.ExpenseByCategory["food"].Cents)
	}
	if s.DailyExpense["05"].Cents != 1250 {
		t.Fatalf("dailyExpense.05 = %d, want 1250", s.DailyExpense["05"].Cents)
	}

	tx, err := l.Transaction(ctx, testUID, id)
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx.Amount.Cents != -1250 {
		t.Fatalf("stored amount = %d, want -1250", tx.Amount.Cents)
	}
	if tx.CategoryName != "Food" || tx.AccountName != "Checking" {
		t.Fatalf("denormalized fields missing: %+v", tx)
	}
}

func TestApplyIncomeThenReverseExpense(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	expID, err := l.Apply(ctx, testUID, draft(1250, core.NewDate(2024, 3, 5), "acc1", "food"),
		testAccount("acc1"), testCategory("food", "Food", core.Expense))
	if err != nil {
		t.Fatalf("apply expense: %v", err)
	}

	// Scenario B: income 1000.00 on 2024-03-10
	if _, err := l.Apply(ctx, testUID, draft(100000, core.NewDate(2024, 3, 10), "acc1", "salary"),
		testAccount("acc1"), testCategory("salary", "Salary", core.Income)); err != nil {
		t.Fatalf("apply income: %v", err)
	}
	if got := balance(t, store, "acc1"); got != 98750 {
		t.Fatalf("balance = %d, want 98750", got)
	}

	s, _ := l.MonthlyStats(ctx, testUID, 2024, 3)
	if s.TotalIncome.Cents != 100000 {
		t.Fatalf("totalIncome = %d, want 100000", s.TotalIncome.Cents)
	}
	if s.IncomeByCategory["salary"].Cents != 100000 {
		t.Fatalf("incomeByCategory.salary = %d", s.IncomeByCategory["salary"].Cents)
	}
	if _, ok := s.DailyExpense["10"]; ok {
		t.Fatal("income must not create a dailyExpense entry")
	}

	// Scenario C: reverse the expense, balance returns to the post-income state
	exp, err := l.Transaction(ctx, testUID, expID)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if err := l.Reverse(ctx, testUID, exp); err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if got := balance(t, store, "acc1"); got != 100000 {
		t.Fatalf("balance after reverse = %d, want 100000", got)
	}

	s, _ = l.MonthlyStats(ctx, testUID, 2024, 3)
	if s.TotalExpense.Cents != 0 || s.ExpenseByCategory["food"].Cents != 0 || s.DailyExpense["05"].Cents != 0 {
		t.Fatalf("expense fields not zeroed: %+v", s)
	}

	if _, err := l.Transaction(ctx, testUID, expID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("reversed transaction still readable: %v", err)
	}
}

func TestApplyReverseRoundTrip(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	for _, tc := range []struct {
		cents    int64
		category string
		typ      core.CategoryType
	}{
		{1, "food", core.Expense},
		{999999, "food", core.Expense},
		{100000, "salary", core.Income},
	} {
		before := balance(t, store, "acc1")

		id, err := l.Apply(ctx, testUID, draft(tc.cents, core.NewDate(2024, 3, 5), "acc1", tc.category),
			testAccount("acc1"), testCategory(tc.category, tc.category, tc.typ))
		if err != nil {
			t.Fatalf("apply: %v", err)
		}
		tx, err := l.Transaction(ctx, testUID, id)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if err := l.Reverse(ctx, testUID, tx); err != nil {
			t.Fatalf("reverse: %v", err)
		}

		if got := balance(t, store, "acc1"); got != before {
			t.Fatalf("balance = %d after round trip, want %d", got, before)
		}
		s, _ := l.MonthlyStats(ctx, testUID, 2024, 3)
		if err := s.Consistent(); err != nil {
			t.Fatalf("bucket inconsistent after round trip: %v", err)
		}
		if s.TotalExpense.Cents != 0 || s.TotalIncome.Cents != 0 {
			t.Fatalf("totals not restored: %+v", s)
		}
	}
}

func TestUpdateIsReverseThenApply(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// Scenario D: update an income from 1000.00 to 800.00
	id, err := l.Apply(ctx, testUID, draft(100000, core.NewDate(2024, 3, 10), "acc1", "salary"),
		testAccount("acc1"), testCategory("salary", "Salary", core.Income))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	oldTx, _ := l.Transaction(ctx, testUID, id)

	newID, err := l.Update(ctx, testUID, oldTx, draft(80000, core.NewDate(2024, 3, 10), "acc1", "salary"),
		testAccount("acc1"), testCategory("salary", "Salary", core.Income))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if newID == id {
		t.Fatal("update must create a fresh entry")
	}

	s, _ := l.MonthlyStats(ctx, testUID, 2024, 3)
	if s.TotalIncome.Cents != 80000 {
		t.Fatalf("totalIncome = %d, want 80000", s.TotalIncome.Cents)
	}
}

// The update coordinator is explicitly not atomic end to end: after the
// reversal batch and before the apply batch, the old effects are gone and
// the new ones absent. That intermediate state is valid, not corrupted.
func TestUpdateIntermediateStateIsValid(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	id, err := l.Apply(ctx, testUID, draft(100000, core.NewDate(2024, 3, 10), "acc1", "salary"),
		testAccount("acc1"), testCategory("salary", "Salary", core.Income))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	oldTx, _ := l.Transaction(ctx, testUID, id)

	// first half of Update only
	if err := l.Reverse(ctx, testUID, oldTx); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	s, _ := l.MonthlyStats(ctx, testUID, 2024, 3)
	if s.TotalIncome.Cents != 0 {
		t.Fatalf("totalIncome = %d in the gap, want 0", s.TotalIncome.Cents)
	}
	if err := s.Consistent(); err != nil {
		t.Fatalf("gap state must stay internally consistent: %v", err)
	}
}

func TestApplyRejectsBadDrafts(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		draft core.TransactionDraft
		want  error
	}{
		{"zero amount", draft(0, core.NewDate(2024, 3, 5), "acc1", "food"), core.ErrInvalidAmount},
		{"negative amount", draft(-100, core.NewDate(2024, 3, 5), "acc1", "food"), core.ErrInvalidAmount},
		{"no account", draft(100, core.NewDate(2024, 3, 5), "", "food"), core.ErrMissingAccount},
		{"no category", draft(100, core.NewDate(2024, 3, 5), "acc1", ""), core.ErrMissingCategory},
	}
	for _, tc := range cases {
		_, err := l.Apply(ctx, testUID, tc.draft,
			testAccount(tc.draft.AccountID), testCategory(tc.draft.CategoryID, "x", core.Expense))
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}

	// rejected before any store call: nothing changed
	if got := balance(t, store, "acc1"); got != 0 {
		t.Fatalf("balance moved on rejected draft: %d", got)
	}
}

func TestApplyUnknownAccountOrCategory(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	_, err := l.Apply(ctx, testUID, draft(100, core.NewDate(2024, 3, 5), "ghost", "food"),
		testAccount("ghost"), testCategory("food", "Food", core.Expense))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown account: got %v", err)
	}

	_, err = l.Apply(ctx, testUID, draft(100, core.NewDate(2024, 3, 5), "acc1", "ghost"),
		testAccount("acc1"), testCategory("ghost", "Ghost", core.Expense))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown category: got %v", err)
	}
}

func TestApplySignNeverTrusted(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	// income category with a magnitude: stored positive
	id, err := l.Apply(ctx, testUID, draft(500, core.NewDate(2024, 3, 5), "acc1", "salary"),
		testAccount("acc1"), testCategory("salary", "Salary", core.Income))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	tx, _ := l.Transaction(ctx, testUID, id)
	if tx.Amount.Cents != 500 {
		t.Fatalf("income stored as %d, want +500", tx.Amount.Cents)
	}
	if tx.CategoryType != core.Income {
		t.Fatalf("category type = %s", tx.CategoryType)
	}
}

func TestConcurrentAppliesLoseNoUpdate(t *testing.T) {
	l, store := newTestLedger(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := l.Apply(ctx, testUID, draft(int64(i+1), core.NewDate(2024, 3, 5), "acc1", "food"),
				testAccount("acc1"), testCategory("food", "Food", core.Expense))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent apply: %v", err)
		}
	}

	// sum 1..n, negated
	want := -int64(n*(n+1)) / 2
	if got := balance(t, store, "acc1"); got != want {
		t.Fatalf("balance = %d, want %d (lost update)", got, want)
	}
	s, _ := l.MonthlyStats(ctx, testUID, 2024, 3)
	if s.TotalExpense.Cents != -want {
		t.Fatalf("totalExpense = %d, want %d", s.TotalExpense.Cents, -want)
	}
	if err := s.Consistent(); err != nil {
		t.Fatalf("bucket inconsistent: %v", err)
	}
}

// failStore wraps the memory store and fails every commit.
type failStore struct {
	*memory.Store
}

func (f failStore) Commit(context.Context, *docstore.Batch) error {
	return fmt.Errorf("store unavailable")
}

func TestCommitFailureSurfacesAsCommitError(t *testing.T) {
	_, store := newTestLedger(t)
	l := New(failStore{store}, nil)
	l.now = time.Now

	_, err := l.Apply(context.Background(), testUID, draft(100, core.NewDate(2024, 3, 5), "acc1", "food"),
		testAccount("acc1"), testCategory("food", "Food", core.Expense))
	if !errors.Is(err, ErrCommit) {
		t.Fatalf("got %v, want ErrCommit", err)
	}

	// underlying store untouched
	if got := balance(t, store, "acc1"); got != 0 {
		t.Fatalf("balance moved on failed commit: %d", got)
	}
}
