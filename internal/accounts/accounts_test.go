package accounts

import (
	"context"
	"errors"
	"testing"

	"moneta/internal/core"
	"moneta/internal/docstore"
	"moneta/internal/docstore/memory"
)

const testUID = "user-1"

func TestCreateAndGet(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	id, err := svc.Create(ctx, testUID, core.Account{
		Name: "Checking", Type: core.Debit, Currency: "EUR", Icon: "bank", Color: "#112233",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Get(ctx, testUID, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Checking" || got.Type != core.Debit || got.Currency != "EUR" {
		t.Errorf("got %+v", got)
	}
	if got.Balance.Cents != 0 {
		t.Errorf("new account balance = %d, want 0", got.Balance.Cents)
	}
}

func TestGetMissing(t *testing.T) {
	svc := NewService(memory.New())

	_, err := svc.Get(context.Background(), testUID, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	cases := []struct {
		name string
		acc  core.Account
	}{
		{"empty name", core.Account{Type: core.Cash, Currency: "USD"}},
		{"bad type", core.Account{Name: "X", Type: "savings", Currency: "USD"}},
		{"empty currency", core.Account{Name: "X", Type: core.Cash}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(ctx, testUID, tc.acc); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestUpdatePreservesBalance(t *testing.T) {
	store := memory.New()
	svc := NewService(store)
	ctx := context.Background()

	id, err := svc.Create(ctx, testUID, core.Account{Name: "Cash", Type: core.Cash, Currency: "USD"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Simulate the ledger crediting the account between read and edit.
	var b docstore.Batch
	b.MergeIncrement(docstore.AccountsCollection(testUID), id, map[string]int64{"balance": 5000})
	if err := store.Commit(ctx, &b); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if err := svc.Update(ctx, testUID, core.Account{
		ID: id, Name: "Pocket money", Type: core.Cash, Currency: "USD", Color: "#abcdef",
	}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := svc.Get(ctx, testUID, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Pocket money" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Balance.Cents != 5000 {
		t.Errorf("balance = %d, want 5000 (edit must not clobber it)", got.Balance.Cents)
	}
}

func TestUpdateMissing(t *testing.T) {
	svc := NewService(memory.New())

	err := svc.Update(context.Background(), testUID, core.Account{
		ID: "nope", Name: "X", Type: core.Cash, Currency: "USD",
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListSortedByName(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	for _, name := range []string{"Zeta", "Alpha", "Mid"} {
		if _, err := svc.Create(ctx, testUID, core.Account{Name: name, Type: core.Cash, Currency: "USD"}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}

	got, err := svc.List(ctx, testUID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"Alpha", "Mid", "Zeta"}
	for i, w := range want {
		if got[i].Name != w {
			t.Errorf("list[%d] = %q, want %q", i, got[i].Name, w)
		}
	}
}

func TestDelete(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	id, err := svc.Create(ctx, testUID, core.Account{Name: "Temp", Type: core.Cash, Currency: "USD"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, testUID, id); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, testUID, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSeedDefaults(t *testing.T) {
	svc := NewService(memory.New())
	ctx := context.Background()

	if err := svc.SeedDefaults(ctx, testUID); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	got, err := svc.List(ctx, testUID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].Name != "My Wallet" || got[0].Currency != "USD" {
		t.Fatalf("got %+v", got)
	}

	// Second run is a no-op.
	if err := svc.SeedDefaults(ctx, testUID); err != nil {
		t.Fatalf("SeedDefaults again: %v", err)
	}
	got, _ = svc.List(ctx, testUID)
	if len(got) != 1 {
		t.Errorf("seeding twice created %d accounts", len(got))
	}
}
