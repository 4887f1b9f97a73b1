// Package accounts manages the account records the ledger writes balances
// into. The balance field is only ever mutated by the ledger engine; edits
// here merge around it.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"moneta/internal/core"
	"moneta/internal/docstore"
)

var ErrNotFound = errors.New("account not found")

type Service struct {
	store docstore.Store
}

func NewService(store docstore.Store) *Service {
	return &Service{store: store}
}

func (s *Service) Create(ctx context.Context, uid string, a core.Account) (string, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	a.ID = s.store.NewID()

	var b docstore.Batch
	b.Set(docstore.AccountsCollection(uid), a.ID, encode(a))
	if err := s.store.Commit(ctx, &b); err != nil {
		return "", fmt.Errorf("create account: %w", err)
	}

	slog.InfoContext(ctx, "Account created", "account_id", a.ID, "name", a.Name, "type", a.Type)
	return a.ID, nil
}

func (s *Service) Get(ctx context.Context, uid, id string) (core.Account, error) {
	fields, err := s.store.Get(ctx, docstore.AccountsCollection(uid), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return core.Account{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return decode(id, fields), nil
}

func (s *Service) List(ctx context.Context, uid string) ([]core.Account, error) {
	docs, err := s.store.List(ctx, docstore.AccountsCollection(uid))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	out := make([]core.Account, len(docs))
	for i, d := range docs {
		out[i] = decode(d.ID, d.Fields)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Update edits the account's descriptive fields. The balance is deliberately
// absent from the merge so a concurrent ledger increment can never be lost.
func (s *Service) Update(ctx context.Context, uid string, a core.Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := s.Get(ctx, uid, a.ID); err != nil {
		return err
	}

	var b docstore.Batch
	b.MergeSet(docstore.AccountsCollection(uid), a.ID, map[string]any{
		fieldName:     a.Name,
		fieldType:     string(a.Type),
		fieldCurrency: a.Currency,
		fieldIcon:     a.Icon,
		fieldColor:    a.Color,
	})
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	return nil
}

// Delete removes the account record. Transactions pointing at it become
// orphans; reconciling those is out of scope.
func (s *Service) Delete(ctx context.Context, uid, id string) error {
	var b docstore.Batch
	b.Delete(docstore.AccountsCollection(uid), id)
	if err := s.store.Commit(ctx, &b); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", id)
	return nil
}

// SeedDefaults creates the default wallet for a brand-new user. A user who
// already owns any account is left alone.
func (s *Service) SeedDefaults(ctx context.Context, uid string) error {
	existing, err := s.List(ctx, uid)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	_, err = s.Create(ctx, uid, core.DefaultAccount)
	return err
}
