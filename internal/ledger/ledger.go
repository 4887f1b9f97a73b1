// Package ledger is the consistency engine. Every transaction create or
// delete mutates three record families in one atomic batch: the transaction
// entry, the owning account's balance and the owning month's stats bucket.
// Balance and stats move only through additive increments, so concurrent
// writers from the same user cannot lose updates.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"moneta/internal/core"
	"moneta/internal/docstore"
	"moneta/internal/stats"
	"moneta/internal/telemetry"
)

var (
	// ErrNotFound: the referenced account or category does not exist for
	// this user.
	ErrNotFound = errors.New("not found")

	// ErrCommit wraps an atomic batch that failed to commit. No partial
	// effect is visible; retrying blindly would double-apply, so callers
	// must surface it instead of retrying.
	ErrCommit = errors.New("batch commit failed")
)

// EventPublisher is notified after a batch commits. A nil publisher is
// valid; publish failures never fail the ledger operation.
type EventPublisher interface {
	TransactionCommitted(ctx context.Context, uid string, tx core.Transaction) error
	TransactionReversed(ctx context.Context, uid string, tx core.Transaction) error
}

type Ledger struct {
	store  docstore.Store
	events EventPublisher
	now    func() time.Time
}

func New(store docstore.Store, events EventPublisher) *Ledger {
	return &Ledger{store: store, events: events, now: time.Now}
}

// Apply validates the draft and commits one atomic batch: insert the
// transaction entry, increment the account balance by the signed amount and
// merge-increment the month bucket. The amount sign always comes from the
// category type, never from the caller.
func (l *Ledger) Apply(ctx context.Context, uid string, draft core.TransactionDraft, account core.Account, category core.Category) (string, error) {
	if err := draft.Validate(); err != nil {
		return "", err
	}
	if err := l.requireDoc(ctx, docstore.AccountsCollection(uid), account.ID, "account"); err != nil {
		return "", err
	}
	if err := l.requireDoc(ctx, docstore.CategoriesCollection(uid), category.ID, "category"); err != nil {
		return "", err
	}

	signed := core.SignedAmount(draft.Amount, category.Type)
	tx := core.Transaction{
		ID:            l.store.NewID(),
		Amount:        signed,
		Currency:      account.Currency,
		Date:          draft.Date,
		CreatedAt:     l.now(),
		Note:          draft.Note,
		AccountID:     account.ID,
		AccountName:   account.Name,
		CategoryID:    category.ID,
		CategoryName:  category.Name,
		CategoryIcon:  category.Icon,
		CategoryColor: category.Color,
		CategoryType:  category.Type,
	}

	var batch docstore.Batch
	batch.Set(docstore.TransactionsCollection(uid), tx.ID, encodeTransaction(tx))
	batch.MergeIncrement(docstore.AccountsCollection(uid), account.ID,
		map[string]int64{fieldBalance: signed.Cents})
	batch.MergeIncrement(docstore.MonthlyStatsCollection(uid), stats.MonthKey(draft.Date),
		stats.DeltaPatch(category.Type, category.ID, stats.DayKey(draft.Date), draft.Amount, 1))

	if err := l.store.Commit(ctx, &batch); err != nil {
		telemetry.CommitFailures.Inc()
		return "", fmt.Errorf("%w: %v", ErrCommit, err)
	}
	telemetry.TransactionsCommitted.Inc()

	slog.InfoContext(ctx, "Transaction applied",
		"tx_id", tx.ID,
		"account_id", account.ID,
		"category_id", category.ID,
		"amount_cents", signed.Cents,
		"month_key", stats.MonthKey(draft.Date))

	l.publishCommitted(ctx, uid, tx)
	return tx.ID, nil
}

// Reverse deletes the transaction entry and applies the exact negation of
// its original deltas, computed only from the persisted snapshot. That keeps
// reversal correct even if the category was edited or deleted since.
func (l *Ledger) Reverse(ctx context.Context, uid string, tx core.Transaction) error {
	var batch docstore.Batch
	batch.Delete(docstore.TransactionsCollection(uid), tx.ID)
	batch.MergeIncrement(docstore.AccountsCollection(uid), tx.AccountID,
		map[string]int64{fieldBalance: -tx.Amount.Cents})
	batch.MergeIncrement(docstore.MonthlyStatsCollection(uid), stats.MonthKey(tx.Date),
		stats.DeltaPatch(tx.CategoryType, tx.CategoryID, stats.DayKey(tx.Date), tx.Amount.Abs(), -1))

	if err := l.store.Commit(ctx, &batch); err != nil {
		telemetry.CommitFailures.Inc()
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	telemetry.TransactionsReversed.Inc()

	slog.InfoContext(ctx, "Transaction reversed",
		"tx_id", tx.ID,
		"account_id", tx.AccountID,
		"amount_cents", tx.Amount.Cents,
		"month_key", stats.MonthKey(tx.Date))

	l.publishReversed(ctx, uid, tx)
	return nil
}

// Update edits a transaction as reversal of the old entry followed by a
// fresh apply, in two independent batches. If the process dies between them
// the ledger is valid but stale: the old effects are gone and the new ones
// not yet applied. Accepted trade-off, kept from the source behavior.
func (l *Ledger) Update(ctx context.Context, uid string, oldTx core.Transaction, draft core.TransactionDraft, account core.Account, category core.Category) (string, error) {
	if err := l.Reverse(ctx, uid, oldTx); err != nil {
		return "", err
	}
	return l.Apply(ctx, uid, draft, account, category)
}

func (l *Ledger) requireDoc(ctx context.Context, collection, id, kind string) error {
	if id == "" {
		return fmt.Errorf("%w: %s", ErrNotFound, kind)
	}
	if _, err := l.store.Get(ctx, collection, id); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return fmt.Errorf("check %s: %w", kind, err)
	}
	return nil
}

func (l *Ledger) publishCommitted(ctx context.Context, uid string, tx core.Transaction) {
	if l.events == nil {
		return
	}
	if err := l.events.TransactionCommitted(ctx, uid, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish commit event", "tx_id", tx.ID, "error", err)
	}
}

func (l *Ledger) publishReversed(ctx context.Context, uid string, tx core.Transaction) {
	if l.events == nil {
		return
	}
	if err := l.events.TransactionReversed(ctx, uid, tx); err != nil {
		slog.ErrorContext(ctx, "Failed to publish reversal event", "tx_id", tx.ID, "error", err)
	}
}
