package ledger

import (
	"context"
	"errors"
	"fmt"

	"moneta/internal/core"
	"moneta/internal/docstore"
	"moneta/internal/stats"
)

const (
	defaultRecentLimit = 50

	// todayWindow bounds the fetch behind TodayTransactions. Days with more
	// than this many entries undercount; known scaling limit kept from the
	// source behavior.
	todayWindow = 100
)

// MonthlyStats reads one month bucket, decoding the flattened document. A
// missing bucket reads as all-zero.
func (l *Ledger) MonthlyStats(ctx context.Context, uid string, year, month int) (stats.MonthlyStats, error) {
	monthKey := stats.MonthKeyOf(year, month)
	fields, err := l.store.Get(ctx, docstore.MonthlyStatsCollection(uid), monthKey)
	if errors.Is(err, docstore.ErrNotFound) {
		return stats.Empty(monthKey), nil
	}
	if err != nil {
		return stats.MonthlyStats{}, fmt.Errorf("get monthly stats: %w", err)
	}
	return stats.Decode(monthKey, fields), nil
}

// RecentTransactions returns up to limit transactions, newest date first.
func (l *Ledger) RecentTransactions(ctx context.Context, uid string, limit int) ([]core.Transaction, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	docs, err := l.store.ListRecent(ctx, docstore.TransactionsCollection(uid), fieldDate, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent transactions: %w", err)
	}
	txs := make([]core.Transaction, len(docs))
	for i, d := range docs {
		txs[i] = decodeTransaction(d.ID, d.Fields)
	}
	return txs, nil
}

// TodayTransactions filters a bounded recent window down to the current
// calendar day.
func (l *Ledger) TodayTransactions(ctx context.Context, uid string) ([]core.Transaction, error) {
	recent, err := l.RecentTransactions(ctx, uid, todayWindow)
	if err != nil {
		return nil, err
	}
	today := core.DateOf(l.now())
	out := make([]core.Transaction, 0, len(recent))
	for _, tx := range recent {
		if tx.Date.SameDay(today) {
			out = append(out, tx)
		}
	}
	return out, nil
}

// Transaction fetches one entry by id.
func (l *Ledger) Transaction(ctx context.Context, uid, id string) (core.Transaction, error) {
	fields, err := l.store.Get(ctx, docstore.TransactionsCollection(uid), id)
	if errors.Is(err, docstore.ErrNotFound) {
		return core.Transaction{}, fmt.Errorf("%w: transaction %s", ErrNotFound, id)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return decodeTransaction(id, fields), nil
}
