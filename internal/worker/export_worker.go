// Package worker runs the background export loop: ledger events in, sheet
// rows out.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"moneta/internal/event"
	"moneta/internal/export"
)

// ExportWorker mirrors committed transactions into the export sink and
// removes reversed ones. It is idempotent per transaction id so AMQP
// redeliveries are harmless.
type ExportWorker struct {
	appender export.RowAppender
	remover  export.RowRemover
	seen     map[string]bool
}

func NewExportWorker(appender export.RowAppender, remover export.RowRemover) *ExportWorker {
	return &ExportWorker{
		appender: appender,
		remover:  remover,
		seen:     make(map[string]bool),
	}
}

// HandleEvent processes one ledger event. Returning an error requeues it.
func (w *ExportWorker) HandleEvent(ctx context.Context, e *event.LedgerEvent) error {
	switch e.Kind {
	case event.KindCommitted:
		return w.handleCommitted(ctx, e)
	case event.KindReversed:
		return w.handleReversed(ctx, e)
	default:
		slog.WarnContext(ctx, "Unknown event kind, dropping", "kind", e.Kind, "tx_id", e.TransactionID)
		return nil
	}
}

func (w *ExportWorker) handleCommitted(ctx context.Context, e *event.LedgerEvent) error {
	if w.seen[e.TransactionID] {
		slog.InfoContext(ctx, "Skipping already exported transaction", "tx_id", e.TransactionID)
		return nil
	}

	ref, err := w.appender.Append(ctx, export.Row{
		TransactionID: e.TransactionID,
		Date:          e.Date,
		AccountName:   e.AccountName,
		CategoryName:  e.CategoryName,
		Note:          e.Note,
		AmountCents:   e.AmountCents,
		Currency:      e.Currency,
	})
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	w.seen[e.TransactionID] = true

	slog.InfoContext(ctx, "Exported transaction",
		"tx_id", e.TransactionID,
		"ref", ref,
		"amount_cents", e.AmountCents)
	return nil
}

func (w *ExportWorker) handleReversed(ctx context.Context, e *event.LedgerEvent) error {
	if w.remover == nil {
		slog.WarnContext(ctx, "No remover configured, skipping reversal export", "tx_id", e.TransactionID)
		return nil
	}
	if err := w.remover.Remove(ctx, e.TransactionID); err != nil {
		return fmt.Errorf("remove row: %w", err)
	}
	delete(w.seen, e.TransactionID)

	slog.InfoContext(ctx, "Removed exported transaction", "tx_id", e.TransactionID)
	return nil
}
