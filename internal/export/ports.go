// Package export defines ports for mirroring ledger entries to an external
// spreadsheet. The sheet is a convenience copy; the document store stays the
// source of truth.
package export

import "context"

// Row is one exported ledger entry.
type Row struct {
	TransactionID string
	Date          string // yyyy-MM-dd
	AccountName   string
	CategoryName  string
	Note          string
	AmountCents   int64
	Currency      string
}

type (
	RowAppender interface {
		Append(ctx context.Context, row Row) (rowRef string, err error)
	}

	// RowRemover removes a previously exported entry after a reversal.
	RowRemover interface {
		Remove(ctx context.Context, transactionID string) error
	}
)
