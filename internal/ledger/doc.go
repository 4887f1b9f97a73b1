package ledger

import (
	"time"

	"moneta/internal/core"
	"moneta/internal/docstore"
)

// Transaction document field names. Dates are stored as ISO strings so the
// store's descending order on "date" matches chronological order.
const (
	fieldAmount        = "amount"
	fieldCurrency      = "currency"
	fieldDate          = "date"
	fieldCreatedAt     = "createdAt"
	fieldNote          = "note"
	fieldAccountID     = "accountId"
	fieldAccountName   = "accountName"
	fieldCategoryID    = "categoryId"
	fieldCategoryName  = "categoryName"
	fieldCategoryIcon  = "categoryIcon"
	fieldCategoryColor = "categoryColor"
	fieldCategoryType  = "categoryType"

	fieldBalance = "balance" // on the account document

	dateLayout = "2006-01-02"
)

func encodeTransaction(tx core.Transaction) map[string]any {
	return map[string]any{
		fieldAmount:        tx.Amount.Cents,
		fieldCurrency:      tx.Currency,
		fieldDate:          tx.Date.Format(dateLayout),
		fieldCreatedAt:     tx.CreatedAt.UTC().Format(time.RFC3339Nano),
		fieldNote:          tx.Note,
		fieldAccountID:     tx.AccountID,
		fieldAccountName:   tx.AccountName,
		fieldCategoryID:    tx.CategoryID,
		fieldCategoryName:  tx.CategoryName,
		fieldCategoryIcon:  tx.CategoryIcon,
		fieldCategoryColor: tx.CategoryColor,
		fieldCategoryType:  string(tx.CategoryType),
	}
}

func decodeTransaction(id string, fields map[string]any) core.Transaction {
	tx := core.Transaction{
		ID:            id,
		Amount:        core.Money{Cents: docstore.AsInt64(fields[fieldAmount])},
		Currency:      docstore.AsString(fields[fieldCurrency]),
		Note:          docstore.AsString(fields[fieldNote]),
		AccountID:     docstore.AsString(fields[fieldAccountID]),
		AccountName:   docstore.AsString(fields[fieldAccountName]),
		CategoryID:    docstore.AsString(fields[fieldCategoryID]),
		CategoryName:  docstore.AsString(fields[fieldCategoryName]),
		CategoryIcon:  docstore.AsString(fields[fieldCategoryIcon]),
		CategoryColor: docstore.AsString(fields[fieldCategoryColor]),
		CategoryType:  core.CategoryType(docstore.AsString(fields[fieldCategoryType])),
	}
	if d, err := time.Parse(dateLayout, docstore.AsString(fields[fieldDate])); err == nil {
		tx.Date = core.DateOf(d)
	}
	if ts, err := time.Parse(time.RFC3339Nano, docstore.AsString(fields[fieldCreatedAt])); err == nil {
		tx.CreatedAt = ts
	}
	return tx
}
