package event

import (
	"encoding/json"
	"time"
)

const (
	KindCommitted = "committed"
	KindReversed  = "reversed"
)

// LedgerEvent is the message published after every ledger batch commit. It
// carries the full transaction snapshot so the export worker never has to
// read back a record that a later reversal may already have deleted.
type LedgerEvent struct {
	Kind          string    `json:"kind"`
	UserID        string    `json:"userId"`
	TransactionID string    `json:"transactionId"`
	AmountCents   int64     `json:"amountCents"`
	Currency      string    `json:"currency"`
	Date          string    `json:"date"`
	Note          string    `json:"note,omitempty"`
	AccountName   string    `json:"accountName"`
	CategoryName  string    `json:"categoryName"`
	Timestamp     time.Time `json:"timestamp"`
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
