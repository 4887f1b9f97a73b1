package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Debit  AccountType = "debit"
	Credit AccountType = "credit"
	Cash   AccountType = "cash"
	Wallet AccountType = "wallet"
)

const (
	Expense CategoryType = "expense"
	Income  CategoryType = "income"
)

type (
	AccountType  string
	CategoryType string

	// Date is a calendar day; the time-of-day portion is always midnight UTC.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Account struct {
		ID       string
		Name     string
		Type     AccountType
		Currency string
		Balance  Money // signed; maintained incrementally by the ledger writer
		Icon     string
		Color    string
	}

	Category struct {
		ID    string
		Name  string
		Type  CategoryType
		Icon  string
		Color string
		Order int // display order; ties broken by insertion order
	}

	// Transaction is the persisted ledger entry. Account and category fields
	// are denormalized snapshots taken at creation time and never refreshed.
	Transaction struct {
		ID        string
		Amount    Money // signed: negative for expense, positive for income
		Currency  string
		Date      Date
		CreatedAt time.Time
		Note      string

		AccountID   string
		AccountName string

		CategoryID    string
		CategoryName  string
		CategoryIcon  string
		CategoryColor string
		CategoryType  CategoryType
	}

	// TransactionDraft is the sole input shape the ledger accepts, whether it
	// came from a form or from the draft parser. Amount is an unsigned
	// magnitude; the ledger applies the sign from the category type.
	TransactionDraft struct {
		Amount     Money
		Date       Date
		Note       string
		AccountID  string
		CategoryID string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidDate     = errors.New("invalid date")
	ErrMissingAccount  = errors.New("missing account selection")
	ErrMissingCategory = errors.New("missing category selection")
	ErrNoteTooLong     = errors.New("note too long (max 200 characters)")
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Abs returns the unsigned magnitude.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

// Neg returns the negation.
func (m Money) Neg() Money {
	return Money{Cents: -m.Cents}
}

func (t AccountType) Valid() bool {
	switch t {
	case Debit, Credit, Cash, Wallet:
		return true
	default:
		return false
	}
}

func (t CategoryType) Valid() bool {
	return t == Expense || t == Income
}

// SignedAmount applies the category-type sign to an unsigned magnitude.
// Expense transactions are negative, income positive. The caller-supplied
// sign is always discarded.
func SignedAmount(amount Money, t CategoryType) Money {
	abs := amount.Abs()
	if t == Expense {
		return abs.Neg()
	}
	return abs
}

func (d TransactionDraft) Validate() error {
	if err := d.Amount.Validate(); err != nil {
		return err
	}
	if err := d.Date.Validate(); err != nil {
		return err
	}
	if len(d.Note) > 200 {
		return ErrNoteTooLong
	}
	if strings.TrimSpace(d.AccountID) == "" {
		return ErrMissingAccount
	}
	if strings.TrimSpace(d.CategoryID) == "" {
		return ErrMissingCategory
	}
	return nil
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("empty account name")
	}
	if !a.Type.Valid() {
		return errors.New("invalid account type")
	}
	if strings.TrimSpace(a.Currency) == "" {
		return errors.New("empty currency")
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("empty category name")
	}
	if !c.Type.Valid() {
		return errors.New("invalid category type")
	}
	return nil
}
