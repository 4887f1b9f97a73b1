// Package parser turns free text like "coffee 4.50 yesterday" into a
// transaction draft. It is rule based: an amount token, an optional day word
// and a category keyword match against the user's own category names. The
// output is a draft; the ledger still validates and signs it.
package parser

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"moneta/internal/core"
)

var (
	ErrNoAmount   = errors.New("no amount found in text")
	ErrNoCategory = errors.New("no category matched")
)

var amountPattern = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)

type Parser struct {
	now func() time.Time
}

func New() *Parser {
	return &Parser{now: time.Now}
}

// Parse extracts a draft from text. The account is chosen by the caller; the
// category is matched against the provided list by name, longest match first
// so "public transport" beats "transport".
func (p *Parser) Parse(text string, categories []core.Category) (core.TransactionDraft, error) {
	lower := strings.ToLower(text)

	match := amountPattern.FindString(lower)
	if match == "" {
		return core.TransactionDraft{}, ErrNoAmount
	}
	amount, err := core.ParseAmount(match)
	if err != nil {
		return core.TransactionDraft{}, err
	}

	category, ok := matchCategory(lower, categories)
	if !ok {
		return core.TransactionDraft{}, ErrNoCategory
	}

	date := core.DateOf(p.now())
	if strings.Contains(lower, "yesterday") {
		date = core.DateOf(p.now().AddDate(0, 0, -1))
	}

	return core.TransactionDraft{
		Amount:     amount,
		Date:       date,
		Note:       note(text, match),
		CategoryID: category.ID,
	}, nil
}

func matchCategory(lower string, categories []core.Category) (core.Category, bool) {
	var best core.Category
	bestLen := 0
	for _, c := range categories {
		name := strings.ToLower(c.Name)
		if name != "" && strings.Contains(lower, name) && len(name) > bestLen {
			best, bestLen = c, len(name)
		}
	}
	return best, bestLen > 0
}

// note strips the amount token and day words, keeping the rest as the note.
func note(text, amountToken string) string {
	out := strings.Replace(text, amountToken, "", 1)
	for _, word := range []string{"yesterday", "today", "Yesterday", "Today"} {
		out = strings.Replace(out, word, "", 1)
	}
	return strings.Join(strings.Fields(out), " ")
}
