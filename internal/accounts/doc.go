package accounts

import (
	"moneta/internal/core"
	"moneta/internal/docstore"
)

const (
	fieldName     = "name"
	fieldType     = "type"
	fieldCurrency = "currency"
	fieldBalance  = "balance"
	fieldIcon     = "icon"
	fieldColor    = "color"
)

func encode(a core.Account) map[string]any {
	return map[string]any{
		fieldName:     a.Name,
		fieldType:     string(a.Type),
		fieldCurrency: a.Currency,
		fieldBalance:  a.Balance.Cents,
		fieldIcon:     a.Icon,
		fieldColor:    a.Color,
	}
}

func decode(id string, fields map[string]any) core.Account {
	return core.Account{
		ID:       id,
		Name:     docstore.AsString(fields[fieldName]),
		Type:     core.AccountType(docstore.AsString(fields[fieldType])),
		Currency: docstore.AsString(fields[fieldCurrency]),
		Balance:  core.Money{Cents: docstore.AsInt64(fields[fieldBalance])},
		Icon:     docstore.AsString(fields[fieldIcon]),
		Color:    docstore.AsString(fields[fieldColor]),
	}
}
