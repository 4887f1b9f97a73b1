package core

import "sort"

// CategoryAmount is an aggregated magnitude for one category.
type CategoryAmount struct {
	CategoryID string
	Name       string
	Icon       string
	Color      string
	Amount     Money // unsigned magnitude
}

// BreakdownByCategory groups transactions by category id and sums their
// magnitudes, sorted descending by amount. Ties break on category id so the
// order stays stable across reads.
func BreakdownByCategory(txs []Transaction) []CategoryAmount {
	byID := make(map[string]*CategoryAmount)
	for _, tx := range txs {
		entry, ok := byID[tx.CategoryID]
		if !ok {
			entry = &CategoryAmount{
				CategoryID: tx.CategoryID,
				Name:       tx.CategoryName,
				Icon:       tx.CategoryIcon,
				Color:      tx.CategoryColor,
			}
			byID[tx.CategoryID] = entry
		}
		entry.Amount.Cents += tx.Amount.Abs().Cents
	}

	out := make([]CategoryAmount, 0, len(byID))
	for _, entry := range byID {
		out = append(out, *entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].CategoryID < out[j].CategoryID
	})
	return out
}
