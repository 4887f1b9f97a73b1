package core

// DefaultAccount is the single account seeded for a brand-new user.
var DefaultAccount = Account{
	Name:     "My Wallet",
	Type:     Wallet,
	Currency: "USD",
	Balance:  Money{},
	Icon:     "wallet",
	Color:    "#3B82F6",
}

// DefaultExpenseCategories and DefaultIncomeCategories are seeded once for a
// new user; afterwards the user owns the set.
var DefaultExpenseCategories = []Category{
	{Name: "Food", Type: Expense, Icon: "fork-knife", Color: "#EF4444", Order: 1},
	{Name: "Transport", Type: Expense, Icon: "car", Color: "#3B82F6", Order: 2},
	{Name: "Shopping", Type: Expense, Icon: "shopping-cart", Color: "#F97316", Order: 3},
	{Name: "Entertainment", Type: Expense, Icon: "game-controller", Color: "#8B5CF6", Order: 4},
	{Name: "Housing", Type: Expense, Icon: "house", Color: "#10B981", Order: 5},
	{Name: "Health", Type: Expense, Icon: "first-aid-kit", Color: "#EC4899", Order: 6},
}

var DefaultIncomeCategories = []Category{
	{Name: "Salary", Type: Income, Icon: "briefcase", Color: "#22C55E", Order: 1},
	{Name: "Investment", Type: Income, Icon: "chart-line-up", Color: "#3B82F6", Order: 2},
	{Name: "Gift", Type: Income, Icon: "gift", Color: "#F59E0B", Order: 3},
}
