package docstore

// Collection path builders. Every record family is scoped under one user;
// these are the only functions that construct collection paths, so the key
// scheme lives in exactly one place:
//
//	users/{uid}                      profile document
//	users/{uid}/transactions/{id}    ledger entries
//	users/{uid}/accounts/{id}        accounts
//	users/{uid}/categories/{id}      categories
//	users/{uid}/monthly_stats/{key}  month buckets, key yyyy_MM

const (
	UsersCollection = "users"

	// CredentialsCollection maps lowercase email to uid and password hash.
	// It lives outside the per-user tree so login can run before a uid is
	// known, and so Purge never touches it by accident.
	CredentialsCollection = "credentials"
)

func TransactionsCollection(uid string) string {
	return UsersCollection + "/" + uid + "/transactions"
}

func AccountsCollection(uid string) string {
	return UsersCollection + "/" + uid + "/accounts"
}

func CategoriesCollection(uid string) string {
	return UsersCollection + "/" + uid + "/categories"
}

func MonthlyStatsCollection(uid string) string {
	return UsersCollection + "/" + uid + "/monthly_stats"
}
