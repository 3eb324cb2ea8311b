package cache

const (
	prefixTransactions = "transactions_"
	prefixBudget       = "budget_"

	// KeyCategories is the single shared categories snapshot;
	// categories are not partitioned by scope.
	KeyCategories = "categories"

	// KeyAuthUser holds the last known identity so the app can show
	// who is logged in while offline.
	KeyAuthUser = "auth_user"
)

// TransactionsKey returns the cache key of a scope's transaction list.
func TransactionsKey(scopeID string) string {
	return prefixTransactions + scopeID
}

// BudgetKey returns the cache key of a scope's budget.
func BudgetKey(scopeID string) string {
	return prefixBudget + scopeID
}

// TransactionsPrefix returns the prefix shared by all transaction
// snapshots, for prefix listing.
func TransactionsPrefix() string { return prefixTransactions }
