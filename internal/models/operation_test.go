package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestOperationType_Resource(t *testing.T) {
	tests := []struct {
		op   OperationType
		want Resource
	}{
		{OpAddTransaction, ResourceTransactions},
		{OpUpdateTransaction, ResourceTransactions},
		{OpDeleteTransaction, ResourceTransactions},
		{OpAddCategory, ResourceCategories},
		{OpUpdateCategory, ResourceCategories},
		{OpDeleteCategory, ResourceCategories},
		{OpSetBudget, ResourceBudget},
		{OperationType("UNKNOWN"), Resource("")},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.op.Resource(), "type %s", tt.op)
	}
}

func TestTransaction_Apply_PartialMerge(t *testing.T) {
	tx := Transaction{
		ID:          "srv-1",
		CategoryID:  "c1",
		Description: "coffee",
		Amount:      decimal.NewFromInt(42),
	}

	amount := decimal.NewFromInt(50)
	tx.Apply(TransactionUpdate{Amount: &amount})

	require.True(t, tx.Amount.Equal(decimal.NewFromInt(50)))
	require.Equal(t, "c1", tx.CategoryID, "untouched field must survive")
	require.Equal(t, "coffee", tx.Description)
}

func TestDefaultCategories_FixedList(t *testing.T) {
	cats := DefaultCategories()
	require.Len(t, cats, 5)

	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	require.Equal(t, []string{"Groceries", "Housing", "Entertainment", "Transportation", "Income"}, names)
}
