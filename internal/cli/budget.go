package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/shopspring/decimal"
)

func (a *App) showBudget(ctx context.Context) {
	b, err := a.budget.Get(ctx, a.scopeID)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	spent := a.spentThisMonth(ctx)

	marker := ""
	if b.IsOffline {
		marker = " (not yet synced)"
	}
	fmt.Printf("Budget: %s  Spent this month: %s  Remaining: %s%s\n",
		b.Amount.StringFixed(2), spent.StringFixed(2), b.Amount.Sub(spent).StringFixed(2), marker)
}

func (a *App) setBudget(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: setbudget <amount>")
		return
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		printlnFn("Invalid amount:", args[0])
		return
	}

	stored, err := a.budget.Set(ctx, models.Budget{ScopeID: a.scopeID, Amount: amount})
	if err != nil {
		printlnFn("error:", err)
		return
	}
	a.reportSaved(stored.IsOffline)
}

// spentThisMonth sums the current month's expenses from whatever list
// GetAll serves (server truth online, cache offline).
func (a *App) spentThisMonth(ctx context.Context) decimal.Decimal {
	spent := decimal.Zero

	txs, err := a.transactions.GetAll(ctx, a.scopeID)
	if err != nil {
		return spent
	}

	now := timeNow()
	for _, tx := range txs {
		if tx.IsIncome {
			continue
		}
		if tx.OccurredAt.Year() == now.Year() && tx.OccurredAt.Month() == now.Month() {
			spent = spent.Add(tx.Amount)
		}
	}
	return spent
}
