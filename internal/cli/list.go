package cli

import (
	"context"
	"fmt"
)

func (a *App) list(ctx context.Context) {
	txs, err := a.transactions.GetAll(ctx, a.scopeID)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	if len(txs) == 0 {
		printlnFn("No transactions yet")
		return
	}

	names := a.categoryNames(ctx)

	for _, tx := range txs {
		marker := " "
		if tx.IsOffline {
			marker = "*"
		}
		sign := "-"
		if tx.IsIncome {
			sign = "+"
		}
		name := names[tx.CategoryID]
		if name == "" {
			name = tx.CategoryID
		}
		fmt.Printf("%s %s  %s%s  %-16s %s\n",
			marker, tx.OccurredAt.Format("2006-01-02"), sign, tx.Amount.StringFixed(2), name, tx.Description)
	}
	printlnFn("(* = not yet synced)")
}

func (a *App) listCategories(ctx context.Context) {
	cats, err := a.categories.GetAll(ctx)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	for _, c := range cats {
		marker := " "
		if c.IsOffline {
			marker = "*"
		}
		fmt.Printf("%s %-16s %s\n", marker, c.Name, c.ID)
	}
}

// categoryNames returns id -> name for display. Errors are not worth
// failing a listing over; ids are shown instead.
func (a *App) categoryNames(ctx context.Context) map[string]string {
	names := map[string]string{}
	cats, err := a.categories.GetAll(ctx)
	if err != nil {
		return names
	}
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
