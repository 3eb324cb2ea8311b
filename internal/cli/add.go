package cli

import (
	"context"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/shopspring/decimal"
)

// add walks the user through a full transaction entry.
func (a *App) add(ctx context.Context) {

	amountStr, err := GetSimpleText(a.reader, "Amount (negative for expense handled by type below)", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		printlnFn("Invalid amount:", amountStr)
		return
	}

	kind, err := GetSimpleText(a.reader, "Type: (e)xpense or (i)ncome", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	isIncome := strings.HasPrefix(strings.ToLower(kind), "i")

	categoryID, err := a.pickCategory(ctx)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	description, err := GetSimpleText(a.reader, "Description", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	created, err := a.transactions.Add(ctx, models.Transaction{
		ScopeID:     a.scopeID,
		CategoryID:  categoryID,
		Description: description,
		Amount:      amount,
		IsIncome:    isIncome,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		printlnFn("error:", err)
		return
	}
	a.reportSaved(created.IsOffline)
}

// spend is the quick expense path:
//
//	spend <amount> [description...]
//	spend -receipt <file>
func (a *App) spend(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: spend <amount> [description] | spend -receipt <file>")
		return
	}

	if args[0] == "-receipt" {
		if len(args) < 2 {
			printlnFn("Usage: spend -receipt <file>")
			return
		}
		a.spendFromReceipt(ctx, args[1])
		return
	}

	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		printlnFn("Invalid amount:", args[0])
		return
	}
	description := strings.Join(args[1:], " ")

	categoryID, err := a.pickCategory(ctx)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	created, err := a.transactions.Add(ctx, models.Transaction{
		ScopeID:     a.scopeID,
		CategoryID:  categoryID,
		Description: description,
		Amount:      amount,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		printlnFn("error:", err)
		return
	}
	a.reportSaved(created.IsOffline)
}

// spendFromReceipt uploads a receipt image and pre-fills the entry
// from the analysis. Analysis needs the backend, so offline mode is
// rejected up front.
func (a *App) spendFromReceipt(ctx context.Context, path string) {
	if !a.watcher.IsOnline(ctx) {
		printlnFn("Receipt analysis needs a connection; add the expense manually with 'spend'")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	defer f.Close()

	s, err := a.analyzer.Analyze(ctx, path, f)
	if err != nil {
		printlnFn("Analysis failed:", err)
		return
	}

	printlnFn("Detected:", s.Amount.StringFixed(2), s.Merchant)

	confirm, err := GetSimpleText(a.reader, "Save this expense? (y/n)", os.Stdout)
	if err != nil || !strings.HasPrefix(strings.ToLower(confirm), "y") {
		printlnFn("Discarded")
		return
	}

	categoryID, err := a.pickCategory(ctx)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	occurred := s.Date
	if occurred.IsZero() {
		occurred = time.Now()
	}

	created, err := a.transactions.Add(ctx, models.Transaction{
		ScopeID:     a.scopeID,
		CategoryID:  categoryID,
		Description: s.Merchant,
		Amount:      s.Amount,
		OccurredAt:  occurred,
	})
	if err != nil {
		printlnFn("error:", err)
		return
	}
	a.reportSaved(created.IsOffline)
}

func (a *App) delete(ctx context.Context, args []string) {
	if len(args) == 0 {
		printlnFn("Usage: delete <id>")
		return
	}
	if err := a.transactions.Delete(ctx, a.scopeID, args[0]); err != nil {
		printlnFn("error:", err)
		return
	}
	printlnFn("Deleted")
}

func (a *App) addCategory(ctx context.Context) {
	name, err := GetSimpleText(a.reader, "Category name", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}
	created, err := a.categories.Add(ctx, models.Category{Name: name})
	if err != nil {
		printlnFn("error:", err)
		return
	}
	a.reportSaved(created.IsOffline)
}

// pickCategory lists categories and reads the chosen number.
func (a *App) pickCategory(ctx context.Context) (string, error) {
	cats, err := a.categories.GetAll(ctx)
	if err != nil {
		return "", err
	}
	if len(cats) == 0 {
		return "", errors.New("no categories available")
	}
	for i, c := range cats {
		printlnFn(i+1, "-", c.Name)
	}
	choice, err := GetSimpleText(a.reader, "Category number", os.Stdout)
	if err != nil {
		return "", err
	}
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(cats) {
		return cats[n-1].ID, nil
	}
	printlnFn("No such category, using the first one")
	return cats[0].ID, nil
}

func (a *App) reportSaved(offline bool) {
	if offline {
		printlnFn("Saved locally; will sync when back online")
	} else {
		printlnFn("Saved")
	}
}
