// Package remote talks to the backend over its REST API. The rest of
// the sync layer depends only on the narrow per-resource interfaces
// defined here, so tests substitute fakes and the offline decorators
// stay independent of the transport.
package remote

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Identity is the authenticated user as reported by the session token.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

// AuthAPI covers session management. CurrentUser fails with
// ErrUnauthenticated when there is no live session.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*Identity, error)
	CurrentUser(ctx context.Context) (*Identity, error)
	Ping(ctx context.Context) error
}

// TransactionAPI is the backend contract for transactions, scoped to
// the authenticated user.
type TransactionAPI interface {
	FetchAll(ctx context.Context, scopeID string) ([]models.Transaction, error)
	Insert(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	Update(ctx context.Context, id string, upd models.TransactionUpdate) (*models.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// CategoryAPI is the backend contract for categories.
type CategoryAPI interface {
	FetchAll(ctx context.Context) ([]models.Category, error)
	Insert(ctx context.Context, c models.Category) (*models.Category, error)
	Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

// BudgetAPI is the backend contract for the per-scope budget. Fetch
// returns ErrNotFound when the scope has no budget yet; Set upserts.
type BudgetAPI interface {
	Fetch(ctx context.Context, scopeID string) (*models.Budget, error)
	Set(ctx context.Context, b models.Budget) (*models.Budget, error)
}
