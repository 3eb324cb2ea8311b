package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the spending limit for one scope. There is at most one
// budget row per scope on the backend.
type Budget struct {
	ID        string          `json:"id,omitempty"`
	ScopeID   string          `json:"scope_id"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updated_at,omitzero"`
	IsOffline bool            `json:"is_offline,omitempty"`
}

// DefaultBudget is the zero-amount budget returned when neither the
// backend nor the cache has one for the scope.
func DefaultBudget(scopeID string) Budget {
	return Budget{ScopeID: scopeID, Amount: decimal.Zero}
}
