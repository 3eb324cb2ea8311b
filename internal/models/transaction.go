package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScopePersonal is the scope identifier for the user's own budget,
// as opposed to a shared group budget (identified by the group id).
const ScopePersonal = "personal"

// Transaction is a single income or expense record. The shape mirrors
// the backend row; IsOffline is a client-only flag marking records
// created or edited without server confirmation.
type Transaction struct {
	ID          string          `json:"id"`
	ScopeID     string          `json:"scope_id,omitempty"`
	CategoryID  string          `json:"category_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	IsIncome    bool            `json:"is_income"`
	OccurredAt  time.Time       `json:"occurred_at"`
	CreatedAt   time.Time       `json:"created_at,omitzero"`
	UpdatedAt   time.Time       `json:"updated_at,omitzero"`
	ReceiptURL  string          `json:"receipt_url,omitempty"`
	IsOffline   bool            `json:"is_offline,omitempty"`
}

// TransactionUpdate is a partial update. Nil fields are left untouched.
type TransactionUpdate struct {
	CategoryID  *string          `json:"category_id,omitempty"`
	Description *string          `json:"description,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	IsIncome    *bool            `json:"is_income,omitempty"`
	OccurredAt  *time.Time       `json:"occurred_at,omitempty"`
	ReceiptURL  *string          `json:"receipt_url,omitempty"`
}

// Apply merges the non-nil fields of u into t.
func (t *Transaction) Apply(u TransactionUpdate) {
	if u.CategoryID != nil {
		t.CategoryID = *u.CategoryID
	}
	if u.Description != nil {
		t.Description = *u.Description
	}
	if u.Amount != nil {
		t.Amount = *u.Amount
	}
	if u.IsIncome != nil {
		t.IsIncome = *u.IsIncome
	}
	if u.OccurredAt != nil {
		t.OccurredAt = *u.OccurredAt
	}
	if u.ReceiptURL != nil {
		t.ReceiptURL = *u.ReceiptURL
	}
}
