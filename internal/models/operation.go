package models

import (
	"encoding/json"
	"time"
)

// OperationType identifies the kind of mutation a queued operation
// will replay against the backend.
type OperationType string

const (
	OpAddTransaction    OperationType = "ADD_TRANSACTION"
	OpUpdateTransaction OperationType = "UPDATE_TRANSACTION"
	OpDeleteTransaction OperationType = "DELETE_TRANSACTION"
	OpAddCategory       OperationType = "ADD_CATEGORY"
	OpUpdateCategory    OperationType = "UPDATE_CATEGORY"
	OpDeleteCategory    OperationType = "DELETE_CATEGORY"
	OpSetBudget         OperationType = "SET_BUDGET"
)

// Resource is the backend resource an operation belongs to. Queue
// drains are filtered by resource, one resource at a time.
type Resource string

const (
	ResourceTransactions Resource = "transactions"
	ResourceCategories   Resource = "categories"
	ResourceBudget       Resource = "budget"
)

// Resource maps an operation type to the resource it mutates.
func (t OperationType) Resource() Resource {
	switch t {
	case OpAddTransaction, OpUpdateTransaction, OpDeleteTransaction:
		return ResourceTransactions
	case OpAddCategory, OpUpdateCategory, OpDeleteCategory:
		return ResourceCategories
	case OpSetBudget:
		return ResourceBudget
	}
	return ""
}

// PendingOperation is one entry of the replay queue: a mutation that
// happened while the app was offline (or while the backend was failing)
// and still has to be committed to the server.
//
// Data holds the original request payload for ADD/UPDATE/SET types.
// TargetID is the server id for UPDATE/DELETE. TempID echoes the
// local-only id of an offline-created record so it can be purged from
// the cache after the server assigns a real one. Attempts counts
// failed replays; the coordinator abandons an entry after too many.
type PendingOperation struct {
	ID        string          `json:"id"`
	Type      OperationType   `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	TargetID  string          `json:"target_id,omitempty"`
	TempID    string          `json:"temp_id,omitempty"`
	ScopeID   string          `json:"scope_id,omitempty"`
	Attempts  int             `json:"attempts"`
	Timestamp time.Time       `json:"timestamp"`
}
