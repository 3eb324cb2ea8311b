// Package queue implements the pending-operation queue: an ordered,
// persisted log of mutations performed while the backend was
// unreachable, waiting to be replayed by the sync coordinator.
//
// The queue is a single list shared by all resource kinds; drains
// filter it by resource. Replay order is insertion order, oldest
// first, so an ADD is always replayed before a later UPDATE or DELETE
// of the same record.
package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
)

// Queue is the pending-operation log contract.
type Queue interface {
	// Enqueue appends op, assigning it a unique id and a creation
	// timestamp, and returns the stored entry.
	Enqueue(ctx context.Context, op models.PendingOperation) (*models.PendingOperation, error)

	// List returns the full log, oldest first.
	List(ctx context.Context) ([]models.PendingOperation, error)

	// RemoveByIDs deletes exactly the entries with the given ids.
	RemoveByIDs(ctx context.Context, ids []string) error

	// RemoveForTempID deletes every entry referencing the given local
	// id, i.e. the ADD that created it and anything targeting it.
	// Deleting an unsynced record offline cancels its whole history.
	RemoveForTempID(ctx context.Context, tempID string) error

	// RemoveForScope deletes every entry belonging to the given scope,
	// used when a scope's cache is cleared.
	RemoveForScope(ctx context.Context, scopeID string) error

	// UpdateData replaces the payload of an existing entry. Used to
	// fold edits of an unsynced record into its pending ADD.
	UpdateData(ctx context.Context, id string, data json.RawMessage) error

	// IncrementAttempts bumps the failed-replay counter of an entry.
	IncrementAttempts(ctx context.Context, id string) error

	// ReplaceAll overwrites the whole log with ops, preserving their
	// ids and timestamps.
	ReplaceAll(ctx context.Context, ops []models.PendingOperation) error

	// Clear empties the log.
	Clear(ctx context.Context) error

	// MarkSynced records the time of the last successful full drain.
	MarkSynced(ctx context.Context) error

	// LastSync returns the last recorded full-drain time, or the zero
	// time when no sync has completed yet.
	LastSync(ctx context.Context) (time.Time, error)
}
