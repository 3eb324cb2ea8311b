package offline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/connectivity"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// Transactions is the offline-aware transaction client.
type Transactions struct {
	api    remote.TransactionAPI
	cache  cache.Store
	queue  queue.Queue
	oracle connectivity.Oracle
	log    logging.Logger
	maxAge time.Duration
	now    clock
}

func NewTransactions(api remote.TransactionAPI, c cache.Store, q queue.Queue,
	oracle connectivity.Oracle, log logging.Logger, maxAge time.Duration) *Transactions {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &Transactions{
		api:    api,
		cache:  c,
		queue:  q,
		oracle: oracle,
		log:    log.With("component", "offline.transactions"),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// GetAll returns the scope's transactions: server truth when online,
// the cached snapshot otherwise, an empty list when neither exists.
func (t *Transactions) GetAll(ctx context.Context, scopeID string) ([]models.Transaction, error) {
	if t.oracle.IsOnline(ctx) {
		txs, err := t.api.FetchAll(ctx, scopeID)
		if err == nil {
			t.cache.Write(ctx, cache.TransactionsKey(scopeID), txs)
			return txs, nil
		}
		if !fallback(err) {
			return nil, err
		}
		t.log.Warn(ctx, "fetch failed, serving cache", "scope", scopeID, "error", err)
	}

	return t.cached(ctx, scopeID), nil
}

// Add records a new transaction. Offline (or on transient backend
// failure) the record gets a temp id, is prepended to the cached list
// and an ADD operation carrying the original payload is queued.
func (t *Transactions) Add(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if tx.ScopeID == "" {
		tx.ScopeID = models.ScopePersonal
	}

	if t.oracle.IsOnline(ctx) {
		created, err := t.api.Insert(ctx, tx)
		if err == nil {
			t.mutateCached(ctx, tx.ScopeID, func(list []models.Transaction) []models.Transaction {
				return append([]models.Transaction{*created}, list...)
			})
			return created, nil
		}
		if !fallback(err) {
			return nil, err
		}
		t.log.Warn(ctx, "insert failed, recording offline", "scope", tx.ScopeID, "error", err)
	}

	return t.addOffline(ctx, tx), nil
}

func (t *Transactions) addOffline(ctx context.Context, tx models.Transaction) *models.Transaction {
	local := tx
	local.ID = models.NewTempID()
	local.IsOffline = true
	local.CreatedAt = t.now()
	local.UpdatedAt = local.CreatedAt

	t.mutateCached(ctx, tx.ScopeID, func(list []models.Transaction) []models.Transaction {
		return append([]models.Transaction{local}, list...)
	})

	// The queued payload is the caller's original one; the temp id
	// travels separately and must never reach the backend.
	data, err := json.Marshal(tx)
	if err != nil {
		t.log.Error(ctx, "failed to encode pending add", "error", err)
		return &local
	}
	if _, err := t.queue.Enqueue(ctx, models.PendingOperation{
		Type:    models.OpAddTransaction,
		Data:    data,
		TempID:  local.ID,
		ScopeID: tx.ScopeID,
	}); err != nil {
		t.log.Error(ctx, "failed to queue pending add", "error", err)
	}

	return &local
}

// Update applies a partial update. Offline, the cached record is
// merged in place; edits of a not-yet-synced record are folded into
// its pending ADD instead of queueing a second operation.
func (t *Transactions) Update(ctx context.Context, scopeID, id string, upd models.TransactionUpdate) (*models.Transaction, error) {
	if t.oracle.IsOnline(ctx) && !models.IsTempID(id) {
		updated, err := t.api.Update(ctx, id, upd)
		if err == nil {
			t.mutateCached(ctx, scopeID, func(list []models.Transaction) []models.Transaction {
				for i := range list {
					if list[i].ID == id {
						list[i] = *updated
					}
				}
				return list
			})
			return updated, nil
		}
		if !fallback(err) {
			return nil, err
		}
		t.log.Warn(ctx, "update failed, recording offline", "id", id, "error", err)
	}

	return t.updateOffline(ctx, scopeID, id, upd)
}

func (t *Transactions) updateOffline(ctx context.Context, scopeID, id string, upd models.TransactionUpdate) (*models.Transaction, error) {
	var updated *models.Transaction
	t.mutateCached(ctx, scopeID, func(list []models.Transaction) []models.Transaction {
		for i := range list {
			if list[i].ID == id {
				list[i].Apply(upd)
				list[i].UpdatedAt = t.now()
				list[i].IsOffline = true
				updated = &list[i]
			}
		}
		return list
	})
	if updated == nil {
		return nil, remote.ErrNotFound
	}

	if models.IsTempID(id) {
		t.foldIntoPendingAdd(ctx, id, *updated)
	} else {
		data, err := json.Marshal(upd)
		if err != nil {
			t.log.Error(ctx, "failed to encode pending update", "error", err)
			return updated, nil
		}
		if _, err := t.queue.Enqueue(ctx, models.PendingOperation{
			Type:     models.OpUpdateTransaction,
			Data:     data,
			TargetID: id,
			ScopeID:  scopeID,
		}); err != nil {
			t.log.Error(ctx, "failed to queue pending update", "error", err)
		}
	}

	return updated, nil
}

// foldIntoPendingAdd rewrites the queued ADD of an unsynced record so
// the eventual replay carries the latest field values, whatever order
// the edits happened in.
func (t *Transactions) foldIntoPendingAdd(ctx context.Context, tempID string, latest models.Transaction) {
	ops, err := t.queue.List(ctx)
	if err != nil {
		t.log.Error(ctx, "failed to read queue", "error", err)
		return
	}

	payload := latest
	payload.ID = ""
	payload.IsOffline = false
	data, err := json.Marshal(payload)
	if err != nil {
		t.log.Error(ctx, "failed to encode folded add", "error", err)
		return
	}

	for _, op := range ops {
		if op.Type == models.OpAddTransaction && op.TempID == tempID {
			if err := t.queue.UpdateData(ctx, op.ID, data); err != nil {
				t.log.Error(ctx, "failed to fold update into pending add", "error", err)
			}
			return
		}
	}
}

// Delete removes a transaction. Deleting a record that only ever
// existed locally also cancels its queued ADD, so nothing about it
// ever reaches the backend.
func (t *Transactions) Delete(ctx context.Context, scopeID, id string) error {
	if t.oracle.IsOnline(ctx) && !models.IsTempID(id) {
		err := t.api.Delete(ctx, id)
		if err == nil {
			t.removeCached(ctx, scopeID, id)
			return nil
		}
		if !fallback(err) {
			return err
		}
		t.log.Warn(ctx, "delete failed, recording offline", "id", id, "error", err)
	}

	t.deleteOffline(ctx, scopeID, id)
	return nil
}

func (t *Transactions) deleteOffline(ctx context.Context, scopeID, id string) {
	t.removeCached(ctx, scopeID, id)

	if models.IsTempID(id) {
		if err := t.queue.RemoveForTempID(ctx, id); err != nil {
			t.log.Error(ctx, "failed to cancel queued operations", "id", id, "error", err)
		}
		return
	}

	if _, err := t.queue.Enqueue(ctx, models.PendingOperation{
		Type:     models.OpDeleteTransaction,
		TargetID: id,
		ScopeID:  scopeID,
	}); err != nil {
		t.log.Error(ctx, "failed to queue pending delete", "error", err)
	}
}

func (t *Transactions) cached(ctx context.Context, scopeID string) []models.Transaction {
	var list []models.Transaction
	if t.cache.Read(ctx, cache.TransactionsKey(scopeID), &list, t.maxAge) {
		return list
	}
	return []models.Transaction{}
}

func (t *Transactions) mutateCached(ctx context.Context, scopeID string, fn func([]models.Transaction) []models.Transaction) {
	list := t.cached(ctx, scopeID)
	t.cache.Write(ctx, cache.TransactionsKey(scopeID), fn(list))
}

func (t *Transactions) removeCached(ctx context.Context, scopeID, id string) {
	t.mutateCached(ctx, scopeID, func(list []models.Transaction) []models.Transaction {
		out := list[:0]
		for _, tx := range list {
			if tx.ID != id {
				out = append(out, tx)
			}
		}
		return out
	})
}
