// Package syncer drains the pending-operation queue once connectivity
// returns, replaying each queued mutation against the backend and then
// refreshing the cache with server truth.
package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// DefaultMaxAttempts is how many failed replays an operation survives
// before it is abandoned.
const DefaultMaxAttempts = 5

// Coordinator replays queued operations resource by resource. Drains
// are serialized by a mutex so two reconnect triggers cannot race on
// the shared queue.
type Coordinator struct {
	txAPI       remote.TransactionAPI
	catAPI      remote.CategoryAPI
	budgetAPI   remote.BudgetAPI
	cache       cache.Store
	queue       queue.Queue
	log         logging.Logger
	maxAttempts int
	maxAge      time.Duration

	mu sync.Mutex
}

// NewCoordinator builds a coordinator. maxAge must match the freshness
// window the decorators read with, or temp records in an aged-but-valid
// snapshot would escape the post-replay cleanup.
func NewCoordinator(txAPI remote.TransactionAPI, catAPI remote.CategoryAPI, budgetAPI remote.BudgetAPI,
	c cache.Store, q queue.Queue, log logging.Logger, maxAttempts int, maxAge time.Duration) *Coordinator {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &Coordinator{
		txAPI:       txAPI,
		catAPI:      catAPI,
		budgetAPI:   budgetAPI,
		cache:       c,
		queue:       q,
		log:         log.With("component", "syncer"),
		maxAttempts: maxAttempts,
		maxAge:      maxAge,
	}
}

// SyncAll drains every resource kind, sequentially: transactions,
// categories, budget. Individual replay failures are logged and do
// not abort the batch; an authentication failure aborts the whole
// drain with nothing lost, since replaying without a session is
// pointless.
func (s *Coordinator) SyncAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, resource := range []models.Resource{
		models.ResourceTransactions,
		models.ResourceCategories,
		models.ResourceBudget,
	} {
		if err := s.drain(ctx, resource); err != nil {
			return fmt.Errorf("drain %s: %w", resource, err)
		}
	}

	remaining, err := s.queue.List(ctx)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		if err := s.queue.MarkSynced(ctx); err != nil {
			s.log.Warn(ctx, "failed to record sync time", "error", err)
		}
	}
	return nil
}

func (s *Coordinator) drain(ctx context.Context, resource models.Resource) error {
	all, err := s.queue.List(ctx)
	if err != nil {
		return err
	}

	var ops []models.PendingOperation
	for _, op := range all {
		if op.Type.Resource() == resource {
			ops = append(ops, op)
		}
	}
	if len(ops) == 0 {
		return nil
	}

	s.log.Info(ctx, "draining pending operations", "resource", string(resource), "count", len(ops))

	var done []string
	scopes := map[string]struct{}{}

	for _, op := range ops {
		scopes[op.ScopeID] = struct{}{}

		err := s.replay(ctx, op)
		if err == nil {
			done = append(done, op.ID)
			continue
		}
		if errors.Is(err, remote.ErrUnauthenticated) {
			// Commit what already succeeded, keep the rest queued.
			if rmErr := s.queue.RemoveByIDs(ctx, done); rmErr != nil {
				s.log.Error(ctx, "failed to remove replayed operations", "error", rmErr)
			}
			return err
		}

		s.log.Warn(ctx, "replay failed", "op", string(op.Type), "id", op.ID, "error", err)
		if op.Attempts+1 >= s.maxAttempts {
			s.log.Error(ctx, "abandoning operation after repeated failures",
				"op", string(op.Type), "id", op.ID, "attempts", op.Attempts+1)
			done = append(done, op.ID)
			continue
		}
		if err := s.queue.IncrementAttempts(ctx, op.ID); err != nil {
			s.log.Error(ctx, "failed to record replay attempt", "id", op.ID, "error", err)
		}
	}

	if err := s.queue.RemoveByIDs(ctx, done); err != nil {
		s.log.Error(ctx, "failed to remove replayed operations", "error", err)
	}

	// Refresh with server truth. A failure here never rolls back the
	// drain; a stale cache heals on the next read.
	s.refresh(ctx, resource, scopes)
	return nil
}

func (s *Coordinator) replay(ctx context.Context, op models.PendingOperation) error {
	switch op.Type {
	case models.OpAddTransaction:
		var tx models.Transaction
		if err := json.Unmarshal(op.Data, &tx); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		if _, err := s.txAPI.Insert(ctx, tx); err != nil {
			return err
		}
		s.dropTempTransaction(ctx, op.ScopeID, op.TempID)
		return nil

	case models.OpUpdateTransaction:
		var upd models.TransactionUpdate
		if err := json.Unmarshal(op.Data, &upd); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		_, err := s.txAPI.Update(ctx, op.TargetID, upd)
		return err

	case models.OpDeleteTransaction:
		return ignoreNotFound(s.txAPI.Delete(ctx, op.TargetID))

	case models.OpAddCategory:
		var cat models.Category
		if err := json.Unmarshal(op.Data, &cat); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		if _, err := s.catAPI.Insert(ctx, cat); err != nil {
			return err
		}
		s.dropTempCategory(ctx, op.TempID)
		return nil

	case models.OpUpdateCategory:
		var upd models.CategoryUpdate
		if err := json.Unmarshal(op.Data, &upd); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		_, err := s.catAPI.Update(ctx, op.TargetID, upd)
		return err

	case models.OpDeleteCategory:
		return ignoreNotFound(s.catAPI.Delete(ctx, op.TargetID))

	case models.OpSetBudget:
		var b models.Budget
		if err := json.Unmarshal(op.Data, &b); err != nil {
			return fmt.Errorf("corrupt payload: %w", err)
		}
		_, err := s.budgetAPI.Set(ctx, b)
		return err
	}

	return fmt.Errorf("unknown operation type %q", op.Type)
}

// ignoreNotFound treats deleting an already-deleted record as success.
func ignoreNotFound(err error) error {
	if errors.Is(err, remote.ErrNotFound) {
		return nil
	}
	return err
}

// dropTempTransaction removes the temp-keyed record from the scope's
// cached list after its ADD was accepted; the authoritative record
// arrives with the refresh.
func (s *Coordinator) dropTempTransaction(ctx context.Context, scopeID, tempID string) {
	key := cache.TransactionsKey(scopeID)

	var list []models.Transaction
	if !s.cache.Read(ctx, key, &list, s.maxAge) {
		return
	}
	out := list[:0]
	for _, tx := range list {
		if tx.ID != tempID {
			out = append(out, tx)
		}
	}
	s.cache.Write(ctx, key, out)
}

func (s *Coordinator) dropTempCategory(ctx context.Context, tempID string) {
	var list []models.Category
	if !s.cache.Read(ctx, cache.KeyCategories, &list, s.maxAge) {
		return
	}
	out := list[:0]
	for _, cat := range list {
		if cat.ID != tempID {
			out = append(out, cat)
		}
	}
	s.cache.Write(ctx, cache.KeyCategories, out)
}

func (s *Coordinator) refresh(ctx context.Context, resource models.Resource, scopes map[string]struct{}) {
	switch resource {
	case models.ResourceTransactions:
		for scopeID := range scopes {
			txs, err := s.txAPI.FetchAll(ctx, scopeID)
			if err != nil {
				s.log.Warn(ctx, "post-drain refresh failed", "resource", "transactions", "scope", scopeID, "error", err)
				continue
			}
			s.cache.Write(ctx, cache.TransactionsKey(scopeID), txs)
		}

	case models.ResourceCategories:
		cats, err := s.catAPI.FetchAll(ctx)
		if err != nil {
			s.log.Warn(ctx, "post-drain refresh failed", "resource", "categories", "error", err)
			return
		}
		s.cache.Write(ctx, cache.KeyCategories, cats)

	case models.ResourceBudget:
		for scopeID := range scopes {
			b, err := s.budgetAPI.Fetch(ctx, scopeID)
			if err != nil {
				s.log.Warn(ctx, "post-drain refresh failed", "resource", "budget", "scope", scopeID, "error", err)
				continue
			}
			s.cache.Write(ctx, cache.BudgetKey(scopeID), b)
		}
	}
}
