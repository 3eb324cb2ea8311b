package offline

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/connectivity"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// Budget is the offline-aware budget client. Each scope has at most
// one budget; a scope with none reads as a zero-amount default.
type Budget struct {
	api    remote.BudgetAPI
	cache  cache.Store
	queue  queue.Queue
	oracle connectivity.Oracle
	log    logging.Logger
	maxAge time.Duration
	now    clock
}

func NewBudget(api remote.BudgetAPI, c cache.Store, q queue.Queue,
	oracle connectivity.Oracle, log logging.Logger, maxAge time.Duration) *Budget {
	if maxAge <= 0 {
		maxAge = cache.DefaultMaxAge
	}
	return &Budget{
		api:    api,
		cache:  c,
		queue:  q,
		oracle: oracle,
		log:    log.With("component", "offline.budget"),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// Get returns the scope's budget, falling back to the cached copy and
// finally to the zero-amount default.
func (b *Budget) Get(ctx context.Context, scopeID string) (*models.Budget, error) {
	if b.oracle.IsOnline(ctx) {
		budget, err := b.api.Fetch(ctx, scopeID)
		if err == nil {
			b.cache.Write(ctx, cache.BudgetKey(scopeID), budget)
			return budget, nil
		}
		if errors.Is(err, remote.ErrNotFound) {
			// The scope has no budget on the server. Drop any stale
			// cached copy so an offline read cannot resurrect it.
			b.cache.Remove(ctx, cache.BudgetKey(scopeID))
			def := models.DefaultBudget(scopeID)
			return &def, nil
		}
		if !fallback(err) {
			return nil, err
		}
		b.log.Warn(ctx, "fetch failed, serving cache", "scope", scopeID, "error", err)
	}

	var cached models.Budget
	if b.cache.Read(ctx, cache.BudgetKey(scopeID), &cached, b.maxAge) {
		return &cached, nil
	}

	def := models.DefaultBudget(scopeID)
	return &def, nil
}

// Set stores the scope's budget. Offline, the cached copy is
// overwritten and a SET_BUDGET operation is queued; budget has no
// temp-id dance because Set is an upsert keyed by scope.
func (b *Budget) Set(ctx context.Context, budget models.Budget) (*models.Budget, error) {
	if budget.ScopeID == "" {
		budget.ScopeID = models.ScopePersonal
	}

	if b.oracle.IsOnline(ctx) {
		stored, err := b.api.Set(ctx, budget)
		if err == nil {
			b.cache.Write(ctx, cache.BudgetKey(budget.ScopeID), stored)
			return stored, nil
		}
		if !fallback(err) {
			return nil, err
		}
		b.log.Warn(ctx, "set failed, recording offline", "scope", budget.ScopeID, "error", err)
	}

	return b.setOffline(ctx, budget), nil
}

func (b *Budget) setOffline(ctx context.Context, budget models.Budget) *models.Budget {
	local := budget
	local.UpdatedAt = b.now()
	local.IsOffline = true

	// Keep the server id if we already know it from an earlier fetch.
	var cached models.Budget
	if local.ID == "" && b.cache.Read(ctx, cache.BudgetKey(budget.ScopeID), &cached, b.maxAge) {
		local.ID = cached.ID
	}

	b.cache.Write(ctx, cache.BudgetKey(budget.ScopeID), local)

	data, err := json.Marshal(budget)
	if err != nil {
		b.log.Error(ctx, "failed to encode pending set", "error", err)
		return &local
	}

	// A newer SET supersedes any queued one for the same scope.
	b.dropQueuedSets(ctx, budget.ScopeID)

	if _, err := b.queue.Enqueue(ctx, models.PendingOperation{
		Type:    models.OpSetBudget,
		Data:    data,
		ScopeID: budget.ScopeID,
	}); err != nil {
		b.log.Error(ctx, "failed to queue pending set", "error", err)
	}

	return &local
}

func (b *Budget) dropQueuedSets(ctx context.Context, scopeID string) {
	ops, err := b.queue.List(ctx)
	if err != nil {
		b.log.Error(ctx, "failed to read queue", "error", err)
		return
	}

	var stale []string
	for _, op := range ops {
		if op.Type == models.OpSetBudget && op.ScopeID == scopeID {
			stale = append(stale, op.ID)
		}
	}
	if err := b.queue.RemoveByIDs(ctx, stale); err != nil {
		b.log.Error(ctx, "failed to drop superseded budget sets", "error", err)
	}
}
