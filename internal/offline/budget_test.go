package offline

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeBudgetAPI struct {
	fetchFn func(ctx context.Context, scopeID string) (*models.Budget, error)
	setFn   func(ctx context.Context, b models.Budget) (*models.Budget, error)
}

func (f *fakeBudgetAPI) Fetch(ctx context.Context, scopeID string) (*models.Budget, error) {
	if f.fetchFn == nil {
		return nil, errBackendDown
	}
	return f.fetchFn(ctx, scopeID)
}

func (f *fakeBudgetAPI) Set(ctx context.Context, b models.Budget) (*models.Budget, error) {
	if f.setFn == nil {
		return nil, errBackendDown
	}
	return f.setFn(ctx, b)
}

func newBudget(t *testing.T, name string, api remote.BudgetAPI, online bool) (*Budget, cache.Store) {
	t.Helper()
	c, q := setupStores(t, name)
	return NewBudget(api, c, q, &fakeOracle{online: online}, testLogger(), 0), c
}

func TestBudget_OfflineNoCacheIsZeroDefault(t *testing.T) {
	b, _ := newBudget(t, "bgdefault", &fakeBudgetAPI{}, false)

	got, err := b.Get(context.Background(), models.ScopePersonal)
	require.NoError(t, err)
	require.True(t, got.Amount.IsZero())
	require.Equal(t, models.ScopePersonal, got.ScopeID)
}

func TestBudget_OnlineMissingIsZeroDefault(t *testing.T) {
	api := &fakeBudgetAPI{fetchFn: func(ctx context.Context, scopeID string) (*models.Budget, error) {
		return nil, remote.ErrNotFound
	}}
	b, _ := newBudget(t, "bgmissing", api, true)

	got, err := b.Get(context.Background(), "group-42")
	require.NoError(t, err)
	require.True(t, got.Amount.IsZero())
}

func TestBudget_OnlineMissingPurgesStaleCache(t *testing.T) {
	api := &fakeBudgetAPI{fetchFn: func(ctx context.Context, scopeID string) (*models.Budget, error) {
		return nil, remote.ErrNotFound
	}}
	c, q := setupStores(t, "bgpurge")
	oracle := &fakeOracle{online: true}
	b := NewBudget(api, c, q, oracle, testLogger(), 0)
	ctx := context.Background()

	c.Write(ctx, cache.BudgetKey(models.ScopePersonal),
		models.Budget{ID: "b-1", ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(100)})

	got, err := b.Get(ctx, models.ScopePersonal)
	require.NoError(t, err)
	require.True(t, got.Amount.IsZero())

	// The deleted budget must not come back once the connection drops.
	oracle.online = false
	got, err = b.Get(ctx, models.ScopePersonal)
	require.NoError(t, err)
	require.True(t, got.Amount.IsZero(), "offline read must not resurrect a server-deleted budget")

	var cached models.Budget
	require.False(t, c.Read(ctx, cache.BudgetKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
}

func TestBudget_OnlineFetchRefreshesCache(t *testing.T) {
	server := &models.Budget{ID: "b-1", ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(500)}
	api := &fakeBudgetAPI{fetchFn: func(ctx context.Context, scopeID string) (*models.Budget, error) {
		return server, nil
	}}
	b, c := newBudget(t, "bgonline", api, true)
	ctx := context.Background()

	got, err := b.Get(ctx, models.ScopePersonal)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(decimal.NewFromInt(500)))

	var cached models.Budget
	require.True(t, c.Read(ctx, cache.BudgetKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
	require.Equal(t, "b-1", cached.ID)
}

func TestBudget_OfflineSetCachesAndQueues(t *testing.T) {
	b, c := newBudget(t, "bgoffset", &fakeBudgetAPI{}, false)
	ctx := context.Background()

	stored, err := b.Set(ctx, models.Budget{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	require.True(t, stored.IsOffline)

	var cached models.Budget
	require.True(t, c.Read(ctx, cache.BudgetKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
	require.True(t, cached.Amount.Equal(decimal.NewFromInt(300)))
	require.True(t, cached.IsOffline)

	ops := mustList(t, b.queue)
	require.Len(t, ops, 1)
	require.Equal(t, models.OpSetBudget, ops[0].Type)
	require.Equal(t, models.ScopePersonal, ops[0].ScopeID)
}

func TestBudget_RepeatedOfflineSetKeepsOneQueuedOperation(t *testing.T) {
	b, _ := newBudget(t, "bgsupersede", &fakeBudgetAPI{}, false)
	ctx := context.Background()

	_, err := b.Set(ctx, models.Budget{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = b.Set(ctx, models.Budget{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)

	ops := mustList(t, b.queue)
	require.Len(t, ops, 1, "a newer set supersedes the queued one")
}

func TestBudget_OfflineSetKeepsKnownServerID(t *testing.T) {
	b, c := newBudget(t, "bgkeepid", &fakeBudgetAPI{}, false)
	ctx := context.Background()

	c.Write(ctx, cache.BudgetKey(models.ScopePersonal),
		models.Budget{ID: "b-1", ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(100)})

	stored, err := b.Set(ctx, models.Budget{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(200)})
	require.NoError(t, err)
	require.Equal(t, "b-1", stored.ID)
}

func TestBudget_AuthErrorPropagates(t *testing.T) {
	api := &fakeBudgetAPI{setFn: func(ctx context.Context, bb models.Budget) (*models.Budget, error) {
		return nil, remote.ErrUnauthenticated
	}}
	b, _ := newBudget(t, "bgauth", api, true)

	_, err := b.Set(context.Background(), models.Budget{Amount: decimal.NewFromInt(1)})
	require.ErrorIs(t, err, remote.ErrUnauthenticated)
	require.Empty(t, mustList(t, b.queue))
}
