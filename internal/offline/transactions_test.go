package offline

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeTxAPI struct {
	fetchAllFn func(ctx context.Context, scopeID string) ([]models.Transaction, error)
	insertFn   func(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	updateFn   func(ctx context.Context, id string, upd models.TransactionUpdate) (*models.Transaction, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (f *fakeTxAPI) FetchAll(ctx context.Context, scopeID string) ([]models.Transaction, error) {
	if f.fetchAllFn == nil {
		return nil, errBackendDown
	}
	return f.fetchAllFn(ctx, scopeID)
}

func (f *fakeTxAPI) Insert(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
	if f.insertFn == nil {
		return nil, errBackendDown
	}
	return f.insertFn(ctx, tx)
}

func (f *fakeTxAPI) Update(ctx context.Context, id string, upd models.TransactionUpdate) (*models.Transaction, error) {
	if f.updateFn == nil {
		return nil, errBackendDown
	}
	return f.updateFn(ctx, id, upd)
}

func (f *fakeTxAPI) Delete(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return errBackendDown
	}
	return f.deleteFn(ctx, id)
}

func newTransactions(t *testing.T, name string, api remote.TransactionAPI, online bool) (*Transactions, cache.Store, *fakeOracle) {
	t.Helper()
	c, q := setupStores(t, name)
	oracle := &fakeOracle{online: online}
	return NewTransactions(api, c, q, oracle, testLogger(), 0), c, oracle
}

func TestGetAll_OnlineRefreshesCache(t *testing.T) {
	server := []models.Transaction{{ID: "srv-1", ScopeID: "personal", Amount: decimal.NewFromInt(42)}}
	api := &fakeTxAPI{fetchAllFn: func(ctx context.Context, scopeID string) ([]models.Transaction, error) {
		return server, nil
	}}
	tr, c, _ := newTransactions(t, "txonline", api, true)
	ctx := context.Background()

	got, err := tr.GetAll(ctx, models.ScopePersonal)
	require.NoError(t, err)
	require.Len(t, got, 1)

	var cached []models.Transaction
	require.True(t, c.Read(ctx, cache.TransactionsKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
	require.Equal(t, "srv-1", cached[0].ID)
}

func TestGetAll_OfflineServesCache(t *testing.T) {
	tr, c, _ := newTransactions(t, "txoffread", &fakeTxAPI{}, false)
	ctx := context.Background()

	c.Write(ctx, cache.TransactionsKey(models.ScopePersonal),
		[]models.Transaction{{ID: "srv-1", Amount: decimal.NewFromInt(7)}})

	got, err := tr.GetAll(ctx, models.ScopePersonal)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "srv-1", got[0].ID)
}

func TestGetAll_OfflineNoCacheIsEmptyList(t *testing.T) {
	tr, _, _ := newTransactions(t, "txoffempty", &fakeTxAPI{}, false)

	got, err := tr.GetAll(context.Background(), models.ScopePersonal)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestGetAll_BackendFailureFallsBackToCache(t *testing.T) {
	tr, c, _ := newTransactions(t, "txfallback", &fakeTxAPI{}, true)
	ctx := context.Background()

	c.Write(ctx, cache.TransactionsKey(models.ScopePersonal),
		[]models.Transaction{{ID: "srv-2", Amount: decimal.NewFromInt(9)}})

	got, err := tr.GetAll(ctx, models.ScopePersonal)
	require.NoError(t, err, "transient backend failure must not surface")
	require.Len(t, got, 1)
}

func TestGetAll_AuthErrorPropagates(t *testing.T) {
	api := &fakeTxAPI{fetchAllFn: func(ctx context.Context, scopeID string) ([]models.Transaction, error) {
		return nil, remote.ErrUnauthenticated
	}}
	tr, _, _ := newTransactions(t, "txauth", api, true)

	_, err := tr.GetAll(context.Background(), models.ScopePersonal)
	require.ErrorIs(t, err, remote.ErrUnauthenticated)
}

func TestAdd_OfflineCreatesTempRecordAndQueuesOriginalPayload(t *testing.T) {
	tr, c, _ := newTransactions(t, "txoffadd", &fakeTxAPI{}, false)
	ctx := context.Background()

	original := models.Transaction{
		ScopeID:    models.ScopePersonal,
		CategoryID: "c1",
		Amount:     decimal.NewFromInt(42),
	}
	created, err := tr.Add(ctx, original)
	require.NoError(t, err)
	require.True(t, models.IsTempID(created.ID))
	require.True(t, created.IsOffline)

	var cached []models.Transaction
	require.True(t, c.Read(ctx, cache.TransactionsKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
	require.Len(t, cached, 1, "exactly one new cache entry")
	require.Equal(t, created.ID, cached[0].ID)

	ops := mustList(t, tr.queue)
	require.Len(t, ops, 1, "exactly one queue entry")
	require.Equal(t, models.OpAddTransaction, ops[0].Type)
	require.Equal(t, created.ID, ops[0].TempID)

	var queued models.Transaction
	require.NoError(t, json.Unmarshal(ops[0].Data, &queued))
	require.Empty(t, queued.ID, "queued payload is the original, without the temp id")
	require.True(t, queued.Amount.Equal(decimal.NewFromInt(42)))
	require.False(t, queued.IsOffline)
}

func TestAdd_OnlineFailureFallsBackToOfflinePath(t *testing.T) {
	tr, _, _ := newTransactions(t, "txaddfb", &fakeTxAPI{}, true)

	created, err := tr.Add(context.Background(), models.Transaction{Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.True(t, models.IsTempID(created.ID))
	require.Len(t, mustList(t, tr.queue), 1)
}

func TestAdd_AuthErrorPropagatesWithoutQueueing(t *testing.T) {
	api := &fakeTxAPI{insertFn: func(ctx context.Context, tx models.Transaction) (*models.Transaction, error) {
		return nil, remote.ErrUnauthenticated
	}}
	tr, _, _ := newTransactions(t, "txaddauth", api, true)

	_, err := tr.Add(context.Background(), models.Transaction{Amount: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, remote.ErrUnauthenticated)
	require.Empty(t, mustList(t, tr.queue))
}

func TestUpdate_OfflineMergesAndQueues(t *testing.T) {
	tr, c, _ := newTransactions(t, "txoffupd", &fakeTxAPI{}, false)
	ctx := context.Background()

	c.Write(ctx, cache.TransactionsKey(models.ScopePersonal), []models.Transaction{
		{ID: "srv-9", CategoryID: "c1", Amount: decimal.NewFromInt(42)},
	})

	amount := decimal.NewFromInt(50)
	updated, err := tr.Update(ctx, models.ScopePersonal, "srv-9", models.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)
	require.True(t, updated.Amount.Equal(amount))
	require.True(t, updated.IsOffline)
	require.Equal(t, "c1", updated.CategoryID, "shallow merge keeps other fields")

	ops := mustList(t, tr.queue)
	require.Len(t, ops, 1)
	require.Equal(t, models.OpUpdateTransaction, ops[0].Type)
	require.Equal(t, "srv-9", ops[0].TargetID)
}

func TestUpdate_TempRecordFoldsIntoPendingAdd(t *testing.T) {
	tr, _, _ := newTransactions(t, "txfold", &fakeTxAPI{}, false)
	ctx := context.Background()

	created, err := tr.Add(ctx, models.Transaction{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(42)})
	require.NoError(t, err)

	amount := decimal.NewFromInt(99)
	_, err = tr.Update(ctx, models.ScopePersonal, created.ID, models.TransactionUpdate{Amount: &amount})
	require.NoError(t, err)

	ops := mustList(t, tr.queue)
	require.Len(t, ops, 1, "editing an unsynced record must not grow the queue")
	require.Equal(t, models.OpAddTransaction, ops[0].Type)

	var queued models.Transaction
	require.NoError(t, json.Unmarshal(ops[0].Data, &queued))
	require.True(t, queued.Amount.Equal(amount), "pending add carries the latest values")
}

func TestUpdate_OfflineUnknownRecord(t *testing.T) {
	tr, _, _ := newTransactions(t, "txupdmiss", &fakeTxAPI{}, false)

	amount := decimal.NewFromInt(1)
	_, err := tr.Update(context.Background(), models.ScopePersonal, "srv-404", models.TransactionUpdate{Amount: &amount})
	require.ErrorIs(t, err, remote.ErrNotFound)
}

func TestDelete_TempRecordBeforeSyncLeavesNoTrace(t *testing.T) {
	tr, c, _ := newTransactions(t, "txdeltemp", &fakeTxAPI{}, false)
	ctx := context.Background()

	created, err := tr.Add(ctx, models.Transaction{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(42)})
	require.NoError(t, err)

	require.NoError(t, tr.Delete(ctx, models.ScopePersonal, created.ID))

	for _, op := range mustList(t, tr.queue) {
		require.NotEqual(t, created.ID, op.TempID)
		require.NotEqual(t, created.ID, op.TargetID)
	}
	require.Empty(t, mustList(t, tr.queue))

	var cached []models.Transaction
	require.True(t, c.Read(ctx, cache.TransactionsKey(models.ScopePersonal), &cached, cache.DefaultMaxAge))
	require.Empty(t, cached)
}

func TestDelete_OfflineServerRecordQueuesDelete(t *testing.T) {
	tr, c, _ := newTransactions(t, "txdelsrv", &fakeTxAPI{}, false)
	ctx := context.Background()

	c.Write(ctx, cache.TransactionsKey(models.ScopePersonal), []models.Transaction{{ID: "srv-9"}})

	require.NoError(t, tr.Delete(ctx, models.ScopePersonal, "srv-9"))

	ops := mustList(t, tr.queue)
	require.Len(t, ops, 1)
	require.Equal(t, models.OpDeleteTransaction, ops[0].Type)
	require.Equal(t, "srv-9", ops[0].TargetID)
}

func TestClearScope_DropsCacheAndQueuedOperationsOfScopeOnly(t *testing.T) {
	tr, c, _ := newTransactions(t, "txclear", &fakeTxAPI{}, false)
	ctx := context.Background()

	_, err := tr.Add(ctx, models.Transaction{ScopeID: "group-42", Amount: decimal.NewFromInt(1)})
	require.NoError(t, err)
	_, err = tr.Add(ctx, models.Transaction{ScopeID: models.ScopePersonal, Amount: decimal.NewFromInt(2)})
	require.NoError(t, err)

	ClearScope(ctx, c, tr.queue, testLogger(), "group-42")

	var group []models.Transaction
	require.False(t, c.Read(ctx, cache.TransactionsKey("group-42"), &group, cache.DefaultMaxAge))

	var personal []models.Transaction
	require.True(t, c.Read(ctx, cache.TransactionsKey(models.ScopePersonal), &personal, cache.DefaultMaxAge))
	require.Len(t, personal, 1)

	ops := mustList(t, tr.queue)
	require.Len(t, ops, 1)
	require.Equal(t, models.ScopePersonal, ops[0].ScopeID)
}
