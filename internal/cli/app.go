package cli

import (
	"bufio"
	"context"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/config"
	"github.com/dmitrijs2005/budgetkeeper/internal/connectivity"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/offline"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/receipt"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
	"github.com/dmitrijs2005/budgetkeeper/internal/store"
	"github.com/dmitrijs2005/budgetkeeper/internal/syncer"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// Service interfaces let tests drive the REPL with stubs; the offline
// decorators satisfy them.

type transactionService interface {
	GetAll(ctx context.Context, scopeID string) ([]models.Transaction, error)
	Add(ctx context.Context, tx models.Transaction) (*models.Transaction, error)
	Update(ctx context.Context, scopeID, id string, upd models.TransactionUpdate) (*models.Transaction, error)
	Delete(ctx context.Context, scopeID, id string) error
}

type categoryService interface {
	GetAll(ctx context.Context) ([]models.Category, error)
	Add(ctx context.Context, c models.Category) (*models.Category, error)
	Update(ctx context.Context, id string, upd models.CategoryUpdate) (*models.Category, error)
	Delete(ctx context.Context, id string) error
}

type budgetService interface {
	Get(ctx context.Context, scopeID string) (*models.Budget, error)
	Set(ctx context.Context, b models.Budget) (*models.Budget, error)
}

type syncService interface {
	SyncAll(ctx context.Context) error
}

// sessionClient is the auth surface plus token accessors, so the app
// can persist a session and restore it offline.
type sessionClient interface {
	remote.AuthAPI
	AccessToken() string
	SetAccessToken(token string)
}

type App struct {
	config       *config.Config
	auth         sessionClient
	transactions transactionService
	categories   categoryService
	budget       budgetService
	syncer       syncService
	analyzer     *receipt.Analyzer
	cache        cache.Store
	queue        queue.Queue
	watcher      *connectivity.Watcher
	log          logging.Logger

	identity *remote.Identity
	scopeID  string
	reader   *bufio.Reader

	// mode is written by the watcher goroutine and read by the REPL
	// prompt, so it stays behind its own lock.
	modeMu sync.RWMutex
	mode   Mode
}

func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {

	db, err := store.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Error(ctx, "error initializing local database", "error", err)
		return nil, err
	}

	apiClient := remote.NewRESTClient(cfg.ServerBaseURL, cfg.RequestTimeout)

	c := cache.NewSQLiteStore(db, log)
	q := queue.NewSQLiteQueue(db)

	checker := connectivity.NewPingChecker(apiClient, cfg.RequestTimeout)
	watcher := connectivity.NewWatcher(checker, log, cfg.OnlineCheckInterval, cfg.OnlineDebounce)

	transactions := offline.NewTransactions(apiClient, c, q, watcher, log, cfg.CacheMaxAge)
	categories := offline.NewCategories(apiClient.Categories(), c, q, watcher, log, cfg.CacheMaxAge)
	budget := offline.NewBudget(apiClient.Budget(), c, q, watcher, log, cfg.CacheMaxAge)

	coordinator := syncer.NewCoordinator(apiClient, apiClient.Categories(), apiClient.Budget(),
		c, q, log, cfg.MaxReplayAttempts, cfg.CacheMaxAge)

	return &App{
		config:       cfg,
		auth:         apiClient,
		transactions: transactions,
		categories:   categories,
		budget:       budget,
		syncer:       coordinator,
		analyzer:     receipt.NewAnalyzer(cfg.ServerBaseURL, cfg.RequestTimeout),
		cache:        c,
		queue:        q,
		watcher:      watcher,
		log:          log,
		scopeID:      models.ScopePersonal,
		reader:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *App) isLoggedIn() bool {
	return a.identity != nil
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "switched mode", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.modeMu.RLock()
	defer a.modeMu.RUnlock()
	return a.mode
}

// Run starts the connectivity watcher and the REPL. A debounced
// reconnect triggers a background drain of the pending queue.
func (a *App) Run(ctx context.Context) {
	unsubscribe := a.watcher.Subscribe(func(online bool) {
		if online {
			a.setMode(ctx, ModeOnline)
			go func() {
				syncCtx, cancel := context.WithTimeout(ctx, time.Minute)
				defer cancel()
				if err := a.syncer.SyncAll(syncCtx); err != nil {
					a.log.Warn(syncCtx, "automatic sync failed", "error", err)
				}
			}()
		} else {
			a.setMode(ctx, ModeOffline)
		}
	})
	defer unsubscribe()

	go a.watcher.Run(ctx)

	if a.watcher.IsOnline(ctx) {
		a.setMode(ctx, ModeOnline)
	} else {
		a.setMode(ctx, ModeOffline)
	}

	a.Root(ctx)
}
