package offline

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

var errBackendDown = errors.New("connection refused")

func setupStores(t *testing.T, name string) (cache.Store, queue.Queue) {
	t.Helper()
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS cache_entries (
  key        TEXT PRIMARY KEY,
  payload    BLOB NOT NULL,
  written_at INTEGER
);

CREATE TABLE IF NOT EXISTS pending_operations (
  id         TEXT PRIMARY KEY,
  type       TEXT NOT NULL,
  data       BLOB,
  target_id  TEXT NOT NULL DEFAULT '',
  temp_id    TEXT NOT NULL DEFAULT '',
  scope_id   TEXT NOT NULL DEFAULT '',
  attempts   INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)

	return cache.NewSQLiteStore(db, testLogger()), queue.NewSQLiteQueue(db)
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

type fakeOracle struct{ online bool }

func (f *fakeOracle) IsOnline(ctx context.Context) bool { return f.online }

func mustList(t *testing.T, q queue.Queue) []models.PendingOperation {
	t.Helper()
	ops, err := q.List(context.Background())
	require.NoError(t, err)
	return ops
}
