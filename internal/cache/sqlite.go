package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
)

// SQLiteStore implements Store on top of the cache_entries table of
// the local database.
type SQLiteStore struct {
	db  dbx.DBTX
	log logging.Logger
	now func() time.Time
}

func NewSQLiteStore(db dbx.DBTX, log logging.Logger) *SQLiteStore {
	return &SQLiteStore{db: db, log: log.With("component", "cache"), now: time.Now}
}

func (s *SQLiteStore) Write(ctx context.Context, key string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn(ctx, "cache write failed: marshal", "key", key, "error", err)
		return
	}

	query := `INSERT INTO cache_entries (key, payload, written_at) VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, written_at = excluded.written_at`
	if _, err := s.db.ExecContext(ctx, query, key, data, s.now().UnixMilli()); err != nil {
		s.log.Warn(ctx, "cache write failed: exec", "key", key, "error", err)
	}
}

func (s *SQLiteStore) Read(ctx context.Context, key string, dest any, maxAge time.Duration) bool {
	var (
		payload   []byte
		writtenAt sql.NullInt64
	)

	row := s.db.QueryRowContext(ctx, `SELECT payload, written_at FROM cache_entries WHERE key = ?`, key)
	if err := row.Scan(&payload, &writtenAt); err != nil {
		if err != sql.ErrNoRows {
			s.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		}
		return false
	}

	// Rows without a write timestamp predate the freshness window and
	// are returned as-is for backward compatibility.
	if writtenAt.Valid && writtenAt.Int64 > 0 {
		written := time.UnixMilli(writtenAt.Int64)
		if s.now().Sub(written) > maxAge {
			return false
		}
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		s.log.Warn(ctx, "cache read failed: corrupt entry", "key", key, "error", err)
		return false
	}
	return true
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		s.log.Warn(ctx, "cache remove failed", "key", key, "error", err)
	}
}

func (s *SQLiteStore) KeysWithPrefix(ctx context.Context, prefix string) []string {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key FROM cache_entries WHERE key LIKE ? || '%' ORDER BY key`, prefix)
	if err != nil {
		s.log.Warn(ctx, "cache key listing failed", "prefix", prefix, "error", err)
		return []string{}
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			s.log.Warn(ctx, "cache key listing failed: scan", "prefix", prefix, "error", err)
			return []string{}
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn(ctx, "cache key listing failed: rows", "prefix", prefix, "error", err)
		return []string{}
	}
	return keys
}

func (s *SQLiteStore) ClearScope(ctx context.Context, scopeID string) {
	s.Remove(ctx, TransactionsKey(scopeID))
	s.Remove(ctx, BudgetKey(scopeID))
}

func (s *SQLiteStore) ClearAll(ctx context.Context) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		s.log.Warn(ctx, "cache clear failed", "error", err)
	}
}
