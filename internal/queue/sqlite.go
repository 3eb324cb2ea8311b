package queue

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/dbx"
	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/google/uuid"
)

const lastSyncKey = "last_sync"

// SQLiteQueue implements Queue on top of the pending_operations and
// metadata tables of the local database.
type SQLiteQueue struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteQueue(db *sql.DB) *SQLiteQueue {
	return &SQLiteQueue{db: db, now: time.Now}
}

func (q *SQLiteQueue) Enqueue(ctx context.Context, op models.PendingOperation) (*models.PendingOperation, error) {
	op.ID = uuid.NewString()
	op.Timestamp = q.now()

	query := `INSERT INTO pending_operations (id, type, data, target_id, temp_id, scope_id, attempts, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := q.db.ExecContext(ctx, query,
		op.ID, string(op.Type), []byte(op.Data), op.TargetID, op.TempID, op.ScopeID, op.Attempts, op.Timestamp.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue operation: %w", err)
	}
	return &op, nil
}

func (q *SQLiteQueue) List(ctx context.Context) ([]models.PendingOperation, error) {
	query := `SELECT id, type, data, target_id, temp_id, scope_id, attempts, created_at
			FROM pending_operations ORDER BY created_at, rowid`
	rows, err := q.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list operations: %w", err)
	}
	defer rows.Close()

	result := []models.PendingOperation{}
	for rows.Next() {
		var (
			op        models.PendingOperation
			opType    string
			data      []byte
			createdAt int64
		)
		if err := rows.Scan(&op.ID, &opType, &data, &op.TargetID, &op.TempID, &op.ScopeID, &op.Attempts, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan operation: %w", err)
		}
		op.Type = models.OperationType(opType)
		op.Data = json.RawMessage(data)
		op.Timestamp = time.UnixMilli(createdAt)
		result = append(result, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate operations: %w", err)
	}
	return result, nil
}

func (q *SQLiteQueue) RemoveByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	_, err := q.db.ExecContext(ctx,
		`DELETE FROM pending_operations WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return fmt.Errorf("failed to remove operations: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) RemoveForTempID(ctx context.Context, tempID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM pending_operations WHERE temp_id = ? OR target_id = ?`, tempID, tempID)
	if err != nil {
		return fmt.Errorf("failed to remove operations for temp id: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) RemoveForScope(ctx context.Context, scopeID string) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM pending_operations WHERE scope_id = ?`, scopeID)
	if err != nil {
		return fmt.Errorf("failed to remove operations for scope: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) UpdateData(ctx context.Context, id string, data json.RawMessage) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE pending_operations SET data = ? WHERE id = ?`, []byte(data), id)
	if err != nil {
		return fmt.Errorf("failed to update operation data: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
	return nil
}

func (q *SQLiteQueue) IncrementAttempts(ctx context.Context, id string) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE pending_operations SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to increment attempts: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) ReplaceAll(ctx context.Context, ops []models.PendingOperation) error {
	return dbx.WithTx(ctx, q.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM pending_operations`); err != nil {
			return fmt.Errorf("failed to clear operations: %w", err)
		}
		for _, op := range ops {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO pending_operations (id, type, data, target_id, temp_id, scope_id, attempts, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				op.ID, string(op.Type), []byte(op.Data), op.TargetID, op.TempID, op.ScopeID, op.Attempts, op.Timestamp.UnixMilli())
			if err != nil {
				return fmt.Errorf("failed to insert operation: %w", err)
			}
		}
		return nil
	})
}

func (q *SQLiteQueue) Clear(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM pending_operations`); err != nil {
		return fmt.Errorf("failed to clear operations: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) MarkSynced(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, lastSyncKey, []byte(strconv.FormatInt(q.now().UnixMilli(), 10)))
	if err != nil {
		return fmt.Errorf("failed to store last sync time: %w", err)
	}
	return nil
}

func (q *SQLiteQueue) LastSync(ctx context.Context) (time.Time, error) {
	var value []byte
	err := q.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, lastSyncKey).Scan(&value)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	ms, err := strconv.ParseInt(string(value), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last sync time: %w", err)
	}
	return time.UnixMilli(ms), nil
}
