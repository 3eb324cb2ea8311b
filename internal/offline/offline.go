package offline

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/dmitrijs2005/budgetkeeper/internal/queue"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// fallback reports whether a backend error should divert the call to
// the offline path. Authentication problems never do.
func fallback(err error) bool {
	return !errors.Is(err, remote.ErrUnauthenticated)
}

// ClearScope removes everything the client holds for one scope: its
// cached snapshots and its queued mutations. Other scopes and the
// shared categories snapshot are untouched. Used when the user leaves
// a group.
func ClearScope(ctx context.Context, c cache.Store, q queue.Queue, log logging.Logger, scopeID string) {
	c.ClearScope(ctx, scopeID)
	if err := q.RemoveForScope(ctx, scopeID); err != nil {
		log.Warn(ctx, "failed to drop queued operations for scope", "scope", scopeID, "error", err)
	}
}

// clock is a test seam; decorators stamp offline records with it.
type clock func() time.Time
