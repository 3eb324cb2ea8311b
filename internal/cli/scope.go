package cli

import (
	"context"

	"github.com/dmitrijs2005/budgetkeeper/internal/models"
	"github.com/dmitrijs2005/budgetkeeper/internal/offline"
)

// scope switches the active budget scope. Without an argument it
// switches back to the personal scope.
func (a *App) scope(args []string) {
	if len(args) == 0 {
		a.scopeID = models.ScopePersonal
		printlnFn("Scope: personal")
		return
	}
	a.scopeID = args[0]
	printlnFn("Scope:", a.scopeID)
}

// leaveScope is for leaving a shared group: the group's cached
// snapshots and its queued operations are discarded so nothing of the
// group replays later, and the shell returns to the personal scope.
func (a *App) leaveScope(ctx context.Context) {
	if a.scopeID == models.ScopePersonal {
		printlnFn("Not in a group scope")
		return
	}

	offline.ClearScope(ctx, a.cache, a.queue, a.log, a.scopeID)
	printlnFn("Left scope", a.scopeID, "and discarded its local data")
	a.scopeID = models.ScopePersonal
}
