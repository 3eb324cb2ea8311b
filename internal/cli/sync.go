package cli

import (
	"context"
	"fmt"
	"time"
)

// timeNow is a test seam.
var timeNow = time.Now

func (a *App) sync(ctx context.Context) {
	if !a.watcher.IsOnline(ctx) {
		printlnFn("Offline; changes will sync automatically when the connection returns")
		return
	}
	if err := a.syncer.SyncAll(ctx); err != nil {
		printlnFn("Sync failed:", err)
		return
	}
	printlnFn("Synced")
}

func (a *App) status(ctx context.Context) {
	ops, err := a.queue.List(ctx)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	fmt.Printf("Mode: %s  Pending operations: %d\n", a.currentMode(), len(ops))

	last, err := a.queue.LastSync(ctx)
	if err == nil && !last.IsZero() {
		fmt.Printf("Last full sync: %s\n", last.Format(time.RFC3339))
	}

	for _, op := range ops {
		fmt.Printf("  %s  %s  attempts=%d\n", op.Timestamp.Format("15:04:05"), op.Type, op.Attempts)
	}
}
