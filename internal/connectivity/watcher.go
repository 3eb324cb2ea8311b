package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
)

// Oracle is the point-in-time predicate the offline decorators branch
// on.
type Oracle interface {
	IsOnline(ctx context.Context) bool
}

// Watcher polls a Checker and notifies subscribers of state changes.
// An offline-to-online transition is only announced after the status
// has held through a debounce re-check, so a flapping connection does
// not fire the sync repeatedly.
type Watcher struct {
	checker  Checker
	log      logging.Logger
	interval time.Duration
	debounce time.Duration

	mu      sync.Mutex
	online  bool
	subs    map[int]func(online bool)
	nextSub int
}

func NewWatcher(checker Checker, log logging.Logger, interval, debounce time.Duration) *Watcher {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	if debounce <= 0 {
		debounce = 1500 * time.Millisecond
	}
	return &Watcher{
		checker:  checker,
		log:      log.With("component", "connectivity"),
		interval: interval,
		debounce: debounce,
		subs:     map[int]func(online bool){},
	}
}

// IsOnline performs a fresh check, ignoring the watcher's last known
// state. This is the oracle the decorators use on every call.
func (w *Watcher) IsOnline(ctx context.Context) bool {
	return w.checker.Check(ctx).Online()
}

// Subscribe registers fn to be called with the new state on every
// (debounced) transition. The returned function unsubscribes.
// Callbacks run on the watcher goroutine and should hand off long
// work.
func (w *Watcher) Subscribe(fn func(online bool)) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextSub
	w.nextSub++
	w.subs[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.subs, id)
	}
}

// Run polls until ctx is cancelled. Call it from a goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (w *Watcher) tick(ctx context.Context) {
	online := w.checker.Check(ctx).Online()

	w.mu.Lock()
	was := w.online
	w.mu.Unlock()

	if online == was {
		return
	}

	if online {
		// Candidate reconnect: require the status to survive the
		// debounce window before declaring stably online.
		select {
		case <-time.After(w.debounce):
		case <-ctx.Done():
			return
		}
		if !w.checker.Check(ctx).Online() {
			w.log.Debug(ctx, "connection flapped during debounce, staying offline")
			return
		}
	}

	w.setState(ctx, online)
}

func (w *Watcher) setState(ctx context.Context, online bool) {
	w.mu.Lock()
	w.online = online
	subs := make([]func(online bool), 0, len(w.subs))
	for _, fn := range w.subs {
		subs = append(subs, fn)
	}
	w.mu.Unlock()

	if online {
		w.log.Info(ctx, "back online")
	} else {
		w.log.Info(ctx, "went offline")
	}

	for _, fn := range subs {
		fn(online)
	}
}
