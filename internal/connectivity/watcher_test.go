package connectivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/budgetkeeper/internal/logging"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	mu     sync.Mutex
	status Status
}

func (f *fakeChecker) set(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = Status{Connected: online, InternetReachable: online}
}

func (f *fakeChecker) Check(ctx context.Context) Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStatus_Online(t *testing.T) {
	require.True(t, Status{Connected: true, InternetReachable: true}.Online())
	require.False(t, Status{Connected: true, InternetReachable: false}.Online(),
		"LAN without internet is offline")
	require.False(t, Status{Connected: false, InternetReachable: false}.Online())
}

type errPinger struct{ err error }

func (p errPinger) Ping(ctx context.Context) error { return p.err }

func TestPingChecker_BackendUnreachable(t *testing.T) {
	c := NewPingChecker(errPinger{err: errors.New("boom")}, time.Second)
	require.False(t, c.Check(context.Background()).InternetReachable)
}

func TestWatcher_NotifiesAfterDebouncedReconnect(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWatcher(fc, testLogger(), 10*time.Millisecond, 20*time.Millisecond)

	events := make(chan bool, 10)
	unsubscribe := w.Subscribe(func(online bool) { events <- online })
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	fc.set(true)

	select {
	case online := <-events:
		require.True(t, online)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an online notification")
	}
}

func TestWatcher_FlappingConnectionDoesNotNotify(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWatcher(fc, testLogger(), 10*time.Millisecond, 50*time.Millisecond)

	events := make(chan bool, 10)
	defer w.Subscribe(func(online bool) { events <- online })()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Go online briefly, then drop before the debounce re-check.
	fc.set(true)
	time.Sleep(25 * time.Millisecond)
	fc.set(false)

	select {
	case <-events:
		t.Fatal("flapping connection must not be announced")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcher_OfflineTransitionIsImmediate(t *testing.T) {
	fc := &fakeChecker{}
	fc.set(true)
	w := NewWatcher(fc, testLogger(), 10*time.Millisecond, 20*time.Millisecond)

	events := make(chan bool, 10)
	defer w.Subscribe(func(online bool) { events <- online })()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// First the debounced online notification.
	select {
	case online := <-events:
		require.True(t, online)
	case <-time.After(2 * time.Second):
		t.Fatal("expected the initial online notification")
	}

	fc.set(false)

	select {
	case online := <-events:
		require.False(t, online)
	case <-time.After(2 * time.Second):
		t.Fatal("expected an offline notification")
	}
}

func TestWatcher_Unsubscribe(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWatcher(fc, testLogger(), 10*time.Millisecond, 10*time.Millisecond)

	events := make(chan bool, 10)
	unsubscribe := w.Subscribe(func(online bool) { events <- online })
	unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	fc.set(true)

	select {
	case <-events:
		t.Fatal("unsubscribed listener must not fire")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcher_IsOnlineIsPointInTime(t *testing.T) {
	fc := &fakeChecker{}
	w := NewWatcher(fc, testLogger(), time.Hour, time.Hour)

	require.False(t, w.IsOnline(context.Background()))
	fc.set(true)
	require.True(t, w.IsOnline(context.Background()), "no debounce on direct checks")
}
