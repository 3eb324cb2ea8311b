// Package cache implements the local cache store: JSON snapshots of
// backend resources keyed by resource and scope, each stamped with a
// write time and rejected once older than a freshness window.
//
// Every method is failure-tolerant. Storage and serialization errors
// are logged and turn into cache misses or no-ops; callers never see
// an error from this layer. A broken cache must degrade the app, not
// crash it.
package cache

import (
	"context"
	"time"
)

// DefaultMaxAge is the freshness window applied to resource snapshots
// unless the caller overrides it.
const DefaultMaxAge = 24 * time.Hour

// AuthMaxAge is the freshness window for the cached identity; auth
// state is allowed to go much staler than resource data so the app can
// start offline weeks after the last login.
const AuthMaxAge = 30 * 24 * time.Hour

// Store is the cache contract the offline decorators and the sync
// coordinator depend on.
type Store interface {
	// Write persists payload under key, stamped with the current time.
	// Best effort: failures are logged and swallowed.
	Write(ctx context.Context, key string, payload any)

	// Read unmarshals the entry under key into dest and reports
	// whether dest was populated. Missing, malformed and expired
	// entries all read as misses. Entries written without a timestamp
	// (legacy format) are returned without an expiry check.
	Read(ctx context.Context, key string, dest any, maxAge time.Duration) bool

	// Remove deletes the entry under key, if any.
	Remove(ctx context.Context, key string)

	// KeysWithPrefix lists the keys starting with prefix, e.g. all
	// cached transaction scopes.
	KeysWithPrefix(ctx context.Context, prefix string) []string

	// ClearScope removes the scoped snapshots (transactions, budget)
	// of a single scope, leaving other scopes and the shared
	// categories snapshot untouched.
	ClearScope(ctx context.Context, scopeID string)

	// ClearAll wipes the whole cache.
	ClearAll(ctx context.Context)
}
