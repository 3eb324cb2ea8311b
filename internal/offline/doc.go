// Package offline wraps the backend resource clients with the
// offline-first behavior: every call first consults the connectivity
// oracle, takes the backend path when online (falling back on
// transient failure), and otherwise serves reads from the local cache
// and records writes as pending operations for the sync coordinator
// to replay.
//
// Two rules hold across all resources:
//
//   - ErrUnauthenticated always propagates. A missing session is a
//     user problem, not a connectivity problem, and must never be
//     papered over with a queued write.
//   - Cache and queue failures never propagate. A local write that
//     could not be recorded is logged and the call still succeeds
//     from the caller's point of view.
package offline
