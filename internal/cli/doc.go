// Package cli implements the interactive BudgetKeeper shell.
//
// The shell works offline: reads are served from the local cache and
// mutations are queued for replay, with the offline decorators doing
// the branching. The prompt shows the signed-in user and the current
// connectivity mode; a '*' next to a record marks data not yet
// confirmed by the server.
package cli
