package remote

import "errors"

var (
	// ErrUnauthenticated means there is no valid user session. It is
	// never swallowed by the offline layer; the UI must send the user
	// to the login screen.
	ErrUnauthenticated = errors.New("user not authenticated")

	// ErrUnavailable covers transport failures, timeouts and 5xx
	// responses. The offline layer treats it as "queue and move on".
	ErrUnavailable = errors.New("backend unavailable")

	// ErrNotFound is returned for a missing record.
	ErrNotFound = errors.New("not found")
)
