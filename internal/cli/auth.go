package cli

import (
	"context"
	"errors"
	"os"

	"github.com/dmitrijs2005/budgetkeeper/internal/cache"
	"github.com/dmitrijs2005/budgetkeeper/internal/remote"
)

// storedSession is what survives a restart: the token for replaying
// queued mutations after reconnect, the identity for the prompt.
type storedSession struct {
	Token    string          `json:"token"`
	Identity remote.Identity `json:"identity"`
}

// restoreSession loads the cached session so a returning user lands in
// the app without typing a password, even offline.
func (a *App) restoreSession(ctx context.Context) {
	var s storedSession
	if !a.cache.Read(ctx, cache.KeyAuthUser, &s, cache.AuthMaxAge) {
		return
	}
	a.auth.SetAccessToken(s.Token)
	if _, err := a.auth.CurrentUser(ctx); err != nil {
		// Expired token: drop the session, keep the local data.
		a.auth.SetAccessToken("")
		a.cache.Remove(ctx, cache.KeyAuthUser)
		return
	}
	a.identity = &s.Identity
	a.analyzer.SetAccessToken(s.Token)
	a.log.Info(ctx, "session restored", "user", s.Identity.Email)
}

func (a *App) Login(ctx context.Context) {

	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	password, err := GetPassword(os.Stdout)
	if err != nil {
		printlnFn("error:", err)
		return
	}

	identity, err := a.auth.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, remote.ErrUnavailable) {
			printlnFn("Server unavailable; continuing offline with locally cached data")
			a.setMode(ctx, ModeOffline)
			return
		}
		printlnFn("Login failed:", err)
		return
	}

	a.identity = identity
	a.analyzer.SetAccessToken(a.auth.AccessToken())
	a.cache.Write(ctx, cache.KeyAuthUser, storedSession{Token: a.auth.AccessToken(), Identity: *identity})
	a.setMode(ctx, ModeOnline)
	printlnFn("Logged in as", identity.Email)
}

// Logout forgets the session but keeps cached data and the pending
// queue, so nothing typed offline is lost.
func (a *App) Logout(ctx context.Context) {
	a.identity = nil
	a.auth.SetAccessToken("")
	a.analyzer.SetAccessToken("")
	a.cache.Remove(ctx, cache.KeyAuthUser)
	printlnFn("Logged out")
}
