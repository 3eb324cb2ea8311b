package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

func (a *App) getStatus() string {
	s := ""
	if a.identity != nil && a.identity.Email != "" {
		s = a.identity.Email + " "
	}
	if a.scopeID != "" && a.scopeID != "personal" {
		s = s + a.scopeID + " "
	}
	if mode := a.currentMode(); mode != "" {
		s = s + string(mode)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the read-eval-print loop. It reads a line, parses the
// first token as the command, and dispatches to methods on a. Unknown
// commands are reported back to the user. The loop exits on scanner
// EOF or when the user types "exit" or "quit".
//
// Command handlers report their own errors; the loop never aborts on
// one.
func (a *App) Root(ctx context.Context) {

	printlnFn("Welcome to BudgetKeeper CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	a.restoreSession(ctx)
	if !a.isLoggedIn() {
		a.Login(ctx)
	}

	for {
		fmt.Printf("bk %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: (l)ist, add, spend, categories, addcategory, budget, setbudget, sync, status, scope, leavescope, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "l", "list":
			a.list(ctx)
		case "add":
			a.add(ctx)
		case "spend":
			a.spend(ctx, args)
		case "delete":
			a.delete(ctx, args)
		case "categories":
			a.listCategories(ctx)
		case "addcategory":
			a.addCategory(ctx)
		case "budget":
			a.showBudget(ctx)
		case "setbudget":
			a.setBudget(ctx, args)
		case "sync":
			a.sync(ctx)
		case "status":
			a.status(ctx)
		case "scope":
			a.scope(args)
		case "leavescope":
			a.leaveScope(ctx)
		case "exit", "quit":
			printlnFn("Bye!")
			return
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
