package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Accounts(ctx context.Context) error
	NewAccount(ctx context.Context) error
	UseAccount(ctx context.Context, args []string) error
	Grant(ctx context.Context) error
	Revoke(ctx context.Context) error
	Grants(ctx context.Context) error
	Patients(ctx context.Context) error
	Records(ctx context.Context, args []string) error
	Upload(ctx context.Context, args []string) error
	View(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Watch(ctx context.Context) error
}

// runREPL reads a line, parses the first token as the command, and
// dispatches to methods on a. Unknown commands are reported back. The loop
// exits on scanner EOF or when the user types "exit" or "quit".
//
// Command handlers log and print their own errors; the loop itself stays
// resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("hh> %s ", statusFn()))
		if !scanner.Scan() {
			return
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
				printlnFn("Available commands: whoami, grant, revoke, grants, patients, records, upload, view, delete, watch, logout, exit")
			} else {
				printlnFn("Available commands: login, accounts, newaccount, use, exit")
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "whoami":
			_ = a.Whoami(ctx)

		case "accounts":
			_ = a.Accounts(ctx)

		case "newaccount":
			_ = a.NewAccount(ctx)

		case "use":
			_ = a.UseAccount(ctx, args)

		case "grant":
			_ = a.Grant(ctx)

		case "revoke":
			_ = a.Revoke(ctx)

		case "grants":
			_ = a.Grants(ctx)

		case "patients":
			_ = a.Patients(ctx)

		case "r", "records":
			_ = a.Records(ctx, args)

		case "upload":
			_ = a.Upload(ctx, args)

		case "view":
			_ = a.View(ctx, args)

		case "delete":
			_ = a.Delete(ctx, args)

		case "watch":
			_ = a.Watch(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
