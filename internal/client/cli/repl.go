package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to. App satisfies
// it; tests provide a stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	Update(ctx context.Context) error
	Open(ctx context.Context, path string) error
	Routes(ctx context.Context) error
	Status(ctx context.Context) error
}

// runREPL reads commands from reader until EOF or "exit"/"quit". Command
// handlers prompt through the same reader, so no input is buffered away
// from them.
//
//	Not logged in:
//	  register, login, open <route>, routes, status, help, exit | quit
//
//	Logged in:
//	  me, update, open <route>, routes, status, logout, help, exit | quit
//
// Errors returned by command handlers are not fatal; handlers report their
// own failures to the user.
func runREPL(ctx context.Context, a execIface, statusFn func(context.Context) string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("fintrack %s> ", statusFn(ctx)))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: me, update, open <route>, routes, status, logout, exit")
			} else {
				printlnFn("Available commands: register, login, open <route>, routes, status, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "me":
			_ = a.Me(ctx)

		case "update":
			_ = a.Update(ctx)

		case "open":
			if len(args) == 0 {
				printlnFn("Usage: open <route>")
				continue
			}
			if err := a.Open(ctx, args[0]); err != nil {
				printlnFn("Error:", err)
			}

		case "routes":
			_ = a.Routes(ctx)

		case "status":
			_ = a.Status(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
