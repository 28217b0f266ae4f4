package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/teamhub/internal/client/client"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	println(args ...any)
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Login(ctx context.Context) error
	Me(ctx context.Context) error
	Teams(ctx context.Context) error
	Stay(ctx context.Context) error
	Status(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the teamhub CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF or when the user
// types "exit" or "quit".
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - verify         confirm an email address with the emailed token
//	  - forgot         request a password reset token
//	  - reset          set a new password with a reset token
//	  - login          authenticate
//	  - status         show session state
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - me             show the current user
//	  - teams          list your teams
//	  - stay           extend the session
//	  - status         show session state
//	  - logout         log out
//	  - exit | quit    leave the program
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		a.println(fmt.Sprintf("teamhub %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				a.println("Available commands: me, teams, stay, status, logout, exit")
			} else {
				a.println("Available commands: register, verify, forgot, reset, login, status, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)
		case "verify":
			cmdErr = a.Verify(ctx)
		case "forgot":
			cmdErr = a.Forgot(ctx)
		case "reset":
			cmdErr = a.Reset(ctx)
		case "login":
			cmdErr = a.Login(ctx)
		case "me":
			cmdErr = a.Me(ctx)
		case "teams":
			cmdErr = a.Teams(ctx)
		case "stay":
			cmdErr = a.Stay(ctx)
		case "status":
			cmdErr = a.Status(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)

		case "exit", "quit":
			a.println("Bye!")
			return

		default:
			a.println("Unknown command:", cmd)
		}

		if cmdErr != nil {
			a.println("Error:", errorMessage(cmdErr))
		}
	}
}

// errorMessage prefers the API's own message over the wrapped chain.
func errorMessage(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
