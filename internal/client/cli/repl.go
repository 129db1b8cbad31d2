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
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Me(ctx context.Context) error
	EditProfile(ctx context.Context) error
	ChangePassword(ctx context.Context) error
	Recipes(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Tags(ctx context.Context) error
}

const (
	helpAnonymous = "Available commands: register, login, tags, exit"
	helpLoggedIn  = "Available commands: (l)recipes [query] [--sort MODE] [--tag TAG], show <id>, add, edit <id>, delete <id>, tags, me, profile, passwd, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the family organizer CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// Unknown commands are reported back to the user. The loop exits on scanner
// EOF, when ctx is cancelled, or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help           show available commands
//	  - register       create an account
//	  - login          authenticate
//	  - tags           list the recipe tags
//	  - exit | quit    leave the program
//
//	Logged in:
//	  - recipes | l    list recipes: [query] [--sort MODE] [--tag TAG ...]
//	  - show <id>      show one recipe
//	  - add            create a recipe
//	  - edit <id>      edit a recipe
//	  - delete <id>    delete a recipe
//	  - me             show the profile
//	  - profile        edit the profile
//	  - passwd         change the password
//	  - logout         log out
//
// Errors returned by command handlers are ignored here; handlers print
// their own messages. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("family> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpAnonymous)
			}

		case "register":
			_ = a.Register(ctx)

		case "login":
			_ = a.Login(ctx)

		case "tags":
			_ = a.Tags(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		case "logout", "me", "profile", "passwd", "l", "recipes", "show", "add", "edit", "delete":
			if !a.isLoggedIn() {
				printlnFn("Please log in first")
				continue
			}
			dispatchAuthenticated(ctx, a, cmd, args)

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func dispatchAuthenticated(ctx context.Context, a execIface, cmd string, args []string) {
	switch cmd {
	case "logout":
		_ = a.Logout(ctx)
	case "me":
		_ = a.Me(ctx)
	case "profile":
		_ = a.EditProfile(ctx)
	case "passwd":
		_ = a.ChangePassword(ctx)
	case "l", "recipes":
		_ = a.Recipes(ctx, args)
	case "show":
		_ = a.Show(ctx, args)
	case "add":
		_ = a.Add(ctx)
	case "edit":
		_ = a.Edit(ctx, args)
	case "delete":
		_ = a.Delete(ctx, args)
	}
}
