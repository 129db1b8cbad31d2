// Package cli provides the interactive family organizer command-line client.
//
// It wires configuration, the token store, API services and an interactive
// REPL. Typical flow: restore the saved session if there is one, then read
// and execute user commands until "exit".
//
// Key features:
//   - Register / Login / Logout
//   - Show and edit the profile, change the password
//   - List recipes with search, sort and tag filters
//   - Show, add, edit and delete recipes
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
