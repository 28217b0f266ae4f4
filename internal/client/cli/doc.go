// Package cli provides the interactive teamhub command-line client.
//
// It wires configuration, local storage, the authenticated API client and
// the session lifecycle, then runs a REPL. A session persisted by a previous
// run is restored at startup.
//
// Key features:
//   - Register, verify email, forgot / reset password
//   - Login / Logout
//   - Show the current user and list teams
//   - Session expiry warning with "stay" to extend, automatic logout on expiry
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
