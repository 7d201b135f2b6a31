// Package cli provides the interactive fintrack command-line client.
//
// It bootstraps the session, then runs a REPL over the session manager,
// the profile cache and the router. Typical flow: the stored credential is
// checked (and renewed if expired) on start, the user signs in or up if
// needed, and views are entered with "open", which consults the route guard.
//
// Commands:
//   - register / login / logout
//   - me, update (profile)
//   - open <route>, routes, status
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
