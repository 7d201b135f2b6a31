package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/client/nav"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
)

// Open enters the view at path through the router, so protected views are
// guarded. A redirect is reported.
func (a *App) Open(ctx context.Context, path string) error {
	got, err := a.router.Push(ctx, path)
	if err != nil {
		return err
	}
	if got != path {
		fmt.Fprintf(a.out, "Redirected to %s.\n", got)
		return nil
	}
	fmt.Fprintf(a.out, "Now at %s.\n", got)
	return nil
}

// Routes lists the known views.
func (a *App) Routes(context.Context) error {
	for _, rt := range nav.DefaultRoutes {
		access := "public"
		if rt.Protected {
			access = "protected"
		}
		fmt.Fprintf(a.out, "%-16s %-10s %s\n", rt.Path, access, rt.Title)
	}
	return nil
}

// Status prints the session state.
func (a *App) Status(ctx context.Context) error {
	switch st := a.sessions.State(ctx).(type) {
	case session.Initializing:
		fmt.Fprintln(a.out, "Starting up.")
	case session.Unauthenticated:
		fmt.Fprintln(a.out, "Not logged in.")
	case session.Authenticated:
		if st.ProfileLoaded {
			fmt.Fprintf(a.out, "Logged in as %s.\n", st.Profile.Username)
		} else {
			fmt.Fprintln(a.out, "Logged in (profile not loaded).")
		}
	}
	return nil
}
