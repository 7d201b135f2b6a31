package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
)

// ErrNotLoggedIn is returned by commands that need a profile.
var ErrNotLoggedIn = errors.New("not logged in")

// sampleAmount is shown next to the currency so the user sees how amounts
// will be formatted.
const sampleAmount = 123456

// Me prints the cached profile, loading it if needed.
func (a *App) Me(ctx context.Context) error {
	a.profiles.EnsureLoaded(ctx)
	u, ok := a.profiles.User()
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return ErrNotLoggedIn
	}
	printUser(a, u)
	return nil
}

// Update prompts for a new username and currency; empty answers keep the
// current value.
func (a *App) Update(ctx context.Context) error {
	if _, ok := a.profiles.User(); !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return ErrNotLoggedIn
	}

	var patch models.UserPatch
	var err error
	if patch.Username, err = getOptional(a.reader, "New username", a.out); err != nil {
		return err
	}
	if patch.Currency, err = getOptional(a.reader, "New currency (ISO 4217 code)", a.out); err != nil {
		return err
	}
	if patch.Empty() {
		fmt.Fprintln(a.out, "Nothing to update.")
		return nil
	}

	u, err := a.profiles.Update(ctx, patch)
	if err != nil {
		a.log.Debug(ctx, "profile update failed", "error", err)
		fmt.Fprintf(a.out, "Update failed: %v\n", err)
		return err
	}
	printUser(a, u)
	return nil
}

func printUser(a *App, u models.User) {
	fmt.Fprintf(a.out, "id:       %s\n", u.ID)
	fmt.Fprintf(a.out, "username: %s\n", u.Username)
	fmt.Fprintf(a.out, "currency: %s (e.g. %s)\n", u.Currency, u.FormatAmount(sampleAmount))
}
