package cli

import (
	"context"
	"fmt"
)

// getSimpleText, getPassword and getOptional are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getOptional   = GetOptional
)

func (a *App) readCredentials() (string, string, error) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer clear(password)
	return userName, string(password), nil
}

// Register prompts for a username and password and creates an account. On
// success the session manager has already moved the router to the panel;
// failures have already been shown through the notification sink.
func (a *App) Register(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	if err := a.sessions.Register(ctx, userName, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Registered and signed in.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	userName, password, err := a.readCredentials()
	if err != nil {
		return err
	}
	if err := a.sessions.Login(ctx, userName, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", userName)
	return nil
}

// Logout signs out. It cannot fail.
func (a *App) Logout(ctx context.Context) error {
	a.sessions.Logout(ctx)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}
