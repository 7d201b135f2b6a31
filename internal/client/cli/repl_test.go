package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	openErr  error

	calls []string
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Register(context.Context) error {
	f.calls = append(f.calls, "register")
	return nil
}
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}
func (f *fakeExec) Me(context.Context) error     { f.calls = append(f.calls, "me"); return nil }
func (f *fakeExec) Update(context.Context) error { f.calls = append(f.calls, "update"); return nil }
func (f *fakeExec) Open(_ context.Context, path string) error {
	f.calls = append(f.calls, "open "+path)
	return f.openErr
}
func (f *fakeExec) Routes(context.Context) error { f.calls = append(f.calls, "routes"); return nil }
func (f *fakeExec) Status(context.Context) error { f.calls = append(f.calls, "status"); return nil }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login",
		"",
		"me",
		"update",
		"open /panel/settings",
		"routes",
		"status",
		"logout",
		"register",
		"exit",
		"me",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func(context.Context) string { return "s" }, bufio.NewReader(input))

	assert.Equal(t, []string{
		"login", "me", "update", "open /panel/settings", "routes", "status", "logout", "register",
	}, exec.calls)
}

func TestRunREPL_HelpDependsOnLogin(t *testing.T) {
	out := captureOutput(t)

	runREPL(context.Background(), &fakeExec{}, func(context.Context) string { return "" }, rdr("help\n"))
	assert.Contains(t, *out, "Available commands: register, login, open <route>, routes, status, exit")

	runREPL(context.Background(), &fakeExec{loggedIn: true}, func(context.Context) string { return "" }, rdr("help\n"))
	assert.Contains(t, *out, "Available commands: me, update, open <route>, routes, status, logout, exit")
}

func TestRunREPL_UsageUnknownAndQuit(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{openErr: errors.New("unknown route: /nope")}
	input := strings.NewReader("open\nfoobar\nopen /nope\nquit\n")
	runREPL(context.Background(), exec, func(context.Context) string { return "st" }, bufio.NewReader(input))

	assert.Equal(t, []string{"open /nope"}, exec.calls)
	assert.Contains(t, *out, "Usage: open <route>")
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Error: unknown route: /nope")
	assert.Contains(t, *out, "fintrack st> ")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}
