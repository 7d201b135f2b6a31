package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// SessionService is the session manager surface the CLI drives.
type SessionService interface {
	Init(ctx context.Context)
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, username, password string) error
	Logout(ctx context.Context)
	State(ctx context.Context) session.State
}

// ProfileService is the profile cache surface the CLI drives.
type ProfileService interface {
	User() (models.User, bool)
	EnsureLoaded(ctx context.Context)
	Update(ctx context.Context, patch models.UserPatch) (models.User, error)
}

// Router is the navigation surface the CLI drives.
type Router interface {
	Push(ctx context.Context, path string) (string, error)
	Current() string
}

type App struct {
	sessions SessionService
	profiles ProfileService
	router   Router
	log      logging.Logger
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(sessions SessionService, profiles ProfileService, router Router, log logging.Logger) *App {
	return &App{
		sessions: sessions,
		profiles: profiles,
		router:   router,
		log:      log,
		reader:   bufio.NewReader(os.Stdin),
		out:      os.Stdout,
	}
}

// Run bootstraps the session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	a.sessions.Init(ctx)
	fmt.Fprintln(a.out, "Welcome to fintrack (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	_, ok := a.sessions.State(ctx).(session.Authenticated)
	return ok
}

// getStatus renders the prompt prefix: "(alice /panel)" when signed in,
// "(/auth/login)" otherwise.
func (a *App) getStatus(ctx context.Context) string {
	where := a.router.Current()
	if u, ok := a.profiles.User(); ok && a.isLoggedIn(ctx) {
		return fmt.Sprintf("(%s %s)", u.Username, where)
	}
	return fmt.Sprintf("(%s)", where)
}
