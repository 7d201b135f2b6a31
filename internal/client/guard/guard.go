// Package guard decides whether a protected view may be entered.
package guard

import (
	"context"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/nav"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// Sessions is the part of the session manager the guard consults.
type Sessions interface {
	Status(ctx context.Context) session.TokenStatus
	IsValid(ctx context.Context) bool
}

// Profiles is the part of the profile cache the guard consults.
type Profiles interface {
	EnsureLoaded(ctx context.Context)
	User() (models.User, bool)
}

// Guard implements nav.Guard.
//
// An expired access credential is renewed through Sessions.IsValid, the
// same way bootstrap does it; the guard itself never writes credentials.
type Guard struct {
	sessions Sessions
	profiles Profiles
	log      logging.Logger
}

type Option func(*Guard)

func WithLogger(l logging.Logger) Option {
	return func(g *Guard) { g.log = l }
}

func New(sessions Sessions, profiles Profiles, opts ...Option) *Guard {
	g := &Guard{sessions: sessions, profiles: profiles, log: logging.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ nav.Guard = (*Guard)(nil)

// Check allows path when a usable access credential is stored and the
// profile can be loaded; otherwise it redirects to the sign-in view.
func (g *Guard) Check(ctx context.Context, path string) nav.Decision {
	switch g.sessions.Status(ctx) {
	case session.Missing:
		g.log.Debug(ctx, "no credential, redirecting", "path", path)
		return nav.RedirectTo(nav.Login)
	case session.Expired:
		if !g.sessions.IsValid(ctx) {
			g.log.Debug(ctx, "credential could not be renewed, redirecting", "path", path)
			return nav.RedirectTo(nav.Login)
		}
	}

	g.profiles.EnsureLoaded(ctx)
	if _, ok := g.profiles.User(); !ok {
		g.log.Debug(ctx, "profile unavailable, redirecting", "path", path)
		return nav.RedirectTo(nav.Login)
	}
	return nav.Allow()
}
