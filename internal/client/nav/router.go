// Package nav is the client's navigation layer: a table of named routes,
// the current location, and guarded transitions between them.
package nav

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

const (
	Landing  = "/"
	Login    = "/auth/login"
	Register = "/auth/register"
	Panel    = "/panel"
	Settings = "/panel/settings"
)

const maxRedirects = 4

var (
	ErrUnknownRoute = errors.New("unknown route")
	ErrRedirectLoop  = errors.New("too many redirects")
)

// Route is an entry of the route table.
type Route struct {
	Path      string
	Title     string
	Protected bool
}

// DefaultRoutes is the fintrack route table.
var DefaultRoutes = []Route{
	{Path: Landing, Title: "Welcome"},
	{Path: Login, Title: "Sign in"},
	{Path: Register, Title: "Sign up"},
	{Path: Panel, Title: "Calendar", Protected: true},
	{Path: Settings, Title: "Settings", Protected: true},
}

// Decision is a guard's verdict for a protected route.
type Decision struct {
	Allow    bool
	Redirect string
}

func Allow() Decision                 { return Decision{Allow: true} }
func RedirectTo(path string) Decision { return Decision{Redirect: path} }

// Guard is consulted before entering a protected route.
type Guard interface {
	Check(ctx context.Context, path string) Decision
}

// Navigator is the part of the router that session side effects use.
type Navigator interface {
	Navigate(path string)
	Current() string
}

// IsAuthView reports whether path is the sign-in or sign-up view.
func IsAuthView(path string) bool {
	return path == Login || path == Register
}

// IsPublicEntry reports whether path is a view an authenticated user should
// be moved away from (landing and auth views).
func IsPublicEntry(path string) bool {
	return path == Landing || IsAuthView(path)
}

// Router holds the current location. Safe for concurrent use; the guard runs
// without the router lock held, so guards may navigate.
type Router struct {
	mu      sync.Mutex
	routes  map[string]Route
	order   []string
	current string
	history []string
	guard   Guard
}

// NewRouter builds a router positioned on Landing.
func NewRouter(routes []Route) *Router {
	r := &Router{routes: make(map[string]Route, len(routes)), current: Landing}
	for _, rt := range routes {
		r.routes[rt.Path] = rt
		r.order = append(r.order, rt.Path)
	}
	return r
}

// SetGuard installs the guard for protected routes.
func (r *Router) SetGuard(g Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.guard = g
}

// Navigate moves to path without consulting the guard.
func (r *Router) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = path
	r.history = append(r.history, path)
}

// Current returns the current location.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every location navigated to, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// Lookup returns the route registered for path.
func (r *Router) Lookup(path string) (Route, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.routes[path]
	return rt, ok
}

// IsProtected reports whether path requires an authenticated session.
func (r *Router) IsProtected(path string) bool {
	rt, ok := r.Lookup(path)
	return ok && rt.Protected
}

// Routes returns the table in registration order.
func (r *Router) Routes() []Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Route, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.routes[p])
	}
	return out
}

// Push navigates to path, running the guard for protected routes and
// following its redirects. It returns the location finally entered.
func (r *Router) Push(ctx context.Context, path string) (string, error) {
	for range maxRedirects {
		rt, ok := r.Lookup(path)
		if !ok {
			return r.Current(), fmt.Errorf("%w: %s", ErrUnknownRoute, path)
		}

		r.mu.Lock()
		guard := r.guard
		r.mu.Unlock()

		if !rt.Protected || guard == nil {
			r.Navigate(path)
			return path, nil
		}

		d := guard.Check(ctx, path)
		if d.Allow {
			r.Navigate(path)
			return path, nil
		}
		path = d.Redirect
	}
	return r.Current(), ErrRedirectLoop
}
