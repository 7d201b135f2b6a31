// Package session owns the credential lifecycle of the fintrack client:
// validity checks, silent renewal, sign-in, sign-out and bootstrap.
//
// No operation here panics or hands a transport failure back as something
// the UI must handle: IsValid and Refresh answer with a bool, Logout and
// Init always complete, and Login/Register return an *AuthError whose
// message has already been shown through the notification sink.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/credentials"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/nav"
	"github.com/dmitrijs2005/fintrack/internal/client/notify"
	"github.com/dmitrijs2005/fintrack/internal/client/tasks"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	LoginPath    = "/auth/login/"
	RegisterPath = "/auth/register/"
	RefreshPath  = "/auth/token/refresh/"

	submitTask = "auth-submit"
)

// Profiles is the part of the profile cache the manager drives.
type Profiles interface {
	Set(u models.User)
	User() (models.User, bool)
	Load(ctx context.Context) (models.User, error)
	ResetState()
}

type tokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type authResponse struct {
	Tokens tokenPair       `json:"tokens"`
	User   *models.RawUser `json:"user"`
}

// Manager is the session manager. Construct it with New.
type Manager struct {
	gateway  transport.Gateway
	store    credentials.Store
	profiles Profiles
	nav      nav.Navigator
	notifier notify.Sink
	log      logging.Logger
	now      func() time.Time
	leeway   time.Duration

	submitting  atomic.Int32
	initLoading atomic.Bool
	initStarted atomic.Bool

	refreshes singleflight.Group
	submits   tasks.Group
}

type Option func(*Manager)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithRefreshLeeway makes tokens with less than d of lifetime left count as
// expired, so they are renewed before the server starts rejecting them.
func WithRefreshLeeway(d time.Duration) Option {
	return func(m *Manager) { m.leeway = d }
}

func New(gateway transport.Gateway, store credentials.Store, profiles Profiles, navigator nav.Navigator, notifier notify.Sink, opts ...Option) *Manager {
	m := &Manager{
		gateway:  gateway,
		store:    store,
		profiles: profiles,
		nav:      navigator,
		notifier: notifier,
		log:      logging.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initLoading.Store(true)
	return m
}

// Loading reports whether a login or register submit is in flight.
func (m *Manager) Loading() bool { return m.submitting.Load() > 0 }

// InitLoading reports whether bootstrap is still running (or has not run).
func (m *Manager) InitLoading() bool { return m.initLoading.Load() }

// Status classifies the stored access credential without any network call.
// A store read failure is reported as Missing.
func (m *Manager) Status(ctx context.Context) TokenStatus {
	access, err := m.store.Get(ctx, credentials.Access)
	if err != nil {
		m.log.Warn(ctx, "read access credential", "error", err)
		return Missing
	}
	return Evaluate(access, m.now(), m.leeway)
}

// IsValid reports whether a usable access credential is stored, renewing an
// expired one through Refresh.
func (m *Manager) IsValid(ctx context.Context) bool {
	switch status := m.Status(ctx); status {
	case Valid:
		return true
	case Expired:
		m.log.Debug(ctx, "access credential expired, refreshing")
		return m.Refresh(ctx)
	default:
		return false
	}
}

// Refresh trades the stored refresh credential for a new access credential.
//
// Without a refresh credential it returns false without a network call,
// clearing any stale access credential. When the server refuses (or cannot
// be reached) every credential and the profile are cleared and the router is
// sent to the landing view. Concurrent calls share one request.
func (m *Manager) Refresh(ctx context.Context) bool {
	refresh, err := m.store.Get(ctx, credentials.Refresh)
	if err != nil {
		m.log.Warn(ctx, "read refresh credential, signing out", "error", err)
		m.clear(ctx)
		return false
	}
	if refresh == "" {
		m.clear(ctx)
		return false
	}

	// The shared request outlives any single caller: a cancelled caller
	// leaves, the others still get the server's answer.
	flight := m.refreshes.DoChan("refresh", func() (any, error) {
		return nil, m.renew(context.WithoutCancel(ctx), refresh)
	})

	select {
	case <-ctx.Done():
		m.log.Debug(ctx, "refresh abandoned", "error", ctx.Err())
		return false
	case res := <-flight:
		err = res.Err
	}
	if err == nil {
		return true
	}

	m.log.Info(ctx, "refresh refused, signing out", "error", err)
	m.clear(ctx)
	m.nav.Navigate(nav.Landing)
	return false
}

func (m *Manager) renew(ctx context.Context, refresh string) error {
	resp, err := m.gateway.Send(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    RefreshPath,
		Data:   map[string]string{"refresh": refresh},
	})
	if err := transport.Check(resp, err); err != nil {
		return err
	}

	var pair tokenPair
	if err := resp.Decode(&pair); err != nil {
		return err
	}
	if pair.Access == "" {
		return fmt.Errorf("%w: refresh response without access token", transport.ErrUnexpected)
	}

	if err := m.store.Set(ctx, credentials.Access, pair.Access); err != nil {
		return err
	}
	if pair.Refresh != "" {
		if err := m.store.Set(ctx, credentials.Refresh, pair.Refresh); err != nil {
			return err
		}
	}
	return nil
}

// Login signs in with username and password. See submit.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	return m.submit(ctx, OpLogin, LoginPath, username, password)
}

// Register creates an account and signs in. See submit.
func (m *Manager) Register(ctx context.Context, username, password string) error {
	return m.submit(ctx, OpRegister, RegisterPath, username, password)
}

// submit posts form-encoded credentials to path. On success both tokens are
// stored, the profile cache is filled and the router moves to the panel. On
// failure the status-specific message is shown and returned in an
// *AuthError; stored credentials are left untouched. A newer submit
// supersedes an older one still in flight.
func (m *Manager) submit(ctx context.Context, op, path, username, password string) error {
	m.submitting.Add(1)
	defer m.submitting.Add(-1)

	var applyErr error
	res, err := tasks.Run(ctx, &m.submits, submitTask, func(ctx context.Context) (authResponse, error) {
		resp, err := m.gateway.Send(ctx, transport.Request{
			Method:  http.MethodPost,
			URL:     path,
			Data:    map[string]string{"username": username, "password": password},
			Headers: map[string]string{"Content-Type": transport.ContentTypeForm},
		})
		if err := transport.Check(resp, err); err != nil {
			return authResponse{}, err
		}

		var body authResponse
		if err := resp.Decode(&body); err != nil {
			return authResponse{}, err
		}
		if body.Tokens.Access == "" || body.Tokens.Refresh == "" {
			return authResponse{}, fmt.Errorf("%w: response without tokens", transport.ErrUnexpected)
		}
		return body, nil
	}, func(body authResponse) {
		applyErr = m.storePair(ctx, body.Tokens)
	})

	if errors.Is(err, tasks.ErrSuperseded) {
		return err
	}
	if err == nil {
		err = applyErr
	}
	if err != nil {
		authErr := newAuthError(op, err)
		m.log.Info(ctx, op+" failed", "status", authErr.Status, "error", err)
		m.notifier.Error(authErr.Message)
		return authErr
	}

	if res.User != nil {
		m.profiles.Set(models.MapUser(*res.User))
	} else if _, err := m.profiles.Load(ctx); err != nil {
		m.log.Debug(ctx, "profile not loaded after "+op, "error", err)
	}

	m.log.Info(ctx, op+" succeeded", "username", username)
	m.nav.Navigate(nav.Panel)
	return nil
}

// storePair writes both tokens. If the second write fails the pair stored
// before is put back, so a failed sign-in leaves credentials as they were.
func (m *Manager) storePair(ctx context.Context, pair tokenPair) error {
	prevAccess, err := m.store.Get(ctx, credentials.Access)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, credentials.Access, pair.Access); err != nil {
		return err
	}
	if err := m.store.Set(ctx, credentials.Refresh, pair.Refresh); err != nil {
		if rerr := m.store.Set(ctx, credentials.Access, prevAccess); rerr != nil {
			// cannot restore; never keep half a pair
			m.log.Error(ctx, "restore access credential", "error", rerr)
			m.clear(ctx)
		}
		return err
	}
	return nil
}

// Logout clears both credentials and the profile and moves to the landing
// view. It always succeeds and is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.submits.Cancel(submitTask)
	m.clear(ctx)
	m.nav.Navigate(nav.Landing)
	m.log.Info(ctx, "signed out")
}

// clear removes both credentials and resets the profile cache. Store
// failures are logged; a per-kind clear is attempted when the bulk clear
// fails.
func (m *Manager) clear(ctx context.Context) {
	if err := m.store.ClearAll(ctx); err != nil {
		m.log.Error(ctx, "clear credentials", "error", err)
		for _, kind := range credentials.Kinds {
			if err := m.store.Clear(ctx, kind); err != nil {
				m.log.Error(ctx, "clear credential", "kind", string(kind), "error", err)
			}
		}
	}
	m.profiles.ResetState()
}

// Init bootstraps the session once per process. Later calls return
// immediately. InitLoading is false on every exit path.
//
//   - no usable credential: credentials are cleared; from a protected view
//     the router is sent to the sign-in view.
//   - /auth/me/ fails: credentials are cleared and, unless already on an
//     auth view, the router is sent to the sign-in view.
//   - success: the profile is cached and, from the landing or an auth view,
//     the router moves into the panel.
func (m *Manager) Init(ctx context.Context) {
	if !m.initStarted.CompareAndSwap(false, true) {
		return
	}
	defer m.initLoading.Store(false)

	if !m.IsValid(ctx) {
		m.clear(ctx)
		if !nav.IsPublicEntry(m.nav.Current()) {
			m.nav.Navigate(nav.Login)
		}
		return
	}

	if _, err := m.profiles.Load(ctx); err != nil {
		m.log.Info(ctx, "bootstrap profile fetch failed", "error", err)
		m.clear(ctx)
		if !nav.IsAuthView(m.nav.Current()) {
			m.nav.Navigate(nav.Login)
		}
		return
	}

	if nav.IsPublicEntry(m.nav.Current()) {
		m.nav.Navigate(nav.Panel)
	}
}

// State reports the session state from the stored credential, the clock
// and the cached profile. It makes no network call; an expired credential
// reads as Unauthenticated until IsValid renews it.
func (m *Manager) State(ctx context.Context) State {
	var profile *models.User
	if u, ok := m.profiles.User(); ok {
		profile = &u
	}
	return Derive(m.InitLoading(), m.Status(ctx), profile)
}
