package guard

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/credentials"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/nav"
	"github.com/dmitrijs2005/fintrack/internal/client/notify"
	"github.com/dmitrijs2005/fintrack/internal/client/profile"
	"github.com/dmitrijs2005/fintrack/internal/client/session"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	status     session.TokenStatus
	valid      bool
	validCalls int
}

func (f *fakeSessions) Status(context.Context) session.TokenStatus { return f.status }

func (f *fakeSessions) IsValid(context.Context) bool {
	f.validCalls++
	return f.valid
}

type fakeProfiles struct {
	user      *models.User
	onLoad    *models.User
	loadCalls int
}

func (f *fakeProfiles) EnsureLoaded(context.Context) {
	f.loadCalls++
	if f.user == nil && f.onLoad != nil {
		f.user = f.onLoad
	}
}

func (f *fakeProfiles) User() (models.User, bool) {
	if f.user == nil {
		return models.User{}, false
	}
	return *f.user, true
}

var alice = models.User{ID: "1", Username: "alice", Currency: "USD"}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		sessions   fakeSessions
		profiles   fakeProfiles
		want       nav.Decision
		validCalls int
		loadCalls  int
	}{
		{
			name:     "missing credential",
			sessions: fakeSessions{status: session.Missing},
			want:     nav.RedirectTo(nav.Login),
		},
		{
			name:      "valid with cached profile",
			sessions:  fakeSessions{status: session.Valid},
			profiles:  fakeProfiles{user: &alice},
			want:      nav.Allow(),
			loadCalls: 1,
		},
		{
			name:      "valid, profile loads",
			sessions:  fakeSessions{status: session.Valid},
			profiles:  fakeProfiles{onLoad: &alice},
			want:      nav.Allow(),
			loadCalls: 1,
		},
		{
			name:      "valid, profile unavailable",
			sessions:  fakeSessions{status: session.Valid},
			want:      nav.RedirectTo(nav.Login),
			loadCalls: 1,
		},
		{
			name:       "expired and renewed",
			sessions:   fakeSessions{status: session.Expired, valid: true},
			profiles:   fakeProfiles{onLoad: &alice},
			want:       nav.Allow(),
			validCalls: 1,
			loadCalls:  1,
		},
		{
			name:       "expired and not renewed",
			sessions:   fakeSessions{status: session.Expired},
			want:       nav.RedirectTo(nav.Login),
			validCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New(&tt.sessions, &tt.profiles)

			got := g.Check(context.Background(), nav.Panel)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.validCalls, tt.sessions.validCalls)
			assert.Equal(t, tt.loadCalls, tt.profiles.loadCalls)
		})
	}
}

// Full stack: router -> guard -> session manager -> profile cache.
func TestRouterPush(t *testing.T) {
	var meCalls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != profile.MePath {
			http.NotFound(w, r)
			return
		}
		meCalls.Add(1)
		w.Write([]byte(`{"id":"1","username":"alice"}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)

	store := credentials.NewMemoryStore()
	gw := transport.New(srv.URL, store)
	profiles := profile.New(gw, store)
	router := nav.NewRouter(nav.DefaultRoutes)
	manager := session.New(gw, store, profiles, router, &notify.Snackbar{})
	router.SetGuard(New(manager, profiles))
	ctx := context.Background()

	got, err := router.Push(ctx, nav.Settings)
	require.NoError(t, err)
	assert.Equal(t, nav.Login, got)
	assert.Zero(t, meCalls.Load())

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, credentials.Access, tok))
	require.NoError(t, store.Set(ctx, credentials.Refresh, "R"))

	got, err = router.Push(ctx, nav.Settings)
	require.NoError(t, err)
	assert.Equal(t, nav.Settings, got)
	assert.Equal(t, nav.Settings, router.Current())

	_, err = router.Push(ctx, nav.Panel)
	require.NoError(t, err)
	assert.EqualValues(t, 1, meCalls.Load())

	got, err = router.Push(ctx, nav.Landing)
	require.NoError(t, err)
	assert.Equal(t, nav.Landing, got)
}
