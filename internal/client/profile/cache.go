// Package profile caches the authenticated user's profile.
//
// The cache is filled at most once per lifetime: concurrent EnsureLoaded
// calls share a single /auth/me/ request, and a cached profile is never
// refetched until ResetState starts a new lifetime.
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/fintrack/internal/client/credentials"
	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/dmitrijs2005/fintrack/internal/client/tasks"
	"github.com/dmitrijs2005/fintrack/internal/client/transport"
	"github.com/dmitrijs2005/fintrack/internal/logging"
	"golang.org/x/sync/singleflight"
)

const (
	MePath     = "/auth/me/"
	UpdatePath = "/auth/update-user-data/"

	updateTask = "update-user"
)

var (
	// ErrNoCredential is returned by Load when no access credential is stored.
	ErrNoCredential = errors.New("no access credential")
	// ErrStale is returned when a ResetState happened while the request
	// was in flight; the result was dropped.
	ErrStale = errors.New("profile reset during request")
)

// Cache holds the in-memory user profile.
type Cache struct {
	gateway transport.Gateway
	tokens  transport.TokenReader
	log     logging.Logger

	mu         sync.Mutex
	user       *models.User
	generation uint64

	loading atomic.Bool
	flight  singleflight.Group
	updates tasks.Group
}

type Option func(*Cache)

func WithLogger(l logging.Logger) Option {
	return func(c *Cache) { c.log = l }
}

// New creates an empty cache fetching through gateway. tokens is consulted
// only to skip fetches when no access credential is stored.
func New(gateway transport.Gateway, tokens transport.TokenReader, opts ...Option) *Cache {
	c := &Cache{gateway: gateway, tokens: tokens, log: logging.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// User returns the cached profile.
func (c *Cache) User() (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return models.User{}, false
	}
	return *c.user, true
}

// Set replaces the cached profile, e.g. with the user embedded in a login
// response.
func (c *Cache) Set(u models.User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = &u
}

// Loading reports whether a profile fetch is in flight. Best-effort UI hint.
func (c *Cache) Loading() bool {
	return c.loading.Load()
}

// ResetState drops the cached profile and the loading flag, and starts a
// new lifetime: results of requests issued before the reset are discarded.
func (c *Cache) ResetState() {
	c.mu.Lock()
	c.user = nil
	c.generation++
	c.mu.Unlock()

	c.loading.Store(false)
	c.updates.Cancel(updateTask)
}

// EnsureLoaded fills the cache from /auth/me/ unless it is already filled
// or no access credential is stored. Failures leave the cache empty and
// never touch credentials.
func (c *Cache) EnsureLoaded(ctx context.Context) {
	if _, ok := c.User(); ok {
		return
	}
	if _, err := c.load(ctx, true); err != nil && !errors.Is(err, ErrNoCredential) {
		c.log.Debug(ctx, "profile not loaded", "error", err)
	}
}

// Load fetches /auth/me/ and stores the result. Concurrent calls within one
// lifetime share a single request.
func (c *Cache) Load(ctx context.Context) (models.User, error) {
	return c.load(ctx, false)
}

// load is Load; with reuse set, a profile already cached in the same
// lifetime is returned instead of being fetched again.
func (c *Cache) load(ctx context.Context, reuse bool) (models.User, error) {
	token, err := c.tokens.Get(ctx, credentials.Access)
	if err != nil {
		return models.User{}, fmt.Errorf("read access credential: %w", err)
	}
	if token == "" {
		return models.User{}, ErrNoCredential
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.loading.Store(true)
	defer c.loading.Store(false)

	v, err, _ := c.flight.Do("me/"+strconv.FormatUint(gen, 10), func() (any, error) {
		if reuse {
			c.mu.Lock()
			cached := c.user
			current := c.generation == gen
			c.mu.Unlock()
			if current && cached != nil {
				return *cached, nil
			}
		}

		resp, err := c.gateway.Send(ctx, transport.Request{Method: http.MethodGet, URL: MePath})
		if err := transport.Check(resp, err); err != nil {
			return nil, fmt.Errorf("fetch profile: %w", err)
		}
		var raw models.RawUser
		if err := resp.Decode(&raw); err != nil {
			return nil, fmt.Errorf("fetch profile: %w", err)
		}
		u := models.MapUser(raw)

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			return nil, ErrStale
		}
		c.user = &u
		return u, nil
	})
	if err != nil {
		return models.User{}, err
	}
	return v.(models.User), nil
}

// Update sends patch to the server and replaces the cached profile with the
// server's normalised answer. A newer Update supersedes an older one still
// in flight (the older returns tasks.ErrSuperseded).
func (c *Cache) Update(ctx context.Context, patch models.UserPatch) (models.User, error) {
	if err := patch.Validate(); err != nil {
		return models.User{}, err
	}

	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	return tasks.Run(ctx, &c.updates, updateTask, func(ctx context.Context) (models.User, error) {
		resp, err := c.gateway.Send(ctx, transport.Request{Method: http.MethodPut, URL: UpdatePath, Data: patch})
		if err := transport.Check(resp, err); err != nil {
			return models.User{}, fmt.Errorf("update profile: %w", err)
		}
		var body struct {
			User models.RawUser `json:"user"`
		}
		if err := resp.Decode(&body); err != nil {
			return models.User{}, fmt.Errorf("update profile: %w", err)
		}
		return models.MapUser(body.User), nil
	}, func(u models.User) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation == gen {
			c.user = &u
		}
	})
}

// UpdateUser is Update reduced to a success flag; it does not retry.
func (c *Cache) UpdateUser(ctx context.Context, patch models.UserPatch) bool {
	if _, err := c.Update(ctx, patch); err != nil {
		c.log.Warn(ctx, "profile update failed", "error", err)
		return false
	}
	return true
}
