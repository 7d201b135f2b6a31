// Package tasks runs cancellable operations keyed by name, where a newer
// run for a key supersedes (cancels) the one still in flight.
package tasks

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSuperseded is returned by Run when a newer run for the same key
// started before this one finished. Its result must not be applied.
var ErrSuperseded = errors.New("superseded by a newer request")

type requestIDKey struct{}

// WithRequestID tags ctx with a request identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the identifier set by WithRequestID or Run.
func RequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey{}).(string)
	return id, ok && id != ""
}

type inflight struct {
	id     string
	cancel context.CancelFunc
}

// Group tracks the latest run per key. The zero value is ready to use.
type Group struct {
	mu      sync.Mutex
	running map[string]*inflight
}

// Run executes fn with a context that is cancelled when a newer Run for key
// starts. fn's context carries a fresh request id (see RequestID).
//
// If the run was superseded, Run returns ErrSuperseded regardless of what fn
// returned, and apply is not called. Otherwise apply (when non-nil) is
// called with fn's result while the group still considers this run current,
// so no newer run can interleave between the check and the write.
func Run[T any](ctx context.Context, g *Group, key string, fn func(ctx context.Context) (T, error), apply func(T)) (T, error) {
	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(WithRequestID(ctx, id))
	defer cancel()

	g.mu.Lock()
	if g.running == nil {
		g.running = make(map[string]*inflight)
	}
	if prev, ok := g.running[key]; ok {
		prev.cancel()
	}
	g.running[key] = &inflight{id: id, cancel: cancel}
	g.mu.Unlock()

	res, err := fn(runCtx)

	g.mu.Lock()
	defer g.mu.Unlock()

	cur, ok := g.running[key]
	if !ok || cur.id != id {
		var zero T
		return zero, ErrSuperseded
	}
	delete(g.running, key)

	if err == nil && apply != nil {
		apply(res)
	}
	return res, err
}

// Cancel aborts the in-flight run for key, if any. The aborted run returns
// ErrSuperseded.
func (g *Group) Cancel(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if prev, ok := g.running[key]; ok {
		prev.cancel()
		delete(g.running, key)
	}
}

// InFlight reports whether a run for key is currently executing.
func (g *Group) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.running[key]
	return ok
}
