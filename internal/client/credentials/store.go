// Package credentials persists the access and refresh bearer strings.
//
// A Store is a plain key-value surface over two kinds; it does not look at
// the values. The session manager is its only writer.
package credentials

import (
	"context"
	"errors"
	"fmt"
)

// Kind selects which credential is addressed. The string values double as
// storage keys.
type Kind string

const (
	Access  Kind = "access"
	Refresh Kind = "refresh"
)

// Kinds lists every kind a Store holds.
var Kinds = []Kind{Access, Refresh}

// ErrUnknownKind is returned for kinds other than Access and Refresh.
var ErrUnknownKind = errors.New("unknown credential kind")

// Store is the durable credential surface.
//
// Get returns "" with a nil error when nothing is stored for kind.
type Store interface {
	Get(ctx context.Context, kind Kind) (string, error)
	Set(ctx context.Context, kind Kind, value string) error
	Clear(ctx context.Context, kind Kind) error
	ClearAll(ctx context.Context) error
}

func (k Kind) validate() error {
	switch k {
	case Access, Refresh:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}
