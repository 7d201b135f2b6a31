package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStatus classifies the stored access credential.
type TokenStatus int

const (
	// Missing: no access credential is stored.
	Missing TokenStatus = iota
	// Valid: the credential's expiry lies in the future.
	Valid
	// Expired: the expiry has passed, or the credential cannot be decoded.
	Expired
)

func (s TokenStatus) String() string {
	switch s {
	case Missing:
		return "missing"
	case Valid:
		return "valid"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("TokenStatus(%d)", int(s))
	}
}

// ErrNoExpiry is returned by ExpiresAt for tokens without an exp claim.
var ErrNoExpiry = errors.New("token has no exp claim")

var parser = jwt.NewParser()

// ExpiresAt decodes the exp claim of a bearer token without verifying its
// signature; the client only needs the expiry, the server does the checking.
func ExpiresAt(token string) (time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("decode token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Evaluate classifies access at wall-clock now. Expiry and now are compared
// as whole seconds (now is floored) and a token with less than leeway left
// counts as expired. Undecodable tokens are Expired, never an error.
func Evaluate(access string, now time.Time, leeway time.Duration) TokenStatus {
	if access == "" {
		return Missing
	}
	exp, err := ExpiresAt(access)
	if err != nil {
		return Expired
	}
	if exp.Unix() <= now.Unix()+int64(leeway/time.Second) {
		return Expired
	}
	return Valid
}
