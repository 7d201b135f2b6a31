package authtest

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by UserIDFromToken for tokens that fail
// verification.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the access token claims: the registered set plus the user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateToken signs an HS256 access token for userID expiring at exp.
func GenerateToken(userID string, secretKey []byte, exp time.Time) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// UserIDFromToken verifies tokenString and returns its user id. Expired
// tokens are rejected.
func UserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

// MustToken is GenerateToken for tests that only need a well-formed token
// with a given expiry.
func MustToken(tb interface {
	Helper()
	Fatalf(string, ...any)
}, exp time.Time) string {
	tb.Helper()
	s, err := GenerateToken("1", []byte("authtest"), exp)
	if err != nil {
		tb.Fatalf("generate token: %v", err)
	}
	return s
}
