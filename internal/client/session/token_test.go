package session

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKey = []byte("test-signing-key")

// mint returns an HS256 token expiring at exp. The client never verifies
// signatures, so any key will do.
func mint(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString(testKey)
	require.NoError(t, err)
	return s
}

func TestEvaluate(t *testing.T) {
	now := time.Unix(1_700_000_000, 500_000_000)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString(testKey)
	require.NoError(t, err)

	tests := []struct {
		name   string
		access string
		leeway time.Duration
		want   TokenStatus
	}{
		{"empty", "", 0, Missing},
		{"future", mint(t, now.Add(time.Hour)), 0, Valid},
		{"one second left", mint(t, now.Add(time.Second)), 0, Valid},
		{"past", mint(t, now.Add(-time.Second)), 0, Expired},
		{"exactly now", mint(t, now.Truncate(time.Second)), 0, Expired},
		{"garbage", "not-a-token", 0, Expired},
		{"no exp claim", noExp, 0, Expired},
		{"inside leeway", mint(t, now.Add(30*time.Second)), time.Minute, Expired},
		{"outside leeway", mint(t, now.Add(2*time.Minute)), time.Minute, Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.access, now, tt.leeway))
		})
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Unix(1_800_000_000, 0)

	got, err := ExpiresAt(mint(t, exp))
	require.NoError(t, err)
	assert.True(t, exp.Equal(got))

	_, err = ExpiresAt("a.b.c")
	assert.Error(t, err)
}

func TestTokenStatus_String(t *testing.T) {
	assert.Equal(t, "missing", Missing.String())
	assert.Equal(t, "valid", Valid.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "TokenStatus(9)", TokenStatus(9).String())
}

func TestDerive(t *testing.T) {
	alice := models.User{ID: "1", Username: "alice", Currency: "USD"}

	assert.Equal(t, Initializing{}, Derive(true, Valid, &alice))
	assert.Equal(t, Unauthenticated{}, Derive(false, Missing, nil))
	assert.Equal(t, Unauthenticated{}, Derive(false, Expired, &alice))
	assert.Equal(t, Authenticated{}, Derive(false, Valid, nil))
	assert.Equal(t, Authenticated{Profile: alice, ProfileLoaded: true}, Derive(false, Valid, &alice))
}
