package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	token, err := NewSessionToken(42, "secret", time.Hour)
	require.NoError(t, err)

	userID, err := ParseSessionToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
}

func TestWrongSecret(t *testing.T) {
	token, err := NewSessionToken(42, "secret", time.Hour)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "other")
	assert.Error(t, err)
}

func TestExpiredToken(t *testing.T) {
	token, err := NewSessionToken(42, "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseSessionToken(token, "secret")
	assert.Error(t, err)
}

func TestGarbageToken(t *testing.T) {
	_, err := ParseSessionToken("not-a-token", "secret")
	assert.Error(t, err)
}

func TestNonHMACRejected(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "42"})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseSessionToken(signed, "secret")
	assert.Error(t, err)
}

func TestNonNumericSubject(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseSessionToken(signed, "secret")
	assert.Error(t, err)
}
