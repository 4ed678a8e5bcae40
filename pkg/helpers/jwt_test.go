package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT() *JWTManager {
	return NewJWTManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 168*time.Hour)
}

func TestJWTRoundtrip(t *testing.T) {
	m := newTestJWT()

	access, exp, err := m.GenerateAccessToken("user-1", "a@b.test")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@b.test", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)

	refresh, _, err := m.GenerateRefreshToken("user-1", "a@b.test")
	require.NoError(t, err)
	rc, err := m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-1", rc.UserID)
}

func TestJWTCrossSecretRejection(t *testing.T) {
	m := newTestJWT()

	access, _, err := m.GenerateAccessToken("user-1", "a@b.test")
	require.NoError(t, err)
	refresh, _, err := m.GenerateRefreshToken("user-1", "a@b.test")
	require.NoError(t, err)

	_, err = m.ParseRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = m.ParseAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTExpiry(t *testing.T) {
	m := NewJWTManager("s1", "s2", -time.Minute, -time.Minute)
	tok, _, err := m.GenerateAccessToken("user-1", "a@b.test")
	require.NoError(t, err)

	_, err = m.ParseAccessToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTTampering(t *testing.T) {
	m := newTestJWT()
	tok, _, err := m.GenerateAccessToken("user-1", "a@b.test")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	// Flip a character in the signature segment.
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = m.ParseAccessToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMalformed(t *testing.T) {
	m := newTestJWT()
	for _, tok := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := m.ParseAccessToken(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}
