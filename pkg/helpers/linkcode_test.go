package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveLinkCodeDeterministic(t *testing.T) {
	base := time.Unix(1700000100, 0) // 60s-aligned windows around this instant

	t.Run("same window yields identical code", func(t *testing.T) {
		a := DeriveLinkCode("secret", "user-1", base)
		b := DeriveLinkCode("secret", "user-1", base.Add(30*time.Second))
		assert.Equal(t, a.Code, b.Code)
		assert.Equal(t, a.ExpiresAt, b.ExpiresAt)
	})

	t.Run("next window yields a different code and +60s expiry", func(t *testing.T) {
		a := DeriveLinkCode("secret", "user-1", base)
		b := DeriveLinkCode("secret", "user-1", base.Add(60*time.Second))
		assert.NotEqual(t, a.Code, b.Code)
		assert.Equal(t, a.ExpiresAt.Add(60*time.Second), b.ExpiresAt)
	})

	t.Run("any replica with the secret reproduces the code", func(t *testing.T) {
		a := DeriveLinkCode("shared", "user-7", base)
		b := DeriveLinkCode("shared", "user-7", base)
		assert.Equal(t, a, b)
	})
}

func TestDeriveLinkCodeInputsMatter(t *testing.T) {
	now := time.Unix(1700000100, 0)
	a := DeriveLinkCode("secret", "user-1", now)

	assert.NotEqual(t, a.Code, DeriveLinkCode("other-secret", "user-1", now).Code)
	assert.NotEqual(t, a.Code, DeriveLinkCode("secret", "user-2", now).Code)
}

func TestDeriveLinkCodeShape(t *testing.T) {
	now := time.Unix(1700000100, 0)
	lc := DeriveLinkCode("secret", "user-1", now)

	assert.Len(t, lc.Code, 6)
	for _, r := range lc.Code {
		assert.True(t, strings.ContainsRune(linkCodeCharset, r), "unexpected symbol %q", r)
	}

	// ExpiresAt is the end of the window the code was derived from.
	window := now.Unix() / 60
	assert.Equal(t, time.Unix((window+1)*60, 0).UTC(), lc.ExpiresAt)
	assert.True(t, lc.ExpiresAt.After(now))
	assert.False(t, lc.ExpiresAt.After(now.Add(60*time.Second)))
}
