package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("produces PHC-format hash", func(t *testing.T) {
		hash, err := HashPassword("password123")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("same password hashes differently each call", func(t *testing.T) {
		h1, err := HashPassword("samepassword")
		require.NoError(t, err)
		h2, err := HashPassword("samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestCompareHashAndPassword(t *testing.T) {
	hash, err := HashPassword("correcthorse")
	require.NoError(t, err)

	t.Run("correct password verifies", func(t *testing.T) {
		assert.True(t, CompareHashAndPassword(hash, "correcthorse"))
	})

	t.Run("wrong password fails", func(t *testing.T) {
		assert.False(t, CompareHashAndPassword(hash, "batterystaple"))
	})

	t.Run("malformed stored hash fails without panic", func(t *testing.T) {
		assert.False(t, CompareHashAndPassword("not-a-valid-hash", "whatever"))
		assert.False(t, CompareHashAndPassword("", "whatever"))
		assert.False(t, CompareHashAndPassword("$argon2i$v=19$m=65536,t=3,p=1$c2FsdA$aGFzaA", "whatever"))
		assert.False(t, CompareHashAndPassword("$argon2id$v=19$bogus$c2FsdA$aGFzaA", "whatever"))
		assert.False(t, CompareHashAndPassword("$argon2id$v=19$m=65536,t=3,p=1$!!!$aGFzaA", "whatever"))
		assert.False(t, CompareHashAndPassword("$argon2id$v=19$m=65536,t=3,p=999$c2FsdA$aGFzaA", "whatever"))
	})
}
