package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService(t *testing.T) {
	t.Run("happy path - round trip", func(t *testing.T) {
		s := NewTokenService(99, "secret")
		token, err := s.GenerateJWT()
		require.NoError(t, err)

		ownerID, err := s.ValidateJWT(token)
		require.NoError(t, err)
		assert.Equal(t, int64(99), ownerID)
	})

	t.Run("different secret", func(t *testing.T) {
		token, err := NewTokenService(99, "secret").GenerateJWT()
		require.NoError(t, err)

		_, err = NewTokenService(99, "other").ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("token for another owner", func(t *testing.T) {
		token, err := NewTokenService(1, "secret").GenerateJWT()
		require.NoError(t, err)

		_, err = NewTokenService(2, "secret").ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("expired token", func(t *testing.T) {
		s := NewTokenService(99, "secret")
		s.now = func() time.Time { return time.Now().Add(-2 * tokenTTL) }
		token, err := s.GenerateJWT()
		require.NoError(t, err)

		_, err = NewTokenService(99, "secret").ValidateJWT(token)
		assert.Error(t, err)
	})

	t.Run("not configured", func(t *testing.T) {
		_, err := NewTokenService(0, "secret").GenerateJWT()
		assert.ErrorIs(t, err, ErrOwnerNotConfigured)

		_, err = NewTokenService(99, "").ValidateJWT("x")
		assert.ErrorIs(t, err, ErrOwnerNotConfigured)
	})
}
