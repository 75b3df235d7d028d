package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/farmsync/internal/config"
)

func newManager() *JWTManager {
	return NewJWTManager(config.AuthConfig{
		JWTSecret:       "0123456789abcdef",
		Issuer:          "farmsync",
		TokenExpiration: time.Hour,
	})
}

func TestJWTManager_RoundTrip(t *testing.T) {
	m := newManager()

	token, err := m.GenerateToken("user-1", "farmer@example.com")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "farmer@example.com", claims.Email)
	assert.Equal(t, "farmsync", claims.Issuer)
}

func TestJWTManager_Expired(t *testing.T) {
	m := newManager()
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	token, err := m.GenerateToken("user-1", "farmer@example.com")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := newManager().GenerateToken("user-1", "farmer@example.com")
	require.NoError(t, err)

	other := NewJWTManager(config.AuthConfig{JWTSecret: "fedcba9876543210", Issuer: "farmsync", TokenExpiration: time.Hour})
	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Garbage(t *testing.T) {
	_, err := newManager().ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, VerifyPassword(hash, "s3cret!"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "s3cret!"))
}
