package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)

	token, err := issuer.Generate("user-1")
	require.NoError(t, err)

	claims, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "listing_analytics", claims.Issuer)
}

func TestTokenIssuer_Rejects(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Minute)
	token, err := issuer.Generate("user-1")
	require.NoError(t, err)

	_, err = NewTokenIssuer("other", time.Minute).Validate(token)
	assert.ErrorIs(t, err, ErrTokenSignature)

	expired := NewTokenIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Generate("user-1")
	require.NoError(t, err)
	_, err = issuer.Validate(old)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPasswordHash("hunter2", hash))
	assert.False(t, CheckPasswordHash("hunter3", hash))
}
