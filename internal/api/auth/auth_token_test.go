package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-analytics/aura-backend/config"
	"github.com/aura-analytics/aura-backend/internal/api"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "aura-backend-test",
		TokenTTL:  time.Hour,
	}
}

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	token, err := svc.Issue("user-123", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.Equal(t, "aura-backend-test", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenService_Verify_Failures(t *testing.T) {
	svc := NewTokenService(testJWTConfig())

	t.Run("CorruptedToken", func(t *testing.T) {
		_, err := svc.Verify("this-is-not-a-jwt")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})

	t.Run("TamperedSignature", func(t *testing.T) {
		token, err := svc.Issue("user-123", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(token + "x")
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{
			SecretKey: "different-secret",
			Issuer:    "aura-backend-test",
			TokenTTL:  time.Hour,
		})
		token, err := other.Issue("user-123", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		// A negative TTL puts the expiry in the past at issue time.
		expired := NewTokenService(config.JWTConfig{
			SecretKey: "test-secret",
			Issuer:    "aura-backend-test",
			TokenTTL:  -time.Minute,
		})
		token, err := expired.Issue("user-123", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})

	t.Run("IssuerMismatch", func(t *testing.T) {
		other := NewTokenService(config.JWTConfig{
			SecretKey: "test-secret",
			Issuer:    "someone-else",
			TokenTTL:  time.Hour,
		})
		token, err := other.Issue("user-123", "alice@example.com")
		require.NoError(t, err)

		_, err = svc.Verify(token)
		assert.ErrorIs(t, err, api.ErrUnauthenticated)
	})
}

func TestTokenService_TTLBoundary(t *testing.T) {
	// Short TTL: accepted just before expiry, rejected just after.
	svc := NewTokenService(config.JWTConfig{
		SecretKey: "test-secret",
		Issuer:    "aura-backend-test",
		TokenTTL:  2 * time.Second,
	})

	token, err := svc.Issue("user-123", "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.NoError(t, err)

	time.Sleep(3 * time.Second)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
}
