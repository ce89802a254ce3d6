package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pos/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *IntegrationTokenService {
	return NewIntegrationTokenService(config.IntegrationConfig{
		JWTSecret: "test-integration-secret-at-least-32ch",
		JWTIssuer: "ayende-crm",
	})
}

func TestIntegrationTokenService_Verify(t *testing.T) {
	t.Run("accepts a valid integration token", func(t *testing.T) {
		service := newTestTokenService()

		tokenString, err := service.Generate("crm-sync-worker", time.Hour)
		require.NoError(t, err)

		claims, err := service.Verify(tokenString)

		require.NoError(t, err)
		assert.Equal(t, "ayende-crm", claims.Issuer)
		assert.Equal(t, "crm-sync-worker", claims.Subject)
		assert.Equal(t, ScopeIntegration, claims.Scope)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		service := newTestTokenService()

		tokenString, err := service.Generate("crm-sync-worker", -time.Minute)
		require.NoError(t, err)

		_, err = service.Verify(tokenString)

		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		service := newTestTokenService()

		other := NewIntegrationTokenService(config.IntegrationConfig{
			JWTSecret: "a-completely-different-signing-secret",
			JWTIssuer: "ayende-crm",
		})
		tokenString, err := other.Generate("crm-sync-worker", time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token from a different issuer", func(t *testing.T) {
		service := newTestTokenService()

		other := NewIntegrationTokenService(config.IntegrationConfig{
			JWTSecret: "test-integration-secret-at-least-32ch",
			JWTIssuer: "someone-else",
		})
		tokenString, err := other.Generate("crm-sync-worker", time.Hour)
		require.NoError(t, err)

		_, err = service.Verify(tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a token missing the integration scope", func(t *testing.T) {
		service := newTestTokenService()

		claims := &IntegrationClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "ayende-crm",
				Subject:   "crm-sync-worker",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
			Scope: "reporting",
		}
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
		tokenString, err := token.SignedString([]byte("test-integration-secret-at-least-32ch"))
		require.NoError(t, err)

		_, err = service.Verify(tokenString)

		assert.ErrorIs(t, err, ErrInvalidScope)
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		service := newTestTokenService()

		claims := &IntegrationClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "ayende-crm",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Scope: ScopeIntegration,
		}
		token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Verify(tokenString)

		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects garbage input", func(t *testing.T) {
		service := newTestTokenService()

		_, err := service.Verify("not-a-token")

		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
