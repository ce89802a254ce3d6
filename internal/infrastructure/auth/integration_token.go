package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pos/backend/internal/infrastructure/config"
)

// ScopeIntegration is the scope a CRM service token must carry to call the
// integration administrative API.
const ScopeIntegration = "integration"

// Common errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidScope = errors.New("token lacks integration scope")
)

// IntegrationClaims represents the claims carried by a CRM service token.
// These are machine-to-machine tokens: no user identity, just the issuing
// system and its scope.
type IntegrationClaims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// IntegrationTokenService verifies the bearer tokens the CRM presents on
// administrative API calls. Tokens are HS256-signed with the shared
// integration secret and must name the configured issuer.
type IntegrationTokenService struct {
	secret []byte
	issuer string
}

// NewIntegrationTokenService creates a new IntegrationTokenService
func NewIntegrationTokenService(cfg config.IntegrationConfig) *IntegrationTokenService {
	return &IntegrationTokenService{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
	}
}

// Verify parses and validates a CRM service token, returning its claims.
// Only HS256 is accepted; an asymmetric-algorithm token is rejected before
// any key material is touched.
func (s *IntegrationTokenService) Verify(tokenString string) (*IntegrationClaims, error) {
	claims := &IntegrationClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Scope != ScopeIntegration {
		return nil, ErrInvalidScope
	}

	return claims, nil
}

// Generate mints an integration-scoped service token. The POS side only
// needs this for outbound calls and tests; inbound verification is the
// primary job of this service.
func (s *IntegrationTokenService) Generate(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &IntegrationClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scope: ScopeIntegration,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
