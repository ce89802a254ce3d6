package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/infrastructure/auth"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// IntegrationSubjectKey is the gin context key holding the subject of a
// verified integration token.
const IntegrationSubjectKey = "integration_subject"

// IntegrationAuth guards the integration administrative API. Callers must
// present a Bearer token minted by the CRM with the integration scope.
func IntegrationAuth(tokens *auth.IntegrationTokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing authorization header"))
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authorization header must use Bearer scheme"))
			return
		}

		claims, err := tokens.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					dto.NewErrorResponse(dto.ErrCodeTokenExpired, "Token has expired"))
			case errors.Is(err, auth.ErrInvalidScope):
				c.AbortWithStatusJSON(http.StatusForbidden,
					dto.NewErrorResponse(dto.ErrCodeForbidden, "Token lacks integration scope"))
			default:
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					dto.NewErrorResponse(dto.ErrCodeTokenInvalid, "Invalid token"))
			}
			return
		}

		c.Set(IntegrationSubjectKey, claims.Subject)
		c.Next()
	}
}

// GetIntegrationSubject returns the verified token subject, or "" when the
// request did not pass through IntegrationAuth.
func GetIntegrationSubject(c *gin.Context) string {
	return c.GetString(IntegrationSubjectKey)
}
