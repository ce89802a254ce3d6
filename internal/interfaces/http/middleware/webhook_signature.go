package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/interfaces/http/dto"
)

// WebhookSignatureHeader carries the hex-encoded HMAC-SHA256 digest of the
// raw request body, computed by the CRM with the shared webhook secret.
const WebhookSignatureHeader = "X-Webhook-Signature"

// WebhookSignature verifies the HMAC signature of incoming webhook requests.
// The digest is computed over the raw body bytes, so the body is read here
// (bounded by maxBody) and restored for the handler.
func WebhookSignature(secret string, maxBody int64) gin.HandlerFunc {
	secretBytes := []byte(secret)

	return func(c *gin.Context) {
		if len(secretBytes) == 0 {
			// Refuse to guess: an unconfigured secret must never mean "accept all"
			c.AbortWithStatusJSON(http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrCodeInternal, "Webhook secret is not configured"))
			return
		}

		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody+1))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Failed to read request body"))
			return
		}
		if int64(len(payload)) > maxBody {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodeBadRequest, "Payload too large"))
			return
		}

		signature := c.GetHeader(WebhookSignatureHeader)
		if signature == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing webhook signature"))
			return
		}

		if !verifySignature(secretBytes, payload, signature) {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid webhook signature"))
			return
		}

		// Hand the handler a fresh reader over the verified bytes
		c.Request.Body = io.NopCloser(bytes.NewReader(payload))
		c.Next()
	}
}

// verifySignature checks a hex HMAC-SHA256 digest against the payload.
// hmac.Equal is constant-time; the decode step already rejects digests of
// the wrong length or with non-hex characters.
func verifySignature(secret, payload []byte, signature string) bool {
	provided, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	if len(provided) != len(expected) {
		return false
	}
	return hmac.Equal(provided, expected)
}

// SignWebhookPayload computes the signature the CRM side attaches to a
// payload. Exported for outbound calls and tests.
func SignWebhookPayload(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
