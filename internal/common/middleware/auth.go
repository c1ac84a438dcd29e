package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"giveaway-offers-backend/internal/common/errors"
)

const AdminKeyHeader = "X-Admin-Key"

// RequireAdminKey guards admin routes with a shared API key. An empty key
// disables the admin surface entirely.
func RequireAdminKey(apiKey string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			RespondError(c, errors.New(errors.ErrCodeForbidden, "Admin API is disabled"), logger)
			c.Abort()
			return
		}

		provided := c.GetHeader(AdminKeyHeader)
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			RespondError(c, errors.NewUnauthorizedError("valid admin key required"), logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireSecret checks a shared secret passed as a query parameter, the way
// offer networks sign postbacks. An empty secret rejects every request.
func RequireSecret(param, secret string, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			RespondError(c, errors.New(errors.ErrCodeForbidden, "Postback is disabled"), logger)
			c.Abort()
			return
		}
		provided := c.Query(param)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			RespondError(c, errors.NewUnauthorizedError("invalid postback secret"), logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
