package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/feedbridge/backend/internal/infrastructure/auth"
	"github.com/feedbridge/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Auth context keys
const (
	OperatorSubjectKey = "operator_subject"
	AuthHeaderKey      = "Authorization"
	BearerPrefix       = "Bearer "
)

// OperatorAuth guards admin endpoints with a bearer credential. The caller
// may present either the configured shared secret or a signed token issued
// by the token endpoint. When no secret is configured the middleware is a
// no-op; configuration validation rejects that in production.
func OperatorAuth(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tokens.Enabled() {
			c.Next()
			return
		}

		credential, ok := extractBearer(c)
		if !ok {
			abortUnauthorized(c, dto.ErrCodeUnauthorized, "Missing or malformed authorization header")
			return
		}

		if tokens.MatchesSharedSecret(credential) {
			c.Set(OperatorSubjectKey, "shared-secret")
			c.Next()
			return
		}

		claims, err := tokens.ValidateToken(credential)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		c.Set(OperatorSubjectKey, claims.Subject)
		c.Next()
	}
}

// GetOperatorSubject returns the authenticated operator subject, if any
func GetOperatorSubject(c *gin.Context) string {
	return c.GetString(OperatorSubjectKey)
}

func extractBearer(c *gin.Context) (string, bool) {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return "", false
	}
	credential := strings.TrimPrefix(header, BearerPrefix)
	if credential == "" {
		return "", false
	}
	return credential, true
}

func abortUnauthorized(c *gin.Context, code, message string) {
	requestID := c.GetString(RequestIDKey)
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, requestID))
}
