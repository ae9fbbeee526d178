package handler

import (
	"time"

	"github.com/feedbridge/backend/internal/infrastructure/auth"
	"github.com/gin-gonic/gin"
)

const (
	defaultTokenTTL = time.Hour
	maxTokenTTL     = 24 * time.Hour
)

// AuthHandler exchanges the shared operator secret for short-lived tokens
type AuthHandler struct {
	BaseHandler
	tokens *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

// TokenRequest represents a token exchange request
type TokenRequest struct {
	Secret     string `json:"secret" binding:"required"`
	Subject    string `json:"subject"`
	TTLMinutes int    `json:"ttl_minutes" binding:"omitempty,min=1"`
}

// TokenResponse represents an issued operator token
type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// IssueToken exchanges the shared secret for a signed short-lived token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "secret is required")
		return
	}

	if !h.tokens.Enabled() || !h.tokens.MatchesSharedSecret(req.Secret) {
		h.Unauthorized(c, "Invalid operator secret")
		return
	}

	ttl := defaultTokenTTL
	if req.TTLMinutes > 0 {
		ttl = time.Duration(req.TTLMinutes) * time.Minute
		if ttl > maxTokenTTL {
			ttl = maxTokenTTL
		}
	}

	subject := req.Subject
	if subject == "" {
		subject = "operator"
	}

	token, expiresAt, err := h.tokens.IssueToken(subject, ttl)
	if err != nil {
		h.InternalError(c, "Failed to issue token")
		return
	}

	h.Success(c, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
