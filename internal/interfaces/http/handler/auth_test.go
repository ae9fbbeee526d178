package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/feedbridge/backend/internal/infrastructure/auth"
	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newAuthTestRouter(tokens *auth.TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewAuthHandler(tokens)
	router.POST("/api/v1/auth/token", handler.IssueToken)
	return router
}

func TestAuthHandler_IssueToken(t *testing.T) {
	tokens := auth.NewTokenService(config.AuthConfig{Token: "sekrit", TokenIssuer: "feedbridge-test"})
	router := newAuthTestRouter(tokens)

	t.Run("exchanges shared secret for a token", func(t *testing.T) {
		body := strings.NewReader(`{"secret":"sekrit","subject":"ops"}`)
		req := httptest.NewRequest("POST", "/api/v1/auth/token", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"token_type":"Bearer"`)
		assert.Contains(t, w.Body.String(), "access_token")
	})

	t.Run("rejects wrong secret", func(t *testing.T) {
		body := strings.NewReader(`{"secret":"wrong"}`)
		req := httptest.NewRequest("POST", "/api/v1/auth/token", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects missing secret", func(t *testing.T) {
		body := strings.NewReader(`{}`)
		req := httptest.NewRequest("POST", "/api/v1/auth/token", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("rejects secret exchange when auth disabled", func(t *testing.T) {
		open := newAuthTestRouter(auth.NewTokenService(config.AuthConfig{}))

		body := strings.NewReader(`{"secret":""}`)
		req := httptest.NewRequest("POST", "/api/v1/auth/token", body)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		open.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
