package auth

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/feedbridge/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Common errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrWrongIssuer      = errors.New("token issued by another service")
)

// ScopeImport marks tokens allowed to trigger feed imports.
const ScopeImport = "import"

// Claims represents custom JWT claims for operator tokens
type Claims struct {
	jwt.RegisteredClaims
	Scope string `json:"scope"`
}

// TokenService issues and validates operator bearer tokens. The shared
// secret from configuration doubles as the HMAC signing key, so an
// operator can either present the secret directly or exchange it for a
// short-lived signed token.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a new TokenService
func NewTokenService(cfg config.AuthConfig) *TokenService {
	issuer := cfg.TokenIssuer
	if issuer == "" {
		issuer = "feedbridge"
	}
	return &TokenService{
		secret: []byte(cfg.Token),
		issuer: issuer,
	}
}

// Enabled reports whether a shared secret is configured. Without one the
// auth layer is open, which configuration validation forbids in production.
func (s *TokenService) Enabled() bool {
	return len(s.secret) > 0
}

// MatchesSharedSecret compares a presented credential against the shared
// secret in constant time.
func (s *TokenService) MatchesSharedSecret(raw string) bool {
	if !s.Enabled() {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(raw), s.secret) == 1
}

// IssueToken generates a signed token carrying the import scope
func (s *TokenService) IssueToken(subject string, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   subject,
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Scope: ScopeImport,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// ValidateToken validates a signed token and returns its claims
func (s *TokenService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, ErrTokenNotYetValid
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}

	if claims.Issuer != s.issuer {
		return nil, ErrWrongIssuer
	}
	if claims.Scope == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
