package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
)

// TokenManager issues HMAC-signed session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a session token issuer.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue returns a signed session token for the user.
func (m *TokenManager) Issue(user *User) (string, error) {
	if len(m.secret) == 0 {
		return "", fmt.Errorf("auth: jwt secret not configured")
	}
	now := time.Now()
	claims := httpmiddleware.Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// NewConfirmationToken returns an opaque token for email-confirmation links.
// Lookups are by exact match, so possession of the link is the credential.
func NewConfirmationToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("auth: confirmation token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
