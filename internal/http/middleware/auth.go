package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/api/respond"
)

type contextKey string

const identityKey contextKey = "identity"

// Roles carried in session tokens.
const (
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

// Claims is the session token payload: registered claims plus the role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller extracted from the session token.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// SessionJWT enforces an HMAC-signed session token and puts the caller
// identity on the request context. All authorization beyond this point is
// data-layer scoping: stores parameterize every query by the caller's id.
func SessionJWT(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
				return
			}
			auth := r.Header.Get("Authorization")
			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
				return
			}
			tokenString := strings.TrimPrefix(auth, "Bearer ")
			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
				return
			}
			userID, err := uuid.Parse(claims.Subject)
			if err != nil {
				respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
				return
			}
			identity := Identity{UserID: userID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route group to a single role. Must run after SessionJWT.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				respond.Error(w, http.StatusUnauthorized, respond.MsgUnauthenticated)
				return
			}
			if identity.Role != role {
				respond.Error(w, http.StatusForbidden, respond.MsgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromContext returns the authenticated identity if present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey).(Identity)
	return identity, ok
}

// WithIdentity injects an identity into the context. Exposed for handler tests.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
