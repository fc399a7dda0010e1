// Package auth provides the identity middleware for the HTTP API.
//
// Authentication of end users happens upstream; this package only validates
// the bearer token the upstream issues and extracts the requester identity
// from it. With no signing secret configured, identity falls back to the
// X-User-Id / X-User-Role headers, which is intended for development only.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RoleAdmin marks users allowed to delete templates.
const RoleAdmin = "admin"

type contextKey string

const contextKeyIdentity contextKey = "identity"

// Identity is the authenticated requester of an API call.
type Identity struct {
	UserID uuid.UUID
	Role   string
}

// IsAdmin reports whether the identity carries the admin role.
func (i *Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// FromContext extracts the identity from a request context. Requests that
// passed the middleware always carry one; anything else is anonymous.
func FromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(contextKeyIdentity).(*Identity); ok {
		return id
	}
	return &Identity{}
}

// Middleware returns an HTTP middleware that resolves the requester
// identity. When secret is non-empty, a valid HMAC-signed bearer token is
// required; otherwise the identity headers are trusted as-is.
func Middleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identityFromHeaders(r))))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, `{"error":"missing bearer token"}`, http.StatusUnauthorized)
				return
			}

			identity, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "), secret)
			if err != nil {
				http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}

func withIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity, id)
}

func identityFromHeaders(r *http.Request) *Identity {
	id := &Identity{Role: r.Header.Get("X-User-Role")}
	if raw := r.Header.Get("X-User-Id"); raw != "" {
		if parsed, err := uuid.Parse(raw); err == nil {
			id.UserID = parsed
		}
	}
	return id
}

func parseToken(tokenString, secret string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type")
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		return nil, fmt.Errorf("subject is not a user id: %w", err)
	}

	identity := &Identity{UserID: userID}
	if role, ok := claims["role"].(string); ok {
		identity.Role = role
	}
	return identity, nil
}
