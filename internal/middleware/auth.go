package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agroflow/logicapture/internal/utils"
)

type contextKey string

const UserContextKey contextKey = "user"

// Auth verifies the Bearer token and stores its claims in the request
// context. The secret is injected so handlers never reload configuration.
func Auth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Authorization header required", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := utils.ValidateToken(parts[1], secret)
			if err != nil {
				http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Claims extracts the token claims stored by Auth, or nil.
func Claims(r *http.Request) jwt.MapClaims {
	claims, _ := r.Context().Value(UserContextKey).(jwt.MapClaims)
	return claims
}

// Username returns the authenticated username, or "".
func Username(r *http.Request) string {
	if claims := Claims(r); claims != nil {
		if name, ok := claims["username"].(string); ok {
			return name
		}
	}
	return ""
}

// Role returns the authenticated user's role, or "".
func Role(r *http.Request) string {
	if claims := Claims(r); claims != nil {
		if role, ok := claims["role"].(string); ok {
			return role
		}
	}
	return ""
}

// RequireRole rejects requests whose token does not carry one of the
// allowed roles. Must run after Auth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !allowed[Role(r)] {
				http.Error(w, "Insufficient permissions", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
