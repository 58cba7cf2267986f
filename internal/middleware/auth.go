package middleware

import (
	"context"
	"net/http"
	"strings"

	"tourzen-backend/internal/services"
)

type contextKey string

const sessionKey contextKey = "session"

// AuthMiddleware rejects requests without a valid bearer session token and
// stores the session in the request context.
func AuthMiddleware(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				respondError(w, "authentication required", http.StatusUnauthorized)
				return
			}

			session, err := auth.ValidateToken(token)
			if err != nil {
				respondError(w, "invalid session token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, *session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth stores the session when a valid bearer token is present but
// lets the request through either way. Public reads use it to enrich
// responses for signed-in callers.
func OptionalAuth(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token, ok := bearerToken(r); ok {
				if session, err := auth.ValidateToken(token); err == nil {
					r = r.WithContext(context.WithValue(r.Context(), sessionKey, *session))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetSession extracts the session from context. The second return is false
// on unauthenticated requests.
func GetSession(ctx context.Context) (services.Session, bool) {
	session, ok := ctx.Value(sessionKey).(services.Session)
	return session, ok
}

func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write([]byte(`{"message":"` + message + `"}`))
}
