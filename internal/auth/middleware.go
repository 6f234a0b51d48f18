package auth

import (
	"context"
	"net/http"
	"strings"

	"funquizz/internal/respond"
)

type contextKey struct{}

var userIDKey contextKey

// UserIDFromContext returns the authenticated user's id, placed there by
// the middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// Middleware rejects requests without a valid bearer access token and puts
// the subject's user id on the request context.
func (h *Handler) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			respond.Message(w, http.StatusUnauthorized, "Authorization token required")
			return
		}

		userID, err := h.service.VerifyAccess(token)
		if err != nil {
			respond.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// OptionalMiddleware attaches the user id when a valid token is present
// and lets anonymous callers through. Public-set reads use it.
func (h *Handler) OptionalMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token != "" {
			if userID, err := h.service.VerifyAccess(token); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), userIDKey, userID))
			}
		}
		next.ServeHTTP(w, r)
	}
}
