package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

type contextKey string

const emailKey contextKey = "userEmail"

// UserEmail returns the authenticated caller's email, if any.
func UserEmail(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// Middleware validates the Bearer token against the store and rejects
// unauthenticated requests with a 401 JSON body.
func Middleware(store *TokenStore, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			unauthorized(w, "missing Bearer token")
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		email, err := store.FindEmail(token)
		if err != nil {
			logger.Error("token lookup failed", "error", err)
			unauthorized(w, "invalid token")
			return
		}
		if email == "" {
			unauthorized(w, "invalid token")
			return
		}

		logger.Info("authenticated", "email", email)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), emailKey, email)))
	})
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
