package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// GetUserIDFromContext returns the authenticated user ID placed on the
// context by Authenticate.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// Middleware validates bearer tokens on protected routes.
type Middleware struct {
	secret []byte
	logger *slog.Logger
}

func NewMiddleware(jwtSecret string, logger *slog.Logger) *Middleware {
	return &Middleware{
		secret: []byte(jwtSecret),
		logger: logger,
	}
}

// Authenticate rejects requests without a valid Bearer token and stores the
// token subject on the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.unauthorized(w, r, "Authorization header required")
			return
		}

		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found {
			m.unauthorized(w, r, "Authorization header must be a Bearer token")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return m.secret, nil
		})
		if err != nil || !token.Valid {
			m.logger.WarnContext(r.Context(), "Token validation failed", slog.Any("error", err))
			m.unauthorized(w, r, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"success":false,"error":%q}`, message)
}
