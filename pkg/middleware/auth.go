package middleware

import (
	"context"
	"net/http"
	"strings"

	jwtutil "github.com/Dias221467/task-reminders/pkg/jwt"
	"github.com/sirupsen/logrus"
)

type contextKey string

// UserContextKey stores the validated *jwtutil.Claims in the request context.
const UserContextKey contextKey = "user"

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := jwtutil.ValidateToken(token, secret)
			if err != nil {
				logrus.WithError(err).Warn("Rejected invalid token")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext returns the claims set by AuthMiddleware, or nil.
func GetUserFromContext(ctx context.Context) *jwtutil.Claims {
	claims, _ := ctx.Value(UserContextKey).(*jwtutil.Claims)
	return claims
}
