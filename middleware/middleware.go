package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/JethroRendon/Groupify---CC-206-Final-Project/logging"
	"github.com/JethroRendon/Groupify---CC-206-Final-Project/utils"
)

type contextKey string

const (
	userIDKey    contextKey = "uid"
	userEmailKey contextKey = "email"
)

// JWTAuthMiddleware validates the bearer token and stores the verified
// caller identity on the request context.
func JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for request to %s %s", r.Method, r.URL.Path)
			http.Error(w, "Authorization header missing", http.StatusUnauthorized)
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr)
		if err != nil {
			logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token provided for request to %s %s: %v", r.Method, r.URL.Path, err)
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UID)
		ctx = context.WithValue(ctx, userEmailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the verified caller id set by JWTAuthMiddleware.
func UserID(r *http.Request) string {
	uid, _ := r.Context().Value(userIDKey).(string)
	return uid
}

// UserEmail returns the verified caller email, when the token carried one.
func UserEmail(r *http.Request) string {
	email, _ := r.Context().Value(userEmailKey).(string)
	return email
}
