// file: internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kudospot/internal/response"
	"kudospot/internal/services"
)

// AuthContextKey is the context key for the authenticated caller.
const AuthContextKey ContextKey = "auth_context"

// AuthContext identifies the authenticated caller for downstream
// handlers.
type AuthContext struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// GetAuthContext extracts the authenticated caller from context, or nil
// when the request is anonymous.
func GetAuthContext(ctx context.Context) *AuthContext {
	if auth, ok := ctx.Value(AuthContextKey).(*AuthContext); ok {
		return auth
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token and injects
// the caller's identity into the request context.
func RequireAuth(jwtSecret string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				response.Unauthorized(w, r, "missing bearer token")
				return
			}

			claims, err := services.ParseToken(token, jwtSecret)
			if err != nil {
				GetRequestLogger(r.Context()).Warn("Rejected token", zap.Error(err))
				response.Unauthorized(w, r, "invalid or expired token")
				return
			}

			userID, err := strconv.ParseInt(claims.Subject, 10, 64)
			if err != nil {
				response.Unauthorized(w, r, "invalid token subject")
				return
			}

			auth := &AuthContext{
				UserID: userID,
				Email:  claims.Email,
				Name:   claims.Name,
			}
			ctx := context.WithValue(r.Context(), AuthContextKey, auth)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken pulls the token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
