package middleware

import (
	"net/http"

	"cinema-ticketing/internal/data/repository"
	"cinema-ticketing/pkg/utils"

	"go.uber.org/zap"
)

// Authenticate resolves the bearer token to a user and puts id and role in the request context
func Authenticate(tokenRepo repository.AuthTokenRepository, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				utils.ResponseUnauthorized(w, "Missing authorization token")
				return
			}

			token, ok := utils.BearerToken(r)
			if !ok {
				utils.ResponseUnauthorized(w, "Invalid token format. Use: Bearer <token>")
				return
			}

			authToken, err := tokenRepo.FindValid(r.Context(), token)
			if err != nil {
				logger.Error("Failed to validate auth token", zap.Error(err))
				utils.ResponseInternalError(w, "Internal server error")
				return
			}

			if authToken == nil {
				logger.Debug("Invalid or expired token", zap.String("path", r.URL.Path))
				utils.ResponseUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := utils.SetUserContext(r.Context(), authToken.UserID, authToken.Role)
			ctx = utils.SetTokenContext(ctx, token)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the authenticated role is one of roles.
// It must run after Authenticate.
func RequireRole(logger *zap.Logger, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := utils.GetUserIDFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			role, _ := utils.GetRoleFromContext(r.Context())
			if !allowed[role] {
				logger.Warn("Role check: access denied",
					zap.String("user_id", userID.String()),
					zap.String("role", role),
					zap.String("path", r.URL.Path))
				utils.ResponseForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
