package middleware

import (
	"context"
	"net/http"
	"strings"

	"hrpipeline/internal/common"
	"hrpipeline/internal/domain/role"
	"hrpipeline/internal/http/response"
	"hrpipeline/internal/security"
)

type contextKey string

const ContextUserIDKey contextKey = "user_id"

type AuthMiddleware struct {
	jwt         *security.JWTProvider
	permissions role.Provider
}

func NewAuthMiddleware(jwt *security.JWTProvider, permissions role.Provider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, permissions: permissions}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "missing authorization header", nil))
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid authorization header", nil))
			return
		}
		claims, err := m.jwt.Parse(parts[1])
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		userID, err := common.ParseUUID(claims.UserID)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid user id", err))
			return
		}
		ctx := context.WithValue(r.Context(), ContextUserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequirePermission resolves the caller's role flags and gates the handler on
// the given permission.
func (m *AuthMiddleware) RequirePermission(perm role.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "not authenticated", nil))
				return
			}
			perms, err := m.permissions.PermissionsFor(r.Context(), userID)
			if err != nil {
				response.Error(w, err)
				return
			}
			if !perms[perm] {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient permissions", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func UserIDFromContext(ctx context.Context) (common.UUID, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(common.UUID)
	return id, ok
}
