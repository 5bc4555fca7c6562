package middleware

import (
	"log/slog"
	"net/http"

	"github.com/KarlovS28/dela/internal/auth"
)

// RequirePermissions guards a route group. The request passes when the
// user holds at least one of the listed permissions; a super role passes
// every guard. Unknown roles and missing users deny.
func RequirePermissions(permissions ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := auth.UserFromContext(r.Context())
			if !ok || user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.CanAny(permissions...) {
				slog.Warn("access denied: missing permission",
					"user_id", user.ID,
					"role", user.RoleName,
					"required_permissions", permissions)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
