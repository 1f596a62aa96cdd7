package middleware

import (
	"fmt"
	"net/http"

	"github.com/bheem-hr/hr-backend-go/internal/domain/auth"
	"github.com/bheem-hr/hr-backend-go/internal/handler/http/response"
)

// RequirePermission lets the request through when the caller's role grants
// permission. It must run after AuthRequired.
func RequirePermission(permission auth.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !auth.HasPermission(claims.Role, permission) {
				response.HandleError(w, fmt.Errorf("%w: %s requires %s", auth.ErrInsufficientPermissions, roleOf(claims, ok), permission))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireEmployee rejects tokens that are not linked to an employee record.
func RequireEmployee(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok || claims.EmployeeID == "" {
			response.HandleError(w, auth.ErrEmployeeIDRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func roleOf(claims auth.Claims, ok bool) string {
	if !ok || claims.Role == "" {
		return "anonymous"
	}
	return string(claims.Role)
}
