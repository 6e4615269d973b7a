package middleware

import (
	"net/http"

	"docvault/internal/httputil"
)

// RequireAdmin rejects requests from non-admin users. It must run after the
// Auth middleware so the user is present in the request context.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := httputil.GetUser(r)
		if user == nil {
			httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		if !user.IsAdmin() {
			httputil.RespondError(w, http.StatusForbidden, "admin role required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
