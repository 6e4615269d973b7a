package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docvault/internal/auth"
	"docvault/internal/httputil"
	"docvault/internal/service/accounts"
)

// Auth middleware validates the Bearer token on every request, resolves the
// caller to a local user record and attaches it to the request context.
// Unapproved users get a 403 so new signups are visible to admins but cannot
// touch the archive until approved.
func Auth(verifier auth.JWTVerifier, users *accounts.Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health checks are unauthenticated
			if r.URL.Path == "/health" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, http.StatusUnauthorized, "missing or malformed Authorization header")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			user, err := users.EnsureUser(r.Context(), claims.Subject, claims.Email, claims.Name)
			if err != nil {
				logger.Error("failed to resolve user", "subject", claims.Subject, "error", err)
				httputil.RespondError(w, http.StatusInternalServerError, "failed to resolve user")
				return
			}

			if !user.Approved {
				httputil.RespondError(w, http.StatusForbidden, "account is pending approval")
				return
			}

			next.ServeHTTP(w, httputil.WithUser(r, user))
		})
	}
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}

	return parts[1], true
}
