package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bauliver.org/internal/auth"
)

// publicPaths are reachable without a bearer token.
var publicPaths = map[string]bool{
	"/":                  true,
	"/healthz":           true,
	"/readyz":            true,
	"/metrics":           true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
	"/bot/status":        true,
	"/bot/events":        true,
}

// withAuth resolves the bearer token into a user and stores it on the
// request context. Public paths pass through untouched.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if publicPaths[r.URL.Path] || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := extractBearerToken(r)
		user, err := a.auth.Identify(r.Context(), token)
		if err != nil {
			a.writeAuthnError(w, r, err)
			return
		}

		ctx := auth.ContextWithUser(r.Context(), *user)
		ctx = auth.ContextWithToken(ctx, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *API) writeAuthnError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInactiveAccount):
		writeError(w, r, http.StatusBadRequest, "inactive user")
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidToken):
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func extractBearerToken(r *http.Request) string {
	raw := r.Header.Get("Authorization")
	if raw == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(raw, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
