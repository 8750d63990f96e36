// Package auth guards the mutating admin routes.
package auth

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
)

type AuthProvider interface {
	// WithHeaderAuthorization marks requests carrying valid credentials as admin.
	WithHeaderAuthorization() func(http.Handler) http.Handler

	// RequireAdmin rejects requests that were not marked as admin.
	RequireAdmin(next http.Handler) http.Handler
}

var authLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	authLogger = l
}

// OpenProvider is used when authentication is disabled: every request is admin.
type OpenProvider struct{}

func (OpenProvider) WithHeaderAuthorization() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context())))
		})
	}
}

func (OpenProvider) RequireAdmin(next http.Handler) http.Handler {
	return requireAdmin(next)
}

func requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			zerolog.Ctx(r.Context()).Warn().Str("path", r.URL.Path).Msg("Unauthorized access attempt")
			http.Error(w, config.ErrUnauthorized, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
