package middleware

import (
	"net/http"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/pkg/logger"
)

// AccountContext adds the authenticated caller's role to the request logger.
// It must run after the auth middleware; anonymous requests pass through.
func AccountContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		acc, ok := apperrors.AccountFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := logger.With(r.Context(), "role", acc.Role().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
