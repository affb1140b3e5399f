package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
)

// RequireRole rejects callers whose role is not in roles. Services repeat the
// check; this keeps foreign roles out before any body is decoded.
func RequireRole(logger *slog.Logger, roles ...coreaccount.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			acc, ok := apperrors.AccountFromContext(r.Context())
			if !ok {
				writeAppError(w, apperrors.ErrMissingToken)
				return
			}

			for _, role := range roles {
				if acc.Role() == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			logger.WarnContext(r.Context(), "access denied: role not allowed",
				"email", acc.Email,
				"role", acc.Role().String(),
				"path", r.URL.Path)

			if len(roles) == 1 && roles[0] == coreaccount.RoleEmployee {
				writeAppError(w, apperrors.ErrEmployeeOnly)
				return
			}
			writeAppError(w, apperrors.ErrAdminRequired)
		})
	}
}

func writeAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
