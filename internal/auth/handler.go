package auth

import (
	"fmt"
	"net/http"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/transport"
	"github.com/frahmantamala/user-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// Login reads the credentials from the email and password headers.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	dto := LoginDTO{
		Email:    r.Header.Get("email"),
		Password: r.Header.Get("password"),
	}

	tokens, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("authentication failed", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	acc, ok := apperrors.AccountFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, apperrors.ErrMissingToken)
		return
	}

	if err := h.Service.Logout(r.Context(), acc); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("%s logged out successfully", acc.Email),
	})
}

// AuthMiddleware resolves the bearer token and puts the caller into the
// request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, apperrors.ErrMissingToken)
			return
		}

		acc, err := h.Service.Resolve(r.Context(), token)
		if err != nil {
			h.Logger.Warn("auth middleware: token rejected", "error", err, "path", r.URL.Path)
			h.HandleServiceError(w, err)
			return
		}

		ctx := apperrors.ContextWithAccount(r.Context(), acc)
		ctx = logger.With(ctx, "account", acc.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
