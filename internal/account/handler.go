package account

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/frahmantamala/user-management/internal"
	coreaccount "github.com/frahmantamala/user-management/internal/core/account"
	"github.com/frahmantamala/user-management/internal/transport"
)

type ServiceAPI interface {
	RegisterAdmin(ctx context.Context, dto RegistrationDTO) (*coreaccount.Account, error)
	CreateEmployee(ctx context.Context, dto RegistrationDTO, actor *coreaccount.Account) (*coreaccount.Account, error)
	UpdateAdminProfile(ctx context.Context, dto UpdateDTO, actor *coreaccount.Account) (*coreaccount.Account, error)
	UpdateEmployeeProfile(ctx context.Context, dto UpdateDTO, targetEmail string, actor *coreaccount.Account) (*coreaccount.Account, error)
	Deactivate(ctx context.Context, actor *coreaccount.Account, targetEmail string) (*coreaccount.Account, error)
	Profile(ctx context.Context, actor *coreaccount.Account, role coreaccount.Role) (*coreaccount.Account, error)
	ListAdmins(ctx context.Context, actor *coreaccount.Account) ([]*coreaccount.Account, error)
	ListActiveEmployees(ctx context.Context, actor *coreaccount.Account, email string) ([]*coreaccount.Account, error)
	ListInactive(ctx context.Context, actor *coreaccount.Account, admins bool) ([]*coreaccount.Account, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (*coreaccount.Account, bool) {
	acc, ok := apperrors.AccountFromContext(r.Context())
	if !ok {
		h.Logger.Error("account not found in context", "path", r.URL.Path)
		h.WriteAppError(w, apperrors.ErrMissingToken)
		return nil, false
	}
	return acc, true
}

func (h *Handler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	var dto RegistrationDTO
	if err := h.DecodeJSONStrict(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.RegisterAdmin(r.Context(), dto)
	if err != nil {
		h.Logger.Warn("RegisterAdmin: service error", "error", err, "email", dto.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, ToView(acc))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto RegistrationDTO
	if err := h.DecodeJSONStrict(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.CreateEmployee(r.Context(), dto, actor)
	if err != nil {
		h.Logger.Warn("CreateEmployee: service error", "error", err, "actor", actor.Email)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, EmployeeCreatedResponse{
		Message:  "Employee created successfully",
		Employee: ToView(acc),
	})
}

func (h *Handler) AdminDetails(w http.ResponseWriter, r *http.Request) {
	h.profile(w, r, coreaccount.RoleAdmin)
}

func (h *Handler) EmployeeDetails(w http.ResponseWriter, r *http.Request) {
	h.profile(w, r, coreaccount.RoleEmployee)
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request, role coreaccount.Role) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	acc, err := h.Service.Profile(r.Context(), actor, role)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToView(acc))
}

func (h *Handler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accs, err := h.Service.ListAdmins(r.Context(), actor)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Accounts: ToViews(accs)})
}

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	accs, err := h.Service.ListActiveEmployees(r.Context(), actor, r.URL.Query().Get("employeeEmail"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Accounts: ToViews(accs)})
}

// ListInactive serves inactive employees by default, inactive admins with ?admin=true.
func (h *Handler) ListInactive(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	admins := false
	if raw := r.URL.Query().Get("admin"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.WriteAppError(w, apperrors.NewValidationFieldError("admin", "admin must be true or false", apperrors.ErrCodeValidationFailed))
			return
		}
		admins = parsed
	}

	accs, err := h.Service.ListInactive(r.Context(), actor, admins)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Accounts: ToViews(accs)})
}

func (h *Handler) UpdateAdminProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto UpdateDTO
	if err := h.DecodeJSONStrict(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.UpdateAdminProfile(r.Context(), dto, actor)
	if err != nil {
		h.Logger.Warn("UpdateAdminProfile: service error", "error", err, "actor", actor.Email)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToView(acc))
}

func (h *Handler) UpdateEmployeeProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var dto UpdateDTO
	if err := h.DecodeJSONStrict(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	acc, err := h.Service.UpdateEmployeeProfile(r.Context(), dto, r.URL.Query().Get("employeeEmail"), actor)
	if err != nil {
		h.Logger.Warn("UpdateEmployeeProfile: service error", "error", err, "actor", actor.Email)
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToView(acc))
}

func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	target := r.URL.Query().Get("adminOrEmployeeEmail")
	acc, err := h.Service.Deactivate(r.Context(), actor, target)
	if err != nil {
		h.Logger.Warn("Deactivate: service error", "error", err, "actor", actor.Email, "target", target)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DeactivatedResponse{
		Message:           fmt.Sprintf("%s marked inactive and scheduled for deletion", acc.Email),
		Email:             acc.Email,
		ScheduledDeletion: *acc.ScheduledDeletion,
	})
}
