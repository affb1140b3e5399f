package auth

import (
	"strings"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/core/common/validation"
)

// LoginDTO carries the credentials the handler reads from the request headers.
type LoginDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (d LoginDTO) Validate() *apperrors.AppError {
	v := validation.NewValidator()
	v.Field("email", strings.TrimSpace(d.Email)).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}
