package account

import (
	"encoding/json"
	"strings"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/internal/core/common/validation"
)

// RegistrationDTO is the payload for admin self-registration and for
// admin-initiated employee creation.
type RegistrationDTO struct {
	FirstName   string  `json:"userFirstName" validate:"required"`
	LastName    string  `json:"userLastName" validate:"required"`
	Designation string  `json:"designation" validate:"required"`
	Password    string  `json:"password" validate:"required,min=6"`
	Email       string  `json:"email" validate:"required,emailaddr"`
	PhoneNumber string  `json:"phoneNumber" validate:"required,phone"`
	Address     *string `json:"address"`
	// accepted for compatibility; the role is decided by the operation
	IsSuperUser *bool `json:"isSuperUser"`
}

func (d *RegistrationDTO) Normalize() {
	d.Email = strings.TrimSpace(d.Email)
	d.FirstName = strings.TrimSpace(d.FirstName)
	d.LastName = strings.TrimSpace(d.LastName)
	d.Designation = strings.TrimSpace(d.Designation)
	d.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
}

func (d RegistrationDTO) Validate() *apperrors.AppError {
	return validation.Struct(d)
}

// UpdateDTO is a partial update: nil fields are left untouched.
type UpdateDTO struct {
	Email       *string        `json:"email" validate:"omitnil,emailaddr"`
	FirstName   *string        `json:"userFirstName" validate:"omitnil,min=1"`
	LastName    *string        `json:"userLastName" validate:"omitnil,min=1"`
	Address     NullableString `json:"address"`
	PhoneNumber *string        `json:"phoneNumber" validate:"omitnil,phone"`
	Designation *string        `json:"designation" validate:"omitnil,min=1"`
	Password    *string        `json:"password" validate:"omitnil,min=6"`
}

func (d UpdateDTO) Validate() *apperrors.AppError {
	if d.IsEmpty() {
		return errEmptyUpdate
	}
	return validation.Struct(d)
}

func (d UpdateDTO) IsEmpty() bool {
	return d.Email == nil && d.FirstName == nil && d.LastName == nil && !d.Address.Set &&
		d.PhoneNumber == nil && d.Designation == nil && d.Password == nil
}

// NullableString tells an explicit null apart from an absent key: Set is true
// whenever the key was present, Value is nil for null.
type NullableString struct {
	Set   bool
	Value *string
}

func SetString(s string) NullableString {
	return NullableString{Set: true, Value: &s}
}

func (n *NullableString) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}
