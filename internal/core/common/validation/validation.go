package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/go-playground/validator/v10"
)

var (
	emailPattern = regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{8,15}$`)
)

const MinPasswordLength = 6

var structValidator = newStructValidator()

func newStructValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names so errors match the request payload
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = v.RegisterValidation("emailaddr", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhoneNumber(fl.Field().String())
	})

	return v
}

func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

func IsPhoneNumber(s string) bool {
	return phonePattern.MatchString(s)
}

// Struct runs the `validate` tags of s and folds every failure into one
// validation AppError.
func Struct(s interface{}) *apperrors.AppError {
	err := structValidator.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewValidationError(err.Error(), apperrors.ErrCodeValidationFailed)
	}

	out := make([]apperrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		msg, code := describe(fe)
		out = append(out, apperrors.ValidationError{Field: fe.Field(), Message: msg, Code: string(code)})
	}

	return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
		WithDetails(apperrors.ValidationErrors{Errors: out})
}

func describe(fe validator.FieldError) (string, apperrors.ErrorCode) {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field), apperrors.ErrCodeValidationFailed
	case "emailaddr":
		return fmt.Sprintf("%s is not a valid email address", field), apperrors.ErrCodeInvalidEmail
	case "phone":
		return fmt.Sprintf("%s must be 8 to 15 digits", field), apperrors.ErrCodeInvalidPhone
	case "min":
		if field == "password" {
			return fmt.Sprintf("password must be at least %s characters", fe.Param()), apperrors.ErrCodeWeakPassword
		}
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param()), apperrors.ErrCodeValidationFailed
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", field, fe.Param()), apperrors.ErrCodeValidationFailed
	}
	return fmt.Sprintf("%s is invalid", field), apperrors.ErrCodeValidationFailed
}

type ValidatorFunc func(interface{}) *apperrors.AppError

type FieldValidator struct {
	FieldName  string
	Value      interface{}
	Validators []ValidatorFunc
}

// ValidationBuilder is for ad-hoc inputs that do not come as a tagged struct,
// such as credentials carried in headers.
type ValidationBuilder struct {
	fields []*FieldValidator
}

func NewValidator() *ValidationBuilder {
	return &ValidationBuilder{}
}

func (v *ValidationBuilder) Field(name string, value interface{}) *FieldValidator {
	fv := &FieldValidator{FieldName: name, Value: value}
	v.fields = append(v.fields, fv)
	return fv
}

func (fv *FieldValidator) Required() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		switch v := value.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return apperrors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), apperrors.ErrCodeValidationFailed)
			}
		case *string:
			if v == nil || strings.TrimSpace(*v) == "" {
				return apperrors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is required", fv.FieldName), apperrors.ErrCodeValidationFailed)
			}
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Email() *FieldValidator {
	fv.Validators = append(fv.Validators, func(value interface{}) *apperrors.AppError {
		if v, ok := value.(string); ok && v != "" && !IsEmail(v) {
			return apperrors.NewValidationFieldError(fv.FieldName, fmt.Sprintf("%s is not a valid email address", fv.FieldName), apperrors.ErrCodeInvalidEmail)
		}
		return nil
	})
	return fv
}

func (fv *FieldValidator) Custom(validator func(interface{}) *apperrors.AppError) *FieldValidator {
	fv.Validators = append(fv.Validators, validator)
	return fv
}

func (v *ValidationBuilder) Validate() *apperrors.AppError {
	var collected []apperrors.ValidationError

	for _, field := range v.fields {
		for _, check := range field.Validators {
			appErr := check(field.Value)
			if appErr == nil {
				continue
			}
			if details, ok := appErr.Details.(apperrors.ValidationErrors); ok {
				collected = append(collected, details.Errors...)
				continue
			}
			collected = append(collected, apperrors.ValidationError{
				Field:   field.FieldName,
				Message: appErr.Message,
				Code:    string(appErr.Code),
			})
		}
	}

	if len(collected) > 0 {
		return apperrors.NewValidationError("Validation failed", apperrors.ErrCodeValidationFailed).
			WithDetails(apperrors.ValidationErrors{Errors: collected})
	}

	return nil
}
