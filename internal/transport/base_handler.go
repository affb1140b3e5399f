package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/frahmantamala/user-management/internal"
	"github.com/frahmantamala/user-management/pkg/logger"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response for failures that have no AppError.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.WriteAppError(w, &apperrors.AppError{
		Type:       typeForStatus(status),
		Code:       apperrors.ErrorCode(strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))),
		Message:    message,
		StatusCode: status,
	})
}

func (h *BaseHandler) WriteAppError(w http.ResponseWriter, appErr *apperrors.AppError) {
	status, body := appErr.ToHTTPResponse()
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}
	h.WriteJSON(w, status, body)
}

// HandleServiceError maps service errors onto the HTTP error body. Anything
// that is not an AppError becomes a 500 without leaking its message.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.IsAppError(err); ok {
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.Logger.Error("internal error", "error", err)
			h.WriteAppError(w, apperrors.NewInternalError("internal server error", nil))
			return
		}
		h.WriteAppError(w, appErr)
		return
	}

	h.Logger.Error("unhandled service error", "error", err)
	h.WriteAppError(w, apperrors.NewInternalError("internal server error", nil))
}

// DecodeJSONStrict decodes the body into dst and rejects keys dst does not declare.
func (h *BaseHandler) DecodeJSONStrict(r *http.Request, dst interface{}) *apperrors.AppError {
	if r.Body == nil {
		return apperrors.NewValidationError("request body is required", apperrors.ErrCodeValidationFailed)
	}

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		switch {
		case errors.Is(err, io.EOF):
			return apperrors.NewValidationError("request body is required", apperrors.ErrCodeValidationFailed)
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return apperrors.ErrInvalidField.WithDetails(apperrors.ValidationErrors{
				Errors: []apperrors.ValidationError{{Field: field, Message: "Invalid field", Code: string(apperrors.ErrCodeInvalidField)}},
			})
		default:
			return apperrors.NewValidationError("invalid request body", apperrors.ErrCodeValidationFailed)
		}
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ""
	}

	return strings.TrimSpace(authHeader[7:])
}

func typeForStatus(status int) apperrors.ErrorType {
	switch status {
	case http.StatusBadRequest:
		return apperrors.ErrorTypeValidation
	case http.StatusUnauthorized:
		return apperrors.ErrorTypeUnauthorized
	case http.StatusForbidden:
		return apperrors.ErrorTypeForbidden
	case http.StatusNotFound:
		return apperrors.ErrorTypeNotFound
	case http.StatusConflict:
		return apperrors.ErrorTypeConflict
	}
	return apperrors.ErrorTypeInternal
}
