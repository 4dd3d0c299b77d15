package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	KindValidation Kind = "validation"
	KindDomain     Kind = "domain"
	KindUpstream   Kind = "upstream"
	KindPrint      Kind = "print"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code    int          `json:"code"`
	Kind    Kind         `json:"kind"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	cause   error
}

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// Common errors
var (
	ErrNotFound          = &AppError{Code: http.StatusNotFound, Kind: KindDomain, Message: "Resource not found"}
	ErrUnauthorized      = &AppError{Code: http.StatusUnauthorized, Kind: KindAuth, Message: "Unauthorized"}
	ErrForbidden         = &AppError{Code: http.StatusForbidden, Kind: KindAuth, Message: "Forbidden"}
	ErrBadRequest        = &AppError{Code: http.StatusBadRequest, Kind: KindValidation, Message: "Bad request"}
	ErrInternalServer    = &AppError{Code: http.StatusInternalServerError, Kind: KindInternal, Message: "Internal server error"}
	ErrInvalidToken      = &AppError{Code: http.StatusUnauthorized, Kind: KindAuth, Message: "Sesi login tidak valid"}
	ErrSessionResolving  = &AppError{Code: http.StatusServiceUnavailable, Kind: KindAuth, Message: "Session is being resolved"}
	ErrUpstreamFallback  = &AppError{Code: http.StatusBadGateway, Kind: KindUpstream, Message: "Terjadi kesalahan, silakan coba lagi"}
	ErrConfirmationFirst = &AppError{Code: http.StatusPreconditionRequired, Kind: KindValidation, Message: "Konfirmasi diperlukan"}
)

// NewAppError creates a new application error
func NewAppError(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindInternal,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(fieldErrors []FieldError) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidation,
		Message: "Validation failed",
		Errors:  fieldErrors,
	}
}

// NewNotFoundError creates a not found error with a custom message
func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    KindDomain,
		Message: resource + " not found",
	}
}

// NewBadRequestError creates a bad request error with a custom message
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    http.StatusBadRequest,
		Kind:    KindValidation,
		Message: message,
	}
}

// NewDomainError wraps a business-rule rejection. The cart is left unchanged by
// whatever produced cause.
func NewDomainError(code int, cause error) *AppError {
	return &AppError{
		Code:    code,
		Kind:    KindDomain,
		Message: cause.Error(),
		cause:   cause,
	}
}

// NewUpstreamError reports a backend failure using the backend's own message.
// 4xx statuses are mirrored, anything else becomes 502.
func NewUpstreamError(status int, message string) *AppError {
	code := http.StatusBadGateway
	if status >= 400 && status < 500 {
		code = status
	}
	if message == "" {
		message = ErrUpstreamFallback.Message
	}
	return &AppError{
		Code:    code,
		Kind:    KindUpstream,
		Message: message,
	}
}

// NewPrintError reports a failed receipt dispatch.
func NewPrintError(cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    KindPrint,
		Message: "Gagal mencetak struk. Silakan coba lagi.",
		cause:   cause,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// GetAppError converts an error to AppError if possible
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    KindInternal,
		Message: err.Error(),
		cause:   err,
	}
}
