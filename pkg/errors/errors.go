package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the storefront error taxonomy.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidProduct = errors.New("invalid product")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrAuth           = errors.New("authentication failed")
	ErrNetwork        = errors.New("remote call failed")
	ErrStorage        = errors.New("storage write failed")
	ErrInternal       = errors.New("internal error")
)

// Auth failure reasons carried by AuthError.
const (
	ReasonInvalidCredentials = "invalid_credentials"
	ReasonLocked             = "locked"
	ReasonRateLimited        = "rate_limited"
	ReasonWeakPassword       = "weak_password"
	ReasonInvalidEmail       = "invalid_email"
	ReasonEmailInUse         = "email_in_use"
	ReasonUnauthenticated    = "unauthenticated"
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidProduct creates a 400 error for malformed add-to-cart input.
func InvalidProduct(message string) *AppError {
	return &AppError{
		Code:    "INVALID_PRODUCT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidProduct,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// AuthError creates an authentication failure with a machine readable reason.
// Lockouts map to 423 and rate limits to 429; everything else is a 401.
func AuthError(reason, message string) *AppError {
	status := http.StatusUnauthorized
	switch reason {
	case ReasonLocked:
		status = http.StatusLocked
	case ReasonRateLimited:
		status = http.StatusTooManyRequests
	case ReasonWeakPassword, ReasonInvalidEmail:
		status = http.StatusBadRequest
	case ReasonEmailInUse:
		status = http.StatusConflict
	}
	return &AppError{
		Code:    "AUTH_ERROR",
		Message: message,
		Reason:  reason,
		Status:  status,
		Err:     ErrAuth,
	}
}

// NetworkError wraps a failed remote gateway call.
func NetworkError(message string, err error) *AppError {
	return &AppError{
		Code:    "NETWORK_ERROR",
		Message: message,
		Status:  http.StatusBadGateway,
		Err:     errors.Join(ErrNetwork, err),
	}
}

// StorageError wraps a failed persistence write.
func StorageError(err error) *AppError {
	return &AppError{
		Code:    "STORAGE_ERROR",
		Message: "unable to save data",
		Status:  http.StatusInsufficientStorage,
		Err:     errors.Join(ErrStorage, err),
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// AuthReason returns the reason of an AuthError, or "" if err is not one.
func AuthReason(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && errors.Is(appErr.Err, ErrAuth) {
		return appErr.Reason
	}
	return ""
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidProduct):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, ErrStorage):
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}
