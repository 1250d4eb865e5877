package errors

import (
	"fmt"
	"net/http"
)

// ErrorCode identifies the kind of an application error.
type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_FAILED"
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeInvalidOrExpired ErrorCode = "INVALID_OR_EXPIRED_TOKEN"
	ErrCodeUpload           ErrorCode = "UPLOAD_ERROR"
	ErrCodeEmailDelivery    ErrorCode = "EMAIL_DELIVERY_ERROR"
	ErrCodeSigning          ErrorCode = "SIGNING_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// AppError carries an error kind, a caller-facing message and the HTTP status
// the boundary should respond with.
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
	Status  int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidation creates a client-correctable bad input error.
func NewValidation(message string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewAuthenticationFailed creates a bad-credentials error. The same message is
// used whether the account is missing or the password is wrong, so callers
// cannot tell the two apart.
func NewAuthenticationFailed(message string) *AppError {
	return &AppError{
		Code:    ErrCodeAuthentication,
		Message: message,
		Status:  http.StatusUnauthorized,
	}
}

// NewNotFound creates a "not found" error.
func NewNotFound(resource string) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// NewInvalidOrExpiredToken creates an error for a reset token that matches no
// account or whose expiry has elapsed.
func NewInvalidOrExpiredToken() *AppError {
	return &AppError{
		Code:    ErrCodeInvalidOrExpired,
		Message: "token is invalid or expired",
		Status:  http.StatusBadRequest,
	}
}

// NewUpload wraps a photo store failure. Retryable collaborator fault.
func NewUpload(err error) *AppError {
	return &AppError{
		Code:    ErrCodeUpload,
		Message: "could not upload photo",
		Err:     err,
		Status:  http.StatusBadGateway,
	}
}

// NewEmailDelivery wraps a mailer failure. Retryable collaborator fault.
func NewEmailDelivery(err error) *AppError {
	return &AppError{
		Code:    ErrCodeEmailDelivery,
		Message: "could not send email",
		Err:     err,
		Status:  http.StatusServiceUnavailable,
	}
}

// NewSigning wraps a token signing failure. Server fault, not a client error.
func NewSigning(err error) *AppError {
	return &AppError{
		Code:    ErrCodeSigning,
		Message: "could not sign session token",
		Err:     err,
		Status:  http.StatusInternalServerError,
	}
}

// NewInternal creates a generic server-fault error.
func NewInternal(message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}
