package errors

import (
	"errors"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrBadRequest          = errors.New("bad request")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrInvalidCode         = errors.New("invalid or expired verification code")
	ErrEmailDelivery       = errors.New("email delivery failed")
	ErrPasswordMismatch    = errors.New("current password is incorrect")
	ErrInvalidSecret       = errors.New("invalid admin secret")
	ErrAdminExists         = errors.New("admin already exists")
	ErrRateLimited         = errors.New("rate limited")
	ErrUpstreamUnavailable = errors.New("upstream model unavailable")
	ErrUpstreamRateLimited = errors.New("upstream model quota exhausted")
)

// Error codes. They double as i18n message keys.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeInvalidInput       = "INVALID_INPUT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeRateLimited        = "RATE_LIMITED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"

	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeEmailNotVerified   = "EMAIL_NOT_VERIFIED"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidCode        = "INVALID_OR_EXPIRED_CODE"
	CodeEmailDelivery      = "EMAIL_DELIVERY_FAILED"
	CodePasswordMismatch   = "CURRENT_PASSWORD_INCORRECT"
	CodeInvalidSecret      = "INVALID_ADMIN_SECRET"
	CodeAdminExists        = "ADMIN_EXISTS"
	CodeRecordNotFound     = "RECORD_NOT_FOUND"
	CodeChatNotFound       = "CHAT_NOT_FOUND"
	CodePartNotFound       = "PART_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeMessagesRequired   = "MESSAGES_REQUIRED"
)

// AppError is an error carrying its HTTP status and a stable code.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// Retry tells the client the request may succeed if resent later.
	Retry bool  `json:"retry,omitempty"`
	Err   error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithCode returns a copy with a more specific code.
func (e *AppError) WithCode(code string) *AppError {
	cp := *e
	cp.Code = code
	return &cp
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, CodeNotFound, message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, CodeInvalidInput, message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, CodeUnauthorized, message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, CodeForbidden, message, ErrForbidden)
}

func Conflict(message string) *AppError {
	return NewAppError(http.StatusConflict, CodeConflict, message, ErrAlreadyExists)
}

func TooManyRequests(message string) *AppError {
	e := NewAppError(http.StatusTooManyRequests, CodeRateLimited, message, ErrRateLimited)
	e.Retry = true
	return e
}

func ServiceUnavailable(message string) *AppError {
	e := NewAppError(http.StatusServiceUnavailable, CodeServiceUnavailable, message, ErrUpstreamUnavailable)
	e.Retry = true
	return e
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, "internal server error", err)
}

func InternalServerError(message string) *AppError {
	return NewAppError(http.StatusInternalServerError, CodeInternalError, message, nil)
}

// NewError wraps err in a 400 with a custom message
func NewError(message string, err error) *AppError {
	return NewAppError(http.StatusBadRequest, CodeBadRequest, message, err)
}

// IsRetryableUpstream reports whether an upstream model failure may succeed on
// another attempt.
func IsRetryableUpstream(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamRateLimited)
}

// FromError converts any error into an AppError, translating domain sentinels.
func FromError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return NewAppError(http.StatusNotFound, CodeNotFound, "resource not found", err)
	case errors.Is(err, ErrAlreadyExists):
		return NewAppError(http.StatusConflict, CodeConflict, "resource already exists", err)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return NewAppError(http.StatusBadRequest, CodeInvalidInput, err.Error(), err)
	case errors.Is(err, ErrUnauthorized):
		return NewAppError(http.StatusUnauthorized, CodeUnauthorized, "unauthorized", err)
	case errors.Is(err, ErrForbidden):
		return NewAppError(http.StatusForbidden, CodeForbidden, "forbidden", err)
	case errors.Is(err, ErrInvalidCredentials):
		return NewAppError(http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password", err)
	case errors.Is(err, ErrEmailNotVerified):
		return NewAppError(http.StatusForbidden, CodeEmailNotVerified, "email not verified", err)
	case errors.Is(err, ErrInvalidCode):
		return NewAppError(http.StatusBadRequest, CodeInvalidCode, "invalid or expired verification code", err)
	case errors.Is(err, ErrEmailDelivery):
		return NewAppError(http.StatusInternalServerError, CodeEmailDelivery, "failed to send verification email", err)
	case errors.Is(err, ErrPasswordMismatch):
		return NewAppError(http.StatusBadRequest, CodePasswordMismatch, "current password is incorrect", err)
	case errors.Is(err, ErrInvalidSecret):
		return NewAppError(http.StatusUnauthorized, CodeInvalidSecret, "invalid secret key", err)
	case errors.Is(err, ErrAdminExists):
		return NewAppError(http.StatusConflict, CodeAdminExists, "an admin account already exists", err)
	case errors.Is(err, ErrRateLimited), errors.Is(err, ErrUpstreamRateLimited):
		e := TooManyRequests("too many requests, please wait a moment")
		e.Err = err
		return e
	case errors.Is(err, ErrUpstreamUnavailable):
		e := ServiceUnavailable("the service is busy, please try again shortly")
		e.Err = err
		return e
	}
	return InternalError(err)
}
