package domain

import "errors"

// Error kinds. Every error surfaced by the core wraps exactly one of them so
// the transport layer can map it to a status code with errors.Is.
var (
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrInternal     = errors.New("internal server error")
)

// Error is a client-safe error message tagged with its kind.
type Error struct {
	Kind    error
	Message string
}

func NewError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrEmailInUse           = NewError(ErrConflict, "Email already in use")
	ErrInvalidCredentials   = NewError(ErrUnauthorized, "Invalid credentials")
	ErrMissingRefreshToken  = NewError(ErrUnauthorized, "Missing refresh token")
	ErrInvalidRefreshToken  = NewError(ErrUnauthorized, "Invalid refresh token")
	ErrRefreshSecretMissing = NewError(ErrUnauthorized, "Server misconfigured: missing refresh secret")
	ErrTokenSecretsMissing  = NewError(ErrUnauthorized, "Server misconfigured: missing JWT secrets")
	ErrTokenTTLInvalid      = NewError(ErrUnauthorized, "Server misconfigured: invalid token TTL")
	ErrInvalidToken         = NewError(ErrUnauthorized, "Invalid token")
	ErrMissingAccessToken   = NewError(ErrUnauthorized, "Missing access token")

	ErrTaskNotFound      = NewError(ErrNotFound, "Task not found")
	ErrUserNotFound      = NewError(ErrNotFound, "User not found")
	ErrInvalidTaskID     = NewError(ErrInvalidInput, "Invalid task id")
	ErrInvalidUserID     = NewError(ErrInvalidInput, "Invalid user id")
	ErrInvalidTaskStatus = NewError(ErrInvalidInput, "Invalid task status")
	ErrEmptyTaskTitle    = NewError(ErrInvalidInput, "title should not be empty")
)
