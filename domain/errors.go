package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeInvalid      ErrorCode = "INVALID"
	ErrCodeConflict     ErrorCode = "CONFLICT"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeUnavailable  ErrorCode = "UNAVAILABLE"
	ErrCodeInternal     ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches on code and message so wrapped sentinels compare equal.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserNotFound       = NewError(ErrCodeNotFound, "user not found")
	ErrTaskNotFound       = NewError(ErrCodeNotFound, "task not found")
	ErrSkillNotFound      = NewError(ErrCodeNotFound, "skill not found")
	ErrAreaNotFound       = NewError(ErrCodeNotFound, "area not found")
	ErrProjectNotFound    = NewError(ErrCodeNotFound, "project not found")
	ErrMissionNotFound    = NewError(ErrCodeNotFound, "mission not found")
	ErrSessionNotFound    = NewError(ErrCodeNotFound, "session not found")
	ErrEmailTaken         = NewError(ErrCodeConflict, "email already registered")
	ErrAlreadyInState     = NewError(ErrCodeConflict, "completion state unchanged")
	ErrSkillNotSelectable = NewError(ErrCodeInvalid, "skill has sub-skills and cannot be assigned")
	ErrInvalidCredentials = NewError(ErrCodeUnauthorized, "invalid email or password")
	ErrTokenExpired       = NewError(ErrCodeUnauthorized, "token expired")
	ErrUnauthorized       = NewError(ErrCodeUnauthorized, "unauthorized")
	ErrInvalidPayload     = NewError(ErrCodeInvalid, "invalid payload")
	ErrSuggestionFailed   = NewError(ErrCodeUnavailable, "suggestion service unavailable")
	ErrBusy               = NewError(ErrCodeConflict, "operation already in progress")
	ErrRewardLocked       = NewError(ErrCodeConflict, "reward of a completed task cannot change")
	ErrAccountNotLinked   = NewError(ErrCodeConflict, "account signs in with a password and is not linked to this provider")
	ErrOAuthDisabled      = NewError(ErrCodeUnavailable, "oauth sign-in is not configured")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
