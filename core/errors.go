package core

import "github.com/pkg/errors"

// Error kinds. The transport layer maps each kind to a status code.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("permission denied")
	ErrInvalidState = errors.New("invalid state")
)

// AppError is a domain error of a known kind.
type AppError struct {
	Kind    error
	Message string
}

func (e *AppError) Error() string { return e.Message }

func (e *AppError) Unwrap() error { return e.Kind }

// Is reports target as matched when it is the same AppError or its kind.
func (e *AppError) Is(target error) bool { return target == e.Kind }

func NewNotFoundError(msg string) error { return &AppError{Kind: ErrNotFound, Message: msg} }

func NewForbiddenError(msg string) error { return &AppError{Kind: ErrForbidden, Message: msg} }

func NewInvalidStateError(msg string) error { return &AppError{Kind: ErrInvalidState, Message: msg} }

// KindOf returns the kind of err, or nil when err is not an AppError.
func KindOf(err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return nil
}

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err ValidationError) Error() string {
	if err.Err == nil {
		if len(err.Fields) > 0 {
			return err.Fields[0].Field + ": " + err.Fields[0].Error
		}
		return ""
	}
	return err.Err.Error()
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}
