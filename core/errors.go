package core

import "github.com/pkg/errors"

var (
	// ErrConflict is returned by the storage layer when a unique constraint is violated.
	ErrConflict = errors.New("record already exists")
	// ErrReference is returned by the storage layer when a referenced record does not exist.
	ErrReference = errors.New("referenced record does not exist")

	unexpectedErrorMessage = "an unexpected error occurred"
)

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
		return ""
	}
	return err.Err.Error()
}

type notFound struct {
	entity string
}

// NewNotFoundError returns the "not found" error of an entity, eg. "section not found".
func NewNotFoundError(entity string) error {
	return &notFound{entity: entity}
}

func (nf notFound) Error() string {
	return nf.entity + " not found"
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*notFound)
	return ok
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

// ErrorMessage maps err to a short message that can be shown to end users.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	cause := errors.Cause(err)
	switch origErr := cause.(type) {
	case *ValidationError:
		if origErr.Err != nil {
			return origErr.Err.Error()
		}
		if len(origErr.Fields) > 0 {
			return origErr.Fields[0].Field + ": " + origErr.Fields[0].Error
		}
		return "invalid data"
	case *notFound:
		return origErr.Error()
	}

	switch cause {
	case ErrConflict:
		return "this record already exists"
	case ErrReference:
		return "a related record does not exist"
	default:
		return unexpectedErrorMessage
	}
}
