package core

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by the service layer for a client
// mistake wraps exactly one of these, so callers branch with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrConflict   = errors.New("conflict")
	ErrNotFound   = errors.New("not found")
	ErrForeignKey = errors.New("foreign key violation")
)

// Entity names used in error messages and change events.
const (
	EntityUser     = "user"
	EntityExpense  = "expense"
	EntityCategory = "category"
)

// Error describes a client-facing failure together with the entity and the
// field it concerns.
type Error struct {
	Kind    error
	Entity  string
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Kind)
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// NotFound reports that the entity with the given id does not exist.
func NotFound(entity string, id int64) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Entity:  entity,
		Message: fmt.Sprintf("%s %d not found", entity, id),
	}
}

// Conflict reports a uniqueness collision on field.
func Conflict(entity, field string) *Error {
	msg := fmt.Sprintf("%s already exists", entity)
	if field != "" {
		msg = fmt.Sprintf("%s with this %s already exists", entity, field)
	}
	return &Error{
		Kind:    ErrConflict,
		Entity:  entity,
		Field:   field,
		Message: msg,
	}
}

// ForeignKey reports that field of entity references a row that does not exist.
func ForeignKey(entity, field string, id int64) *Error {
	return &Error{
		Kind:    ErrForeignKey,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s references missing row %d", field, id),
	}
}

// Invalid reports a malformed or out-of-range input value.
func Invalid(field, message string) *Error {
	return &Error{
		Kind:    ErrValidation,
		Field:   field,
		Message: message,
	}
}
