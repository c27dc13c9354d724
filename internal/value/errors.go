package value

import (
	"errors"
	"fmt"
)

// Errors returned by value tree operations.
var (
	// ErrWrongParent indicates a detach from a group that is not the child's parent.
	ErrWrongParent = errors.New("not a child of this group")

	// ErrRootAttach is the panic value when a root group is attached as a child.
	ErrRootAttach = errors.New("cannot attach a root group")

	// ErrOutOfRange indicates a numeric value outside the setting's bounds.
	ErrOutOfRange = errors.New("value out of range")

	// ErrTooLong indicates text longer than the setting's maximum length.
	ErrTooLong = errors.New("text too long")

	// ErrInvalidOption indicates a choice that is not one of the options.
	ErrInvalidOption = errors.New("not a valid option")

	// ErrTypeMismatch indicates a value that cannot be converted to the setting's type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrUnknownType indicates a record whose type names no setting kind or container.
	ErrUnknownType = errors.New("unknown record type")

	// ErrInvalidRecord indicates a record that is missing required fields.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrNotFound indicates a key path that does not resolve to an entry.
	ErrNotFound = errors.New("entry not found")
)

// ValidationError describes a value rejected by a setting.
type ValidationError struct {
	// Key is the key path of the setting.
	Key string

	// Value is the rejected value.
	Value any

	// Err is the underlying reason, one of the sentinel errors above.
	Err error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value %v for %s: %v", e.Value, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}
