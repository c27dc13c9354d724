package feature

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by feature operations.
var (
	// ErrUnknownMode indicates a mode name that matches no mode of a group.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrModeNotInGroup is the panic value when a mode group is built with
	// an initial mode that is not in its list, or asked to activate a mode
	// it does not own.
	ErrModeNotInGroup = errors.New("mode is not in group")

	// ErrNoModes is the panic value when a mode group is built without modes.
	ErrNoModes = errors.New("mode group has no modes")

	// ErrDuplicateMode is the panic value when two modes of a group share a name or alias.
	ErrDuplicateMode = errors.New("duplicate mode name")

	// ErrModeBound is the panic value when a mode is added to a second group.
	ErrModeBound = errors.New("mode already belongs to a group")
)

// UnknownModeError is returned by SetByName for a name no mode answers to.
type UnknownModeError struct {
	// Group is the key path of the mode group.
	Group string

	// Name is the requested mode name.
	Name string

	// Valid lists the canonical mode names, in declaration order.
	Valid []string
}

// Error implements the error interface.
func (e *UnknownModeError) Error() string {
	return fmt.Sprintf("unknown mode %q for %s (valid: %s)", e.Name, e.Group, strings.Join(e.Valid, ", "))
}

// Is allows errors.Is to match UnknownModeError with ErrUnknownMode.
func (e *UnknownModeError) Is(target error) bool {
	return target == ErrUnknownMode
}
