package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event package.
var (
	// ErrUnknownEventType is the panic value when registering for an event
	// type the manager was not built with.
	ErrUnknownEventType = errors.New("unknown event type")

	// ErrNilCallback is the panic value when a hook is created without a callback.
	ErrNilCallback = errors.New("hook callback cannot be nil")

	// ErrNilOwner is the panic value when a hook is created without an owner.
	ErrNilOwner = errors.New("hook owner cannot be nil")

	// ErrHandlerPanic matches every *PanicError through errors.Is.
	ErrHandlerPanic = errors.New("handler panicked")
)

// HandlerError wraps an error returned by a hook callback.
type HandlerError struct {
	// Event is the name of the event type being dispatched.
	Event string

	// Owner describes the listener that owns the hook.
	Owner string

	// HookID identifies the failing hook.
	HookID string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("hook %s of %s failed on %s: %v", e.HookID, e.Owner, e.Event, e.Err)
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a panic recovered from a hook callback.
type PanicError struct {
	// Event is the name of the event type being dispatched.
	Event string

	// Owner describes the listener that owns the hook.
	Owner string

	// HookID identifies the failing hook.
	HookID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("hook %s of %s panicked on %s: %v", e.HookID, e.Owner, e.Event, e.Value)
}

// Is allows errors.Is to match PanicError with ErrHandlerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrHandlerPanic
}
