package event

import (
	"reflect"

	"github.com/google/uuid"
)

// Hook is a registered (owner, priority, callback) triple for one event
// type. Hooks are immutable and compared by identity: two hooks built from
// the same arguments are still distinct.
type Hook struct {
	id        uuid.UUID
	owner     Listener
	priority  int
	eventType reflect.Type
	callback  Callback
}

// NewHook creates a hook. It panics if owner or cb is nil.
func NewHook(owner Listener, eventType reflect.Type, priority int, cb Callback) *Hook {
	if owner == nil {
		panic(ErrNilOwner)
	}
	if cb == nil {
		panic(ErrNilCallback)
	}
	return &Hook{
		id:        uuid.New(),
		owner:     owner,
		priority:  priority,
		eventType: eventType,
		callback:  cb,
	}
}

// ID returns the hook's unique identifier.
func (h *Hook) ID() string {
	return h.id.String()
}

// Owner returns the listener whose running state gates this hook.
func (h *Hook) Owner() Listener {
	return h.owner
}

// Priority returns the hook priority. Higher runs first.
func (h *Hook) Priority() int {
	return h.priority
}

// EventType returns the dispatch key the hook is registered for.
func (h *Hook) EventType() reflect.Type {
	return h.eventType
}
