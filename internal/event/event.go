package event

import (
	"reflect"
	"sync/atomic"
)

// Event is a value dispatched through the Manager.
//
// Concrete events are pointer types that embed Base (or CancellableBase):
//
//	type Tick struct {
//	    event.Base
//	    Frame uint64
//	}
//
// The dispatch key of an event is its concrete dynamic type, so *Tick and
// *Render are routed to different registries.
type Event interface {
	// IsCompleted reports whether the last dispatch of this event finished.
	IsCompleted() bool

	eventBase() *Base
}

// Base carries the state every event shares. Embed it by value.
type Base struct {
	completed atomic.Bool
}

// IsCompleted reports whether the last dispatch of this event finished.
// It is false while hooks are running.
func (b *Base) IsCompleted() bool {
	return b.completed.Load()
}

func (b *Base) eventBase() *Base {
	return b
}

// Cancellable is implemented by events whose hooks may flag them as
// cancelled. The dispatcher never stops on cancellation; interpreting the
// flag is up to whoever produced the event.
type Cancellable interface {
	Event
	Cancel()
	IsCancelled() bool
}

// CancellableBase is Base plus a cancellation flag.
type CancellableBase struct {
	Base
	cancelled atomic.Bool
}

// Cancel flags the event as cancelled.
func (b *CancellableBase) Cancel() {
	b.cancelled.Store(true)
}

// IsCancelled reports whether any hook cancelled the event.
func (b *CancellableBase) IsCancelled() bool {
	return b.cancelled.Load()
}

// TypeOf returns the dispatch key of an event.
func TypeOf(ev Event) reflect.Type {
	return reflect.TypeOf(ev)
}

// TypeFor returns the dispatch key of the event type T.
func TypeFor[T Event]() reflect.Type {
	return reflect.TypeFor[T]()
}

// typeName returns a short printable name for a dispatch key.
func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
