package event

import (
	"sync"
	"sync/atomic"
)

// Handle registers fn for events of type T on behalf of owner.
//
//	event.Handle(m, feature, event.PriorityNormal, func(ev *events.Tick) error {
//	    return feature.step(ev.Frame)
//	})
func Handle[T Event](m *Manager, owner Listener, priority int, fn func(T) error) *Hook {
	return m.Register(NewHook(owner, TypeFor[T](), priority, func(ev Event) error {
		return fn(ev.(T))
	}))
}

// Once registers fn to run for the next T event only. The hook removes
// itself before fn runs, so fn may register follow-up hooks freely.
func Once[T Event](m *Manager, owner Listener, priority int, fn func(T) error) *Hook {
	var fired atomic.Bool
	var h *Hook
	h = NewHook(owner, TypeFor[T](), priority, func(ev Event) error {
		if !fired.CompareAndSwap(false, true) {
			return nil
		}
		m.RemoveHook(h)
		return fn(ev.(T))
	})
	return m.Register(h)
}

// Until registers fn to run for every T event until it returns true.
// The event for which fn returns true is the last one it sees.
func Until[T Event](m *Manager, owner Listener, priority int, fn func(T) bool) *Hook {
	var done atomic.Bool
	var h *Hook
	h = NewHook(owner, TypeFor[T](), priority, func(ev Event) error {
		if done.Load() {
			return nil
		}
		if fn(ev.(T)) && done.CompareAndSwap(false, true) {
			m.RemoveHook(h)
		}
		return nil
	})
	return m.Register(h)
}

// Repeated registers fn to run for the next times T events. It returns nil
// and registers nothing when times is not positive.
func Repeated[T Event](m *Manager, owner Listener, priority int, times int, fn func(T) error) *Hook {
	if times <= 0 {
		return nil
	}
	var calls atomic.Int64
	limit := int64(times)
	var h *Hook
	h = NewHook(owner, TypeFor[T](), priority, func(ev Event) error {
		n := calls.Add(1)
		if n > limit {
			return nil
		}
		if n == limit {
			m.RemoveHook(h)
		}
		return fn(ev.(T))
	})
	return m.Register(h)
}

// Computed is a value accumulated across occurrences of an event.
type Computed[A any] struct {
	hook *Hook

	mu    sync.RWMutex
	value A
}

// Value returns the current accumulated value.
func (c *Computed[A]) Value() A {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Hook returns the hook feeding the accumulator.
func (c *Computed[A]) Hook() *Hook {
	return c.hook
}

// ComputedOn folds every T event into a value starting at initial.
// The accumulator only sees events while owner is running.
func ComputedOn[T Event, A any](m *Manager, owner Listener, priority int, initial A, acc func(A, T) A) *Computed[A] {
	c := &Computed[A]{value: initial}
	c.hook = Handle(m, owner, priority, func(ev T) error {
		c.mu.Lock()
		c.value = acc(c.value, ev)
		c.mu.Unlock()
		return nil
	})
	return c
}
