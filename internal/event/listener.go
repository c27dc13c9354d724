package event

import (
	"fmt"
	"sync"
)

// Listener is a node of the activation tree. Its hooks only run while
// Running reports true.
//
// Running must be derived on every call: a listener is running when its
// parent is running and its own local condition holds. Implementations
// must be pointer types, since hooks are matched to owners by identity.
type Listener interface {
	// Running reports the derived, transitive activation state.
	Running() bool

	// Parent returns the enclosing listener, or nil for a root.
	Parent() Listener

	// Children returns the listeners torn down together with this one.
	Children() []Listener
}

// ManagerOf walks l's parent chain and returns the Manager at its root,
// or nil if the chain does not end at a Manager.
func ManagerOf(l Listener) *Manager {
	for l != nil {
		if m, ok := l.(*Manager); ok {
			return m
		}
		l = l.Parent()
	}
	return nil
}

// Describe returns a printable name for a listener, preferring a Key or
// Name method when the listener has one.
func Describe(l Listener) string {
	switch v := l.(type) {
	case nil:
		return "<nil>"
	case interface{ Key() string }:
		return v.Key()
	case interface{ Name() string }:
		return v.Name()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%T", l)
	}
}

// BasicListener is a listener with an optional local condition.
// It is useful for ad-hoc hook owners that are not part of a feature tree.
type BasicListener struct {
	name      string
	parent    Listener
	condition func() bool

	mu       sync.RWMutex
	children []Listener
}

// NewListener creates a listener under parent. A nil condition always holds.
// Pass the Manager as parent for a listener that runs until shutdown.
func NewListener(name string, parent Listener, condition func() bool) *BasicListener {
	return &BasicListener{
		name:      name,
		parent:    parent,
		condition: condition,
	}
}

// Name returns the listener name.
func (l *BasicListener) Name() string {
	return l.name
}

// Running reports whether the parent is running and the condition holds.
func (l *BasicListener) Running() bool {
	if l.parent != nil && !l.parent.Running() {
		return false
	}
	return l.condition == nil || l.condition()
}

// Parent returns the parent listener.
func (l *BasicListener) Parent() Listener {
	return l.parent
}

// Children returns the attached child listeners.
func (l *BasicListener) Children() []Listener {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Listener, len(l.children))
	copy(out, l.children)
	return out
}

// AddChild attaches a child listener for cascading teardown.
func (l *BasicListener) AddChild(child Listener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.children = append(l.children, child)
}
