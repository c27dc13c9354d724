package event

import (
	"fmt"
	"reflect"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/featurebus/internal/event/dispatch"
	"github.com/dshills/featurebus/internal/logger"
)

// Manager owns one Registry per known event type and runs dispatch.
//
// The set of event types is fixed at construction; the type table is never
// written afterwards, so lookups need no locking. The Manager is also the
// root Listener: it is running until Shutdown.
type Manager struct {
	types    map[reflect.Type]*typeEntry
	executor *dispatch.Executor
	log      zerolog.Logger
	onFault  FaultHandler

	shutdown atomic.Bool

	eventsDispatched     atomic.Uint64
	hooksInvoked         atomic.Uint64
	hooksSkipped         atomic.Uint64
	handlerErrors        atomic.Uint64
	handlerPanics        atomic.Uint64
	notificationsDropped atomic.Uint64
}

type typeEntry struct {
	registry  *Registry
	observers atomic.Pointer[[]*Observer]
}

// NewManager creates a manager for the given event types. Each element is
// a prototype whose dynamic type becomes a dispatch key, e.g. (*Tick)(nil).
func NewManager(known []Event, opts ...Option) *Manager {
	var cfg managerConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Manager{
		types:    make(map[reflect.Type]*typeEntry, len(known)),
		executor: dispatch.NewExecutor(),
		onFault:  cfg.faultHandler,
	}
	if cfg.logger != nil {
		m.log = *cfg.logger
	} else {
		m.log = logger.With("event")
	}

	for _, proto := range known {
		t := TypeOf(proto)
		if t == nil {
			continue
		}
		if _, dup := m.types[t]; dup {
			continue
		}
		entry := &typeEntry{registry: NewRegistry(t)}
		none := []*Observer{}
		entry.observers.Store(&none)
		m.types[t] = entry
	}
	return m
}

// Running reports whether the manager has not been shut down.
func (m *Manager) Running() bool {
	return !m.shutdown.Load()
}

// Parent returns nil; the manager is the root of every activation tree.
func (m *Manager) Parent() Listener {
	return nil
}

// Children returns nil. Feature trees reference the manager as parent but
// are unregistered explicitly.
func (m *Manager) Children() []Listener {
	return nil
}

// Name returns the manager's listener name.
func (m *Manager) Name() string {
	return "event-manager"
}

// Shutdown tears the manager down. Dispatch becomes a no-op and every
// listener rooted at the manager stops running. Registered hooks are kept.
func (m *Manager) Shutdown() {
	m.shutdown.Store(true)
}

// IsShutdown reports whether Shutdown was called.
func (m *Manager) IsShutdown() bool {
	return m.shutdown.Load()
}

// EventTypes returns the known dispatch keys sorted by name.
func (m *Manager) EventTypes() []reflect.Type {
	out := make([]reflect.Type, 0, len(m.types))
	for t := range m.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Registry returns the registry for an event type.
func (m *Manager) Registry(t reflect.Type) (*Registry, bool) {
	entry, ok := m.types[t]
	if !ok {
		return nil, false
	}
	return entry.registry, true
}

// Register adds a hook to the registry of its event type and returns it.
// Registering for an unknown event type is a programming error and panics
// with an error wrapping ErrUnknownEventType.
func (m *Manager) Register(h *Hook) *Hook {
	entry, ok := m.types[h.eventType]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownEventType, typeName(h.eventType)))
	}
	entry.registry.AddIfAbsent(h)
	return h
}

// On registers cb for the dynamic type of proto.
func (m *Manager) On(owner Listener, proto Event, priority int, cb Callback) *Hook {
	return m.Register(NewHook(owner, TypeOf(proto), priority, cb))
}

// RemoveHook removes a single hook. Returns false if it was not registered.
func (m *Manager) RemoveHook(h *Hook) bool {
	if h == nil {
		return false
	}
	entry, ok := m.types[h.eventType]
	if !ok {
		return false
	}
	return entry.registry.Remove(h)
}

// Unregister removes every hook owned by l from every registry, then does
// the same for l's children, recursively. Returns the number of hooks
// removed. Cycles in the listener tree are not detected.
func (m *Manager) Unregister(l Listener) int {
	if l == nil {
		return 0
	}
	removed := 0
	for _, entry := range m.types {
		removed += entry.registry.RemoveOwner(l)
	}
	for _, child := range l.Children() {
		removed += m.Unregister(child)
	}
	return removed
}

// Dispatch delivers ev to the hooks registered for its type and returns
// the same event, now completed.
//
// Hooks run on the caller's goroutine in descending priority order, ties
// in registration order. A hook whose owner is not running is skipped. A
// hook that returns an error or panics is logged and isolated; the
// remaining hooks still run. Cancellation does not stop dispatch.
//
// After Shutdown, and for a nil event or an event of a type the manager
// does not know, ev is returned untouched.
func (m *Manager) Dispatch(ev Event) Event {
	if m.shutdown.Load() || isNil(ev) {
		return ev
	}
	entry, ok := m.types[TypeOf(ev)]
	if !ok {
		return ev
	}

	base := ev.eventBase()
	base.completed.Store(false)
	m.eventsDispatched.Add(1)

	for _, h := range entry.registry.Snapshot() {
		if !h.owner.Running() {
			m.hooksSkipped.Add(1)
			continue
		}
		m.invoke(h, ev)
	}

	base.completed.Store(true)
	m.notify(entry, ev)
	return ev
}

// isNil reports whether ev is nil or a typed nil pointer.
func isNil(ev Event) bool {
	if ev == nil {
		return true
	}
	v := reflect.ValueOf(ev)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// invoke runs one hook through the executor and reports any fault.
func (m *Manager) invoke(h *Hook, ev Event) {
	m.hooksInvoked.Add(1)
	result := m.executor.Execute(ev, func() error { return h.callback(ev) })

	switch {
	case result.Panicked:
		m.handlerPanics.Add(1)
		err := &PanicError{
			Event:  typeName(h.eventType),
			Owner:  Describe(h.owner),
			HookID: h.ID(),
			Value:  result.PanicValue,
			Stack:  string(result.PanicStack),
		}
		m.log.Error().
			Str("event", err.Event).
			Str("owner", err.Owner).
			Str("hook", err.HookID).
			Int("priority", h.priority).
			Interface("panic", result.PanicValue).
			Str("stack", err.Stack).
			Msg("hook panicked")
		m.fault(err)
	case result.Err != nil:
		m.handlerErrors.Add(1)
		err := &HandlerError{
			Event:  typeName(h.eventType),
			Owner:  Describe(h.owner),
			HookID: h.ID(),
			Err:    result.Err,
		}
		m.log.Error().
			Err(result.Err).
			Str("event", err.Event).
			Str("owner", err.Owner).
			Str("hook", err.HookID).
			Int("priority", h.priority).
			Dur("took", result.Duration).
			Msg("hook failed")
		m.fault(err)
	}
}

func (m *Manager) fault(err error) {
	if m.onFault == nil {
		return
	}
	defer func() { _ = recover() }()
	m.onFault(err)
}

// Stats returns current manager statistics.
func (m *Manager) Stats() Stats {
	return Stats{
		EventsDispatched:     m.eventsDispatched.Load(),
		HooksInvoked:         m.hooksInvoked.Load(),
		HooksSkipped:         m.hooksSkipped.Load(),
		HandlerErrors:        m.handlerErrors.Load(),
		HandlerPanics:        m.handlerPanics.Load(),
		NotificationsDropped: m.notificationsDropped.Load(),
	}
}
