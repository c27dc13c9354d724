package event

import (
	"bytes"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unknownEvent struct {
	Base
}

func newTestManager(opts ...Option) *Manager {
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return NewManager([]Event{(*pingEvent)(nil), (*pongEvent)(nil)}, opts...)
}

// toggleListener is a listener whose local condition can be flipped.
type toggleListener struct {
	parent   Listener
	on       atomic.Bool
	children []Listener
}

func newToggle(parent Listener, on bool) *toggleListener {
	l := &toggleListener{parent: parent}
	l.on.Store(on)
	return l
}

func (l *toggleListener) Running() bool {
	return l.on.Load() && (l.parent == nil || l.parent.Running())
}
func (l *toggleListener) Parent() Listener     { return l.parent }
func (l *toggleListener) Children() []Listener { return l.children }

func TestManager_DispatchOrder(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var order []string
	record := func(name string) Callback {
		return func(Event) error {
			order = append(order, name)
			return nil
		}
	}

	m.On(owner, (*pingEvent)(nil), 0, record("A"))
	m.On(owner, (*pingEvent)(nil), 10, record("B"))
	m.On(owner, (*pingEvent)(nil), 0, record("C"))

	ev := &pingEvent{}
	out := m.Dispatch(ev)

	assert.Same(t, ev, out)
	assert.Equal(t, []string{"B", "A", "C"}, order)
	assert.True(t, ev.IsCompleted())
}

func TestManager_CompletedFalseDuringDispatch(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var seen []bool
	Handle(m, owner, PriorityNormal, func(ev *pingEvent) error {
		seen = append(seen, ev.IsCompleted())
		return nil
	})

	ev := &pingEvent{}
	m.Dispatch(ev)
	m.Dispatch(ev)

	assert.Equal(t, []bool{false, false}, seen)
	assert.True(t, ev.IsCompleted())
}

func TestManager_SkipsNonRunningOwners(t *testing.T) {
	m := newTestManager()
	parent := newToggle(m, true)
	child := newToggle(parent, true)

	var calls int
	Handle(m, child, PriorityNormal, func(*pingEvent) error {
		calls++
		return nil
	})

	m.Dispatch(&pingEvent{})
	parent.on.Store(false)
	m.Dispatch(&pingEvent{})
	parent.on.Store(true)
	m.Dispatch(&pingEvent{})

	assert.Equal(t, 2, calls)
	assert.Equal(t, uint64(1), m.Stats().HooksSkipped)
}

func TestManager_FaultIsolation(t *testing.T) {
	var faults []error
	m := newTestManager(WithFaultHandler(func(err error) {
		faults = append(faults, err)
	}))
	owner := NewListener("owner", m, nil)

	boom := errors.New("boom")
	var reached []string

	Handle(m, owner, 30, func(*pingEvent) error {
		reached = append(reached, "first")
		return boom
	})
	Handle(m, owner, 20, func(*pingEvent) error {
		reached = append(reached, "second")
		panic("kaboom")
	})
	Handle(m, owner, 10, func(*pingEvent) error {
		reached = append(reached, "third")
		return nil
	})

	ev := &pingEvent{}
	m.Dispatch(ev)

	assert.Equal(t, []string{"first", "second", "third"}, reached)
	assert.True(t, ev.IsCompleted())
	require.Len(t, faults, 2)

	var herr *HandlerError
	require.ErrorAs(t, faults[0], &herr)
	assert.ErrorIs(t, faults[0], boom)
	assert.Equal(t, "owner", herr.Owner)
	assert.Equal(t, "event.pingEvent", herr.Event)

	var perr *PanicError
	require.ErrorAs(t, faults[1], &perr)
	assert.ErrorIs(t, faults[1], ErrHandlerPanic)
	assert.Equal(t, "kaboom", perr.Value)
	assert.NotEmpty(t, perr.Stack)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.HandlerErrors)
	assert.Equal(t, uint64(1), stats.HandlerPanics)
	assert.Equal(t, uint64(3), stats.HooksInvoked)
}

func TestManager_FaultHandlerPanicIsContained(t *testing.T) {
	m := newTestManager(WithFaultHandler(func(error) { panic("handler") }))
	owner := NewListener("owner", m, nil)

	var after bool
	Handle(m, owner, 1, func(*pingEvent) error { return errors.New("x") })
	Handle(m, owner, 0, func(*pingEvent) error {
		after = true
		return nil
	})

	assert.NotPanics(t, func() { m.Dispatch(&pingEvent{}) })
	assert.True(t, after)
}

func TestManager_LogsFaults(t *testing.T) {
	var buf bytes.Buffer
	m := NewManager([]Event{(*pingEvent)(nil)}, WithLogger(zerolog.New(&buf)))
	owner := NewListener("logger-owner", m, nil)

	Handle(m, owner, 0, func(*pingEvent) error { return errors.New("bad input") })
	m.Dispatch(&pingEvent{})

	out := buf.String()
	assert.Contains(t, out, `"level":"error"`)
	assert.Contains(t, out, "bad input")
	assert.Contains(t, out, "logger-owner")
}

func TestManager_UnknownEventType(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	assert.PanicsWithError(t, "unknown event type: event.unknownEvent", func() {
		m.On(owner, (*unknownEvent)(nil), 0, nopCallback)
	})

	ev := &unknownEvent{}
	assert.Same(t, ev, m.Dispatch(ev))
	assert.False(t, ev.IsCompleted())
	assert.Equal(t, uint64(0), m.Stats().EventsDispatched)
}

func TestManager_DispatchLeavesUnknownEventUntouched(t *testing.T) {
	m := newTestManager()

	ev := &unknownEvent{}
	ev.completed.Store(true)
	m.Dispatch(ev)
	assert.True(t, ev.IsCompleted())
}

func TestManager_DispatchTypedNil(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)
	called := false
	m.On(owner, (*pingEvent)(nil), 0, func(Event) error {
		called = true
		return nil
	})

	var ev *pingEvent
	assert.NotPanics(t, func() {
		assert.Nil(t, m.Dispatch(ev))
	})
	assert.False(t, called)
	assert.Equal(t, uint64(0), m.Stats().EventsDispatched)
}

func TestManager_Shutdown(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var calls int
	Handle(m, owner, 0, func(*pingEvent) error {
		calls++
		return nil
	})

	m.Dispatch(&pingEvent{})
	assert.True(t, owner.Running())

	m.Shutdown()
	assert.True(t, m.IsShutdown())
	assert.False(t, owner.Running())

	ev := &pingEvent{}
	m.Dispatch(ev)
	assert.Equal(t, 1, calls)
	assert.False(t, ev.IsCompleted())
}

func TestManager_EventTypesAreRoutedSeparately(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var pings, pongs int
	Handle(m, owner, 0, func(*pingEvent) error { pings++; return nil })
	Handle(m, owner, 0, func(ev *pongEvent) error {
		pongs++
		ev.Cancel()
		return nil
	})

	m.Dispatch(&pingEvent{})
	pong := m.Dispatch(&pongEvent{Msg: "hi"}).(*pongEvent)

	assert.Equal(t, 1, pings)
	assert.Equal(t, 1, pongs)
	assert.True(t, pong.IsCancelled())
	assert.Len(t, m.EventTypes(), 2)
}

func TestManager_Unregister(t *testing.T) {
	m := newTestManager()
	root := NewListener("root", m, nil)
	child := NewListener("child", root, nil)
	grandchild := NewListener("grandchild", child, nil)
	root.AddChild(child)
	child.AddChild(grandchild)
	other := NewListener("other", m, nil)

	var calls []string
	for _, l := range []*BasicListener{root, child, grandchild, other} {
		name := l.Name()
		Handle(m, l, 0, func(*pingEvent) error { calls = append(calls, name); return nil })
		Handle(m, l, 0, func(*pongEvent) error { return nil })
	}

	assert.Equal(t, 6, m.Unregister(root))
	m.Dispatch(&pingEvent{})
	assert.Equal(t, []string{"other"}, calls)
	assert.Equal(t, 0, m.Unregister(root))
	assert.Equal(t, 0, m.Unregister(nil))
}

func TestManager_RemoveHook(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	h := m.On(owner, (*pingEvent)(nil), 0, nopCallback)
	assert.True(t, m.RemoveHook(h))
	assert.False(t, m.RemoveHook(h))
	assert.False(t, m.RemoveHook(nil))
}

func TestManager_HookRegisteredDuringDispatchRunsNextTime(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var late int
	var once sync.Once
	Handle(m, owner, 0, func(*pingEvent) error {
		once.Do(func() {
			Handle(m, owner, 100, func(*pingEvent) error { late++; return nil })
		})
		return nil
	})

	m.Dispatch(&pingEvent{})
	assert.Equal(t, 0, late)
	m.Dispatch(&pingEvent{})
	assert.Equal(t, 1, late)
}

func TestManager_Observe(t *testing.T) {
	m := newTestManager()

	obs := Observe[*pingEvent](m, 1)
	ev := &pingEvent{N: 7}
	m.Dispatch(ev)

	got := <-obs.C
	assert.Same(t, ev, got)
	assert.True(t, got.IsCompleted())

	m.Dispatch(&pingEvent{})
	m.Dispatch(&pingEvent{})
	assert.Equal(t, uint64(1), m.Stats().NotificationsDropped)

	obs.Close()
	obs.Close()
	_, open := <-obs.C
	assert.True(t, open, "buffered event is still readable")
	_, open = <-obs.C
	assert.False(t, open)

	assert.NotPanics(t, func() { m.Dispatch(&pingEvent{}) })
	assert.Panics(t, func() { m.ObserveCompleted((*unknownEvent)(nil), 1) })
}

func TestManager_ConcurrentDispatchAndRegister(t *testing.T) {
	m := newTestManager()
	owner := NewListener("owner", m, nil)

	var total atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				m.Dispatch(&pingEvent{N: j})
			}
		}()
		go func(p int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				h := Handle(m, owner, p, func(*pingEvent) error {
					total.Add(1)
					return nil
				})
				if j%2 == 0 {
					m.RemoveHook(h)
				}
			}
		}(i)
	}
	wg.Wait()

	reg, ok := m.Registry(TypeFor[*pingEvent]())
	require.True(t, ok)
	assert.Equal(t, 4*12, reg.Len())
	assert.Equal(t, uint64(400), m.Stats().EventsDispatched)
}

func TestListener_Describe(t *testing.T) {
	m := newTestManager()
	assert.Equal(t, "event-manager", Describe(m))
	assert.Equal(t, "named", Describe(NewListener("named", m, nil)))
	assert.Equal(t, "<nil>", Describe(nil))
	assert.Equal(t, "*event.toggleListener", Describe(newToggle(nil, true)))
}

func TestListener_ManagerOf(t *testing.T) {
	m := newTestManager()
	child := NewListener("child", NewListener("parent", m, nil), nil)

	assert.Same(t, m, ManagerOf(child))
	assert.Nil(t, ManagerOf(NewListener("orphan", nil, nil)))
}

func TestBasicListener_Condition(t *testing.T) {
	m := newTestManager()
	var ok atomic.Bool
	l := NewListener("cond", m, ok.Load)

	assert.False(t, l.Running())
	ok.Store(true)
	assert.True(t, l.Running())
	m.Shutdown()
	assert.False(t, l.Running())
}
