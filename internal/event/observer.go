package event

import (
	"fmt"
	"reflect"
	"sync"
)

// Observer receives events after their dispatch completed.
//
// Delivery is best effort: when C is full the notification is dropped and
// counted in Stats.NotificationsDropped; dispatch never waits on observers.
type Observer struct {
	// C delivers completed events. It is closed by Close.
	C <-chan Event

	ch     chan Event
	entry  *typeEntry
	mu     sync.Mutex
	closed bool
}

// ObserveCompleted subscribes to completed events of proto's dynamic type.
// buffer is the channel capacity; values below 1 are raised to 1.
// Observing an unknown event type panics with ErrUnknownEventType.
func (m *Manager) ObserveCompleted(proto Event, buffer int) *Observer {
	return m.observe(TypeOf(proto), buffer)
}

// Observe subscribes to completed events of type T.
func Observe[T Event](m *Manager, buffer int) *Observer {
	return m.observe(TypeFor[T](), buffer)
}

func (m *Manager) observe(t reflect.Type, buffer int) *Observer {
	entry, ok := m.types[t]
	if !ok {
		panic(fmt.Errorf("%w: %s", ErrUnknownEventType, typeName(t)))
	}
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	o := &Observer{C: ch, ch: ch, entry: entry}

	for {
		cur := entry.observers.Load()
		next := make([]*Observer, 0, len(*cur)+1)
		next = append(next, *cur...)
		next = append(next, o)
		if entry.observers.CompareAndSwap(cur, &next) {
			return o
		}
	}
}

// Close detaches the observer and closes C. Close is idempotent.
func (o *Observer) Close() {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.closed = true
	close(o.ch)
	o.mu.Unlock()

	for {
		cur := o.entry.observers.Load()
		next := make([]*Observer, 0, len(*cur))
		for _, other := range *cur {
			if other != o {
				next = append(next, other)
			}
		}
		if o.entry.observers.CompareAndSwap(cur, &next) {
			return
		}
	}
}

// offer performs a non-blocking send. Returns false if the event was dropped.
func (o *Observer) offer(ev Event) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return true
	}
	select {
	case o.ch <- ev:
		return true
	default:
		return false
	}
}

func (m *Manager) notify(entry *typeEntry, ev Event) {
	for _, o := range *entry.observers.Load() {
		if !o.offer(ev) {
			m.notificationsDropped.Add(1)
		}
	}
}
