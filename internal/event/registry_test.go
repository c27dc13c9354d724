package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingEvent struct {
	Base
	N int
}

type pongEvent struct {
	CancellableBase
	Msg string
}

func nopCallback(Event) error { return nil }

func newTestHook(owner Listener, priority int) *Hook {
	return NewHook(owner, TypeFor[*pingEvent](), priority, nopCallback)
}

func priorities(hooks []*Hook) []int {
	out := make([]int, len(hooks))
	for i, h := range hooks {
		out[i] = h.Priority()
	}
	return out
}

func TestRegistry_SortedDescendingWithStableTies(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	owner := NewListener("owner", nil, nil)

	a := newTestHook(owner, 0)
	b := newTestHook(owner, 10)
	c := newTestHook(owner, 0)
	d := newTestHook(owner, -5)
	e := newTestHook(owner, 10)

	for _, h := range []*Hook{a, b, c, d, e} {
		require.True(t, r.AddIfAbsent(h))
	}

	assert.Equal(t, []*Hook{b, e, a, c, d}, r.Snapshot())
	assert.Equal(t, []int{10, 10, 0, 0, -5}, priorities(r.Snapshot()))
	assert.Equal(t, 5, r.Len())
}

func TestRegistry_AddIfAbsent_NoDuplicates(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	h := newTestHook(NewListener("owner", nil, nil), 3)

	assert.True(t, r.AddIfAbsent(h))
	assert.False(t, r.AddIfAbsent(h))
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_Remove(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	owner := NewListener("owner", nil, nil)

	a := newTestHook(owner, 1)
	b := newTestHook(owner, 1)
	c := newTestHook(owner, 1)
	r.AddIfAbsent(a)
	r.AddIfAbsent(b)
	r.AddIfAbsent(c)

	assert.True(t, r.Remove(b))
	assert.Equal(t, []*Hook{a, c}, r.Snapshot())

	assert.False(t, r.Remove(b), "second remove is a no-op")
	assert.False(t, r.Remove(newTestHook(owner, 7)), "unknown priority")
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_SnapshotIsStable(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	owner := NewListener("owner", nil, nil)
	a := newTestHook(owner, 0)
	r.AddIfAbsent(a)

	snap := r.Snapshot()
	r.AddIfAbsent(newTestHook(owner, 100))
	r.Remove(a)

	assert.Equal(t, []*Hook{a}, snap)
	assert.Equal(t, 1, r.Len())
	assert.NotSame(t, a, r.Snapshot()[0])
}

func TestRegistry_RemoveOwner(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	x := NewListener("x", nil, nil)
	y := NewListener("y", nil, nil)

	x1 := newTestHook(x, 5)
	y1 := newTestHook(y, 5)
	x2 := newTestHook(x, 0)
	y2 := newTestHook(y, -1)
	for _, h := range []*Hook{x1, y1, x2, y2} {
		r.AddIfAbsent(h)
	}

	assert.Equal(t, 2, r.RemoveOwner(x))
	assert.Equal(t, []*Hook{y1, y2}, r.Snapshot())
	assert.Equal(t, 0, r.RemoveOwner(x))
}

func TestRegistry_Clear(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	r.AddIfAbsent(newTestHook(NewListener("o", nil, nil), 0))
	r.Clear()
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, TypeFor[*pingEvent](), r.EventType())
}

func TestRegistry_ConcurrentAdds(t *testing.T) {
	r := NewRegistry(TypeFor[*pingEvent]())
	owner := NewListener("owner", nil, nil)

	const workers = 8
	const perWorker = 50

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				r.AddIfAbsent(newTestHook(owner, (w*perWorker+i)%7))
				_ = r.Snapshot()
			}
		}(w)
	}
	wg.Wait()

	snap := r.Snapshot()
	require.Len(t, snap, workers*perWorker)
	for i := 1; i < len(snap); i++ {
		assert.GreaterOrEqual(t, snap[i-1].Priority(), snap[i].Priority())
	}
}

func TestNewHook_PanicsOnNilArguments(t *testing.T) {
	owner := NewListener("owner", nil, nil)
	assert.PanicsWithValue(t, ErrNilOwner, func() {
		NewHook(nil, TypeFor[*pingEvent](), 0, nopCallback)
	})
	assert.PanicsWithValue(t, ErrNilCallback, func() {
		NewHook(owner, TypeFor[*pingEvent](), 0, nil)
	})

	a := newTestHook(owner, 0)
	b := newTestHook(owner, 0)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, owner, a.Owner())
}
