package event

import (
	"reflect"
	"sort"
	"sync/atomic"
)

// Registry holds the hooks of one event type, sorted by descending
// priority with ties kept in insertion order.
//
// The hook slice is copy-on-write: every mutation builds a new slice and
// publishes it with a single atomic swap. Readers never lock and never see a
// partially updated slice; a snapshot taken before a mutation keeps its
// contents for as long as the reader holds it.
type Registry struct {
	eventType reflect.Type
	hooks     atomic.Pointer[[]*Hook]
}

// NewRegistry creates an empty registry for the given event type.
func NewRegistry(eventType reflect.Type) *Registry {
	r := &Registry{eventType: eventType}
	empty := []*Hook{}
	r.hooks.Store(&empty)
	return r
}

// EventType returns the dispatch key this registry serves.
func (r *Registry) EventType() reflect.Type {
	return r.eventType
}

// Snapshot returns the current hooks in dispatch order.
// The returned slice is shared and must not be modified.
func (r *Registry) Snapshot() []*Hook {
	return *r.hooks.Load()
}

// Len returns the number of hooks in the current snapshot.
func (r *Registry) Len() int {
	return len(r.Snapshot())
}

// AddIfAbsent inserts h after every hook with a priority greater than or
// equal to its own. If h is already present, nothing changes.
// Returns true if h was added.
func (r *Registry) AddIfAbsent(h *Hook) bool {
	return r.update(func(old []*Hook) ([]*Hook, bool) {
		start, end := priorityRun(old, h.priority)
		for i := start; i < end; i++ {
			if old[i] == h {
				return nil, false
			}
		}

		next := make([]*Hook, 0, len(old)+1)
		next = append(next, old[:end]...)
		next = append(next, h)
		next = append(next, old[end:]...)
		return next, true
	})
}

// Remove removes h. Removing a hook that is not present is a no-op.
// Returns true if h was removed.
func (r *Registry) Remove(h *Hook) bool {
	return r.update(func(old []*Hook) ([]*Hook, bool) {
		idx := indexOf(old, h)
		if idx < 0 {
			return nil, false
		}

		next := make([]*Hook, 0, len(old)-1)
		next = append(next, old[:idx]...)
		next = append(next, old[idx+1:]...)
		return next, true
	})
}

// RemoveOwner removes every hook owned by exactly owner, keeping the
// relative order of the others. Returns the number of hooks removed.
func (r *Registry) RemoveOwner(owner Listener) int {
	removed := 0
	r.update(func(old []*Hook) ([]*Hook, bool) {
		removed = 0
		next := make([]*Hook, 0, len(old))
		for _, h := range old {
			if h.owner == owner {
				removed++
				continue
			}
			next = append(next, h)
		}
		return next, removed > 0
	})
	return removed
}

// Clear removes all hooks.
func (r *Registry) Clear() {
	empty := []*Hook{}
	r.hooks.Store(&empty)
}

// update applies mutate to the current snapshot and publishes the result.
// mutate may run more than once when writers race; it must be pure.
func (r *Registry) update(mutate func(old []*Hook) ([]*Hook, bool)) bool {
	for {
		cur := r.hooks.Load()
		next, changed := mutate(*cur)
		if !changed {
			return false
		}
		if r.hooks.CompareAndSwap(cur, &next) {
			return true
		}
	}
}

// priorityRun returns the half-open range of hooks whose priority equals p.
// When no hook has priority p, start == end is the insertion point.
func priorityRun(hooks []*Hook, p int) (start, end int) {
	start = sort.Search(len(hooks), func(i int) bool { return hooks[i].priority <= p })
	end = sort.Search(len(hooks), func(i int) bool { return hooks[i].priority < p })
	return start, end
}

// indexOf binary-searches a hook with h's priority, then scans both ways
// through the equal-priority run for h itself.
func indexOf(hooks []*Hook, h *Hook) int {
	lo, hi := 0, len(hooks)-1
	mid := -1
	for lo <= hi {
		m := int(uint(lo+hi) >> 1)
		switch p := hooks[m].priority; {
		case p > h.priority:
			lo = m + 1
		case p < h.priority:
			hi = m - 1
		default:
			mid = m
			lo = hi + 1
		}
	}
	if mid < 0 {
		return -1
	}
	for i := mid; i >= 0 && hooks[i].priority == h.priority; i-- {
		if hooks[i] == h {
			return i
		}
	}
	for i := mid + 1; i < len(hooks) && hooks[i].priority == h.priority; i++ {
		if hooks[i] == h {
			return i
		}
	}
	return -1
}
