// Package event provides the hook registry and dispatcher that drive every
// feature on each tick.
//
// # Architecture
//
//	                 ┌───────────────────────────────────────┐
//	                 │                Manager                │
//	                 │  - one Registry per known event type  │
//	                 │  - synchronous dispatch loop          │
//	                 │  - completed-event observers          │
//	                 └───────────────────────────────────────┘
//	                                    │
//	          ┌─────────────────────────┼─────────────────────────┐
//	          ▼                         ▼                         ▼
//	┌──────────────────┐      ┌──────────────────┐      ┌──────────────────┐
//	│     Registry     │      │     Listener     │      │     Executor     │
//	│  - copy-on-write │      │  - Running()     │      │  - panic/error   │
//	│  - priority sort │      │  - parent chain  │      │    isolation     │
//	└──────────────────┘      └──────────────────┘      └──────────────────┘
//
// # Event Types
//
// The set of event types is closed: a Manager is built with prototypes of
// every type it will ever dispatch, and registering a hook for any other
// type panics. The dispatch key is the concrete dynamic type of the event.
//
// # Priority Ordering
//
// Hooks run in descending priority; hooks with equal priority run in the
// order they were registered:
//
//   - Critical (1000): state every other hook depends on
//   - High (500): producers of derived state
//   - Normal (0): ordinary feature hooks, the default
//   - Low (-500): metrics and logging
//
// # Running State
//
// A hook only runs while its owning Listener is running. Running is derived
// from the parent chain on every call and is never cached, so disabling a
// feature silences every hook below it immediately.
//
// # Basic Usage
//
//	m := event.NewManager(events.All())
//
//	hook := event.Handle(m, feature, event.PriorityNormal, func(ev *events.Tick) error {
//	    return feature.step(ev.Frame)
//	})
//
//	m.Dispatch(&events.Tick{Frame: 1})
//	m.RemoveHook(hook)
//
// Derived registrations are built on the same primitives: Once, Until,
// Repeated and ComputedOn register a hook that unregisters itself from
// inside its own callback.
//
// # Thread Safety
//
// Registration, removal and dispatch may be called from any goroutine.
// Dispatch iterates an immutable snapshot, so hooks added or removed while
// a dispatch is in flight only affect later dispatches. Hooks themselves
// must manage their own thread safety.
package event
