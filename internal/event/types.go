package event

// Standard hook priorities. Higher values run first; hooks with equal
// priority run in registration order.
const (
	// PriorityCritical is for hooks that must observe an event before anyone else.
	PriorityCritical = 1000

	// PriorityHigh is for hooks that feed state to ordinary features.
	PriorityHigh = 500

	// PriorityNormal is the default priority for feature hooks.
	PriorityNormal = 0

	// PriorityLow is for metrics and logging hooks that run last.
	PriorityLow = -500
)

// Callback is the function invoked for a hook. A returned error is treated
// as a handler fault: it is logged and counted, and dispatch continues.
type Callback func(Event) error

// FaultHandler is notified of every isolated handler fault. The error is a
// *HandlerError or a *PanicError.
type FaultHandler func(err error)

// Stats contains manager statistics.
type Stats struct {
	// EventsDispatched is the number of Dispatch calls that reached a registry.
	EventsDispatched uint64

	// HooksInvoked is the number of callback executions.
	HooksInvoked uint64

	// HooksSkipped is the number of hooks skipped because their owner was not running.
	HooksSkipped uint64

	// HandlerErrors is the number of callbacks that returned an error.
	HandlerErrors uint64

	// HandlerPanics is the number of callbacks that panicked.
	HandlerPanics uint64

	// NotificationsDropped is the number of completed-event notifications
	// dropped because an observer's channel was full.
	NotificationsDropped uint64
}
