package dispatch

import (
	"runtime/debug"
	"time"
)

// Result is the outcome of one callback run.
type Result struct {
	// Err is the error the callback returned. It is nil after a panic.
	Err error

	// Panicked reports a recovered panic; PanicValue and PanicStack
	// describe it.
	Panicked   bool
	PanicValue any
	PanicStack []byte

	// Duration is the wall time spent in the callback.
	Duration time.Duration
}

// OK reports whether the callback returned nil without panicking.
func (r Result) OK() bool {
	return r.Err == nil && !r.Panicked
}

// PanicHandler observes recovered panics. It receives the event being
// dispatched, the panic value and the stack at the point of panic.
type PanicHandler func(event any, value any, stack []byte)

// Executor runs callbacks one at a time with panic recovery and timing.
type Executor struct {
	onPanic PanicHandler
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithPanicHandler sets the function notified when a callback panics.
func WithPanicHandler(h PanicHandler) ExecutorOption {
	return func(e *Executor) {
		e.onPanic = h
	}
}

// NewExecutor creates an executor.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs fn on the calling goroutine. A panic in fn is recovered
// into the result and never reaches the caller; neither does a panic in
// the panic handler.
func (e *Executor) Execute(event any, fn func() error) (res Result) {
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
		r := recover()
		if r == nil {
			return
		}
		res.Panicked, res.PanicValue, res.PanicStack = true, r, debug.Stack()
		e.notify(event, r, res.PanicStack)
	}()

	res.Err = fn()
	return res
}

func (e *Executor) notify(event, value any, stack []byte) {
	if e.onPanic == nil {
		return
	}
	defer func() { _ = recover() }()
	e.onPanic(event, value, stack)
}
