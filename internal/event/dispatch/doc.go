// Package dispatch runs a single hook callback with fault isolation.
//
// The event manager calls one callback at a time on the dispatching
// goroutine. Each call goes through an Executor, which recovers panics,
// captures returned errors, and times the call, so one faulty callback never
// prevents the remaining callbacks for the same event from running.
//
// # Usage
//
//	exec := dispatch.NewExecutor(dispatch.WithPanicHandler(onPanic))
//	res := exec.Execute(ev, func() error { return hook(ev) })
//	if !res.OK() {
//	    report(res) // isolated; the next hook still runs
//	}
package dispatch
