// Package feature provides toggleable feature groups and mutually
// exclusive modes, built on the event listener tree and the value tree.
//
// A ToggleGroup is a value group with an enabled flag. It is an event
// listener whose hooks run only while it is running: its parent runs, its
// flag is set and its optional precondition holds. A ModeGroup owns a fixed
// list of Modes, exactly one of which is active; a Mode runs only while its
// group runs and it is the active one.
//
//	speed := feature.NewToggleGroup(manager, "speed", true,
//	    feature.WithOnEnable(func() { log.Print("speed on") }),
//	)
//	style := feature.NewModeGroup(speed, "style", vanilla, []*feature.Mode{vanilla, boost})
//	_ = style.SetByName("boost")
//
// # Lifecycle
//
// Every node remembers whether its enable callbacks ran more recently than
// its disable callbacks. Whenever a node's running state changes, for any
// reason, it fires exactly one enable or disable, then cascades to its
// children: on enable each child re-derives its own state, on disable every
// live child is switched off. Local flags are never rewritten by a cascade,
// so a child that was disabled before its parent went down stays disabled
// when the parent comes back, and a child that stayed enabled is enabled
// again.
//
// Each transition dispatches events.FeatureToggled; each mode switch
// dispatches events.ModeChanged.
//
// # Thread Safety
//
// Activation state is not synchronized. Enable flags and active modes must
// be written from the goroutine that drives dispatch.
package feature
