package events

import "github.com/dshills/featurebus/internal/event"

// FeatureToggled is dispatched when a toggleable feature starts or stops
// running. It fires once per real transition, including transitions caused
// by an ancestor.
type FeatureToggled struct {
	event.Base

	// Key is the feature's setting key path.
	Key string

	// Running is the new running state.
	Running bool
}

// ModeChanged is dispatched when a mode group switches its active mode.
type ModeChanged struct {
	event.Base

	// Key is the mode group's setting key path.
	Key string

	// From is the previously active mode name.
	From string

	// To is the newly active mode name.
	To string
}
