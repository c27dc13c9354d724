package events

import "github.com/dshills/featurebus/internal/event"

// WorldChange is dispatched when the session joins or leaves a world.
// Features whose liveness depends on a world reconcile on this event.
type WorldChange struct {
	event.Base

	// World is the new world name, empty when leaving.
	World string
}

// Joined reports whether the change entered a world.
func (w *WorldChange) Joined() bool {
	return w.World != ""
}
