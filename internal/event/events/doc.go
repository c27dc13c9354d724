// Package events defines the closed set of event types dispatched through
// the event manager.
//
// Every type embeds event.Base or event.CancellableBase and is dispatched
// by pointer. All returns one prototype per type; a manager built from it
// accepts hooks for exactly these types:
//
//	m := event.NewManager(events.All())
//	m.Dispatch(&events.Tick{Frame: 42})
//
// Events are grouped by producer:
//
//   - Loop events: Tick, Render
//   - Input events: KeyInput
//   - Network events: PacketReceive, PacketSend
//   - World events: WorldChange
//   - Feature events: FeatureToggled, ModeChanged
package events

import "github.com/dshills/featurebus/internal/event"

// All returns a prototype of every event type, in a stable order.
func All() []event.Event {
	return []event.Event{
		(*Tick)(nil),
		(*Render)(nil),
		(*KeyInput)(nil),
		(*PacketReceive)(nil),
		(*PacketSend)(nil),
		(*WorldChange)(nil),
		(*FeatureToggled)(nil),
		(*ModeChanged)(nil),
	}
}
