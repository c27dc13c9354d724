package events

import "github.com/dshills/featurebus/internal/event"

// PacketReceive is dispatched for each decoded inbound packet.
// Cancelling it drops the packet before the application handles it.
type PacketReceive struct {
	event.CancellableBase

	// Kind is the packet type name assigned by the decoder.
	Kind string

	// Payload is the raw packet body.
	Payload []byte
}

// PacketSend is dispatched before an outbound packet is written.
// Cancelling it suppresses the write.
type PacketSend struct {
	event.CancellableBase

	// Kind is the packet type name.
	Kind string

	// Payload is the raw packet body.
	Payload []byte
}
