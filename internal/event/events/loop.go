package events

import (
	"time"

	"github.com/dshills/featurebus/internal/event"
)

// Tick is dispatched once per simulation step by the driving loop.
type Tick struct {
	event.Base

	// Frame is the monotonically increasing tick number, starting at 1.
	Frame uint64

	// Delta is the wall time elapsed since the previous tick.
	Delta time.Duration
}

// Render is dispatched after each tick once its state is final.
type Render struct {
	event.Base

	// Frame is the tick this render belongs to.
	Frame uint64

	// Partial is the interpolation factor between the previous and current tick.
	Partial float64
}
