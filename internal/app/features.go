package app

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/event/events"
	"github.com/dshills/featurebus/internal/feature"
	"github.com/dshills/featurebus/internal/value"
)

// SettingsRoot is the name of the root settings group.
const SettingsRoot = "features"

// HUDKey toggles the HUD when pressed.
const HUDKey = "F3"

// Features is the built-in feature tree:
//
//	features
//	├── speed          toggle
//	│   └── profile    mode group: vanilla | boost (alias "fast")
//	│       └── boost.factor
//	├── hud            toggle
//	│   ├── label, tint
//	│   └── clock      toggle
//	└── online         toggle, runs only while in a world
//	    └── dropPings, maxPayload
type Features struct {
	Root *value.Group

	Speed   *feature.ToggleGroup
	Profile *feature.ModeGroup
	Vanilla *feature.Mode
	Boost   *feature.Mode
	Factor  *value.Value[float64]

	HUD   *feature.ToggleGroup
	Label *value.Value[string]
	Tint  *value.Value[colorful.Color]
	Clock *feature.ToggleGroup

	Online     *feature.ToggleGroup
	DropPings  *value.Value[bool]
	MaxPayload *value.Value[int]

	log   zerolog.Logger
	world atomic.Pointer[string]

	mu       sync.Mutex
	distance float64

	clockTicks *event.Computed[uint64]
	hudFrames  atomic.Uint64
	hudLine    atomic.Pointer[string]
	received   atomic.Uint64
	dropped    atomic.Uint64
	blocked    atomic.Uint64
}

func newFeatures(m *event.Manager, log zerolog.Logger) *Features {
	f := &Features{
		Root: value.NewRoot(SettingsRoot),
		log:  log,
	}
	root := feature.WithSettings(f.Root)

	f.Speed = feature.NewToggleGroup(m, "speed", true, root)
	f.Vanilla = feature.NewMode("vanilla")
	f.Boost = feature.NewMode("boost", feature.WithAliases("fast"))
	f.Factor = f.Boost.Float("factor", 2, 1, 8)
	f.Profile = feature.NewModeGroup(f.Speed, "profile", f.Vanilla, []*feature.Mode{f.Vanilla, f.Boost})

	event.Handle(m, f.Vanilla, event.PriorityNormal, func(*events.Tick) error {
		f.advance(1)
		return nil
	})
	event.Handle(m, f.Boost, event.PriorityNormal, func(*events.Tick) error {
		f.advance(f.Factor.Get())
		return nil
	})

	f.HUD = feature.NewToggleGroup(m, "hud", true, root)
	f.Label = f.HUD.Text("label", "hud", 32)
	f.Tint = f.HUD.Color("tint", colorful.Color{R: 1, G: 1, B: 1})
	f.Clock = feature.NewToggleGroup(f.HUD, "clock", true)

	f.clockTicks = event.ComputedOn(m, f.Clock, event.PriorityHigh, uint64(0),
		func(n uint64, _ *events.Tick) uint64 { return n + 1 })

	event.Handle(m, f.HUD, event.PriorityLow, func(ev *events.Render) error {
		line := fmt.Sprintf("%s %s frame=%d distance=%.1f", f.Label.Get(), f.Tint.Get().Hex(), ev.Frame, f.Distance())
		if f.Clock.Running() {
			line += fmt.Sprintf(" clock=%d", f.clockTicks.Value())
		}
		f.hudLine.Store(&line)
		f.hudFrames.Add(1)
		return nil
	})
	event.Handle(m, m, event.PriorityHigh, func(ev *events.KeyInput) error {
		if ev.Key != HUDKey || ev.Action != events.KeyPress {
			return nil
		}
		f.HUD.Toggle()
		ev.Cancel()
		return nil
	})

	f.Online = feature.NewToggleGroup(m, "online", true, root, feature.WithPrecondition(f.InWorld))
	f.DropPings = f.Online.Bool("dropPings", false)
	f.MaxPayload = f.Online.Int("maxPayload", 1024, 0, 1<<16)

	event.Handle(m, f.Online, event.PriorityNormal, func(ev *events.PacketReceive) error {
		f.received.Add(1)
		if ev.Kind == "ping" && f.DropPings.Get() {
			ev.Cancel()
			f.dropped.Add(1)
		}
		return nil
	})
	event.Handle(m, f.Online, event.PriorityNormal, func(ev *events.PacketSend) error {
		if len(ev.Payload) > f.MaxPayload.Get() {
			ev.Cancel()
			f.blocked.Add(1)
		}
		return nil
	})

	event.Handle(m, m, event.PriorityCritical, func(ev *events.WorldChange) error {
		world := ev.World
		f.world.Store(&world)
		for _, l := range f.Top() {
			feature.Reconcile(l)
		}
		return nil
	})
	event.Handle(m, m, event.PriorityLow, func(ev *events.ModeChanged) error {
		f.log.Info().
			Str("group", ev.Key).
			Str("from", ev.From).
			Str("to", ev.To).
			Msg("mode changed")
		return nil
	})

	return f
}

// Top returns the top-level features.
func (f *Features) Top() []event.Listener {
	return []event.Listener{f.Speed, f.HUD, f.Online}
}

// InWorld reports whether the session is in a world.
func (f *Features) InWorld() bool {
	return f.World() != ""
}

// World returns the current world, or the empty string.
func (f *Features) World() string {
	if w := f.world.Load(); w != nil {
		return *w
	}
	return ""
}

func (f *Features) advance(d float64) {
	f.mu.Lock()
	f.distance += d
	f.mu.Unlock()
}

// Distance returns the distance covered by the speed feature.
func (f *Features) Distance() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.distance
}

// ClockTicks returns the ticks counted while the clock ran.
func (f *Features) ClockTicks() uint64 {
	return f.clockTicks.Value()
}

// HUDFrames returns the number of frames the HUD rendered.
func (f *Features) HUDFrames() uint64 {
	return f.hudFrames.Load()
}

// HUDLine returns the last rendered HUD line.
func (f *Features) HUDLine() string {
	if l := f.hudLine.Load(); l != nil {
		return *l
	}
	return ""
}

// PacketStats returns the packets received, dropped on receive and
// blocked on send while online.
func (f *Features) PacketStats() (received, dropped, blocked uint64) {
	return f.received.Load(), f.dropped.Load(), f.blocked.Load()
}

// Toggle returns the toggle group at path, relative to the root.
func (f *Features) Toggle(path string) (*feature.ToggleGroup, error) {
	e, err := f.Root.Find(path)
	if err != nil {
		return nil, err
	}
	t, ok := e.(*feature.ToggleGroup)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotToggle, e.Key())
	}
	return t, nil
}

// ModeGroup returns the mode group at path, relative to the root.
func (f *Features) ModeGroup(path string) (*feature.ModeGroup, error) {
	e, err := f.Root.Find(path)
	if err != nil {
		return nil, err
	}
	g, ok := e.(*feature.ModeGroup)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotModeGroup, e.Key())
	}
	return g, nil
}

// ModeGroups returns every mode group in the tree in pre-order.
func (f *Features) ModeGroups() []*feature.ModeGroup {
	var out []*feature.ModeGroup
	for _, c := range f.Root.CollectGroupsRecursively() {
		if g, ok := c.(*feature.ModeGroup); ok {
			out = append(out, g)
		}
	}
	return out
}
