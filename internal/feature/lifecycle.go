package feature

import (
	"github.com/rs/zerolog"

	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/event/dispatch"
	"github.com/dshills/featurebus/internal/event/events"
	"github.com/dshills/featurebus/internal/logger"
	"github.com/dshills/featurebus/internal/value"
)

// node is a listener that follows its derived running state with
// lifecycle calls.
type node interface {
	event.Listener
	Key() string

	// sync brings the lifecycle in line with Running.
	sync()

	// setLive forces the lifecycle on or off.
	setLive(on bool)
}

// Scoper is a listener that owns resources released when it stops running.
type Scoper interface {
	event.Listener
	Scope(release func())
}

var executor = dispatch.NewExecutor()

// featureLog returns the package logger. It is resolved on every call so
// it follows logger.Init.
func featureLog() *zerolog.Logger {
	l := logger.With("feature")
	return &l
}

// lifecycle tracks whether a node's enable callbacks were last fired and
// propagates transitions to its children.
type lifecycle struct {
	self node
	opts options

	live     bool
	syncing  bool
	resync   bool
	releases []func()
	children []event.Listener
}

// Children returns the child listeners.
func (lc *lifecycle) Children() []event.Listener {
	return append([]event.Listener(nil), lc.children...)
}

// Live reports whether the enable callbacks ran more recently than the
// disable callbacks.
func (lc *lifecycle) Live() bool {
	return lc.live
}

// Scope registers release to run when the node stops running. Releases run
// in reverse registration order. If the node is not running, release runs
// immediately.
func (lc *lifecycle) Scope(release func()) {
	if release == nil {
		return
	}
	if !lc.live {
		lc.call("release", []func(){release})
		return
	}
	lc.releases = append(lc.releases, release)
}

func (lc *lifecycle) addChild(child event.Listener) {
	lc.children = append(lc.children, child)
}

func (lc *lifecycle) sync() {
	if lc.syncing {
		lc.resync = true
		return
	}
	lc.syncing = true
	defer func() { lc.syncing = false }()

	for {
		lc.resync = false
		lc.setLive(lc.self.Running())
		if !lc.resync {
			return
		}
	}
}

func (lc *lifecycle) setLive(on bool) {
	if on == lc.live {
		return
	}
	lc.live = on

	featureLog().Debug().
		Str("feature", lc.self.Key()).
		Bool("running", on).
		Msg("feature transition")

	if on {
		lc.call("enable", lc.opts.onEnable)
		lc.notify(on)
		for _, child := range lc.children {
			if n, ok := child.(node); ok {
				n.sync()
			}
		}
		return
	}

	lc.release()
	lc.call("disable", lc.opts.onDisable)
	lc.notify(on)
	for _, child := range lc.children {
		if n, ok := child.(node); ok {
			n.setLive(false)
		}
	}
}

func (lc *lifecycle) release() {
	releases := lc.releases
	lc.releases = nil
	for i := len(releases) - 1; i >= 0; i-- {
		lc.call("release", releases[i:i+1])
	}
}

// call runs lifecycle callbacks, isolating and logging panics.
func (lc *lifecycle) call(phase string, fns []func()) {
	for _, fn := range fns {
		result := executor.Execute(lc.self, func() error {
			fn()
			return nil
		})
		if result.Panicked {
			featureLog().Error().
				Str("feature", lc.self.Key()).
				Str("phase", phase).
				Interface("panic", result.PanicValue).
				Str("stack", string(result.PanicStack)).
				Msg("lifecycle callback panicked")
		}
	}
}

func (lc *lifecycle) notify(on bool) {
	if m := event.ManagerOf(lc.self); m != nil {
		m.Dispatch(&events.FeatureToggled{Key: lc.self.Key(), Running: on})
	}
}

// adopt links child under parent in both trees: as a listener child, for
// cascading and teardown, and as a value entry when parent holds values.
// settings, when set, is used instead of a parent that holds no values.
func adopt(parent event.Listener, child node, entry value.Entry, settings *value.Group) {
	switch p := parent.(type) {
	case interface{ addChild(event.Listener) }:
		p.addChild(child)
	case *event.BasicListener:
		p.AddChild(child)
	}

	if settings != nil {
		settings.Attach(entry)
		return
	}
	if c, ok := parent.(value.Container); ok {
		c.ValueGroup().Attach(entry)
	}
}

// Reconcile re-evaluates the lifecycle of l and every node below it.
// Call it after a precondition changes.
func Reconcile(l event.Listener) {
	if l == nil {
		return
	}
	if n, ok := l.(node); ok {
		n.sync()
	}
	for _, child := range l.Children() {
		Reconcile(child)
	}
}

// Await registers fn to run on the next T event while owner runs. The hook
// is removed when owner stops running, whether or not it fired.
func Await[T event.Event](m *event.Manager, owner Scoper, priority int, fn func(T) error) *event.Hook {
	h := event.Once(m, owner, priority, fn)
	owner.Scope(func() { m.RemoveHook(h) })
	return h
}
