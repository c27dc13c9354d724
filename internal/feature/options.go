package feature

import "github.com/dshills/featurebus/internal/value"

// Option configures a ToggleGroup or a Mode.
type Option func(*options)

type options struct {
	onEnable     []func()
	onDisable    []func()
	onToggled    func(requested bool) bool
	precondition func() bool
	aliases      []string
	settings     *value.Group
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithOnEnable adds a function called each time the node starts running.
func WithOnEnable(fn func()) Option {
	return func(o *options) {
		if fn != nil {
			o.onEnable = append(o.onEnable, fn)
		}
	}
}

// WithOnDisable adds a function called each time the node stops running.
func WithOnDisable(fn func()) Option {
	return func(o *options) {
		if fn != nil {
			o.onDisable = append(o.onDisable, fn)
		}
	}
}

// WithOnToggled sets the function consulted whenever the enabled flag of
// a ToggleGroup changes value, including writes made from the group's own
// lifecycle callbacks and from an import. It receives the requested flag
// and returns the flag to store; returning false refuses an enable.
// Cascades never write the flag, so they never consult it.
func WithOnToggled(fn func(requested bool) bool) Option {
	return func(o *options) {
		o.onToggled = fn
	}
}

// WithPrecondition adds a liveness condition to a ToggleGroup. While it
// does not hold, the group is not running whatever its enabled flag says.
// Call Reconcile after the condition changes.
func WithPrecondition(fn func() bool) Option {
	return func(o *options) {
		o.precondition = fn
	}
}

// WithAliases sets alternative names a Mode answers to in SetByName.
func WithAliases(aliases ...string) Option {
	return func(o *options) {
		o.aliases = append(o.aliases, aliases...)
	}
}

// WithSettings attaches the node to g before its initial lifecycle
// evaluation. Nodes created under a feature parent are attached to the
// parent automatically.
func WithSettings(g *value.Group) Option {
	return func(o *options) {
		o.settings = g
	}
}
