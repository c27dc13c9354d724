package feature

import (
	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/value"
)

// RecordTypeToggle is the record type of a ToggleGroup.
const RecordTypeToggle = "toggle"

// ToggleGroup is a group of settings that can be switched on and off as a
// unit. It runs while its parent runs, its enabled flag is set and its
// precondition, if any, holds.
//
// Enabling or disabling the group cascades to its children: children whose
// own flag is set start running with it, and every running child stops
// with it. Children's flags are never changed by a cascade.
type ToggleGroup struct {
	*value.Group
	lifecycle

	parent  event.Listener
	enabled *value.Value[bool]
}

// NewToggleGroup creates a toggle group under parent. parent may be the
// event Manager for a top-level feature.
//
// If the group is running once built, its enable callbacks run before
// NewToggleGroup returns.
func NewToggleGroup(parent event.Listener, name string, enabled bool, opts ...Option) *ToggleGroup {
	t := &ToggleGroup{parent: parent}
	t.Group = value.Embed(t, name)
	t.lifecycle = lifecycle{self: t, opts: buildOptions(opts)}

	t.enabled = value.NewBool("enabled", enabled)
	t.enabled.Intercept(t.intercept)
	t.enabled.OnChange(func(_, _ bool) { t.sync() })
	t.Carry(t.enabled)

	adopt(parent, t, t, t.opts.settings)
	t.sync()
	return t
}

func (t *ToggleGroup) intercept(old, requested bool) bool {
	if t.opts.onToggled == nil || requested == old {
		return requested
	}
	return t.opts.onToggled(requested)
}

// Running reports whether the parent runs, the group is enabled and its
// precondition holds.
func (t *ToggleGroup) Running() bool {
	if t.parent != nil && !t.parent.Running() {
		return false
	}
	if !t.enabled.Get() {
		return false
	}
	return t.opts.precondition == nil || t.opts.precondition()
}

// Parent returns the parent listener.
func (t *ToggleGroup) Parent() event.Listener {
	return t.parent
}

// Enabled returns the local enabled flag.
func (t *ToggleGroup) Enabled() bool {
	return t.enabled.Get()
}

// SetEnabled writes the enabled flag and returns the flag now in effect,
// which differs from on when the write was refused.
func (t *ToggleGroup) SetEnabled(on bool) bool {
	_ = t.enabled.Set(on)
	return t.enabled.Get()
}

// Toggle flips the enabled flag and returns the flag now in effect.
func (t *ToggleGroup) Toggle() bool {
	return t.SetEnabled(!t.Enabled())
}

// EnabledSetting returns the setting backing the enabled flag.
func (t *ToggleGroup) EnabledSetting() *value.Value[bool] {
	return t.enabled
}

// RecordType returns RecordTypeToggle.
func (t *ToggleGroup) RecordType() string {
	return RecordTypeToggle
}

// String returns the key path.
func (t *ToggleGroup) String() string {
	return t.Key()
}
