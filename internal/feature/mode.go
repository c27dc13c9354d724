package feature

import (
	"fmt"
	"strings"

	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/event/events"
	"github.com/dshills/featurebus/internal/logger"
	"github.com/dshills/featurebus/internal/value"
)

// RecordTypeMode is the record type of a ModeGroup.
const RecordTypeMode = "mode"

// Mode is one of the mutually exclusive variants of a ModeGroup. A mode
// runs while its group runs and it is the group's active mode. A mode may
// hold settings and child features of its own.
type Mode struct {
	*value.Group
	lifecycle

	group *ModeGroup
}

// NewMode creates a mode to be passed to NewModeGroup.
func NewMode(name string, opts ...Option) *Mode {
	m := &Mode{}
	m.Group = value.Embed(m, name)
	m.lifecycle = lifecycle{self: m, opts: buildOptions(opts)}
	return m
}

// Running reports whether the group runs and m is its active mode.
func (m *Mode) Running() bool {
	return m.group != nil && m.group.active == m && m.group.Running()
}

// Parent returns the owning group, or nil before the mode is added to one.
func (m *Mode) Parent() event.Listener {
	if m.group == nil {
		return nil
	}
	return m.group
}

// Aliases returns the alternative names of the mode.
func (m *Mode) Aliases() []string {
	return append([]string(nil), m.opts.aliases...)
}

// IsActive reports whether m is its group's active mode.
func (m *Mode) IsActive() bool {
	return m.group != nil && m.group.active == m
}

// String returns the key path.
func (m *Mode) String() string {
	return m.Key()
}

func (m *Mode) answersTo(name string) bool {
	if strings.EqualFold(m.Name(), name) {
		return true
	}
	for _, alias := range m.opts.aliases {
		if strings.EqualFold(alias, name) {
			return true
		}
	}
	return false
}

// ModeGroup owns a fixed, ordered set of modes of which exactly one is
// active at any time.
//
// The active mode is also exposed as a choice setting named "mode", so
// importing a record or restoring defaults switches modes through the same
// path as SetByName.
type ModeGroup struct {
	*value.Group

	parent   event.Listener
	modes    []*Mode
	active   *Mode
	def      *Mode
	choice   *value.Value[string]
	children []event.Listener // features nested under the group itself
}

// NewModeGroup creates a mode group under parent with initial active.
//
// It panics with ErrModeNotInGroup if initial is not one of modes, and
// with ErrNoModes, ErrDuplicateMode or ErrModeBound for an invalid list.
func NewModeGroup(parent event.Listener, name string, initial *Mode, modes []*Mode, opts ...Option) *ModeGroup {
	if len(modes) == 0 {
		panic(fmt.Errorf("%w: %s", ErrNoModes, name))
	}

	g := &ModeGroup{parent: parent, def: initial}
	g.Group = value.Embed(g, name)

	names := make([]string, 0, len(modes))
	seen := make(map[string]bool)
	found := false
	for _, m := range modes {
		if m.group != nil {
			panic(fmt.Errorf("%w: %s", ErrModeBound, m.Key()))
		}
		for _, n := range append([]string{m.Name()}, m.opts.aliases...) {
			lower := strings.ToLower(n)
			if seen[lower] {
				panic(fmt.Errorf("%w: %q in %s", ErrDuplicateMode, n, name))
			}
			seen[lower] = true
		}
		if m == initial {
			found = true
		}
		names = append(names, m.Name())
	}
	if !found {
		initialName := "<nil>"
		if initial != nil {
			initialName = initial.Name()
		}
		panic(fmt.Errorf("%w: %s is not one of %s in %s",
			ErrModeNotInGroup, initialName, strings.Join(names, ", "), name))
	}

	g.modes = append([]*Mode(nil), modes...)
	g.active = initial

	g.choice = value.NewChoice("mode", initial.Name(), names...)
	g.choice.OnChange(func(_, cur string) {
		if err := g.SetByName(cur); err != nil {
			logger.Warn().Err(err).Msg("mode setting out of sync")
		}
	})
	g.Carry(g.choice)

	for _, m := range g.modes {
		m.group = g
		g.Attach(m)
	}

	o := buildOptions(opts)
	adopt(parent, g, g, o.settings)
	g.sync()
	return g
}

// Running reports whether the parent runs.
func (g *ModeGroup) Running() bool {
	return g.parent == nil || g.parent.Running()
}

// Parent returns the parent listener.
func (g *ModeGroup) Parent() event.Listener {
	return g.parent
}

// Children returns the modes, then the features nested directly under
// the group.
func (g *ModeGroup) Children() []event.Listener {
	out := make([]event.Listener, 0, len(g.modes)+len(g.children))
	for _, m := range g.modes {
		out = append(out, m)
	}
	return append(out, g.children...)
}

func (g *ModeGroup) addChild(child event.Listener) {
	g.children = append(g.children, child)
}

// Active returns the active mode.
func (g *ModeGroup) Active() *Mode {
	return g.active
}

// Default returns the mode the group was built with.
func (g *ModeGroup) Default() *Mode {
	return g.def
}

// Modes returns the modes in declaration order.
func (g *ModeGroup) Modes() []*Mode {
	return append([]*Mode(nil), g.modes...)
}

// ModeNames returns the canonical mode names in declaration order.
func (g *ModeGroup) ModeNames() []string {
	names := make([]string, len(g.modes))
	for i, m := range g.modes {
		names[i] = m.Name()
	}
	return names
}

// ModeSetting returns the choice setting mirroring the active mode.
func (g *ModeGroup) ModeSetting() *value.Value[string] {
	return g.choice
}

// SetActive makes m the active mode. The previous mode is disabled first
// if it was running; m is enabled only if the group runs. Activating the
// active mode does nothing. It panics with ErrModeNotInGroup if m belongs
// to another group.
func (g *ModeGroup) SetActive(m *Mode) {
	if m == nil || m.group != g {
		panic(fmt.Errorf("%w: %v in %s", ErrModeNotInGroup, m, g.Key()))
	}
	old := g.active
	if old == m {
		return
	}

	old.setLive(false)
	g.active = m
	m.sync()

	_ = g.choice.Set(m.Name())

	featureLog().Debug().
		Str("group", g.Key()).
		Str("from", old.Name()).
		Str("to", m.Name()).
		Msg("mode changed")

	if mgr := event.ManagerOf(g); mgr != nil {
		mgr.Dispatch(&events.ModeChanged{Key: g.Key(), From: old.Name(), To: m.Name()})
	}
}

// SetByName activates the mode whose name or alias matches name, ignoring
// case. An unknown name returns an *UnknownModeError and changes nothing.
func (g *ModeGroup) SetByName(name string) error {
	m, ok := g.ModeByName(name)
	if !ok {
		return &UnknownModeError{Group: g.Key(), Name: name, Valid: g.ModeNames()}
	}
	g.SetActive(m)
	return nil
}

// ModeByName returns the mode whose name or alias matches name, ignoring case.
func (g *ModeGroup) ModeByName(name string) (*Mode, bool) {
	name = strings.TrimSpace(name)
	for _, m := range g.modes {
		if m.answersTo(name) {
			return m, true
		}
	}
	return nil, false
}

// RestoreDefault activates the mode the group was built with.
func (g *ModeGroup) RestoreDefault() {
	g.SetActive(g.def)
}

// RecordType returns RecordTypeMode.
func (g *ModeGroup) RecordType() string {
	return RecordTypeMode
}

// String returns the key path.
func (g *ModeGroup) String() string {
	return g.Key()
}

func (g *ModeGroup) sync() {
	for _, m := range g.modes {
		m.sync()
	}
	for _, child := range g.children {
		if n, ok := child.(node); ok {
			n.sync()
		}
	}
}

func (g *ModeGroup) setLive(on bool) {
	if on {
		g.sync()
		return
	}
	for _, m := range g.modes {
		m.setLive(false)
	}
	for _, child := range g.children {
		if n, ok := child.(node); ok {
			n.setLive(false)
		}
	}
}
