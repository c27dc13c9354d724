package value

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/dshills/featurebus/internal/logger"
)

// Container is an entry that owns other entries.
type Container interface {
	Entry

	// ValueGroup returns the group holding the container's entries.
	ValueGroup() *Group

	// RestoreDefaults resets every setting in the container, recursively.
	RestoreDefaults()
}

// Group is a named, ordered collection of settings and nested containers.
type Group struct {
	name  string
	root  bool
	owner Container
	base  Container

	carried []Setting
	entries []Entry
}

// NewRoot creates a root group. A root group cannot be attached to another group.
func NewRoot(name string) *Group {
	g := &Group{name: name, root: true}
	g.owner = g
	return g
}

// NewGroup creates a detached group.
func NewGroup(name string) *Group {
	g := &Group{name: name}
	g.owner = g
	return g
}

// Embed creates the group of a container type that embeds *Group. Entries
// attached to the returned group report owner as their base.
//
//	t := &Toggle{}
//	t.Group = value.Embed(t, "toggle")
func Embed(owner Container, name string) *Group {
	return &Group{name: name, owner: owner}
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.name
}

// Key returns the group's key path.
func (g *Group) Key() string {
	return keyOf(g.name, g.base)
}

// Base returns the parent container, or nil.
func (g *Group) Base() Container {
	return g.base
}

func (g *Group) bind(parent Container) {
	g.base = parent
}

// ValueGroup returns g.
func (g *Group) ValueGroup() *Group {
	return g
}

// Owner returns the container g belongs to: the embedding type for groups
// created with Embed, g itself otherwise.
func (g *Group) Owner() Container {
	return g.owner
}

// IsRoot reports whether g was created with NewRoot.
func (g *Group) IsRoot() bool {
	return g.root
}

// Attach appends child to the group's entries and makes the group its base.
//
// Attaching a root group panics with ErrRootAttach. A child that already
// belongs to another group is moved, with a warning. Attaching a child that
// is already an entry of g does nothing.
func (g *Group) Attach(child Entry) {
	if c, ok := child.(Container); ok {
		cg := c.ValueGroup()
		if cg.root {
			panic(fmt.Errorf("%w: %s", ErrRootAttach, cg.name))
		}
		if cg == g {
			panic(fmt.Errorf("value: cannot attach %s to itself", g.Key()))
		}
	}

	if prev := child.Base(); prev != nil {
		if prev == g.owner && g.indexOf(child) >= 0 {
			return
		}
		logger.Warn().
			Str("child", child.Key()).
			Str("from", prev.Key()).
			Str("to", g.Key()).
			Msg("moving value tree entry to a new parent")
		prev.ValueGroup().remove(child)
	}

	child.bind(g.owner)
	g.entries = append(g.entries, child)
}

// Detach removes child from the group. It returns an error wrapping
// ErrWrongParent if g is not the child's parent.
func (g *Group) Detach(child Entry) error {
	if child.Base() != g.owner || !g.remove(child) {
		return fmt.Errorf("%w: %s is not attached to %s", ErrWrongParent, child.Key(), g.Key())
	}
	child.bind(nil)
	return nil
}

// MustDetach is like Detach but panics on error.
func (g *Group) MustDetach(child Entry) {
	if err := g.Detach(child); err != nil {
		panic(err)
	}
}

// Carry binds s to the group's owner without listing it as an entry.
// Carried settings describe the container itself.
func (g *Group) Carry(s Setting) {
	s.bind(g.owner)
	g.carried = append(g.carried, s)
}

// Carried returns the carried settings.
func (g *Group) Carried() []Setting {
	return append([]Setting(nil), g.carried...)
}

// Entries returns the entries in attach order.
func (g *Group) Entries() []Entry {
	return append([]Entry(nil), g.entries...)
}

// Settings returns the settings directly in g.
func (g *Group) Settings() []Setting {
	var out []Setting
	for _, e := range g.entries {
		if s, ok := e.(Setting); ok {
			out = append(out, s)
		}
	}
	return out
}

// Containers returns the containers directly in g.
func (g *Group) Containers() []Container {
	var out []Container
	for _, e := range g.entries {
		if c, ok := e.(Container); ok {
			out = append(out, c)
		}
	}
	return out
}

// Lookup returns the carried setting or entry with the given name.
func (g *Group) Lookup(name string) (Entry, bool) {
	for _, s := range g.carried {
		if s.Name() == name {
			return s, true
		}
	}
	for _, e := range g.entries {
		if e.Name() == name {
			return e, true
		}
	}
	return nil, false
}

// Find resolves a dot-separated path relative to g.
func (g *Group) Find(path string) (Entry, error) {
	var cur Entry = g.owner
	for _, part := range strings.Split(path, ".") {
		c, ok := cur.(Container)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		next, ok := c.ValueGroup().Lookup(part)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		cur = next
	}
	return cur, nil
}

// FindSetting resolves a dot-separated path relative to g to a setting.
func (g *Group) FindSetting(path string) (Setting, error) {
	e, err := g.Find(path)
	if err != nil {
		return nil, err
	}
	s, ok := e.(Setting)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a group", ErrNotFound, path)
	}
	return s, nil
}

// RestoreDefaults resets carried settings, then every entry in order.
func (g *Group) RestoreDefaults() {
	for _, s := range g.carried {
		s.Reset()
	}
	for _, e := range g.entries {
		switch v := e.(type) {
		case Setting:
			v.Reset()
		case Container:
			v.RestoreDefaults()
		}
	}
}

// CollectSettingsRecursively returns every setting below g in pre-order.
// A container's carried settings come immediately before its entries.
func (g *Group) CollectSettingsRecursively() []Setting {
	var out []Setting
	g.collectSettings(&out)
	return out
}

func (g *Group) collectSettings(out *[]Setting) {
	*out = append(*out, g.carried...)
	for _, e := range g.entries {
		switch v := e.(type) {
		case Setting:
			*out = append(*out, v)
		case Container:
			v.ValueGroup().collectSettings(out)
		}
	}
}

// CollectGroupsRecursively returns every container below g in pre-order.
// g itself is not included.
func (g *Group) CollectGroupsRecursively() []Container {
	var out []Container
	g.collectGroups(&out)
	return out
}

func (g *Group) collectGroups(out *[]Container) {
	for _, e := range g.entries {
		if c, ok := e.(Container); ok {
			*out = append(*out, c)
			c.ValueGroup().collectGroups(out)
		}
	}
}

func (g *Group) indexOf(child Entry) int {
	for i, e := range g.entries {
		if e == child {
			return i
		}
	}
	return -1
}

func (g *Group) remove(child Entry) bool {
	idx := g.indexOf(child)
	if idx < 0 {
		return false
	}
	next := make([]Entry, 0, len(g.entries)-1)
	next = append(next, g.entries[:idx]...)
	g.entries = append(next, g.entries[idx+1:]...)
	return true
}

// Bool adds a boolean setting.
func (g *Group) Bool(name string, def bool) *Value[bool] {
	v := NewBool(name, def)
	g.Attach(v)
	return v
}

// Int adds an integer setting bounded by [min, max].
func (g *Group) Int(name string, def, min, max int) *Value[int] {
	v := NewInt(name, def, min, max)
	g.Attach(v)
	return v
}

// Float adds a float setting bounded by [min, max].
func (g *Group) Float(name string, def, min, max float64) *Value[float64] {
	v := NewFloat(name, def, min, max)
	g.Attach(v)
	return v
}

// Text adds a text setting limited to maxLength grapheme clusters.
func (g *Group) Text(name, def string, maxLength int) *Value[string] {
	v := NewText(name, def, maxLength)
	g.Attach(v)
	return v
}

// Choice adds a setting restricted to options.
func (g *Group) Choice(name, def string, options ...string) *Value[string] {
	v := NewChoice(name, def, options...)
	g.Attach(v)
	return v
}

// Color adds a color setting.
func (g *Group) Color(name string, def colorful.Color) *Value[colorful.Color] {
	v := NewColor(name, def)
	g.Attach(v)
	return v
}

// Subgroup adds a nested group.
func (g *Group) Subgroup(name string) *Group {
	sub := NewGroup(name)
	g.Attach(sub)
	return sub
}
