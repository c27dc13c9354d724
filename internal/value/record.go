package value

import (
	"errors"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// TypeGroup is the record type of a plain group.
const TypeGroup = "group"

// Record is the format-neutral form of a value tree entry.
//
// Settings use their Kind name as Type; containers use TypeGroup or the
// name returned by their RecordType method. Carried settings of a
// container appear first among its Children.
type Record struct {
	Type      string   `json:"type" yaml:"type" toml:"type"`
	Name      string   `json:"name" yaml:"name" toml:"name"`
	Value     any      `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty" toml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty" toml:"max,omitempty"`
	Options   []string `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty"`
	MaxLength int      `json:"maxLength,omitempty" yaml:"maxLength,omitempty" toml:"maxLength,omitempty"`
	Children  []Record `json:"children,omitempty" yaml:"children,omitempty" toml:"children,omitempty"`
}

// IsContainer reports whether the record describes a container.
func (r Record) IsContainer() bool {
	_, ok := ParseKind(r.Type)
	return !ok
}

// RecordTyper is implemented by containers whose record type is not TypeGroup.
type RecordTyper interface {
	RecordType() string
}

// RecordType returns the record type of a container.
func RecordType(c Container) string {
	if rt, ok := c.(RecordTyper); ok {
		return rt.RecordType()
	}
	return TypeGroup
}

// Export returns c and everything below it as a record.
func Export(c Container) Record {
	g := c.ValueGroup()
	r := Record{
		Type: RecordType(c),
		Name: c.Name(),
	}
	for _, s := range g.carried {
		r.Children = append(r.Children, s.Record())
	}
	for _, e := range g.entries {
		switch v := e.(type) {
		case Setting:
			r.Children = append(r.Children, v.Record())
		case Container:
			r.Children = append(r.Children, Export(v))
		}
	}
	return r
}

// Import applies records to the group's entries.
//
// A record naming an existing setting assigns its value; one naming an
// existing container is applied to that container's entries. Records for
// missing settings and plain groups create them. Failures do not stop the
// import; they are returned joined.
func (g *Group) Import(records []Record) error {
	var errs []error
	for _, r := range records {
		if err := g.importRecord(r); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (g *Group) importRecord(r Record) error {
	if r.Name == "" {
		return fmt.Errorf("%w: missing name in %s", ErrInvalidRecord, g.Key())
	}

	if e, ok := g.Lookup(r.Name); ok {
		switch v := e.(type) {
		case Setting:
			if r.Type != "" {
				if k, ok := ParseKind(r.Type); !ok || k != v.Kind() {
					return fmt.Errorf("%w: %s is %s, record is %s", ErrTypeMismatch, v.Key(), v.Kind(), r.Type)
				}
			}
			if r.Value == nil {
				return nil
			}
			return v.SetAny(r.Value)
		case Container:
			if r.Type != "" && r.Type != RecordType(v) {
				return fmt.Errorf("%w: %s is %s, record is %s", ErrTypeMismatch, v.Key(), RecordType(v), r.Type)
			}
			return v.ValueGroup().Import(r.Children)
		}
	}

	if r.Type == TypeGroup {
		return g.Subgroup(r.Name).Import(r.Children)
	}

	kind, ok := ParseKind(r.Type)
	if !ok {
		return fmt.Errorf("%w %q for %s", ErrUnknownType, r.Type, keyOf(r.Name, g.owner))
	}
	s, err := settingFromRecord(kind, r)
	if err != nil {
		return fmt.Errorf("%s: %w", keyOf(r.Name, g.owner), err)
	}
	g.Attach(s)
	return nil
}

func settingFromRecord(kind Kind, r Record) (Setting, error) {
	switch kind {
	case KindBool:
		def := false
		if r.Value != nil {
			b, err := toBool(r.Value)
			if err != nil {
				return nil, err
			}
			def = b
		}
		return newBool(r.Name, def)
	case KindInt:
		def := 0
		if r.Min != nil {
			def = int(*r.Min)
		}
		if r.Value != nil {
			n, err := toInt(r.Value)
			if err != nil {
				return nil, err
			}
			def = n
		}
		return newInt(r.Name, def, r.Min, r.Max)
	case KindFloat:
		def := 0.0
		if r.Min != nil {
			def = *r.Min
		}
		if r.Value != nil {
			f, err := toFloat(r.Value)
			if err != nil {
				return nil, err
			}
			def = f
		}
		return newFloat(r.Name, def, r.Min, r.Max)
	case KindText:
		def := ""
		if r.Value != nil {
			s, err := toString(r.Value)
			if err != nil {
				return nil, err
			}
			def = s
		}
		return newText(r.Name, def, r.MaxLength)
	case KindChoice:
		if len(r.Options) == 0 {
			return nil, fmt.Errorf("%w: choice without options", ErrInvalidRecord)
		}
		def := r.Options[0]
		if r.Value != nil {
			s, err := toString(r.Value)
			if err != nil {
				return nil, err
			}
			def = s
		}
		return newChoice(r.Name, def, r.Options)
	case KindColor:
		def := colorful.Color{}
		if r.Value != nil {
			c, err := toColor(r.Value)
			if err != nil {
				return nil, err
			}
			def = c
		}
		return newColor(r.Name, def)
	default:
		return nil, ErrUnknownType
	}
}
