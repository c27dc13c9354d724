package value

import (
	"sync"
	"sync/atomic"
)

// Entry is a node of the value tree.
type Entry interface {
	// Name returns the entry's name within its parent.
	Name() string

	// Key returns the dot-joined path from the root to this entry.
	Key() string

	// Base returns the parent container, or nil if detached.
	Base() Container

	bind(parent Container)
}

// Setting is a typed leaf of the value tree, accessed without knowing its
// Go type.
type Setting interface {
	Entry

	// Kind returns the setting's data type.
	Kind() Kind

	// Any returns the current value.
	Any() any

	// SetAny converts v to the setting's type and stores it.
	SetAny(v any) error

	// DefaultAny returns the default value.
	DefaultAny() any

	// Reset restores the default value.
	Reset()

	// Raw returns the current value as text.
	Raw() string

	// SetRaw parses s and stores the result.
	SetRaw(s string) error

	// Record returns the setting as a record.
	Record() Record
}

// Value is a setting holding a value of type T.
type Value[T comparable] struct {
	name string
	kind Kind
	def  T
	cur  atomic.Pointer[T]
	base Container

	check  func(T) (T, error)
	coerce func(any) (T, error)
	format func(T) string
	export func(T) any
	meta   Record

	mu         sync.RWMutex
	intercepts []func(old, requested T) T
	observers  []func(old, cur T)
}

func newValue[T comparable](name string, kind Kind, def T, v *Value[T]) (*Value[T], error) {
	v.name = name
	v.kind = kind
	if v.export == nil {
		v.export = func(x T) any { return x }
	}
	checked, err := v.validate(def)
	if err != nil {
		return nil, err
	}
	v.def = checked
	v.cur.Store(&checked)
	return v, nil
}

// Name returns the setting name.
func (v *Value[T]) Name() string {
	return v.name
}

// Key returns the setting's key path.
func (v *Value[T]) Key() string {
	return keyOf(v.name, v.base)
}

// Base returns the container the setting belongs to.
func (v *Value[T]) Base() Container {
	return v.base
}

func (v *Value[T]) bind(parent Container) {
	v.base = parent
}

// Kind returns the setting's data type.
func (v *Value[T]) Kind() Kind {
	return v.kind
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return *v.cur.Load()
}

// Default returns the default value.
func (v *Value[T]) Default() T {
	return v.def
}

// Set validates x, runs interceptors and stores the result. Observers run
// on the caller's goroutine after the store, only if the value changed.
func (v *Value[T]) Set(x T) error {
	checked, err := v.validate(x)
	if err != nil {
		return err
	}

	v.mu.RLock()
	intercepts := v.intercepts
	observers := v.observers
	v.mu.RUnlock()

	old := v.Get()
	for _, intercept := range intercepts {
		checked = intercept(old, checked)
	}
	if checked == old {
		return nil
	}

	v.cur.Store(&checked)
	for _, fn := range observers {
		fn(old, checked)
	}
	return nil
}

// Reset restores the default value.
func (v *Value[T]) Reset() {
	_ = v.Set(v.def)
}

// Intercept adds a function that may replace a requested value before it is
// stored. Returning old refuses the write. Interceptors run in the order
// they were added.
func (v *Value[T]) Intercept(fn func(old, requested T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.intercepts = append(v.intercepts[:len(v.intercepts):len(v.intercepts)], fn)
}

// OnChange adds an observer called after every change of the stored value.
func (v *Value[T]) OnChange(fn func(old, cur T)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.observers = append(v.observers[:len(v.observers):len(v.observers)], fn)
}

// Any returns the current value.
func (v *Value[T]) Any() any {
	return v.Get()
}

// DefaultAny returns the default value.
func (v *Value[T]) DefaultAny() any {
	return v.def
}

// SetAny converts x to T and stores it.
func (v *Value[T]) SetAny(x any) error {
	converted, err := v.coerce(x)
	if err != nil {
		return &ValidationError{Key: v.Key(), Value: x, Err: err}
	}
	return v.Set(converted)
}

// Raw returns the current value as text.
func (v *Value[T]) Raw() string {
	return v.format(v.Get())
}

// SetRaw parses s and stores the result.
func (v *Value[T]) SetRaw(s string) error {
	return v.SetAny(s)
}

// Record returns the setting as a record.
func (v *Value[T]) Record() Record {
	r := v.meta
	r.Type = v.kind.String()
	r.Name = v.name
	r.Value = v.export(v.Get())
	if len(v.meta.Options) > 0 {
		r.Options = append([]string(nil), v.meta.Options...)
	}
	return r
}

func (v *Value[T]) validate(x T) (T, error) {
	if v.check == nil {
		return x, nil
	}
	checked, err := v.check(x)
	if err != nil {
		return x, &ValidationError{Key: v.Key(), Value: x, Err: err}
	}
	return checked, nil
}

func keyOf(name string, base Container) string {
	if base == nil {
		return name
	}
	prefix := base.Key()
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
