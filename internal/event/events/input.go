package events

import "github.com/dshills/featurebus/internal/event"

// Modifier represents a keyboard modifier.
type Modifier string

// Keyboard modifiers.
const (
	ModifierCtrl  Modifier = "ctrl"
	ModifierShift Modifier = "shift"
	ModifierAlt   Modifier = "alt"
	ModifierMeta  Modifier = "meta"
)

// KeyAction is what happened to a key.
type KeyAction uint8

const (
	// KeyPress is the initial press.
	KeyPress KeyAction = iota
	// KeyRepeat is an auto-repeat while held.
	KeyRepeat
	// KeyRelease is the release.
	KeyRelease
)

// String returns the action name.
func (a KeyAction) String() string {
	switch a {
	case KeyPress:
		return "press"
	case KeyRepeat:
		return "repeat"
	case KeyRelease:
		return "release"
	default:
		return "unknown"
	}
}

// KeyInput is dispatched for every key transition. Hooks may cancel it to
// keep it from reaching the rest of the application.
type KeyInput struct {
	event.CancellableBase

	// Key is the key name (e.g., "a", "Enter", "F5").
	Key string

	// Action is press, repeat or release.
	Action KeyAction

	// Modifiers are the active modifier keys.
	Modifiers []Modifier
}

// HasModifier reports whether m was held.
func (k *KeyInput) HasModifier(m Modifier) bool {
	for _, mod := range k.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}
