package config

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig matches every ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// ValidationError reports a configuration key whose value is rejected.
type ValidationError struct {
	Path    string // dotted key, e.g. "loop.tickRate"
	Message string
	Value   any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Message, e.Value)
}

// Is reports whether target is ErrInvalidConfig.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidConfig
}
