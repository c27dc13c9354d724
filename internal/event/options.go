package event

import "github.com/rs/zerolog"

// Option configures a Manager.
type Option func(*managerConfig)

type managerConfig struct {
	logger       *zerolog.Logger
	faultHandler FaultHandler
}

// WithLogger sets the logger used to report handler faults.
// Defaults to the process logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = &l
	}
}

// WithFaultHandler sets a function notified of every isolated handler fault.
func WithFaultHandler(h FaultHandler) Option {
	return func(c *managerConfig) {
		if h != nil {
			c.faultHandler = h
		}
	}
}
