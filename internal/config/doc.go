// Package config provides the runtime configuration of featurebus.
//
// Configuration is assembled from three sources with later sources
// overriding earlier ones:
//
//	┌─────────────────────────────┐
//	│  3. Command Line Flags      │  ← Highest priority (applied by the CLI)
//	├─────────────────────────────┤
//	│  2. Environment Variables   │  ← FEATUREBUS_*
//	├─────────────────────────────┤
//	│  1. Config File             │  ← ~/.config/featurebus/config.toml
//	└─────────────────────────────┘
//
// Anything left unset keeps the value from Default.
//
// # Configuration Files
//
//	# ~/.config/featurebus/config.toml
//	[log]
//	level = "debug"
//	file = "/tmp/featurebus.log"
//
//	[loop]
//	tickRate = "50ms"
//	ticks = 0            # run until interrupted
//
//	[dispatch]
//	observerBuffer = 64
//
//	[settings]
//	path = "~/.config/featurebus/settings.toml"
//	watch = true
//
// The feature settings tree itself lives in a separate document; see the
// loader package for its formats and the watcher package for live reload.
//
// # Error Handling
//
//   - ErrInvalidConfig: a loaded value failed validation
//   - loader.ParseError: a configuration file could not be parsed
package config
