package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/featurebus/internal/config/loader"
	"github.com/dshills/featurebus/internal/logger"
)

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "FEATUREBUS_"

// Config is the runtime configuration.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Loop     LoopConfig     `toml:"loop"`
	Dispatch DispatchConfig `toml:"dispatch"`
	Settings SettingsConfig `toml:"settings"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is the minimum level ("debug", "info", "warn", "error", "off").
	Level string `toml:"level"`

	// File optionally mirrors logs into a rotating file.
	File string `toml:"file"`

	// MaxSizeMB is the size at which the log file rotates.
	MaxSizeMB int `toml:"maxSizeMB"`
}

// LoopConfig configures the tick loop.
type LoopConfig struct {
	// TickRate is the interval between ticks.
	TickRate Duration `toml:"tickRate"`

	// Ticks stops the loop after this many ticks. Zero runs until cancelled.
	Ticks uint64 `toml:"ticks"`
}

// DispatchConfig configures event dispatch.
type DispatchConfig struct {
	// ObserverBuffer is the default channel capacity of completion observers.
	ObserverBuffer int `toml:"observerBuffer"`
}

// SettingsConfig locates the persisted feature settings.
type SettingsConfig struct {
	// Path is the settings document. Empty disables persistence.
	Path string `toml:"path"`

	// Format overrides the format derived from Path's extension.
	Format string `toml:"format"`

	// Watch re-imports the document when it changes on disk.
	Watch bool `toml:"watch"`
}

// Duration is a time.Duration written as a string such as "50ms".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String returns the duration in time.Duration notation.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 10,
		},
		Loop: LoopConfig{
			TickRate: Duration(50 * time.Millisecond),
		},
		Dispatch: DispatchConfig{
			ObserverBuffer: 64,
		},
		Settings: SettingsConfig{
			Path:  filepath.Join(DefaultDir(), "settings.toml"),
			Watch: true,
		},
	}
}

// DefaultDir returns the user configuration directory.
func DefaultDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "featurebus")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "featurebus")
}

// DefaultPath returns the default configuration file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// Load reads the configuration file at path, applies environment
// overrides and validates the result. A missing file is not an error.
// An empty path uses DefaultPath.
func Load(path string) (Config, error) {
	return LoadWithFS(loader.DefaultFS(), path)
}

// LoadWithFS is Load on a custom file system.
func LoadWithFS(fs loader.FileSystem, path string) (Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	file, err := loader.NewTOMLLoaderWithFS(fs, path).Load()
	if err != nil {
		return Config{}, err
	}
	env, err := loader.NewEnvLoader(EnvPrefix).Load()
	if err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}

	cfg, err := Decode(loader.DeepMerge(file, env))
	if err != nil {
		return Config{}, fmt.Errorf("loading %s: %w", path, err)
	}

	logger.Debug().
		Str("path", path).
		Int("fileKeys", len(file)).
		Int("envKeys", len(env)).
		Msg("configuration loaded")
	return cfg, nil
}

// Decode applies a merged configuration map over Default and validates it.
func Decode(data map[string]any) (Config, error) {
	cfg := Default()
	if len(data) == 0 {
		return cfg, cfg.Validate()
	}

	raw, err := toml.Marshal(data)
	if err != nil {
		return Config{}, fmt.Errorf("encoding merged configuration: %w", err)
	}
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks value ranges and settings format.
func (c Config) Validate() error {
	var errs []error
	if c.Loop.TickRate <= 0 {
		errs = append(errs, &ValidationError{Path: "loop.tickRate", Message: "must be positive", Value: c.Loop.TickRate})
	}
	if c.Dispatch.ObserverBuffer < 0 {
		errs = append(errs, &ValidationError{Path: "dispatch.observerBuffer", Message: "must not be negative", Value: c.Dispatch.ObserverBuffer})
	}
	if c.Log.MaxSizeMB < 0 {
		errs = append(errs, &ValidationError{Path: "log.maxSizeMB", Message: "must not be negative", Value: c.Log.MaxSizeMB})
	}
	if c.Settings.Format != "" {
		if _, err := loader.ParseFormat(c.Settings.Format); err != nil {
			errs = append(errs, &ValidationError{Path: "settings.format", Message: err.Error(), Value: c.Settings.Format})
		}
	} else if c.Settings.Path != "" {
		if _, err := loader.FormatFromPath(c.Settings.Path); err != nil {
			errs = append(errs, &ValidationError{Path: "settings.path", Message: err.Error(), Value: c.Settings.Path})
		}
	}
	return errors.Join(errs...)
}

// SettingsFormat returns the configured settings format, or the empty
// format when it should be derived from the path.
func (c Config) SettingsFormat() loader.Format {
	if c.Settings.Format == "" {
		return ""
	}
	f, _ := loader.ParseFormat(c.Settings.Format)
	return f
}
