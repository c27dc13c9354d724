package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/featurebus/internal/config/loader"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 50*time.Millisecond, cfg.Loop.TickRate.Std())
	assert.Equal(t, uint64(0), cfg.Loop.Ticks)
	assert.Equal(t, 64, cfg.Dispatch.ObserverBuffer)
	assert.True(t, cfg.Settings.Watch)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultPath_UsesXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	assert.Equal(t, filepath.Join("/xdg", "featurebus", "config.toml"), DefaultPath())
	assert.Equal(t, filepath.Join("/xdg", "featurebus", "settings.toml"), Default().Settings.Path)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[loop]
tickRate = "20ms"
ticks = 100

[settings]
path = "/tmp/features.yaml"
watch = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.TickRate.Std())
	assert.Equal(t, uint64(100), cfg.Loop.Ticks)
	assert.Equal(t, "/tmp/features.yaml", cfg.Settings.Path)
	assert.False(t, cfg.Settings.Watch)
	assert.Equal(t, 64, cfg.Dispatch.ObserverBuffer, "unset values keep defaults")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Loop, cfg.Loop)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[log]
level = "debug"

[loop]
tickRate = "20ms"
`)
	t.Setenv("FEATUREBUS_LOG_LEVEL", "warn")
	t.Setenv("FEATUREBUS_TICK_RATE", "5ms")
	t.Setenv("FEATUREBUS_DISPATCH_OBSERVER_BUFFER", "8")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, 5*time.Millisecond, cfg.Loop.TickRate.Std())
	assert.Equal(t, 8, cfg.Dispatch.ObserverBuffer)
}

func TestLoad_ParseError(t *testing.T) {
	path := writeConfig(t, "[loop\n")

	_, err := Load(path)
	var perr *loader.ParseError
	assert.ErrorAs(t, err, &perr)
}

func TestLoad_InvalidDuration(t *testing.T) {
	path := writeConfig(t, "[loop]\ntickRate = \"soon\"\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"zero tick rate", func(c *Config) { c.Loop.TickRate = 0 }, "loop.tickRate"},
		{"negative buffer", func(c *Config) { c.Dispatch.ObserverBuffer = -1 }, "dispatch.observerBuffer"},
		{"negative log size", func(c *Config) { c.Log.MaxSizeMB = -1 }, "log.maxSizeMB"},
		{"unknown format", func(c *Config) { c.Settings.Format = "ini" }, "settings.format"},
		{"unknown extension", func(c *Config) { c.Settings.Path = "/x/settings.ini" }, "settings.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestValidate_EmptySettingsPath(t *testing.T) {
	cfg := Default()
	cfg.Settings.Path = ""
	assert.NoError(t, cfg.Validate())
}

func TestSettingsFormat(t *testing.T) {
	cfg := Default()
	assert.Equal(t, loader.Format(""), cfg.SettingsFormat())

	cfg.Settings.Format = "YML"
	assert.Equal(t, loader.FormatYAML, cfg.SettingsFormat())
}

func TestDuration_Text(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte(" 1.5s ")))
	assert.Equal(t, 1500*time.Millisecond, d.Std())

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "1.5s", string(text))

	assert.Error(t, d.UnmarshalText([]byte("fast")))
}
