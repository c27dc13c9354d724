// Package app wires the event manager, the feature tree, settings
// persistence and the tick loop into a runnable application.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/dshills/featurebus/internal/config"
	"github.com/dshills/featurebus/internal/config/loader"
	"github.com/dshills/featurebus/internal/config/watcher"
	"github.com/dshills/featurebus/internal/event"
	"github.com/dshills/featurebus/internal/event/events"
	"github.com/dshills/featurebus/internal/logger"
	"github.com/dshills/featurebus/internal/value"
)

// Application is the central coordinator for all featurebus components.
// It manages component lifecycles, wiring, and the tick loop.
//
// Feature state is only mutated on the goroutine running Run, or by the
// caller when Run is not active.
type Application struct {
	cfg config.Config
	log zerolog.Logger

	// Core infrastructure
	manager  *event.Manager
	features *Features
	metrics  *Metrics

	// Settings persistence
	settings *loader.SettingsFile
	watcher  *watcher.Watcher
	reloads  chan struct{}
	toggles  *event.Observer

	// State
	frame    atomic.Uint64
	faults   atomic.Uint64
	running  atomic.Bool
	closed   atomic.Bool
	done     chan struct{}
	stopOnce sync.Once
}

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the application logger. Defaults to the process logger.
func WithLogger(l zerolog.Logger) Option {
	return func(app *Application) {
		app.log = l
	}
}

// WithMetrics sets the metrics tracker.
func WithMetrics(m *Metrics) Option {
	return func(app *Application) {
		if m != nil {
			app.metrics = m
		}
	}
}

// New creates an Application from cfg. Persisted settings are imported
// before New returns; a settings file that fails to load is logged and
// the defaults are kept.
func New(cfg config.Config, opts ...Option) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &InitError{Component: "config", Err: err}
	}

	app := &Application{
		cfg:     cfg,
		log:     logger.With("app"),
		metrics: NewMetrics(),
		reloads: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.bootstrap(); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Event manager - dispatch foundation
	app.manager = event.NewManager(events.All(),
		event.WithLogger(app.log),
		event.WithFaultHandler(func(error) { app.faults.Add(1) }),
	)
	app.toggles = event.Observe[*events.FeatureToggled](app.manager, app.cfg.Dispatch.ObserverBuffer)

	// 2. Feature tree
	app.features = newFeatures(app.manager, app.log)

	// 3. Settings file
	if app.cfg.Settings.Path == "" {
		return nil
	}
	file, err := loader.NewSettingsFile(app.cfg.Settings.Path, app.cfg.SettingsFormat())
	if err != nil {
		return &InitError{Component: "settings", Err: err}
	}
	app.settings = file

	if err := app.LoadSettings(); err != nil {
		app.log.Warn().Err(err).Msg("keeping default settings")
	}

	// 4. Watcher
	if !app.cfg.Settings.Watch {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(file.Path()), 0o755); err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	w, err := watcher.New(watcher.WithLogger(app.log))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	if err := w.Watch(file.Path()); err != nil {
		_ = w.Close()
		return &InitError{Component: "watcher", Err: err}
	}
	w.OnChange(func(watcher.Event) {
		select {
		case app.reloads <- struct{}{}:
		default:
		}
	})
	app.watcher = w
	return nil
}

// LoadSettings imports the settings file into the feature tree.
// A missing file leaves the tree unchanged. Records that fail to apply do
// not stop the others from being applied.
func (app *Application) LoadSettings() error {
	if app.settings == nil {
		return ErrNoSettingsFile
	}
	records, err := app.settings.Load()
	if err != nil {
		return NewOperationError("load", app.settings.Path(), err)
	}
	if err := app.features.Root.Import(records); err != nil {
		return NewOperationError("import", app.settings.Path(), err)
	}
	app.log.Debug().
		Str("path", app.settings.Path()).
		Int("records", len(records)).
		Msg("settings loaded")
	return nil
}

// SaveSettings writes the feature tree to the settings file.
func (app *Application) SaveSettings() error {
	if app.settings == nil {
		return ErrNoSettingsFile
	}
	if err := app.settings.Save(value.Export(app.features.Root).Children); err != nil {
		return NewOperationError("save", app.settings.Path(), err)
	}
	return nil
}

// SetEnabled sets the enabled flag of the toggle group at path and
// returns the flag in effect afterwards.
func (app *Application) SetEnabled(path string, on bool) (bool, error) {
	t, err := app.features.Toggle(path)
	if err != nil {
		return false, NewOperationError("toggle", path, err)
	}
	return t.SetEnabled(on), nil
}

// SetMode activates a mode of the mode group at path by name or alias.
func (app *Application) SetMode(path, name string) error {
	g, err := app.features.ModeGroup(path)
	if err != nil {
		return NewOperationError("set-mode", path, err)
	}
	if err := g.SetByName(name); err != nil {
		return NewOperationError("set-mode", path, err)
	}
	return nil
}

// JoinWorld enters a world; an empty name leaves the current one.
func (app *Application) JoinWorld(name string) {
	app.manager.Dispatch(&events.WorldChange{World: name})
}

// Input dispatches a key transition and reports whether a feature
// consumed it.
func (app *Application) Input(key string, action events.KeyAction, mods ...events.Modifier) bool {
	ev := &events.KeyInput{Key: key, Action: action, Modifiers: mods}
	app.manager.Dispatch(ev)
	return ev.IsCancelled()
}

// Receive dispatches an inbound packet and reports whether it was dropped.
func (app *Application) Receive(kind string, payload []byte) bool {
	ev := &events.PacketReceive{Kind: kind, Payload: payload}
	app.manager.Dispatch(ev)
	return ev.IsCancelled()
}

// Send dispatches an outbound packet and reports whether it may be sent.
func (app *Application) Send(kind string, payload []byte) bool {
	ev := &events.PacketSend{Kind: kind, Payload: payload}
	app.manager.Dispatch(ev)
	return !ev.IsCancelled()
}

// Shutdown asks a running loop to return. It does not wait.
func (app *Application) Shutdown() {
	app.stopOnce.Do(func() { close(app.done) })
}

// Close stops the loop and tears every component down. Hooks of the
// feature tree are unregistered and dispatch becomes a no-op.
func (app *Application) Close() error {
	app.Shutdown()
	if !app.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if app.watcher != nil {
		if cerr := app.watcher.Close(); cerr != nil {
			err = fmt.Errorf("closing watcher: %w", cerr)
		}
	}
	if app.toggles != nil {
		app.toggles.Close()
	}
	if app.manager != nil {
		removed := 0
		if app.features != nil {
			for _, l := range app.features.Top() {
				removed += app.manager.Unregister(l)
			}
		}
		app.manager.Shutdown()
		app.log.Debug().Int("hooks", removed).Msg("application closed")
	}
	return err
}

// IsRunning returns true if the tick loop is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the configuration the application was built with.
func (app *Application) Config() config.Config {
	return app.cfg
}

// Manager returns the event manager.
func (app *Application) Manager() *event.Manager {
	return app.manager
}

// Features returns the feature tree.
func (app *Application) Features() *Features {
	return app.features
}

// Metrics returns the metrics tracker.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Frame returns the number of ticks dispatched so far.
func (app *Application) Frame() uint64 {
	return app.frame.Load()
}

// Faults returns the number of isolated handler faults.
func (app *Application) Faults() uint64 {
	return app.faults.Load()
}

// SettingsPath returns the settings file path, or the empty string when
// persistence is disabled.
func (app *Application) SettingsPath() string {
	if app.settings == nil {
		return ""
	}
	return app.settings.Path()
}
