package app

import (
	"context"
	"time"

	"github.com/dshills/featurebus/internal/event/events"
)

// Run drives the tick loop until ctx is cancelled, Shutdown is called or
// the configured number of ticks has been dispatched. Each tick dispatches
// a Tick followed by a Render. Settings reloads triggered by the watcher
// are applied between ticks.
func (app *Application) Run(ctx context.Context) error {
	if app.closed.Load() {
		return ErrClosed
	}
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.watcher != nil {
		app.watcher.Start()
		defer app.watcher.Stop()
	}

	rate := app.cfg.Loop.TickRate.Std()
	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	app.log.Info().
		Dur("tickRate", rate).
		Uint64("ticks", app.cfg.Loop.Ticks).
		Str("settings", app.SettingsPath()).
		Msg("loop started")
	defer func() {
		snap := app.metrics.Snapshot()
		app.log.Info().
			Uint64("ticks", snap.TickCount).
			Uint64("overruns", snap.OverrunTicks).
			Uint64("faults", app.faults.Load()).
			Msg("loop stopped")
	}()

	toggles := app.toggles.C
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil

		case <-app.done:
			return nil

		case <-app.reloads:
			app.reload()

		case ev, ok := <-toggles:
			if !ok {
				toggles = nil
				continue
			}
			if t, ok := ev.(*events.FeatureToggled); ok {
				app.log.Info().
					Str("feature", t.Key).
					Bool("running", t.Running).
					Msg("feature toggled")
			}

		case now := <-ticker.C:
			delta := now.Sub(last)
			last = now
			app.Step(delta)
			if limit := app.cfg.Loop.Ticks; limit > 0 && app.Frame() >= limit {
				return nil
			}
		}
	}
}

// Step dispatches one Tick and its Render. delta is the time since the
// previous tick.
func (app *Application) Step(delta time.Duration) {
	frame := app.frame.Add(1)

	timer := StartTimer()
	app.manager.Dispatch(&events.Tick{Frame: frame, Delta: delta})
	tickTime := timer.Stop()
	app.metrics.RecordTick(tickTime)
	if tickTime > app.cfg.Loop.TickRate.Std() {
		app.metrics.RecordOverrun()
	}

	app.manager.Dispatch(&events.Render{Frame: frame, Partial: 1})
	app.metrics.RecordRender(timer.Stop())
}

// reload re-imports the settings file after a change on disk.
func (app *Application) reload() {
	err := app.LoadSettings()
	app.metrics.RecordReload(err)
	if err != nil {
		app.log.Error().Err(err).Msg("settings reload failed")
		return
	}
	app.log.Info().Str("path", app.SettingsPath()).Msg("settings reloaded")
}
