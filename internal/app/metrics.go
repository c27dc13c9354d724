package app

import (
	"sync/atomic"
	"time"
)

// Metrics tracks tick loop timing.
type Metrics struct {
	// Tick timing
	tickCount    atomic.Uint64
	tickTotalNs  atomic.Int64
	tickMinNs    atomic.Int64
	tickMaxNs    atomic.Int64
	lastTickNs   atomic.Int64
	overrunTicks atomic.Uint64

	// Render timing
	renderCount   atomic.Uint64
	renderTotalNs atomic.Int64

	// Settings reloads
	reloadCount  atomic.Uint64
	reloadErrors atomic.Uint64

	// Start time for uptime calculation
	startTime atomic.Int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	m := &Metrics{}
	m.startTime.Store(time.Now().UnixNano())
	// Initialize min to max int64 so first tick will be smaller
	m.tickMinNs.Store(1<<63 - 1)
	return m
}

// RecordTick records the time spent dispatching one tick.
func (m *Metrics) RecordTick(duration time.Duration) {
	ns := duration.Nanoseconds()

	m.tickCount.Add(1)
	m.tickTotalNs.Add(ns)
	m.lastTickNs.Store(ns)

	for {
		old := m.tickMinNs.Load()
		if ns >= old || m.tickMinNs.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.tickMaxNs.Load()
		if ns <= old || m.tickMaxNs.CompareAndSwap(old, ns) {
			break
		}
	}
}

// RecordOverrun records a tick that took longer than the tick rate.
func (m *Metrics) RecordOverrun() {
	m.overrunTicks.Add(1)
}

// RecordRender records render timing.
func (m *Metrics) RecordRender(duration time.Duration) {
	m.renderCount.Add(1)
	m.renderTotalNs.Add(duration.Nanoseconds())
}

// RecordReload records a settings reload.
func (m *Metrics) RecordReload(err error) {
	m.reloadCount.Add(1)
	if err != nil {
		m.reloadErrors.Add(1)
	}
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	tickCount := m.tickCount.Load()
	renderCount := m.renderCount.Load()

	var avgTickNs int64
	if tickCount > 0 {
		avgTickNs = m.tickTotalNs.Load() / int64(tickCount)
	}

	var avgRenderNs int64
	if renderCount > 0 {
		avgRenderNs = m.renderTotalNs.Load() / int64(renderCount)
	}

	minTickNs := m.tickMinNs.Load()
	if minTickNs == 1<<63-1 {
		minTickNs = 0
	}

	return MetricsSnapshot{
		Uptime:       time.Since(time.Unix(0, m.startTime.Load())),
		TickCount:    tickCount,
		AvgTickNs:    avgTickNs,
		MinTickNs:    minTickNs,
		MaxTickNs:    m.tickMaxNs.Load(),
		LastTickNs:   m.lastTickNs.Load(),
		OverrunTicks: m.overrunTicks.Load(),
		RenderCount:  renderCount,
		AvgRenderNs:  avgRenderNs,
		ReloadCount:  m.reloadCount.Load(),
		ReloadErrors: m.reloadErrors.Load(),
	}
}

// Reset clears all metrics.
func (m *Metrics) Reset() {
	m.tickCount.Store(0)
	m.tickTotalNs.Store(0)
	m.tickMinNs.Store(1<<63 - 1)
	m.tickMaxNs.Store(0)
	m.lastTickNs.Store(0)
	m.overrunTicks.Store(0)
	m.renderCount.Store(0)
	m.renderTotalNs.Store(0)
	m.reloadCount.Store(0)
	m.reloadErrors.Store(0)
	m.startTime.Store(time.Now().UnixNano())
}

// MetricsSnapshot is a point-in-time view of metrics.
type MetricsSnapshot struct {
	Uptime       time.Duration
	TickCount    uint64
	AvgTickNs    int64
	MinTickNs    int64
	MaxTickNs    int64
	LastTickNs   int64
	OverrunTicks uint64
	RenderCount  uint64
	AvgRenderNs  int64
	ReloadCount  uint64
	ReloadErrors uint64
}

// OverrunRate returns the percentage of ticks that exceeded the tick rate.
func (s MetricsSnapshot) OverrunRate() float64 {
	if s.TickCount == 0 {
		return 0
	}
	return float64(s.OverrunTicks) / float64(s.TickCount) * 100
}

// Timer provides a simple way to measure elapsed time.
type Timer struct {
	start time.Time
}

// StartTimer creates a new timer.
func StartTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the elapsed time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// Stop returns the elapsed time and resets the timer.
func (t *Timer) Stop() time.Duration {
	elapsed := t.Elapsed()
	t.start = time.Now()
	return elapsed
}
