package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWatcher(t *testing.T, opts ...Option) *Watcher {
	t.Helper()
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	w, err := New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

// collector records events delivered to a handler.
type collector struct {
	mu     sync.Mutex
	events []Event
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func (c *collector) has(op Operation) bool {
	for _, e := range c.snapshot() {
		if e.Op == op {
			return true
		}
	}
	return false
}

func TestNew_Defaults(t *testing.T) {
	w := newTestWatcher(t)
	assert.Equal(t, 100*time.Millisecond, w.debounce)
	assert.False(t, w.IsRunning())
}

func TestNew_WithDebounce(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(0))
	assert.Equal(t, time.Duration(0), w.debounce)

	w = newTestWatcher(t, WithDebounce(-time.Second))
	assert.Equal(t, 100*time.Millisecond, w.debounce, "negative debounce ignored")
}

func TestOperation_String(t *testing.T) {
	tests := []struct {
		op   Operation
		want string
	}{
		{OpWrite, "write"},
		{OpCreate, "create"},
		{OpRemove, "remove"},
		{OpRename, "rename"},
		{Operation(99), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.op.String())
	}
}

func TestWatcher_WatchAndUnwatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.toml")
	b := filepath.Join(dir, "b.toml")

	w := newTestWatcher(t)
	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(b))
	require.NoError(t, w.Watch(a), "watching twice is a no-op")

	assert.ElementsMatch(t, []string{a, b}, w.WatchedFiles())
	assert.Equal(t, 2, w.dirs[dir])

	require.NoError(t, w.Unwatch(a))
	assert.Equal(t, []string{b}, w.WatchedFiles())
	assert.Equal(t, 1, w.dirs[dir])

	require.NoError(t, w.Unwatch(b))
	assert.Empty(t, w.WatchedFiles())
	assert.NotContains(t, w.dirs, dir)

	assert.NoError(t, w.Unwatch(b), "unwatching an unknown file is a no-op")
}

func TestWatcher_WatchMissingDirectory(t *testing.T) {
	w := newTestWatcher(t)
	err := w.Watch(filepath.Join(t.TempDir(), "missing", "settings.toml"))
	assert.Error(t, err)
}

func TestWatcher_StartStop(t *testing.T) {
	w := newTestWatcher(t)

	w.Start()
	assert.True(t, w.IsRunning())
	w.Start()

	w.Stop()
	assert.False(t, w.IsRunning())
	w.Stop()
}

func TestWatcher_Closed(t *testing.T) {
	w, err := New(WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	assert.ErrorIs(t, w.Watch(filepath.Join(t.TempDir(), "x.toml")), ErrClosed)
	w.Start()
	assert.False(t, w.IsRunning())
}

func TestWatcher_DetectsFileModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := newTestWatcher(t, WithDebounce(0))
	var c collector
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o644))

	require.Eventually(t, func() bool { return c.has(OpWrite) }, 2*time.Second, 10*time.Millisecond)
	for _, e := range c.snapshot() {
		assert.Equal(t, path, e.Path)
	}
}

func TestWatcher_DetectsFileCreationAndDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")

	w := newTestWatcher(t, WithDebounce(0))
	var c collector
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	w.Start()

	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))
	require.Eventually(t, func() bool { return c.has(OpCreate) }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool { return c.has(OpRemove) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	other := filepath.Join(dir, "other.toml")

	w := newTestWatcher(t, WithDebounce(0))
	var c collector
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	w.Start()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.Eventually(t, func() bool { return len(c.snapshot()) > 0 }, 2*time.Second, 10*time.Millisecond)
	for _, e := range c.snapshot() {
		assert.Equal(t, path, e.Path)
	}
}

func TestWatcher_RenameOverWatchedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o644))

	w := newTestWatcher(t, WithDebounce(0))
	var c collector
	w.OnChange(c.handle)
	require.NoError(t, w.Watch(path))
	w.Start()

	tmp := filepath.Join(dir, ".settings-tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("b"), 0o644))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool { return c.has(OpCreate) }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte("0"), 0o644))

	w := newTestWatcher(t, WithDebounce(50*time.Millisecond))
	var calls atomic.Int32
	w.OnChange(func(Event) { calls.Add(1) })
	require.NoError(t, w.Watch(path))
	w.Start()

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte{byte('1' + i)}, 0o644))
	}

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
	time.Sleep(200 * time.Millisecond)
	assert.Less(t, calls.Load(), int32(5), "rapid writes are coalesced")
}

func TestWatcher_QueueEventCoalescing(t *testing.T) {
	w := newTestWatcher(t)
	now := time.Now()

	w.queueEvent(Event{Path: "/a", Op: OpCreate, Time: now})
	w.queueEvent(Event{Path: "/a", Op: OpWrite, Time: now.Add(time.Millisecond)})
	assert.Equal(t, OpCreate, w.pending["/a"].Op)
	assert.Equal(t, now.Add(time.Millisecond), w.pending["/a"].Time)

	w.queueEvent(Event{Path: "/a", Op: OpRemove, Time: now})
	assert.Equal(t, OpRemove, w.pending["/a"].Op)

	w.queueEvent(Event{Path: "/b", Op: OpWrite, Time: now})
	w.queueEvent(Event{Path: "/b", Op: OpWrite, Time: now})
	assert.Equal(t, OpWrite, w.pending["/b"].Op)
}

func TestWatcher_ProcessPendingEvents(t *testing.T) {
	w := newTestWatcher(t, WithDebounce(time.Second))
	var c collector
	w.OnChange(c.handle)

	w.queueEvent(Event{Path: "/old", Op: OpWrite, Time: time.Now().Add(-2 * time.Second)})
	w.queueEvent(Event{Path: "/new", Op: OpWrite, Time: time.Now()})
	w.processPendingEvents()

	got := c.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "/old", got[0].Path)
	assert.Contains(t, w.pending, "/new")
}

func TestWatcher_HandlerPanicIsolated(t *testing.T) {
	w := newTestWatcher(t)
	var second atomic.Bool
	w.OnChange(func(Event) { panic("boom") })
	w.OnChange(func(Event) { second.Store(true) })

	assert.NotPanics(t, func() { w.emitEvent(Event{Path: "/a", Op: OpWrite}) })
	assert.True(t, second.Load())
}
