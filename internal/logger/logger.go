// Package logger provides the process-wide structured logger.
//
// Packages log through the helpers in this package (Debug, Info, Warn, Error)
// or accept a zerolog.Logger explicitly. Until Init is called, Log discards
// everything so library code and tests stay quiet by default.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	// Log is the global logger instance.
	Log = zerolog.Nop()

	// fileWriter is the rotating file output, if enabled.
	fileWriter *lumberjack.Logger
	fileMu     sync.Mutex
)

// FileConfig configures rotating file output.
type FileConfig struct {
	// Path is the log file path. Empty disables file logging.
	Path string

	// MaxSizeMB is the size at which the file is rotated. Defaults to 20.
	MaxSizeMB int

	// MaxBackups is the number of rotated files kept. Defaults to 3.
	MaxBackups int
}

func (c FileConfig) maxSize() int {
	if c.MaxSizeMB <= 0 {
		return 20
	}
	return c.MaxSizeMB
}

func (c FileConfig) maxBackups() int {
	if c.MaxBackups <= 0 {
		return 3
	}
	return c.MaxBackups
}

// ParseLevel parses a level name, falling back to info for unknown names.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Init configures console logging on stderr at the given level.
func Init(level string) {
	Log = New(os.Stderr, ParseLevel(level))
}

// New returns a logger writing human-readable lines to w.
// Colour is only used when w is a terminal.
func New(w io.Writer, level zerolog.Level) zerolog.Logger {
	return zerolog.New(consoleWriter(w)).Level(level).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !term.IsTerminal(int(f.Fd()))
	}
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}
}

// InitWithFile configures console logging plus JSON lines written to a
// rotating file. A zero FileConfig behaves like Init.
func InitWithFile(level string, cfg FileConfig) error {
	if cfg.Path == "" {
		Init(level)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	fileMu.Lock()
	defer fileMu.Unlock()

	fileWriter = &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.maxSize(),
		MaxBackups: cfg.maxBackups(),
		LocalTime:  true,
	}

	lvl := ParseLevel(level)
	Log = zerolog.New(zerolog.MultiLevelWriter(consoleWriter(os.Stderr), fileWriter)).
		Level(lvl).
		With().
		Timestamp().
		Logger()
	return nil
}

// Close closes the file writer if one is open.
func Close() error {
	fileMu.Lock()
	defer fileMu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

// Debug starts a debug-level entry on the global logger.
func Debug() *zerolog.Event { return Log.Debug() }

// Info starts an info-level entry on the global logger.
func Info() *zerolog.Event { return Log.Info() }

// Warn starts a warn-level entry on the global logger.
func Warn() *zerolog.Event { return Log.Warn() }

// Error starts an error-level entry on the global logger.
func Error() *zerolog.Event { return Log.Error() }

// With returns a child of the global logger carrying a component field.
func With(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}
