// Package loader reads and writes configuration and persisted settings.
//
// Runtime configuration is loaded into nested maps from TOML files and
// environment variables and merged with DeepMerge. Settings trees are
// persisted as a document with a top-level "settings" list of
// value.Record entries, in TOML, YAML or JSON.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/featurebus/internal/value"
)

// ErrUnknownFormat indicates a settings format that has no codec.
var ErrUnknownFormat = errors.New("unknown settings format")

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a settings file format.
type Format string

// Supported settings formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat returns the format with the given name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "toml":
		return FormatTOML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Parse decodes a settings document. source names the input in errors.
func Parse(format Format, source string, data []byte) ([]value.Record, error) {
	switch format {
	case FormatTOML:
		return ParseTOML(source, data)
	case FormatYAML:
		return ParseYAML(source, data)
	case FormatJSON:
		return ParseJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Marshal encodes records as a settings document.
func Marshal(format Format, records []value.Record) ([]byte, error) {
	switch format {
	case FormatTOML:
		return MarshalTOML(records)
	case FormatYAML:
		return MarshalYAML(records)
	case FormatJSON:
		return MarshalJSON(records)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// SettingsFile reads and writes one persisted settings document.
type SettingsFile struct {
	fs     FileSystem
	path   string
	format Format
}

// NewSettingsFile creates a settings file. An empty format is derived from
// the path's extension.
func NewSettingsFile(path string, format Format) (*SettingsFile, error) {
	return NewSettingsFileWithFS(DefaultFS(), path, format)
}

// NewSettingsFileWithFS creates a settings file on a custom file system.
func NewSettingsFileWithFS(fsys FileSystem, path string, format Format) (*SettingsFile, error) {
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, err
		}
		format = f
	}
	return &SettingsFile{fs: fsys, path: path, format: format}, nil
}

// Path returns the file path.
func (f *SettingsFile) Path() string {
	return f.path
}

// Format returns the file format.
func (f *SettingsFile) Format() Format {
	return f.format
}

// Load reads the records in the file.
// Returns nil, nil if the file doesn't exist (not an error).
func (f *SettingsFile) Load() ([]value.Record, error) {
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading settings file %s: %w", f.path, err)
	}
	return Parse(f.format, f.path, data)
}

// Save writes records to the file, replacing it atomically.
// Save always writes to the OS file system.
func (f *SettingsFile) Save(records []value.Record) error {
	data, err := Marshal(f.format, records)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".settings-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing settings: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing settings file: %w", err)
	}
	return nil
}
