package loader

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/featurebus/internal/value"
)

// TOMLLoader reads the runtime configuration file into a nested map.
type TOMLLoader struct {
	fs   FileSystem
	path string
}

// NewTOMLLoader creates a loader for path on the OS file system.
func NewTOMLLoader(path string) *TOMLLoader {
	return NewTOMLLoaderWithFS(DefaultFS(), path)
}

// NewTOMLLoaderWithFS creates a loader for path on fsys.
func NewTOMLLoaderWithFS(fsys FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fsys, path: path}
}

// Load reads and decodes the file. A missing file yields nil, nil so
// callers fall back to defaults.
func (l *TOMLLoader) Load() (map[string]any, error) {
	data, err := l.fs.ReadFile(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return parseTOMLMap(l.path, data)
}

// parseTOMLMap decodes TOML into a map. Decode errors carry their
// position.
func parseTOMLMap(source string, data []byte) (map[string]any, error) {
	var doc map[string]any
	err := toml.Unmarshal(data, &doc)
	if err == nil {
		return doc, nil
	}
	perr := &ParseError{Path: source, Message: err.Error(), Err: err}
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		perr.Line, perr.Column = derr.Position()
	}
	return nil, perr
}

// ParseTOML decodes a TOML settings document:
//
//	[[settings]]
//	type = "toggle"
//	name = "speed"
//
//	  [[settings.children]]
//	  type = "bool"
//	  name = "enabled"
//	  value = true
func ParseTOML(source string, data []byte) ([]value.Record, error) {
	doc, err := parseTOMLMap(source, data)
	if err != nil {
		return nil, err
	}
	return recordsFromTree(source, doc)
}

// MarshalTOML encodes records as a TOML settings document.
func MarshalTOML(records []value.Record) ([]byte, error) {
	data, err := toml.Marshal(treeFromRecords(records))
	if err != nil {
		return nil, fmt.Errorf("encoding settings as toml: %w", err)
	}
	return data, nil
}

// DeepMerge merges src into dst and returns dst. Nested maps present on
// both sides are merged key by key; any other src value replaces dst's.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for key, v := range src {
		if sub, ok := v.(map[string]any); ok {
			if into, ok := dst[key].(map[string]any); ok {
				dst[key] = DeepMerge(into, sub)
				continue
			}
		}
		dst[key] = v
	}
	return dst
}
