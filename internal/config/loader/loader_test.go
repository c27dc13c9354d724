package loader

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/featurebus/internal/value"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

type settingsTree struct {
	root    *value.Group
	enabled *value.Value[bool]
	level   *value.Value[int]
	factor  *value.Value[float64]
	label   *value.Value[string]
	style   *value.Value[string]
	tint    *value.Value[colorful.Color]
}

func newSettingsTree() *settingsTree {
	root := value.NewRoot("features")
	speed := root.Subgroup("speed")
	hud := root.Subgroup("hud")
	tint, _ := colorful.Hex("#000000")
	return &settingsTree{
		root:    root,
		enabled: speed.Bool("enabled", false),
		level:   speed.Int("level", 1, 0, 10),
		factor:  speed.Float("factor", 1, 0.5, 8),
		label:   hud.Text("label", "fps", 16),
		style:   hud.Choice("style", "compact", "compact", "full"),
		tint:    hud.Color("tint", tint),
	}
}

func (s *settingsTree) mutate(t *testing.T) {
	t.Helper()
	require.NoError(t, s.enabled.Set(true))
	require.NoError(t, s.level.Set(7))
	require.NoError(t, s.factor.Set(3.5))
	require.NoError(t, s.label.Set("frames"))
	require.NoError(t, s.style.Set("full"))
	tint, err := colorful.Hex("#ff8800")
	require.NoError(t, err)
	require.NoError(t, s.tint.Set(tint))
}

func TestSettingsRoundTrip(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			src := newSettingsTree()
			src.mutate(t)

			data, err := Marshal(format, value.Export(src.root).Children)
			require.NoError(t, err)

			records, err := Parse(format, "settings."+string(format), data)
			require.NoError(t, err)
			require.Len(t, records, 2)

			dst := newSettingsTree()
			require.NoError(t, dst.root.Import(records))

			assert.True(t, dst.enabled.Get())
			assert.Equal(t, 7, dst.level.Get())
			assert.Equal(t, 3.5, dst.factor.Get())
			assert.Equal(t, "frames", dst.label.Get())
			assert.Equal(t, "full", dst.style.Get())
			assert.Equal(t, "#ff8800", dst.tint.Get().Hex())
		})
	}
}

func TestSettingsRoundTrip_CreatesMissingEntries(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			src := newSettingsTree()
			src.mutate(t)

			data, err := Marshal(format, value.Export(src.root).Children)
			require.NoError(t, err)
			records, err := Parse(format, "settings", data)
			require.NoError(t, err)

			empty := value.NewRoot("features")
			require.NoError(t, empty.Import(records))

			level, err := empty.FindSetting("speed.level")
			require.NoError(t, err)
			assert.Equal(t, 7, level.Any())
			assert.Error(t, level.SetAny(11), "bounds survive the round trip")

			style, err := empty.FindSetting("hud.style")
			require.NoError(t, err)
			assert.Equal(t, []string{"compact", "full"}, value.Options(style))
		})
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	for _, format := range []Format{FormatTOML, FormatYAML, FormatJSON} {
		data := []byte("")
		if format == FormatJSON {
			data = []byte("{}")
		}
		records, err := Parse(format, "empty", data)
		require.NoError(t, err, format)
		assert.Empty(t, records, format)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
	}{
		{"toml syntax", FormatTOML, "settings = [\n"},
		{"yaml syntax", FormatYAML, "settings: [\n"},
		{"json syntax", FormatJSON, `{"settings": [`},
		{"toml not a list", FormatTOML, `settings = "x"`},
		{"yaml entry not a table", FormatYAML, "settings:\n  - 3\n"},
		{"json options not a list", FormatJSON, `{"settings":[{"type":"choice","name":"c","options":"a"}]}`},
		{"yaml min not a number", FormatYAML, "settings:\n  - {type: int, name: n, min: low}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.format, "bad", []byte(tt.data))
			require.Error(t, err)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, "bad", perr.Path)
		})
	}
}

func TestParseTOML_ErrorPosition(t *testing.T) {
	_, err := ParseTOML("features.toml", []byte("[[settings]]\nname = \n"))
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 2, perr.Line)
	assert.Contains(t, perr.Error(), "features.toml at line 2")
}

func TestParse_UnknownFormat(t *testing.T) {
	_, err := Parse("ini", "x", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Marshal("ini", nil)
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"a/settings.toml": FormatTOML,
		"settings.yaml":   FormatYAML,
		"settings.YML":    FormatYAML,
		"settings.json":   FormatJSON,
	}
	for path, want := range tests {
		got, err := FormatFromPath(path)
		require.NoError(t, err, path)
		assert.Equal(t, want, got, path)
	}

	_, err := FormatFromPath("settings.ini")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestSettingsFile_LoadFromMemFS(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/settings.yaml", `
settings:
  - type: group
    name: speed
    children:
      - {type: int, name: level, value: 4}
`)

	file, err := NewSettingsFileWithFS(memfs, "/settings.yaml", "")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, file.Format())

	records, err := file.Load()
	require.NoError(t, err)

	tree := newSettingsTree()
	require.NoError(t, tree.root.Import(records))
	assert.Equal(t, 4, tree.level.Get())
}

func TestSettingsFile_MissingFile(t *testing.T) {
	file, err := NewSettingsFileWithFS(NewMemFS(), "/nope.toml", "")
	require.NoError(t, err)

	records, err := file.Load()
	assert.NoError(t, err)
	assert.Nil(t, records)
}

func TestSettingsFile_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.toml")
	file, err := NewSettingsFile(path, "")
	require.NoError(t, err)

	src := newSettingsTree()
	src.mutate(t)
	require.NoError(t, file.Save(value.Export(src.root).Children))

	_, err = os.Stat(path)
	require.NoError(t, err)

	records, err := file.Load()
	require.NoError(t, err)

	dst := newSettingsTree()
	require.NoError(t, dst.root.Import(records))
	assert.Equal(t, 7, dst.level.Get())
	assert.Equal(t, "full", dst.style.Get())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file removed after rename")
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[log]
level = "debug"

[loop]
tickRate = "20ms"
ticks = 100
`)

	loader := NewTOMLLoaderWithFS(memfs, "/config.toml")
	config, err := loader.Load()
	require.NoError(t, err)

	level, ok := getByPath(config, "log.level")
	assert.True(t, ok)
	assert.Equal(t, "debug", level)

	ticks, ok := getByPath(config, "loop.ticks")
	assert.True(t, ok)
	assert.Equal(t, int64(100), ticks)
}

func TestTOMLLoader_MissingFile(t *testing.T) {
	loader := NewTOMLLoaderWithFS(NewMemFS(), "/nope.toml")
	config, err := loader.Load()
	assert.NoError(t, err)
	assert.Nil(t, config)
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":  map[string]any{"level": "info", "file": "a.log"},
		"loop": map[string]any{"ticks": int64(10)},
	}
	src := map[string]any{
		"log":      map[string]any{"level": "debug"},
		"settings": map[string]any{"watch": true},
	}

	merged := DeepMerge(dst, src)

	level, _ := getByPath(merged, "log.level")
	file, _ := getByPath(merged, "log.file")
	watch, _ := getByPath(merged, "settings.watch")
	assert.Equal(t, "debug", level)
	assert.Equal(t, "a.log", file)
	assert.Equal(t, true, watch)

	assert.NotNil(t, DeepMerge(nil, nil))
}

func getByPath(data map[string]any, path string) (any, bool) {
	var current any = data
	for _, part := range splitPath(path) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func splitPath(path string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == '.' {
			parts = append(parts, path[start:i])
			start = i + 1
		}
	}
	return append(parts, path[start:])
}
