package loader

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// EnvLoader reads configuration overrides from prefixed environment
// variables. A variable is placed at the path given by its alias when it
// has one; otherwise the first word after the prefix names the section and
// the remaining words form a camelCase key, so FEATUREBUS_LOOP_TICK_RATE
// becomes loop.tickRate.
type EnvLoader struct {
	prefix  string
	aliases map[string]string // name without prefix -> config path
}

// NewEnvLoader creates a loader with the default aliases. The prefix
// includes its trailing underscore, e.g. "FEATUREBUS_".
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, map[string]string{
		"LOG_LEVEL": "log.level",
		"LOG_FILE":  "log.file",
		"TICK_RATE": "loop.tickRate",
		"TICKS":     "loop.ticks",
		"SETTINGS":  "settings.path",
		"WATCH":     "settings.watch",
	})
}

// NewEnvLoaderWithMapping creates a loader with custom aliases, keyed by
// variable name without the prefix.
func NewEnvLoaderWithMapping(prefix string, aliases map[string]string) *EnvLoader {
	if aliases == nil {
		aliases = make(map[string]string)
	}
	return &EnvLoader{prefix: prefix, aliases: aliases}
}

// AddMapping aliases the variable prefix+name to a config path. name may
// be given with or without the prefix.
func (l *EnvLoader) AddMapping(name, path string) {
	l.aliases[strings.TrimPrefix(name, l.prefix)] = path
}

// RemoveMapping drops an alias; the variable falls back to path conversion.
// name may be given with or without the prefix.
func (l *EnvLoader) RemoveMapping(name string) {
	delete(l.aliases, strings.TrimPrefix(name, l.prefix))
}

// Load returns the overrides as a nested map. Empty values are kept.
// Aliased variables are applied last and win over a converted name that
// lands on the same path.
func (l *EnvLoader) Load() (map[string]any, error) {
	var plain, aliased []string
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		name, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		vars[name] = val
		if _, ok := l.aliases[strings.TrimPrefix(name, l.prefix)]; ok {
			aliased = append(aliased, name)
		} else {
			plain = append(plain, name)
		}
	}
	sort.Strings(plain)
	sort.Strings(aliased)

	out := make(map[string]any)
	for _, name := range append(plain, aliased...) {
		setPath(out, l.envToPath(name), l.parseValue(vars[name]))
	}
	return out, nil
}

// envToPath maps a variable name to its config path.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	if path, ok := l.aliases[name]; ok {
		return path
	}

	words := strings.FieldsFunc(strings.ToLower(name), func(r rune) bool { return r == '_' })
	if len(words) == 0 {
		return ""
	}
	if len(words) == 1 {
		return words[0]
	}

	var key strings.Builder
	key.WriteString(words[1])
	for _, w := range words[2:] {
		key.WriteString(strings.ToUpper(w[:1]))
		key.WriteString(w[1:])
	}
	return words[0] + "." + key.String()
}

// parseValue types a raw value: booleans, integers, decimals and JSON
// arrays or objects are recognized; anything else, durations included,
// stays a string for the config decoder.
func (l *EnvLoader) parseValue(s string) any {
	switch strings.ToLower(s) {
	case "":
		return s
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if strings.ContainsRune(s, '.') {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	if (s[0] == '[' || s[0] == '{') && gjson.Valid(s) {
		return gjson.Parse(s).Value()
	}
	return s
}

// setPath stores v at a dot-separated path, creating or replacing
// intermediate maps as needed.
func setPath(m map[string]any, path string, v any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		m[head] = v
		return
	}
	child, ok := m[head].(map[string]any)
	if !ok {
		child = make(map[string]any)
		m[head] = child
	}
	setPath(child, rest, v)
}
