package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// NewBool creates a detached boolean setting.
func NewBool(name string, def bool) *Value[bool] {
	return must(newBool(name, def))
}

// NewInt creates a detached integer setting bounded by [min, max].
// It panics if def is out of range.
func NewInt(name string, def, min, max int) *Value[int] {
	return must(newInt(name, def, boundInt(min), boundInt(max)))
}

// NewFloat creates a detached float setting bounded by [min, max].
// It panics if def is out of range.
func NewFloat(name string, def, min, max float64) *Value[float64] {
	return must(newFloat(name, def, &min, &max))
}

// NewText creates a detached text setting. maxLength counts grapheme
// clusters; zero means unlimited.
func NewText(name, def string, maxLength int) *Value[string] {
	return must(newText(name, def, maxLength))
}

// NewChoice creates a detached setting restricted to options.
// It panics if options is empty or def is not one of them.
func NewChoice(name, def string, options ...string) *Value[string] {
	return must(newChoice(name, def, options))
}

// NewColor creates a detached color setting.
func NewColor(name string, def colorful.Color) *Value[colorful.Color] {
	return must(newColor(name, def))
}

func must[T comparable](v *Value[T], err error) *Value[T] {
	if err != nil {
		panic(fmt.Errorf("value: %w", err))
	}
	return v
}

func boundInt(n int) *float64 {
	f := float64(n)
	return &f
}

func newBool(name string, def bool) (*Value[bool], error) {
	return newValue(name, KindBool, def, &Value[bool]{
		coerce: toBool,
		format: strconv.FormatBool,
	})
}

func newInt(name string, def int, min, max *float64) (*Value[int], error) {
	lo, hi := math.MinInt, math.MaxInt
	if min != nil {
		lo = int(*min)
	}
	if max != nil {
		hi = int(*max)
	}
	if lo > hi {
		return nil, fmt.Errorf("%s: min %d greater than max %d: %w", name, lo, hi, ErrOutOfRange)
	}
	return newValue(name, KindInt, def, &Value[int]{
		check: func(n int) (int, error) {
			if n < lo || n > hi {
				return n, fmt.Errorf("%w [%d, %d]", ErrOutOfRange, lo, hi)
			}
			return n, nil
		},
		coerce: toInt,
		format: strconv.Itoa,
		meta:   Record{Min: min, Max: max},
	})
}

func newFloat(name string, def float64, min, max *float64) (*Value[float64], error) {
	lo, hi := math.Inf(-1), math.Inf(1)
	if min != nil {
		lo = *min
	}
	if max != nil {
		hi = *max
	}
	if lo > hi {
		return nil, fmt.Errorf("%s: min %g greater than max %g: %w", name, lo, hi, ErrOutOfRange)
	}
	return newValue(name, KindFloat, def, &Value[float64]{
		check: func(f float64) (float64, error) {
			if math.IsNaN(f) || f < lo || f > hi {
				return f, fmt.Errorf("%w [%g, %g]", ErrOutOfRange, lo, hi)
			}
			return f, nil
		},
		coerce: toFloat,
		format: func(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) },
		meta:   Record{Min: min, Max: max},
	})
}

func newText(name, def string, maxLength int) (*Value[string], error) {
	return newValue(name, KindText, def, &Value[string]{
		check: func(s string) (string, error) {
			if maxLength > 0 {
				if n := uniseg.GraphemeClusterCount(s); n > maxLength {
					return s, fmt.Errorf("%w: %d > %d", ErrTooLong, n, maxLength)
				}
			}
			return s, nil
		},
		coerce: toString,
		format: func(s string) string { return s },
		meta:   Record{MaxLength: maxLength},
	})
}

func newChoice(name, def string, options []string) (*Value[string], error) {
	if len(options) == 0 {
		return nil, fmt.Errorf("%s: no options: %w", name, ErrInvalidOption)
	}
	opts := append([]string(nil), options...)
	return newValue(name, KindChoice, def, &Value[string]{
		check: func(s string) (string, error) {
			for _, opt := range opts {
				if strings.EqualFold(opt, s) {
					return opt, nil
				}
			}
			return s, fmt.Errorf("%w (valid: %s)", ErrInvalidOption, strings.Join(opts, ", "))
		},
		coerce: toString,
		format: func(s string) string { return s },
		meta:   Record{Options: opts},
	})
}

func newColor(name string, def colorful.Color) (*Value[colorful.Color], error) {
	return newValue(name, KindColor, def, &Value[colorful.Color]{
		check: func(c colorful.Color) (colorful.Color, error) {
			if !c.IsValid() {
				return c, ErrOutOfRange
			}
			return c, nil
		},
		coerce: toColor,
		format: func(c colorful.Color) string { return c.Hex() },
		export: func(c colorful.Color) any { return c.Hex() },
	})
}

// Options returns the options of a choice setting, or nil.
func Options(s Setting) []string {
	return s.Record().Options
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return false, ErrTypeMismatch
		}
		return b, nil
	default:
		return false, ErrTypeMismatch
	}
}

func toInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int8:
		return int(x), nil
	case int16:
		return int(x), nil
	case int32:
		return int(x), nil
	case int64:
		return int(x), nil
	case uint8:
		return int(x), nil
	case uint16:
		return int(x), nil
	case uint32:
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, ErrOutOfRange
		}
		return int(x), nil
	case float32:
		return toInt(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) {
			return 0, ErrTypeMismatch
		}
		return int(x), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, ErrTypeMismatch
		}
		return n, nil
	default:
		return 0, ErrTypeMismatch
	}
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, ErrTypeMismatch
		}
		return f, nil
	default:
		n, err := toInt(v)
		if err != nil {
			return 0, err
		}
		return float64(n), nil
	}
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case fmt.Stringer:
		return x.String(), nil
	default:
		return "", ErrTypeMismatch
	}
}

func toColor(v any) (colorful.Color, error) {
	switch x := v.(type) {
	case colorful.Color:
		return x, nil
	case string:
		c, err := colorful.Hex(strings.TrimSpace(x))
		if err != nil {
			return colorful.Color{}, ErrTypeMismatch
		}
		return c, nil
	default:
		return colorful.Color{}, ErrTypeMismatch
	}
}
