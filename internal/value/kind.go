package value

import "strings"

// Kind is the data type of a setting.
type Kind uint8

const (
	// KindBool is a boolean.
	KindBool Kind = iota
	// KindInt is a bounded integer.
	KindInt
	// KindFloat is a bounded floating-point number.
	KindFloat
	// KindText is free text with an optional maximum length.
	KindText
	// KindChoice is one of a fixed list of strings.
	KindChoice
	// KindColor is an RGB color written as a hex string.
	KindColor
)

// String returns the kind name used in records.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindText:
		return "text"
	case KindChoice:
		return "choice"
	case KindColor:
		return "color"
	default:
		return "unknown"
	}
}

// ParseKind returns the kind with the given name.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bool", "boolean":
		return KindBool, true
	case "int", "integer":
		return KindInt, true
	case "float", "number":
		return KindFloat, true
	case "text", "string":
		return KindText, true
	case "choice", "enum":
		return KindChoice, true
	case "color":
		return KindColor, true
	default:
		return 0, false
	}
}
