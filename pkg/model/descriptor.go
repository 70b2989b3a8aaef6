package model

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Descriptor errors.
var (
	// ErrValueType indicates a value incompatible with the descriptor.
	ErrValueType = errors.New("value incompatible with type descriptor")

	// ErrEnumDomain indicates a symbol or token outside an enum's domain.
	ErrEnumDomain = errors.New("value outside enum domain")

	// ErrListLength indicates a sequence longer than the declared maximum.
	ErrListLength = errors.New("list exceeds maximum dimension")

	// ErrListDecode indicates malformed list wire text.
	ErrListDecode = errors.New("malformed list text")
)

// Descriptor describes the type of an attribute or command value and owns
// the bidirectional value codec for it.
//
// The variant set is closed: Scalar, Enum and ListParameter are the only
// implementations.
type Descriptor interface {
	// TypeName returns the declared type name, or "" for unnamed scalars.
	TypeName() string

	// Encode converts a typed value to its wire text.
	Encode(value any) (string, error)

	// Decode converts wire text to a typed value.
	Decode(text string) (any, error)
}

// ScalarKind identifies a scalar value kind.
type ScalarKind uint8

const (
	KindInt ScalarKind = iota
	KindFloat
	KindBool
	KindString
)

// String returns the scalar kind name as used in declarations.
func (k ScalarKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "str"
	default:
		return "unknown"
	}
}

// ScalarKindByName maps a declaration kind name to a ScalarKind.
func ScalarKindByName(name string) (ScalarKind, bool) {
	switch name {
	case "int":
		return KindInt, true
	case "float":
		return KindFloat, true
	case "bool":
		return KindBool, true
	case "str", "string":
		return KindString, true
	default:
		return 0, false
	}
}

// Scalar is the descriptor for a plain scalar value.
type Scalar struct {
	kind ScalarKind
}

// NewScalar creates a scalar descriptor of the given kind.
func NewScalar(kind ScalarKind) *Scalar {
	return &Scalar{kind: kind}
}

// Kind returns the scalar kind.
func (s *Scalar) Kind() ScalarKind {
	return s.kind
}

// TypeName returns the empty string, as scalars are unnamed.
func (s *Scalar) TypeName() string {
	return ""
}

// Encode converts a scalar value to instrument wire text.
// Booleans become ON/OFF, floats use %.6g, strings are double-quoted.
func (s *Scalar) Encode(value any) (string, error) {
	switch s.kind {
	case KindInt:
		n, ok := toInt64(value)
		if !ok {
			return "", fmt.Errorf("%w: expected integer, got %T", ErrValueType, value)
		}
		return strconv.FormatInt(n, 10), nil
	case KindFloat:
		f, ok := toFloat64(value)
		if !ok {
			return "", fmt.Errorf("%w: expected number, got %T", ErrValueType, value)
		}
		return strconv.FormatFloat(f, 'g', 6, 64), nil
	case KindBool:
		b, ok := value.(bool)
		if !ok {
			return "", fmt.Errorf("%w: expected bool, got %T", ErrValueType, value)
		}
		if b {
			return "ON", nil
		}
		return "OFF", nil
	case KindString:
		str, ok := value.(string)
		if !ok {
			return "", fmt.Errorf("%w: expected string, got %T", ErrValueType, value)
		}
		return `"` + str + `"`, nil
	default:
		return "", fmt.Errorf("%w: unknown scalar kind %d", ErrValueType, s.kind)
	}
}

// Decode converts instrument wire text to a scalar value.
// Quotes are stripped first; booleans accept the usual instrument spellings
// (1/ON/YES/TRUE/T/Y and their negatives) case-insensitively.
func (s *Scalar) Decode(text string) (any, error) {
	text = stripQuotes(strings.TrimSpace(text))
	switch s.kind {
	case KindInt:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
		// Instruments commonly report integers in float notation (2.5E+01).
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrValueType, text)
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("%w: %q has a fractional remainder", ErrValueType, text)
		}
		return int64(f), nil
	case KindFloat:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", ErrValueType, text)
		}
		return f, nil
	case KindBool:
		return ParseOnOff(text), nil
	case KindString:
		return text, nil
	default:
		return nil, fmt.Errorf("%w: unknown scalar kind %d", ErrValueType, s.kind)
	}
}

// ParseOnOff converts an instrument boolean spelling to a bool.
func ParseOnOff(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "yes", "on", "true", "t", "y":
		return true
	default:
		return false
	}
}

// FixedWidth returns the wire width of one encoded element for descriptors
// usable inside a zero-delimiter list, or 0 when the width is not fixed.
// Only booleans have a fixed width (a single 0/1 digit in bit strings).
func (s *Scalar) FixedWidth() int {
	if s.kind == KindBool {
		return 1
	}
	return 0
}

// stripQuotes removes one layer of single or double quotes.
func stripQuotes(text string) string {
	if len(text) >= 2 {
		if (text[0] == '"' && text[len(text)-1] == '"') ||
			(text[0] == '\'' && text[len(text)-1] == '\'') {
			return text[1 : len(text)-1]
		}
	}
	return text
}

// Numeric conversion helpers shared by the descriptors and validators.

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat64(v any) (float64, bool) {
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// ToFloat64 converts any numeric value to float64.
func ToFloat64(v any) (float64, bool) {
	return toFloat64(v)
}

// IsInteger reports whether v is any integer type.
func IsInteger(v any) bool {
	_, ok := toInt64(v)
	return ok
}
