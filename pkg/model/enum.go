package model

import (
	"fmt"
	"strings"
)

// EnumValue is one symbol↔ordinal pair of an enum declaration.
type EnumValue struct {
	// Symbol is the mnemonic token exchanged on the wire.
	Symbol string

	// Ordinal is the declared numeric value. Ordinals need not be
	// contiguous or ordered.
	Ordinal int
}

// Enum is the descriptor for an enumerated value. The on-wire form is the
// mnemonic symbol, not the ordinal; decoding compares case-insensitively per
// instrument convention.
type Enum struct {
	name      string
	values    []EnumValue
	bySymbol  map[string]EnumValue // keyed by upper-cased symbol
	byOrdinal map[int]EnumValue
}

// NewEnum creates an enum descriptor. Both symbols and ordinals must be
// unique; symbols are compared case-insensitively.
func NewEnum(name string, values []EnumValue) (*Enum, error) {
	e := &Enum{
		name:      name,
		values:    make([]EnumValue, 0, len(values)),
		bySymbol:  make(map[string]EnumValue, len(values)),
		byOrdinal: make(map[int]EnumValue, len(values)),
	}
	for _, v := range values {
		key := strings.ToUpper(v.Symbol)
		if _, exists := e.bySymbol[key]; exists {
			return nil, fmt.Errorf("enum %s: duplicate symbol %q", name, v.Symbol)
		}
		if _, exists := e.byOrdinal[v.Ordinal]; exists {
			return nil, fmt.Errorf("enum %s: duplicate ordinal %d", name, v.Ordinal)
		}
		e.bySymbol[key] = v
		e.byOrdinal[v.Ordinal] = v
		e.values = append(e.values, v)
	}
	return e, nil
}

// TypeName returns the declared enum name.
func (e *Enum) TypeName() string {
	return e.name
}

// Values returns the symbol↔ordinal pairs in declaration order.
func (e *Enum) Values() []EnumValue {
	out := make([]EnumValue, len(e.values))
	copy(out, e.values)
	return out
}

// Has reports whether symbol is in the enum's domain (case-insensitive).
func (e *Enum) Has(symbol string) bool {
	_, ok := e.bySymbol[strings.ToUpper(symbol)]
	return ok
}

// Ordinal returns the ordinal for a symbol.
func (e *Enum) Ordinal(symbol string) (int, error) {
	v, ok := e.bySymbol[strings.ToUpper(symbol)]
	if !ok {
		return 0, fmt.Errorf("%w: enum %s has no symbol %q", ErrEnumDomain, e.name, symbol)
	}
	return v.Ordinal, nil
}

// Symbol returns the canonical symbol for an ordinal.
func (e *Enum) Symbol(ordinal int) (string, error) {
	v, ok := e.byOrdinal[ordinal]
	if !ok {
		return "", fmt.Errorf("%w: enum %s has no ordinal %d", ErrEnumDomain, e.name, ordinal)
	}
	return v.Symbol, nil
}

// Encode converts a symbol string or integer ordinal to the wire token.
func (e *Enum) Encode(value any) (string, error) {
	switch v := value.(type) {
	case string:
		sym, ok := e.bySymbol[strings.ToUpper(v)]
		if !ok {
			return "", fmt.Errorf("%w: enum %s has no symbol %q", ErrEnumDomain, e.name, v)
		}
		return sym.Symbol, nil
	default:
		n, ok := toInt64(value)
		if !ok {
			return "", fmt.Errorf("%w: cannot map %T into enum %s", ErrValueType, value, e.name)
		}
		return e.Symbol(int(n))
	}
}

// Decode converts a wire token to the canonical symbol, case-insensitively.
func (e *Enum) Decode(text string) (any, error) {
	text = stripQuotes(strings.TrimSpace(text))
	v, ok := e.bySymbol[strings.ToUpper(text)]
	if !ok {
		return nil, fmt.Errorf("%w: enum %s has no token %q", ErrEnumDomain, e.name, text)
	}
	return v.Symbol, nil
}

// FixedWidth returns the common symbol width when all symbols share one, or
// 0 otherwise. Enums with uniform-width symbols may be used as elements of a
// zero-delimiter list.
func (e *Enum) FixedWidth() int {
	if len(e.values) == 0 {
		return 0
	}
	width := len(e.values[0].Symbol)
	for _, v := range e.values[1:] {
		if len(v.Symbol) != width {
			return 0
		}
	}
	return width
}
