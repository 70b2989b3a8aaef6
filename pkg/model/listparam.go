package model

import (
	"fmt"
	"strings"
)

// ListParameter is the descriptor for a bounded ordered sequence of a single
// element type. Elements are joined with the declared delimiter on the wire;
// an empty delimiter means direct concatenation of fixed-width elements (for
// example a bit string of booleans, one digit per element).
type ListParameter struct {
	name      string
	element   Descriptor
	maxDimX   int
	delimiter string
}

// NewListParameter creates a list descriptor. The element type must be a
// Scalar or Enum; with an empty delimiter it must also have a fixed wire
// width.
func NewListParameter(name string, element Descriptor, maxDimX int, delimiter string) (*ListParameter, error) {
	switch element.(type) {
	case *Scalar, *Enum:
	default:
		return nil, fmt.Errorf("list %s: element type must be scalar or enum, got %T", name, element)
	}
	if maxDimX < 1 {
		return nil, fmt.Errorf("list %s: max dimension must be positive, got %d", name, maxDimX)
	}
	lp := &ListParameter{
		name:      name,
		element:   element,
		maxDimX:   maxDimX,
		delimiter: delimiter,
	}
	if delimiter == "" && lp.elementWidth() == 0 {
		return nil, fmt.Errorf("list %s: empty delimiter requires a fixed-width element type", name)
	}
	return lp, nil
}

// TypeName returns the declared list name.
func (l *ListParameter) TypeName() string {
	return l.name
}

// Element returns the element descriptor.
func (l *ListParameter) Element() Descriptor {
	return l.element
}

// MaxDimX returns the maximum number of encoded elements.
func (l *ListParameter) MaxDimX() int {
	return l.maxDimX
}

// Delimiter returns the wire joining delimiter.
func (l *ListParameter) Delimiter() string {
	return l.delimiter
}

// Encode converts a sequence to wire text, joining each element's own
// encoding with the delimiter.
func (l *ListParameter) Encode(value any) (string, error) {
	seq, ok := toSequence(value)
	if !ok {
		return "", fmt.Errorf("%w: expected sequence for list %s, got %T", ErrValueType, l.name, value)
	}
	if len(seq) > l.maxDimX {
		return "", fmt.Errorf("%w: list %s allows %d elements, got %d",
			ErrListLength, l.name, l.maxDimX, len(seq))
	}
	parts := make([]string, len(seq))
	for i, elem := range seq {
		text, err := l.encodeElement(elem)
		if err != nil {
			return "", fmt.Errorf("list %s element %d: %w", l.name, i, err)
		}
		parts[i] = text
	}
	return strings.Join(parts, l.delimiter), nil
}

// Decode splits wire text on the delimiter (or into fixed-width chunks for
// an empty delimiter) and decodes each piece with the element descriptor.
func (l *ListParameter) Decode(text string) (any, error) {
	text = strings.TrimSpace(text)
	var pieces []string
	if l.delimiter == "" {
		width := l.elementWidth()
		if len(text)%width != 0 {
			return nil, fmt.Errorf("%w: list %s text length %d is not a multiple of element width %d",
				ErrListDecode, l.name, len(text), width)
		}
		for i := 0; i < len(text); i += width {
			pieces = append(pieces, text[i:i+width])
		}
	} else if text != "" {
		pieces = strings.Split(text, l.delimiter)
	}
	if len(pieces) > l.maxDimX {
		return nil, fmt.Errorf("%w: list %s allows %d elements, got %d",
			ErrListDecode, l.name, l.maxDimX, len(pieces))
	}
	out := make([]any, len(pieces))
	for i, piece := range pieces {
		v, err := l.decodeElement(strings.TrimSpace(piece))
		if err != nil {
			return nil, fmt.Errorf("%w: list %s element %d: %v", ErrListDecode, l.name, i, err)
		}
		out[i] = v
	}
	return out, nil
}

// encodeElement encodes one element. Zero-delimiter boolean lists use a
// single 0/1 digit per element instead of ON/OFF.
func (l *ListParameter) encodeElement(value any) (string, error) {
	if l.delimiter == "" {
		if s, ok := l.element.(*Scalar); ok && s.Kind() == KindBool {
			b, ok := value.(bool)
			if !ok {
				return "", fmt.Errorf("%w: expected bool, got %T", ErrValueType, value)
			}
			if b {
				return "1", nil
			}
			return "0", nil
		}
	}
	return l.element.Encode(value)
}

func (l *ListParameter) decodeElement(text string) (any, error) {
	if l.delimiter == "" {
		if s, ok := l.element.(*Scalar); ok && s.Kind() == KindBool {
			switch text {
			case "1":
				return true, nil
			case "0":
				return false, nil
			default:
				return nil, fmt.Errorf("%w: bit %q is not 0 or 1", ErrValueType, text)
			}
		}
	}
	return l.element.Decode(text)
}

// elementWidth returns the fixed wire width of one element, or 0.
func (l *ListParameter) elementWidth() int {
	switch e := l.element.(type) {
	case *Scalar:
		return e.FixedWidth()
	case *Enum:
		return e.FixedWidth()
	default:
		return 0
	}
}

// toSequence normalizes the common slice shapes into []any.
func toSequence(value any) ([]any, bool) {
	switch seq := value.(type) {
	case []any:
		return seq, true
	case []string:
		out := make([]any, len(seq))
		for i, v := range seq {
			out[i] = v
		}
		return out, true
	case []float64:
		out := make([]any, len(seq))
		for i, v := range seq {
			out[i] = v
		}
		return out, true
	case []int:
		out := make([]any, len(seq))
		for i, v := range seq {
			out[i] = v
		}
		return out, true
	case []bool:
		out := make([]any, len(seq))
		for i, v := range seq {
			out[i] = v
		}
		return out, true
	case []int64:
		out := make([]any, len(seq))
		for i, v := range seq {
			out[i] = v
		}
		return out, true
	default:
		return nil, false
	}
}
