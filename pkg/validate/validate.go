// Package validate is the pre-flight gate applied before any outbound write
// or invocation argument. It never mutates the node and never issues
// transport traffic: a rejected operation leaves all state unchanged and
// sends nothing.
package validate

import (
	"errors"
	"fmt"

	"github.com/scpi-protocol/scpi-go/pkg/model"
)

// Validation errors. All are recoverable: the rejected operation produces
// no wire traffic.
var (
	// ErrTypeMismatch indicates a value incompatible with the declared dtype.
	ErrTypeMismatch = errors.New("value type does not match declared dtype")

	// ErrReadOnlyAttribute indicates a write to a non-writable node.
	ErrReadOnlyAttribute = errors.New("attribute is not writable")

	// ErrRangeViolation indicates a numeric value outside the declared range.
	ErrRangeViolation = errors.New("value outside declared range")
)

// Validate checks a value against a node's declaration. Checks run in a
// fixed order: type compatibility, write permission, numeric range (bounds
// inclusive), enum domain, list length.
func Validate(node *model.Node, value any) error {
	dtype := node.Dtype
	if node.Kind == model.KindCommand {
		dtype = node.DtypeIn
	}
	if dtype == nil {
		return fmt.Errorf("%w: %s accepts no value", ErrTypeMismatch, node.Mnemonic)
	}

	if err := checkType(node, dtype, value); err != nil {
		return err
	}

	if node.Kind == model.KindAttribute && !node.Writable {
		return fmt.Errorf("%w: %s", ErrReadOnlyAttribute, node.Mnemonic)
	}

	if node.Range != nil {
		if v, ok := model.ToFloat64(value); ok && !node.Range.Contains(v) {
			return fmt.Errorf("%w: %s requires [%v, %v], got %v",
				ErrRangeViolation, node.Mnemonic, node.Range.Min, node.Range.Max, value)
		}
	}

	if enum, ok := dtype.(*model.Enum); ok {
		if err := checkEnumDomain(node, enum, value); err != nil {
			return err
		}
	}

	if list, ok := dtype.(*model.ListParameter); ok {
		if n, ok := sequenceLen(value); ok && n > list.MaxDimX() {
			return fmt.Errorf("%w: %s allows %d elements, got %d",
				model.ErrListLength, node.Mnemonic, list.MaxDimX(), n)
		}
	}

	return nil
}

// checkType verifies value/dtype compatibility without consulting domains.
func checkType(node *model.Node, dtype model.Descriptor, value any) error {
	switch d := dtype.(type) {
	case *model.Scalar:
		switch d.Kind() {
		case model.KindInt:
			if !model.IsInteger(value) {
				return typeErr(node, "integer", value)
			}
		case model.KindFloat:
			if _, ok := model.ToFloat64(value); !ok {
				return typeErr(node, "number", value)
			}
		case model.KindBool:
			if _, ok := value.(bool); !ok {
				return typeErr(node, "bool", value)
			}
		case model.KindString:
			if _, ok := value.(string); !ok {
				return typeErr(node, "string", value)
			}
		}
	case *model.Enum:
		if _, isStr := value.(string); !isStr && !model.IsInteger(value) {
			return typeErr(node, "enum symbol or ordinal", value)
		}
	case *model.ListParameter:
		if !isSequence(value) {
			return typeErr(node, "sequence", value)
		}
	}
	return nil
}

// checkEnumDomain verifies domain membership for symbol and ordinal forms.
func checkEnumDomain(node *model.Node, enum *model.Enum, value any) error {
	if _, err := enum.Encode(value); err != nil {
		return fmt.Errorf("%s: %w", node.Mnemonic, err)
	}
	return nil
}

func typeErr(node *model.Node, want string, got any) error {
	return fmt.Errorf("%w: %s expects %s, got %T", ErrTypeMismatch, node.Mnemonic, want, got)
}

func isSequence(value any) bool {
	_, ok := sequenceLen(value)
	return ok
}

func sequenceLen(value any) (int, bool) {
	switch seq := value.(type) {
	case []any:
		return len(seq), true
	case []string:
		return len(seq), true
	case []float64:
		return len(seq), true
	case []int:
		return len(seq), true
	case []int64:
		return len(seq), true
	case []bool:
		return len(seq), true
	default:
		return 0, false
	}
}
