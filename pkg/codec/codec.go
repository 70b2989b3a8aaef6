package codec

import (
	"errors"
	"fmt"

	"github.com/scpi-protocol/scpi-go/pkg/model"
)

// Codec errors.
var (
	// ErrReaderNotFound indicates a declaration names a reader that was
	// never registered.
	ErrReaderNotFound = errors.New("no reader registered under that name")

	// ErrNoArgument indicates an encode without a declared input dtype.
	ErrNoArgument = errors.New("node does not declare an input dtype")

	// ErrResponseParse is the sentinel all ResponseParseErrors wrap.
	ErrResponseParse = errors.New("response parse error")
)

// ResponseParseError is a runtime decode fault: the transport succeeded but
// the payload did not match the declared shape. Raw preserves the payload
// for diagnostics.
type ResponseParseError struct {
	// Raw is the response text as received.
	Raw string

	// Reason describes the mismatch.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error returns the reason and the offending payload.
func (e *ResponseParseError) Error() string {
	msg := fmt.Sprintf("response parse error: %s (raw %q)", e.Reason, e.Raw)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ResponseParseError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrResponseParse
}

// Is reports ErrResponseParse identity.
func (e *ResponseParseError) Is(target error) bool {
	return target == ErrResponseParse
}

func parseErr(raw, reason string, cause error) *ResponseParseError {
	return &ResponseParseError{Raw: raw, Reason: reason, Err: cause}
}

// Codec encodes and decodes node values. A Codec captures its reader table
// at construction and is immutable afterwards, so it is safe for concurrent
// use by any number of sessions.
type Codec struct {
	readers map[string]ReaderFunc
}

// New creates a codec with the built-in and registered readers plus any
// extras. Later sources shadow earlier ones of the same name.
func New(extras map[string]ReaderFunc) *Codec {
	readers := make(map[string]ReaderFunc, len(builtinReaders)+len(extras))
	for name, fn := range builtinReaders {
		readers[name] = fn
	}
	registeredMu.Lock()
	for name, fn := range registeredReaders {
		readers[name] = fn
	}
	registeredMu.Unlock()
	for name, fn := range extras {
		readers[name] = fn
	}
	return &Codec{readers: readers}
}

// Encode converts a typed value to the wire payload for a node: the dtype
// descriptor for attributes, the declared input dtype for commands.
func (c *Codec) Encode(node *model.Node, value any) (string, error) {
	switch node.Kind {
	case model.KindCommand:
		if node.DtypeIn == nil {
			return "", fmt.Errorf("%s: %w", node.Mnemonic, ErrNoArgument)
		}
		return node.DtypeIn.Encode(value)
	default:
		return node.Dtype.Encode(value)
	}
}

// Decode converts raw response text to a typed value. Commands dispatch to
// their named reader; attributes use their dtype descriptor, or an
// overriding reader when the declaration names one.
func (c *Codec) Decode(node *model.Node, raw string) (any, error) {
	if node.Reader != "" {
		fn, ok := c.readers[node.Reader]
		if !ok {
			return nil, parseErr(raw, fmt.Sprintf("reader %q", node.Reader), ErrReaderNotFound)
		}
		value, err := fn(raw)
		if err != nil {
			return nil, parseErr(raw, fmt.Sprintf("reader %q rejected response", node.Reader), err)
		}
		return value, nil
	}

	var dtype model.Descriptor
	if node.Kind == model.KindCommand {
		dtype = node.DtypeOut
	} else {
		dtype = node.Dtype
	}
	if dtype == nil {
		return nil, parseErr(raw, node.Mnemonic+" declares no output dtype", nil)
	}
	value, err := dtype.Decode(raw)
	if err != nil {
		return nil, parseErr(raw, "value does not match declared dtype", err)
	}
	return value, nil
}
