package codec

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/scpi-protocol/scpi-go/pkg/model"
)

// ReaderFunc is a pure function decoding raw instrument response text into
// one or more typed values. Readers are registered by name and invoked by
// the name a declaration carries.
type ReaderFunc func(raw string) (any, error)

// Built-in reader names.
const (
	ReaderExtractFloats   = "ExtractFloats"
	ReaderIdentity        = "Identity"
	ReaderParseBool       = "ParseBool"
	ReaderParseErrorQueue = "ParseErrorQueue"
)

var builtinReaders = map[string]ReaderFunc{
	ReaderExtractFloats:   ExtractFloats,
	ReaderIdentity:        Identity,
	ReaderParseBool:       ParseBool,
	ReaderParseErrorQueue: ParseErrorQueue,
}

var (
	registeredMu      sync.Mutex
	registeredReaders = map[string]ReaderFunc{}
)

// RegisterReader adds a reader to the default table that New starts from.
// Registering an existing name, built-in or not, replaces it. Register
// during program initialization; codecs built earlier keep the table they
// captured.
func RegisterReader(name string, fn ReaderFunc) {
	registeredMu.Lock()
	defer registeredMu.Unlock()
	registeredReaders[name] = fn
}

// InstrumentError is one entry of an instrument's error queue, as reported
// by SYST:ERR?.
type InstrumentError struct {
	Code    int
	Message string
}

// Error formats the entry the way the instrument reported it.
func (e InstrumentError) Error() string {
	return fmt.Sprintf("%d,%q", e.Code, e.Message)
}

// IsOK reports whether the entry is the "no error" sentinel (code 0).
func (e InstrumentError) IsOK() bool {
	return e.Code == 0
}

// errQueuePattern matches `-113,"Undefined header"` style responses.
var errQueuePattern = regexp.MustCompile(`^\s*(-?\d+)\s*,\s*["']([^"']*)["']`)

// ExtractFloats decodes a delimited sequence of floating-point literals.
// Elements may be separated by commas or semicolons; a single leading
// non-numeric status token is tolerated and skipped.
func ExtractFloats(raw string) (any, error) {
	fields := strings.FieldsFunc(strings.TrimSpace(raw), func(r rune) bool {
		return r == ',' || r == ';'
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no numeric fields in response")
	}

	out := make([]float64, 0, len(fields))
	for i, field := range fields {
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
		if err != nil {
			if i == 0 && len(fields) > 1 {
				continue // leading status token
			}
			return nil, fmt.Errorf("field %d %q is not a number", i, field)
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no numeric fields in response")
	}
	return out, nil
}

// Identity returns the trimmed raw response unchanged.
func Identity(raw string) (any, error) {
	return strings.TrimSpace(raw), nil
}

// ParseBool decodes an instrument boolean spelling.
func ParseBool(raw string) (any, error) {
	return model.ParseOnOff(raw), nil
}

// ParseErrorQueue decodes one error-queue entry of the shape
// `-113,"Undefined header"`.
func ParseErrorQueue(raw string) (any, error) {
	m := errQueuePattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, fmt.Errorf("unrecognised error response %q", raw)
	}
	code, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, fmt.Errorf("error code %q: %w", m[1], err)
	}
	return InstrumentError{Code: code, Message: m[2]}, nil
}
