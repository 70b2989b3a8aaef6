package transport

import (
	"errors"
	"time"
)

// Transport errors.
var (
	// ErrTimeout indicates no complete response arrived within the
	// receive deadline.
	ErrTimeout = errors.New("receive timeout")

	// ErrTransport indicates an I/O fault on the underlying connection.
	ErrTransport = errors.New("transport failure")

	// ErrNotConnected indicates the transport has no open connection.
	ErrNotConnected = errors.New("not connected")

	// ErrClosed indicates the transport has been closed.
	ErrClosed = errors.New("transport closed")

	// ErrMessageEmpty indicates an empty outgoing message.
	ErrMessageEmpty = errors.New("message is empty")

	// ErrMessageTooLarge indicates a response exceeded the maximum size.
	ErrMessageTooLarge = errors.New("message too large")
)

// Transport is the byte-level link to an instrument.
//
// Send writes one complete message; the terminator is appended by the
// implementation. Receive blocks until one complete message arrives or
// the timeout expires, and returns the message with framing stripped.
type Transport interface {
	// Send writes one message to the instrument.
	Send(data []byte) error

	// Receive reads one message from the instrument. It returns
	// ErrTimeout (possibly wrapped) when no complete message arrives
	// within the timeout.
	Receive(timeout time.Duration) ([]byte, error)

	// Close releases the underlying connection. After Close, Send and
	// Receive return ErrClosed.
	Close() error
}
