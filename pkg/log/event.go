package log

import (
	"time"
)

// MaxFrameData is the maximum number of raw frame bytes stored in a
// FrameEvent. Longer frames are truncated and flagged.
const MaxFrameData = 512

// Event represents a session log event captured at any layer.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID uniquely identifies the session (UUID).
	SessionID string `cbor:"2,keyasint"`

	// Direction indicates message flow.
	Direction Direction `cbor:"3,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"4,keyasint"`

	// RemoteAddr is the instrument address (host:port).
	RemoteAddr string `cbor:"5,keyasint,omitempty"`

	// Mnemonic is the rendered command header, when the event relates
	// to a specific command.
	Mnemonic string `cbor:"6,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Exchange    *ExchangeEvent    `cbor:"11,keyasint,omitempty"` // Completed command exchange
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Session state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of message flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the instrument.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the instrument.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryFrame indicates a raw transport frame.
	CategoryFrame Category = 0
	// CategoryExchange indicates a completed command exchange.
	CategoryExchange Category = 1
	// CategoryState indicates a session state change.
	CategoryState Category = 2
	// CategoryError indicates an error event.
	CategoryError Category = 3
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryExchange:
		return "EXCHANGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes at the transport layer.
type FrameEvent struct {
	// Size is the full frame size in bytes, including the terminator.
	Size int `cbor:"1,keyasint"`

	// Data is the raw frame bytes (may be truncated for large frames).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// ExchangeEvent captures a completed command exchange: the message
// sent and, for queries, the response received.
type ExchangeEvent struct {
	// Sent is the full message written to the instrument.
	Sent string `cbor:"1,keyasint"`

	// Received is the raw response (empty for write-only commands).
	Received string `cbor:"2,keyasint,omitempty"`

	// Elapsed is the round-trip time. Stored as nanoseconds.
	Elapsed time.Duration `cbor:"3,keyasint,omitempty"`
}

// StateChangeEvent captures session lifecycle transitions.
type StateChangeEvent struct {
	// OldState is the previous state (may be empty).
	OldState string `cbor:"1,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"2,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"3,keyasint,omitempty"`
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Message is the error message.
	Message string `cbor:"1,keyasint"`

	// Code is the instrument error code, when the error came from the
	// instrument's error queue.
	Code *int `cbor:"2,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"3,keyasint,omitempty"`
}

// NewFrameEvent builds a transport frame event, truncating the stored
// data to MaxFrameData bytes.
func NewFrameEvent(sessionID string, dir Direction, data []byte) Event {
	frame := &FrameEvent{Size: len(data)}
	if len(data) > MaxFrameData {
		frame.Data = append([]byte(nil), data[:MaxFrameData]...)
		frame.Truncated = true
	} else {
		frame.Data = append([]byte(nil), data...)
	}
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: dir,
		Category:  CategoryFrame,
		Frame:     frame,
	}
}

// NewExchangeEvent builds an event for a completed command exchange.
func NewExchangeEvent(sessionID, mnemonic, sent, received string, elapsed time.Duration) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionOut,
		Category:  CategoryExchange,
		Mnemonic:  mnemonic,
		Exchange: &ExchangeEvent{
			Sent:     sent,
			Received: received,
			Elapsed:  elapsed,
		},
	}
}

// NewStateChangeEvent builds an event for a session state transition.
func NewStateChangeEvent(sessionID, oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewErrorEvent builds an event for an error with optional context.
func NewErrorEvent(sessionID, message, context string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Category:  CategoryError,
		Error: &ErrorEventData{
			Message: message,
			Context: context,
		},
	}
}
