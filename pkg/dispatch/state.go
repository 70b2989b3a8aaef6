package dispatch

// State is the session lifecycle state.
type State int

const (
	// StateDisconnected indicates no usable transport.
	StateDisconnected State = iota

	// StateIdle indicates the link is open and no operation is in flight.
	StateIdle

	// StateBusy indicates an operation is using the transport.
	StateBusy

	// StateErrorRecovery indicates a timed-out or faulted exchange left
	// the link in an unknown state. Only Reset leaves this state.
	StateErrorRecovery
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateIdle:
		return "IDLE"
	case StateBusy:
		return "BUSY"
	case StateErrorRecovery:
		return "ERROR_RECOVERY"
	default:
		return "UNKNOWN"
	}
}
