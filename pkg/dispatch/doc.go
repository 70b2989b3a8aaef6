// Package dispatch serializes command traffic to a single instrument.
//
// The link is half-duplex: the instrument answers exactly one request
// at a time, so every response on the wire belongs to the most recent
// query. Session enforces this with a FIFO admission queue: at most
// one operation touches the transport at a time, and callers that
// arrive while the link is busy wait their turn in order.
//
// # State machine
//
//	DISCONNECTED ──connect──▶ IDLE ◀──────────────┐
//	                           │                  │
//	                        dispatch           complete
//	                           │                  │
//	                           ▼                  │
//	                         BUSY ────────────────┘
//	                           │
//	                   timeout / transport fault
//	                           │
//	                           ▼
//	                    ERROR_RECOVERY ──Reset──▶ IDLE
//
// After a timeout the response to the abandoned request may still
// arrive. Attributing it to the next query would corrupt every
// subsequent exchange, so the session refuses new operations with
// ErrSessionRecovering until Reset has cleared the instrument state
// and drained the receive side.
package dispatch
