// Package transport provides the byte-level link to an instrument.
//
// The transport layer handles:
//   - Raw TCP socket connections (port 5025 by convention)
//   - Newline-terminated message framing
//   - Per-receive read deadlines
//   - Optional frame-level logging
//
// # Protocol Stack
//
//	┌────────────────────────────────┐
//	│      Command Messages          │
//	├────────────────────────────────┤
//	│  Newline-Terminated Framing    │
//	├────────────────────────────────┤
//	│           TCP                  │
//	└────────────────────────────────┘
//
// The link is half-duplex: at most one request is in flight at a time,
// and a response is read only after the request that provoked it was
// fully written. Ordering across concurrent callers is enforced one
// layer up; Transport implementations only need to be safe for
// sequential use from a single goroutine at a time.
package transport
