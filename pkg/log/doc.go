// Package log provides structured session event logging.
//
// Events are captured at two layers: raw transport frames and the
// command exchanges built on top of them. Applications implement the
// Logger interface (or use one of the provided implementations) to
// receive events:
//
//   - NoopLogger discards everything (the default).
//   - SlogAdapter forwards events to a standard library slog.Logger.
//   - FileLogger writes CBOR-encoded events to a file for later
//     analysis with Reader.
//   - MultiLogger fans events out to several loggers at once.
//
// The CBOR encoding uses integer keys so that long capture sessions
// stay compact on disk.
package log
