// Package codec converts between typed values and instrument wire text for
// compiled registry nodes.
//
// Attributes delegate to their dtype descriptor in both directions. Command
// responses dispatch to named reader functions (pure functions mapping raw
// response text to typed values), looked up by the name the declaration
// carries. When a response does not match the expected shape, decoding
// fails with a ResponseParseError that preserves the raw payload for
// diagnostics.
//
// The built-in readers cover the shapes bench instruments actually emit:
// ExtractFloats pulls a delimited sequence of floating-point literals out of
// a response, tolerating a leading status token; ParseErrorQueue parses the
// `-113,"Undefined header"` shape of a SYST:ERR? reply.
package codec
