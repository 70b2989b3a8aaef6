// Package mnemonic renders namespace paths into instrument wire mnemonics.
//
// Segments join with the hierarchical colon separator, except continuation
// segments (leading underscore in the declaration), which concatenate
// directly onto the previous rendered segment. This models mnemonics that
// are not arranged in clean colon-delimited layers, such as numbered
// sub-systems ("SOUR" + "_2" renders "SOUR2").
//
// Rendering is pure and deterministic: identical paths always render
// identically, and no abbreviation or expansion of tokens is performed.
package mnemonic

import "strings"

const (
	// Separator is the hierarchical path separator.
	Separator = ":"

	// QueryMarker is appended to form a query mnemonic.
	QueryMarker = "?"

	// ContinuationMarker prefixes a segment that concatenates onto its
	// predecessor instead of being separator-joined.
	ContinuationMarker = "_"
)

// IsContinuation reports whether a segment carries the continuation marker.
func IsContinuation(segment string) bool {
	return strings.HasPrefix(segment, ContinuationMarker)
}

// Render joins path segments into a wire mnemonic.
func Render(segments []string) string {
	var b strings.Builder
	for i, seg := range segments {
		if IsContinuation(seg) {
			b.WriteString(strings.TrimPrefix(seg, ContinuationMarker))
			continue
		}
		if i > 0 {
			b.WriteString(Separator)
		}
		b.WriteString(seg)
	}
	return b.String()
}

// Query renders the query form of a path: the mnemonic plus the query
// marker.
func Query(segments []string) string {
	return Render(segments) + QueryMarker
}

// QueryArg renders a query carrying an already-encoded argument, as used by
// commands that take a parameter and return a response.
func QueryArg(segments []string, payload string) string {
	if payload == "" {
		return Query(segments)
	}
	return Query(segments) + " " + payload
}

// Write renders the write form of a path: the mnemonic, a single space, and
// the already-encoded payload. An empty payload yields the bare mnemonic.
func Write(segments []string, payload string) string {
	if payload == "" {
		return Render(segments)
	}
	return Render(segments) + " " + payload
}
