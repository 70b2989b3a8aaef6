package model

import "strings"

// Kind discriminates the closed Node variant.
type Kind uint8

const (
	// KindAttribute is a readable/writable instrument attribute.
	KindAttribute Kind = iota

	// KindCommand is an invokable instrument command.
	KindCommand
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindAttribute:
		return "attribute"
	case KindCommand:
		return "command"
	default:
		return "unknown"
	}
}

// Range is a declared inclusive numeric domain for an attribute.
type Range struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range, bounds included.
func (r *Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Node is one leaf of the compiled registry: a Command or an Attribute at
// the end of a namespace path. Nodes are constructed once during compilation
// and immutable thereafter.
type Node struct {
	// Kind discriminates Command from Attribute.
	Kind Kind

	// Path is the ordered namespace segments, continuation markers intact.
	Path []string

	// Mnemonic is the rendered wire mnemonic; it is also the registry key.
	Mnemonic string

	// Name is the human-readable name from the declaration.
	Name string

	// Doc is the documentation string.
	Doc string

	// Label is an optional display label (attributes only).
	Label string

	// Unit is an optional physical unit (attributes only).
	Unit string

	// Dtype is the value descriptor for attributes.
	Dtype Descriptor

	// DtypeIn is the argument descriptor for commands, nil when the
	// command takes no argument.
	DtypeIn Descriptor

	// DtypeOut is the result descriptor for commands, nil when the
	// command returns nothing.
	DtypeOut Descriptor

	// DocIn and DocOut document a command's argument and result.
	DocIn  string
	DocOut string

	// Range is the inclusive numeric bound, nil when unbounded.
	Range *Range

	// Writable reports whether set operations are allowed. Attributes
	// default to writable unless the declaration says otherwise.
	Writable bool

	// Reader is the name of the response reader function, "" for the
	// dtype default.
	Reader string

	// Writer is the name of the value writer function, "" for the dtype
	// default.
	Writer string
}

// IsCommand reports whether the node is a command leaf.
func (n *Node) IsCommand() bool {
	return n.Kind == KindCommand
}

// HasResponse reports whether an invocation of the node produces a payload
// to decode.
func (n *Node) HasResponse() bool {
	if n.Kind == KindAttribute {
		return true
	}
	return n.DtypeOut != nil || n.Reader != ""
}

// String returns "kind mnemonic" for diagnostics.
func (n *Node) String() string {
	var b strings.Builder
	b.WriteString(n.Kind.String())
	b.WriteByte(' ')
	b.WriteString(n.Mnemonic)
	return b.String()
}
