package model

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors.
var (
	// ErrNodeNotFound indicates a lookup for an unknown mnemonic path.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicatePath indicates two leaves compiling to one mnemonic.
	ErrDuplicatePath = errors.New("duplicate fully-qualified path")

	// ErrTypeRedefined indicates a named type registered twice with
	// conflicting definitions.
	ErrTypeRedefined = errors.New("conflicting type redefinition")
)

// TypeRegistry owns type descriptors and their identity. Named descriptors
// are deduplicated: registering a second descriptor under an existing name
// returns the original instance, so back-references in a declaration resolve
// to the same object rather than a copy. Unnamed scalars are interned per
// kind for the same reason.
type TypeRegistry struct {
	named   map[string]Descriptor
	scalars map[ScalarKind]*Scalar
}

// NewTypeRegistry creates an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		named:   make(map[string]Descriptor),
		scalars: make(map[ScalarKind]*Scalar),
	}
}

// Register returns the identity-stable handle for a descriptor: the
// previously registered instance when the name is already known and the
// definitions match, otherwise the descriptor itself after recording it.
// Re-using a known name for a different definition is an error.
func (r *TypeRegistry) Register(d Descriptor) (Descriptor, error) {
	if s, ok := d.(*Scalar); ok {
		return r.Scalar(s.Kind()), nil
	}
	name := d.TypeName()
	if name == "" {
		return d, nil
	}
	if existing, ok := r.named[name]; ok {
		if !sameDefinition(existing, d) {
			return nil, fmt.Errorf("%w: %s", ErrTypeRedefined, name)
		}
		return existing, nil
	}
	r.named[name] = d
	return d, nil
}

// sameDefinition reports structural equality of two descriptors, used to
// tell a harmless repeated definition from a conflicting one.
func sameDefinition(a, b Descriptor) bool {
	switch x := a.(type) {
	case *Scalar:
		y, ok := b.(*Scalar)
		return ok && x.kind == y.kind
	case *Enum:
		y, ok := b.(*Enum)
		if !ok || len(x.values) != len(y.values) {
			return false
		}
		for i, v := range x.values {
			if y.values[i] != v {
				return false
			}
		}
		return true
	case *ListParameter:
		y, ok := b.(*ListParameter)
		return ok && x.maxDimX == y.maxDimX && x.delimiter == y.delimiter &&
			sameDefinition(x.element, y.element)
	default:
		return false
	}
}

// Lookup returns the descriptor registered under name.
func (r *TypeRegistry) Lookup(name string) (Descriptor, bool) {
	d, ok := r.named[name]
	return d, ok
}

// Scalar returns the interned scalar descriptor for a kind.
func (r *TypeRegistry) Scalar(kind ScalarKind) *Scalar {
	if s, ok := r.scalars[kind]; ok {
		return s
	}
	s := NewScalar(kind)
	r.scalars[kind] = s
	return s
}

// Registry is the compiled, immutable node registry keyed by rendered wire
// mnemonic. It is safe for unsynchronized concurrent reads.
type Registry struct {
	nodes map[string]*Node
	types *TypeRegistry
}

// NewRegistry builds a registry from compiled nodes, rejecting duplicate
// mnemonics.
func NewRegistry(nodes []*Node, types *TypeRegistry) (*Registry, error) {
	byPath := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if _, exists := byPath[n.Mnemonic]; exists {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePath, n.Mnemonic)
		}
		byPath[n.Mnemonic] = n
	}
	return &Registry{nodes: byPath, types: types}, nil
}

// Lookup returns the node compiled at the given mnemonic path.
func (r *Registry) Lookup(path string) (*Node, error) {
	n, ok := r.nodes[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, path)
	}
	return n, nil
}

// Len returns the number of compiled nodes.
func (r *Registry) Len() int {
	return len(r.nodes)
}

// Paths returns all mnemonic paths in sorted order.
func (r *Registry) Paths() []string {
	paths := make([]string, 0, len(r.nodes))
	for p := range r.nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Types returns the type registry the nodes were compiled against.
func (r *Registry) Types() *TypeRegistry {
	return r.types
}
