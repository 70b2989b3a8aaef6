package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scpi-protocol/scpi-go/pkg/mnemonic"
	"github.com/scpi-protocol/scpi-go/pkg/model"
)

// Declaration tags.
const (
	TagAttribute     = "!Attribute"
	TagCommand       = "!Command"
	TagEnum          = "!ENUM"
	TagListParameter = "!ListParameter"
)

// DefaultMaxDimX is the list dimension bound used when a declaration omits
// max_dim_x.
const DefaultMaxDimX = 2000

// ErrSchema is the sentinel all SchemaErrors wrap.
var ErrSchema = errors.New("schema error")

// SchemaError is a compile-time declaration fault. It always carries the
// fully-qualified path of the offending leaf; compilation aborts on the
// first one.
type SchemaError struct {
	// Path is the rendered mnemonic path where the fault was found.
	Path string

	// Reason describes the fault.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error returns "schema error at PATH: REASON".
func (e *SchemaError) Error() string {
	msg := fmt.Sprintf("schema error at %s: %s", e.Path, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *SchemaError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSchema
}

// Is reports ErrSchema identity so errors.Is(err, ErrSchema) holds.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

func schemaErr(path []string, reason string, cause error) *SchemaError {
	return &SchemaError{Path: mnemonic.Render(path), Reason: reason, Err: cause}
}

// Compile walks a parsed declaration once, depth-first, and produces the
// immutable registry. It either fully succeeds or fails with a SchemaError.
func Compile(root *yaml.Node) (*model.Registry, error) {
	c := &compiler{
		types: model.NewTypeRegistry(),
		seen:  make(map[string]struct{}),
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) != 1 {
			return nil, schemaErr(nil, "declaration document must hold one root node", nil)
		}
		root = root.Content[0]
	}
	if err := c.walk(root, nil); err != nil {
		return nil, err
	}
	return model.NewRegistry(c.nodes, c.types)
}

// CompileBytes parses YAML bytes and compiles them.
func CompileBytes(data []byte) (*model.Registry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, schemaErr(nil, "parsing declaration", err)
	}
	return Compile(&doc)
}

// LoadDeclaration loads and compiles a declaration file.
func LoadDeclaration(path string) (*model.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return CompileBytes(data)
}

type compiler struct {
	types *model.TypeRegistry
	nodes []*model.Node
	seen  map[string]struct{}
}

// walk recurses through namespace nodes, maintaining the path stack.
// Sequences of single-key mappings and plain nested mappings are both
// accepted namespace shapes.
func (c *compiler) walk(n *yaml.Node, stack []string) error {
	n = resolve(n)
	switch n.Kind {
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if err := c.walk(item, stack); err != nil {
				return err
			}
		}
		return nil
	case yaml.MappingNode:
		for i := 0; i < len(n.Content); i += 2 {
			key := n.Content[i].Value
			value := resolve(n.Content[i+1])
			path := append(append([]string(nil), stack...), key)
			switch {
			case value.Tag == TagAttribute:
				if err := c.compileAttribute(value, path); err != nil {
					return err
				}
			case value.Tag == TagCommand:
				if err := c.compileCommand(value, path); err != nil {
					return err
				}
			case value.Kind == yaml.MappingNode || value.Kind == yaml.SequenceNode:
				if err := c.walk(value, path); err != nil {
					return err
				}
			default:
				return schemaErr(path, fmt.Sprintf("unexpected %s node in namespace", value.Tag), nil)
			}
		}
		return nil
	default:
		return schemaErr(stack, "namespace must be a mapping or sequence", nil)
	}
}

// add registers a compiled node, rejecting path collisions.
func (c *compiler) add(n *model.Node, path []string) error {
	if _, exists := c.seen[n.Mnemonic]; exists {
		return schemaErr(path, "path collides with an existing node", model.ErrDuplicatePath)
	}
	c.seen[n.Mnemonic] = struct{}{}
	c.nodes = append(c.nodes, n)
	return nil
}

func (c *compiler) compileAttribute(leaf *yaml.Node, path []string) error {
	fields, err := mappingFields(leaf)
	if err != nil {
		return schemaErr(path, "malformed attribute leaf", err)
	}

	node := &model.Node{
		Kind:     model.KindAttribute,
		Path:     path,
		Mnemonic: mnemonic.Render(path),
		Writable: true,
	}
	if err := decodeString(fields, "name", &node.Name); err != nil {
		return schemaErr(path, "name", err)
	}
	if err := decodeString(fields, "doc", &node.Doc); err != nil {
		return schemaErr(path, "doc", err)
	}
	if err := decodeString(fields, "label", &node.Label); err != nil {
		return schemaErr(path, "label", err)
	}
	if err := decodeString(fields, "unit", &node.Unit); err != nil {
		return schemaErr(path, "unit", err)
	}
	if err := decodeString(fields, "reader", &node.Reader); err != nil {
		return schemaErr(path, "reader", err)
	}
	if err := decodeString(fields, "writer", &node.Writer); err != nil {
		return schemaErr(path, "writer", err)
	}
	if wn, ok := fields["write"]; ok {
		if err := wn.Decode(&node.Writable); err != nil {
			return schemaErr(path, "write flag", err)
		}
	}

	dtypeNode, ok := fields["dtype"]
	if !ok {
		return schemaErr(path, "attribute is missing a dtype", nil)
	}
	node.Dtype, err = c.descriptor(dtypeNode, path)
	if err != nil {
		return err
	}

	if rn, ok := fields["range"]; ok {
		node.Range, err = decodeRange(rn)
		if err != nil {
			return schemaErr(path, "range", err)
		}
	}

	return c.add(node, path)
}

func (c *compiler) compileCommand(leaf *yaml.Node, path []string) error {
	fields, err := mappingFields(leaf)
	if err != nil {
		return schemaErr(path, "malformed command leaf", err)
	}

	node := &model.Node{
		Kind:     model.KindCommand,
		Path:     path,
		Mnemonic: mnemonic.Render(path),
	}
	if err := decodeString(fields, "name", &node.Name); err != nil {
		return schemaErr(path, "name", err)
	}
	if err := decodeString(fields, "doc", &node.Doc); err != nil {
		return schemaErr(path, "doc", err)
	}
	if err := decodeString(fields, "doc_in", &node.DocIn); err != nil {
		return schemaErr(path, "doc_in", err)
	}
	if err := decodeString(fields, "doc_out", &node.DocOut); err != nil {
		return schemaErr(path, "doc_out", err)
	}
	if err := decodeString(fields, "reader", &node.Reader); err != nil {
		return schemaErr(path, "reader", err)
	}

	if dn, ok := fields["dtype_in"]; ok {
		node.DtypeIn, err = c.descriptor(dn, path)
		if err != nil {
			return err
		}
	}
	if dn, ok := fields["dtype_out"]; ok {
		node.DtypeOut, err = c.descriptor(dn, path)
		if err != nil {
			return err
		}
	}
	if node.Reader != "" && node.DtypeOut == nil {
		return schemaErr(path, "command declares a reader but no output dtype", nil)
	}

	return c.add(node, path)
}

// descriptor parses a dtype value: a scalar kind name, a tagged enum or
// list definition, or a back-reference to a previously registered type.
func (c *compiler) descriptor(n *yaml.Node, path []string) (model.Descriptor, error) {
	n = resolve(n)
	switch {
	case n.Kind == yaml.ScalarNode:
		kind, ok := model.ScalarKindByName(n.Value)
		if !ok {
			return nil, schemaErr(path, fmt.Sprintf("unknown dtype %q", n.Value), nil)
		}
		return c.types.Scalar(kind), nil
	case n.Tag == TagEnum:
		return c.enumDescriptor(n, path)
	case n.Tag == TagListParameter:
		return c.listDescriptor(n, path)
	default:
		return nil, schemaErr(path, fmt.Sprintf("unsupported dtype node %s", n.Tag), nil)
	}
}

func (c *compiler) enumDescriptor(n *yaml.Node, path []string) (model.Descriptor, error) {
	fields, err := mappingFields(n)
	if err != nil {
		return nil, schemaErr(path, "malformed enum dtype", err)
	}
	var name string
	if err := decodeString(fields, "name", &name); err != nil || name == "" {
		return nil, schemaErr(path, "enum dtype requires a name", err)
	}

	valuesNode, ok := fields["values"]
	if !ok {
		// Name-only declaration: a back-reference to an earlier
		// definition, resolved by identity through the type registry.
		if d, found := c.types.Lookup(name); found {
			return d, nil
		}
		return nil, schemaErr(path, fmt.Sprintf("unresolved back-reference to enum %q", name), nil)
	}

	valuesNode = resolve(valuesNode)
	if valuesNode.Kind != yaml.MappingNode {
		return nil, schemaErr(path, "enum values must be a symbol→ordinal mapping", nil)
	}
	values := make([]model.EnumValue, 0, len(valuesNode.Content)/2)
	for i := 0; i < len(valuesNode.Content); i += 2 {
		var ordinal int
		if err := valuesNode.Content[i+1].Decode(&ordinal); err != nil {
			return nil, schemaErr(path, fmt.Sprintf("enum %s ordinal", name), err)
		}
		values = append(values, model.EnumValue{
			Symbol:  valuesNode.Content[i].Value,
			Ordinal: ordinal,
		})
	}

	enum, err := model.NewEnum(name, values)
	if err != nil {
		return nil, schemaErr(path, "invalid enum", err)
	}
	d, err := c.types.Register(enum)
	if err != nil {
		return nil, schemaErr(path, fmt.Sprintf("enum %q redefined with different values", name), err)
	}
	return d, nil
}

func (c *compiler) listDescriptor(n *yaml.Node, path []string) (model.Descriptor, error) {
	fields, err := mappingFields(n)
	if err != nil {
		return nil, schemaErr(path, "malformed list dtype", err)
	}
	var name string
	if err := decodeString(fields, "name", &name); err != nil || name == "" {
		return nil, schemaErr(path, "list dtype requires a name", err)
	}

	elemNode, ok := fields["dtype"]
	if !ok {
		// Name-only back-reference, as for enums.
		if d, found := c.types.Lookup(name); found {
			return d, nil
		}
		return nil, schemaErr(path, fmt.Sprintf("unresolved back-reference to list %q", name), nil)
	}
	element, err := c.descriptor(elemNode, path)
	if err != nil {
		return nil, err
	}

	maxDimX := DefaultMaxDimX
	if mn, ok := fields["max_dim_x"]; ok {
		if err := mn.Decode(&maxDimX); err != nil {
			return nil, schemaErr(path, "max_dim_x", err)
		}
	}
	delimiter := ","
	if dn, ok := fields["delimiter"]; ok {
		if err := dn.Decode(&delimiter); err != nil {
			return nil, schemaErr(path, "delimiter", err)
		}
	}

	lp, err := model.NewListParameter(name, element, maxDimX, delimiter)
	if err != nil {
		return nil, schemaErr(path, "invalid list parameter", err)
	}
	d, err := c.types.Register(lp)
	if err != nil {
		return nil, schemaErr(path, fmt.Sprintf("list %q redefined with a different shape", name), err)
	}
	return d, nil
}

// decodeRange parses a [min, max] pair and enforces min ≤ max.
func decodeRange(n *yaml.Node) (*model.Range, error) {
	var bounds []float64
	if err := n.Decode(&bounds); err != nil {
		return nil, err
	}
	if len(bounds) != 2 {
		return nil, fmt.Errorf("range must be [min, max], got %d values", len(bounds))
	}
	if bounds[0] > bounds[1] {
		return nil, fmt.Errorf("range min %v exceeds max %v", bounds[0], bounds[1])
	}
	return &model.Range{Min: bounds[0], Max: bounds[1]}, nil
}

// mappingFields indexes a mapping node's pairs by key.
func mappingFields(n *yaml.Node) (map[string]*yaml.Node, error) {
	n = resolve(n)
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping, got yaml kind %d", n.Kind)
	}
	fields := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i < len(n.Content); i += 2 {
		fields[n.Content[i].Value] = n.Content[i+1]
	}
	return fields, nil
}

func decodeString(fields map[string]*yaml.Node, key string, dst *string) error {
	n, ok := fields[key]
	if !ok {
		return nil
	}
	return n.Decode(dst)
}

// resolve follows YAML alias nodes to their anchor.
func resolve(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
