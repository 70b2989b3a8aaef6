package commands

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/scpi-protocol/scpi-go/pkg/model"
	"github.com/scpi-protocol/scpi-go/pkg/schema"
)

// ShowOptions configures the show command.
type ShowOptions struct {
	Types bool
	Files []string
}

// RunShow prints the compiled command tree of each declaration file.
func RunShow(args []string, stdout, stderr io.Writer) int {
	opts, err := parseShowArgs(args)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitCommandError
	}
	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		fmt.Fprintln(stderr, "Usage: scpi-inspect show [--types] <decl.yaml> [...]")
		return exitCommandError
	}

	for _, file := range opts.Files {
		registry, err := schema.LoadDeclaration(file)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %s: %v\n", file, err)
			return exitValidation
		}
		printRegistry(stdout, file, registry, opts.Types)
	}
	return exitSuccess
}

func parseShowArgs(args []string) (*ShowOptions, error) {
	opts := &ShowOptions{}
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolVar(&opts.Types, "types", false, "list enum and list type definitions")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.Files = fs.Args()
	return opts, nil
}

func printRegistry(w io.Writer, file string, registry *model.Registry, withTypes bool) {
	fmt.Fprintf(w, "%s: %d nodes\n\n", file, registry.Len())

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATH\tKIND\tDTYPE\tRANGE\tACCESS\tNAME")
	for _, path := range registry.Paths() {
		node, _ := registry.Lookup(path)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			path, node.Kind, describeDtype(node), describeRange(node),
			describeAccess(node), node.Name)
	}
	tw.Flush()

	if withTypes {
		fmt.Fprintln(w)
		printTypes(w, registry)
	}
}

func describeDtype(node *model.Node) string {
	switch {
	case node.Kind == model.KindCommand && node.DtypeIn != nil && node.DtypeOut != nil:
		return fmt.Sprintf("%s -> %s", describe(node.DtypeIn), describe(node.DtypeOut))
	case node.Kind == model.KindCommand && node.DtypeIn != nil:
		return describe(node.DtypeIn) + " ->"
	case node.Kind == model.KindCommand && node.DtypeOut != nil:
		return "-> " + describe(node.DtypeOut)
	case node.Dtype != nil:
		return describe(node.Dtype)
	default:
		return "-"
	}
}

func describe(d model.Descriptor) string {
	switch t := d.(type) {
	case *model.Scalar:
		return t.Kind().String()
	case *model.Enum:
		return "enum " + t.TypeName()
	case *model.ListParameter:
		return fmt.Sprintf("list %s of %s", t.TypeName(), describe(t.Element()))
	default:
		return "?"
	}
}

func describeRange(node *model.Node) string {
	if node.Range == nil {
		return "-"
	}
	return fmt.Sprintf("[%g, %g]", node.Range.Min, node.Range.Max)
}

func describeAccess(node *model.Node) string {
	if node.Kind == model.KindCommand {
		return "exec"
	}
	if node.Writable {
		return "rw"
	}
	return "ro"
}

func printTypes(w io.Writer, registry *model.Registry) {
	printed := make(map[string]bool)
	for _, path := range registry.Paths() {
		node, _ := registry.Lookup(path)
		for _, d := range []model.Descriptor{node.Dtype, node.DtypeIn, node.DtypeOut} {
			if d == nil || d.TypeName() == "" || printed[d.TypeName()] {
				continue
			}
			printed[d.TypeName()] = true
			if e, ok := d.(*model.Enum); ok {
				fmt.Fprintf(w, "enum %s:\n", e.TypeName())
				for _, v := range e.Values() {
					fmt.Fprintf(w, "  %s = %d\n", v.Symbol, v.Ordinal)
				}
			}
		}
	}
}
