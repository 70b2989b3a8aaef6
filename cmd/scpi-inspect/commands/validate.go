package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/scpi-protocol/scpi-go/pkg/schema"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

// RunValidate compiles each declaration file and reports schema errors.
func RunValidate(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, "Error: no files specified")
		fmt.Fprintln(stderr, "Usage: scpi-inspect validate <decl.yaml> [...]")
		return exitCommandError
	}

	hasErrors := false
	for _, file := range args {
		registry, err := schema.LoadDeclaration(file)
		if err != nil {
			hasErrors = true
			var schemaErr *schema.SchemaError
			if errors.As(err, &schemaErr) {
				fmt.Fprintf(stdout, "✗ %s\n  at %s: %s\n", file, schemaErr.Path, schemaErr.Reason)
				if schemaErr.Err != nil {
					fmt.Fprintf(stdout, "  cause: %v\n", schemaErr.Err)
				}
			} else {
				fmt.Fprintf(stdout, "✗ %s\n  %v\n", file, err)
			}
			continue
		}
		fmt.Fprintf(stdout, "✓ %s (%d nodes)\n", file, registry.Len())
	}

	if hasErrors {
		return exitValidation
	}
	return exitSuccess
}
