// scpi-inspect is a CLI tool for validating and inspecting instrument
// declaration files.
package main

import (
	"fmt"
	"os"

	"github.com/scpi-protocol/scpi-go/cmd/scpi-inspect/commands"
)

const (
	exitSuccess      = 0
	exitCommandError = 1
	exitValidation   = 2
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(exitCommandError)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var exitCode int
	switch cmd {
	case "validate":
		exitCode = commands.RunValidate(args, os.Stdout, os.Stderr)
	case "show":
		exitCode = commands.RunShow(args, os.Stdout, os.Stderr)
	case "help", "-h", "--help":
		printUsage()
		exitCode = exitSuccess
	case "version", "-v", "--version":
		fmt.Println("scpi-inspect version 0.1.0")
		exitCode = exitSuccess
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		exitCode = exitCommandError
	}

	os.Exit(exitCode)
}

func printUsage() {
	fmt.Println(`scpi-inspect - instrument declaration validation and inspection

Usage:
  scpi-inspect <command> [options] [files...]

Commands:
  validate   Compile declaration files and report schema errors
  show       Display the compiled command tree of a declaration

Options:
  -h, --help     Show this help message
  -v, --version  Show version information

Examples:
  scpi-inspect validate k24xx.yaml
  scpi-inspect show --types k24xx.yaml`)
}
