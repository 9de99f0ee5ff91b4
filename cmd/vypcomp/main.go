package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/xkubov/vypcomp/internal/compiler"
)

// compiler [-v|--verbose] <input-file> [<output-file>]
// output-file defaults to out.vc.
func main() {
	verbose := flag.Bool("v", false, "dump the IR to standard output (the emitted code carries no offset comments)")
	flag.BoolVar(verbose, "verbose", false, "dump the IR to standard output (the emitted code carries no offset comments)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(os.Stderr, "usage: vypcomp [-v|--verbose] <input-file> [<output-file>]")
		os.Exit(compiler.ExitOther)
	}

	inPath := args[0]
	outPath := "out.vc"
	if len(args) == 2 {
		outPath = args[1]
	}

	err := compiler.Compile(inPath, outPath, *verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
	}
	os.Exit(compiler.ExitCode(err))
}
