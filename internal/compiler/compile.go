package compiler

import (
	"io"
	"os"
)

// Compile reads the source file at inPath, runs both passes and code
// generation, and writes the resulting VYPcode program to outPath.
// Progress is printed with plain println calls, gated behind verbose,
// rather than through a logging framework; the dump itself (the -v flag's IR inspection) happens here
// too, before code generation, so a generator-internal error still has
// the triggering IR available to look at.
func Compile(inPath, outPath string, verbose bool) error {
	if verbose {
		println("compiler: start parser at path: " + inPath)
	}
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx, err := Parse(f, verbose)
	if err != nil {
		return err
	}

	if verbose {
		println("compiler: pass 2 complete, dumping IR")
		dumpIR(os.Stdout, ctx)
		println("compiler: start generate codes")
	}

	gen := NewGenerator(ctx)
	program, err := gen.Generate()
	if err != nil {
		return err
	}

	if verbose {
		println("compiler: writing output to " + outPath)
	}
	return writeFile(outPath, program)
}

func writeFile(path, content string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.WriteString(out, content)
	return err
}

// dumpIR prints every top-level class and function's instruction tree in
// declaration order, one line per instruction, each prefixed with its
// nesting depth's worth of indentation - the "-v dumps the IR to standard
// output after pass 2" behavior spec.md 6 describes.
func dumpIR(w io.Writer, ctx *Context) {
	for _, name := range ctx.Symbols.GlobalOrder() {
		sym, _ := ctx.Symbols.SearchGlobal(name)
		switch sym.Kind {
		case FunctionSymbol:
			dumpFunction(w, sym.Fn, "")
		case ClassSymbol:
			io.WriteString(w, "class "+sym.Class.Name+"\n")
			for _, fn := range sym.Class.Methods() {
				dumpFunction(w, fn, "  ")
			}
		}
	}
}

func dumpFunction(w io.Writer, fn *Function, indent string) {
	io.WriteString(w, indent+"function "+fn.Name+"\n")
	dumpBlock(w, fn.First, indent+"  ")
}

func dumpBlock(w io.Writer, b *BasicBlock, indent string) {
	if b == nil {
		return
	}
	for instr := b.First; instr != nil; instr = instr.Next() {
		io.WriteString(w, instr.Str(indent)+"\n")
		switch in := instr.(type) {
		case *Branch:
			dumpBlock(w, in.IfBlock, indent+"  ")
			dumpBlock(w, in.ElseBlock, indent+"  ")
		case *Loop:
			dumpBlock(w, in.Body, indent+"  ")
		}
	}
}
