package compiler

import (
	"fmt"
	"strings"
)

// Generator walks the symbol table pass 2 built and writes a textual
// VYPcode program, one emission method per IR shape, in the teacher's
// write-as-you-walk style: nothing is buffered into an intermediate
// representation, every call appends directly to the output.
type Generator struct {
	ctx     *Context
	out     strings.Builder
	layouts map[*Class]*classLayout
}

func NewGenerator(ctx *Context) *Generator {
	return &Generator{ctx: ctx, layouts: make(map[*Class]*classLayout)}
}

func (g *Generator) line(format string, args ...interface{}) {
	fmt.Fprintf(&g.out, format+"\n", args...)
}

func (g *Generator) comment(format string, args ...interface{}) {
	if !g.ctx.Verbose {
		return
	}
	g.line("# "+format, args...)
}

// builtinBodies lists the fixed-template functions the runtime provides;
// their free-function symbols are seeded by seedBuiltins but they are
// never user-defined, so the generator emits a label and a hand-written
// body instead of walking IR for them.
var builtinBodies = map[string]func(g *Generator){
	"readInt":    (*Generator).genReadInt,
	"readFloat":  (*Generator).genReadFloat,
	"readString": (*Generator).genReadString,
	"length":     (*Generator).genLength,
	"subStr":     (*Generator).genSubStr,
}

// Generate lowers ctx's global symbol table to a complete VYPcode program.
func (g *Generator) Generate() (string, error) {
	g.line("#! /bin/vypint")
	g.line("# VYPcode: 1.0")
	g.line("CALL [$SP] main")
	g.line("JUMP ENDOFPROGRAM")

	g.genIntToString()

	for _, name := range g.ctx.Symbols.GlobalOrder() {
		sym, _ := g.ctx.Symbols.SearchGlobal(name)
		switch sym.Kind {
		case FunctionSymbol:
			if name == PrintFunctionName {
				continue // print has no body: every call site inlines it
			}
			if body, ok := builtinBodies[name]; ok {
				g.line("LABEL %s", name)
				body(g)
				continue
			}
			if err := g.genFunction(sym.Fn, ""); err != nil {
				return "", err
			}
		case ClassSymbol:
			if err := g.genClass(sym.Class); err != nil {
				return "", err
			}
		}
	}

	g.line("LABEL ENDOFPROGRAM")
	return g.out.String(), nil
}

// genReadInt through genSubStr are the fixed built-in templates: no
// locals, so the epilog is just "read return address, pop arguments,
// return" with the argument count for that builtin.
func (g *Generator) epilogNoLocals(argCount int) {
	g.line("SET $1, [$SP]")
	g.line("SUBI $SP, $SP, %d", argCount+1)
	g.line("RETURN $1")
}

func (g *Generator) genReadInt() {
	g.line("READI $0")
	g.epilogNoLocals(0)
}

func (g *Generator) genReadFloat() {
	g.line("READF $0")
	g.epilogNoLocals(0)
}

func (g *Generator) genReadString() {
	g.line("READS $0")
	g.epilogNoLocals(0)
}

func (g *Generator) genLength() {
	g.line("GETSIZE $0, [$SP-1]")
	g.epilogNoLocals(1)
}

// genSubStr copies len characters starting at start out of str into a
// freshly sized string, word by word. Its body is emitted once per
// program, so its labels are fixed and take nothing from the while-label
// counter.
func (g *Generator) genSubStr() {
	loop := "subStr.loop"
	done := "subStr.done"
	g.line("RESIZE $0, [$SP-1]")
	g.line("SET $2, 0")
	g.line("LABEL %s", loop)
	g.line("LTI $3, $2, [$SP-1]")
	g.line("JUMPZ %s, $3", done)
	g.line("ADDI $4, [$SP-2], $2")
	g.line("GETWORD $5, [$SP-3], $4")
	g.line("SETWORD $0, $2, $5")
	g.line("ADDI $2, $2, 1")
	g.line("JUMP %s", loop)
	g.line("LABEL %s", done)
	g.epilogNoLocals(3)
}
