package compiler

// Context carries everything that must be fresh per Compile invocation:
// the symbol table and the monotonic counters the generator and block
// constructors draw labels from. These must not repeat within one compile
// but must never leak across separate compiles, so they live here rather
// than as package-level globals.
type Context struct {
	Symbols *SymbolTable
	Verbose bool

	blockID    int
	ifLabel    int
	whileLabel int
}

// NewContext returns a context with a fresh symbol table seeded with the
// built-in environment.
func NewContext() *Context {
	ctx := &Context{Symbols: NewSymbolTable()}
	seedBuiltins(ctx.Symbols)
	return ctx
}

func (c *Context) nextBlockID() int {
	id := c.blockID
	c.blockID++
	return id
}

func (c *Context) nextIfLabel() int {
	id := c.ifLabel
	c.ifLabel++
	return id
}

func (c *Context) nextWhileLabel() int {
	id := c.whileLabel
	c.whileLabel++
	return id
}
