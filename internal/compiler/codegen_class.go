package compiler

// classLayout is the generator's per-class memory and dispatch plan,
// computed lazily and cached: attribute offsets from the object base
// (word 0 is always the vtable pointer) and a vtable - an ordered list
// of methods indexed by position. An inherited, non-overridden method
// keeps its ancestor's slot, an overriding method takes over the slot of
// the method it overrides, and a new method takes the next one. autoSynth collects the runtime-supplied getClass/toString bodies
// this class needs a fresh implementation for.
type classLayout struct {
	size        int
	attrOffset  map[*Alloca]int
	methodIndex map[*Function]int
	vtable      []*Function
	autoSynth   []*Function
}

func vtableLabel(c *Class) string      { return c.Name + "$vtable" }
func constructorLabel(c *Class) string { return c.Name + "$constructor" }
func initLabel(c *Class) string        { return c.Name + "$init" }

// methodLabel mangles a method to its top-level VYPcode label using the
// class that actually owns it (Function.Owner), never the static
// context it was called through: an inherited method is emitted once,
// under its declaring class's label, and every descendant's vtable
// entry simply points at that same label.
func methodLabel(fn *Function) string {
	if fn.Owner == nil {
		return fn.Name
	}
	if fn == fn.Owner.Constructor {
		return constructorLabel(fn.Owner)
	}
	return fn.Owner.Name + "$" + fn.Name
}

// autoRuntimeMethods are the two Object methods with no user-authored
// body. The target VM has no field-introspection instruction, so the
// only runtime support worth generating is each class reporting its own
// name; getClass always does so (every class, including ones that never
// override it, gets its own implementation), toString falls back to the
// same behavior only where nothing up the chain ever gave it a body.
var autoRuntimeMethods = []string{"getClass", "toString"}

func (g *Generator) layoutFor(c *Class) *classLayout {
	if l, ok := g.layouts[c]; ok {
		return l
	}
	l := &classLayout{attrOffset: make(map[*Alloca]int), methodIndex: make(map[*Function]int)}
	base := 1
	if c.Parent != nil {
		parent := g.layoutFor(c.Parent)
		base = parent.size
		for a, off := range parent.attrOffset {
			l.attrOffset[a] = off
		}
		l.vtable = append(l.vtable, parent.vtable...)
		for fn, idx := range parent.methodIndex {
			l.methodIndex[fn] = idx
		}
	}
	for _, a := range c.Attributes() {
		l.attrOffset[a] = base
		base++
	}
	l.size = base

	for _, fn := range c.Methods() {
		if fn == c.Constructor {
			continue
		}
		g.placeMethod(c, l, fn)
	}
	g.applyAutoRuntimeMethods(c, l)

	g.layouts[c] = l
	return l
}

// placeMethod assigns fn its vtable slot: the parent's slot for the
// method it overrides, or a fresh one at the end.
func (g *Generator) placeMethod(c *Class, l *classLayout, fn *Function) {
	if c.Parent != nil {
		if orig, ok := c.GetOriginalMethod(fn.Name); ok {
			if idx, ok2 := l.methodIndex[orig]; ok2 {
				l.vtable[idx] = fn
				l.methodIndex[fn] = idx
				return
			}
		}
	}
	idx := len(l.vtable)
	l.vtable = append(l.vtable, fn)
	l.methodIndex[fn] = idx
}

func (g *Generator) synthesizeAutoMethod(c *Class, name string) *Function {
	this := NewAlloca(ClassType(c.Name), "this")
	fn := NewFunction(name, typed(String), []*Alloca{this})
	fn.Owner = c
	return fn
}

func (g *Generator) applyAutoRuntimeMethods(c *Class, l *classLayout) {
	if resolved, ok := c.GetMethod("getClass", nil, Public); ok {
		if idx, ok2 := l.methodIndex[resolved]; ok2 {
			auto := g.synthesizeAutoMethod(c, "getClass")
			l.methodIndex[auto] = idx
			l.vtable[idx] = auto
			l.autoSynth = append(l.autoSynth, auto)
		}
	}
	if resolved, ok := c.GetMethod("toString", nil, Public); ok && resolved.First == nil {
		if idx, ok2 := l.methodIndex[resolved]; ok2 {
			auto := g.synthesizeAutoMethod(c, "toString")
			l.methodIndex[auto] = idx
			l.vtable[idx] = auto
			l.autoSynth = append(l.autoSynth, auto)
		}
	}
}

// genAutoRuntimeMethod emits one of the synthesized getClass/toString
// bodies: load the class's own name as a string literal, return it.
func (g *Generator) genAutoRuntimeMethod(fn *Function) {
	g.line("LABEL %s", methodLabel(fn))
	g.line("SET $0, %s", Literal{Kind: StringLiteral, S: fn.Owner.Name}.VypcodeRepresentation())
	g.epilogNoLocals(len(fn.Args))
}

// genClass emits every piece of a class: its declared (non-constructor)
// method bodies, its synthesized runtime method bodies, its two-stage
// constructor ($constructor / $init), and its vtable data block.
func (g *Generator) genClass(c *Class) error {
	l := g.layoutFor(c)
	for _, fn := range c.Methods() {
		if fn == c.Constructor || fn.First == nil {
			continue
		}
		if err := g.genFunction(fn, methodLabel(fn)); err != nil {
			return err
		}
	}
	for _, fn := range l.autoSynth {
		g.genAutoRuntimeMethod(fn)
	}
	if err := g.genInit(c); err != nil {
		return err
	}
	g.genConstructor(c, l)
	g.genVtable(c, l)
	return nil
}

// genConstructor emits <Class>$constructor: it allocates the object,
// stamps its vtable pointer, runs the (possibly multi-level) initializer
// chain through $init, and returns the pointer. It takes no arguments -
// this is the label `new ClassName` calls directly.
func (g *Generator) genConstructor(c *Class, l *classLayout) {
	g.line("LABEL %s", constructorLabel(c))
	// One local slot: the freshly allocated pointer must survive the
	// nested call into $init, which clobbers $0.
	g.line("ADDI $SP, $SP, 1")
	g.line("RESIZE $0, %d", l.size)
	g.line("SET [$SP], $0")
	g.line("SET $1, %s", vtableLabel(c))
	g.line("SETWORD $0, 0, $1")
	g.line("ADDI $SP, $SP, 2")
	g.line("SET [$SP-1], $0")
	g.line("CALL [$SP], %s", initLabel(c))
	g.line("SUBI $SP, $SP, 2")
	g.line("SET $0, [$SP]")
	g.line("SUBI $SP, $SP, 1")
	g.line("SET $1, [$SP]")
	g.line("SUBI $SP, $SP, 1")
	g.line("RETURN $1")
}

// genInit emits <Class>$init(this): it calls the parent's $init on the
// same pointer first (running every inherited field's construction),
// then lowers the class's own explicit constructor body, if any. This
// is the routine spec's "calls the parent constructor on the same
// object" describes - split out from $constructor so the object is
// allocated exactly once, at the outermost call, and threaded down by
// reference rather than re-allocated at each level.
func (g *Generator) genInit(c *Class) error {
	this := c.ImplicitThis
	var ctorBody *BasicBlock
	if c.Constructor != nil {
		ctorBody = c.Constructor.First
	}
	body := g.implicitAndBody(c, ctorBody)
	args := []*Alloca{this}

	prelude := func(f *frame) {
		if c.Parent == nil {
			return
		}
		g.line("ADDI $SP, $SP, 2")
		f.shift(2)
		g.line("SET $0, %s", f.slot(this))
		g.line("SET [$SP-1], $0")
		g.line("CALL [$SP], %s", initLabel(c.Parent))
		g.line("SUBI $SP, $SP, 2")
		f.shift(-2)
	}

	return g.lowerFunctionBody(initLabel(c), args, body, prelude)
}

// implicitAndBody splices a class's default field initializers ahead of
// its explicit constructor body (if any) into one block, so buildFrame
// discovers every local/temporary across both in a single walk and the
// initializers always run before user constructor code, matching the
// "allocate, stamp vtable, chain parent init, run explicit constructor"
// order spec 4.5.7 describes.
func (g *Generator) implicitAndBody(c *Class, ctorBody *BasicBlock) *BasicBlock {
	if len(c.Implicit) == 0 {
		return ctorBody
	}
	merged := NewBasicBlock(g.ctx, initLabel(c)+".prelude")
	for _, instr := range c.Implicit {
		merged.Append(instr)
	}
	if ctorBody != nil {
		for instr := ctorBody.First; instr != nil; {
			next := instr.Next()
			merged.Append(instr)
			instr = next
		}
	}
	return merged
}

// genVtable emits a class's vtable as a sequence of label-valued words,
// one per dispatch slot, in slot order.
func (g *Generator) genVtable(c *Class, l *classLayout) {
	g.line("LABEL %s", vtableLabel(c))
	for _, fn := range l.vtable {
		g.line("WORD %s", methodLabel(fn))
	}
}
