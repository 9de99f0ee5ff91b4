package compiler

// intToStringLabel names the fixed runtime routine (string)intExpr casts
// lower to: the target VM has no generic number-formatting instruction,
// so the generator carries one fixed digit-extraction routine, emitted
// once, and every int-to-string cast site just calls it.
const intToStringLabel = "$intToString"

// lowerExprInto emits the instructions that leave e's value in reg.
// Scratch registers $1/$2 are used freely by binary operators; the
// final value always lands in the caller's requested reg.
func (g *Generator) lowerExprInto(f *frame, temps map[Expression]*Alloca, e Expression, reg string) error {
	switch ex := e.(type) {
	case *LiteralExpr:
		g.line("SET %s, %s", reg, ex.Value.VypcodeRepresentation())
		return nil

	case *SuperExpr:
		g.line("SET %s, %s", reg, f.slot(ex.Alloca))
		return nil

	case *SymbolExpr:
		g.line("SET %s, %s", reg, f.slot(ex.Alloca))
		return nil

	case *ObjectAttributeExpr:
		if err := g.lowerExprInto(f, temps, ex.Object, reg); err != nil {
			return err
		}
		off := g.layoutFor(ex.Owner).attrOffset[ex.Attr]
		g.line("GETWORD %s, %s, %d", reg, reg, off)
		return nil

	case *ArithExpr:
		return g.lowerArith(f, temps, ex, reg)

	case *ComparisonExpr:
		return g.lowerComparison(f, temps, ex, reg)

	case *LogicalExpr:
		a, b, err := g.lowerBinaryOperands(f, temps, ex, ex.A, ex.B)
		if err != nil {
			return err
		}
		op := "AND"
		if ex.Op == LogOr {
			op = "OR"
		}
		g.line("%s %s, %s, %s", op, reg, a, b)
		return nil

	case *NotExpr:
		if err := g.lowerExprInto(f, temps, ex.A, "$1"); err != nil {
			return err
		}
		g.line("NOT %s, $1", reg)
		return nil

	case *ObjectCastExpr:
		// A cast between related object types is a pure relabeling at this
		// level: objects are addresses, and an up/down-cast never changes
		// the underlying layout, only which static type the front end
		// allows member lookups against.
		return g.lowerExprInto(f, temps, ex.Inner, reg)

	case *StringCastExpr:
		return g.lowerStringCast(f, temps, ex, reg)

	case *FunctionExpr:
		return g.lowerFunctionCall(f, temps, ex, reg)

	case *ConstructorExpr:
		return g.emitCall(f, temps, constructorLabel(ex.Class), ex.Args, reg)

	case *MethodExpr:
		return g.lowerMethodCall(f, temps, ex, reg)

	case *DummyExpr:
		return makeInternalError("code generator: dummy expression reached codegen")

	default:
		return makeInternalError("code generator: unhandled expression shape %T", e)
	}
}

// lowerBinaryOperands evaluates a into $1, always parks it in self's own
// temp slot, then evaluates b into $2 and reloads a from that slot
// before returning. The park/reload is unconditional - b's own lowering
// routinely uses $1 as scratch internally (a nested binary op, a call's
// argument staging), so a's value in $1 cannot be assumed to survive b's
// evaluation even when a itself is a simple literal or symbol read.
func (g *Generator) lowerBinaryOperands(f *frame, temps map[Expression]*Alloca, self, a, b Expression) (string, string, error) {
	if err := g.lowerExprInto(f, temps, a, "$1"); err != nil {
		return "", "", err
	}
	slot := temps[self]
	g.line("SET %s, $1", f.slot(slot))
	if err := g.lowerExprInto(f, temps, b, "$2"); err != nil {
		return "", "", err
	}
	g.line("SET $1, %s", f.slot(slot))
	return "$1", "$2", nil
}

func (g *Generator) lowerArith(f *frame, temps map[Expression]*Alloca, e *ArithExpr, reg string) error {
	a, b, err := g.lowerBinaryOperands(f, temps, e, e.A, e.B)
	if err != nil {
		return err
	}
	if e.A.Type().Prim == String {
		if e.Op != OpAdd {
			return makeInternalError("code generator: unsupported string operation %s", e.Op)
		}
		g.emitStringConcat(a, b, reg)
		return nil
	}
	suffix := "I"
	if e.A.Type().Prim == Float {
		suffix = "F"
	}
	var mnemonic string
	switch e.Op {
	case OpAdd:
		mnemonic = "ADD" + suffix
	case OpSub:
		mnemonic = "SUB" + suffix
	case OpMul:
		mnemonic = "MUL" + suffix
	case OpDiv:
		mnemonic = "DIV" + suffix
	}
	g.line("%s %s, %s, %s", mnemonic, reg, a, b)
	return nil
}

func (g *Generator) lowerComparison(f *frame, temps map[Expression]*Alloca, e *ComparisonExpr, reg string) error {
	a, b, err := g.lowerBinaryOperands(f, temps, e, e.A, e.B)
	if err != nil {
		return err
	}
	var suffix string
	switch {
	case e.A.Type().IsClass():
		suffix = "I" // objects are addresses; compared as plain ints
	case e.A.Type().Prim == String:
		if e.Op != CmpEq && e.Op != CmpNeq {
			return makeInternalError("code generator: string operands do not support ordering comparisons")
		}
		suffix = "S"
	case e.A.Type().Prim == Float:
		suffix = "F"
	default:
		suffix = "I"
	}
	var mnemonic string
	switch e.Op {
	case CmpEq:
		mnemonic = "EQ" + suffix
	case CmpNeq:
		mnemonic = "NEQ" + suffix
	case CmpLt:
		mnemonic = "LT" + suffix
	case CmpLeq:
		mnemonic = "LEQ" + suffix
	case CmpGt:
		mnemonic = "GT" + suffix
	case CmpGeq:
		mnemonic = "GEQ" + suffix
	}
	g.line("%s %s, %s, %s", mnemonic, reg, a, b)
	return nil
}

// emitStringConcat builds a fresh string sized to hold both operands and
// copies them in word by word, mirroring the subStr builtin's own
// GETSIZE/RESIZE/GETWORD/SETWORD copy-loop idiom.
func (g *Generator) emitStringConcat(a, b, reg string) {
	id := g.ctx.nextWhileLabel()
	loopA := "concat.a." + itoa(id)
	loopB := "concat.b." + itoa(id)
	doneA := "concat.enda." + itoa(id)
	doneB := "concat.endb." + itoa(id)

	g.line("GETSIZE $3, %s", a)
	g.line("GETSIZE $4, %s", b)
	g.line("ADDI $5, $3, $4")
	g.line("RESIZE %s, $5", reg)
	g.line("SET $6, 0")
	g.line("LABEL %s", loopA)
	g.line("LTI $7, $6, $3")
	g.line("JUMPZ %s, $7", doneA)
	g.line("GETWORD $8, %s, $6", a)
	g.line("SETWORD %s, $6, $8", reg)
	g.line("ADDI $6, $6, 1")
	g.line("JUMP %s", loopA)
	g.line("LABEL %s", doneA)
	g.line("SET $6, 0")
	g.line("LABEL %s", loopB)
	g.line("LTI $7, $6, $4")
	g.line("JUMPZ %s, $7", doneB)
	g.line("GETWORD $8, %s, $6", b)
	g.line("ADDI $9, $3, $6")
	g.line("SETWORD %s, $9, $8", reg)
	g.line("ADDI $6, $6, 1")
	g.line("JUMP %s", loopB)
	g.line("LABEL %s", doneB)
}

func (g *Generator) lowerStringCast(f *frame, temps map[Expression]*Alloca, e *StringCastExpr, reg string) error {
	return g.emitCall(f, temps, intToStringLabel, []Expression{e.Inner}, reg)
}

// emitCall reserves the call frame, evaluates and writes each argument
// directly into its reserved slot (no temp slot is needed: the value is
// committed to the stack immediately, before the next argument is
// evaluated), invokes target, reclaims the frame, and copies the result
// into reg if it isn't already $0.
func (g *Generator) emitCall(f *frame, temps map[Expression]*Alloca, target string, args []Expression, reg string) error {
	if err := g.emitCallCollecting(f, temps, target, args); err != nil {
		return err
	}
	if reg != "$0" {
		g.line("SET %s, $0", reg)
	}
	return nil
}

func (g *Generator) emitCallCollecting(f *frame, temps map[Expression]*Alloca, target string, args []Expression) error {
	a := len(args)
	g.line("ADDI $SP, $SP, %d", a+1)
	f.shift(a + 1)
	for idx, arg := range args {
		if err := g.lowerExprInto(f, temps, arg, "$0"); err != nil {
			return err
		}
		g.line("SET [$SP-%d], $0", a-idx)
	}
	g.line("CALL [$SP], %s", target)
	g.line("SUBI $SP, $SP, %d", a+1)
	f.shift(-(a + 1))
	return nil
}

func (g *Generator) lowerFunctionCall(f *frame, temps map[Expression]*Alloca, e *FunctionExpr, reg string) error {
	if err := g.emitCallCollecting(f, temps, e.Fn.Name, e.Args); err != nil {
		return err
	}
	if reg != "$0" {
		g.line("SET %s, $0", reg)
	}
	return nil
}

// lowerMethodCall pushes the receiver and every argument onto the
// reserved call frame exactly like an ordinary call, then resolves the
// target: Static dispatch (super.m()) calls the method's own label
// directly; ordinary dispatch reloads the receiver from the arg slot it
// was just written to (never held only in a register across the
// argument evaluation, which could otherwise clobber it) and walks its
// vtable pointer to the method's slot.
func (g *Generator) lowerMethodCall(f *frame, temps map[Expression]*Alloca, e *MethodExpr, reg string) error {
	args := append([]Expression{e.Context}, e.Args...)
	a := len(args)
	g.line("ADDI $SP, $SP, %d", a+1)
	f.shift(a + 1)
	for idx, arg := range args {
		if err := g.lowerExprInto(f, temps, arg, "$0"); err != nil {
			return err
		}
		g.line("SET [$SP-%d], $0", a-idx)
	}
	if e.Static {
		g.line("CALL [$SP], %s", methodLabel(e.Fn))
	} else {
		idx := g.layoutFor(e.Fn.Owner).methodIndex[e.Fn]
		g.line("SET $0, [$SP-%d]", a)
		g.line("GETWORD $0, $0, 0")
		g.line("GETWORD $0, $0, %d", idx)
		g.line("CALL [$SP], $0")
	}
	g.line("SUBI $SP, $SP, %d", a+1)
	f.shift(-(a + 1))
	if reg != "$0" {
		g.line("SET %s, $0", reg)
	}
	return nil
}

// genIntToString is the fixed runtime template backing (string) casts of
// int expressions: repeatedly divide by 10 to strip digits into a small
// scratch buffer, then copy them out in reverse, matching the
// digit-extraction approach used by any simple decimal formatter. Zero
// and negative values are handled as special cases.
func (g *Generator) genIntToString() {
	digits := intToStringLabel + ".digits"
	build := intToStringLabel + ".build"
	copySign := intToStringLabel + ".copysign"
	copyLoop := intToStringLabel + ".copy"
	done := intToStringLabel + ".done"

	g.line("LABEL %s", intToStringLabel)
	g.line("SET $1, [$SP-1]") // the int argument, consumed below
	g.line("RESIZE $9, 24")   // scratch digit buffer, low digit first
	g.line("SET $2, 0")       // digit count
	g.line("SET $3, 0")       // is-negative flag
	g.line("SET $5, 0")
	g.line("LTI $4, $1, 0")
	g.line("JUMPZ %s, $4", digits)
	g.line("SET $3, 1")
	g.line("SUBI $1, $5, $1")

	// Extract decimal digits least-significant first; zero still emits
	// exactly one digit via the $2>0 guard below.
	g.line("LABEL %s", digits)
	g.line("EQI $7, $1, 0")
	g.line("JUMPZ %s, $7", intToStringLabel+".loop")
	g.line("GTI $7, $2, 0")
	g.line("JUMPZ %s, $7", intToStringLabel+".loop")
	g.line("JUMP %s", build)
	g.line("LABEL %s", intToStringLabel+".loop")
	g.line("SET $8, 10")
	g.line("DIVI $4, $1, $8")
	g.line("MULI $5, $4, $8")
	g.line("SUBI $5, $1, $5")
	g.line("ADDI $5, $5, 48") // ASCII '0'
	g.line("SETWORD $9, $2, $5")
	g.line("ADDI $2, $2, 1")
	g.line("SET $1, $4")
	g.line("JUMP %s", digits)

	// Allocate the result (sign byte, if any, plus every digit) and copy
	// the sign followed by the digits out in reverse (the buffer holds
	// them low-digit-first, the string needs high-digit-first).
	g.line("LABEL %s", build)
	g.line("ADDI $4, $2, $3")
	g.line("RESIZE $0, $4")
	g.line("SET $5, 0")
	g.line("JUMPZ %s, $3", copySign)
	g.line("SET $6, 45") // ASCII '-'
	g.line("SETWORD $0, 0, $6")
	g.line("SET $5, 1")
	g.line("LABEL %s", copySign)
	g.line("SUBI $6, $2, 1")
	g.line("LABEL %s", copyLoop)
	g.line("GEQI $7, $6, 0")
	g.line("JUMPZ %s, $7", done)
	g.line("GETWORD $8, $9, $6")
	g.line("SETWORD $0, $5, $8")
	g.line("ADDI $5, $5, 1")
	g.line("SUBI $6, $6, 1")
	g.line("JUMP %s", copyLoop)
	g.line("LABEL %s", done)
	g.epilogNoLocals(1)
}
