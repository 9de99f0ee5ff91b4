package compiler

// frame is the generator's live view of one function activation: every
// Alloca currently addressable (parameters, declared locals, and the
// temporaries synthesized for non-simple sub-expressions) mapped to its
// signed "[$SP-k]" offset. Whenever the generator emits something that
// moves $SP (a nested call's argument reservation, a constructor's
// internal init call), it walks this map and shifts every entry by the
// same delta, then shifts back on the matching reclaim — this is what
// keeps every later `[$SP-k]` reference correct without re-deriving it.
type frame struct {
	offsets map[*Alloca]int
	argCount   int
	localCount int
}

func newFrame() *frame {
	return &frame{offsets: make(map[*Alloca]int)}
}

// shift adjusts every tracked offset by delta: $SP moving up by delta
// increases the distance ($SP - address) from every fixed address below
// it by the same amount.
func (f *frame) shift(delta int) {
	for a := range f.offsets {
		f.offsets[a] += delta
	}
}

func (f *frame) offsetOf(a *Alloca) (int, bool) {
	o, ok := f.offsets[a]
	return o, ok
}

func (f *frame) slot(a *Alloca) string {
	o, ok := f.offsetOf(a)
	if !ok {
		return "[$SP-?]"
	}
	if o == 0 {
		return "[$SP]"
	}
	return sprintfSlot(o)
}

func sprintfSlot(offset int) string {
	return "[$SP-" + itoa(offset) + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// collectAllocas walks a function's whole instruction tree - including
// every nested Branch/Loop body - and returns every *Alloca declaration
// it finds, in the order the source declares them. Synthetic
// temporaries are not discovered here; buildFrame appends them
// separately once per non-simple expression it encounters while walking
// the same tree.
func collectAllocas(block *BasicBlock) []*Alloca {
	var out []*Alloca
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		for instr := b.First; instr != nil; instr = instr.Next() {
			switch in := instr.(type) {
			case *Alloca:
				out = append(out, in)
			case *Branch:
				if in.IfBlock != nil {
					walk(in.IfBlock)
				}
				if in.ElseBlock != nil {
					walk(in.ElseBlock)
				}
			case *Loop:
				if in.Body != nil {
					walk(in.Body)
				}
			}
		}
	}
	if block != nil {
		walk(block)
	}
	return out
}

// collectTemporaries walks the same tree looking for every non-simple
// expression reachable from an Assignment, ObjectAssignment, Branch
// condition, Loop condition, or Return, and assigns each one a fresh
// Alloca of the expression's own type whose live range spans the whole
// function (see spec 4.5.4). Sub-expressions of a non-simple expression
// (e.g. both operands of a nested arithmetic expression) are walked too,
// since the generator may need a slot for each of them independently.
func collectTemporaries(block *BasicBlock, temps map[Expression]*Alloca, order *[]*Alloca) {
	note := func(e Expression) {
		if e == nil || e.IsSimple() {
			return
		}
		if _, ok := temps[e]; ok {
			return
		}
		a := NewAlloca(e.Type(), "$t")
		temps[e] = a
		*order = append(*order, a)
	}
	var walkExpr func(e Expression)
	walkExpr = func(e Expression) {
		if e == nil {
			return
		}
		note(e)
		switch ex := e.(type) {
		case *ArithExpr:
			walkExpr(ex.A)
			walkExpr(ex.B)
		case *ComparisonExpr:
			walkExpr(ex.A)
			walkExpr(ex.B)
		case *LogicalExpr:
			walkExpr(ex.A)
			walkExpr(ex.B)
		case *NotExpr:
			walkExpr(ex.A)
		case *ObjectCastExpr:
			walkExpr(ex.Inner)
		case *StringCastExpr:
			walkExpr(ex.Inner)
		case *FunctionExpr:
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *MethodExpr:
			walkExpr(ex.Context)
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ConstructorExpr:
			for _, a := range ex.Args {
				walkExpr(a)
			}
		case *ObjectAttributeExpr:
			walkExpr(ex.Object)
		}
	}
	var walkBlock func(b *BasicBlock)
	walkBlock = func(b *BasicBlock) {
		for instr := b.First; instr != nil; instr = instr.Next() {
			switch in := instr.(type) {
			case *Assignment:
				walkExpr(in.Expr)
			case *ObjectAssignment:
				walkExpr(in.Dest.Object)
				walkExpr(in.Expr)
			case *Branch:
				walkExpr(in.Cond)
				if in.IfBlock != nil {
					walkBlock(in.IfBlock)
				}
				if in.ElseBlock != nil {
					walkBlock(in.ElseBlock)
				}
			case *Loop:
				walkExpr(in.Cond)
				if in.Body != nil {
					walkBlock(in.Body)
				}
			case *Return:
				walkExpr(in.Expr)
			}
		}
	}
	if block != nil {
		walkBlock(block)
	}
}

// buildFrame computes the [$SP-k] offset of every argument, declared
// local, and lowered temporary for a function with the given arguments
// and body, following spec 4.5.3's layout exactly: locals (here,
// declared locals followed by temporaries, the order buildFrame itself
// assigns them in) occupy the high end of the frame once reserved, with
// loc1 at offset L-1 and locL at offset 0; arguments sit above that,
// arg1 at offset L+A down to argA at offset L+1.
func buildFrame(args []*Alloca, body *BasicBlock) (*frame, map[Expression]*Alloca) {
	locals := collectAllocas(body)
	temps := make(map[Expression]*Alloca)
	var tempOrder []*Alloca
	collectTemporaries(body, temps, &tempOrder)
	locals = append(locals, tempOrder...)

	f := newFrame()
	f.argCount = len(args)
	f.localCount = len(locals)
	L, A := len(locals), len(args)
	for idx, a := range args {
		f.offsets[a] = L + A - idx
	}
	for idx, a := range locals {
		f.offsets[a] = L - 1 - idx
	}
	return f, temps
}
