package compiler

// genFunction emits a free function or a declared (non-constructor)
// method. label, when non-empty, overrides the function's bare name -
// used for methods, whose label is mangled through their owning class.
func (g *Generator) genFunction(fn *Function, label string) error {
	if label == "" {
		label = fn.Name
	}
	return g.lowerFunctionBody(label, fn.Args, fn.First, nil)
}

// lowerFunctionBody is the shared frame/prolog/body/epilog driver behind
// genFunction and genInit: it computes the frame, emits the label and
// prolog, runs an optional prelude (genInit's parent-chaining call),
// lowers the body's statements, and - if the body does not already end
// in a Return - appends the implicit "return nothing meaningful" epilog
// every void (or never-reached) path needs.
func (g *Generator) lowerFunctionBody(label string, args []*Alloca, body *BasicBlock, prelude func(f *frame)) error {
	f, temps := buildFrame(args, body)
	g.line("LABEL %s", label)
	if f.localCount > 0 {
		g.line("ADDI $SP, $SP, %d", f.localCount)
	}
	if prelude != nil {
		prelude(f)
	}
	if body != nil {
		if err := g.lowerBlock(f, temps, body); err != nil {
			return err
		}
	}
	if !endsInReturn(body) {
		g.line("SET $0, 0")
		g.emitEpilog(f)
	}
	return nil
}

func endsInReturn(b *BasicBlock) bool {
	if b == nil {
		return false
	}
	var last Instruction
	for instr := b.First; instr != nil; instr = instr.Next() {
		last = instr
	}
	_, ok := last.(*Return)
	return ok
}

// emitEpilog reclaims locals (if any), reads the return address, reclaims
// arguments and the return-address slot itself, and returns.
func (g *Generator) emitEpilog(f *frame) {
	if f.localCount > 0 {
		g.line("SUBI $SP, $SP, %d", f.localCount)
	}
	g.line("SET $1, [$SP]")
	g.line("SUBI $SP, $SP, %d", f.argCount+1)
	g.line("RETURN $1")
}

// lowerBlock lowers one statement list, dispatching on concrete
// Instruction type; Branch and Loop recurse into their own nested blocks.
func (g *Generator) lowerBlock(f *frame, temps map[Expression]*Alloca, b *BasicBlock) error {
	for instr := b.First; instr != nil; instr = instr.Next() {
		switch in := instr.(type) {
		case *Alloca:
			// Declaration only; its frame slot was already assigned.
		case *Assignment:
			if err := g.lowerAssignment(f, temps, in); err != nil {
				return err
			}
		case *ObjectAssignment:
			if err := g.lowerObjectAssignment(f, temps, in); err != nil {
				return err
			}
		case *Branch:
			if err := g.lowerBranch(f, temps, in); err != nil {
				return err
			}
		case *Loop:
			if err := g.lowerLoop(f, temps, in); err != nil {
				return err
			}
		case *Return:
			if err := g.lowerReturn(f, temps, in); err != nil {
				return err
			}
		case *Dummy:
			// never reached in pass 2 IR
		default:
			return makeInternalError("code generator: unhandled instruction shape %T", in)
		}
	}
	return nil
}

func (g *Generator) lowerAssignment(f *frame, temps map[Expression]*Alloca, in *Assignment) error {
	if fn, ok := in.Expr.(*FunctionExpr); ok && fn.Fn.Name == PrintFunctionName {
		return g.lowerPrint(f, temps, fn)
	}
	if err := g.lowerExprInto(f, temps, in.Expr, "$0"); err != nil {
		return err
	}
	if in.Dest == nil {
		return nil // evaluated for side effect only
	}
	g.line("SET %s, $0", f.slot(in.Dest))
	return nil
}

func (g *Generator) lowerObjectAssignment(f *frame, temps map[Expression]*Alloca, in *ObjectAssignment) error {
	if err := g.lowerExprInto(f, temps, in.Expr, "$1"); err != nil {
		return err
	}
	if err := g.lowerExprInto(f, temps, in.Dest.Object, "$0"); err != nil {
		return err
	}
	off := g.layoutFor(in.Dest.Owner).attrOffset[in.Dest.Attr]
	g.line("SETWORD $0, %d, $1", off)
	return nil
}

// lowerPrint inlines a print(...) call argument by argument: the
// front-end already guaranteed every argument is primitive, so each
// value simply needs the WRITE instruction matching its own type.
func (g *Generator) lowerPrint(f *frame, temps map[Expression]*Alloca, fn *FunctionExpr) error {
	for _, arg := range fn.Args {
		if err := g.lowerExprInto(f, temps, arg, "$0"); err != nil {
			return err
		}
		switch arg.Type().Prim {
		case Int:
			g.line("WRITEI $0")
		case Float:
			g.line("WRITEF $0")
		case String:
			g.line("WRITES $0")
		}
	}
	return nil
}

func (g *Generator) lowerReturn(f *frame, temps map[Expression]*Alloca, in *Return) error {
	if in.Expr != nil {
		if err := g.lowerExprInto(f, temps, in.Expr, "$0"); err != nil {
			return err
		}
	} else {
		g.line("SET $0, 0")
	}
	g.emitEpilog(f)
	return nil
}

// lowerBranch emits a structured if/else using three labels unique to
// this branch site: thenLbl (the start of the if block), elseLbl (taken
// when the condition is false), and endLbl (both paths converge on),
// matching the literal structure scenario (f) describes for a simple
// loop's own JUMPZ/JUMP pair.
func (g *Generator) lowerBranch(f *frame, temps map[Expression]*Alloca, in *Branch) error {
	id := g.ctx.nextIfLabel()
	thenLbl := ifLabelName(id, "then")
	elseLbl := ifLabelName(id, "else")
	endLbl := ifLabelName(id, "end")

	if err := g.lowerExprInto(f, temps, in.Cond, "$0"); err != nil {
		return err
	}
	g.line("JUMPZ %s, $0", elseLbl)
	g.line("LABEL %s", thenLbl)
	if in.IfBlock != nil {
		if err := g.lowerBlock(f, temps, in.IfBlock); err != nil {
			return err
		}
	}
	g.line("JUMP %s", endLbl)
	g.line("LABEL %s", elseLbl)
	if in.ElseBlock != nil {
		if err := g.lowerBlock(f, temps, in.ElseBlock); err != nil {
			return err
		}
	}
	g.line("LABEL %s", endLbl)
	return nil
}

func ifLabelName(id int, suffix string) string {
	return "if." + itoa(id) + "." + suffix
}

func whileLabelName(id int, suffix string) string {
	return "while_" + suffix + "_" + itoa(id)
}

// lowerLoop emits a structured while using the while_cond_N/while_end_N
// label pair.
func (g *Generator) lowerLoop(f *frame, temps map[Expression]*Alloca, in *Loop) error {
	id := g.ctx.nextWhileLabel()
	condLbl := whileLabelName(id, "cond")
	endLbl := whileLabelName(id, "end")

	g.line("LABEL %s", condLbl)
	if err := g.lowerExprInto(f, temps, in.Cond, "$0"); err != nil {
		return err
	}
	g.line("JUMPZ %s, $0", endLbl)
	if in.Body != nil {
		if err := g.lowerBlock(f, temps, in.Body); err != nil {
			return err
		}
	}
	g.line("JUMP %s", condLbl)
	g.line("LABEL %s", endLbl)
	return nil
}
