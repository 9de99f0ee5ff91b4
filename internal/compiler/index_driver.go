package compiler

// indexDriver implements pass 1: it forward-declares every class and
// function so pass 2 can resolve references regardless of declaration
// order. Every expression/statement grammar action it backs returns a
// type-carrying but otherwise inert Dummy node — only name/type
// resolution is genuine. This guarantees an expression whose operand
// types are already wrong is reported exactly once, while the real IR
// shape is left to pass 2.
type indexDriver struct {
	driverBase
}

func newIndexDriver(ctx *Context) *indexDriver {
	return &indexDriver{driverBase{ctx: ctx}}
}

func (d *indexDriver) StartClassBody(name string) (*Class, error) {
	cls, ok := d.symbols().LookupClass(name)
	if !ok {
		return nil, makeInternalError("class %s was not indexed", name)
	}
	d.currentClass = cls
	d.symbols().Push(true)
	return cls, nil
}

func (d *indexDriver) EndClassBody() {
	d.currentClass = nil
	d.symbols().Pop()
}

func (d *indexDriver) StartFunctionBody(fn *Function) error {
	d.currentFunction = fn
	d.symbols().Push(false)
	for _, a := range fn.Args {
		d.symbols().Insert(a.Name, AllocaSym(a))
	}
	return nil
}

func (d *indexDriver) EndFunctionBody() {
	d.currentFunction = nil
	d.symbols().Pop()
}

func (d *indexDriver) NewDeclaration(t Datatype, name string) (*Alloca, error) {
	a := NewAlloca(t, name)
	d.symbols().Insert(name, AllocaSym(a))
	return a, nil
}

func (d *indexDriver) Assign(dest, value Expression) (Instruction, error) { return &Dummy{}, nil }

// AttributeInit only needs to surface a type mismatch exactly once; the
// real ObjectAssignment is pass 2's job (and pass 1's Class members are
// discarded wholesale by Class.Clear before pass 2 rebuilds them).
func (d *indexDriver) AttributeInit(attr *Alloca, value Expression) (Instruction, error) {
	if !d.symbols().CanAssign(attr.Type, value.Type()) {
		return nil, makeIncompatibilityError("cannot initialize attribute %s of type %s with %s", attr.Name, attr.Type, value.Type())
	}
	return &Dummy{}, nil
}

func (d *indexDriver) CallFunc(fn Expression, args []Expression) (Expression, error) {
	return NewDummyExpr(fn.Type()), nil
}

func (d *indexDriver) CreateReturn(value Expression) (Instruction, error) { return &Dummy{}, nil }

func (d *indexDriver) CreateIf(cond Expression, ifBlock, elseBlock *BasicBlock) (Instruction, error) {
	return &Dummy{}, nil
}

func (d *indexDriver) CreateWhile(cond Expression, body *BasicBlock) (Instruction, error) {
	return &Dummy{}, nil
}

func (d *indexDriver) CreateCastExpr(dest Datatype, inner Expression) (Expression, error) {
	return NewDummyExpr(dest), nil
}

func (d *indexDriver) IdentifierExpr(name string) (Expression, error) {
	if sym, ok := d.symbols().SearchAll(name); ok {
		switch sym.Kind {
		case AllocaSymbol:
			return NewDummyExpr(sym.Alloca.Type), nil
		case FunctionSymbol:
			return NewDummyExpr(FunctionType), nil
		}
	}
	if d.currentClass != nil {
		if a, ok := d.currentClass.GetAttribute(name, Private); ok {
			return NewDummyExpr(a.Type), nil
		}
	}
	return NewDummyExpr(InvalidType), nil
}

func (d *indexDriver) ThisExpr() (Expression, error) {
	if d.currentClass == nil {
		return nil, makeSyntaxError("this used outside a method")
	}
	return NewDummyExpr(ClassType(d.currentClass.Name)), nil
}

func (d *indexDriver) SuperExpr() (Expression, error) {
	if d.currentClass == nil || d.currentClass.Parent == nil {
		return nil, makeSyntaxError("super used without a parent class")
	}
	return NewDummyExpr(ClassType(d.currentClass.Parent.Name)), nil
}

func (d *indexDriver) NewExpr(className string) (Expression, error) {
	return NewDummyExpr(ClassType(className)), nil
}

func (d *indexDriver) LiteralExpr(lit Literal) Expression { return NewDummyExpr(lit.Type()) }

func (d *indexDriver) binaryDummy(a, b Expression) (Expression, error) {
	if a.Type().Equal(b.Type()) {
		return NewDummyExpr(a.Type()), nil
	}
	return NewDummyExpr(InvalidType), nil
}

func (d *indexDriver) AddExpr(a, b Expression) (Expression, error) { return d.binaryDummy(a, b) }
func (d *indexDriver) SubExpr(a, b Expression) (Expression, error) { return d.binaryDummy(a, b) }
func (d *indexDriver) MulExpr(a, b Expression) (Expression, error) { return d.binaryDummy(a, b) }
func (d *indexDriver) DivExpr(a, b Expression) (Expression, error) { return d.binaryDummy(a, b) }

func (d *indexDriver) intDummy(a, b Expression) (Expression, error) {
	return NewDummyExpr(PrimitiveType(Int)), nil
}

func (d *indexDriver) EqExpr(a, b Expression) (Expression, error)  { return d.intDummy(a, b) }
func (d *indexDriver) NeqExpr(a, b Expression) (Expression, error) { return d.intDummy(a, b) }
func (d *indexDriver) LtExpr(a, b Expression) (Expression, error)  { return d.intDummy(a, b) }
func (d *indexDriver) LeqExpr(a, b Expression) (Expression, error) { return d.intDummy(a, b) }
func (d *indexDriver) GtExpr(a, b Expression) (Expression, error)  { return d.intDummy(a, b) }
func (d *indexDriver) GeqExpr(a, b Expression) (Expression, error) { return d.intDummy(a, b) }
func (d *indexDriver) AndExpr(a, b Expression) (Expression, error) { return d.intDummy(a, b) }
func (d *indexDriver) OrExpr(a, b Expression) (Expression, error)  { return d.intDummy(a, b) }

func (d *indexDriver) NotExpr(a Expression) (Expression, error) {
	return NewDummyExpr(PrimitiveType(Int)), nil
}

// DotExpr at pass 1 only needs the member's type, not its exact Function;
// super.m()'s dummy expression already carries the parent's class type
// (see SuperExpr above), so this lookup naturally lands on the parent
// without a super-specific branch.
func (d *indexDriver) DotExpr(obj Expression, id string) (Expression, error) {
	if obj.Type().IsClass() {
		if cls, ok := d.symbols().LookupClass(obj.Type().ClassName); ok {
			if a, ok := cls.GetAttribute(id, Private); ok {
				return NewDummyExpr(a.Type), nil
			}
			if _, ok := cls.GetMethod(id, nil, Private); ok {
				return NewDummyExpr(FunctionType), nil
			}
		}
	}
	return NewDummyExpr(InvalidType), nil
}
