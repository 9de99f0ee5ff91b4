package compiler

// parserDriver implements pass 2: constructed over the same global symbol
// table pass 1 built (so every forward reference already resolves), it
// assembles the real IR and runs every semantic check.
type parserDriver struct {
	driverBase
}

func newParserDriver(ctx *Context) *parserDriver {
	return &parserDriver{driverBase{ctx: ctx}}
}

// StartClassBody re-enters a class pass 1 already declared: it clears the
// stub members pass 1 left behind (pass 2 re-declares every member for
// real as it walks the body) while preserving the class's identity and
// parent link, then opens a function-storing scope for the body.
func (d *parserDriver) StartClassBody(name string) (*Class, error) {
	cls, ok := d.symbols().LookupClass(name)
	if !ok {
		return nil, makeInternalError("class %s was not indexed", name)
	}
	cls.Clear()
	d.currentClass = cls
	d.symbols().Push(true)
	// Bind "this" at class-body scope so default attribute initializers
	// (evaluated before any method scope exists) can still write
	// this.field / read fellow attributes through the usual identifier
	// and this-expression paths. Every method's own StartFunctionBody
	// push shadows this with the same Alloca, so identity never splits.
	d.symbols().Insert("this", AllocaSym(cls.ImplicitThis))
	return cls, nil
}

func (d *parserDriver) EndClassBody() {
	d.currentClass = nil
	d.symbols().Pop()
}

// StartFunctionBody synthesizes the leading "this" parameter for every
// method, constructor included (the constructor's own user-facing
// parameter list is checked empty back in Class.AddMethod, before this
// runs), checks override compatibility against the parent's same-named
// method for non-constructor methods, then pushes the function's scope
// and binds its parameters.
func (d *parserDriver) StartFunctionBody(fn *Function) error {
	if d.currentClass != nil {
		this := d.currentClass.ImplicitThis
		fn.Args = append([]*Alloca{this}, fn.Args...)
		if fn != d.currentClass.Constructor {
			if parent := d.currentClass.Parent; parent != nil {
				if orig, ok := d.currentClass.GetOriginalMethod(fn.Name); ok {
					if !fn.SameSignature(orig) {
						return makeIncompatibilityError("method %s in %s does not match the overridden signature from %s", fn.Name, d.currentClass.Name, parent.Name)
					}
				}
			}
		}
	}
	d.currentFunction = fn
	d.symbols().Push(false)
	for _, a := range fn.Args {
		if !d.symbols().Insert(a.Name, AllocaSym(a)) {
			return makeSemanticError("redefinition of parameter %s", a.Name)
		}
	}
	return nil
}

func (d *parserDriver) EndFunctionBody() {
	d.currentFunction = nil
	d.symbols().Pop()
}

// NewFunction re-enters a free function pass 1 already declared and
// returns that same Function (redefinitions were rejected in pass 1);
// methods go through driverBase, since StartClassBody has already cleared
// the class's pass-1 members.
func (d *parserDriver) NewFunction(ret *Datatype, name string, params []paramDecl, vis Visibility) (*Function, error) {
	if d.currentClass == nil {
		if sym, ok := d.symbols().SearchGlobal(name); ok && sym.Kind == FunctionSymbol {
			return sym.Fn, nil
		}
	}
	return d.driverBase.NewFunction(ret, name, params, vis)
}

func (d *parserDriver) NewDeclaration(t Datatype, name string) (*Alloca, error) {
	a := NewAlloca(t, name)
	if !d.symbols().Insert(name, AllocaSym(a)) {
		return nil, makeSemanticError("redefinition of %s", name)
	}
	return a, nil
}

// Assign dispatches on destExpr's concrete type: Symbol becomes a plain
// Assignment, ObjectAttribute becomes an ObjectAssignment, anything else
// is a semantic error (assignment to a non-lvalue).
func (d *parserDriver) Assign(dest, value Expression) (Instruction, error) {
	if !d.symbols().CanAssign(dest.Type(), value.Type()) {
		return nil, makeIncompatibilityError("cannot assign %s to %s", value.Type(), dest.Type())
	}
	switch de := dest.(type) {
	case *SymbolExpr:
		return &Assignment{Dest: de.Alloca, Expr: value}, nil
	case *ObjectAttributeExpr:
		return &ObjectAssignment{Dest: de, Expr: value}, nil
	default:
		return nil, makeSemanticError("invalid assignment target")
	}
}

// CallFunc resolves a function/method/constructor call: it implicitly
// prepends a MethodExpr's context as the first argument, checks argument
// count and per-position assignability (print is special-cased: at least
// one argument, all primitive), and returns the now-typed call expression.
func (d *parserDriver) CallFunc(fn Expression, args []Expression) (Expression, error) {
	switch e := fn.(type) {
	case *FunctionExpr:
		if e.Fn.Name == PrintFunctionName {
			if len(args) == 0 {
				return nil, makeIncompatibilityError("print requires at least one argument")
			}
			for _, a := range args {
				if !a.Type().IsPrimitive() {
					return nil, makeIncompatibilityError("print only accepts primitive arguments, got %s", a.Type())
				}
			}
			return e.WithArgs(args), nil
		}
		if err := checkArgs(e.Fn.ArgTypes(), args, d.symbols()); err != nil {
			return nil, err
		}
		return e.WithArgs(args), nil
	case *MethodExpr:
		full := append([]Expression{e.Context}, args...)
		if err := checkArgs(e.Fn.ArgTypes(), full, d.symbols()); err != nil {
			return nil, err
		}
		return e.WithArgs(args), nil
	case *ConstructorExpr:
		if err := checkArgs(nil, args, d.symbols()); err != nil {
			return nil, err
		}
		return e.WithArgs(args), nil
	default:
		return nil, makeSemanticError("expression is not callable")
	}
}

// AttributeInit builds the default-initializer ObjectAssignment for attr
// and records it on the owning class's Implicit list, where the
// constructor generator runs it before the explicit constructor body (or
// in its place, for a class with none).
func (d *parserDriver) AttributeInit(attr *Alloca, value Expression) (Instruction, error) {
	if d.currentClass == nil {
		return nil, makeInternalError("attribute initializer outside a class")
	}
	if !d.symbols().CanAssign(attr.Type, value.Type()) {
		return nil, makeIncompatibilityError("cannot initialize attribute %s of type %s with %s", attr.Name, attr.Type, value.Type())
	}
	owner := d.currentClass
	dest := NewObjectAttributeExpr(NewSymbolExpr(owner.ImplicitThis), attr, owner)
	instr := &ObjectAssignment{Dest: dest, Expr: value}
	owner.Implicit = append(owner.Implicit, instr)
	return instr, nil
}

func checkArgs(want []Datatype, have []Expression, st *SymbolTable) error {
	if len(want) != len(have) {
		return makeIncompatibilityError("expected %d arguments, got %d", len(want), len(have))
	}
	for i, w := range want {
		if !st.CanAssign(w, have[i].Type()) {
			return makeIncompatibilityError("argument %d: cannot assign %s to %s", i, have[i].Type(), w)
		}
	}
	return nil
}

func (d *parserDriver) CreateReturn(value Expression) (Instruction, error) {
	if d.currentFunction == nil {
		return nil, makeSyntaxError("return outside a function")
	}
	if value == nil {
		if !d.currentFunction.IsVoid() {
			return nil, makeIncompatibilityError("non-void function %s must return a value", d.currentFunction.Name)
		}
		return &Return{}, nil
	}
	if d.currentFunction.IsVoid() {
		return nil, makeIncompatibilityError("void function %s must not return a value", d.currentFunction.Name)
	}
	if !d.symbols().CanAssign(*d.currentFunction.Return, value.Type()) {
		return nil, makeIncompatibilityError("cannot return %s from function declared to return %s", value.Type(), *d.currentFunction.Return)
	}
	return &Return{Expr: value}, nil
}

func conditionOK(cond Expression) bool {
	return cond.Type().Equal(PrimitiveType(Int)) || cond.Type().IsClass()
}

func (d *parserDriver) CreateIf(cond Expression, ifBlock, elseBlock *BasicBlock) (Instruction, error) {
	if !conditionOK(cond) {
		return nil, makeIncompatibilityError("if condition must be int or an object type, got %s", cond.Type())
	}
	return &Branch{Cond: cond, IfBlock: ifBlock, ElseBlock: elseBlock}, nil
}

func (d *parserDriver) CreateWhile(cond Expression, body *BasicBlock) (Instruction, error) {
	if !conditionOK(cond) {
		return nil, makeIncompatibilityError("while condition must be int or an object type, got %s", cond.Type())
	}
	return &Loop{Cond: cond, Body: body}, nil
}

// CreateCastExpr is legal only for object→object (subsumption checked at
// codegen/runtime, not here) or Int→String.
func (d *parserDriver) CreateCastExpr(dest Datatype, inner Expression) (Expression, error) {
	if dest.IsClass() {
		cls, ok := d.symbols().LookupClass(dest.ClassName)
		if !ok {
			return nil, makeSemanticError("undeclared class %s", dest.ClassName)
		}
		return NewObjectCastExpr(cls, inner)
	}
	if dest.Equal(PrimitiveType(String)) {
		return NewStringCastExpr(inner)
	}
	return nil, makeIncompatibilityError("invalid cast target %s", dest)
}

// IdentifierExpr resolves a bare name: a local/parameter first, then a
// same-class attribute or method reached through an implicit "this" (so
// method bodies can refer to fellow members by bare name), then a free
// function.
func (d *parserDriver) IdentifierExpr(name string) (Expression, error) {
	sym, found := d.symbols().SearchAll(name)
	if found && sym.Kind == AllocaSymbol {
		return NewSymbolExpr(sym.Alloca), nil
	}
	if d.currentClass != nil {
		if a, ok := d.currentClass.GetAttribute(name, Private); ok {
			this, err := d.ThisExpr()
			if err != nil {
				return nil, err
			}
			return NewObjectAttributeExpr(this, a, d.currentClass), nil
		}
		if fn, ok := d.currentClass.GetMethod(name, nil, Private); ok {
			this, err := d.ThisExpr()
			if err != nil {
				return nil, err
			}
			return NewMethodExpr(fn, this)
		}
	}
	if found && sym.Kind == FunctionSymbol {
		return NewFunctionExpr(sym.Fn), nil
	}
	return nil, makeSemanticError("undeclared identifier %s", name)
}

func (d *parserDriver) ThisExpr() (Expression, error) {
	if d.currentClass == nil {
		return nil, makeSyntaxError("this used outside a method")
	}
	sym, ok := d.symbols().SearchAll("this")
	if !ok {
		return nil, makeSemanticError("this used in the constructor, which has no receiver binding")
	}
	return NewSymbolExpr(sym.Alloca), nil
}

func (d *parserDriver) SuperExpr() (Expression, error) {
	if d.currentClass == nil || d.currentClass.Parent == nil {
		return nil, makeSyntaxError("super used without a parent class")
	}
	sym, ok := d.symbols().SearchAll("this")
	if !ok {
		return nil, makeSemanticError("super used in the constructor, which has no receiver binding")
	}
	return NewSuperExpr(sym.Alloca, d.currentClass), nil
}

func (d *parserDriver) NewExpr(className string) (Expression, error) {
	cls, ok := d.symbols().LookupClass(className)
	if !ok {
		return nil, makeSemanticError("undeclared class %s", className)
	}
	return NewConstructorExpr(cls), nil
}

func (d *parserDriver) LiteralExpr(lit Literal) Expression { return NewLiteralExpr(lit) }

func (d *parserDriver) AddExpr(a, b Expression) (Expression, error) { return NewArithExpr(OpAdd, a, b) }
func (d *parserDriver) SubExpr(a, b Expression) (Expression, error) { return NewArithExpr(OpSub, a, b) }
func (d *parserDriver) MulExpr(a, b Expression) (Expression, error) { return NewArithExpr(OpMul, a, b) }
func (d *parserDriver) DivExpr(a, b Expression) (Expression, error) { return NewArithExpr(OpDiv, a, b) }

func (d *parserDriver) EqExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpEq, a, b)
}
func (d *parserDriver) NeqExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpNeq, a, b)
}
func (d *parserDriver) LtExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpLt, a, b)
}
func (d *parserDriver) LeqExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpLeq, a, b)
}
func (d *parserDriver) GtExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpGt, a, b)
}
func (d *parserDriver) GeqExpr(a, b Expression) (Expression, error) {
	return NewComparisonExpr(CmpGeq, a, b)
}

func (d *parserDriver) AndExpr(a, b Expression) (Expression, error) {
	return NewLogicalExpr(LogAnd, a, b)
}
func (d *parserDriver) OrExpr(a, b Expression) (Expression, error) {
	return NewLogicalExpr(LogOr, a, b)
}
func (d *parserDriver) NotExpr(a Expression) (Expression, error) { return NewNotExpr(a) }

// DotExpr requires obj to be object-typed; lookup visibility is Private
// iff the current method's owning class is exactly obj's declared class,
// else Public. A super-taken obj resolves its member against the parent
// class directly (statically), not against obj's declared type, since
// super.m() means "the parent's implementation", overridden or not.
func (d *parserDriver) DotExpr(obj Expression, id string) (Expression, error) {
	if !obj.Type().IsClass() {
		return nil, makeIncompatibilityError("field access requires an object, got %s", obj.Type())
	}
	if sup, ok := obj.(*SuperExpr); ok {
		parent := sup.Child.Parent
		if a, ok := parent.GetAttribute(id, Public); ok {
			return NewObjectAttributeExpr(obj, a, parent), nil
		}
		if fn, ok := parent.GetMethod(id, nil, Public); ok {
			return NewMethodExpr(fn, obj)
		}
		return nil, makeSemanticError("%s has no member %s", parent.Name, id)
	}
	cls, ok := d.symbols().LookupClass(obj.Type().ClassName)
	if !ok {
		return nil, makeSemanticError("undeclared class %s", obj.Type().ClassName)
	}
	vis := Public
	if d.currentClass != nil && d.currentClass.Name == obj.Type().ClassName {
		vis = Private
	}
	if a, ok := cls.GetAttribute(id, vis); ok {
		return NewObjectAttributeExpr(obj, a, cls), nil
	}
	if fn, ok := cls.GetMethod(id, nil, vis); ok {
		return NewMethodExpr(fn, obj)
	}
	return nil, makeSemanticError("%s has no member %s", cls.Name, id)
}
