package compiler

// paramDecl is a parsed, not-yet-bound parameter: a type and a name.
type paramDecl struct {
	Type Datatype
	Name string
}

// driver is the semantic-actions interface the grammar recognizer calls
// into. It is implemented twice — once by indexDriver (pass 1, forward
// declaration only) and once by parserDriver (pass 2, full IR
// construction) — so the same grammar-walking code in Parser drives both
// passes without duplicating a single production rule.
type driver interface {
	NewClass(name, base string) error
	NewFunction(ret *Datatype, name string, params []paramDecl, vis Visibility) (*Function, error)
	NewAttribute(t Datatype, name string, vis Visibility) (*Alloca, error)
	AttributeInit(attr *Alloca, value Expression) (Instruction, error)

	StartClassBody(name string) (*Class, error)
	EndClassBody()
	StartFunctionBody(fn *Function) error
	EndFunctionBody()

	NewDeclaration(t Datatype, name string) (*Alloca, error)
	Assign(dest, value Expression) (Instruction, error)
	CallFunc(fn Expression, args []Expression) (Expression, error)
	CreateReturn(value Expression) (Instruction, error)
	CreateIf(cond Expression, ifBlock, elseBlock *BasicBlock) (Instruction, error)
	CreateWhile(cond Expression, body *BasicBlock) (Instruction, error)
	CreateCastExpr(dest Datatype, inner Expression) (Expression, error)

	IdentifierExpr(name string) (Expression, error)
	ThisExpr() (Expression, error)
	SuperExpr() (Expression, error)
	NewExpr(className string) (Expression, error)
	LiteralExpr(lit Literal) Expression

	AddExpr(a, b Expression) (Expression, error)
	SubExpr(a, b Expression) (Expression, error)
	MulExpr(a, b Expression) (Expression, error)
	DivExpr(a, b Expression) (Expression, error)
	EqExpr(a, b Expression) (Expression, error)
	NeqExpr(a, b Expression) (Expression, error)
	LtExpr(a, b Expression) (Expression, error)
	LeqExpr(a, b Expression) (Expression, error)
	GtExpr(a, b Expression) (Expression, error)
	GeqExpr(a, b Expression) (Expression, error)
	AndExpr(a, b Expression) (Expression, error)
	OrExpr(a, b Expression) (Expression, error)
	NotExpr(a Expression) (Expression, error)
	DotExpr(obj Expression, id string) (Expression, error)

	NewBlock(name string) *BasicBlock
	EnsureMainDefined() error
}

// driverBase carries the state and the grammar-action behavior shared by
// both passes: class/function shell registration and attribute
// registration (parserDriver overrides NewFunction so that a free function
// pass 1 registered is reused rather than inserted twice). Index pass vs
// parser pass differ in body handling (index pass's bodies never escape a
// stub; parser pass's bodies become real IR), which is why those methods
// are NOT here.
type driverBase struct {
	ctx             *Context
	currentClass    *Class
	currentFunction *Function
}

func (b *driverBase) symbols() *SymbolTable { return b.ctx.Symbols }

func (b *driverBase) NewClass(name, base string) error {
	if base == "" && name != "Object" {
		base = "Object"
	}
	if sym, ok := b.symbols().SearchGlobal(name); ok {
		if sym.Kind != ClassSymbol {
			return makeSemanticError("redefinition of %s", name)
		}
		// Re-seen on pass 2 (or a second walk over the same class): the
		// base may have been an as-yet-undeclared forward reference when
		// pass 1 first inserted this class, so retry resolving it now
		// that every class has been indexed.
		if sym.Class.Parent == nil && base != "" {
			if parent, ok := b.symbols().LookupClass(base); ok {
				if err := sym.Class.SetParent(parent); err != nil {
					return err
				}
			} else {
				return makeSemanticError("undeclared base class %s for %s", base, name)
			}
		}
		return nil
	}
	cls := NewClass(name)
	if base != "" {
		if parent, ok := b.symbols().LookupClass(base); ok {
			if err := cls.SetParent(parent); err != nil {
				return err
			}
		}
		// An unresolved forward-referenced base is left nil here; the next
		// walk over this class (pass 2) retries resolution above.
	}
	b.symbols().Insert(name, ClassSym(cls))
	return nil
}

func (b *driverBase) NewFunction(ret *Datatype, name string, params []paramDecl, vis Visibility) (*Function, error) {
	args := make([]*Alloca, len(params))
	for i, p := range params {
		args[i] = NewAlloca(p.Type, p.Name)
	}
	fn := NewFunction(name, ret, args)
	if b.currentClass != nil {
		if err := b.currentClass.AddMethod(fn, vis); err != nil {
			return nil, err
		}
		return fn, nil
	}
	if !b.symbols().Insert(name, FunctionSym(fn)) {
		return nil, makeSemanticError("redefinition of %s", name)
	}
	return fn, nil
}

func (b *driverBase) NewAttribute(t Datatype, name string, vis Visibility) (*Alloca, error) {
	if b.currentClass == nil {
		return nil, makeInternalError("attribute %s declared outside a class", name)
	}
	a := NewAlloca(t, name)
	if err := b.currentClass.AddAttribute(a, vis); err != nil {
		return nil, err
	}
	return a, nil
}

func (b *driverBase) NewBlock(name string) *BasicBlock { return NewBasicBlock(b.ctx, name) }

func (b *driverBase) EnsureMainDefined() error {
	sym, ok := b.symbols().SearchGlobal("main")
	if !ok || sym.Kind != FunctionSymbol {
		return makeSemanticError("main not defined")
	}
	if !sym.Fn.IsVoid() || len(sym.Fn.Args) != 0 {
		return makeSemanticError("main not defined: must be void and take no arguments")
	}
	return nil
}
