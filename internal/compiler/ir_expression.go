package compiler

import "fmt"

// Expression is the polymorphic capability every IR expression node
// implements. Every concrete variant below validates its own invariants at
// construction time and returns a SemanticError/IncompatibilityError
// rather than building a malformed node.
type Expression interface {
	Type() Datatype
	String() string
	IsSimple() bool
}

// LiteralExpr wraps a constant value; its type projects from the literal.
type LiteralExpr struct {
	Value Literal
}

func NewLiteralExpr(v Literal) *LiteralExpr { return &LiteralExpr{Value: v} }

func (e *LiteralExpr) Type() Datatype { return e.Value.Type() }
func (e *LiteralExpr) String() string { return e.Value.VypcodeRepresentation() }
func (e *LiteralExpr) IsSimple() bool { return true }

// SymbolExpr reads an Alloca (parameter or local).
type SymbolExpr struct {
	Alloca *Alloca
}

func NewSymbolExpr(a *Alloca) *SymbolExpr { return &SymbolExpr{Alloca: a} }

func (e *SymbolExpr) Type() Datatype { return e.Alloca.Type }
func (e *SymbolExpr) String() string { return "(symbol: " + e.Alloca.Name + ")" }
func (e *SymbolExpr) IsSimple() bool { return true }

// SuperExpr is a Symbol over the synthetic "this" taken from the
// perspective of the parent class, carrying the child class it was taken
// in so the generator can still compute the real object's attribute
// offsets while dispatching statically to the parent's methods.
type SuperExpr struct {
	SymbolExpr
	Child *Class
}

func NewSuperExpr(this *Alloca, child *Class) *SuperExpr {
	return &SuperExpr{SymbolExpr: SymbolExpr{Alloca: this}, Child: child}
}

// ObjectCastExpr casts an object-typed inner expression to class.
type ObjectCastExpr struct {
	Class *Class
	Inner Expression
}

func NewObjectCastExpr(class *Class, inner Expression) (*ObjectCastExpr, error) {
	if !inner.Type().IsClass() {
		return nil, makeIncompatibilityError("invalid cast: %s is not an object type", inner.Type())
	}
	return &ObjectCastExpr{Class: class, Inner: inner}, nil
}

func (e *ObjectCastExpr) Type() Datatype { return ClassType(e.Class.Name) }
func (e *ObjectCastExpr) String() string {
	return fmt.Sprintf("(%s)%s", e.Class.Name, e.Inner.String())
}
func (e *ObjectCastExpr) IsSimple() bool { return false }

// StringCastExpr stringifies an int expression.
type StringCastExpr struct {
	Inner Expression
}

func NewStringCastExpr(inner Expression) (*StringCastExpr, error) {
	if !inner.Type().Equal(PrimitiveType(Int)) {
		return nil, makeIncompatibilityError("invalid cast: (string) requires an int operand, got %s", inner.Type())
	}
	return &StringCastExpr{Inner: inner}, nil
}

func (e *StringCastExpr) Type() Datatype { return PrimitiveType(String) }
func (e *StringCastExpr) String() string { return "(string)" + e.Inner.String() }
func (e *StringCastExpr) IsSimple() bool { return false }

// FunctionExpr names a free function. Its type is FunctionType until Args
// is attached, at which point it becomes the function's declared return
// type (or InvalidType for void, which is only legal as a statement).
type FunctionExpr struct {
	Fn   *Function
	Args []Expression
}

func NewFunctionExpr(fn *Function) *FunctionExpr { return &FunctionExpr{Fn: fn} }

func (e *FunctionExpr) WithArgs(args []Expression) *FunctionExpr {
	return &FunctionExpr{Fn: e.Fn, Args: args}
}

func (e *FunctionExpr) Type() Datatype {
	if e.Args == nil {
		return FunctionType
	}
	if e.Fn.Return == nil {
		return InvalidType
	}
	return *e.Fn.Return
}
func (e *FunctionExpr) String() string { return "(function: " + e.Fn.Name + ")" }
func (e *FunctionExpr) IsSimple() bool { return false }

// ConstructorExpr is the special function expression produced by `new
// ClassName`: unlike a bare FunctionExpr it always carries the class's
// type, since constructing an object always yields one, never a deferred
// FunctionType.
type ConstructorExpr struct {
	Class *Class
	Args  []Expression
}

func NewConstructorExpr(class *Class) *ConstructorExpr { return &ConstructorExpr{Class: class} }

func (e *ConstructorExpr) WithArgs(args []Expression) *ConstructorExpr {
	return &ConstructorExpr{Class: e.Class, Args: args}
}

func (e *ConstructorExpr) Type() Datatype { return ClassType(e.Class.Name) }
func (e *ConstructorExpr) String() string { return "(new " + e.Class.Name + ")" }
func (e *ConstructorExpr) IsSimple() bool { return false }

// MethodExpr names a method resolved against an object-typed context.
// Static is set when the call must bypass the vtable and dispatch
// directly to Fn's own label — the case for a super.m() call, where the
// receiver's dynamic type may have overridden m but the source means the
// parent's implementation specifically.
type MethodExpr struct {
	Fn      *Function
	Context Expression
	Args    []Expression
	Static  bool
}

func NewMethodExpr(fn *Function, context Expression) (*MethodExpr, error) {
	if !context.Type().IsClass() {
		return nil, makeIncompatibilityError("method context must be an object type, got %s", context.Type())
	}
	_, static := context.(*SuperExpr)
	return &MethodExpr{Fn: fn, Context: context, Static: static}, nil
}

func (e *MethodExpr) WithArgs(args []Expression) *MethodExpr {
	return &MethodExpr{Fn: e.Fn, Context: e.Context, Args: args, Static: e.Static}
}

func (e *MethodExpr) Type() Datatype {
	if e.Args == nil {
		return FunctionType
	}
	if e.Fn.Return == nil {
		return InvalidType
	}
	return *e.Fn.Return
}
func (e *MethodExpr) String() string {
	return "(method: " + e.Context.String() + "." + e.Fn.Name + ")"
}
func (e *MethodExpr) IsSimple() bool { return false }

// ArithOp enumerates Add/Sub/Mul/Div.
type ArithOp int

const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
)

func (o ArithOp) String() string { return [...]string{"+", "-", "*", "/"}[o] }

// ArithExpr is Add/Sub/Mul/Div: both operands primitive and identical; Int
// and Float for all four, String also for Add (concat). Result type is the
// shared operand type.
type ArithExpr struct {
	Op   ArithOp
	A, B Expression
}

func NewArithExpr(op ArithOp, a, b Expression) (*ArithExpr, error) {
	ta, tb := a.Type(), b.Type()
	if !ta.IsPrimitive() || !tb.IsPrimitive() {
		return nil, makeIncompatibilityError("only primitive types are supported in %s operation", op)
	}
	if !ta.Equal(tb) {
		return nil, makeIncompatibilityError("types do not match in %s operation", op)
	}
	if ta.Prim == String && op != OpAdd {
		return nil, makeIncompatibilityError("invalid operand: string is only supported in + operation")
	}
	return &ArithExpr{Op: op, A: a, B: b}, nil
}

func (e *ArithExpr) Type() Datatype { return e.A.Type() }
func (e *ArithExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.A.String(), e.Op, e.B.String())
}
func (e *ArithExpr) IsSimple() bool { return false }

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	CmpEq CmpOp = iota
	CmpNeq
	CmpLt
	CmpLeq
	CmpGt
	CmpGeq
)

func (o CmpOp) String() string {
	return [...]string{"==", "!=", "<", "<=", ">", ">="}[o]
}

// ComparisonExpr requires identical operand types; == and != allow any
// identical type including object types, the orderings require primitive
// operands. Result is always Int.
type ComparisonExpr struct {
	Op   CmpOp
	A, B Expression
}

func NewComparisonExpr(op CmpOp, a, b Expression) (*ComparisonExpr, error) {
	ta, tb := a.Type(), b.Type()
	if !ta.Equal(tb) {
		return nil, makeIncompatibilityError("types do not match in %s operation", op)
	}
	if op != CmpEq && op != CmpNeq && !ta.IsPrimitive() {
		return nil, makeIncompatibilityError("only primitive types are supported in %s operation", op)
	}
	return &ComparisonExpr{Op: op, A: a, B: b}, nil
}

func (e *ComparisonExpr) Type() Datatype { return PrimitiveType(Int) }
func (e *ComparisonExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.A.String(), e.Op, e.B.String())
}
func (e *ComparisonExpr) IsSimple() bool { return false }

// LogOp enumerates the logical connectives.
type LogOp int

const (
	LogAnd LogOp = iota
	LogOr
)

func (o LogOp) String() string { return [...]string{"&&", "||"}[o] }

func isIntOrObject(d Datatype) bool {
	return d.Equal(PrimitiveType(Int)) || d.IsClass()
}

// LogicalExpr is And/Or: operand types identical and in {Int, object}.
// Result is always Int.
type LogicalExpr struct {
	Op   LogOp
	A, B Expression
}

func NewLogicalExpr(op LogOp, a, b Expression) (*LogicalExpr, error) {
	ta, tb := a.Type(), b.Type()
	if !ta.Equal(tb) {
		return nil, makeIncompatibilityError("types do not match in %s operation", op)
	}
	if !isIntOrObject(ta) {
		return nil, makeIncompatibilityError("invalid operand in %s operation: %s", op, ta)
	}
	return &LogicalExpr{Op: op, A: a, B: b}, nil
}

func (e *LogicalExpr) Type() Datatype { return PrimitiveType(Int) }
func (e *LogicalExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.A.String(), e.Op, e.B.String())
}
func (e *LogicalExpr) IsSimple() bool { return false }

// NotExpr negates an Int or object operand. Result is always Int.
type NotExpr struct {
	A Expression
}

func NewNotExpr(a Expression) (*NotExpr, error) {
	if !isIntOrObject(a.Type()) {
		return nil, makeIncompatibilityError("invalid operand in ! operation: %s", a.Type())
	}
	return &NotExpr{A: a}, nil
}

func (e *NotExpr) Type() Datatype { return PrimitiveType(Int) }
func (e *NotExpr) String() string { return "!" + e.A.String() }
func (e *NotExpr) IsSimple() bool { return false }

// ObjectAttributeExpr is a field access, carrying its resolved owning
// class so the generator can compute the field's frame offset later
// without re-running lookup. The back-reference to Owner is a lookup
// relation into the global symbol table's class, never ownership.
type ObjectAttributeExpr struct {
	Object Expression
	Attr   *Alloca
	Owner  *Class
}

func NewObjectAttributeExpr(object Expression, attr *Alloca, owner *Class) *ObjectAttributeExpr {
	return &ObjectAttributeExpr{Object: object, Attr: attr, Owner: owner}
}

func (e *ObjectAttributeExpr) Type() Datatype { return e.Attr.Type }
func (e *ObjectAttributeExpr) String() string {
	return e.Object.String() + "." + e.Attr.Name
}
func (e *ObjectAttributeExpr) IsSimple() bool { return false }

// DummyExpr is pass 1's placeholder: type-carrying but otherwise inert, so
// any expression-type error discovered during indexing is reported exactly
// once while IR shape is deferred to pass 2.
type DummyExpr struct {
	DType Datatype
}

func NewDummyExpr(t Datatype) *DummyExpr { return &DummyExpr{DType: t} }

func (e *DummyExpr) Type() Datatype { return e.DType }
func (e *DummyExpr) String() string { return "<dummy>" }
func (e *DummyExpr) IsSimple() bool { return true }
