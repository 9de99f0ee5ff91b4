package compiler

// Function is a named routine: an optional declared return type, a name, a
// parameter list (Allocas, so a method's synthesized "this" is just args[0]
// like any other parameter), an optional body, and a Prefix field that
// nothing sets or reads (method labels are mangled through Owner).
type Function struct {
	Return *Datatype
	Name   string
	Args   []*Alloca
	First  *BasicBlock
	Prefix string

	// Owner is a non-owning lookup relation to the class that declared
	// this method (nil for free functions), set once by Class.AddMethod.
	// The generator uses it to mangle the method's label; it is never
	// used to imply ownership of the Function itself.
	Owner *Class
}

func NewFunction(name string, ret *Datatype, args []*Alloca) *Function {
	return &Function{Name: name, Return: ret, Args: args}
}

// IsVoid is true iff Return is absent.
func (f *Function) IsVoid() bool { return f.Return == nil }

// SetBody attaches the function's first basic block.
func (f *Function) SetBody(b *BasicBlock) { f.First = b }

// ArgTypes projects Args to their declared types, in order.
func (f *Function) ArgTypes() []Datatype {
	types := make([]Datatype, len(f.Args))
	for i, a := range f.Args {
		types[i] = a.Type
	}
	return types
}

// argTypesMatch reports whether want and have name the same sequence of
// types; used both for overload resolution at call sites and override
// compatibility checks.
func argTypesMatch(want, have []Datatype) bool {
	if len(want) != len(have) {
		return false
	}
	for i := range want {
		if !want[i].Equal(have[i]) {
			return false
		}
	}
	return true
}

// SameSignature compares return type and parameter types against other,
// ignoring position 0 (the synthetic "this") — the override compatibility
// check.
func (f *Function) SameSignature(other *Function) bool {
	if f.IsVoid() != other.IsVoid() {
		return false
	}
	if !f.IsVoid() && !f.Return.Equal(*other.Return) {
		return false
	}
	a, b := f.ArgTypes(), other.ArgTypes()
	if len(a) > 0 {
		a = a[1:]
	}
	if len(b) > 0 {
		b = b[1:]
	}
	return argTypesMatch(a, b)
}
