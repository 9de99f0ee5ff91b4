package compiler

// PrintFunctionName is the one free function the checker special-cases:
// variadic over primitives, at least one argument, returning void.
const PrintFunctionName = "print"

func voidReturn() *Datatype { return nil }
func typed(p Primitive) *Datatype {
	t := PrimitiveType(p)
	return &t
}

func freeFunction(name string, ret *Datatype, argTypes ...Primitive) *Function {
	args := make([]*Alloca, len(argTypes))
	for i, p := range argTypes {
		args[i] = NewAlloca(PrimitiveType(p), "_")
	}
	return NewFunction(name, ret, args)
}

// seedBuiltins populates the global scope of st with the built-in
// environment, before any parsing begins: the Object root class with its
// two inherited methods, the five I/O and string free functions, and the
// print sentinel.
func seedBuiltins(st *SymbolTable) {
	object := NewClass("Object")
	this := NewAlloca(ClassType("Object"), "this")
	toString := NewFunction("toString", typed(String), []*Alloca{this})
	getClass := NewFunction("getClass", typed(String), []*Alloca{this})
	object.AddMethod(toString, Public)
	object.AddMethod(getClass, Public)
	st.Insert("Object", ClassSym(object))

	st.Insert("readInt", FunctionSym(freeFunction("readInt", typed(Int))))
	st.Insert("readFloat", FunctionSym(freeFunction("readFloat", typed(Float))))
	st.Insert("readString", FunctionSym(freeFunction("readString", typed(String))))
	st.Insert("length", FunctionSym(freeFunction("length", typed(Int), String)))
	st.Insert("subStr", FunctionSym(freeFunction("subStr", typed(String), String, Int, Int)))
	st.Insert(PrintFunctionName, FunctionSym(NewFunction(PrintFunctionName, voidReturn(), nil)))
}
