package compiler

import (
	"fmt"
	"math"
	"strconv"
)

// Primitive enumerates the built-in primitive kinds. It is the payload of
// the Primitive variant of Datatype.
type Primitive int

const (
	Int Primitive = iota
	Float
	String
)

func (p Primitive) String() string {
	switch p {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	}
	return "?"
}

// DatatypeKind discriminates the closed sum of Datatype variants.
type DatatypeKind int

const (
	PrimitiveKind DatatypeKind = iota
	ClassKind
	FunctionKind
	InvalidKind
)

// Datatype is a closed sum: Primitive(Int|Float|String), ClassName(string),
// FunctionType, or Invalid. Equality is structural; Invalid is never equal
// to itself, matching a type that could not be resolved.
type Datatype struct {
	Kind      DatatypeKind
	Prim      Primitive
	ClassName string
}

func PrimitiveType(p Primitive) Datatype { return Datatype{Kind: PrimitiveKind, Prim: p} }
func ClassType(name string) Datatype     { return Datatype{Kind: ClassKind, ClassName: name} }

var FunctionType = Datatype{Kind: FunctionKind}
var InvalidType = Datatype{Kind: InvalidKind}

// IsPrimitive is true only for the Primitive variant.
func (d Datatype) IsPrimitive() bool { return d.Kind == PrimitiveKind }

func (d Datatype) IsClass() bool { return d.Kind == ClassKind }

func (d Datatype) IsInvalid() bool { return d.Kind == InvalidKind }

// Equal implements structural equality: Invalid is never equal to itself.
func (d Datatype) Equal(o Datatype) bool {
	if d.Kind == InvalidKind || o.Kind == InvalidKind {
		return false
	}
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case PrimitiveKind:
		return d.Prim == o.Prim
	case ClassKind:
		return d.ClassName == o.ClassName
	case FunctionKind:
		return true
	}
	return false
}

func (d Datatype) String() string {
	switch d.Kind {
	case PrimitiveKind:
		return d.Prim.String()
	case ClassKind:
		return d.ClassName
	case FunctionKind:
		return "function"
	default:
		return "<invalid>"
	}
}

// LiteralKind discriminates the Literal sum.
type LiteralKind int

const (
	IntLiteral LiteralKind = iota
	FloatLiteral
	StringLiteral
)

// Literal is the closed sum Int(u64)|Float(f64)|String(string). Type()
// projects to the matching Primitive datatype.
type Literal struct {
	Kind LiteralKind
	I    uint64
	F    float64
	S    string
}

func NewIntLiteral(v uint64) Literal    { return Literal{Kind: IntLiteral, I: v} }
func NewFloatLiteral(v float64) Literal { return Literal{Kind: FloatLiteral, F: v} }
func NewStringLiteral(v string) Literal { return Literal{Kind: StringLiteral, S: v} }

func (l Literal) Type() Datatype {
	switch l.Kind {
	case IntLiteral:
		return PrimitiveType(Int)
	case FloatLiteral:
		return PrimitiveType(Float)
	case StringLiteral:
		return PrimitiveType(String)
	}
	return InvalidType
}

// VypcodeRepresentation renders the literal in the target VM's literal
// syntax: strings quoted, floats in hex-float form, integers decimal.
func (l Literal) VypcodeRepresentation() string {
	switch l.Kind {
	case IntLiteral:
		return strconv.FormatUint(l.I, 10)
	case FloatLiteral:
		return hexFloat(l.F)
	case StringLiteral:
		return strconv.Quote(l.S)
	}
	return ""
}

// hexFloat renders f in hex-float form with fmt's 'x' verb (1.5 becomes
// "0x1.8p+00"). The verb writes at least two exponent digits, where C's %a
// writes "0x1.8p+0"; only zero is special-cased to C's spelling.
func hexFloat(f float64) string {
	if f == 0 {
		if math.Signbit(f) {
			return "-0x0p+0"
		}
		return "0x0p+0"
	}
	return fmt.Sprintf("%x", f)
}
