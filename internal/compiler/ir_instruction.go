package compiler

import "fmt"

// Instruction is the polymorphic capability every IR statement node
// implements: a debug string form, a singly-linked next pointer, and
// (for the concrete variants below) whatever lifecycle state the variant
// itself needs. Concrete variants are tagged unions expressed as distinct
// Go types rather than one big enum, following the "deep inheritance
// becomes tagged variants" guidance: every consumer exhaustively
// type-switches instead of walking a class hierarchy.
type Instruction interface {
	Str(prefix string) string
	Next() Instruction
	SetNext(n Instruction)
}

// instrLink is embedded by every concrete Instruction to provide the
// singly-linked chain without repeating the bookkeeping in each variant.
type instrLink struct {
	next Instruction
}

func (l *instrLink) Next() Instruction    { return l.next }
func (l *instrLink) SetNext(n Instruction) { l.next = n }

// Alloca is a named storage binding: a local variable or parameter. Two
// Allocas are distinct identities even when their names collide, so
// identity is the pointer, never the name; the same allocation can be
// referenced by several IR nodes (Symbol expressions, Assignment
// destinations) without implying ownership of the Alloca by any one of
// them — the enclosing Function/Class or the symbol table scope owns it.
type Alloca struct {
	instrLink
	Type   Datatype
	Name   string
	Prefix string // not set or read anywhere; attributes are never mangled into labels
}

func NewAlloca(t Datatype, name string) *Alloca {
	return &Alloca{Type: t, Name: name}
}

func (a *Alloca) Str(prefix string) string {
	return fmt.Sprintf("%salloca %s: %s", prefix, a.Name, a.Type)
}

// Assignment stores expr's value into dest. dest == nil means "evaluate
// expr for its side effect" — this is how statement-level calls like
// print(...) or a void method call are represented.
type Assignment struct {
	instrLink
	Dest *Alloca
	Expr Expression
}

func (a *Assignment) Str(prefix string) string {
	if a.Dest == nil {
		return fmt.Sprintf("%s%s", prefix, a.Expr.String())
	}
	return fmt.Sprintf("%s%s = %s", prefix, a.Dest.Name, a.Expr.String())
}

// ObjectAssignment stores expr's value into a field access destination.
type ObjectAssignment struct {
	instrLink
	Dest *ObjectAttributeExpr
	Expr Expression
}

func (a *ObjectAssignment) Str(prefix string) string {
	return fmt.Sprintf("%s%s = %s", prefix, a.Dest.String(), a.Expr.String())
}

// Branch is a structured if/else: it owns its nested blocks directly
// rather than lowering to explicit labels at IR construction time — label
// emission is the code generator's job, not the frontend's.
type Branch struct {
	instrLink
	Cond     Expression
	IfBlock  *BasicBlock
	ElseBlock *BasicBlock
}

func (b *Branch) Str(prefix string) string {
	return fmt.Sprintf("%sif (%s) {...} else {...}", prefix, b.Cond.String())
}

// Loop is a structured while.
type Loop struct {
	instrLink
	Cond Expression
	Body *BasicBlock
}

func (l *Loop) Str(prefix string) string {
	return fmt.Sprintf("%swhile (%s) {...}", prefix, l.Cond.String())
}

// Return ends a function. Expr == nil means a void return.
type Return struct {
	instrLink
	Expr Expression
}

func (r *Return) IsVoid() bool { return r.Expr == nil }

func (r *Return) Str(prefix string) string {
	if r.Expr == nil {
		return prefix + "return"
	}
	return fmt.Sprintf("%sreturn %s", prefix, r.Expr.String())
}

// Dummy is pass 1's placeholder: it carries no state. Pass 1's expression
// constructors return a type-carrying DummyExpression instead, so any
// expression-type error surfaces exactly once during indexing while IR
// shape is deferred to pass 2.
type Dummy struct {
	instrLink
}

func (d *Dummy) Str(prefix string) string { return prefix + "<dummy>" }

// BasicBlock is a named, singly-linked instruction list with an optional
// next block. Blocks are uniquely named by appending a monotonic counter
// to a user-supplied base name, so two blocks built from the same syntax
// (e.g. two "if" bodies) never collide once labels are emitted.
type BasicBlock struct {
	name  string
	First Instruction
	last  Instruction
	Next  *BasicBlock
}

// NewBasicBlock names the block "<name>.<id>" using ctx's monotonic block
// counter.
func NewBasicBlock(ctx *Context, name string) *BasicBlock {
	return &BasicBlock{name: fmt.Sprintf("%s.%d", name, ctx.nextBlockID())}
}

func (b *BasicBlock) Name() string { return b.name }

// Append adds instr to the end of the block's instruction chain.
func (b *BasicBlock) Append(instr Instruction) {
	if b.First == nil {
		b.First = instr
		b.last = instr
		return
	}
	b.last.SetNext(instr)
	b.last = instr
}
