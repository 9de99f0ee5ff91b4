package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSymbolTable_InsertFirstWriterWins(t *testing.T) {
	st := NewSymbolTable()
	a := NewAlloca(PrimitiveType(Int), "x")
	b := NewAlloca(PrimitiveType(Float), "x")
	assert.True(t, st.Insert("x", AllocaSym(a)))
	assert.False(t, st.Insert("x", AllocaSym(b)))
	sym, ok := st.SearchCurrent("x")
	assert.True(t, ok)
	assert.Equal(t, a, sym.Alloca)
}

func TestSymbolTable_BlockScopeRejectsFunctions(t *testing.T) {
	st := NewSymbolTable()
	st.Push(false)
	fn := NewFunction("f", nil, nil)
	assert.False(t, st.Insert("f", FunctionSym(fn)))
}

func TestSymbolTable_PopNeverRemovesGlobal(t *testing.T) {
	st := NewSymbolTable()
	st.Pop()
	a := NewAlloca(PrimitiveType(Int), "x")
	assert.True(t, st.Insert("x", AllocaSym(a)))
}

func TestSymbolTable_SearchAllInnermostWins(t *testing.T) {
	st := NewSymbolTable()
	outer := NewAlloca(PrimitiveType(Int), "x")
	st.Insert("x", AllocaSym(outer))
	st.Push(false)
	inner := NewAlloca(PrimitiveType(String), "x")
	st.Insert("x", AllocaSym(inner))

	sym, ok := st.SearchAll("x")
	assert.True(t, ok)
	assert.Equal(t, inner, sym.Alloca)

	st.Pop()
	sym, ok = st.SearchAll("x")
	assert.True(t, ok)
	assert.Equal(t, outer, sym.Alloca)
}

func TestSymbolTable_CanAssign(t *testing.T) {
	st := NewSymbolTable()
	animal := NewClass("Animal")
	dog := NewClass("Dog")
	assert.Nil(t, dog.SetParent(animal))
	st.Insert("Animal", ClassSym(animal))
	st.Insert("Dog", ClassSym(dog))

	testData := []struct {
		name      string
		dest, src Datatype
		want      bool
	}{
		{"identity", PrimitiveType(Int), PrimitiveType(Int), true},
		{"primitive mismatch", PrimitiveType(Int), PrimitiveType(Float), false},
		{"subsumption", ClassType("Animal"), ClassType("Dog"), true},
		{"reverse subsumption rejected", ClassType("Dog"), ClassType("Animal"), false},
		{"same class", ClassType("Dog"), ClassType("Dog"), true},
		{"identical function types", FunctionType, FunctionType, false},
		{"primitive never assignable from function", PrimitiveType(Int), FunctionType, false},
	}
	for _, td := range testData {
		assert.Equal(t, td.want, st.CanAssign(td.dest, td.src), td.name)
	}
}
