package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeedBuiltins_ObjectRoot(t *testing.T) {
	st := NewSymbolTable()
	seedBuiltins(st)

	sym, ok := st.SearchGlobal("Object")
	assert.True(t, ok)
	assert.Equal(t, ClassSymbol, sym.Kind)
	assert.Nil(t, sym.Class.Parent)

	_, ok = sym.Class.GetMethod("toString", nil, Public)
	assert.True(t, ok)
	_, ok = sym.Class.GetMethod("getClass", nil, Public)
	assert.True(t, ok)
}

func TestSeedBuiltins_FreeFunctions(t *testing.T) {
	st := NewSymbolTable()
	seedBuiltins(st)

	testData := []struct {
		name     string
		wantArgs []Datatype
		wantVoid bool
	}{
		{"readInt", nil, false},
		{"readFloat", nil, false},
		{"readString", nil, false},
		{"length", []Datatype{PrimitiveType(String)}, false},
		{"subStr", []Datatype{PrimitiveType(String), PrimitiveType(Int), PrimitiveType(Int)}, false},
		{"print", nil, true},
	}
	for _, td := range testData {
		sym, ok := st.SearchGlobal(td.name)
		assert.True(t, ok, td.name)
		assert.Equal(t, FunctionSymbol, sym.Kind, td.name)
		assert.Equal(t, td.wantVoid, sym.Fn.IsVoid(), td.name)
		if td.wantArgs != nil {
			assert.Equal(t, td.wantArgs, sym.Fn.ArgTypes(), td.name)
		}
	}
}
