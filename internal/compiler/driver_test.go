package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestDriverBase() *driverBase {
	return &driverBase{ctx: NewContext()}
}

func TestDriverBase_NewClass_ImplicitObjectParent(t *testing.T) {
	b := newTestDriverBase()
	assert.Nil(t, b.NewClass("Animal", ""))

	sym, ok := b.symbols().SearchGlobal("Animal")
	assert.True(t, ok)
	assert.NotNil(t, sym.Class.Parent)
	assert.Equal(t, "Object", sym.Class.Parent.Name)
}

func TestDriverBase_NewClass_ForwardReferencedBaseResolvesOnSecondWalk(t *testing.T) {
	b := newTestDriverBase()
	assert.Nil(t, b.NewClass("Dog", "Animal"))

	sym, _ := b.symbols().SearchGlobal("Dog")
	assert.Nil(t, sym.Class.Parent, "base not declared yet: must stay unresolved")

	assert.Nil(t, b.NewClass("Animal", ""))
	assert.Nil(t, b.NewClass("Dog", "Animal"), "re-walking Dog must retry resolving its base")

	sym, _ = b.symbols().SearchGlobal("Dog")
	assert.NotNil(t, sym.Class.Parent)
	assert.Equal(t, "Animal", sym.Class.Parent.Name)
}

func TestDriverBase_NewClass_RedefinitionAsNonClassRejected(t *testing.T) {
	b := newTestDriverBase()
	b.symbols().Insert("Animal", FunctionSym(NewFunction("Animal", nil, nil)))
	err := b.NewClass("Animal", "")
	assert.NotNil(t, err)
	assert.IsType(t, &SemanticError{}, err)
}

func TestDriverBase_NewFunction_FreeFunctionRegisteredGlobally(t *testing.T) {
	b := newTestDriverBase()
	fn, err := b.NewFunction(nil, "helper", nil, Public)
	assert.Nil(t, err)
	assert.Nil(t, fn.Owner)
	sym, ok := b.symbols().SearchGlobal("helper")
	assert.True(t, ok)
	assert.Equal(t, fn, sym.Fn)
}

func TestDriverBase_NewFunction_RedefinitionRejected(t *testing.T) {
	b := newTestDriverBase()
	_, err := b.NewFunction(nil, "helper", nil, Public)
	assert.Nil(t, err)
	_, err = b.NewFunction(nil, "helper", nil, Public)
	assert.NotNil(t, err)
}

func TestDriverBase_NewAttribute_RequiresCurrentClass(t *testing.T) {
	b := newTestDriverBase()
	_, err := b.NewAttribute(PrimitiveType(Int), "x", Public)
	assert.NotNil(t, err)
	assert.IsType(t, &InternalError{}, err)
}

func TestDriverBase_EnsureMainDefined(t *testing.T) {
	testData := []struct {
		name    string
		setup   func(b *driverBase)
		wantErr bool
	}{
		{"missing main", func(b *driverBase) {}, true},
		{
			name: "main takes arguments",
			setup: func(b *driverBase) {
				b.symbols().Insert("main", FunctionSym(NewFunction("main", nil, []*Alloca{NewAlloca(PrimitiveType(Int), "x")})))
			},
			wantErr: true,
		},
		{
			name: "main returns a value",
			setup: func(b *driverBase) {
				ret := PrimitiveType(Int)
				b.symbols().Insert("main", FunctionSym(NewFunction("main", &ret, nil)))
			},
			wantErr: true,
		},
		{
			name: "valid main",
			setup: func(b *driverBase) {
				b.symbols().Insert("main", FunctionSym(NewFunction("main", nil, nil)))
			},
			wantErr: false,
		},
	}
	for _, td := range testData {
		b := newTestDriverBase()
		td.setup(b)
		err := b.EnsureMainDefined()
		if td.wantErr {
			assert.NotNil(t, err, td.name)
		} else {
			assert.Nil(t, err, td.name)
		}
	}
}
