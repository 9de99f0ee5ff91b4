package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClass_SetParentRejectsCycle(t *testing.T) {
	a := NewClass("A")
	b := NewClass("B")
	assert.Nil(t, a.SetParent(b))
	err := b.SetParent(a)
	assert.NotNil(t, err)
	assert.IsType(t, &SemanticError{}, err)
}

func TestClass_AddMethod_ConstructorInvariants(t *testing.T) {
	testData := []struct {
		name      string
		fn        func(c *Class) *Function
		expectErr bool
	}{
		{
			name: "void constructor with no extra args is accepted",
			fn: func(c *Class) *Function {
				return NewFunction(c.Name, nil, nil)
			},
			expectErr: false,
		},
		{
			name: "non-void constructor is rejected",
			fn: func(c *Class) *Function {
				ret := PrimitiveType(Int)
				return NewFunction(c.Name, &ret, nil)
			},
			expectErr: true,
		},
		{
			name: "constructor with required arguments is rejected",
			fn: func(c *Class) *Function {
				return NewFunction(c.Name, nil, []*Alloca{NewAlloca(PrimitiveType(Int), "a")})
			},
			expectErr: true,
		},
	}
	for _, td := range testData {
		c := NewClass("Point")
		err := c.AddMethod(td.fn(c), Public)
		if td.expectErr {
			assert.NotNil(t, err, td.name)
		} else {
			assert.Nil(t, err, td.name)
			assert.Equal(t, c.Constructor.Name, c.Name, td.name)
		}
	}
}

func TestClass_AddMethod_RejectsDuplicate(t *testing.T) {
	c := NewClass("Point")
	fn1 := NewFunction("move", nil, []*Alloca{NewAlloca(PrimitiveType(Int), "dx")})
	fn2 := NewFunction("move", nil, []*Alloca{NewAlloca(PrimitiveType(Int), "dy")})
	assert.Nil(t, c.AddMethod(fn1, Public))
	assert.NotNil(t, c.AddMethod(fn2, Public))
}

func TestClass_AddAttribute_RejectsDuplicate(t *testing.T) {
	c := NewClass("Point")
	a1 := NewAlloca(PrimitiveType(Int), "x")
	a2 := NewAlloca(PrimitiveType(Float), "x")
	assert.Nil(t, c.AddAttribute(a1, Public))
	assert.NotNil(t, c.AddAttribute(a2, Public))
}

func TestClass_GetMethod_VisibilityLadder(t *testing.T) {
	parent := NewClass("Animal")
	pub := NewFunction("speak", nil, nil)
	assert.Nil(t, parent.AddMethod(pub, Public))
	priv := NewFunction("secret", nil, nil)
	assert.Nil(t, parent.AddMethod(priv, Private))

	child := NewClass("Dog")
	assert.Nil(t, child.SetParent(parent))

	// Public methods are inherited regardless of the requesting visibility.
	_, ok := child.GetMethod("speak", nil, Public)
	assert.True(t, ok)

	// Private parent members are never inherited, even when the child
	// requests Private visibility on itself.
	_, ok = child.GetMethod("secret", nil, Private)
	assert.False(t, ok)
}

func TestClass_GetMethod_FallThrough(t *testing.T) {
	c := NewClass("Point")
	pub := NewFunction("pub", nil, nil)
	assert.Nil(t, c.AddMethod(pub, Public))

	// A Private lookup falls through Private -> Protected -> Public, so it
	// still finds a Public member declared on the same class.
	fn, ok := c.GetMethod("pub", nil, Private)
	assert.True(t, ok)
	assert.Equal(t, pub, fn)
}

func TestClass_Clear_PreservesIdentityAndParent(t *testing.T) {
	parent := NewClass("Animal")
	c := NewClass("Dog")
	assert.Nil(t, c.SetParent(parent))
	assert.Nil(t, c.AddAttribute(NewAlloca(PrimitiveType(Int), "legs"), Public))
	assert.Nil(t, c.AddMethod(NewFunction("bark", nil, nil), Public))

	c.Clear()

	assert.Equal(t, "Dog", c.Name)
	assert.Equal(t, parent, c.Parent)
	assert.Empty(t, c.Attributes())
	assert.Empty(t, c.Methods())
}

func TestClass_CanAssignViaSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	object := NewClass("Object")
	animal := NewClass("Animal")
	dog := NewClass("Dog")
	assert.Nil(t, animal.SetParent(object))
	assert.Nil(t, dog.SetParent(animal))
	st.Insert("Object", ClassSym(object))
	st.Insert("Animal", ClassSym(animal))
	st.Insert("Dog", ClassSym(dog))

	assert.True(t, st.CanAssign(ClassType("Object"), ClassType("Dog")))
	assert.True(t, st.CanAssign(ClassType("Animal"), ClassType("Dog")))
	assert.False(t, st.CanAssign(ClassType("Dog"), ClassType("Animal")))
}
