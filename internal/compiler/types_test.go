package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDatatype_Equal(t *testing.T) {
	testData := []struct {
		a, b  Datatype
		equal bool
	}{
		{PrimitiveType(Int), PrimitiveType(Int), true},
		{PrimitiveType(Int), PrimitiveType(Float), false},
		{ClassType("Animal"), ClassType("Animal"), true},
		{ClassType("Animal"), ClassType("Dog"), false},
		{FunctionType, FunctionType, true},
		{InvalidType, InvalidType, false},
		{PrimitiveType(Int), InvalidType, false},
	}
	for _, td := range testData {
		assert.Equal(t, td.equal, td.a.Equal(td.b))
	}
}

func TestDatatype_IsPrimitive(t *testing.T) {
	assert.True(t, PrimitiveType(Int).IsPrimitive())
	assert.False(t, ClassType("Foo").IsPrimitive())
	assert.False(t, FunctionType.IsPrimitive())
	assert.False(t, InvalidType.IsPrimitive())
}

func TestLiteral_Type(t *testing.T) {
	assert.Equal(t, PrimitiveType(Int), NewIntLiteral(1).Type())
	assert.Equal(t, PrimitiveType(Float), NewFloatLiteral(1).Type())
	assert.Equal(t, PrimitiveType(String), NewStringLiteral("x").Type())
}

func TestLiteral_VypcodeRepresentation(t *testing.T) {
	testData := []struct {
		lit  Literal
		want string
	}{
		{NewIntLiteral(42), "42"},
		{NewStringLiteral("hi"), `"hi"`},
	}
	for _, td := range testData {
		assert.Equal(t, td.want, td.lit.VypcodeRepresentation())
	}
	// Floats render in hex-float form rather than decimal.
	assert.Contains(t, NewFloatLiteral(1.5).VypcodeRepresentation(), "0x")
}
