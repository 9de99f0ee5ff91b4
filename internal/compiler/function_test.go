package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFunction_IsVoid(t *testing.T) {
	assert.True(t, NewFunction("f", nil, nil).IsVoid())
	ret := PrimitiveType(Int)
	assert.False(t, NewFunction("f", &ret, nil).IsVoid())
}

func TestFunction_SameSignature(t *testing.T) {
	this := NewAlloca(ClassType("Animal"), "this")
	ret := PrimitiveType(String)

	testData := []struct {
		name string
		a, b *Function
		want bool
	}{
		{
			name: "identical signature ignoring this",
			a:    NewFunction("speak", &ret, []*Alloca{this, NewAlloca(PrimitiveType(Int), "volume")}),
			b:    NewFunction("speak", &ret, []*Alloca{this, NewAlloca(PrimitiveType(Int), "volume")}),
			want: true,
		},
		{
			name: "different return type",
			a:    NewFunction("speak", &ret, []*Alloca{this}),
			b:    NewFunction("speak", nil, []*Alloca{this}),
			want: false,
		},
		{
			name: "different parameter type",
			a:    NewFunction("speak", &ret, []*Alloca{this, NewAlloca(PrimitiveType(Int), "x")}),
			b:    NewFunction("speak", &ret, []*Alloca{this, NewAlloca(PrimitiveType(Float), "x")}),
			want: false,
		},
	}
	for _, td := range testData {
		assert.Equal(t, td.want, td.a.SameSignature(td.b), td.name)
	}
}

func TestFunction_ArgTypes(t *testing.T) {
	fn := NewFunction("f", nil, []*Alloca{
		NewAlloca(PrimitiveType(Int), "a"),
		NewAlloca(PrimitiveType(String), "b"),
	})
	assert.Equal(t, []Datatype{PrimitiveType(Int), PrimitiveType(String)}, fn.ArgTypes())
}
