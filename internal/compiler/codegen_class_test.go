package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerator_VtableSlotReuse checks that an overriding method keeps its
// parent's vtable slot rather than appending a new one, while a genuinely
// new method does append.
func TestGenerator_VtableSlotReuse(t *testing.T) {
	src := `
		class Animal {
			public string speak() { return "..."; }
		}
		class Dog : Animal {
			public string speak() { return "Woof"; }
			public string fetch() { return "ball"; }
		}
		void main(void) { return; }
	`
	ctx, err := Parse(bytes.NewReader([]byte(src)), false)
	assert.Nil(t, err)

	gen := NewGenerator(ctx)
	animal, ok := ctx.Symbols.LookupClass("Animal")
	assert.True(t, ok)
	dog, ok := ctx.Symbols.LookupClass("Dog")
	assert.True(t, ok)

	animalLayout := gen.layoutFor(animal)
	dogLayout := gen.layoutFor(dog)

	speakSlot := animalLayout.methodIndex[animal.Methods()[0]]
	var dogSpeak, dogFetch *Function
	for _, fn := range dog.Methods() {
		switch fn.Name {
		case "speak":
			dogSpeak = fn
		case "fetch":
			dogFetch = fn
		}
	}
	assert.Equal(t, speakSlot, dogLayout.methodIndex[dogSpeak], "override reuses the parent's vtable slot")
	assert.Equal(t, len(animalLayout.vtable), dogLayout.methodIndex[dogFetch], "a new method appends a fresh slot")
	assert.Len(t, dogLayout.vtable, len(animalLayout.vtable)+1)
}

// TestGenerator_AttributeOffsetsParentFirst checks that a subclass's own
// attributes are laid out after every inherited attribute, in declaration
// order, with slot 0 reserved for the vtable pointer.
func TestGenerator_AttributeOffsetsParentFirst(t *testing.T) {
	src := `
		class Animal {
			public int legs;
		}
		class Dog : Animal {
			public string name;
		}
		void main(void) { return; }
	`
	ctx, err := Parse(bytes.NewReader([]byte(src)), false)
	assert.Nil(t, err)

	gen := NewGenerator(ctx)
	dog, ok := ctx.Symbols.LookupClass("Dog")
	assert.True(t, ok)
	animal, ok := ctx.Symbols.LookupClass("Animal")
	assert.True(t, ok)

	layout := gen.layoutFor(dog)
	assert.Equal(t, 1, layout.attrOffset[animal.Attributes()[0]])
	assert.Equal(t, 2, layout.attrOffset[dog.Attributes()[0]])
	assert.Equal(t, 3, layout.size)
}

// TestGenerator_StackPointerParity checks property 7: every ADDI $SP
// reservation the generator emits for a function body is matched by
// exactly one SUBI $SP of the same magnitude along the straight-line path
// to its return.
func TestGenerator_StackPointerParity(t *testing.T) {
	src := `
		void helper(int a, int b) {
			return;
		}
		void main(void) {
			helper(1, 2);
			return;
		}
	`
	ctx, err := Parse(bytes.NewReader([]byte(src)), false)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)

	adds := map[string]int{}
	subs := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(strings.TrimSuffix(strings.ReplaceAll(line, ",", ""), "\n"))
		if len(fields) < 4 || fields[1] != "$SP" {
			continue
		}
		switch fields[0] {
		case "ADDI":
			adds[fields[3]]++
		case "SUBI":
			subs[fields[3]]++
		}
	}
	for k, n := range adds {
		assert.Equal(t, n, subs[k], "ADDI $SP by %s must be matched by an equal number of SUBI $SP by %s", k, k)
	}
}
