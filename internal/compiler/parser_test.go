package compiler

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func parseSource(t *testing.T, src string) (*Context, error) {
	t.Helper()
	return Parse(bytes.NewReader([]byte(src)), false)
}

// Scenario (a): an empty main compiles cleanly.
func TestParse_EmptyMain(t *testing.T) {
	ctx, err := parseSource(t, `void main(void) { return; }`)
	assert.Nil(t, err)
	assert.NotNil(t, ctx)

	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)
	assert.Contains(t, out, "LABEL main")
	assert.Contains(t, out, "SET $0, 0")
	assert.Contains(t, out, "LABEL ENDOFPROGRAM")
}

// Scenario (b): a missing main is a SemanticError naming it.
func TestParse_MissingMain(t *testing.T) {
	_, err := parseSource(t, `int Main(void) { return 0; }`)
	assert.NotNil(t, err)
	assert.IsType(t, &SemanticError{}, err)
	assert.Contains(t, err.Error(), "main not defined")
}

// Scenario (c): assigning a string into an int variable is an
// IncompatibilityError.
func TestParse_AssignmentTypeMismatch(t *testing.T) {
	_, err := parseSource(t, `void main(void){ int a; a = "error"; }`)
	assert.NotNil(t, err)
	assert.IsType(t, &IncompatibilityError{}, err)
}

// Scenario (d): redefining a top-level function is a SemanticError naming
// it.
func TestParse_Redefinition(t *testing.T) {
	_, err := parseSource(t, `
		void foo(void) { return; }
		void foo(void) { return; }
		void main(void) { return; }
	`)
	assert.NotNil(t, err)
	assert.IsType(t, &SemanticError{}, err)
	assert.Contains(t, err.Error(), "foo")
}

// Scenario (e): print of mixed primitives lowers to one WRITE instruction
// per argument, in order.
func TestParse_PrintMixedPrimitives(t *testing.T) {
	ctx, err := parseSource(t, `void main(void){ print("x=", 42, "\n"); }`)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)

	var writes []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "WRITES") || strings.HasPrefix(line, "WRITEI") || strings.HasPrefix(line, "WRITEF") {
			writes = append(writes, strings.Fields(line)[0])
		}
	}
	assert.Equal(t, []string{"WRITES", "WRITEI", "WRITES"}, writes)
}

// Scenario (f): a simple while loop emits exactly one cond/end label pair
// and the matching JUMPZ/JUMP.
func TestParse_SimpleLoop(t *testing.T) {
	ctx, err := parseSource(t, `void main(void){ int i; i=0; while (i) { i = i - 1; } }`)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)

	assert.Equal(t, 1, strings.Count(out, "LABEL while_cond_0"))
	assert.Equal(t, 1, strings.Count(out, "LABEL while_end_0"))
	assert.Contains(t, out, "JUMPZ while_end_0, $0")
	assert.Contains(t, out, "JUMP while_cond_0")
}

func TestParse_ClassInheritanceAndOverride(t *testing.T) {
	src := `
		class Animal {
			public string name;
			public string speak() { return "..."; }
		}
		class Dog : Animal {
			public string speak() { return "Woof"; }
		}
		void main(void) {
			Dog d;
			d = new Dog();
			print(d.speak());
		}
	`
	ctx, err := parseSource(t, src)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)
	assert.Contains(t, out, "LABEL Dog$constructor")
	assert.Contains(t, out, "LABEL Dog$vtable")
}

func TestParse_OverrideSignatureMismatchRejected(t *testing.T) {
	src := `
		class Animal {
			public string speak() { return "..."; }
		}
		class Dog : Animal {
			public int speak() { return 0; }
		}
		void main(void) { return; }
	`
	_, err := parseSource(t, src)
	assert.NotNil(t, err)
	assert.IsType(t, &IncompatibilityError{}, err)
}

func TestParse_CyclicInheritanceRejected(t *testing.T) {
	src := `
		class A : B {
		}
		class B : A {
		}
		void main(void) { return; }
	`
	_, err := parseSource(t, src)
	assert.NotNil(t, err)
}

func TestParse_ConstructorWithArgumentsRejected(t *testing.T) {
	src := `
		class Point {
			public int x;
			public Point(int x1) {
				x = x1;
			}
		}
		void main(void) { return; }
	`
	_, err := parseSource(t, src)
	assert.NotNil(t, err)
	assert.IsType(t, &IncompatibilityError{}, err)
}

func TestParse_UndeclaredIdentifierIsSemanticError(t *testing.T) {
	_, err := parseSource(t, `void main(void) { print(doesNotExist); }`)
	assert.NotNil(t, err)
	assert.IsType(t, &SemanticError{}, err)
}

func TestParse_PrintRejectsNonPrimitive(t *testing.T) {
	src := `
		class Point {
		}
		void main(void) {
			Point p;
			p = new Point();
			print(p);
		}
	`
	_, err := parseSource(t, src)
	assert.NotNil(t, err)
	assert.IsType(t, &IncompatibilityError{}, err)
}

func TestParse_IfElseCondition(t *testing.T) {
	src := `
		void main(void) {
			int a;
			a = 1;
			if (a) {
				print(a);
			} else {
				print(0);
			}
		}
	`
	ctx, err := parseSource(t, src)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)
	assert.Contains(t, out, "if.0.else")
	assert.Contains(t, out, "if.0.end")
}

func TestParse_StringConcatAndCast(t *testing.T) {
	src := `
		void main(void) {
			string s;
			int a;
			a = 5;
			s = "n=" + (string)a;
			print(s);
		}
	`
	ctx, err := parseSource(t, src)
	assert.Nil(t, err)
	gen := NewGenerator(ctx)
	out, err := gen.Generate()
	assert.Nil(t, err)
	assert.Contains(t, out, "LABEL $intToString")
}
