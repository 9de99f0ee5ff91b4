package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCompile_WritesVypcodeFile is an end-to-end pass through Compile: a
// small but non-trivial source file exercising a class hierarchy, a loop
// and print, written to a temp file and compiled to another. It checks the
// header VYPcode requires and that the program reaches its defined exit
// label, mirroring the teacher's file-I/O style of exercising a pipeline
// entrypoint rather than its internals.
func TestCompile_WritesVypcodeFile(t *testing.T) {
	src := `
		class Counter {
			private int value;

			public void inc() {
				value = value + 1;
			}

			public int get() {
				return value;
			}
		}

		void main(void) {
			Counter c;
			int i;
			c = new Counter();
			i = 0;
			while (i < 3) {
				c.inc();
				i = i + 1;
			}
			print(c.get());
			return;
		}
	`
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.vyp")
	outPath := filepath.Join(dir, "out.vc")
	assert.Nil(t, os.WriteFile(inPath, []byte(src), 0644))

	err := Compile(inPath, outPath, false)
	assert.Nil(t, err)

	out, err := os.ReadFile(outPath)
	assert.Nil(t, err)
	text := string(out)
	assert.True(t, strings.HasPrefix(text, "#! /bin/vypint"))
	assert.Contains(t, text, "CALL [$SP] main")
	assert.Contains(t, text, "LABEL ENDOFPROGRAM")
	assert.Contains(t, text, "LABEL Counter$constructor")
}

func TestCompile_MissingInputFile(t *testing.T) {
	dir := t.TempDir()
	err := Compile(filepath.Join(dir, "nope.vyp"), filepath.Join(dir, "out.vc"), false)
	assert.NotNil(t, err)
}

func TestCompile_SemanticErrorPropagates(t *testing.T) {
	src := `
		void main(void) {
			undeclared = 1;
			return;
		}
	`
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.vyp")
	assert.Nil(t, os.WriteFile(inPath, []byte(src), 0644))

	err := Compile(inPath, filepath.Join(dir, "out.vc"), false)
	assert.NotNil(t, err)
	assert.Equal(t, ExitSemanticError, ExitCode(err))
}
