package compiler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	testData := []struct {
		name string
		err  error
		want int
	}{
		{"nil is success", nil, ExitOK},
		{"lexical", makeLexicalError("bad token"), ExitLexicalError},
		{"syntax", makeSyntaxError("bad grammar"), ExitSyntaxError},
		{"incompatibility", makeIncompatibilityError("bad type"), ExitIncompatibility},
		{"semantic", makeSemanticError("undeclared x"), ExitSemanticError},
		{"internal falls back to other", makeInternalError("generator bug"), ExitOther},
		{"unrecognized error kind falls back to other", errors.New("plain"), ExitOther},
	}
	for _, td := range testData {
		assert.Equal(t, td.want, ExitCode(td.err), td.name)
	}
}

func TestMakeErrorHelpers_FormatArgs(t *testing.T) {
	err := makeSemanticError("redefinition of %s", "foo")
	assert.Equal(t, "redefinition of foo", err.Error())
}
