package preproc_test

import (
	"os"
	"strings"
	"testing"

	"github.com/IsabelCoolIn/RuC/internal/linker"
	"github.com/IsabelCoolIn/RuC/internal/preproc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, []*preproc.Error) {
	t.Helper()
	p := preproc.New(linker.NewFSResolver(t.TempDir(), nil))
	out, errs := p.Process("in.rc", src)
	return out, errs
}

func TestProcess_IdentityWithoutDirectives(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"plain statement", "int x = 1 + 2;\n"},
		{"multiple lines", "a;\nb;\nc;\n"},
		{"no trailing newline", "a + b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, errs := run(t, tt.src)
			assert.Empty(t, errs)
			assert.Equal(t, tt.src, out)
		})
	}
}

func TestProcess_LineCommentBlanked(t *testing.T) {
	comment := "// trailing note"
	out, errs := run(t, "a; "+comment+"\nb;\n")
	assert.Empty(t, errs)
	assert.Equal(t, "a; "+strings.Repeat(" ", len(comment))+"\nb;\n", out)
}

func TestProcess_BlockCommentSingleLinePreserved(t *testing.T) {
	out, errs := run(t, "a /* keep me */ b;\n")
	assert.Empty(t, errs)
	assert.Equal(t, "a /* keep me */ b;\n", out)
}

func TestProcess_BlockCommentMultilineBlanked(t *testing.T) {
	out, errs := run(t, "a /* line1\nline2 */ b;\n")
	assert.Empty(t, errs)
	assert.Equal(t, "a "+strings.Repeat(" ", len("/* line1"))+"\n"+strings.Repeat(" ", len("line2 */"))+" b;\n", out)
}

func TestProcess_UnterminatedBlockComment(t *testing.T) {
	_, errs := run(t, "a /* never closes\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.CommentUnterminated, errs[0].Kind)
}

func TestProcess_UnterminatedString(t *testing.T) {
	_, errs := run(t, `a "never closes`+"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.StringUnterminated, errs[0].Kind)
}

func TestProcess_ObjectLikeMacro(t *testing.T) {
	out, errs := run(t, "#define X Y\nX\n")
	assert.Empty(t, errs)
	assert.Equal(t, "\nY\n", out)
}

func TestProcess_TokenPaste(t *testing.T) {
	out, errs := run(t, "#define CAT(a,b) a ## b\nCAT(foo, bar)\n")
	assert.Empty(t, errs)
	assert.Equal(t, "\nfoobar\n", out)
}

func TestProcess_Stringify(t *testing.T) {
	out, errs := run(t, `#define STR(x) #x`+"\n"+`STR(hello "w")`+"\n")
	assert.Empty(t, errs)
	assert.Equal(t, "\n\"hello \\\"w\\\"\"\n", out)
}

func TestProcess_MacroRedefinitionRejected(t *testing.T) {
	_, errs := run(t, "#define X 1\n#define X 2\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.MacroNameRedefine, errs[0].Kind)
}

func TestProcess_SetAllowsRedefinition(t *testing.T) {
	out, errs := run(t, "#set X 1\n#set X 2\nX\n")
	assert.Empty(t, errs)
	assert.Equal(t, "\n\n2\n", out)
}

func TestProcess_DirectiveNameMissing(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"define at end of line", "#define\n"},
		{"undef at end of line", "#undef\n"},
		{"define at end of input", "#define"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := run(t, tt.src)
			require.Len(t, errs, 1)
			assert.Equal(t, preproc.DirectiveNameNon, errs[0].Kind)
		})
	}
}

func TestProcess_MacroNameBadFirstCharacter(t *testing.T) {
	_, errs := run(t, "#undef 1x\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.MacroNameFirstCharacter, errs[0].Kind)
}

func TestProcess_ParameterListUnclosed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"after name", "#define F(a\n"},
		{"after comma", "#define F(a,\n"},
		{"before first name", "#define F(\n"},
		{"at end of input", "#define F(a, b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := run(t, tt.src)
			require.Len(t, errs, 1)
			assert.Equal(t, preproc.ArgsExpectedBracket, errs[0].Kind)
		})
	}
}

func TestProcess_UndefUnknownWarns(t *testing.T) {
	_, errs := run(t, "#undef NEVER_DEFINED\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.MacroNameUndefined, errs[0].Kind)
	assert.True(t, errs[0].Kind.IsWarning())
}

func TestProcess_FunctionLikeMissingParenIsUnexpanded(t *testing.T) {
	out, errs := run(t, "#define F(a) a\nF\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.ArgsNon, errs[0].Kind)
	assert.Equal(t, "\nF\n", out)
}

func TestProcess_ArgCountMismatch(t *testing.T) {
	t.Run("too few", func(t *testing.T) {
		_, errs := run(t, "#define F(a,b) a b\nF(1)\n")
		require.Len(t, errs, 1)
		assert.Equal(t, preproc.ArgsRequires, errs[0].Kind)
	})
	t.Run("too many", func(t *testing.T) {
		_, errs := run(t, "#define F(a) a\nF(1,2)\n")
		require.Len(t, errs, 1)
		assert.Equal(t, preproc.ArgsPassed, errs[0].Kind)
	})
}

func TestProcess_NestedParensInArgument(t *testing.T) {
	out, errs := run(t, "#define F(a) (a)\nF((1+2)*3)\n")
	assert.Empty(t, errs)
	assert.Equal(t, "\n((1+2)*3)\n", out)
}

func TestProcess_CallDepthOverflowPassesThroughUnexpanded(t *testing.T) {
	out, errs := run(t, "#define REC REC\nREC\n")
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == preproc.CallDepth {
			found = true
		}
	}
	assert.True(t, found, "expected a CALL_DEPTH diagnostic")
	assert.Contains(t, out, "REC")
}

func TestProcess_IncludeDepthOverflow(t *testing.T) {
	dir := t.TempDir()
	self := dir + "/self.rc"
	writeFile(t, self, `#include "self.rc"`+"\n")

	p := preproc.New(linker.NewFSResolver(dir, nil))
	p.Limits.MaxIncludeDepth = 4
	_, errs := p.Process("top.rc", `#include "self.rc"`+"\n")

	found := false
	for _, e := range errs {
		if e.Kind == preproc.IncludeDepth {
			found = true
		}
	}
	assert.True(t, found, "expected an INCLUDE_DEPTH diagnostic")
}

func TestProcess_IncludeMissingFile(t *testing.T) {
	_, errs := run(t, `#include "nope.rc"`+"\n")
	require.Len(t, errs, 1)
	assert.Equal(t, preproc.IncludeNoSuchFile, errs[0].Kind)
}

func TestProcess_IncludeResolvesAndExpands(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir+"/hdr.rc", "int shared;\n")

	p := preproc.New(linker.NewFSResolver(dir, nil))
	out, errs := p.Process("top.rc", `#include "hdr.rc"`+"\n"+"use(shared);\n")
	assert.Empty(t, errs)
	assert.Equal(t, "int shared;\n\nuse(shared);\n", out)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
