package jsast

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(context.Background(), "test.js", []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestParse_Valid(t *testing.T) {
	src := "const title = require('./title');\nconsole.log(title);\n"
	tree := mustParse(t, src)

	assert.Equal(t, "test.js", tree.Filename())
	assert.Equal(t, src, string(tree.Source()))
	assert.Equal(t, src, tree.Print(), "print without edits must reproduce the input")
}

func TestParse_SyntaxError(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		wantLine int
	}{
		{"unclosed call", "const a = require('./a';", 1},
		{"missing initializer on second line", "var a = 1;\nvar b = ;", 2},
		{"unterminated function", "function f( {", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), "bad.js", []byte(tt.src))
			require.Error(t, err)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn), "expected *SyntaxError, got %T", err)
			assert.Equal(t, "bad.js", syn.Filename)
			assert.Equal(t, tt.wantLine, syn.Line)
			assert.GreaterOrEqual(t, syn.Column, 1)
			assert.Contains(t, syn.Error(), "bad.js:")
		})
	}
}

func TestParse_SyntaxErrorSurvivesTreeRelease(t *testing.T) {
	inputs := []struct {
		src      string
		wantLine int
	}{
		{"var = ;", 1},
		{"var a = 1;\n}}}", 2},
		{"const a = require('./a';", 1},
		{"function f( {", 1},
		{"let x = 1;\nlet y = (2 +;\n", 2},
	}

	for i := 0; i < 50; i++ {
		for _, in := range inputs {
			_, err := Parse(context.Background(), "bad.js", []byte(in.src))
			var syn *SyntaxError
			require.ErrorAs(t, err, &syn)
			assert.Equal(t, in.wantLine, syn.Line, "input %q", in.src)

			// The snippet is cut from the offending line of the source.
			line := strings.Split(in.src, "\n")[syn.Line-1]
			assert.Contains(t, line, syn.Snippet, "input %q", in.src)
			runtime.GC()
		}
	}

	_, err := Parse(context.Background(), "bad.js", []byte("var a = 1;\n}}}"))
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
	assert.Contains(t, syn.Snippet, "}")
}

func TestParse_InvalidUTF8(t *testing.T) {
	_, err := Parse(context.Background(), "bin.js", []byte{0xff, 0xfe, 0x00})
	var syn *SyntaxError
	require.ErrorAs(t, err, &syn)
}

func TestTree_PrintAfterClose(t *testing.T) {
	tree, err := Parse(context.Background(), "a.js", []byte("require('./b');"))
	require.NoError(t, err)

	refs := NewExtractor().ExtractAndRewrite(tree)
	require.Len(t, refs, 1)
	tree.Close()
	tree.Close() // idempotent

	tree.Rewrite(refs[0], "./b.js")
	assert.Equal(t, `__pack_require__("./b.js");`, tree.Print())
}
