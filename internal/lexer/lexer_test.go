// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package lexer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// summarize renders tokens as "kind text" strings for compact comparison.
func summarize(toks []types.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = fmt.Sprintf("%s %s", tok.Kind, tok.Text)
	}
	return out
}

// texts extracts just the token texts.
func texts(toks []types.Token) []string {
	out := make([]string, len(toks))
	for i, tok := range toks {
		out[i] = tok.Text
	}
	return out
}

func TestScanKinds(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "declaration",
			src:  "int x = 42;",
			want: []string{"Keyword int", "Identifier x", "Operator =", "Literal 42", "Punctuation ;"},
		},
		{
			name: "float with signed exponent",
			src:  "double d = 1.5e-3;",
			want: []string{"Keyword double", "Identifier d", "Operator =", "Literal 1.5e-3", "Punctuation ;"},
		},
		{
			name: "hex literal with suffix",
			src:  "mask = 0xFFul;",
			want: []string{"Identifier mask", "Operator =", "Literal 0xFFul", "Punctuation ;"},
		},
		{
			name: "string literal",
			src:  `s = "hi";`,
			want: []string{"Identifier s", "Operator =", `Literal "hi"`, "Punctuation ;"},
		},
		{
			name: "character literal",
			src:  "char c = 'a';",
			want: []string{"Keyword char", "Identifier c", "Operator =", "Literal 'a'", "Punctuation ;"},
		},
		{
			name: "member call",
			src:  "obj.size()",
			want: []string{"Identifier obj", "Operator .", "Identifier size", "Punctuation (", "Punctuation )"},
		},
		{
			name: "underscore identifiers are not keywords",
			src:  "int int_count;",
			want: []string{"Keyword int", "Identifier int_count", "Punctuation ;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, summarize(toks))
		})
	}
}

func TestScanOperators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{
			name: "logical and is one token",
			src:  "a&&b",
			want: []string{"a", "&&", "b"},
		},
		{
			name: "logical or is one token",
			src:  "a||b",
			want: []string{"a", "||", "b"},
		},
		{
			name: "shift assign by maximal munch",
			src:  "x>>=2",
			want: []string{"x", ">>=", "2"},
		},
		{
			name: "triple closer splits as shift then angle",
			src:  "set<vector<int>>> v",
			want: []string{"set", "<", "vector", "<", "int", ">>", ">", "v"},
		},
		{
			name: "scope and arrow",
			src:  "p->q::r",
			want: []string{"p", "->", "q", "::", "r"},
		},
		{
			name: "ternary splits into two operators",
			src:  "a?b:c",
			want: []string{"a", "?", "b", ":", "c"},
		},
		{
			name: "ellipsis",
			src:  "f(args...)",
			want: []string{"f", "(", "args", "...", ")"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.NoError(t, err)
			assert.Equal(t, tt.want, texts(toks))
		})
	}
}

func TestScanComments(t *testing.T) {
	t.Run("line comment dropped", func(t *testing.T) {
		toks, err := Scan("int a; // trailing\nint b;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";", "int", "b", ";"}, texts(toks))
	})

	t.Run("block comment dropped", func(t *testing.T) {
		toks, err := Scan("int/*gap*/a;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("comment markers inside string stay literal", func(t *testing.T) {
		toks, err := Scan(`s = "no // comment /*here*/";`)
		require.NoError(t, err)
		require.Len(t, toks, 4)
		assert.Equal(t, types.Literal, toks[2].Kind)
		assert.Equal(t, `"no // comment /*here*/"`, toks[2].Text)
	})

	t.Run("quote inside comment does not open literal", func(t *testing.T) {
		toks, err := Scan("// it's fine\nint a;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("block comment spans lines", func(t *testing.T) {
		toks, err := Scan("int a;\n/* one\ntwo */\nint b;")
		require.NoError(t, err)
		require.Len(t, toks, 6)
		assert.Equal(t, 4, toks[3].Line, "token after multi-line comment keeps real line number")
	})
}

func TestScanStringEscapes(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{name: "escaped quote", src: `x = "a\"b";`, want: `"a\"b"`},
		{name: "escaped backslash before closer", src: `x = "y\\";`, want: `"y\\"`},
		{name: "escaped single quote", src: `c = '\'';`, want: `'\''`},
		{name: "newline escape", src: `c = '\n';`, want: `'\n'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.NoError(t, err)
			require.Len(t, toks, 4)
			assert.Equal(t, types.Literal, toks[2].Kind)
			assert.Equal(t, tt.want, toks[2].Text)
		})
	}
}

func TestScanMalformedLiteral(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "unterminated string", src: `s = "abc;`},
		{name: "unterminated character", src: "c = 'a"},
		{name: "unterminated block comment", src: "int a; /* never closed"},
		{name: "bare escape at end of input", src: `s = "abc\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, err := Scan(tt.src)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformedLiteral)
			assert.Nil(t, toks, "malformed input yields no tokens")
		})
	}

	t.Run("error names the opening position", func(t *testing.T) {
		_, err := Scan("int a;\nx = \"open")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "column 5")
	})
}

func TestScanPositions(t *testing.T) {
	toks, err := Scan("int main() {\n\treturn 0;\n}\n")
	require.NoError(t, err)
	require.Len(t, toks, 9)

	assert.Equal(t, "int", toks[0].Text)
	assert.Equal(t, 1, toks[0].Line)
	assert.Equal(t, 1, toks[0].Column)
	assert.Equal(t, 0, toks[0].Offset)

	assert.Equal(t, "main", toks[1].Text)
	assert.Equal(t, 5, toks[1].Column)
	assert.Equal(t, 4, toks[1].Offset)

	assert.Equal(t, "return", toks[5].Text)
	assert.Equal(t, 2, toks[5].Line)
	assert.Equal(t, 2, toks[5].Column, "tab counts one column")
	assert.Equal(t, 14, toks[5].Offset)

	assert.Equal(t, "}", toks[8].Text)
	assert.Equal(t, 3, toks[8].Line)
}

func TestScanPreprocessor(t *testing.T) {
	t.Run("include line dropped", func(t *testing.T) {
		toks, err := Scan("#include <vector>\nint a;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("directive after leading whitespace", func(t *testing.T) {
		toks, err := Scan("  #pragma once\nint a;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("backslash continuation extends the directive", func(t *testing.T) {
		src := "#define MAX(a, b) \\\n    ((a) > (b) ? (a) : (b))\nint a;"
		toks, err := Scan(src)
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("blank line after continuation ends the directive", func(t *testing.T) {
		toks, err := Scan("#define EMPTY \\\n\nint a;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";"}, texts(toks))
	})

	t.Run("mid-line hash is an ordinary token", func(t *testing.T) {
		toks, err := Scan("int a; #rest\nint b;")
		require.NoError(t, err)
		assert.Equal(t, []string{"int", "a", ";", "#", "rest", "int", "b", ";"}, texts(toks))
	})
}

func TestScanEmpty(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		toks, err := Scan("")
		require.NoError(t, err)
		assert.Empty(t, toks)
	})

	t.Run("whitespace only", func(t *testing.T) {
		toks, err := Scan(" \t\n\r\n ")
		require.NoError(t, err)
		assert.Empty(t, toks)
	})
}
