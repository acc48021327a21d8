// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package compile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inline-lab/internal/lexer"
	"github.com/petar-djukic/inline-lab/internal/locate"
	"github.com/petar-djukic/inline-lab/pkg/types"
)

// located lexes src and returns its tokens and function spans.
func located(t *testing.T, src string) ([]types.Token, []types.FunctionSpan) {
	t.Helper()
	toks, err := lexer.Scan(src)
	require.NoError(t, err)
	return toks, locate.Functions(toks, "inject.cpp")
}

func TestInjectModes(t *testing.T) {
	src := "int square(int x) { return x * x; }"
	toks, spans := located(t, src)
	require.Len(t, spans, 1)

	t.Run("noinline", func(t *testing.T) {
		out, err := Inject(src, toks, spans[0], types.ModeNoinline)
		require.NoError(t, err)
		assert.Equal(t, "__attribute__((noinline)) int square(int x) { return x * x; }", out)
	})

	t.Run("always inline", func(t *testing.T) {
		out, err := Inject(src, toks, spans[0], types.ModeAlwaysInline)
		require.NoError(t, err)
		assert.Equal(t, "__attribute__((always_inline)) int square(int x) { return x * x; }", out)
	})
}

func TestInjectAfterTemplateClause(t *testing.T) {
	src := "template <typename T>\nT biggest(T a, T b) { return a > b ? a : b; }\n"
	toks, spans := located(t, src)
	require.Len(t, spans, 1)

	out, err := Inject(src, toks, spans[0], types.ModeNoinline)
	require.NoError(t, err)
	assert.Equal(t, "template <typename T>\n__attribute__((noinline)) T biggest(T a, T b) { return a > b ? a : b; }\n", out)
}

func TestInjectTargetsOneFunction(t *testing.T) {
	src := `int first(int a) { return a; }

int second(int b) { return b * 2; }
`
	toks, spans := located(t, src)
	require.Len(t, spans, 2)

	out, err := Inject(src, toks, spans[1], types.ModeAlwaysInline)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "__attribute__"), "exactly one attribute inserted")
	assert.True(t, strings.HasPrefix(out, "int first(int a) { return a; }"),
		"untargeted function is byte-identical")
	assert.Contains(t, out, "__attribute__((always_inline)) int second")
	assert.Len(t, out, len(src)+len("__attribute__((always_inline)) "))
}

func TestInjectErrors(t *testing.T) {
	src := "int f() { return 0; }"
	toks, spans := located(t, src)
	require.Len(t, spans, 1)

	t.Run("unknown mode", func(t *testing.T) {
		_, err := Inject(src, toks, spans[0], types.InlineMode("sideways"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown inline mode")
	})

	t.Run("signature start out of range", func(t *testing.T) {
		bad := spans[0]
		bad.SignatureStart = len(toks) + 1
		bad.SignatureEnd = len(toks) + 2
		_, err := Inject(src, toks, bad, types.ModeNoinline)
		assert.ErrorIs(t, err, ErrBadSpan)
	})

	t.Run("offset beyond source", func(t *testing.T) {
		bad := spans[0]
		bad.SignatureStart = bad.BodyStart
		bad.SignatureEnd = bad.BodyStart
		_, err := Inject(src[:5], toks, bad, types.ModeNoinline)
		assert.ErrorIs(t, err, ErrBadSpan)
	})
}
