// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package compile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// fakeCompiler writes an executable shell script standing in for clang++.
func fakeCompiler(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cc")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

// emitObject is a script body that finds the -o argument and writes n bytes
// to it.
func emitObject(n string) string {
	return `out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
head -c ` + n + ` /dev/zero > "$out"
`
}

func testJob() types.CompilationJob {
	return types.CompilationJob{
		Identity: types.Identity{File: "sample.cpp", Function: "Matrix::transpose", Ordinal: 0},
		Mode:     types.ModeNoinline,
		Source:   "int f() { return 0; }\n",
		FileName: "sample.cpp",
	}
}

func TestMeasureSuccess(t *testing.T) {
	r := NewRunner(fakeCompiler(t, emitObject("120")), nil, 0)

	size, err := r.Measure(context.Background(), testJob())
	require.NoError(t, err)
	assert.Equal(t, int64(120), size)
}

func TestMeasureCompileError(t *testing.T) {
	r := NewRunner(fakeCompiler(t, "echo 'unknown type name' >&2\nexit 1\n"), nil, 0)

	_, err := r.Measure(context.Background(), testJob())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompileFailure)
	assert.Contains(t, err.Error(), "unknown type name", "compiler diagnostics are preserved")
	assert.Contains(t, err.Error(), "sample.cpp:Matrix::transpose#0")
}

func TestMeasureTimeout(t *testing.T) {
	// exec so the deadline kill hits the sleeping process itself.
	r := NewRunner(fakeCompiler(t, "exec sleep 5\n"), nil, 50*time.Millisecond)

	start := time.Now()
	_, err := r.Measure(context.Background(), testJob())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCompileFailure)
	assert.Contains(t, err.Error(), "timed out")
	assert.Less(t, time.Since(start), 3*time.Second, "deadline kills the compiler")
}

func TestMeasureMissingCompiler(t *testing.T) {
	r := NewRunner(filepath.Join(t.TempDir(), "no-such-compiler"), nil, 0)

	_, err := r.Measure(context.Background(), testJob())
	assert.ErrorIs(t, err, ErrCompileFailure)
}

func TestMeasureCancelled(t *testing.T) {
	r := NewRunner(fakeCompiler(t, "exec sleep 5\n"), nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Measure(ctx, testJob())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrCompileFailure, "cancellation is not a compile failure")
}

func TestMeasureTempDirs(t *testing.T) {
	t.Run("removed by default", func(t *testing.T) {
		root := t.TempDir()
		r := NewRunner(fakeCompiler(t, emitObject("16")), nil, 0)
		r.TempRoot = root

		_, err := r.Measure(context.Background(), testJob())
		require.NoError(t, err)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		assert.Empty(t, entries, "build dir cleaned up")
	})

	t.Run("kept on request", func(t *testing.T) {
		root := t.TempDir()
		r := NewRunner(fakeCompiler(t, emitObject("16")), nil, 0)
		r.TempRoot = root
		r.KeepTemp = true

		_, err := r.Measure(context.Background(), testJob())
		require.NoError(t, err)

		entries, err := os.ReadDir(root)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0].Name(), "inline-lab-Matrix__transpose-noinline-"),
			"dir name derives from the sanitized identity")

		src, err := os.ReadFile(filepath.Join(root, entries[0].Name(), "sample.cpp"))
		require.NoError(t, err)
		assert.Equal(t, "int f() { return 0; }\n", string(src))
	})
}

func TestNewRunnerDefaults(t *testing.T) {
	r := NewRunner("", nil, 0)
	assert.Equal(t, DefaultCompiler, r.Compiler)
	assert.Equal(t, []string{"-std=c++17", "-O2"}, r.Flags)
	assert.Equal(t, DefaultTimeout, r.Timeout)
}

func TestPair(t *testing.T) {
	id := types.Identity{File: "a.cpp", Function: "f", Ordinal: 0}

	tests := []struct {
		name     string
		noinline int64
		inlined  int64
		want     float64
	}{
		{name: "inlining shrinks the object", noinline: 100, inlined: 80, want: -20},
		{name: "inlining grows the object", noinline: 100, inlined: 125, want: 25},
		{name: "no change", noinline: 64, inlined: 64, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Pair(id, tt.noinline, tt.inlined)
			require.NoError(t, err)
			assert.Equal(t, types.StatusOK, rec.Status)
			assert.Equal(t, tt.noinline, rec.NoinlineSize)
			assert.Equal(t, tt.inlined, rec.InlineSize)
			assert.InDelta(t, tt.want, rec.PercentDelta, 1e-9)
		})
	}

	t.Run("zero baseline is degenerate", func(t *testing.T) {
		rec, err := Pair(id, 0, 50)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDegenerateBaseline)
		assert.Equal(t, types.StatusFailed, rec.Status)
		assert.Equal(t, int64(0), rec.NoinlineSize)
		assert.Equal(t, int64(50), rec.InlineSize)
	})
}
