// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package compile turns located functions into measurable artifacts: it
// splices inline-control attributes into source text, runs the compiler on
// each variant, and pairs the two object sizes into one measurement record.
// Implements: prd005-compile-harness R1, R2, R3;
//
//	docs/ARCHITECTURE § Compile Harness.
package compile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

const (
	// DefaultCompiler builds measurement objects unless overridden.
	DefaultCompiler = "clang++"

	// DefaultTimeout bounds a single compiler invocation.
	DefaultTimeout = 60 * time.Second

	// maxDiagnosticBytes caps the compiler output excerpt carried in errors.
	maxDiagnosticBytes = 2048
)

// DefaultFlags returns the flags passed before the -c/-o pair on every
// invocation.
func DefaultFlags() []string {
	return []string{"-std=c++17", "-O2"}
}

// ErrCompileFailure reports a compiler invocation that exited non-zero or
// ran past its deadline.
var ErrCompileFailure = errors.New("compilation failed")

// ErrDegenerateBaseline reports a zero-sized noinline object, which leaves
// the percent delta undefined.
var ErrDegenerateBaseline = errors.New("degenerate baseline size")

// Runner invokes the configured compiler once per job and reports the
// resulting object file size.
type Runner struct {
	Compiler string        // Compiler binary (default clang++)
	Flags    []string      // Flags before the -c/-o pair (default -std=c++17 -O2)
	Timeout  time.Duration // Per-invocation deadline (default 60s)
	TempRoot string        // Parent for per-job build dirs (empty for os.TempDir)
	KeepTemp bool          // Keep build dirs for inspection
}

// NewRunner builds a Runner, filling zero-valued fields with defaults.
func NewRunner(compiler string, flags []string, timeout time.Duration) *Runner {
	r := &Runner{Compiler: compiler, Flags: flags, Timeout: timeout}
	if r.Compiler == "" {
		r.Compiler = DefaultCompiler
	}
	if len(r.Flags) == 0 {
		r.Flags = DefaultFlags()
	}
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	return r
}

// Measure compiles one job variant and returns the object file size in
// bytes. The variant source goes into a fresh build directory, the compiler
// runs with -c, and the directory is removed before returning unless
// KeepTemp is set. A deadline overrun or non-zero exit yields
// ErrCompileFailure with the compiler's diagnostics attached.
//
// Implements: prd005-compile-harness R2.1-R2.6.
func (r *Runner) Measure(ctx context.Context, job types.CompilationJob) (int64, error) {
	dir, err := os.MkdirTemp(r.TempRoot, buildDirPrefix(job))
	if err != nil {
		return 0, fmt.Errorf("creating build dir: %w", err)
	}
	if !r.KeepTemp {
		defer os.RemoveAll(dir)
	}

	name := filepath.Base(job.FileName)
	if name == "" || name == "." || name == "/" {
		name = "unit.cpp"
	}
	srcPath := filepath.Join(dir, name)
	objPath := srcPath + ".o"
	if err := os.WriteFile(srcPath, []byte(job.Source), 0o644); err != nil {
		return 0, fmt.Errorf("writing variant source: %w", err)
	}

	cmdCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	args := append(append([]string{}, r.Flags...), "-c", srcPath, "-o", objPath)
	cmd := exec.CommandContext(cmdCtx, r.Compiler, args...)

	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	// Compiler drivers fork sub-processes; killing the driver on deadline
	// can leave a child holding the output pipe. Stop waiting for its I/O
	// shortly after the kill instead of blocking until the child exits.
	cmd.WaitDelay = time.Second

	runErr := cmd.Run()
	if cmdCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return 0, fmt.Errorf("%w: %s [%s]: timed out after %s", ErrCompileFailure, job.Identity, job.Mode, r.Timeout)
	}
	if ctx.Err() != nil {
		// Parent cancellation is not a compile failure; let the caller
		// decide whether to retry or stop.
		return 0, ctx.Err()
	}
	if runErr != nil {
		return 0, fmt.Errorf("%w: %s [%s]: %v: %s", ErrCompileFailure, job.Identity, job.Mode, runErr, diagnostic(buf.String()))
	}

	info, err := os.Stat(objPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %s [%s]: object missing after compile: %v", ErrCompileFailure, job.Identity, job.Mode, err)
	}
	return info.Size(), nil
}

// Pair combines the two variant sizes for one function into a measurement
// record. A zero noinline size leaves the percent delta undefined; the
// record comes back marked failed alongside ErrDegenerateBaseline so the
// caller can keep the feature row and log the skip.
//
// Implements: prd005-compile-harness R3.1-R3.3.
func Pair(id types.Identity, noinlineSize, inlineSize int64) (types.MeasurementRecord, error) {
	rec := types.MeasurementRecord{
		Identity:     id,
		NoinlineSize: noinlineSize,
		InlineSize:   inlineSize,
	}
	if noinlineSize == 0 {
		rec.Status = types.StatusFailed
		return rec, fmt.Errorf("%w: %s: noinline object has zero size", ErrDegenerateBaseline, id)
	}
	rec.Status = types.StatusOK
	rec.PercentDelta = 100 * float64(inlineSize-noinlineSize) / float64(noinlineSize)
	return rec, nil
}

// buildDirPrefix derives a readable temp dir prefix from the job identity.
func buildDirPrefix(job types.CompilationJob) string {
	return fmt.Sprintf("inline-lab-%s-%s-", sanitize(job.Identity.Function), job.Mode)
}

// sanitize keeps temp dir names filesystem-safe; qualified C++ names carry
// colons and tildes.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// diagnostic trims and bounds compiler output for error wrapping.
func diagnostic(out string) string {
	out = strings.TrimSpace(out)
	if out == "" {
		return "(no compiler output)"
	}
	if len(out) > maxDiagnosticBytes {
		return out[:maxDiagnosticBytes] + "... (truncated)"
	}
	return out
}
