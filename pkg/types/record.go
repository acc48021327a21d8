// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-pipeline-interface R5.3 (record types);
//
//	prd004-structural-metrics R2; prd005-compile-harness R3.
package types

// FeatureRecord holds the structural metrics computed for one function.
// Computed once per FunctionSpan, immutable, appended to the features table.
type FeatureRecord struct {
	Identity             Identity // Join key
	CyclomaticComplexity int      // 1 + decision points (if/for/while/case/catch/&&/||/?)
	TokenCount           int      // Tokens strictly inside the body braces
	ParameterCount       int      // Copied from the span
	MaxNestingDepth      int      // Max brace/paren depth relative to the body's opening brace
	LoopCount            int      // for + while
	BranchCount          int      // if + switch
	CallCount            int      // Call-shaped identifier-then-( sequences
}

// CompileStatus reports whether a measurement pair completed cleanly.
type CompileStatus string

const (
	StatusOK     CompileStatus = "ok"
	StatusFailed CompileStatus = "failed"
)

// MeasurementRecord holds the size measurement for one function. It is
// produced by one completed compilation job pair and is immutable once both
// compiles finish or the pair is marked failed. A failed record keeps both
// sizes but carries no delta.
type MeasurementRecord struct {
	Identity     Identity      // Join key
	NoinlineSize int64         // Object bytes with inlining forced off
	InlineSize   int64         // Object bytes with inlining forced on
	PercentDelta float64       // 100 * (InlineSize - NoinlineSize) / NoinlineSize
	Status       CompileStatus // ok, or failed for a degenerate baseline
}

// InlineMode selects which per-function inlining directive a compilation
// job applies.
type InlineMode string

const (
	ModeNoinline     InlineMode = "noinline"
	ModeAlwaysInline InlineMode = "alwaysinline"
)

// CompilationJob is one compile attempt for one function under one inlining
// mode. Jobs are transient: created per attempt, consumed by a worker, and
// discarded after the result is captured.
type CompilationJob struct {
	Identity Identity   // Function under measurement
	Mode     InlineMode // Directive to inject
	Source   string     // Full file content with the directive already injected
	FileName string     // Base name for the temp source file (e.g. matrix_3.cpp)
}
