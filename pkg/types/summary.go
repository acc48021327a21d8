// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-pipeline-interface R3 (run summary);
//
//	prd008-corpus-intake R4 (provenance).
package types

// SkipKind names why a file or function was excluded from output.
type SkipKind string

const (
	SkipUnreadable         SkipKind = "unreadable"          // Source file could not be read
	SkipMalformedLiteral   SkipKind = "malformed_literal"   // Unterminated literal; rest of file skipped
	SkipCorruptSpan        SkipKind = "corrupt_span"        // Mismatched delimiters inside a located span
	SkipCompileFailure     SkipKind = "compile_failure"     // Non-zero exit or timeout after all retries
	SkipDegenerateBaseline SkipKind = "degenerate_baseline" // Zero-size noinline object; no delta computable
)

// Skip records one excluded identity and why it was excluded. A file-scoped
// skip carries an Identity with an empty Function.
type Skip struct {
	Identity Identity // What was skipped
	Kind     SkipKind // Failure category
	Detail   string   // Short human-readable cause
}

// Provenance records the version-control state of the source corpus at run
// time, when the corpus directory is inside a git repository.
type Provenance struct {
	Commit string // HEAD commit hash, empty when the corpus is not in a repository
	Dirty  bool   // True when the worktree had uncommitted changes
}

// RunSummary holds the outcome of one pipeline run. Failures never abort
// the run; they are accounted for here alongside the counts of emitted rows.
type RunSummary struct {
	FilesScanned     int        // Source files discovered
	FilesSkipped     int        // Files dropped whole (unreadable or malformed)
	FunctionsLocated int        // FunctionSpans produced
	FeatureRows      int        // Rows appended to the features table
	MeasurementRows  int        // Rows appended to the measurements table
	PairedRows       int        // Identities present in both tables
	Skips            []Skip     // Every excluded identity with its failure kind
	Provenance       Provenance // Corpus git state, if any
	ElapsedSeconds   float64    // Wall-clock duration of the run
}
