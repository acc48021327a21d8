// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package inlinelab defines the public interface for inline-lab, a corpus
// measurement library that quantifies how forced inlining changes compiled
// object size per C++ function.
// Implements: prd001-pipeline-interface R1, R2, R4;
//
//	docs/ARCHITECTURE § Pipeline Interface.
package inlinelab

import (
	"context"
	"errors"
	"time"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Error types for the Pipeline API.
//
// Implements: prd001-pipeline-interface R4.1-R4.2.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrNoSources     = errors.New("no C++ sources found")
)

// Config configures a measurement pipeline.
//
// Implements: prd001-pipeline-interface R1.1-R1.11.
type Config struct {
	SourceDir    string        // Corpus root holding C++ sources (required)
	OutDir       string        // Directory for the output tables (default "data")
	Workers      int           // Concurrent compile jobs (default NumCPU)
	JobTimeout   time.Duration // Per-compile deadline (default 60s)
	Retries      int           // Re-attempts per failed compile job (default 1)
	Compiler     string        // C++ compiler binary (default clang++)
	ExtraFlags   []string      // Compiler flags (default -std=c++17 -O2)
	DatabasePath string        // SQLite mirror path (empty = disabled)
	TargetsPath  string        // YAML manifest limiting measurement (empty = all)
	KeepTemp     bool          // Keep per-job build directories
	AnalysisOnly bool          // Extract features only, skip compilation
}

// Pipeline runs measurement passes over a C++ corpus.
//
// Implements: prd001-pipeline-interface R2.1.
type Pipeline interface {
	// Run executes the full measurement lifecycle: scan the corpus, extract
	// structural features per function definition, compile a noinline and an
	// always_inline variant of each selected function, and write the
	// features and measurements tables under OutDir. Failures scoped to a
	// file or function are reported as skips in the summary, not as errors.
	Run(ctx context.Context) (*types.RunSummary, error)
}
