// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-pipeline-interface R5;
//
//	docs/ARCHITECTURE § Pipeline Interface.
package inlinelab

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/petar-djukic/inline-lab/internal/corpus"
	"github.com/petar-djukic/inline-lab/internal/pipeline"
	"github.com/petar-djukic/inline-lab/pkg/types"
)

const (
	defaultOutDir     = "data"
	defaultJobTimeout = 60 * time.Second
	defaultRetries    = 1
)

// New validates the config, loads the optional target manifest, and returns
// a ready-to-use Pipeline. It does not scan the corpus; that happens in Run.
//
// Implements: prd001-pipeline-interface R5.1-R5.3.
func New(cfg Config) (Pipeline, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	applyDefaults(&cfg)

	var targets *corpus.Manifest
	if cfg.TargetsPath != "" {
		m, err := corpus.LoadManifest(cfg.TargetsPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
		targets = m
	}

	runner := pipeline.NewRunner(pipeline.Deps{
		SourceDir:    cfg.SourceDir,
		OutDir:       cfg.OutDir,
		Workers:      cfg.Workers,
		Retries:      cfg.Retries,
		JobTimeout:   cfg.JobTimeout,
		Compiler:     cfg.Compiler,
		Flags:        cfg.ExtraFlags,
		DBPath:       cfg.DatabasePath,
		Targets:      targets,
		KeepTemp:     cfg.KeepTemp,
		AnalysisOnly: cfg.AnalysisOnly,
	})

	return &pipelineAdapter{runner: runner, sourceDir: cfg.SourceDir}, nil
}

// pipelineAdapter adapts internal/pipeline.Runner to the public Pipeline
// interface.
type pipelineAdapter struct {
	runner    *pipeline.Runner
	sourceDir string
}

func (a *pipelineAdapter) Run(ctx context.Context) (*types.RunSummary, error) {
	summary, err := a.runner.Run(ctx)
	if err != nil {
		return summary, err
	}
	if summary.FilesScanned == 0 {
		return summary, fmt.Errorf("%w: under %s", ErrNoSources, a.sourceDir)
	}
	return summary, nil
}

// validateConfig checks that required fields are present and sane.
//
// Implements: prd001-pipeline-interface R1.9-R1.11.
func validateConfig(cfg Config) error {
	if cfg.SourceDir == "" {
		return fmt.Errorf("SourceDir is required")
	}
	if info, err := os.Stat(cfg.SourceDir); err != nil || !info.IsDir() {
		return fmt.Errorf("SourceDir %q does not exist or is not a directory", cfg.SourceDir)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("Workers must not be negative")
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("Retries must not be negative")
	}
	return nil
}

// applyDefaults fills in zero-value fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.OutDir == "" {
		cfg.OutDir = defaultOutDir
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = defaultJobTimeout
	}
	if cfg.Retries == 0 {
		cfg.Retries = defaultRetries
	}
}
