// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pipeline wires corpus intake, structural analysis, compilation,
// and the dataset sinks into a single measurement run.
// Implements: prd001-pipeline-interface R2, R3;
//
//	docs/ARCHITECTURE § Run Lifecycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/petar-djukic/inline-lab/internal/compile"
	"github.com/petar-djukic/inline-lab/internal/corpus"
	"github.com/petar-djukic/inline-lab/internal/dataset"
	"github.com/petar-djukic/inline-lab/internal/lexer"
	"github.com/petar-djukic/inline-lab/internal/locate"
	"github.com/petar-djukic/inline-lab/internal/metrics"
	"github.com/petar-djukic/inline-lab/internal/schedule"
	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Table file names inside the output directory.
const (
	FeaturesFile     = "features.csv"
	MeasurementsFile = "measurements.csv"
	JoinedFile       = "joined.csv"
)

// Deps holds the run configuration and injected collaborators.
type Deps struct {
	SourceDir    string               // Corpus root directory
	OutDir       string               // Directory receiving the CSV tables
	Workers      int                  // Parallel width for analysis and compilation (default NumCPU)
	Retries      int                  // Re-attempts per compile job after the first try
	JobTimeout   time.Duration        // Per-compile deadline (default 60s)
	Compiler     string               // Compiler binary (default clang++)
	Flags        []string             // Compiler flags (default -std=c++17 -O2)
	DBPath       string               // SQLite mirror path, empty to disable
	Targets      *corpus.Manifest     // Measurement filter, nil to measure everything
	KeepTemp     bool                 // Keep per-job build directories
	AnalysisOnly bool                 // Emit features only, no compilation
	Measure      schedule.MeasureFunc // Overrides the compiler invocation; nil uses Compiler
}

// Runner executes measurement runs over one corpus.
type Runner struct {
	deps Deps
}

// NewRunner creates a Runner with the given dependencies.
func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// analyzedFunction pairs a located span with its computed feature row.
type analyzedFunction struct {
	span    types.FunctionSpan
	feature types.FeatureRecord
}

// fileAnalysis carries everything extracted from one corpus file. A
// file-scoped failure sets err and kind; function-scoped failures land
// in skips.
type fileAnalysis struct {
	path    string
	source  string
	tokens  []types.Token
	located int
	funcs   []analyzedFunction
	skips   []types.Skip
	err     error
	kind    types.SkipKind
}

// Run executes one measurement pass: analyze every corpus file, write the
// features table, compile both variants of each selected function, and
// write the measurements table. Failures scoped to a file or function are
// recorded as skips and never abort the run.
// Implements: prd001-pipeline-interface R2.1-R2.6, R3.1-R3.4.
func (r *Runner) Run(ctx context.Context) (*types.RunSummary, error) {
	start := time.Now()
	d := r.deps

	// Step 1: Discover corpus sources.
	files, err := corpus.Scan(d.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}
	summary := &types.RunSummary{FilesScanned: len(files)}

	// Step 2: Analyze files in parallel (lex, locate, compute features).
	analyses := r.analyze(ctx, files)

	// Step 3: Stream feature rows in corpus order and collect compile pairs.
	fw, err := dataset.NewFeatureWriter(filepath.Join(d.OutDir, FeaturesFile))
	if err != nil {
		return nil, fmt.Errorf("opening features table: %w", err)
	}

	var features []types.FeatureRecord
	var pairs []schedule.Pair
	for _, fa := range analyses {
		if fa.err != nil {
			summary.FilesSkipped++
			if fa.kind != "" {
				summary.Skips = append(summary.Skips, types.Skip{
					Identity: types.Identity{File: fa.path},
					Kind:     fa.kind,
					Detail:   fa.err.Error(),
				})
			}
			continue
		}
		summary.FunctionsLocated += fa.located
		summary.Skips = append(summary.Skips, fa.skips...)
		for _, fn := range fa.funcs {
			if err := fw.Append(fn.feature); err != nil {
				fw.Close()
				return nil, fmt.Errorf("writing feature row %s: %w", fn.feature.Identity, err)
			}
			features = append(features, fn.feature)
		}
		if !d.AnalysisOnly {
			pairs = append(pairs, r.buildPairs(fa, summary)...)
		}
	}
	if err := fw.Close(); err != nil {
		return nil, fmt.Errorf("closing features table: %w", err)
	}
	summary.FeatureRows = fw.Rows()

	// Step 4: Compile both variants of every pair through the pool, then
	// fold outcomes into measurement rows.
	var measurements []types.MeasurementRecord
	if !d.AnalysisOnly {
		outcomes := r.compileAll(ctx, pairs)
		measurements = r.pairOutcomes(outcomes, summary)

		mw, err := dataset.NewMeasurementWriter(filepath.Join(d.OutDir, MeasurementsFile))
		if err != nil {
			return nil, fmt.Errorf("opening measurements table: %w", err)
		}
		for _, rec := range measurements {
			if err := mw.Append(rec); err != nil {
				mw.Close()
				return nil, fmt.Errorf("writing measurement row %s: %w", rec.Identity, err)
			}
		}
		if err := mw.Close(); err != nil {
			return nil, fmt.Errorf("closing measurements table: %w", err)
		}
		summary.MeasurementRows = mw.Rows()
	}

	// Step 5: Mirror both tables into SQLite when a database path is set.
	if d.DBPath != "" {
		if err := r.mirror(features, measurements); err != nil {
			return nil, err
		}
	}

	// Step 6: Record corpus provenance when the corpus is a git repository.
	if prov, err := corpus.Describe(d.SourceDir); err == nil {
		summary.Provenance = prov
	}

	summary.PairedRows = len(dataset.InnerJoin(features, measurements))
	summary.ElapsedSeconds = time.Since(start).Seconds()

	if ctx.Err() != nil {
		return summary, ctx.Err()
	}
	return summary, nil
}

// analyze fans the corpus out to a bounded pool of analysis workers and
// returns results in corpus order.
// Implements: prd001-pipeline-interface R2.2.
func (r *Runner) analyze(ctx context.Context, files []string) []fileAnalysis {
	if len(files) == 0 {
		return nil
	}
	workers := r.deps.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan int, len(files))
	out := make([]fileAnalysis, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					out[idx] = fileAnalysis{path: files[idx], err: ctx.Err()}
					continue
				}
				out[idx] = r.analyzeFile(files[idx])
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}

// analyzeFile lexes one source file, locates its function definitions, and
// computes a feature row for each. A lexing failure poisons the whole file;
// a corrupt span drops only that function.
// Implements: prd001-pipeline-interface R2.3, R3.1, R3.2.
func (r *Runner) analyzeFile(rel string) fileAnalysis {
	fa := fileAnalysis{path: rel}

	raw, err := os.ReadFile(filepath.Join(r.deps.SourceDir, filepath.FromSlash(rel)))
	if err != nil {
		fa.err = err
		fa.kind = types.SkipUnreadable
		return fa
	}
	fa.source = string(raw)

	fa.tokens, err = lexer.Scan(fa.source)
	if err != nil {
		fa.err = err
		fa.kind = types.SkipMalformedLiteral
		return fa
	}

	spans := locate.Functions(fa.tokens, rel)
	fa.located = len(spans)
	for _, span := range spans {
		feature, err := metrics.Compute(fa.tokens, span)
		if err != nil {
			fa.skips = append(fa.skips, types.Skip{
				Identity: span.Identity,
				Kind:     types.SkipCorruptSpan,
				Detail:   err.Error(),
			})
			continue
		}
		fa.funcs = append(fa.funcs, analyzedFunction{span: span, feature: feature})
	}
	return fa
}

// buildPairs prepares both compile variants for every measurable function
// in one analyzed file, honoring the target manifest.
// Implements: prd001-pipeline-interface R2.4.
func (r *Runner) buildPairs(fa fileAnalysis, summary *types.RunSummary) []schedule.Pair {
	var pairs []schedule.Pair
	for _, fn := range fa.funcs {
		if !r.deps.Targets.Wants(fa.path, fn.span.Identity.Function) {
			continue
		}
		noinline, err := compile.Inject(fa.source, fa.tokens, fn.span, types.ModeNoinline)
		if err != nil {
			summary.Skips = append(summary.Skips, types.Skip{
				Identity: fn.span.Identity,
				Kind:     types.SkipCorruptSpan,
				Detail:   err.Error(),
			})
			continue
		}
		inlined, err := compile.Inject(fa.source, fa.tokens, fn.span, types.ModeAlwaysInline)
		if err != nil {
			summary.Skips = append(summary.Skips, types.Skip{
				Identity: fn.span.Identity,
				Kind:     types.SkipCorruptSpan,
				Detail:   err.Error(),
			})
			continue
		}
		pairs = append(pairs, schedule.Pair{
			Identity: fn.span.Identity,
			Noinline: types.CompilationJob{
				Identity: fn.span.Identity,
				Mode:     types.ModeNoinline,
				Source:   noinline,
				FileName: fa.path,
			},
			Inline: types.CompilationJob{
				Identity: fn.span.Identity,
				Mode:     types.ModeAlwaysInline,
				Source:   inlined,
				FileName: fa.path,
			},
		})
	}
	return pairs
}

// compileAll runs every pair through the bounded worker pool.
// Implements: prd001-pipeline-interface R2.4.
func (r *Runner) compileAll(ctx context.Context, pairs []schedule.Pair) []schedule.Outcome {
	measure := r.deps.Measure
	if measure == nil {
		cr := compile.NewRunner(r.deps.Compiler, r.deps.Flags, r.deps.JobTimeout)
		cr.KeepTemp = r.deps.KeepTemp
		measure = cr.Measure
	}
	pool := schedule.NewPool(r.deps.Workers, r.deps.Retries, measure)
	return pool.Run(ctx, pairs)
}

// pairOutcomes folds variant outcomes into measurement rows. A function
// with either variant failing to compile yields no row; a zero-size
// baseline yields a failed row with both sizes kept. Halves stopped by
// cancellation produce neither a row nor a skip.
// Implements: prd001-pipeline-interface R2.5, R3.3, R3.4.
func (r *Runner) pairOutcomes(outcomes []schedule.Outcome, summary *types.RunSummary) []types.MeasurementRecord {
	var records []types.MeasurementRecord
	for _, o := range outcomes {
		err := o.NoinlineErr
		if err == nil {
			err = o.InlineErr
		}
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			summary.Skips = append(summary.Skips, types.Skip{
				Identity: o.Identity,
				Kind:     types.SkipCompileFailure,
				Detail:   err.Error(),
			})
			continue
		}
		rec, err := compile.Pair(o.Identity, o.NoinlineSize, o.InlineSize)
		if err != nil {
			summary.Skips = append(summary.Skips, types.Skip{
				Identity: o.Identity,
				Kind:     types.SkipDegenerateBaseline,
				Detail:   err.Error(),
			})
		}
		records = append(records, rec)
	}
	return records
}

// mirror copies both tables into the SQLite database at DBPath.
// Implements: prd007-dataset-sink R4.1.
func (r *Runner) mirror(features []types.FeatureRecord, measurements []types.MeasurementRecord) error {
	store, err := dataset.OpenStore(r.deps.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer store.Close()

	if err := store.InsertFeatures(features); err != nil {
		return fmt.Errorf("mirroring features: %w", err)
	}
	if err := store.InsertMeasurements(measurements); err != nil {
		return fmt.Errorf("mirroring measurements: %w", err)
	}
	return nil
}
