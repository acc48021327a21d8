// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package schedule fans compilation job pairs out to a bounded worker pool
// and joins the per-variant results back into whole-function outcomes.
// Implements: prd006-job-scheduler R1, R2, R3;
//
//	docs/ARCHITECTURE § Job Scheduler.
package schedule

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// defaultBackoff is the base delay before a retry; it doubles per attempt.
const defaultBackoff = 500 * time.Millisecond

// MeasureFunc runs one compilation job and returns the object size in bytes.
type MeasureFunc func(ctx context.Context, job types.CompilationJob) (int64, error)

// Pair is the scheduling unit: the two variants of one function. The halves
// are independent jobs and may run on different workers.
type Pair struct {
	Identity types.Identity
	Noinline types.CompilationJob
	Inline   types.CompilationJob
}

// Outcome carries both variant results for one function. A half that failed
// every attempt reports its last error; the sizes are only meaningful for
// halves with a nil error.
type Outcome struct {
	Identity     types.Identity
	NoinlineSize int64
	InlineSize   int64
	NoinlineErr  error
	InlineErr    error
}

// Pool runs measurement jobs with bounded concurrency and per-job retries.
type Pool struct {
	Workers int           // Concurrent compiler invocations (default NumCPU)
	Retries int           // Re-attempts after the first try per job
	Backoff time.Duration // Base retry delay, doubles per attempt
	Measure MeasureFunc   // Job executor
}

// NewPool builds a Pool, filling zero-valued fields with defaults.
func NewPool(workers, retries int, measure MeasureFunc) *Pool {
	p := &Pool{Workers: workers, Retries: retries, Measure: measure}
	if p.Workers <= 0 {
		p.Workers = runtime.NumCPU()
	}
	if p.Retries < 0 {
		p.Retries = 0
	}
	if p.Backoff <= 0 {
		p.Backoff = defaultBackoff
	}
	return p
}

// half addresses one variant of a pair on the job channel.
type half struct {
	pair int
	job  types.CompilationJob
}

// halfResult carries one variant's result back from a worker.
type halfResult struct {
	pair int
	mode types.InlineMode
	size int64
	err  error
}

// Run measures every pair and returns one outcome per pair, in input order.
// An outcome is never one-sided: both halves have finished (or exhausted
// their retries) by the time Run returns. Cancelling ctx stops new attempts;
// affected halves report the context error.
//
// Implements: prd006-job-scheduler R1.1-R1.4, R2.1-R2.3.
func (p *Pool) Run(ctx context.Context, pairs []Pair) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	for i, pr := range pairs {
		outcomes[i].Identity = pr.Identity
	}
	if len(pairs) == 0 {
		return outcomes
	}

	jobs := make(chan half, 2*len(pairs))
	results := make(chan halfResult, 2*len(pairs))

	var wg sync.WaitGroup
	for i := 0; i < p.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for h := range jobs {
				size, err := p.measureWithRetry(ctx, h.job)
				results <- halfResult{pair: h.pair, mode: h.job.Mode, size: size, err: err}
			}
		}()
	}

	for i, pr := range pairs {
		jobs <- half{pair: i, job: pr.Noinline}
		jobs <- half{pair: i, job: pr.Inline}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for res := range results {
		o := &outcomes[res.pair]
		if res.mode == types.ModeAlwaysInline {
			o.InlineSize, o.InlineErr = res.size, res.err
		} else {
			o.NoinlineSize, o.NoinlineErr = res.size, res.err
		}
	}
	return outcomes
}

// measureWithRetry runs one job up to 1+Retries times with exponential
// backoff. Context cancellation stops the attempt sequence immediately;
// a per-job timeout inside Measure stays retryable.
//
// Implements: prd006-job-scheduler R3.1-R3.3.
func (p *Pool) measureWithRetry(ctx context.Context, job types.CompilationJob) (int64, error) {
	attempts := 1 + p.Retries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		size, err := p.Measure(ctx, job)
		if err == nil {
			return size, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return 0, err
		}
		if attempt == attempts {
			break
		}

		delay := p.Backoff * time.Duration(1<<(attempt-1))
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
	}
	return 0, lastErr
}
