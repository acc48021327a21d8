// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package dataset writes the feature and measurement tables, reads them
// back, and joins them on identity for the downstream trainer.
// Implements: prd007-dataset-sink R1, R2, R3;
//
//	docs/ARCHITECTURE § Dataset Sink.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Column orders are part of the output contract; downstream training reads
// these tables by header name.
var (
	featureHeader = []string{
		"file", "function", "ordinal",
		"cyclomatic_complexity", "token_count", "parameter_count",
		"max_nesting_depth", "loop_count", "branch_count", "call_count",
	}
	measurementHeader = []string{
		"file", "function", "ordinal",
		"noinline_object_size", "inline_object_size",
		"percent_delta", "compile_status",
	}
)

// FeatureWriter appends feature rows to a CSV table. Rows may arrive from
// any goroutine in any order; each row is flushed as it lands.
type FeatureWriter struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	rows int
}

// NewFeatureWriter creates (or truncates) the features table at path and
// writes its header row.
func NewFeatureWriter(path string) (*FeatureWriter, error) {
	f, w, err := createTable(path, featureHeader)
	if err != nil {
		return nil, err
	}
	return &FeatureWriter{f: f, w: w}, nil
}

// Append writes one feature row.
//
// Implements: prd007-dataset-sink R1.2, R1.3.
func (fw *FeatureWriter) Append(rec types.FeatureRecord) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	row := []string{
		rec.Identity.File,
		rec.Identity.Function,
		strconv.Itoa(rec.Identity.Ordinal),
		strconv.Itoa(rec.CyclomaticComplexity),
		strconv.Itoa(rec.TokenCount),
		strconv.Itoa(rec.ParameterCount),
		strconv.Itoa(rec.MaxNestingDepth),
		strconv.Itoa(rec.LoopCount),
		strconv.Itoa(rec.BranchCount),
		strconv.Itoa(rec.CallCount),
	}
	if err := fw.w.Write(row); err != nil {
		return fmt.Errorf("writing feature row for %s: %w", rec.Identity, err)
	}
	fw.w.Flush()
	if err := fw.w.Error(); err != nil {
		return fmt.Errorf("flushing feature row for %s: %w", rec.Identity, err)
	}
	fw.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (fw *FeatureWriter) Rows() int {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.rows
}

// Close flushes and closes the table file.
func (fw *FeatureWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.w.Flush()
	if err := fw.w.Error(); err != nil {
		fw.f.Close()
		return fmt.Errorf("flushing features table: %w", err)
	}
	return fw.f.Close()
}

// MeasurementWriter appends measurement rows to a CSV table. A failed row
// keeps its sizes but leaves percent_delta empty.
type MeasurementWriter struct {
	mu   sync.Mutex
	f    *os.File
	w    *csv.Writer
	rows int
}

// NewMeasurementWriter creates (or truncates) the measurements table at
// path and writes its header row.
func NewMeasurementWriter(path string) (*MeasurementWriter, error) {
	f, w, err := createTable(path, measurementHeader)
	if err != nil {
		return nil, err
	}
	return &MeasurementWriter{f: f, w: w}, nil
}

// Append writes one measurement row. percent_delta carries four decimal
// places for ok rows and stays empty for failed ones, where the delta is
// undefined.
//
// Implements: prd007-dataset-sink R2.2-R2.4.
func (mw *MeasurementWriter) Append(rec types.MeasurementRecord) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	delta := ""
	if rec.Status == types.StatusOK {
		delta = strconv.FormatFloat(rec.PercentDelta, 'f', 4, 64)
	}
	row := []string{
		rec.Identity.File,
		rec.Identity.Function,
		strconv.Itoa(rec.Identity.Ordinal),
		strconv.FormatInt(rec.NoinlineSize, 10),
		strconv.FormatInt(rec.InlineSize, 10),
		delta,
		string(rec.Status),
	}
	if err := mw.w.Write(row); err != nil {
		return fmt.Errorf("writing measurement row for %s: %w", rec.Identity, err)
	}
	mw.w.Flush()
	if err := mw.w.Error(); err != nil {
		return fmt.Errorf("flushing measurement row for %s: %w", rec.Identity, err)
	}
	mw.rows++
	return nil
}

// Rows returns the number of data rows written so far.
func (mw *MeasurementWriter) Rows() int {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	return mw.rows
}

// Close flushes and closes the table file.
func (mw *MeasurementWriter) Close() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.w.Flush()
	if err := mw.w.Error(); err != nil {
		mw.f.Close()
		return fmt.Errorf("flushing measurements table: %w", err)
	}
	return mw.f.Close()
}

// createTable opens a fresh CSV file with its header written and flushed.
func createTable(path string, header []string) (*os.File, *csv.Writer, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("creating output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating table %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("writing header of %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("writing header of %s: %w", path, err)
	}
	return f, w, nil
}

// ReadFeatures loads a features table written by FeatureWriter.
func ReadFeatures(path string) ([]types.FeatureRecord, error) {
	rows, err := readTable(path, featureHeader)
	if err != nil {
		return nil, err
	}

	recs := make([]types.FeatureRecord, 0, len(rows))
	for i, row := range rows {
		ints, err := atois(row[2:])
		if err != nil {
			return nil, fmt.Errorf("features row %d: %w", i+2, err)
		}
		recs = append(recs, types.FeatureRecord{
			Identity:             types.Identity{File: row[0], Function: row[1], Ordinal: ints[0]},
			CyclomaticComplexity: ints[1],
			TokenCount:           ints[2],
			ParameterCount:       ints[3],
			MaxNestingDepth:      ints[4],
			LoopCount:            ints[5],
			BranchCount:          ints[6],
			CallCount:            ints[7],
		})
	}
	return recs, nil
}

// ReadMeasurements loads a measurements table written by MeasurementWriter.
func ReadMeasurements(path string) ([]types.MeasurementRecord, error) {
	rows, err := readTable(path, measurementHeader)
	if err != nil {
		return nil, err
	}

	recs := make([]types.MeasurementRecord, 0, len(rows))
	for i, row := range rows {
		ordinal, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("measurements row %d: ordinal: %w", i+2, err)
		}
		noSize, err := strconv.ParseInt(row[3], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("measurements row %d: noinline size: %w", i+2, err)
		}
		inSize, err := strconv.ParseInt(row[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("measurements row %d: inline size: %w", i+2, err)
		}

		rec := types.MeasurementRecord{
			Identity:     types.Identity{File: row[0], Function: row[1], Ordinal: ordinal},
			NoinlineSize: noSize,
			InlineSize:   inSize,
			Status:       types.CompileStatus(row[6]),
		}
		if row[5] != "" {
			delta, err := strconv.ParseFloat(row[5], 64)
			if err != nil {
				return nil, fmt.Errorf("measurements row %d: percent delta: %w", i+2, err)
			}
			rec.PercentDelta = delta
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// readTable reads all data rows of a CSV table, checking the header.
func readTable(path string, header []string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	all, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading table %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("table %s has no header", path)
	}
	if !equalRow(all[0], header) {
		return nil, fmt.Errorf("table %s has unexpected header %v", path, all[0])
	}
	return all[1:], nil
}

func equalRow(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func atois(fields []string) ([]int, error) {
	out := make([]int, len(fields))
	for i, s := range fields {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", i+3, err)
		}
		out[i] = n
	}
	return out, nil
}
