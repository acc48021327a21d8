// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package dataset

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// joinedHeader lists the joined table's columns: identity once, then the
// feature columns, then the measurement columns.
var joinedHeader = []string{
	"file", "function", "ordinal",
	"cyclomatic_complexity", "token_count", "parameter_count",
	"max_nesting_depth", "loop_count", "branch_count", "call_count",
	"noinline_object_size", "inline_object_size",
	"percent_delta", "compile_status",
}

// JoinedRecord pairs one function's features with its measurement.
type JoinedRecord struct {
	Feature     types.FeatureRecord
	Measurement types.MeasurementRecord
}

// InnerJoin pairs feature and measurement rows by identity, in feature row
// order. Rows present on only one side are dropped; a function that never
// compiled keeps its feature row but produces no joined row.
//
// Implements: prd007-dataset-sink R3.1, R3.2.
func InnerJoin(features []types.FeatureRecord, measurements []types.MeasurementRecord) []JoinedRecord {
	byID := make(map[types.Identity]types.MeasurementRecord, len(measurements))
	for _, m := range measurements {
		byID[m.Identity] = m
	}

	var joined []JoinedRecord
	for _, f := range features {
		if m, ok := byID[f.Identity]; ok {
			joined = append(joined, JoinedRecord{Feature: f, Measurement: m})
		}
	}
	return joined
}

// WriteJoined writes the joined table for the downstream trainer. The table
// is rendered in memory and installed with a temp-file rename, so an
// interrupted write never leaves a truncated table where a previous run's
// output used to be.
//
// Implements: prd007-dataset-sink R3.3.
func WriteJoined(path string, rows []JoinedRecord) error {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(joinedHeader); err != nil {
		return fmt.Errorf("writing joined header: %w", err)
	}

	for _, r := range rows {
		delta := ""
		if r.Measurement.Status == types.StatusOK {
			delta = strconv.FormatFloat(r.Measurement.PercentDelta, 'f', 4, 64)
		}
		row := []string{
			r.Feature.Identity.File,
			r.Feature.Identity.Function,
			strconv.Itoa(r.Feature.Identity.Ordinal),
			strconv.Itoa(r.Feature.CyclomaticComplexity),
			strconv.Itoa(r.Feature.TokenCount),
			strconv.Itoa(r.Feature.ParameterCount),
			strconv.Itoa(r.Feature.MaxNestingDepth),
			strconv.Itoa(r.Feature.LoopCount),
			strconv.Itoa(r.Feature.BranchCount),
			strconv.Itoa(r.Feature.CallCount),
			strconv.FormatInt(r.Measurement.NoinlineSize, 10),
			strconv.FormatInt(r.Measurement.InlineSize, 10),
			delta,
			string(r.Measurement.Status),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing joined row for %s: %w", r.Feature.Identity, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("rendering joined table: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	// Atomic write: temp file then rename.
	tmp, err := os.CreateTemp(dir, ".inline-lab-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	// Clean up temp file on any error.
	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("setting permissions: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("renaming temp file to %s: %w", path, err)
	}

	success = true
	return nil
}
