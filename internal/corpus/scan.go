// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package corpus discovers the C++ sources of a measurement run, loads the
// optional targets manifest that narrows which functions get compiled, and
// captures the source tree's git state for the output tables.
// Implements: prd008-corpus-intake R1, R2, R3;
//
//	docs/ARCHITECTURE § Corpus Intake.
package corpus

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExts are the extensions treated as C++ translation units.
var sourceExts = map[string]bool{
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".c":   true,
}

// skipDirs never contribute corpus files; build and temp_build hold
// generated artifacts in the datasets this tool is pointed at.
var skipDirs = map[string]bool{
	".git":       true,
	"build":      true,
	"temp_build": true,
}

// Scan returns the corpus files under root as sorted, slash-separated
// relative paths. The same tree always lists in the same order.
//
// Implements: prd008-corpus-intake R1.1-R1.4.
func Scan(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scanning corpus: %s is not a directory", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExts[strings.ToLower(filepath.Ext(d.Name()))] {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}

	sort.Strings(files)
	return files, nil
}
