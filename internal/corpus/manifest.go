// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package corpus

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest narrows measurement to the functions it names. Feature
// extraction is unaffected; the manifest only decides what gets compiled.
type Manifest struct {
	targets map[string]map[string]bool
}

// LoadManifest reads a mapping of relative file path to function names.
// The file is YAML; a JSON manifest parses too.
//
// Implements: prd008-corpus-intake R2.1, R2.2.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading targets manifest: %w", err)
	}

	var listing map[string][]string
	if err := yaml.Unmarshal(raw, &listing); err != nil {
		return nil, fmt.Errorf("parsing targets manifest: %w", err)
	}

	m := &Manifest{targets: make(map[string]map[string]bool, len(listing))}
	for file, fns := range listing {
		set := make(map[string]bool, len(fns))
		for _, fn := range fns {
			set[fn] = true
		}
		m.targets[filepath.ToSlash(file)] = set
	}
	return m, nil
}

// Wants reports whether the manifest includes the function. A nil manifest
// wants everything; with a manifest present, only the named functions of
// the named files are measured.
func (m *Manifest) Wants(file, function string) bool {
	if m == nil {
		return true
	}
	set, ok := m.targets[filepath.ToSlash(file)]
	if !ok {
		return false
	}
	return set[function]
}

// Size returns the total number of functions named by the manifest.
func (m *Manifest) Size() int {
	if m == nil {
		return 0
	}
	n := 0
	for _, set := range m.targets {
		n += len(set)
	}
	return n
}
