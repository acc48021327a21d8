// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd001-pipeline-interface R5.2 (identity and span types);
//
//	prd003-function-locator R2, R3.
package types

import "fmt"

// Identity is the stable key that joins structural and measurement data for
// the same function across pipeline stages. Ordinal is the zero-based
// occurrence of Function within File, so overloads and same-named functions
// get distinct identities.
type Identity struct {
	File     string // Source file path, as scanned
	Function string // Function name, qualified for out-of-class definitions (T::m)
	Ordinal  int    // Zero-based occurrence of Function within File
}

// String renders the identity in file:function#ordinal form.
func (id Identity) String() string {
	return fmt.Sprintf("%s:%s#%d", id.File, id.Function, id.Ordinal)
}

// FunctionSpan locates one function definition inside a file's token
// stream. All indices are positions in the token slice produced by the
// lexer for that file. BodyStart and BodyEnd index the opening and closing
// braces of the balanced top-level brace pair belonging to this signature,
// never a nested block that begins elsewhere.
type FunctionSpan struct {
	Identity       Identity // Join key shared with FeatureRecord and MeasurementRecord
	SignatureStart int      // Index of the first signature token (return type or template clause)
	SignatureEnd   int      // Index of the token just before the opening brace
	BodyStart      int      // Index of the opening brace
	BodyEnd        int      // Index of the matching closing brace
	ParameterCount int      // Top-level parameter groups; empty or void-only list is 0
}
