// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package types defines shared types used across inline-lab packages.
// Implements: prd001-pipeline-interface R5 (shared types).
package types

// TokenKind identifies the category of a source token.
type TokenKind int

const (
	Keyword     TokenKind = iota // Reserved word (if, for, return, ...)
	Identifier                   // Name that is not a reserved word
	Literal                      // Number, string, or character literal
	Operator                     // One- or multi-character operator (+, &&, ::, ...)
	Punctuation                  // Structural delimiter ((, ), {, }, ;, ,)
)

// String returns the human-readable name of the token kind.
func (k TokenKind) String() string {
	switch k {
	case Keyword:
		return "Keyword"
	case Identifier:
		return "Identifier"
	case Literal:
		return "Literal"
	case Operator:
		return "Operator"
	case Punctuation:
		return "Punctuation"
	default:
		return "Unknown"
	}
}

// Token is one lexical unit of a source file. Tokens are immutable and
// produced exactly once per file by the lexer.
// Implements: prd002-lexer R1.1-R1.3.
type Token struct {
	Kind   TokenKind // Category (keyword, identifier, etc.)
	Text   string    // Exact source text, literals normalized to one token
	Line   int       // Line number (1-based)
	Column int       // Column number (1-based)
	Offset int       // Byte offset of the token's first character in the file
}
