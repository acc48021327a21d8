// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package compile

import (
	"errors"
	"fmt"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// Attribute spellings understood by both gcc and clang.
const (
	attrNoinline     = "__attribute__((noinline))"
	attrAlwaysInline = "__attribute__((always_inline))"
)

// ErrBadSpan reports a span whose indices or offsets do not address the
// source it was derived from.
var ErrBadSpan = errors.New("span does not address source")

// Inject returns a copy of src with the inline-control attribute for mode
// spliced in front of the target function's signature. When the signature
// opens with template clauses the attribute lands after the last clause's
// closing bracket, keeping the template syntactically valid. Every other
// byte of the file is preserved, so the two variants of a file differ only
// in the attribute text.
//
// Implements: prd005-compile-harness R1.1-R1.4.
func Inject(src string, tokens []types.Token, span types.FunctionSpan, mode types.InlineMode) (string, error) {
	attr, err := attributeFor(mode)
	if err != nil {
		return "", err
	}

	if span.SignatureStart < 0 || span.SignatureStart >= len(tokens) ||
		span.SignatureEnd < span.SignatureStart || span.SignatureEnd >= len(tokens) {
		return "", fmt.Errorf("%w: %s: signature bounds [%d, %d]", ErrBadSpan, span.Identity, span.SignatureStart, span.SignatureEnd)
	}

	at := span.SignatureStart
	for at <= span.SignatureEnd && tokens[at].Kind == types.Keyword && tokens[at].Text == "template" {
		next := afterTemplateClause(tokens, at)
		if next < 0 {
			return "", fmt.Errorf("%w: %s: unclosed template clause", ErrBadSpan, span.Identity)
		}
		at = next
	}
	if at > span.SignatureEnd {
		return "", fmt.Errorf("%w: %s: no signature tokens after template clause", ErrBadSpan, span.Identity)
	}

	off := tokens[at].Offset
	if off < 0 || off > len(src) {
		return "", fmt.Errorf("%w: %s: token offset %d beyond source", ErrBadSpan, span.Identity, off)
	}

	return src[:off] + attr + " " + src[off:], nil
}

// attributeFor maps an inline mode to its attribute spelling.
func attributeFor(mode types.InlineMode) (string, error) {
	switch mode {
	case types.ModeNoinline:
		return attrNoinline, nil
	case types.ModeAlwaysInline:
		return attrAlwaysInline, nil
	default:
		return "", fmt.Errorf("unknown inline mode %q", mode)
	}
}

// afterTemplateClause returns the index of the first token past the
// "template <...>" clause opening at idx, or -1 when the clause never
// closes.
func afterTemplateClause(tokens []types.Token, idx int) int {
	i := idx + 1
	if i >= len(tokens) || tokens[i].Text != "<" {
		return -1
	}
	depth := 0
	for ; i < len(tokens); i++ {
		switch tokens[i].Text {
		case "<":
			depth++
		case "<<":
			depth += 2
		case ">":
			depth--
			if depth <= 0 {
				return i + 1
			}
		case ">>":
			depth -= 2
			if depth <= 0 {
				return i + 1
			}
		}
	}
	return -1
}
