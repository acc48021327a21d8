// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package metrics computes structural source features for located
// functions. Every metric is derived from the token stream alone, so the
// same stream always yields the same record.
// Implements: prd004-structural-metrics R1, R2;
//
//	docs/ARCHITECTURE § Metric Computer.
package metrics

import (
	"errors"
	"fmt"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// ErrCorruptSpan reports a function span whose body bounds do not hold
// balanced delimiters. The function is skipped; the file's remaining
// functions are unaffected.
var ErrCorruptSpan = errors.New("corrupt function span")

// Compute derives the feature record for one function. The record depends
// only on the tokens inside the span, never on other functions in the file.
//
// Implements: prd004-structural-metrics R1.1-R1.7.
func Compute(tokens []types.Token, span types.FunctionSpan) (types.FeatureRecord, error) {
	if err := checkSpan(tokens, span); err != nil {
		return types.FeatureRecord{}, err
	}

	body := tokens[span.BodyStart+1 : span.BodyEnd]

	var (
		ifs, fors, whiles, switches, cases, catches int
		ands, ors, ternaries                        int
		calls                                       int
		depth, maxDepth                             int
	)

	for i, tok := range body {
		switch tok.Kind {
		case types.Keyword:
			switch tok.Text {
			case "if":
				ifs++
			case "for":
				fors++
			case "while":
				whiles++
			case "switch":
				switches++
			case "case":
				cases++
			case "catch":
				catches++
			}
		case types.Operator:
			switch tok.Text {
			case "&&":
				ands++
			case "||":
				ors++
			case "?":
				ternaries++
			}
		case types.Identifier:
			if i+1 < len(body) && body[i+1].Kind == types.Punctuation && body[i+1].Text == "(" {
				calls++
			}
		}

		switch tok.Text {
		case "{", "(":
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case "}", ")":
			depth--
		}
	}

	return types.FeatureRecord{
		Identity:             span.Identity,
		CyclomaticComplexity: 1 + ifs + fors + whiles + cases + catches + ands + ors + ternaries,
		TokenCount:           len(body),
		ParameterCount:       span.ParameterCount,
		MaxNestingDepth:      maxDepth,
		LoopCount:            fors + whiles,
		BranchCount:          ifs + switches,
		CallCount:            calls,
	}, nil
}

// checkSpan validates the body bounds before any counting happens. Braces
// and parens inside the body must balance and never dip below the body's
// own level.
func checkSpan(tokens []types.Token, span types.FunctionSpan) error {
	if span.BodyStart < 0 || span.BodyEnd >= len(tokens) || span.BodyStart >= span.BodyEnd {
		return fmt.Errorf("%w: %s: body bounds [%d, %d] out of range", ErrCorruptSpan, span.Identity, span.BodyStart, span.BodyEnd)
	}
	if tokens[span.BodyStart].Text != "{" || tokens[span.BodyEnd].Text != "}" {
		return fmt.Errorf("%w: %s: body bounds are not braces", ErrCorruptSpan, span.Identity)
	}

	braces, parens := 0, 0
	for _, tok := range tokens[span.BodyStart+1 : span.BodyEnd] {
		switch tok.Text {
		case "{":
			braces++
		case "}":
			braces--
		case "(":
			parens++
		case ")":
			parens--
		}
		if braces < 0 || parens < 0 {
			return fmt.Errorf("%w: %s: unbalanced delimiters in body", ErrCorruptSpan, span.Identity)
		}
	}
	if braces != 0 || parens != 0 {
		return fmt.Errorf("%w: %s: unbalanced delimiters in body", ErrCorruptSpan, span.Identity)
	}
	return nil
}
