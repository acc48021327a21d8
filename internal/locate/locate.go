// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package locate scans token streams for function definitions using
// balanced-delimiter matching. Only file-scope and namespace-scope
// definitions are extracted; member functions defined inside a class body
// are skipped, and anything inside an unclosed body is never reconsidered
// as a new top-level function.
// Implements: prd003-function-locator R1, R2, R3;
//
//	docs/ARCHITECTURE § Function Locator.
package locate

import (
	"strings"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// qualifierKeywords may appear between a parameter list's closing paren and
// the function body's opening brace (cv-qualifiers, noexcept, function-try
// blocks, old-style throw specs, and keywords inside trailing return types
// or constructor initializer lists).
var qualifierKeywords = map[string]bool{
	"const": true, "noexcept": true, "mutable": true, "volatile": true,
	"throw": true, "try": true,
}

// qualifierOps are the operator tokens tolerated in the same position
// (reference qualifiers, trailing return arrows, initializer list colons,
// and template argument brackets).
var qualifierOps = map[string]bool{
	"::": true, "<": true, ">": true, ">>": true,
	"&": true, "&&": true, "*": true, "->": true, ":": true, "~": true,
}

// Functions yields one FunctionSpan per function definition found in the
// token stream, in source order. Ordinals are assigned per function name in
// encounter order, so overloads and repeated names get distinct identities.
// Prototypes (a parameter list followed by ';') are skipped.
//
// Implements: prd003-function-locator R1.1-R1.7, R2.1-R2.4.
func Functions(tokens []types.Token, file string) []types.FunctionSpan {
	w := &walker{toks: tokens, file: file, ordinals: make(map[string]int)}
	w.run()
	return w.spans
}

// walker holds the scan state for one file.
type walker struct {
	toks     []types.Token
	file     string
	ordinals map[string]int
	spans    []types.FunctionSpan
}

// run drives the outer scan. Class-like bodies, function bodies, and stray
// brace groups are skipped wholesale, so the only brace bookkeeping left at
// this level is the transparent namespace nesting.
func (w *walker) run() {
	nsDepth := 0
	i := 0
	for i < len(w.toks) {
		t := w.toks[i]

		switch {
		case t.Kind == types.Keyword && t.Text == "template":
			// Consume the template clause whole so its contents
			// (class, typename, commas) are not misread as
			// top-level constructs.
			i = w.skipTemplateClause(i)

		case t.Kind == types.Keyword && t.Text == "namespace":
			next := w.scanAhead(i+1, "{", ";")
			if next < len(w.toks) && w.toks[next].Text == "{" {
				nsDepth++
			}
			i = next + 1

		case t.Kind == types.Keyword && isClassLike(t.Text):
			next := w.scanAhead(i+1, "{", ";")
			if next < len(w.toks) && w.toks[next].Text == "{" {
				// Opaque context: member definitions inside are
				// skipped by policy.
				i = w.skipBraces(next) + 1
			} else {
				i = next + 1
			}

		case t.Kind == types.Punctuation && t.Text == "{":
			// Stray brace group at outer scope (brace initializer,
			// extern block). Never a function body of ours.
			i = w.skipBraces(i) + 1

		case t.Kind == types.Punctuation && t.Text == "}":
			if nsDepth > 0 {
				nsDepth--
			}
			i++

		case t.Kind == types.Punctuation && t.Text == "(":
			span, ok := w.tryFunction(i)
			if ok {
				w.spans = append(w.spans, span)
				i = span.BodyEnd + 1
			} else {
				close := w.matchParens(i)
				if close < 0 {
					return
				}
				i = close + 1
			}

		default:
			i++
		}
	}
}

// tryFunction tests whether the '(' at open belongs to a function
// definition. It walks back over the qualified name and return type,
// forward over the parameter list and trailing qualifiers, and accepts only
// when a balanced body brace pair follows.
func (w *walker) tryFunction(open int) (types.FunctionSpan, bool) {
	nameStart, nameEnd, qualified := w.walkName(open)
	if nameStart < 0 {
		return types.FunctionSpan{}, false
	}

	sigStart := w.walkReturnType(nameStart)
	if sigStart == nameStart && !qualified {
		// An unqualified name with no preceding type tokens is a
		// call or initializer, not a definition. Qualified names are
		// exempt for the sake of out-of-class constructors.
		return types.FunctionSpan{}, false
	}

	close := w.matchParens(open)
	if close < 0 {
		return types.FunctionSpan{}, false
	}

	bodyStart, ok := w.walkQualifiers(close + 1)
	if !ok {
		return types.FunctionSpan{}, false
	}

	bodyEnd := w.skipBraces(bodyStart)
	if bodyEnd >= len(w.toks) {
		return types.FunctionSpan{}, false
	}

	name := w.spellName(nameStart, nameEnd)
	ord := w.ordinals[name]
	w.ordinals[name] = ord + 1

	return types.FunctionSpan{
		Identity:       types.Identity{File: w.file, Function: name, Ordinal: ord},
		SignatureStart: sigStart,
		SignatureEnd:   bodyStart - 1,
		BodyStart:      bodyStart,
		BodyEnd:        bodyEnd,
		ParameterCount: countParams(w.toks, open, close),
	}, true
}

// walkName walks back from the '(' over the function name, including '::'
// qualification chains and destructor tildes. Returns (-1, -1, false) when
// the preceding token is not an identifier.
func (w *walker) walkName(open int) (start, end int, qualified bool) {
	end = open - 1
	if end < 0 || w.toks[end].Kind != types.Identifier {
		return -1, -1, false
	}
	start = end
	if start > 0 && w.toks[start-1].Kind == types.Operator && w.toks[start-1].Text == "~" {
		start--
	}
	for start >= 2 &&
		w.toks[start-1].Kind == types.Operator && w.toks[start-1].Text == "::" &&
		w.toks[start-2].Kind == types.Identifier {
		start -= 2
		qualified = true
	}
	return start, end, qualified
}

// walkReturnType walks back from the name over return type tokens,
// balancing template argument brackets, and returns the signature start.
func (w *walker) walkReturnType(nameStart int) int {
	sigStart := nameStart
	rt := nameStart - 1
	for rt >= 0 {
		t := w.toks[rt]
		switch {
		case t.Kind == types.Keyword || t.Kind == types.Identifier:
			sigStart = rt
			rt--
		case t.Kind == types.Operator && (t.Text == "::" || t.Text == "*" || t.Text == "&" || t.Text == "&&"):
			sigStart = rt
			rt--
		case t.Kind == types.Operator && (t.Text == ">" || t.Text == ">>"):
			lt := w.matchAngleBack(rt)
			if lt < 0 {
				return sigStart
			}
			sigStart = lt
			rt = lt - 1
		default:
			return sigStart
		}
	}
	return sigStart
}

// walkQualifiers scans forward from just past the parameter list, tolerating
// cv-qualifiers, noexcept clauses, trailing return types, and constructor
// initializer lists. It returns the body's opening brace index, or ok=false
// for prototypes and anything that is not a definition.
func (w *walker) walkQualifiers(from int) (int, bool) {
	j := from
	for j < len(w.toks) {
		t := w.toks[j]
		switch {
		case t.Kind == types.Punctuation && t.Text == "{":
			return j, true
		case t.Kind == types.Punctuation && t.Text == ";":
			return 0, false
		case t.Kind == types.Punctuation && t.Text == "(":
			close := w.matchParens(j)
			if close < 0 {
				return 0, false
			}
			j = close + 1
		case t.Kind == types.Punctuation && t.Text == ",":
			j++
		case t.Kind == types.Identifier || t.Kind == types.Keyword:
			if t.Kind == types.Keyword && !qualifierKeywords[t.Text] && !isTypeContext(t.Text) {
				return 0, false
			}
			j++
		case t.Kind == types.Literal:
			// Template arguments in trailing return types may be
			// literals (array<int, 3>).
			j++
		case t.Kind == types.Operator && qualifierOps[t.Text]:
			j++
		default:
			return 0, false
		}
	}
	return 0, false
}

// isTypeContext reports keywords that legitimately appear inside trailing
// return types or initializer list arguments.
func isTypeContext(kw string) bool {
	switch kw {
	case "void", "bool", "char", "wchar_t", "short", "int", "long",
		"float", "double", "signed", "unsigned", "auto", "decltype",
		"typename", "true", "false", "nullptr", "sizeof", "this", "new",
		"static_cast", "const_cast", "dynamic_cast", "reinterpret_cast":
		return true
	}
	return false
}

// spellName renders the token range as the function's identity name, with
// no separators ("Matrix_0::transpose").
func (w *walker) spellName(start, end int) string {
	var b strings.Builder
	for i := start; i <= end; i++ {
		b.WriteString(w.toks[i].Text)
	}
	return b.String()
}

// countParams counts top-level comma-separated parameter groups inside the
// (open, close) parens. Commas nested in parens, brackets, braces, or
// template angle brackets do not split parameters. An empty or void-only
// list counts zero.
func countParams(toks []types.Token, open, close int) int {
	if close == open+1 {
		return 0
	}
	if close == open+2 && toks[open+1].Kind == types.Keyword && toks[open+1].Text == "void" {
		return 0
	}

	commas := 0
	paren, bracket, brace, angle := 0, 0, 0, 0
	for i := open + 1; i < close; i++ {
		switch toks[i].Text {
		case "(":
			paren++
		case ")":
			paren--
		case "[":
			bracket++
		case "]":
			bracket--
		case "{":
			brace++
		case "}":
			brace--
		case "<":
			angle++
		case ">":
			if angle > 0 {
				angle--
			}
		case ">>":
			if angle >= 2 {
				angle -= 2
			} else if angle == 1 {
				angle = 0
			}
		case ",":
			if paren == 0 && bracket == 0 && brace == 0 && angle == 0 {
				commas++
			}
		}
	}
	return commas + 1
}

// scanAhead returns the index of the first token matching either stop text,
// or len(toks) when neither occurs.
func (w *walker) scanAhead(from int, stopA, stopB string) int {
	for i := from; i < len(w.toks); i++ {
		if w.toks[i].Kind == types.Punctuation && (w.toks[i].Text == stopA || w.toks[i].Text == stopB) {
			return i
		}
	}
	return len(w.toks)
}

// skipTemplateClause consumes "template < ... >" starting at the template
// keyword and returns the index just past the closing bracket. A clause
// with no bracket advances one token.
func (w *walker) skipTemplateClause(at int) int {
	i := at + 1
	if i >= len(w.toks) || w.toks[i].Kind != types.Operator || w.toks[i].Text != "<" {
		return at + 1
	}
	depth := 0
	for ; i < len(w.toks); i++ {
		switch w.toks[i].Text {
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
		case "{", "}", ";":
			return i
		}
	}
	return i
}

// matchParens returns the index of the ')' matching the '(' at open, or -1
// when the stream ends first.
func (w *walker) matchParens(open int) int {
	depth := 0
	for i := open; i < len(w.toks); i++ {
		switch w.toks[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// skipBraces returns the index of the '}' matching the '{' at open, or
// len(toks) when the stream ends first.
func (w *walker) skipBraces(open int) int {
	depth := 0
	for i := open; i < len(w.toks); i++ {
		switch w.toks[i].Text {
		case "{":
			depth++
		case "}":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(w.toks)
}

// matchAngleBack walks back from a '>' (or '>>') to its matching '<',
// returning the '<' index or -1. Statement boundaries end the search.
func (w *walker) matchAngleBack(at int) int {
	depth := 0
	for i := at; i >= 0; i-- {
		switch w.toks[i].Text {
		case ">":
			depth++
		case ">>":
			depth += 2
		case "<":
			depth--
			if depth <= 0 {
				return i
			}
		case "<<":
			depth -= 2
			if depth <= 0 {
				return i
			}
		case ";", "{", "}":
			return -1
		}
	}
	return -1
}

// isClassLike reports the keywords that open an opaque member context.
func isClassLike(kw string) bool {
	return kw == "class" || kw == "struct" || kw == "union" || kw == "enum"
}
