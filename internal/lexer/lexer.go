// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package lexer converts raw C++ source text into a typed token stream.
// Comments and preprocessor directives are consumed as trivia, string and
// character literal contents are opaque, and every token carries its line,
// column, and byte offset.
// Implements: prd002-lexer R1, R2, R3;
//
//	docs/ARCHITECTURE § Lexer.
package lexer

import (
	"errors"
	"fmt"

	"github.com/petar-djukic/inline-lab/pkg/types"
)

// ErrMalformedLiteral is returned when a string or character literal (or a
// block comment) is still open at end of file. The caller skips the rest of
// the file and continues the run.
var ErrMalformedLiteral = errors.New("malformed literal")

// keywords holds the C++ reserved words the locator and metric computer
// depend on, plus the rest of the common keyword set so that none of them
// is ever mistaken for an identifier.
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "asm": true, "auto": true,
	"bool": true, "break": true, "case": true, "catch": true,
	"char": true, "class": true, "const": true, "const_cast": true,
	"constexpr": true, "continue": true, "decltype": true, "default": true,
	"delete": true, "do": true, "double": true, "dynamic_cast": true,
	"else": true, "enum": true, "explicit": true, "export": true,
	"extern": true, "false": true, "float": true, "for": true,
	"friend": true, "goto": true, "if": true, "inline": true,
	"int": true, "long": true, "mutable": true, "namespace": true,
	"new": true, "noexcept": true, "nullptr": true, "operator": true,
	"private": true, "protected": true, "public": true, "register": true,
	"reinterpret_cast": true, "return": true, "short": true, "signed": true,
	"sizeof": true, "static": true, "static_assert": true, "static_cast": true,
	"struct": true, "switch": true, "template": true, "this": true,
	"thread_local": true, "throw": true, "true": true, "try": true,
	"typedef": true, "typeid": true, "typename": true, "union": true,
	"unsigned": true, "using": true, "virtual": true, "void": true,
	"volatile": true, "wchar_t": true, "while": true,
}

// threeCharOps and twoCharOps are matched by maximal munch before falling
// back to single characters. "&&" and "||" must stay single tokens because
// the metric computer counts them as decision points.
var threeCharOps = []string{"<<=", ">>=", "->*", "..."}

var twoCharOps = []string{
	"::", "->", "++", "--", "<<", ">>", "<=", ">=", "==", "!=",
	"&&", "||", "+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

// punctuation is the set of single-character structural delimiters.
var punctuation = map[byte]bool{
	'(': true, ')': true, '{': true, '}': true,
	'[': true, ']': true, ';': true, ',': true,
}

// Scan tokenizes src in one pass and returns the complete token stream.
// The stream covers the whole file exactly once, with no overlaps and no
// gaps other than whitespace, comments, and preprocessor directive lines.
// A literal or block comment left open at end of file yields
// ErrMalformedLiteral and no tokens.
//
// Implements: prd002-lexer R1.1-R1.6.
func Scan(src string) ([]types.Token, error) {
	s := &scanner{src: src, line: 1, col: 1}
	if err := s.run(); err != nil {
		return nil, err
	}
	return s.toks, nil
}

// scanner walks src byte by byte, tracking line and column positions.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
	toks []types.Token

	// tokenOnLine is true once a token has been emitted on the current
	// line; a '#' only starts a preprocessor directive when it is the
	// first non-whitespace character of its line.
	tokenOnLine bool
}

func (s *scanner) run() error {
	for {
		if err := s.skipTrivia(); err != nil {
			return err
		}
		if s.pos >= len(s.src) {
			return nil
		}

		c := s.src[s.pos]
		switch {
		case c == '"' || c == '\'':
			if err := s.scanLiteral(c); err != nil {
				return err
			}
		case isDigit(c):
			s.scanNumber()
		case isIdentStart(c):
			s.scanWord()
		default:
			s.scanOperator()
		}
	}
}

// skipTrivia consumes whitespace, comments, and preprocessor directive
// lines. A block comment still open at end of file is malformed.
func (s *scanner) skipTrivia() error {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			s.advance()
		case c == '/' && s.peekAt(1) == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.advance()
			}
		case c == '/' && s.peekAt(1) == '*':
			line, col := s.line, s.col
			s.advance()
			s.advance()
			for {
				if s.pos >= len(s.src) {
					return fmt.Errorf("%w: block comment opened at line %d column %d is unterminated", ErrMalformedLiteral, line, col)
				}
				if s.src[s.pos] == '*' && s.peekAt(1) == '/' {
					s.advance()
					s.advance()
					break
				}
				s.advance()
			}
		case c == '#' && !s.tokenOnLine:
			s.skipDirective()
		default:
			return nil
		}
	}
	return nil
}

// skipDirective consumes a preprocessor line, honoring backslash-newline
// continuations. Directives never reach the token stream, matching the
// preprocessed view a compiler front end works from.
func (s *scanner) skipDirective() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == '\\' && (s.peekAt(1) == '\n' || (s.peekAt(1) == '\r' && s.peekAt(2) == '\n')) {
			s.advance() // backslash
			if s.src[s.pos] == '\r' {
				s.advance()
			}
			s.advance() // newline; the directive continues on the next line
			continue
		}
		if c == '\n' {
			s.advance()
			return
		}
		s.advance()
	}
}

// scanLiteral consumes a string or character literal, including the closing
// quote. Escaped quotes and backslashes inside the literal are opaque, so a
// "//" or "/*" inside never starts a comment.
func (s *scanner) scanLiteral(quote byte) error {
	line, col, off := s.line, s.col, s.pos
	s.advance() // opening quote
	for {
		if s.pos >= len(s.src) {
			kind := "string"
			if quote == '\'' {
				kind = "character"
			}
			return fmt.Errorf("%w: %s literal opened at line %d column %d is unterminated", ErrMalformedLiteral, kind, line, col)
		}
		c := s.src[s.pos]
		if c == '\\' {
			s.advance()
			if s.pos >= len(s.src) {
				return fmt.Errorf("%w: literal opened at line %d column %d ends in a bare escape", ErrMalformedLiteral, line, col)
			}
			s.advance()
			continue
		}
		s.advance()
		if c == quote {
			break
		}
	}
	s.emit(types.Literal, s.src[off:s.pos], line, col, off)
	return nil
}

// scanNumber consumes a numeric literal, including suffixes, hex digits,
// and signed exponents (1.5e-3).
func (s *scanner) scanNumber() {
	line, col, off := s.line, s.col, s.pos
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if isDigit(c) || isIdentStart(c) || c == '.' {
			s.advance()
			continue
		}
		if (c == '+' || c == '-') && s.pos > off {
			prev := s.src[s.pos-1]
			if prev == 'e' || prev == 'E' {
				s.advance()
				continue
			}
		}
		break
	}
	s.emit(types.Literal, s.src[off:s.pos], line, col, off)
}

// scanWord consumes an identifier or keyword.
func (s *scanner) scanWord() {
	line, col, off := s.line, s.col, s.pos
	for s.pos < len(s.src) && (isIdentStart(s.src[s.pos]) || isDigit(s.src[s.pos])) {
		s.advance()
	}
	text := s.src[off:s.pos]
	kind := types.Identifier
	if keywords[text] {
		kind = types.Keyword
	}
	s.emit(kind, text, line, col, off)
}

// scanOperator consumes one operator or punctuation token by maximal munch.
func (s *scanner) scanOperator() {
	line, col, off := s.line, s.col, s.pos

	if s.pos+3 <= len(s.src) {
		head := s.src[s.pos : s.pos+3]
		for _, op := range threeCharOps {
			if head == op {
				s.advance()
				s.advance()
				s.advance()
				s.emit(types.Operator, op, line, col, off)
				return
			}
		}
	}
	if s.pos+2 <= len(s.src) {
		head := s.src[s.pos : s.pos+2]
		for _, op := range twoCharOps {
			if head == op {
				s.advance()
				s.advance()
				s.emit(types.Operator, op, line, col, off)
				return
			}
		}
	}

	c := s.src[s.pos]
	s.advance()
	kind := types.Operator
	if punctuation[c] {
		kind = types.Punctuation
	}
	s.emit(kind, string(c), line, col, off)
}

// advance consumes one byte, updating line and column bookkeeping.
func (s *scanner) advance() {
	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 1
		s.tokenOnLine = false
	} else {
		s.col++
	}
	s.pos++
}

// peekAt returns the byte n positions ahead, or 0 past end of input.
func (s *scanner) peekAt(n int) byte {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

func (s *scanner) emit(kind types.TokenKind, text string, line, col, off int) {
	s.toks = append(s.toks, types.Token{Kind: kind, Text: text, Line: line, Column: col, Offset: off})
	s.tokenOnLine = true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
