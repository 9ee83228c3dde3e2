// Copyright 2025 EngFlow Inc. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cpplex

import (
	"strings"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cpptoken"
)

// reader turns a Stream into a raw TokenList.
type reader struct {
	s    *Stream
	toks *cpptoken.TokenList
	loc  cpptoken.Location
	diag *cppdiag.List
	ws   bool // whitespace seen since the last emitted token

	// multiline counts backslash-newline continuations seen since the
	// last real newline; the pending line advance is deferred until then
	// so a continued physical line keeps the logical line of its start.
	multiline int
}

// Read tokenizes the entirety of s into a fresh TokenList located within
// file fileIdx of files, recording diagnostics into diag. On an
// unrecoverable lexical error (non-ASCII outside a literal/comment, an
// unterminated string/char/raw-string literal) the returned TokenList is
// empty, matching the "abort tokenization of that file" propagation policy.
func Read(s *Stream, files *cpptoken.FileTable, fileIdx cpptoken.FileIndex, diag *cppdiag.List) *cpptoken.TokenList {
	r := &reader{
		s:    s,
		toks: cpptoken.NewTokenList(files),
		loc:  cpptoken.NewLocation(files, fileIdx),
		diag: diag,
	}
	if !r.run() {
		r.toks.Clear()
	}
	r.toks.CombineOperators()
	return r.toks
}

func (r *reader) emit(text string) *cpptoken.Token {
	tok := cpptoken.NewToken(text, r.loc)
	tok.WhitespaceAhead = r.ws
	r.ws = false
	r.toks.PushBack(tok)
	r.loc = r.loc.Advance(text)
	return tok
}

// lastWasLoneBackslash reports whether the most recently emitted token is a
// lone "\" (a line-continuation marker awaiting its newline).
func (r *reader) lastWasLoneBackslash() bool {
	back := r.toks.Back()
	return back != nil && back.Str() == "\\"
}

func (r *reader) run() bool {
	for r.s.Good() {
		c, _ := r.s.Get()

		switch {
		case c == '\n':
			if r.lastWasLoneBackslash() {
				r.toks.DeleteToken(r.toks.Back())
				r.multiline++
			} else {
				r.loc.Line += r.multiline + 1
				r.multiline = 0
			}
			if r.multiline == 0 {
				r.loc.Col = 1
			}

		case c == '\t' || c == ' ':
			r.ws = true
			r.loc = r.loc.Advance(" ")

		case c < 0x20:
			// substitute space for other control characters
			r.ws = true
			r.loc = r.loc.Advance(" ")

		case c >= 0x80:
			r.diag.Add(cppdiag.UnhandledChar, r.loc, "character outside ASCII range")
			return false

		case isIdentStartByte(c):
			if !r.readIdentOrPrefixedLiteral() {
				return false
			}

		case c >= '0' && c <= '9':
			r.readNumber()

		case c == '/':
			if !r.readSlash() {
				return false
			}

		case c == '"':
			if !r.readQuoted('"', "") {
				return false
			}

		case c == '\'':
			if !r.readQuoted('\'', "") {
				return false
			}

		case c == '\\':
			r.readBackslash()

		case c == '<' && r.isIncludeHeaderPosition():
			if !r.readSystemHeaderName() {
				return false
			}

		default:
			r.emit(string(c))
		}
	}
	return true
}

func isIdentStartByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
func isIdentByte(c byte) bool {
	return isIdentStartByte(c) || (c >= '0' && c <= '9')
}

// readIdentOrPrefixedLiteral consumes an identifier, unless it turns out to
// be one of the C++ literal prefixes (u8, u, U, L, R and their
// combinations) immediately followed by a quote, in which case control
// passes to the literal reader so the prefix becomes part of the literal's
// token text.
func (r *reader) readIdentOrPrefixedLiteral() bool {
	start := r.s.Pos() - 1
	for {
		c, ok := r.s.Peek()
		if !ok || !isIdentByte(c) {
			break
		}
		r.s.Get()
	}
	word := r.s.Slice(start, r.s.Pos())

	if next, ok := r.s.Peek(); ok && (next == '"' || next == '\'') && isLiteralPrefix(word) {
		quote := next
		r.s.Get()
		return r.readQuoted(quote, word)
	}
	r.emit(word)
	return true
}

func isLiteralPrefix(s string) bool {
	switch s {
	case "u8", "u", "U", "L", "R", "u8R", "uR", "UR", "LR":
		return true
	default:
		return false
	}
}

func (r *reader) readNumber() {
	start := r.s.Pos() - 1
	for {
		c, ok := r.s.Peek()
		if !ok {
			break
		}
		if isIdentByte(c) || c == '.' || c == '\'' {
			r.s.Get()
			continue
		}
		if c == '+' || c == '-' {
			if prev, ok := r.s.PeekAt(-1); ok && (prev == 'e' || prev == 'E' || prev == 'p' || prev == 'P') {
				r.s.Get()
				continue
			}
		}
		break
	}
	r.emit(r.s.Slice(start, r.s.Pos()))
}

func (r *reader) readSlash() bool {
	if peek, ok := r.s.Peek(); ok && peek == '/' {
		start := r.s.Pos() - 1
		for r.s.Good() {
			if c, _ := r.s.Peek(); c == '\n' {
				break
			}
			r.s.Get()
		}
		r.emit(r.s.Slice(start, r.s.Pos()))
		return true
	}
	if peek, ok := r.s.Peek(); ok && peek == '*' {
		start := r.s.Pos() - 1
		r.s.Get()
		closed := false
		for r.s.Good() {
			c, _ := r.s.Get()
			if c == '*' {
				if n, ok := r.s.Peek(); ok && n == '/' {
					r.s.Get()
					closed = true
					break
				}
			}
		}
		if !closed {
			r.diag.Add(cppdiag.SyntaxError, r.loc, "unterminated multi-line comment")
			return false
		}
		r.emit(r.s.Slice(start, r.s.Pos()))
		return true
	}
	r.emit("/")
	return true
}

// readQuoted reads a string or character literal whose opening quote has
// just been consumed by the caller. prefix is the already-consumed literal
// prefix ("", "u8", "u", "U", "L", or one of those plus "R"); start is
// computed from prefix's length so the emitted token includes the prefix.
func (r *reader) readQuoted(quote byte, prefix string) bool {
	start := r.s.Pos() - 1 - len(prefix)

	if strings.HasSuffix(prefix, "R") {
		return r.readRawStringLiteral(start)
	}

	for r.s.Good() {
		c, _ := r.s.Get()
		if c == '\\' {
			if r.s.Good() {
				r.s.Get()
			}
			continue
		}
		if c == quote {
			r.emit(r.s.Slice(start, r.s.Pos()))
			return true
		}
		if c == '\n' {
			break
		}
	}
	r.diag.Add(cppdiag.SyntaxError, r.loc, "unterminated string or character literal")
	return false
}

// readRawStringLiteral reads the R"delim(...)delim" form; start indexes the
// first byte of the (possibly prefixed) literal, with the cursor currently
// positioned just after the opening '"'.
func (r *reader) readRawStringLiteral(start int) bool {
	delimStart := r.s.Pos()
	for {
		c, ok := r.s.Peek()
		if !ok {
			r.diag.Add(cppdiag.SyntaxError, r.loc, "missing opening delimiter in raw string literal")
			return false
		}
		if c == '(' {
			break
		}
		r.s.Get()
	}
	delim := r.s.Slice(delimStart, r.s.Pos())
	r.s.Get() // consume '('

	closer := ")" + delim + `"`
	for {
		idx := strings.Index(string(r.s.Remaining()), closer)
		if idx < 0 {
			if !r.s.Good() {
				r.diag.Add(cppdiag.SyntaxError, r.loc, "unterminated raw string literal")
				return false
			}
			r.s.Get()
			continue
		}
		r.s.Advance(idx + len(closer))
		r.emit(r.s.Slice(start, r.s.Pos()))
		return true
	}
}

func (r *reader) readBackslash() {
	// A backslash followed (possibly after spaces) by a newline is a line
	// continuation; emit a lone "\" token so the main loop's newline
	// handling can splice the next line onto this one. Warn when spaces
	// separated the backslash from the newline.
	save := r.s.Pos()
	sawSpace := false
	for {
		c, ok := r.s.Peek()
		if !ok || !(c == ' ' || c == '\t') {
			break
		}
		sawSpace = true
		r.s.Get()
	}
	if c, ok := r.s.Peek(); ok && c == '\n' {
		if sawSpace {
			r.diag.Add(cppdiag.PortabilityBackslash, r.loc, "backslash and newline separated by whitespace")
		}
		r.emit("\\")
		return
	}
	r.s.SetPos(save)
	r.emit("\\")
}

// isIncludeHeaderPosition reports whether the '<' just read begins the
// header-name token of a "# include <...>" directive: the preceding
// same-line tokens must match the "# include" (or "# include_next") shape.
func (r *reader) isIncludeHeaderPosition() bool {
	last := r.toks.LastLine(4)
	return strings.HasSuffix(last, "# include") || strings.HasSuffix(last, "# include_next")
}

func (r *reader) readSystemHeaderName() bool {
	start := r.s.Pos() - 1
	for {
		c, ok := r.s.Get()
		if !ok || c == '\n' {
			r.diag.Add(cppdiag.SyntaxError, r.loc, "missing closing '>' in #include")
			return false
		}
		if c == '>' {
			r.emit(r.s.Slice(start, r.s.Pos()))
			return true
		}
	}
}
