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

package cpptoken

import (
	"strings"

	"github.com/cppscan/simplecpp/internal/collections"
)

// Token is a single lexical unit plus everything the rest of the engine
// needs to reason about its provenance: its classification flags, its
// source location, and the set of macros it was produced by (used to
// enforce no-rescan hygiene during macro expansion).
//
// A Token is owned by at most one TokenList at a time; Previous/Next are
// only valid while it is linked into one.
type Token struct {
	text string

	// Classification flags, recomputed by SetText whenever the text
	// changes. Exactly zero or one of Name/Number/Comment is true; Op is
	// independent and only set when none of the others are and the text
	// is a single non-alphanumeric, non-'_' character.
	Name    bool
	Number  bool
	Comment bool
	Op      byte // the operator character, or 0

	Location        Location
	WhitespaceAhead bool

	// MacroOrigin is the set of macro names whose expansion produced this
	// token, directly or transitively. MacroName is the name of the macro
	// whose expansion most recently introduced this token (for
	// diagnostics); it is the empty string for tokens that were not
	// produced by macro expansion.
	MacroOrigin collections.Set[string]
	MacroName   string

	Previous *Token
	Next     *Token

	// NextCond is an auxiliary link reserved for conditional-compilation
	// bookkeeping by callers outside this engine; never touched here.
	NextCond *Token
}

// NewToken returns a Token with text s at location loc. Classification
// flags are computed immediately.
func NewToken(s string, loc Location) *Token {
	t := &Token{Location: loc}
	t.SetText(s)
	return t
}

// Clone returns a copy of tok detached from any list (Previous/Next/NextCond
// are nil); MacroOrigin is copied, not shared.
func (t *Token) Clone() *Token {
	clone := &Token{
		text:            t.text,
		Name:            t.Name,
		Number:          t.Number,
		Comment:         t.Comment,
		Op:              t.Op,
		Location:        t.Location,
		WhitespaceAhead: t.WhitespaceAhead,
		MacroName:       t.MacroName,
	}
	if t.MacroOrigin != nil {
		clone.MacroOrigin = make(collections.Set[string], len(t.MacroOrigin)).Join(t.MacroOrigin)
	}
	return clone
}

// Str returns the token's text.
func (t *Token) Str() string { return t.text }

// SetText replaces the token's text and refreshes its classification flags.
func (t *Token) SetText(s string) {
	t.text = s
	t.classify()
}

// classify derives Name/Number/Comment/Op from the current text, per the
// classifier contract: name starts with an identifier character and
// contains no single-quote; number starts with a digit, or a sign
// immediately followed by a digit; comment starts with "//" or "/*"; op is
// a lone non-alphanumeric, non-'_' character once none of the above apply.
func (t *Token) classify() {
	t.Name, t.Number, t.Comment, t.Op = false, false, false, 0
	s := t.text
	if s == "" {
		return
	}
	if isIdentStart(s[0]) && !strings.ContainsRune(s, '\'') {
		t.Name = true
		return
	}
	if IsNumberLike(s) {
		t.Number = true
		return
	}
	if len(s) > 1 && s[0] == '/' && (s[1] == '/' || s[1] == '*') {
		t.Comment = true
		return
	}
	if len(s) == 1 && !isAlnumOrUnderscore(s[0]) {
		t.Op = s[0]
	}
}

// IsNumberLike reports whether s begins like a numeric literal: a digit, or
// a leading sign immediately followed by a digit.
func IsNumberLike(s string) bool {
	if s == "" {
		return false
	}
	if isDigit(s[0]) {
		return true
	}
	return len(s) > 1 && (s[0] == '-' || s[0] == '+') && isDigit(s[1])
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnumOrUnderscore(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// IsOneOf reports whether the token's text is exactly one of the single
// characters in ops.
func (t *Token) IsOneOf(ops string) bool {
	return len(t.text) == 1 && strings.IndexByte(ops, t.text[0]) >= 0
}

// StartsWithOneOf reports whether the token's text starts with one of the
// characters in chars.
func (t *Token) StartsWithOneOf(chars string) bool {
	return t.text != "" && strings.IndexByte(chars, t.text[0]) >= 0
}

// EndsWithOneOf reports whether the token's text ends with one of the
// characters in chars.
func (t *Token) EndsWithOneOf(chars string) bool {
	return t.text != "" && strings.IndexByte(chars, t.text[len(t.text)-1]) >= 0
}

// IsExpandedFrom reports whether name is a member of this token's
// MacroOrigin set.
func (t *Token) IsExpandedFrom(name string) bool {
	return t.MacroOrigin != nil && t.MacroOrigin.Contains(name)
}

// SetExpandedFrom records that t was produced while expanding the macro
// named by name, inheriting the origin set of src (the token that
// triggered the expansion) and propagating its WhitespaceAhead.
func (t *Token) SetExpandedFrom(src *Token, name string) {
	origin := make(collections.Set[string])
	if src != nil && src.MacroOrigin != nil {
		origin = origin.Join(src.MacroOrigin)
	}
	origin.Add(name)
	t.MacroOrigin = origin
	t.MacroName = name
	if src != nil && src.WhitespaceAhead {
		t.WhitespaceAhead = true
	}
}

// PreviousSkipComments walks Previous links, skipping comment tokens.
func (t *Token) PreviousSkipComments() *Token {
	p := t.Previous
	for p != nil && p.Comment {
		p = p.Previous
	}
	return p
}

// NextSkipComments walks Next links, skipping comment tokens.
func (t *Token) NextSkipComments() *Token {
	n := t.Next
	for n != nil && n.Comment {
		n = n.Next
	}
	return n
}
