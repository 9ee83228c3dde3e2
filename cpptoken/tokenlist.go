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
	"fmt"
	"strconv"
	"strings"
)

// TokenList is a doubly linked sequence of tokens. The zero value is an
// empty list ready to use once Files is set.
type TokenList struct {
	Files *FileTable

	front *Token
	back  *Token
}

// NewTokenList returns an empty TokenList sharing the given file table.
func NewTokenList(files *FileTable) *TokenList {
	return &TokenList{Files: files}
}

// Front returns the first token, or nil if the list is empty.
func (l *TokenList) Front() *Token { return l.front }

// Back returns the last token, or nil if the list is empty.
func (l *TokenList) Back() *Token { return l.back }

// Empty reports whether the list has no tokens.
func (l *TokenList) Empty() bool { return l.front == nil }

// All iterates over the tokens in order. Mutating the list structure (not
// just token text) while iterating is not supported.
func (l *TokenList) All() func(yield func(*Token) bool) {
	return func(yield func(*Token) bool) {
		for t := l.front; t != nil; t = t.Next {
			if !yield(t) {
				return
			}
		}
	}
}

// PushBack appends tok to the end of the list.
func (l *TokenList) PushBack(tok *Token) {
	tok.Previous = l.back
	tok.Next = nil
	if l.back != nil {
		l.back.Next = tok
	} else {
		l.front = tok
	}
	l.back = tok
}

// DeleteToken unlinks tok from the list. A nil tok is a no-op.
func (l *TokenList) DeleteToken(tok *Token) {
	if tok == nil {
		return
	}
	prev, next := tok.Previous, tok.Next
	if prev != nil {
		prev.Next = next
	}
	if next != nil {
		next.Previous = prev
	}
	if l.front == tok {
		l.front = next
	}
	if l.back == tok {
		l.back = prev
	}
	tok.Previous, tok.Next = nil, nil
}

// TakeTokens splices every token out of other and appends them to the end of
// l, leaving other empty.
func (l *TokenList) TakeTokens(other *TokenList) {
	if other.front == nil {
		return
	}
	if l.front == nil {
		l.front = other.front
	} else {
		l.back.Next = other.front
		other.front.Previous = l.back
	}
	l.back = other.back
	other.front, other.back = nil, nil
}

// Clear empties the list.
func (l *TokenList) Clear() {
	l.front, l.back = nil, nil
}

// InsertBefore inserts tok immediately before mark. If mark is nil, tok is
// appended to the end.
func (l *TokenList) InsertBefore(mark, tok *Token) {
	if mark == nil {
		l.PushBack(tok)
		return
	}
	prev := mark.Previous
	tok.Previous, tok.Next = prev, mark
	mark.Previous = tok
	if prev != nil {
		prev.Next = tok
	} else {
		l.front = tok
	}
}

// Len returns the number of tokens (O(n); intended for tests/diagnostics).
func (l *TokenList) Len() int {
	n := 0
	for range l.All() {
		n++
	}
	return n
}

// sameLine reports whether prev and tok are non-nil and on the same source
// line of the same file.
func sameLine(prev, tok *Token) bool {
	return prev != nil && tok != nil && prev.Location.SameLine(tok.Location)
}

// Stringify produces the serialization contract described in the engine
// design: newlines are inserted to track the running line cursor, a
// "#line N \"path\"" directive is emitted whenever the file changes or the
// source line goes backwards, and a token is preceded by a single space
// whenever the token before it sits on the same source line.
func (l *TokenList) Stringify() string {
	var out strings.Builder
	cursor := Location{Files: l.Files}
	first := true
	for tok := l.front; tok != nil; tok = tok.Next {
		if first {
			cursor.FileIdx = tok.Location.FileIdx
		}
		if !first && (tok.Location.Line < cursor.Line || tok.Location.FileIdx != cursor.FileIdx) {
			fmt.Fprintf(&out, "\n#line %d %q\n", tok.Location.Line, tok.Location.File())
			cursor = tok.Location
		}
		for tok.Location.Line > cursor.Line {
			out.WriteByte('\n')
			cursor.Line++
		}
		if sameLine(tok.Previous, tok) {
			out.WriteByte(' ')
		}
		out.WriteString(tok.Str())
		cursor = cursor.Advance(tok.Str())
		first = false
	}
	return out.String()
}

// RemoveComments deletes every comment token from the list.
func (l *TokenList) RemoveComments() {
	tok := l.front
	for tok != nil {
		next := tok.Next
		if tok.Comment {
			l.DeleteToken(tok)
		}
		tok = next
	}
}

// LastLine returns a space-separated synthetic rendering of up to maxTokens
// tokens counting back from the end of the list, stopping at the first
// token that isn't on the same source line as the last one. String literals
// are replaced with "%str%", numbers with "%num%"; everything else is
// rendered verbatim. It is used to pattern-match directive shapes such as
// "# include" or "# define".
func (l *TokenList) LastLine(maxTokens int) string {
	if l.back == nil {
		return ""
	}
	var toks []*Token
	for tok := l.back; tok != nil && len(toks) < maxTokens; tok = tok.Previous {
		if len(toks) > 0 && !tok.Location.SameLine(toks[len(toks)-1].Location) {
			break
		}
		toks = append(toks, tok)
	}
	parts := make([]string, len(toks))
	for i, tok := range toks {
		switch {
		case tok.Str() != "" && tok.Str()[0] == '"':
			parts[len(toks)-1-i] = "%str%"
		case tok.Number:
			parts[len(toks)-1-i] = "%num%"
		default:
			parts[len(toks)-1-i] = tok.Str()
		}
	}
	return strings.Join(parts, " ")
}

// LineDirective realigns loc after a synthetic "#line N" style directive has
// been consumed for fileIdx/line: jumping forward within the same file is a
// plain cursor move, while jumping at most two lines backward rewinds by
// deleting the directive tokens already appended to the list (so that a
// `#line` used purely to restate the current position doesn't introduce a
// spurious gap in Stringify's output).
func (l *TokenList) LineDirective(fileIdx FileIndex, line int, loc *Location) {
	if fileIdx == loc.FileIdx && line >= loc.Line {
		loc.Line = line
		loc.Col = 1
		return
	}
	if fileIdx == loc.FileIdx && line >= loc.Line-2 {
		for l.back != nil && l.back.Location.FileIdx == fileIdx && l.back.Location.Line >= line {
			l.DeleteToken(l.back)
		}
		loc.Line = line
		loc.Col = 1
		return
	}
	loc.FileIdx = fileIdx
	loc.Line = line
	loc.Col = 1
}

// stringToInt64 parses an already-constant-folded integer token text.
func stringToInt64(s string) int64 {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L'
	})
	v, _ := strconv.ParseInt(s, 0, 64)
	return v
}

func int64ToString(v int64) string { return strconv.FormatInt(v, 10) }
