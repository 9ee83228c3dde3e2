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

// adjacentCols reports whether b immediately follows a on the same source
// line with no gap in columns.
func adjacentCols(a, b *Token) bool {
	return a != nil && b != nil && a.Location.SameLine(b.Location) &&
		b.Location.Col == a.Location.Col+len(a.Str())
}

// fusableWithEquals lists the operator characters that fuse with a directly
// following '='.
var fusableWithEquals = "=!<>+-*/%&|^"

// CombineOperators fuses adjacent single-character operator tokens into
// compound operators when they sit at exactly adjacent source columns on
// the same line. It implements the rules from the engine design: floating
// point literals split across '.', 'e'/'E'/'p'/'P' exponents, "...",
// doubled operators ("||","&&","::","->","<<",">>","<<=",">>="), "="
// fusions, and "++"/"--" (but not when the neighbour is a number literal).
func (l *TokenList) CombineOperators() {
	for tok := l.front; tok != nil; tok = tok.Next {
		switch {
		case tok.Op == '.':
			l.fuseFloatOrEllipsis(tok)
		case tok.Op != 0 && isDoublableOp(tok.Op):
			l.fuseDoubled(tok)
		}
	}
	// Second pass: "=" fusions and exponent absorption, now that doubling
	// has already claimed "==", "&&", etc.
	for tok := l.front; tok != nil; tok = tok.Next {
		if tok.Op != 0 && len(fusableWithEquals) > 0 && containsByte(fusableWithEquals, tok.Op) {
			l.fuseTrailingEquals(tok)
		}
	}
}

func containsByte(s string, c byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == c {
			return true
		}
	}
	return false
}

func isDoublableOp(c byte) bool {
	switch c {
	case '|', '&', ':', '-', '<', '>', '+':
		return true
	default:
		return false
	}
}

// fuseDoubled handles "||", "&&", "::", "->", "<<", ">>", "++", "--" and the
// further fusion of "<<=" / ">>=".
func (l *TokenList) fuseDoubled(tok *Token) {
	next := tok.Next
	if next == nil || next.Op == 0 || !adjacentCols(tok, next) {
		return
	}
	switch {
	case tok.Op == '|' && next.Op == '|':
		l.merge2(tok, next, "||")
	case tok.Op == '&' && next.Op == '&':
		l.merge2(tok, next, "&&")
	case tok.Op == ':' && next.Op == ':':
		l.merge2(tok, next, "::")
	case tok.Op == '-' && next.Op == '>':
		l.merge2(tok, next, "->")
	case tok.Op == '<' && next.Op == '<':
		l.merge2(tok, next, "<<")
		if third := tok.Next; third != nil && third.Op == '=' && adjacentCols(tok, third) {
			l.merge2(tok, third, "<<=")
		}
	case tok.Op == '>' && next.Op == '>':
		l.merge2(tok, next, ">>")
		if third := tok.Next; third != nil && third.Op == '=' && adjacentCols(tok, third) {
			l.merge2(tok, third, ">>=")
		}
	case tok.Op == '+' && next.Op == '+':
		if !numberNeighbour(tok) {
			l.merge2(tok, next, "++")
		}
	case tok.Op == '-' && next.Op == '-':
		if !numberNeighbour(tok) {
			l.merge2(tok, next, "--")
		}
	}
}

// numberNeighbour reports whether either side of tok is a number literal,
// which prevents "++"/"--" fusion (so "1+ +2" stays unfused).
func numberNeighbour(tok *Token) bool {
	if tok.Previous != nil && tok.Previous.Number {
		return true
	}
	if tok.Next != nil && tok.Next.Next != nil && tok.Next.Next.Number {
		return true
	}
	return false
}

// isExecutableRefParam distinguishes "T & = default"-style parameter
// declarations (where '&' must not fuse with a following '=' into "&=") by
// walking back through balanced parentheses looking for a preceding
// identifier that names a function.
func isExecutableRefParam(tok *Token) bool {
	depth := 0
	for p := tok.Previous; p != nil; p = p.Previous {
		switch {
		case p.Op == ')':
			depth++
		case p.Op == '(':
			if depth == 0 {
				if name := p.PreviousSkipComments(); name != nil && name.Name {
					return true
				}
				return false
			}
			depth--
		}
	}
	return false
}

func (l *TokenList) merge2(tok, other *Token, fused string) {
	tok.SetText(fused)
	l.DeleteToken(other)
}

// fuseFloatOrEllipsis handles '.' fusions: "..." when three dots sit at
// adjacent columns, and floating-point literals formed from a number, '.',
// an optional further number, and an optional exponent suffix.
func (l *TokenList) fuseFloatOrEllipsis(tok *Token) {
	if n1 := tok.Next; n1 != nil && n1.Op == '.' && adjacentCols(tok, n1) {
		if n2 := n1.Next; n2 != nil && n2.Op == '.' && adjacentCols(n1, n2) {
			tok.SetText("...")
			l.DeleteToken(n1)
			l.DeleteToken(n2)
			return
		}
	}

	prevIsNum := tok.Previous != nil && tok.Previous.Number && adjacentCols(tok.Previous, tok)
	nextIsNum := tok.Next != nil && tok.Next.Number && adjacentCols(tok, tok.Next)
	if !prevIsNum && !nextIsNum {
		return
	}

	text := "."
	anchor := tok
	if prevIsNum {
		text = tok.Previous.Str() + text
		prev := tok.Previous
		anchor = prev
	}
	if nextIsNum {
		text += tok.Next.Str()
	}

	if prevIsNum {
		anchor.SetText(text)
		l.DeleteToken(tok)
		if nextIsNum {
			l.DeleteToken(anchor.Next)
		}
	} else {
		anchor.SetText(text)
		l.DeleteToken(anchor.Next)
	}
	l.absorbExponent(anchor)
}

// absorbExponent extends a floating literal with a trailing e/E/p/P exponent
// (hex floats use p/P, decimal floats use e/E) plus optional sign and
// digits, when they sit at exactly adjacent columns.
func (l *TokenList) absorbExponent(tok *Token) {
	isHex := len(tok.Str()) > 1 && tok.Str()[0] == '0' && (tok.Str()[1] == 'x' || tok.Str()[1] == 'X')
	expLetters := "eE"
	if isHex {
		expLetters = "pP"
	}
	next := tok.Next
	if next == nil || !adjacentCols(tok, next) || len(next.Str()) == 0 || !containsByte(expLetters, next.Str()[0]) {
		return
	}
	text := tok.Str() + next.Str()
	after := next.Next
	l.DeleteToken(next)
	if after != nil && adjacentCols(tok, after) && (after.Op == '+' || after.Op == '-') {
		text += after.Str()
		digits := after.Next
		l.DeleteToken(after)
		if digits != nil && digits.Number && adjacentCols(tok, digits) {
			text += digits.Str()
			l.DeleteToken(digits)
		}
	} else if after != nil && after.Number && adjacentCols(tok, after) {
		text += after.Str()
		l.DeleteToken(after)
	}
	tok.SetText(text)
}

// fuseTrailingEquals fuses one of "= ! < > + - * / % & | ^" with a directly
// adjacent '=' into the corresponding compound assignment/comparison
// operator.
func (l *TokenList) fuseTrailingEquals(tok *Token) {
	next := tok.Next
	if next == nil || next.Op != '=' || !adjacentCols(tok, next) {
		return
	}
	if tok.Op == '&' && isExecutableRefParam(tok) {
		return
	}
	l.merge2(tok, next, string(tok.Op)+"=")
}
