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

import "errors"

// ErrDivByZero is returned by ConstFold when a "/" or "%" constant
// expression would divide or modulo by zero.
var ErrDivByZero = errors.New("division or modulo by zero in constant expression")

// ErrOverflow is returned by ConstFold for INT64_MIN / -1, the one signed
// division that cannot be represented.
var ErrOverflow = errors.New("integer overflow in constant expression")

const minInt64 = -1 << 63

// ConstFold reduces the list (which must already consist solely of number
// tokens, the recognized operators, and parentheses) to, ideally, a single
// number token. Each precedence tier below is applied in turn, narrowest
// scope (innermost parenthesized group) first: unary ! ~ + -; * / %;
// binary + -; << >>; comparisons; bitwise & ^ |; logical && ||; finally
// ?:. A parenthesized pair wrapping a single remaining value is elided and
// the tiers repeat from the next enclosing scope outward.
func (l *TokenList) ConstFold() error {
	for l.front != nil {
		tok := l.back
		for tok != nil && tok.Op != '(' {
			tok = tok.Previous
		}
		if tok == nil {
			tok = l.front
		}

		l.foldUnary(tok)
		if err := l.foldBinaryOp(tok, isMulDivRemOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isAddSubOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isShiftOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isCompareOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isBitAndOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isBitXorOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isBitOrOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isLogAndOp); err != nil {
			return err
		}
		if err := l.foldBinaryOp(tok, isLogOrOp); err != nil {
			return err
		}
		l.foldTernary(&tok)

		if tok.Op != '(' {
			break
		}
		if tok.Next == nil || tok.Next.Next == nil || tok.Next.Next.Op != ')' {
			break
		}
		inner := tok.Next
		l.DeleteToken(tok)
		l.DeleteToken(inner.Next)
	}
	return nil
}

func scopeEnd(tok *Token) bool { return tok == nil || tok.Op == ')' }

// foldUnary applies "! ~ + -" in a single left-to-right pass over the
// scope starting at start.
func (l *TokenList) foldUnary(start *Token) {
	for tok := start; !scopeEnd(tok); {
		next := tok.Next
		switch {
		case tok.Op == '!' && tok.Next != nil && tok.Next.Number:
			if stringToInt64(tok.Next.Str()) == 0 {
				tok.SetText("1")
			} else {
				tok.SetText("0")
			}
			l.DeleteToken(tok.Next)
			next = tok.Next
		case tok.Op == '~' && tok.Next != nil && tok.Next.Number:
			tok.SetText(int64ToString(^stringToInt64(tok.Next.Str())))
			l.DeleteToken(tok.Next)
			next = tok.Next
		case (tok.Op == '+' || tok.Op == '-') && tok.Next != nil && tok.Next.Number &&
			(tok.Previous == nil || scopeEnd(tok.Previous) || (!tok.Previous.Number && !tok.Previous.Name)):
			if tok.Op == '+' {
				tok.SetText(tok.Next.Str())
			} else {
				tok.SetText(int64ToString(-stringToInt64(tok.Next.Str())))
			}
			l.DeleteToken(tok.Next)
			next = tok.Next
		}
		tok = next
	}
}

type binOpKind func(text string, op byte) (apply func(l, r int64) (int64, error), ok bool)

func isMulDivRemOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	switch op {
	case '*':
		return func(l, r int64) (int64, error) { return l * r, nil }, true
	case '/':
		return func(l, r int64) (int64, error) {
			if r == 0 {
				return 0, ErrDivByZero
			}
			if l == minInt64 && r == -1 {
				return 0, ErrOverflow
			}
			return l / r, nil
		}, true
	case '%':
		return func(l, r int64) (int64, error) {
			if r == 0 {
				return 0, ErrDivByZero
			}
			return l % r, nil
		}, true
	}
	return nil, false
}

func isAddSubOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	switch op {
	case '+':
		return func(l, r int64) (int64, error) { return l + r, nil }, true
	case '-':
		return func(l, r int64) (int64, error) { return l - r, nil }, true
	}
	return nil, false
}

func isShiftOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	switch s {
	case "<<":
		return func(l, r int64) (int64, error) { return l << uint64(r), nil }, true
	case ">>":
		return func(l, r int64) (int64, error) { return l >> uint64(r), nil }, true
	}
	return nil, false
}

func isCompareOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	switch s {
	case "<", "<=", ">", ">=", "==", "!=":
		return func(l, r int64) (int64, error) { return compareInts(l, r, s), nil }, true
	}
	return nil, false
}

func isBitAndOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	if op == '&' {
		return func(l, r int64) (int64, error) { return l & r, nil }, true
	}
	return nil, false
}

func isBitXorOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	if op == '^' {
		return func(l, r int64) (int64, error) { return l ^ r, nil }, true
	}
	return nil, false
}

func isBitOrOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	if op == '|' {
		return func(l, r int64) (int64, error) { return l | r, nil }, true
	}
	return nil, false
}

func isLogAndOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	if s == "&&" {
		return func(l, r int64) (int64, error) { return boolToInt64(l != 0 && r != 0), nil }, true
	}
	return nil, false
}

func isLogOrOp(s string, op byte) (func(l, r int64) (int64, error), bool) {
	if s == "||" {
		return func(l, r int64) (int64, error) { return boolToInt64(l != 0 || r != 0), nil }, true
	}
	return nil, false
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func compareInts(l, r int64, op string) int64 {
	var b bool
	switch op {
	case "<":
		b = l < r
	case "<=":
		b = l <= r
	case ">":
		b = l > r
	case ">=":
		b = l >= r
	case "==":
		b = l == r
	case "!=":
		b = l != r
	}
	return boolToInt64(b)
}

// foldBinaryOp applies a single precedence tier, identified by match, in a
// left-to-right pass over the scope starting at start.
func (l *TokenList) foldBinaryOp(start *Token, match binOpKind) error {
	for tok := start; !scopeEnd(tok); {
		next := tok.Next
		apply, ok := match(tok.Str(), tok.Op)
		if ok && tok.Previous != nil && tok.Previous.Number && tok.Next != nil && tok.Next.Number {
			lhs := stringToInt64(tok.Previous.Str())
			rhs := stringToInt64(tok.Next.Str())
			result, err := apply(lhs, rhs)
			if err != nil {
				return err
			}
			prev, nxt := tok.Previous, tok.Next
			prev.SetText(int64ToString(result))
			l.DeleteToken(tok)
			l.DeleteToken(nxt)
			next = prev.Next
			tok = prev
			continue
		}
		tok = next
	}
	return nil
}

// foldTernary folds "cond ? a : b" into its selected branch. *startTok is
// updated in case the fold removed the token the caller was tracking.
func (l *TokenList) foldTernary(startTok **Token) {
	start := *startTok
	for tok := start; !scopeEnd(tok); tok = tok.Next {
		if tok.Op != '?' || tok.Previous == nil || !tok.Previous.Number {
			continue
		}
		trueBranch := tok.Next
		if trueBranch == nil || !trueBranch.Number {
			continue
		}
		colon := trueBranch.Next
		if colon == nil || colon.Op != ':' {
			continue
		}
		falseBranch := colon.Next
		if falseBranch == nil || !falseBranch.Number {
			continue
		}
		cond := tok.Previous
		chosen := falseBranch.Str()
		if stringToInt64(cond.Str()) != 0 {
			chosen = trueBranch.Str()
		}
		cond.SetText(chosen)
		l.DeleteToken(tok)
		l.DeleteToken(trueBranch)
		l.DeleteToken(colon)
		l.DeleteToken(falseBranch)
		*startTok = cond
		return
	}
}
