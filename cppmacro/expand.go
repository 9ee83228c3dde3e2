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

package cppmacro

import (
	"strings"

	"github.com/cppscan/simplecpp/cpptoken"
)

// Context carries the per-engine state that predefined macros need at
// expansion time.
type Context struct {
	Counter int64
}

// NewDynamicMacro returns a Macro whose expansion is computed at use time by
// fn rather than by substituting a fixed Replacement list (__FILE__,
// __LINE__, __COUNTER__ and similar).
func NewDynamicMacro(name string, fn func(invocation *cpptoken.Token, ctx *Context) string) *Macro {
	return &Macro{Name: name, dynamic: fn}
}

// Expand computes the expansion of the macro invocation starting at
// invocation (which must be linked into a TokenList so a function-like
// call's arguments and closing ")" can be located). It reports expanded =
// false, leaving invocation untouched, when invocation names a
// function-like macro not actually followed by "(".
func Expand(files *cpptoken.FileTable, invocation *cpptoken.Token, macros *Map, ctx *Context) (out *cpptoken.TokenList, next *cpptoken.Token, expanded bool, err error) {
	macro := macros.Find(invocation.Str())
	if macro == nil {
		return nil, invocation.Next, false, nil
	}

	if macro.dynamic != nil {
		out = cpptoken.NewTokenList(files)
		tok := cpptoken.NewToken(macro.dynamic(invocation, ctx), invocation.Location)
		tok.SetExpandedFrom(invocation, macro.Name)
		out.PushBack(tok)
		return out, invocation.Next, true, nil
	}

	if !macro.IsFunctionLike {
		out, err = substituteReplacement(files, macro, nil, invocation, macros, ctx)
		if err != nil {
			return nil, invocation.Next, true, err
		}
		recordUsage(macro, invocation, true)
		return out, invocation.Next, true, nil
	}

	open := invocation.NextSkipComments()
	if open == nil || open.Op != '(' {
		return nil, invocation.Next, false, nil
	}

	argGroups, closeParen, err := readArguments(open)
	if err != nil {
		return nil, invocation.Next, true, err
	}
	if err := checkArity(macro, argGroups); err != nil {
		return nil, invocation.Next, true, err
	}

	out, err = substituteReplacement(files, macro, argGroups, invocation, macros, ctx)
	if err != nil {
		return nil, invocation.Next, true, err
	}
	recordUsage(macro, invocation, true)
	return out, closeParen.Next, true, nil
}

func recordUsage(macro *Macro, invocation *cpptoken.Token, valueKnown bool) {
	macro.Usages = append(macro.Usages, Usage{
		DefineLocation: macro.DefineLocation,
		UseLocation:    invocation.Location,
		ValueKnown:     valueKnown,
	})
}

// readArguments splits the comma-separated, paren-balanced argument list
// starting just after open (a "(" token) into raw token groups, returning
// the matching ")" token.
func readArguments(open *cpptoken.Token) ([][]*cpptoken.Token, *cpptoken.Token, error) {
	var groups [][]*cpptoken.Token
	var cur []*cpptoken.Token
	depth := 0
	tok := open.Next
	for tok != nil {
		switch {
		case tok.Op == '(':
			depth++
			cur = append(cur, tok)
		case tok.Op == ')':
			if depth == 0 {
				groups = append(groups, cur)
				return groups, tok, nil
			}
			depth--
			cur = append(cur, tok)
		case tok.Op == ',' && depth == 0:
			groups = append(groups, cur)
			cur = nil
		default:
			cur = append(cur, tok)
		}
		tok = tok.Next
	}
	return nil, nil, errInvalid(open, "", "missing ')' in macro invocation")
}

func checkArity(macro *Macro, groups [][]*cpptoken.Token) error {
	minArgs := macro.MinArgs()
	if len(groups) == 1 && len(groups[0]) == 0 && minArgs == 0 && !macro.IsVariadic {
		return nil
	}
	if macro.IsVariadic {
		if len(groups) < minArgs {
			return ErrWrongArity
		}
		return nil
	}
	if len(groups) != minArgs {
		return ErrWrongArity
	}
	return nil
}

// variadicGroup reassembles argGroups[minArgs:] (each originally separated
// by a top-level comma) into the single raw token sequence bound to
// __VA_ARGS__, re-inserting the commas that separated them.
func variadicGroup(groups [][]*cpptoken.Token, minArgs int) []*cpptoken.Token {
	if minArgs >= len(groups) {
		return nil
	}
	var out []*cpptoken.Token
	for i := minArgs; i < len(groups); i++ {
		if i > minArgs {
			out = append(out, syntheticComma(groups[i-1]))
		}
		out = append(out, groups[i]...)
	}
	return out
}

func syntheticComma(prevGroup []*cpptoken.Token) *cpptoken.Token {
	loc := cpptoken.Location{}
	if len(prevGroup) > 0 {
		loc = prevGroup[len(prevGroup)-1].Location
	}
	return cpptoken.NewToken(",", loc)
}

func argForParam(macro *Macro, groups [][]*cpptoken.Token, paramIdx int) []*cpptoken.Token {
	if macro.IsVariadic && paramIdx == len(macro.Parameters)-1 {
		return variadicGroup(groups, macro.MinArgs())
	}
	if paramIdx < len(groups) {
		return groups[paramIdx]
	}
	return nil
}

// substituteReplacement walks macro's replacement list once, applying
// "#" stringize, "##" paste, and plain parameter substitution in that
// precedence order, and recursively expanding any resulting identifier
// naming another macro.
func substituteReplacement(files *cpptoken.FileTable, macro *Macro, argGroups [][]*cpptoken.Token, invocation *cpptoken.Token, macros *Map, ctx *Context) (*cpptoken.TokenList, error) {
	var repl []*cpptoken.Token
	for t := macro.Replacement.Front(); t != nil; t = t.Next {
		repl = append(repl, t)
	}

	out := cpptoken.NewTokenList(files)
	i := 0
	for i < len(repl) {
		tok := repl[i]

		switch {
		case tok.Op == '#' && i+1 < len(repl) && repl[i+1].Op == '#':
			if i+2 >= len(repl) {
				return nil, errInvalid(invocation, macro.Name, "unexpected newline")
			}
			if err := pasteInto(out, macro, argGroups, invocation, repl[i+2]); err != nil {
				return nil, err
			}
			i += 3

		case tok.Op == '#' && i+1 < len(repl) && repl[i+1].Name && macro.ParamIndex(repl[i+1].Str()) >= 0:
			arg := argForParam(macro, argGroups, macro.ParamIndex(repl[i+1].Str()))
			text := stringizeArg(arg)
			newTok := cpptoken.NewToken(text, tok.Location)
			newTok.SetExpandedFrom(invocation, macro.Name)
			out.PushBack(newTok)
			i += 2

		case tok.Name && macro.ParamIndex(tok.Str()) >= 0:
			idx := macro.ParamIndex(tok.Str())
			arg := argForParam(macro, argGroups, idx)
			expandedArg := ExpandSequence(files, arg, macros, ctx)
			for a := expandedArg.Front(); a != nil; a = a.Next {
				clone := a.Clone()
				clone.SetExpandedFrom(invocation, macro.Name)
				out.PushBack(clone)
			}
			i++

		default:
			clone := tok.Clone()
			clone.SetExpandedFrom(invocation, macro.Name)
			out.PushBack(clone)
			i++
		}
	}

	// An identifier copied verbatim from the replacement list (not a
	// parameter substitution) may itself name another macro; rescan the
	// produced output so nested macro references expand too. Tokens
	// already carry this macro's name in their origin set, so self-
	// reference and mutually-recursive chains stop via no-rescan hygiene.
	if err := RescanList(out, macros, ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// pasteInto implements "A ## B": left is out's current last token (already
// produced by substituteReplacement), right is the raw (not yet expanded)
// replacement-list token following "##".
func pasteInto(out *cpptoken.TokenList, macro *Macro, argGroups [][]*cpptoken.Token, invocation *cpptoken.Token, right *cpptoken.Token) error {
	left := out.Back()
	if left == nil {
		return errInvalid(invocation, macro.Name, "missing first argument to ##")
	}

	canEqual := left.IsOneOf("+-*/%&|^") || left.Str() == "<<" || left.Str() == ">>"
	if !left.Name && !left.Number && left.Op != ',' && left.Str() != "" && !canEqual &&
		!isStringOrCharLiteral(left.Str()) {
		return errInvalid(invocation, macro.Name, "unexpected token '"+left.Str()+"'")
	}

	var rightRaw []*cpptoken.Token
	isParam := false
	if right.Name {
		if idx := macro.ParamIndex(right.Str()); idx >= 0 {
			isParam = true
			rightRaw = argForParam(macro, argGroups, idx)
		}
	}
	if !isParam {
		rightRaw = []*cpptoken.Token{right}
	}

	isVarargsParam := right.Name && macro.IsVariadic && right.Str() == VariadicParam
	if isVarargsParam && left.Str() == "," {
		// The ",##__VA_ARGS__" GNU extension: an empty variadic argument
		// swallows the preceding comma, a non-empty one leaves the comma
		// and the argument tokens untouched rather than pasting them.
		if len(rightRaw) == 0 {
			out.DeleteToken(left)
			return nil
		}
		for _, rest := range rightRaw {
			clone := rest.Clone()
			clone.SetExpandedFrom(invocation, macro.Name)
			out.PushBack(clone)
		}
		return nil
	}

	if len(rightRaw) == 0 {
		return nil
	}
	first := rightRaw[0]
	if !first.Name && !first.Number && first.Op != 0 && !first.IsOneOf("#=") {
		return errInvalid(invocation, macro.Name, "unexpected token '"+first.Str()+"'")
	}

	strAB := left.Str() + first.Str()
	if left.Previous != nil && left.Previous.Str() == "\\" {
		if strings.HasPrefix(strAB, "u") && len(strAB) == 5 {
			return errInvalid(invocation, macro.Name, "concatenation forms universal character name '\\"+strAB+"'")
		}
		if strings.HasPrefix(strAB, "U") && len(strAB) == 9 {
			return errInvalid(invocation, macro.Name, "concatenation forms universal character name '\\"+strAB+"'")
		}
	}
	left.SetText(strAB)
	left.SetExpandedFrom(invocation, macro.Name)

	for _, rest := range rightRaw[1:] {
		clone := rest.Clone()
		clone.SetExpandedFrom(invocation, macro.Name)
		out.PushBack(clone)
	}
	return nil
}

func isStringOrCharLiteral(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '"', '\'':
		return true
	}
	return len(s) > 1 && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') &&
		(s[0] == 'u' || s[0] == 'U' || s[0] == 'L')
}

// stringizeArg renders raw argument tokens as the quoted string literal
// produced by "#param", preserving the original inter-token whitespace and
// escaping backslashes and quotes.
func stringizeArg(tokens []*cpptoken.Token) string {
	var body strings.Builder
	for i, tok := range tokens {
		if i > 0 && tok.WhitespaceAhead {
			body.WriteByte(' ')
		}
		body.WriteString(tok.Str())
	}
	return `"` + escapeString(body.String()) + `"`
}

func escapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '"':
			b.WriteByte('\\')
			b.WriteByte(s[i])
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func errInvalid(invocation *cpptoken.Token, macroName, msg string) error {
	if macroName == "" {
		macroName = invocation.Str()
	}
	return &ErrInvalidHashHash{Macro: macroName, Message: msg}
}

// ExpandSequence fully macro-expands a standalone, self-contained token
// slice (a macro argument, or a #if/#include directive body) and returns
// the result as a fresh TokenList. Unlike the driver's main loop it has no
// visibility into tokens outside raw, so a function-like macro name at the
// very end of raw with its "(" call elsewhere is left unexpanded.
func ExpandSequence(files *cpptoken.FileTable, raw []*cpptoken.Token, macros *Map, ctx *Context) *cpptoken.TokenList {
	list := cpptoken.NewTokenList(files)
	for _, t := range raw {
		list.PushBack(t.Clone())
	}
	RescanList(list, macros, ctx)
	return list
}

// RescanList walks list in place, expanding every identifier that names a
// macro (and isn't excluded by its own no-reexpansion set) by splicing the
// expansion in place of the identifier, then continuing the scan from the
// first newly spliced token so nested expansions are picked up.
func RescanList(list *cpptoken.TokenList, macros *Map, ctx *Context) error {
	tok := list.Front()
	for tok != nil {
		if !tok.Name || tok.Comment || tok.IsExpandedFrom(tok.Str()) || !macros.Has(tok.Str()) {
			tok = tok.Next
			continue
		}
		out, next, expanded, err := Expand(list.Files, tok, macros, ctx)
		if err != nil {
			return err
		}
		if !expanded {
			tok = tok.Next
			continue
		}
		resume := out.Front()
		spliceReplace(list, tok, next, out)
		if resume != nil {
			tok = resume
		} else {
			tok = next
		}
	}
	return nil
}

// spliceReplace removes the tokens [from, upto) from list and inserts
// replacement's tokens in their place.
func spliceReplace(list *cpptoken.TokenList, from, upto *cpptoken.Token, replacement *cpptoken.TokenList) {
	mark := upto
	t := from
	for t != nil && t != upto {
		next := t.Next
		list.DeleteToken(t)
		t = next
	}
	if replacement.Empty() {
		return
	}
	if mark == nil {
		list.TakeTokens(replacement)
		return
	}
	for r := replacement.Front(); r != nil; {
		next := r.Next
		replacement.DeleteToken(r)
		list.InsertBefore(mark, r)
		r = next
	}
}
