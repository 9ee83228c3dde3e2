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

package simplecpp

import (
	"strings"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cppdui"
	"github.com/cppscan/simplecpp/cppeval"
	"github.com/cppscan/simplecpp/cppinclude"
	"github.com/cppscan/simplecpp/cppmacro"
	"github.com/cppscan/simplecpp/cpptoken"
	"github.com/cppscan/simplecpp/internal/collections"
)

// resumePoint is a suspended raw token cursor: the file it was reading from
// (so sameIdentity/pragmaOnce bookkeeping stays file-scoped) and the next
// token to resume at once the included file is exhausted.
type resumePoint struct {
	canonical string
	tok       *cpptoken.Token
}

// driver holds all state for a single translation-unit pass: the macro map,
// the #if stack, the include-suspension stack and the output being built.
// A driver is single-use; build one per Preprocess call.
type driver struct {
	files   *cpptoken.FileTable
	cache   *cppinclude.FileCache
	resolve *cppinclude.Resolver
	macros  *cppmacro.Map
	ctx     *cppmacro.Context
	diag    *cppdiag.List
	dui     *cppdui.DUI

	ifStack     []IfState
	pragmaOnce  collections.Set[string]
	includes    []resumePoint
	curFile     string

	output      *cpptoken.TokenList
	macroUsages []MacroUsage
	ifConds     []IfCond

	stopped bool
}

func newDriver(files *cpptoken.FileTable, cache *cppinclude.FileCache, resolver *cppinclude.Resolver, macros *cppmacro.Map, ctx *cppmacro.Context, dui *cppdui.DUI, diag *cppdiag.List) *driver {
	return &driver{
		files:      files,
		cache:      cache,
		resolve:    resolver,
		macros:     macros,
		ctx:        ctx,
		diag:       diag,
		dui:        dui,
		ifStack:    []IfState{True},
		pragmaOnce: make(collections.Set[string]),
		output:     cpptoken.NewTokenList(files),
	}
}

func (d *driver) topState() IfState { return d.ifStack[len(d.ifStack)-1] }

// run processes one file's raw token list starting at tok (front of the
// file's cached TokenList, or a previously-saved resume point), following
// #include transitions via d.includes until both this file and the
// suspension stack are exhausted.
func (d *driver) run(canonical string, tok *cpptoken.Token) error {
	d.curFile = canonical
	for {
		if d.stopped {
			return nil
		}
		if tok == nil {
			if len(d.includes) == 0 {
				return nil
			}
			top := d.includes[len(d.includes)-1]
			d.includes = d.includes[:len(d.includes)-1]
			d.curFile = top.canonical
			tok = top.tok
			continue
		}

		if d.isDirectiveStart(tok) {
			next, err := d.handleDirective(tok)
			if err != nil {
				return err
			}
			tok = next
			continue
		}

		if d.topState() != True || tok.Comment {
			tok = tok.Next
			continue
		}

		if tok.Name && !tok.IsExpandedFrom(tok.Str()) && d.macros.Has(tok.Str()) {
			out, next, expanded, err := cppmacro.Expand(d.files, tok, d.macros, d.ctx)
			if err != nil {
				d.diag.Add(cppdiag.SyntaxError, tok.Location, err.Error())
				tok = tok.Next
				continue
			}
			if expanded {
				if m := d.macros.Find(tok.Str()); m != nil {
					d.recordUsage(m, tok)
				}
				for o := out.Front(); o != nil; {
					n := o.Next
					out.DeleteToken(o)
					d.output.PushBack(o)
					o = n
				}
				tok = next
				continue
			}
		}

		clone := tok.Clone()
		d.output.PushBack(clone)
		tok = tok.Next
	}
}

func (d *driver) recordUsage(m *cppmacro.Macro, use *cpptoken.Token) {
	if len(m.Usages) == 0 {
		return
	}
	u := m.Usages[len(m.Usages)-1]
	d.macroUsages = append(d.macroUsages, MacroUsage{
		Name:           m.Name,
		DefineLocation: u.DefineLocation,
		UseLocation:    u.UseLocation,
		ValueKnown:     u.ValueKnown,
	})
}

// isDirectiveStart reports whether tok is the "#" that opens a preprocessing
// directive: it must be the first token on its line (its previous non-
// comment token, if any, is on a different line).
func (d *driver) isDirectiveStart(tok *cpptoken.Token) bool {
	if tok.Op != '#' {
		return false
	}
	prev := tok.PreviousSkipComments()
	return prev == nil || !prev.Location.SameLine(tok.Location)
}

// handleDirective dispatches on the directive word following the leading
// "#" and returns the token to resume the raw cursor at.
func (d *driver) handleDirective(hash *cpptoken.Token) (*cpptoken.Token, error) {
	word := hash.NextSkipComments()
	lineEnd := endOfLine(hash)

	if word == nil || !word.Location.SameLine(hash.Location) {
		// A lone "#" on its own line is a null directive; ignore it.
		return lineEnd, nil
	}

	switch word.Str() {
	case "define":
		if d.topState() == True {
			d.doDefine(word)
		}
	case "undef":
		if d.topState() == True {
			if name := word.NextSkipComments(); name != nil && name.Location.SameLine(hash.Location) {
				d.macros.Erase(name.Str())
			}
		}
	case "include", "include_next":
		if d.topState() == True {
			return d.doInclude(hash, word, lineEnd)
		}
	case "if":
		d.doIf(body(word.NextSkipComments(), lineEnd))
	case "ifdef":
		d.doIfdefLike(word, lineEnd, true)
	case "ifndef":
		d.doIfdefLike(word, lineEnd, false)
	case "elif":
		d.doElif(body(word.NextSkipComments(), lineEnd))
	case "else":
		d.doElse()
	case "endif":
		d.doEndif()
	case "error":
		if d.topState() == True {
			d.diag.Add(cppdiag.Error, hash.Location, directiveText(word.NextSkipComments(), lineEnd))
			d.stopped = true
			d.output.Clear()
		}
	case "warning":
		if d.topState() == True {
			d.diag.Add(cppdiag.Warning, hash.Location, directiveText(word.NextSkipComments(), lineEnd))
		}
	case "pragma":
		if d.topState() == True {
			d.doPragma(word.NextSkipComments(), lineEnd)
		}
	default:
		// Unknown directives (e.g. "#line", vendor extensions) are silently
		// consumed: they are real directives, not ordinary tokens, and must
		// not leak into the output translation unit.
	}
	return lineEnd, nil
}

// endOfLine returns the first token after hash's line, or nil at EOF.
func endOfLine(hash *cpptoken.Token) *cpptoken.Token {
	t := hash.Next
	for t != nil && t.Location.SameLine(hash.Location) {
		t = t.Next
	}
	return t
}

// body collects the raw tokens from start (inclusive) up to but excluding
// stop into a slice, skipping comments.
func body(start, stop *cpptoken.Token) []*cpptoken.Token {
	var out []*cpptoken.Token
	for t := start; t != nil && t != stop; t = t.Next {
		if !t.Comment {
			out = append(out, t)
		}
	}
	return out
}

func directiveText(start, stop *cpptoken.Token) string {
	var b strings.Builder
	for i, t := range body(start, stop) {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(t.Str())
	}
	return b.String()
}

func (d *driver) doDefine(nameTok *cpptoken.Token) {
	m, err := cppmacro.ParseDefine(d.files, nameTok)
	if err != nil {
		d.diag.Add(cppdiag.SyntaxError, nameTok.Location, err.Error())
		return
	}
	if d.dui != nil && d.dui.Undefined[m.Name] {
		return
	}
	d.macros.Insert(m)
}

// doInclude resolves and splices in an #include'd file. Returning the
// included file's first token makes the caller's loop resume reading from
// it; the current position is pushed onto d.includes so it resumes there
// once the included file is exhausted.
func (d *driver) doInclude(hash, word, lineEnd *cpptoken.Token) (*cpptoken.Token, error) {
	headerTok := word.NextSkipComments()
	if headerTok == nil || !headerTok.Location.SameLine(hash.Location) {
		d.diag.Add(cppdiag.SyntaxError, hash.Location, "missing header in #include")
		return lineEnd, nil
	}

	header, systemHeader, ok := parseHeaderReference(d.files, headerTok, lineEnd, d.macros, d.ctx)
	if !ok {
		d.diag.Add(cppdiag.SyntaxError, hash.Location, "malformed #include")
		return lineEnd, nil
	}

	if len(d.includes)+1 > maxIncludeDepth {
		d.diag.Add(cppdiag.IncludeNestedTooDeeply, hash.Location, "#include nested too deeply")
		return lineEnd, nil
	}

	data, _, err := d.cache.Get(d.curFile, header, systemHeader, d.diag)
	if err != nil || data == nil {
		d.diag.Add(cppdiag.MissingHeader, hash.Location, "cannot find "+header)
		return lineEnd, nil
	}
	if d.pragmaOnce.Contains(data.CanonicalPath) {
		return lineEnd, nil
	}

	d.includes = append(d.includes, resumePoint{canonical: d.curFile, tok: lineEnd})
	d.curFile = data.CanonicalPath
	return data.Tokens.Front(), nil
}

// parseHeaderReference extracts the header name from the tokens of an
// #include directive body, macro-expanding first when the first token isn't
// already a literal "<...>" or "\"...\"" spelling.
func parseHeaderReference(files *cpptoken.FileTable, start, stop *cpptoken.Token, macros *cppmacro.Map, ctx *cppmacro.Context) (header string, systemHeader, ok bool) {
	if start.Op == '<' {
		var name strings.Builder
		t := start.Next
		for t != nil && t != stop && t.Op != '>' {
			name.WriteString(t.Str())
			t = t.Next
		}
		if t == nil || t == stop {
			return "", false, false
		}
		return name.String(), true, true
	}
	if strings.HasPrefix(start.Str(), "\"") && strings.HasSuffix(start.Str(), "\"") && len(start.Str()) >= 2 {
		return strings.Trim(start.Str(), "\""), false, true
	}

	raw := body(start, stop)
	expanded := cppmacro.ExpandSequence(files, raw, macros, ctx)
	first := expanded.Front()
	if first == nil {
		return "", false, false
	}
	if first.Op == '<' {
		var name strings.Builder
		for t := first.Next; t != nil; t = t.Next {
			if t.Op == '>' {
				return name.String(), true, true
			}
			name.WriteString(t.Str())
		}
		return "", false, false
	}
	if strings.HasPrefix(first.Str(), "\"") {
		return strings.Trim(first.Str(), "\""), false, true
	}
	return "", false, false
}

// doPragma handles "#pragma once" and silently drops every other pragma,
// matching the supplemented "unrecognized #pragma" behavior: such lines are
// real directives and must not leak into the output as ordinary tokens.
func (d *driver) doPragma(nameTok, lineEnd *cpptoken.Token) {
	if nameTok != nil && nameTok.Str() == "once" {
		d.pragmaOnce.Add(d.curFile)
	}
}

func (d *driver) doIfdefLike(word, lineEnd *cpptoken.Token, wantDefined bool) {
	nameTok := word.NextSkipComments()
	defined := nameTok != nil && (d.macros.Has(nameTok.Str()) || (d.dui != nil && d.dui.HasIncludeEnabled() && nameTok.Str() == "__has_include"))
	cond := defined == wantDefined
	d.pushIf(cond)
}

func (d *driver) doIf(tokens []*cpptoken.Token) {
	result, expr := d.evalCondition(tokens)
	d.ifConds = append(d.ifConds, IfCond{Result: result, PreprocessedExpression: expr})
	d.pushIf(result != 0)
}

func (d *driver) pushIf(cond bool) {
	switch {
	case d.topState() == True && cond:
		d.ifStack = append(d.ifStack, True)
	case d.topState() == True && !cond:
		d.ifStack = append(d.ifStack, ElseIsTrue)
	default:
		d.ifStack = append(d.ifStack, AlwaysFalse)
	}
}

func (d *driver) doElif(tokens []*cpptoken.Token) {
	if len(d.ifStack) == 0 {
		return
	}
	top := d.topState()
	switch top {
	case True:
		d.ifStack[len(d.ifStack)-1] = AlwaysFalse
	case ElseIsTrue:
		result, expr := d.evalCondition(tokens)
		d.ifConds = append(d.ifConds, IfCond{Result: result, PreprocessedExpression: expr})
		if result != 0 {
			d.ifStack[len(d.ifStack)-1] = True
		}
	}
}

func (d *driver) doElse() {
	if len(d.ifStack) == 0 {
		return
	}
	switch d.topState() {
	case True:
		d.ifStack[len(d.ifStack)-1] = AlwaysFalse
	case ElseIsTrue:
		d.ifStack[len(d.ifStack)-1] = True
	}
}

func (d *driver) doEndif() {
	if len(d.ifStack) > 1 {
		d.ifStack = d.ifStack[:len(d.ifStack)-1]
	}
}

// evalCondition macro-expands, rewrites defined()/__has_include() and
// constant-folds one #if/#elif's directive-body tokens.
func (d *driver) evalCondition(raw []*cpptoken.Token) (int64, string) {
	list := cpptoken.NewTokenList(d.files)
	for _, t := range raw {
		list.PushBack(t.Clone())
	}
	d.rewriteDefined(list)

	expanded := cpptoken.NewTokenList(d.files)
	tok := list.Front()
	for tok != nil {
		if tok.Name && !tok.IsExpandedFrom(tok.Str()) && d.macros.Has(tok.Str()) {
			out, next, ok, err := cppmacro.Expand(d.files, tok, d.macros, d.ctx)
			if err == nil && ok {
				for o := out.Front(); o != nil; o = o.Next {
					expanded.PushBack(o.Clone())
				}
				tok = next
				continue
			}
		}
		expanded.PushBack(tok.Clone())
		tok = tok.Next
	}

	expr := expanded.Stringify()
	result, err := cppeval.Evaluate(expanded, nil, d.hasInclude)
	if err != nil {
		d.diag.Add(cppdiag.SyntaxError, firstLoc(raw), err.Error())
		return 0, expr
	}
	return result, expr
}

// rewriteDefined replaces "defined X" and "defined ( X )" with "1"/"0" in
// place, ahead of macro expansion, per the directive-body preparation rule.
func (d *driver) rewriteDefined(list *cpptoken.TokenList) {
	tok := list.Front()
	for tok != nil {
		if !(tok.Name && tok.Str() == "defined") {
			tok = tok.Next
			continue
		}
		start := tok
		next := tok.Next
		var nameTok *cpptoken.Token
		var after *cpptoken.Token
		if next != nil && next.Op == '(' {
			nameTok = next.Next
			if nameTok != nil && nameTok.Next != nil && nameTok.Next.Op == ')' {
				after = nameTok.Next.Next
			}
		} else if next != nil {
			nameTok = next
			after = next.Next
		}
		if nameTok == nil {
			tok = tok.Next
			continue
		}
		defined := d.macros.Has(nameTok.Str())
		value := "0"
		if defined {
			value = "1"
		}
		start.SetText(value)
		t := start.Next
		for t != nil && t != after {
			n := t.Next
			list.DeleteToken(t)
			t = n
		}
		tok = after
	}
}

func (d *driver) hasInclude(header string, systemHeader bool) bool {
	return d.resolve.Resolve(d.curFile, header, systemHeader) != ""
}

func firstLoc(toks []*cpptoken.Token) cpptoken.Location {
	if len(toks) == 0 {
		return cpptoken.Location{}
	}
	return toks[0].Location
}
