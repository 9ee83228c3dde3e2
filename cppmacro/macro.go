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

// Package cppmacro implements macro definitions, the macro map, and the
// substitution rules (stringize, paste, parameter substitution, rescan
// hygiene, predefined names) that drive #define/#undef and identifier
// expansion.
package cppmacro

import (
	"github.com/pkg/errors"

	"github.com/cppscan/simplecpp/cpptoken"
)

// VariadicParam is the conceptual name bound to the trailing "..." of a
// variadic macro's parameter list.
const VariadicParam = "__VA_ARGS__"

// Macro is a single #define (or command-line -D) entry.
type Macro struct {
	Name           string
	IsFunctionLike bool
	IsVariadic     bool
	Parameters     []string
	Replacement    *cpptoken.TokenList
	DefinedInCode  bool
	DefineLocation cpptoken.Location

	Usages []Usage

	// dynamic, when set, computes this macro's expansion at use time
	// instead of substituting Replacement (__FILE__, __LINE__, __COUNTER__).
	dynamic func(invocation *cpptoken.Token, ctx *Context) string
}

// Usage records a single expansion site, for the optional macro-usage log.
type Usage struct {
	DefineLocation cpptoken.Location
	UseLocation    cpptoken.Location
	ValueKnown     bool
}

// ErrWrongArity is returned by Expand when a function-like invocation's
// argument count does not match the macro's declared parameters.
var ErrWrongArity = errors.New("wrong number of macro arguments")

// ErrInvalidHashHash reports a malformed "##" operand per the contract in
// the engine's token-pasting rules.
type ErrInvalidHashHash struct {
	Macro   string
	Message string
}

func (e *ErrInvalidHashHash) Error() string {
	return "invalid ## in macro " + e.Macro + ": " + e.Message
}

// ParseDefine parses a macro definition from the remainder of a #define
// line: nameTok is the macro name token; the function-like parameter list,
// when present, starts immediately (no whitespace) with "(" after nameTok.
// The replacement list runs to the end of the source line.
func ParseDefine(files *cpptoken.FileTable, nameTok *cpptoken.Token) (*Macro, error) {
	m := &Macro{Name: nameTok.Str(), DefinedInCode: true, DefineLocation: nameTok.Location}

	tok := nameTok.Next
	if tok != nil && tok.Op == '(' && !tok.WhitespaceAhead && nameTok.Location.SameLine(tok.Location) {
		m.IsFunctionLike = true
		tok = tok.Next
		for tok != nil && tok.Op != ')' {
			switch {
			case tok.Op == ',':
				tok = tok.Next
				continue
			case tok.Str() == "...":
				m.IsVariadic = true
				m.Parameters = append(m.Parameters, VariadicParam)
				tok = tok.Next
			case tok.Name:
				m.Parameters = append(m.Parameters, tok.Str())
				tok = tok.Next
			default:
				return nil, errors.Errorf("macro %s: unexpected token %q in parameter list", m.Name, tok.Str())
			}
		}
		if tok == nil {
			return nil, errors.Errorf("macro %s: missing ')' in parameter list", m.Name)
		}
		tok = tok.Next
	}

	m.Replacement = cpptoken.NewTokenList(files)
	for tok != nil && tok.Location.SameLine(nameTok.Location) {
		m.Replacement.PushBack(tok.Clone())
		tok = tok.Next
	}
	return m, nil
}

// ParamIndex returns the index of name within m.Parameters, or -1.
func (m *Macro) ParamIndex(name string) int {
	for i, p := range m.Parameters {
		if p == name {
			return i
		}
	}
	return -1
}

// MinArgs is the number of named (non-variadic) parameters.
func (m *Macro) MinArgs() int {
	if m.IsVariadic {
		return len(m.Parameters) - 1
	}
	return len(m.Parameters)
}
