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

package cppeval

import (
	"strconv"
	"strings"

	"github.com/cppscan/simplecpp/cpptoken"
)

// DefaultSizeOf is the table of built-in type sizes (in bytes) consulted
// by the "sizeof(T)" preparation pass; hosts that model a different target
// can substitute their own map with the same key shape.
var DefaultSizeOf = map[string]int64{
	"char": 1, "short": 2, "int": 4, "long": 8, "long long": 8,
	"float": 4, "double": 8, "long double": 16,
	"char *": 8, "short *": 8, "int *": 8, "long *": 8,
	"long long *": 8, "float *": 8, "double *": 8, "long double *": 8,
}

// altOperatorSpellings maps the identifier-spelled alternative operators to
// the symbolic operator text ConstFold's precedence tiers match on, so they
// fold the same as "&&", "||", "&", and so on instead of falling through the
// "undefined identifiers become 0" preparation pass.
var altOperatorSpellings = map[string]string{
	"and":    "&&",
	"or":     "||",
	"bitand": "&",
	"bitor":  "|",
	"compl":  "~",
	"not":    "!",
	"xor":    "^",
	"not_eq": "!=",
	"and_eq": "&=",
	"or_eq":  "|=",
	"xor_eq": "^=",
}

// HasIncludeFunc resolves a __has_include(<h>) / __has_include("h") query.
type HasIncludeFunc func(header string, systemHeader bool) bool

// Evaluate runs the preparation passes and constant folding described for
// #if/#elif expressions over tokens (which is consumed/mutated in place)
// and returns the resulting int64. A final result that isn't a single
// number evaluates to 0, matching preprocessor "undefined behavior treated
// as false" conventions.
func Evaluate(tokens *cpptoken.TokenList, sizeOfType map[string]int64, hasInclude HasIncludeFunc) (int64, error) {
	if sizeOfType == nil {
		sizeOfType = DefaultSizeOf
	}

	tokens.RemoveComments()
	if err := replaceSizeof(tokens, sizeOfType); err != nil {
		return 0, err
	}
	if err := replaceHasInclude(tokens, hasInclude); err != nil {
		return 0, err
	}
	replaceUndefinedIdentifiers(tokens)
	if err := convertCharacterLiterals(tokens); err != nil {
		return 0, err
	}
	normalizeNumericLiterals(tokens)

	if err := tokens.ConstFold(); err != nil {
		return 0, err
	}
	if tokens.Front() == nil || tokens.Front() != tokens.Back() || !tokens.Front().Number {
		return 0, nil
	}
	return parseFoldedInt(tokens.Front().Str()), nil
}

// replaceSizeof rewrites every "sizeof(T)" (or "sizeof(T*)"/"sizeof T") with
// its integer size from sizeOfType; unrecognized operands are left as-is,
// per §4.H.
func replaceSizeof(tokens *cpptoken.TokenList, sizeOfType map[string]int64) error {
	tok := tokens.Front()
	for tok != nil {
		next := tok.Next
		if tok.Name && tok.Str() == "sizeof" {
			start := tok.Next
			hasParen := start != nil && start.Op == '('
			first := start
			if hasParen {
				first = start.Next
			}
			typeName, end := readTypeName(first)
			if typeName != "" {
				if sz, ok := sizeOfType[typeName]; ok {
					closing := end
					if hasParen {
						if closing == nil || closing.Op != ')' {
							tok = next
							continue
						}
						next = closing.Next
					} else {
						next = end
					}
					tok.SetText(strconv.FormatInt(sz, 10))
					t := tok.Next
					for t != nil && t != next {
						n := t.Next
						tokens.DeleteToken(t)
						t = n
					}
				}
			}
		}
		tok = next
	}
	return nil
}

// readTypeName greedily consumes a run of type-keyword identifiers
// (optionally followed by "*") starting at tok, returning the canonical
// "word word *" spelling used as a DefaultSizeOf key.
func readTypeName(tok *cpptoken.Token) (string, *cpptoken.Token) {
	var words []string
	t := tok
	for t != nil && t.Name && isTypeKeyword(t.Str()) {
		words = append(words, t.Str())
		t = t.Next
	}
	if len(words) == 0 {
		return "", tok
	}
	if t != nil && t.Op == '*' {
		words = append(words, "*")
		t = t.Next
	}
	return strings.Join(words, " "), t
}

func isTypeKeyword(s string) bool {
	switch s {
	case "char", "short", "int", "long", "float", "double", "signed", "unsigned":
		return true
	}
	return false
}

// replaceHasInclude rewrites "__has_include(<h>)" / "__has_include(\"h\")"
// with "1" or "0".
func replaceHasInclude(tokens *cpptoken.TokenList, hasInclude HasIncludeFunc) error {
	tok := tokens.Front()
	for tok != nil {
		next := tok.Next
		if tok.Name && tok.Str() == "__has_include" && tok.Next != nil && tok.Next.Op == '(' {
			open := tok.Next
			header, systemHeader, closing, err := readHasIncludeArg(open)
			if err != nil {
				return err
			}
			result := false
			if hasInclude != nil {
				result = hasInclude(header, systemHeader)
			}
			value := "0"
			if result {
				value = "1"
			}
			tok.SetText(value)
			next = closing.Next
			t := tok.Next
			for t != nil && t != next {
				n := t.Next
				tokens.DeleteToken(t)
				t = n
			}
		}
		tok = next
	}
	return nil
}

func readHasIncludeArg(open *cpptoken.Token) (header string, systemHeader bool, closing *cpptoken.Token, err error) {
	arg := open.Next
	if arg == nil {
		return "", false, nil, errMalformedHasInclude()
	}
	if arg.StartsWithOneOf("\"") {
		closing = arg.Next
		if closing == nil || closing.Op != ')' {
			return "", false, nil, errMalformedHasInclude()
		}
		return strings.Trim(arg.Str(), "\""), false, closing, nil
	}
	if arg.Op == '<' {
		var name strings.Builder
		t := arg.Next
		for t != nil && t.Op != '>' {
			name.WriteString(t.Str())
			t = t.Next
		}
		if t == nil || t.Next == nil || t.Next.Op != ')' {
			return "", false, nil, errMalformedHasInclude()
		}
		return name.String(), true, t.Next, nil
	}
	return "", false, nil, errMalformedHasInclude()
}

func errMalformedHasInclude() error {
	return &malformedError{"malformed __has_include expression"}
}

type malformedError struct{ msg string }

func (e *malformedError) Error() string { return e.msg }

// replaceUndefinedIdentifiers substitutes "0" for every remaining
// identifier token, first translating alternative-operator spellings (and,
// or, bitand, ...) to their symbolic operator so ConstFold folds them like
// any other operator instead of treating them as undefined names.
func replaceUndefinedIdentifiers(tokens *cpptoken.TokenList) {
	for tok := tokens.Front(); tok != nil; tok = tok.Next {
		if !tok.Name {
			continue
		}
		if sym, ok := altOperatorSpellings[tok.Str()]; ok {
			tok.SetText(sym)
			continue
		}
		tok.SetText("0")
	}
}

// convertCharacterLiterals rewrites every character-literal token to its
// decimal integer value.
func convertCharacterLiterals(tokens *cpptoken.TokenList) error {
	for tok := tokens.Front(); tok != nil; tok = tok.Next {
		if !isCharLiteralText(tok.Str()) {
			continue
		}
		v, err := CharacterLiteralToInt64(tok.Str())
		if err != nil {
			return err
		}
		tok.SetText(strconv.FormatInt(v, 10))
	}
	return nil
}

func isCharLiteralText(s string) bool {
	return strings.HasSuffix(s, "'") && strings.Contains(s, "'") && strings.IndexByte(s, '\'') != strings.LastIndexByte(s, '\'')
}

// normalizeNumericLiterals strips digit separators (') and the
// unsigned/long suffixes so ConstFold's parser accepts the token.
// Hexadecimal and octal literals keep their prefixed text; the integer
// parser reads the base from the prefix.
func normalizeNumericLiterals(tokens *cpptoken.TokenList) {
	for tok := tokens.Front(); tok != nil; tok = tok.Next {
		if !tok.Number {
			continue
		}
		s := strings.ReplaceAll(tok.Str(), "'", "")
		s = strings.TrimRightFunc(s, func(r rune) bool {
			return r == 'u' || r == 'U' || r == 'l' || r == 'L'
		})
		tok.SetText(s)
	}
}

func parseFoldedInt(s string) int64 {
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return r == 'u' || r == 'U' || r == 'l' || r == 'L'
	})
	v, _ := strconv.ParseInt(s, 0, 64)
	return v
}
