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
	"testing"

	"github.com/stretchr/testify/assert"
)

// buildList tokenizes s by hand into single-character operator tokens at
// adjacent columns on one line, mimicking what the raw reader would hand to
// CombineOperators before any multi-character fusion happens.
func buildList(files *FileTable, fileIdx FileIndex, s string) *TokenList {
	list := NewTokenList(files)
	loc := NewLocation(files, fileIdx)
	i := 0
	for i < len(s) {
		if s[i] == ' ' {
			i++
			loc.Col++
			continue
		}
		tok := NewToken(string(s[i]), loc)
		list.PushBack(tok)
		loc.Col++
		i++
	}
	return list
}

func TestCombineOperators(t *testing.T) {
	testCases := []struct {
		input    string
		expected []string
	}{
		{"a && b", []string{"a", "&&", "b"}},
		{"a || b", []string{"a", "||", "b"}},
		{"a -> b", []string{"a", "->", "b"}},
		{"a << b", []string{"a", "<<", "b"}},
		{"a <<= b", []string{"a", "<<=", "b"}},
		{"a += b", []string{"a", "+=", "b"}},
		{"a == b", []string{"a", "==", "b"}},
		{"a::b", []string{"a", "::", "b"}},
		{"a...b", []string{"a", "...", "b"}},
		{"1+ +2", []string{"1", "+", "+", "2"}},
	}

	for _, tc := range testCases {
		files := NewFileTable()
		idx := files.Intern("t.cpp")
		list := buildList(files, idx, tc.input)
		list.CombineOperators()

		var got []string
		for tok := list.Front(); tok != nil; tok = tok.Next {
			got = append(got, tok.Str())
		}
		assert.Equal(t, tc.expected, got, "input %q", tc.input)
	}
}

// buildWordList builds a token list from whitespace-separated atoms,
// mimicking identifiers, numbers and single-char operators sitting at
// exactly adjacent columns, the way cpplex hands them to CombineOperators.
func buildWordList(files *FileTable, fileIdx FileIndex, atoms ...string) *TokenList {
	list := NewTokenList(files)
	loc := NewLocation(files, fileIdx)
	for _, a := range atoms {
		list.PushBack(NewToken(a, loc))
		loc.Col += len(a)
	}
	return list
}

func tokenStrs(list *TokenList) []string {
	var got []string
	for tok := list.Front(); tok != nil; tok = tok.Next {
		got = append(got, tok.Str())
	}
	return got
}

func TestCombineOperatorsRefParamDefaultDoesNotFuseAmpEquals(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	// void foo(T & = default);
	list := buildWordList(files, idx, "foo", "(", "T", "&", "=", "default", ")")
	list.CombineOperators()

	assert.Equal(t, []string{"foo", "(", "T", "&", "=", "default", ")"}, tokenStrs(list))
}

func TestCombineOperatorsDeclarationRefRefStillFuses(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	// a && b, not inside a parameter list, must still fuse to "&&".
	list := buildWordList(files, idx, "a", "&", "&", "b")
	list.CombineOperators()

	assert.Equal(t, []string{"a", "&&", "b"}, tokenStrs(list))
}

func TestCombineOperatorsIdempotent(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	list := buildList(files, idx, "a <<= b && c -> d")
	list.CombineOperators()

	var first []string
	for tok := list.Front(); tok != nil; tok = tok.Next {
		first = append(first, tok.Str())
	}

	list.CombineOperators()

	var second []string
	for tok := list.Front(); tok != nil; tok = tok.Next {
		second = append(second, tok.Str())
	}

	assert.Equal(t, first, second)
}

func TestTokenListPushBackAndDelete(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	list := NewTokenList(files)

	a := NewToken("a", NewLocation(files, idx))
	b := NewToken("b", NewLocation(files, idx))
	c := NewToken("c", NewLocation(files, idx))
	list.PushBack(a)
	list.PushBack(b)
	list.PushBack(c)
	assert.Equal(t, 3, list.Len())

	list.DeleteToken(b)
	assert.Equal(t, 2, list.Len())
	assert.Same(t, c, a.Next)
	assert.Same(t, a, c.Previous)
	assert.Same(t, a, list.Front())
	assert.Same(t, c, list.Back())
}

func TestTokenListStringifyTracksLinesAndSpacing(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	list := NewTokenList(files)

	loc1 := Location{Files: files, FileIdx: idx, Line: 1, Col: 1}
	loc1b := Location{Files: files, FileIdx: idx, Line: 1, Col: 3}
	loc2 := Location{Files: files, FileIdx: idx, Line: 2, Col: 1}

	list.PushBack(NewToken("int", loc1))
	list.PushBack(NewToken("x", loc1b))
	list.PushBack(NewToken("y", loc2))

	got := list.Stringify()
	assert.Equal(t, "\nint x\ny", got)
}

func TestTokenListLastLine(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	list := NewTokenList(files)
	loc := NewLocation(files, idx)

	for _, s := range []string{"#", "include", "<", "foo.h", ">"} {
		list.PushBack(NewToken(s, loc))
		loc.Col++
	}

	assert.Equal(t, "# include < foo.h >", list.LastLine(10))
	assert.True(t, len(list.LastLine(2)) > 0)
}

func TestTokenCloneDetachesAndCopiesOrigin(t *testing.T) {
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	tok := NewToken("x", NewLocation(files, idx))
	tok.SetExpandedFrom(nil, "FOO")

	clone := tok.Clone()
	assert.Nil(t, clone.Previous)
	assert.Nil(t, clone.Next)
	assert.True(t, clone.IsExpandedFrom("FOO"))

	clone.MacroOrigin.Add("BAR")
	assert.False(t, tok.IsExpandedFrom("BAR"))
}

func TestIsNumberLike(t *testing.T) {
	assert.True(t, IsNumberLike("123"))
	assert.True(t, IsNumberLike("-5"))
	assert.True(t, IsNumberLike("+5"))
	assert.False(t, IsNumberLike("-"))
	assert.False(t, IsNumberLike("x"))
}
