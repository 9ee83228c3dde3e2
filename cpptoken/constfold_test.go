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
	"github.com/stretchr/testify/require"
)

// buildFoldList tokenizes a whitespace-separated sequence of constant-
// expression atoms ("1", "+", "(", ")", "<<", ...) into a TokenList with
// CombineOperators already applied, matching what cpplex.Read would hand
// ConstFold after lexing.
func buildFoldList(t *testing.T, parts ...string) *TokenList {
	t.Helper()
	files := NewFileTable()
	idx := files.Intern("t.cpp")
	list := NewTokenList(files)
	loc := NewLocation(files, idx)
	for _, p := range parts {
		list.PushBack(NewToken(p, loc))
		loc.Col += len(p) + 1
	}
	return list
}

func foldToString(t *testing.T, parts ...string) string {
	t.Helper()
	list := buildFoldList(t, parts...)
	require.NoError(t, list.ConstFold())
	require.Equal(t, 1, list.Len())
	return list.Front().Str()
}

func TestConstFoldArithmeticPrecedence(t *testing.T) {
	testCases := []struct {
		parts    []string
		expected string
	}{
		{[]string{"1", "+", "2", "*", "3"}, "7"},
		{[]string{"(", "1", "+", "2", ")", "*", "3"}, "9"},
		{[]string{"10", "-", "2", "-", "3"}, "5"},
		{[]string{"1", "<<", "4"}, "16"},
		{[]string{"8", ">>", "2"}, "2"},
		{[]string{"6", "&", "3"}, "2"},
		{[]string{"6", "|", "1"}, "7"},
		{[]string{"6", "^", "3"}, "5"},
		{[]string{"1", "&&", "0"}, "0"},
		{[]string{"0", "||", "1"}, "1"},
		{[]string{"5", "==", "5"}, "1"},
		{[]string{"5", "!=", "5"}, "0"},
		{[]string{"-", "5", "+", "10"}, "5"},
		{[]string{"!", "0"}, "1"},
		{[]string{"~", "0"}, "-1"},
		{[]string{"1", "?", "2", ":", "3"}, "2"},
		{[]string{"0", "?", "2", ":", "3"}, "3"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, foldToString(t, tc.parts...), "parts %v", tc.parts)
	}
}

func TestConstFoldDivisionByZero(t *testing.T) {
	list := buildFoldList(t, "1", "/", "0")
	err := list.ConstFold()
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestConstFoldModuloByZero(t *testing.T) {
	list := buildFoldList(t, "1", "%", "0")
	err := list.ConstFold()
	assert.ErrorIs(t, err, ErrDivByZero)
}

func TestConstFoldSignedDivisionOverflow(t *testing.T) {
	list := buildFoldList(t, "-9223372036854775808", "/", "-1")
	err := list.ConstFold()
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestConstFoldNestedParentheses(t *testing.T) {
	got := foldToString(t, "(", "(", "1", "+", "1", ")", "*", "(", "2", "+", "2", ")", ")")
	assert.Equal(t, "8", got)
}
