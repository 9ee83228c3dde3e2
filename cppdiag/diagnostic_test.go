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

package cppdiag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cppscan/simplecpp/cpptoken"
)

func TestKindString(t *testing.T) {
	testCases := []struct {
		kind     Kind
		expected string
	}{
		{Error, "error"},
		{Warning, "warning"},
		{MissingHeader, "missingHeader"},
		{IncludeNestedTooDeeply, "includeNestedTooDeeply"},
		{SyntaxError, "syntaxError"},
		{PortabilityBackslash, "portabilityBackslash"},
		{UnhandledChar, "unhandledChar"},
		{ExplicitIncludeNotFound, "explicitIncludeNotFound"},
		{FileNotFound, "fileNotFound"},
		{DUIError, "duiError"},
		{Kind(999), "unknown"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, tc.kind.String())
	}
}

func TestListAddAndItems(t *testing.T) {
	var l List
	assert.Empty(t, l.Items())
	assert.False(t, l.HasErrors())

	loc := cpptoken.Location{Line: 3, Col: 4}
	l.Add(Warning, loc, "something looks off")
	assert.False(t, l.HasErrors())
	require := l.Items()
	if assert.Len(t, require, 1) {
		assert.Equal(t, Warning, require[0].Kind)
		assert.Equal(t, "something looks off", require[0].Message)
		assert.Equal(t, loc, require[0].Location)
	}

	l.Add(Error, loc, "boom")
	assert.True(t, l.HasErrors())
	assert.Len(t, l.Items(), 2)
}

func TestListHasErrorsIgnoresNonErrorKinds(t *testing.T) {
	var l List
	l.Add(Warning, cpptoken.Location{}, "w")
	l.Add(MissingHeader, cpptoken.Location{}, "m")
	l.Add(SyntaxError, cpptoken.Location{}, "s")
	assert.False(t, l.HasErrors())
}
