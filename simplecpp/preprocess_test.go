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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cppdui"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func tokenTexts(t *testing.T, result *Result) []string {
	t.Helper()
	var out []string
	for tok := result.Tokens.Front(); tok != nil; tok = tok.Next {
		if tok.Comment {
			continue
		}
		out = append(out, tok.Str())
	}
	return out
}

func TestPreprocessObjectMacroExpansion(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", "int x = FOO;\n")

	result, err := Preprocess(root, &cppdui.DUI{Defines: []string{"FOO=42"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "x", "=", "42", ";"}, tokenTexts(t, result))
}

func TestPreprocessIncludeResolutionAndPragmaOnce(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "header.h", "#pragma once\nint shared;\n")
	root := writeFile(t, dir, "main.c", "#include \"header.h\"\n#include \"header.h\"\nint x;\n")

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "shared", ";", "int", "x", ";"}, tokenTexts(t, result))
}

func TestPreprocessIfStateMachine(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", `
#define VARIANT 2
#if VARIANT == 1
int a;
#elif VARIANT == 2
int b;
#else
int c;
#endif
`)

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "b", ";"}, tokenTexts(t, result))
}

func TestPreprocessUndefSuppressesDefine(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", "#define FOO 1\n#ifdef FOO\nint a;\n#endif\n")

	result, err := Preprocess(root, &cppdui.DUI{Undefined: map[string]bool{"FOO": true}})
	require.NoError(t, err)
	assert.Empty(t, tokenTexts(t, result))
}

func TestPreprocessMissingHeaderReportsDiagnostic(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", "#include \"nope.h\"\n")

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, cppdiag.MissingHeader, result.Diagnostics[0].Kind)
}

func TestPreprocessErrorDirectiveStopsAndClearsOutput(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", "int before;\n#error boom\nint after;\n")

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	assert.Empty(t, tokenTexts(t, result))
	require.NotEmpty(t, result.Diagnostics)
	assert.Equal(t, cppdiag.Error, result.Diagnostics[len(result.Diagnostics)-1].Kind)
}

func TestPreprocessForcedIncludeAccumulatesWithRoot(t *testing.T) {
	dir := t.TempDir()
	forced := writeFile(t, dir, "force.h", "#define FORCED 99\n")
	root := writeFile(t, dir, "main.c", "int x = FORCED;\n")

	result, err := Preprocess(root, &cppdui.DUI{Includes: []string{forced}})
	require.NoError(t, err)
	assert.Equal(t, []string{"int", "x", "=", "99", ";"}, tokenTexts(t, result))
}

func TestPreprocessMacroUsageLog(t *testing.T) {
	dir := t.TempDir()
	root := writeFile(t, dir, "main.c", "#define FOO 1\nint x = FOO;\n")

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	require.Len(t, result.MacroUsages, 1)
	assert.Equal(t, "FOO", result.MacroUsages[0].Name)
	assert.True(t, result.MacroUsages[0].ValueKnown)
}

func TestPreprocessIncludeDepthLimit(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "cycle.h", "#include \"cycle.h\"\n")
	root := writeFile(t, dir, "main.c", "#include \"cycle.h\"\n")

	result, err := Preprocess(root, &cppdui.DUI{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Diagnostics)
	found := false
	for _, d := range result.Diagnostics {
		if d.Kind == cppdiag.IncludeNestedTooDeeply {
			found = true
		}
	}
	assert.True(t, found)
}
