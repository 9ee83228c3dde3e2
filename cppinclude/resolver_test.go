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

package cppinclude

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("// "+name+"\n"), 0o644))
	return path
}

func TestResolveQuotedHeaderRelativeToSourceDir(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "local.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)

	got := r.Resolve(src, "local.h", false)
	assert.Equal(t, filepath.ToSlash(filepath.Join(dir, "local.h")), got)
}

func TestResolveFallsBackToIncludePath(t *testing.T) {
	dir := t.TempDir()
	vendor := filepath.Join(dir, "vendor")
	writeTestFile(t, vendor, "lib.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver([]string{vendor})
	require.NoError(t, err)

	got := r.Resolve(src, "lib.h", false)
	assert.Equal(t, filepath.ToSlash(filepath.Join(vendor, "lib.h")), got)
}

func TestResolveSystemHeaderSkipsSourceDir(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "stdio.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)

	got := r.Resolve(src, "stdio.h", true)
	assert.Empty(t, got, "system-header spelling must not search the source directory")
}

func TestResolveMissingHeaderReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)

	assert.Empty(t, r.Resolve(src, "nope.h", false))
}

func TestResolveNegativeCacheClearedByClearCache(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")
	header := filepath.Join(dir, "late.h")

	r, err := NewResolver(nil)
	require.NoError(t, err)

	assert.Empty(t, r.Resolve(src, "late.h", false))

	writeTestFile(t, dir, "late.h")
	assert.Empty(t, r.Resolve(src, "late.h", false), "negative cache should still hide the now-present file")

	r.ClearCache()
	assert.Equal(t, filepath.ToSlash(header), r.Resolve(src, "late.h", false))
}

func TestResolveAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	abs := writeTestFile(t, dir, "abs.h")

	r, err := NewResolver(nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.ToSlash(abs), r.Resolve("irrelevant.c", abs, false))
}

func TestResolveGlobExpandedIncludePath(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, "vendor", "a"), "a.h")
	writeTestFile(t, filepath.Join(dir, "vendor", "b"), "b.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver([]string{filepath.Join(dir, "vendor", "*")})
	require.NoError(t, err)

	assert.NotEmpty(t, r.Resolve(src, "a.h", false))
	assert.NotEmpty(t, r.Resolve(src, "b.h", false))
}
