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
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cpptoken"
)

func TestFileCacheGetLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	header := writeTestFile(t, dir, "shared.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)
	files := cpptoken.NewFileTable()
	cache := NewFileCache(r, files)
	diag := &cppdiag.List{}

	data1, loaded1, err := cache.Get(src, "shared.h", false, diag)
	require.NoError(t, err)
	require.NotNil(t, data1)
	assert.True(t, loaded1)
	assert.Equal(t, filepath.ToSlash(header), data1.CanonicalPath)

	data2, loaded2, err := cache.Get(src, "shared.h", false, diag)
	require.NoError(t, err)
	assert.False(t, loaded2)
	assert.Same(t, data1, data2)
}

func TestFileCacheGetMissingHeaderReturnsNil(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)
	cache := NewFileCache(r, cpptoken.NewFileTable())
	diag := &cppdiag.List{}

	data, loaded, err := cache.Get(src, "nope.h", false, diag)
	require.NoError(t, err)
	assert.False(t, loaded)
	assert.Nil(t, data)
}

func TestFileCacheGetDedupsConcurrentLoads(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "shared.h")
	src := filepath.Join(dir, "main.c")

	r, err := NewResolver(nil)
	require.NoError(t, err)
	cache := NewFileCache(r, cpptoken.NewFileTable())

	const n = 16
	results := make([]*FileData, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			diag := &cppdiag.List{}
			data, _, err := cache.Get(src, "shared.h", false, diag)
			require.NoError(t, err)
			results[i] = data
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		assert.Same(t, results[0], results[i])
	}
}

func TestFileCacheGetCollapsesDotDotRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeTestFile(t, dir, "shared.h")
	aliasDir := filepath.Join(dir, "alias")
	require.NoError(t, os.MkdirAll(aliasDir, 0o755))

	r, err := NewResolver(nil)
	require.NoError(t, err)
	cache := NewFileCache(r, cpptoken.NewFileTable())
	diag := &cppdiag.List{}

	direct, _, err := cache.Get(filepath.Join(dir, "main.c"), "shared.h", false, diag)
	require.NoError(t, err)

	aliased, loaded, err := cache.Get(filepath.Join(aliasDir, "sibling.c"), filepath.Join("..", "shared.h"), false, diag)
	require.NoError(t, err)
	require.NotNil(t, aliased)
	assert.False(t, loaded, "resolving to the same canonical path should reuse the cached entry")
	assert.Same(t, direct, aliased)
}
