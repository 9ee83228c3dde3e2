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
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cpplex"
	"github.com/cppscan/simplecpp/cpptoken"
)

// FileData is a cached file's raw (pre-expansion) token list plus the
// canonical path it was loaded under.
type FileData struct {
	CanonicalPath string
	FileIdx       cpptoken.FileIndex
	Tokens        *cpptoken.TokenList
}

// FileCache owns, for the duration of one preprocessing run, every raw
// TokenList produced from a resolved header so that a file included from
// multiple places is tokenized only once. It is indexed by canonical path
// and, secondarily, by OS file identity so hard-linked or alias-resolved
// paths collapse to the same entry.
type FileCache struct {
	resolver *Resolver
	files    *cpptoken.FileTable

	mu        sync.Mutex
	byPath    map[string]*FileData
	byIdentFast map[uint64][]*FileData

	group singleflight.Group
}

// NewFileCache returns an empty FileCache backed by resolver for header
// search and files for Location interning.
func NewFileCache(resolver *Resolver, files *cpptoken.FileTable) *FileCache {
	return &FileCache{
		resolver:    resolver,
		files:       files,
		byPath:      make(map[string]*FileData),
		byIdentFast: make(map[uint64][]*FileData),
	}
}

// Get resolves header as referenced from sourceFile, tokenizing and
// caching it on first encounter. wasLoaded reports whether this call
// performed the load (false when an existing cache entry, by canonical
// path or by file identity, was reused).
func (c *FileCache) Get(sourceFile, header string, systemHeader bool, diag *cppdiag.List) (data *FileData, wasLoaded bool, err error) {
	canonical := c.resolver.Resolve(sourceFile, header, systemHeader)
	if canonical == "" {
		return nil, false, nil
	}

	if d := c.lookupPath(canonical); d != nil {
		return d, false, nil
	}

	loaded := false
	v, err, _ := c.group.Do(canonical, func() (interface{}, error) {
		if d := c.lookupPath(canonical); d != nil {
			return d, nil
		}
		loaded = true
		return c.load(canonical, diag)
	})
	if err != nil {
		return nil, false, err
	}
	return v.(*FileData), loaded, nil
}

func (c *FileCache) lookupPath(canonical string) *FileData {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.byPath[canonical]; ok {
		return d
	}
	if ident, err := statIdentity(canonical); err == nil {
		fast := identityFastHash(ident)
		for _, d := range c.byIdentFast[fast] {
			if sameIdentity(d, ident) {
				c.byPath[canonical] = d
				return d
			}
		}
	}
	return nil
}

func (c *FileCache) load(canonical string, diag *cppdiag.List) (*FileData, error) {
	f, err := os.Open(canonical)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stream, err := cpplex.NewFileStream(f)
	if err != nil {
		return nil, err
	}

	fileIdx := c.files.Intern(canonical)
	toks := cpplex.Read(stream, c.files, fileIdx, diag)

	data := &FileData{CanonicalPath: canonical, FileIdx: fileIdx, Tokens: toks}

	c.mu.Lock()
	c.byPath[canonical] = data
	if ident, err := statIdentity(canonical); err == nil {
		fast := identityFastHash(ident)
		c.byIdentFast[fast] = append(c.byIdentFast[fast], data)
	}
	c.mu.Unlock()

	return data, nil
}

// identityFastHash produces a cheap xxhash digest of a fileIdentity value's
// textual form, letting the secondary identity map reject non-matching
// candidates before falling back to the exact field comparison.
func identityFastHash(id fileIdentity) uint64 {
	return xxhash.Sum64String(identityKey(id))
}
