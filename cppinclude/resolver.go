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
	"path"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
)

// Resolver implements the search order for #include headers: absolute
// paths open directly, quoted headers are first tried relative to the
// including file's directory then fall through to the include-path scan,
// and system (<...>) headers go straight to the include-path scan.
type Resolver struct {
	includePaths []string

	mu      sync.Mutex
	missing map[string]bool
}

// NewResolver expands any glob patterns in includePaths (e.g.
// "vendor/**/include") once via doublestar and returns a Resolver scanning
// the expanded, ordered directory list.
func NewResolver(includePaths []string) (*Resolver, error) {
	var expanded []string
	for _, p := range includePaths {
		if !doublestar.ValidatePattern(p) || !containsGlobMeta(p) {
			expanded = append(expanded, p)
			continue
		}
		matches, err := doublestar.FilepathGlob(p)
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, matches...)
	}
	return &Resolver{includePaths: expanded, missing: make(map[string]bool)}, nil
}

func containsGlobMeta(p string) bool {
	for _, c := range p {
		switch c {
		case '*', '?', '[', '{':
			return true
		}
	}
	return false
}

// ClearCache resets the negative (known-missing) lookup cache, per
// DUI.clearIncludeCache.
func (r *Resolver) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.missing = make(map[string]bool)
}

// Resolve searches for header as referenced from sourceFile (systemHeader
// distinguishes "<...>" from "\"...\"" spelling) and returns its
// canonicalized path, or "" if not found.
func (r *Resolver) Resolve(sourceFile, header string, systemHeader bool) string {
	if filepath.IsAbs(header) {
		return r.tryOpen(SimplifyPath(header))
	}

	if !systemHeader {
		rel := path.Join(path.Dir(filepath.ToSlash(sourceFile)), header)
		if found := r.tryOpen(SimplifyPath(rel)); found != "" {
			return found
		}
	}

	for _, dir := range r.includePaths {
		candidate := path.Join(filepath.ToSlash(dir), header)
		if found := r.tryOpen(SimplifyPath(candidate)); found != "" {
			return found
		}
	}
	return ""
}

func (r *Resolver) tryOpen(candidate string) string {
	r.mu.Lock()
	if r.missing[candidate] {
		r.mu.Unlock()
		return ""
	}
	r.mu.Unlock()

	if _, err := os.Stat(candidate); err != nil {
		r.mu.Lock()
		r.missing[candidate] = true
		r.mu.Unlock()
		return ""
	}
	return candidate
}
