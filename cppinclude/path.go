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

// Package cppinclude implements header resolution (search order, path
// simplification, glob-expanded include paths) and the file data cache that
// backs #include processing.
package cppinclude

import "strings"

// SimplifyPath normalizes backslashes to "/", collapses "//" (preserving a
// leading UNC "//"), removes "./" components, and resolves ".." against
// preceding real components. It is idempotent:
// SimplifyPath(SimplifyPath(p)) == SimplifyPath(p).
func SimplifyPath(p string) string {
	if p == "" {
		return p
	}
	p = strings.ReplaceAll(p, "\\", "/")

	unc := strings.HasPrefix(p, "//")
	parts := strings.Split(p, "/")

	var out []string
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != ".." {
				out = out[:len(out)-1]
			} else if !strings.HasPrefix(p, "/") {
				out = append(out, "..")
			}
		default:
			out = append(out, part)
		}
	}

	joined := strings.Join(out, "/")
	switch {
	case unc:
		return "//" + joined
	case strings.HasPrefix(p, "/"):
		return "/" + joined
	default:
		return joined
	}
}
