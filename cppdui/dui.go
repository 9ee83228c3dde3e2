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

// Package cppdui holds the engine's input configuration (Defines, Undefs,
// Includes -- "DUI") and the language-standard selector table.
package cppdui

import "strings"

// DUI is the preprocessor's input configuration.
type DUI struct {
	// Defines holds "NAME", "NAME=value" or "NAME(params)=body" entries, in
	// the order they should be processed.
	Defines []string
	// Undefined names are suppressed even if also present in Defines.
	Undefined map[string]bool
	// IncludePaths is the ordered system/quoted-header search list;
	// entries may be doublestar glob patterns.
	IncludePaths []string
	// Includes are forced-include file paths processed before the root
	// file, in order.
	Includes []string
	// Std is the language-standard selector (e.g. "c++17", "gnu11").
	Std string
	// ClearIncludeCache forces the resolver's negative-lookup cache to
	// reset before this run.
	ClearIncludeCache bool
	// RemoveComments runs a comment-removal pass over the whole output
	// token list. The driver never copies comment tokens into the output,
	// so the output holds no comments whether or not this is set.
	RemoveComments bool
}

// stdMacro is the macro name/value pair a language-standard selector seeds.
type stdMacro struct {
	name  string
	value string
}

var stdTable = map[string]stdMacro{
	"c99": {"__STDC_VERSION__", "199901L"}, "c9x": {"__STDC_VERSION__", "199901L"},
	"iso9899:1999": {"__STDC_VERSION__", "199901L"}, "gnu99": {"__STDC_VERSION__", "199901L"}, "gnu9x": {"__STDC_VERSION__", "199901L"},

	"c11": {"__STDC_VERSION__", "201112L"}, "c1x": {"__STDC_VERSION__", "201112L"},
	"iso9899:2011": {"__STDC_VERSION__", "201112L"}, "gnu11": {"__STDC_VERSION__", "201112L"}, "gnu1x": {"__STDC_VERSION__", "201112L"},

	"c17": {"__STDC_VERSION__", "201710L"}, "c18": {"__STDC_VERSION__", "201710L"},
	"iso9899:2017": {"__STDC_VERSION__", "201710L"}, "gnu17": {"__STDC_VERSION__", "201710L"}, "gnu18": {"__STDC_VERSION__", "201710L"},

	"c2x": {"__STDC_VERSION__", "202000L"}, "gnu2x": {"__STDC_VERSION__", "202000L"},

	"c++98": {"__cplusplus", "199711L"}, "c++03": {"__cplusplus", "199711L"},
	"gnu++98": {"__cplusplus", "199711L"}, "gnu++03": {"__cplusplus", "199711L"},

	"c++11": {"__cplusplus", "201103L"}, "gnu++11": {"__cplusplus", "201103L"},
	"c++0x": {"__cplusplus", "201103L"}, "gnu++0x": {"__cplusplus", "201103L"},

	"c++14": {"__cplusplus", "201402L"}, "c++1y": {"__cplusplus", "201402L"},
	"gnu++14": {"__cplusplus", "201402L"}, "gnu++1y": {"__cplusplus", "201402L"},

	"c++17": {"__cplusplus", "201703L"}, "c++1z": {"__cplusplus", "201703L"},
	"gnu++17": {"__cplusplus", "201703L"}, "gnu++1z": {"__cplusplus", "201703L"},

	"c++20": {"__cplusplus", "202002L"}, "c++2a": {"__cplusplus", "202002L"},
	"gnu++20": {"__cplusplus", "202002L"}, "gnu++2a": {"__cplusplus", "202002L"},

	"c++23": {"__cplusplus", "202100L"}, "c++2b": {"__cplusplus", "202100L"},
	"gnu++23": {"__cplusplus", "202100L"}, "gnu++2b": {"__cplusplus", "202100L"},
}

// StdMacro returns the (name, value) macro pair this DUI's Std selector
// seeds, and whether Std was recognized.
func (d *DUI) StdMacro() (name, value string, ok bool) {
	m, found := stdTable[strings.ToLower(d.Std)]
	if !found {
		return "", "", false
	}
	return m.name, m.value, true
}

// HasIncludeEnabled reports whether __has_include is available under this
// DUI's language standard: C++17 or later.
func (d *DUI) HasIncludeEnabled() bool {
	std := strings.ToLower(d.Std)
	if !strings.HasPrefix(std, "c++") && !strings.HasPrefix(std, "gnu++") {
		return false
	}
	switch std {
	case "c++17", "c++1z", "gnu++17", "gnu++1z",
		"c++20", "c++2a", "gnu++20", "gnu++2a",
		"c++23", "c++2b", "gnu++23", "gnu++2b":
		return true
	}
	return false
}
