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

// Package cppdiag defines the diagnostic kinds and the append-only output
// list shared by every stage of the preprocessor engine.
package cppdiag

import "github.com/cppscan/simplecpp/cpptoken"

// Kind classifies a Diagnostic. These are semantic categories, not Go
// error types: every engine-internal error surfaces to callers as one of
// these.
type Kind int

const (
	Error Kind = iota
	Warning
	MissingHeader
	IncludeNestedTooDeeply
	SyntaxError
	PortabilityBackslash
	UnhandledChar
	ExplicitIncludeNotFound
	FileNotFound
	DUIError
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case MissingHeader:
		return "missingHeader"
	case IncludeNestedTooDeeply:
		return "includeNestedTooDeeply"
	case SyntaxError:
		return "syntaxError"
	case PortabilityBackslash:
		return "portabilityBackslash"
	case UnhandledChar:
		return "unhandledChar"
	case ExplicitIncludeNotFound:
		return "explicitIncludeNotFound"
	case FileNotFound:
		return "fileNotFound"
	case DUIError:
		return "duiError"
	default:
		return "unknown"
	}
}

// Diagnostic is a single engine-emitted message.
type Diagnostic struct {
	Kind     Kind
	Location cpptoken.Location
	Message  string
}

// List is an append-only diagnostics collection.
type List struct {
	items []Diagnostic
}

// Add appends a new Diagnostic to the list.
func (l *List) Add(kind Kind, loc cpptoken.Location, message string) {
	l.items = append(l.items, Diagnostic{Kind: kind, Location: loc, Message: message})
}

// Items returns the diagnostics recorded so far, in the order they were
// added.
func (l *List) Items() []Diagnostic { return l.items }

// HasErrors reports whether any Error-kind diagnostic has been recorded.
func (l *List) HasErrors() bool {
	for _, d := range l.items {
		if d.Kind == Error {
			return true
		}
	}
	return false
}
