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

package cppmacro

// Map is a keyed store of Macros. A redefinition replaces the entry; the
// driver is the only caller that mutates it (Expand never does).
type Map struct {
	entries map[string]*Macro
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{entries: make(map[string]*Macro)}
}

// Find returns the macro named name, or nil if it isn't defined.
func (m *Map) Find(name string) *Macro {
	return m.entries[name]
}

// Insert adds or replaces the entry for macro.Name.
func (m *Map) Insert(macro *Macro) {
	m.entries[macro.Name] = macro
}

// Erase removes the entry named name, if any.
func (m *Map) Erase(name string) {
	delete(m.entries, name)
}

// Has reports whether name is currently defined.
func (m *Map) Has(name string) bool {
	_, ok := m.entries[name]
	return ok
}

// Len returns the number of defined macros.
func (m *Map) Len() int { return len(m.entries) }
