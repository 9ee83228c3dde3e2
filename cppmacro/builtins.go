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

import (
	"strconv"

	"github.com/cppscan/simplecpp/cpptoken"
)

// SeedPredefined installs the engine's always-available dynamic macros:
// __FILE__, __LINE__ and __COUNTER__ (§4.F.4). __DATE__/__TIME__ are
// seeded by the caller as ordinary string-literal defines since their
// value is fixed for the whole run, not recomputed per use.
func SeedPredefined(m *Map) {
	m.Insert(NewDynamicMacro("__FILE__", func(invocation *cpptoken.Token, _ *Context) string {
		return strconv.Quote(invocation.Location.File())
	}))
	m.Insert(NewDynamicMacro("__LINE__", func(invocation *cpptoken.Token, _ *Context) string {
		return strconv.Itoa(invocation.Location.Line)
	}))
	m.Insert(NewDynamicMacro("__COUNTER__", func(_ *cpptoken.Token, ctx *Context) string {
		v := ctx.Counter
		ctx.Counter++
		return strconv.FormatInt(v, 10)
	}))
}
