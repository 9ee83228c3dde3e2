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
	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cpptoken"
)

// MacroUsage records a single macro expansion site, for tooling that wants
// to report on macro use without re-deriving it from the token stream.
type MacroUsage struct {
	Name           string
	DefineLocation cpptoken.Location
	UseLocation    cpptoken.Location
	ValueKnown     bool
}

// IfCond records one #if/#elif's evaluated condition.
type IfCond struct {
	Location              cpptoken.Location
	PreprocessedExpression string
	Result                int64
}

// Result is the output of a full Preprocess run.
type Result struct {
	Tokens      *cpptoken.TokenList
	Diagnostics []cppdiag.Diagnostic
	MacroUsages []MacroUsage
	IfConds     []IfCond
}
