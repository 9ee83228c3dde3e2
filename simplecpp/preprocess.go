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
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cppdui"
	"github.com/cppscan/simplecpp/cppinclude"
	"github.com/cppscan/simplecpp/cppmacro"
	"github.com/cppscan/simplecpp/cpplex"
	"github.com/cppscan/simplecpp/cpptoken"
)

// Preprocess tokenizes and macro-expands rootPath under the configuration
// in dui, returning the accumulated translation unit, diagnostics, and the
// macro-usage/if-condition logs.
func Preprocess(rootPath string, dui *cppdui.DUI) (*Result, error) {
	files := cpptoken.NewFileTable()
	diag := &cppdiag.List{}

	resolver, err := cppinclude.NewResolver(dui.IncludePaths)
	if err != nil {
		return nil, errors.Wrap(err, "building include resolver")
	}
	if dui.ClearIncludeCache {
		resolver.ClearCache()
	}
	cache := cppinclude.NewFileCache(resolver, files)

	macros := cppmacro.NewMap()
	cppmacro.SeedPredefined(macros)
	seedDateTime(macros, files)
	seedDefines(macros, files, dui)
	if name, value, ok := dui.StdMacro(); ok {
		seedStaticDefine(macros, files, name, value)
	}

	ctx := &cppmacro.Context{}
	d := newDriver(files, cache, resolver, macros, ctx, dui, diag)

	for _, inc := range dui.Includes {
		if err := processForcedInclude(d, files, diag, inc); err != nil {
			diag.Add(cppdiag.ExplicitIncludeNotFound, cpptoken.Location{}, err.Error())
		}
	}

	root, err := os.Open(rootPath)
	if err != nil {
		diag.Add(cppdiag.FileNotFound, cpptoken.Location{}, "cannot open "+rootPath)
		return &Result{Tokens: d.output, Diagnostics: diag.Items(), MacroUsages: d.macroUsages, IfConds: d.ifConds}, nil
	}
	defer root.Close()

	stream, err := cpplex.NewFileStream(root)
	if err != nil {
		return nil, errors.Wrap(err, "reading "+rootPath)
	}
	fileIdx := files.Intern(rootPath)
	tokens := cpplex.Read(stream, files, fileIdx, diag)

	if err := d.run(rootPath, tokens.Front()); err != nil {
		return nil, errors.Wrap(err, "preprocessing "+rootPath)
	}

	if dui.RemoveComments {
		d.output.RemoveComments()
	}

	return &Result{
		Tokens:      d.output,
		Diagnostics: diag.Items(),
		MacroUsages: d.macroUsages,
		IfConds:     d.ifConds,
	}, nil
}

// processForcedInclude pushes a DUI.Includes entry through the same raw-
// reader and driver pipeline as an #include directive, before the root file
// is read, matching the original's handling of command-line -include paths.
func processForcedInclude(d *driver, files *cpptoken.FileTable, diag *cppdiag.List, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stream, err := cpplex.NewFileStream(f)
	if err != nil {
		return err
	}
	fileIdx := files.Intern(path)
	tokens := cpplex.Read(stream, files, fileIdx, diag)
	return d.run(path, tokens.Front())
}

// seedDefines installs every DUI.Defines entry as a Macro, honoring
// "NAME", "NAME=value" and "NAME(params)=body" forms, skipping any name also
// present in DUI.Undefined.
func seedDefines(macros *cppmacro.Map, files *cpptoken.FileTable, dui *cppdui.DUI) {
	for _, def := range dui.Defines {
		name, paramsAndBody, hasEq := strings.Cut(def, "=")
		body := "1"
		if hasEq {
			body = paramsAndBody
		}
		var text string
		if hasEq {
			text = name + " " + body + "\n"
		} else {
			text = name + " 1\n"
		}
		// Parse "NAME" or "NAME(params)" from name, preserving any
		// function-like parameter list written before "=".
		line := cpplex.Read(mustBuffer(text), files, files.Intern("<command-line>"), &cppdiag.List{})
		nameTok := line.Front()
		if nameTok == nil || !nameTok.Name {
			continue
		}
		if dui.Undefined[nameTok.Str()] {
			continue
		}
		m, err := cppmacro.ParseDefine(files, nameTok)
		if err != nil {
			continue
		}
		macros.Insert(m)
	}
}

func mustBuffer(text string) *cpplex.Stream {
	return cpplex.NewBufferStream([]byte(text))
}

func seedStaticDefine(macros *cppmacro.Map, files *cpptoken.FileTable, name, value string) {
	line := cpplex.Read(mustBuffer(name+" "+value+"\n"), files, files.Intern("<command-line>"), &cppdiag.List{})
	nameTok := line.Front()
	if nameTok == nil {
		return
	}
	m, err := cppmacro.ParseDefine(files, nameTok)
	if err != nil {
		return
	}
	macros.Insert(m)
}

// seedDateTime installs __DATE__/__TIME__ as static string defines: their
// value is fixed for the whole run rather than recomputed per use, unlike
// the dynamic __FILE__/__LINE__/__COUNTER__.
func seedDateTime(macros *cppmacro.Map, files *cpptoken.FileTable) {
	now := time.Now()
	seedStaticDefine(macros, files, "__DATE__", `"`+now.Format("Jan  2 2006")+`"`)
	seedStaticDefine(macros, files, "__TIME__", `"`+now.Format("15:04:05")+`"`)
}
