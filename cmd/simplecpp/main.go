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

// Command simplecpp drives the preprocessor engine over a single source
// file and prints the preprocessed translation unit plus any diagnostics.
// It exists to exercise the library end to end; directory walking and
// report formatting belong to callers, not here.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/cppscan/simplecpp/cppdiag"
	"github.com/cppscan/simplecpp/cppdui"
	"github.com/cppscan/simplecpp/simplecpp"
)

func main() {
	app := &cli.App{
		Name:      "simplecpp",
		Usage:     "preprocess a single C/C++ translation unit",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "define",
				Aliases: []string{"D"},
				Usage:   "define NAME, NAME=value or NAME(params)=body",
			},
			&cli.StringSliceFlag{
				Name:    "undefine",
				Aliases: []string{"U"},
				Usage:   "undefine NAME even if also given via -D",
			},
			&cli.StringSliceFlag{
				Name:    "include-path",
				Aliases: []string{"I"},
				Usage:   "add a directory (or glob) to the header search path",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "force-include a file before the main source",
			},
			&cli.StringFlag{
				Name:  "std",
				Usage: "language standard selector (e.g. c++17, gnu11)",
			},
			&cli.BoolFlag{
				Name:  "clear-include-cache",
				Usage: "reset the negative include-resolution cache before this run",
			},
			&cli.BoolFlag{
				Name:  "remove-comments",
				Usage: "drop comment tokens from the output",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "simplecpp:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: simplecpp [flags] <file>", 2)
	}

	undefined := make(map[string]bool)
	for _, name := range c.StringSlice("undefine") {
		undefined[name] = true
	}

	dui := &cppdui.DUI{
		Defines:           c.StringSlice("define"),
		Undefined:         undefined,
		IncludePaths:      c.StringSlice("include-path"),
		Includes:          c.StringSlice("include"),
		Std:               c.String("std"),
		ClearIncludeCache: c.Bool("clear-include-cache"),
		RemoveComments:    c.Bool("remove-comments"),
	}

	result, err := simplecpp.Preprocess(c.Args().First(), dui)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	hasError := false
	for _, d := range result.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", d.Location.String(), d.Kind.String(), d.Message)
		if d.Kind == cppdiag.Error {
			hasError = true
		}
	}

	fmt.Println(result.Tokens.Stringify())

	if hasError {
		return cli.Exit("", 1)
	}
	return nil
}
