// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clip parses command lines against a tree of commands and calls the
// handlers along the path that was selected.
//
// Parameters are built with Arg, Opt and Flag and attached to commands when
// the commands are built:
//
//	app := clip.New()
//	root := app.Main("shopping", nil, nil, clip.Description("A shopping list"))
//	root.Subcommand("add", clip.HandlerFunc(add), []*clip.Parameter{
//	    clip.Arg("item", clip.Required()),
//	    clip.Opt("-q --quantity", clip.Default(1), clip.Help("How many")),
//	})
//	os.Exit(clip.ExitStatus(app.Run(nil)))
//
// # Parsing
//
// Tokens are scanned left to right. A token naming a subcommand hands the
// rest of the stream to that subcommand. Otherwise option declarations are
// looked up first, then the first positional that still accepts a token.
// Clustered short flags ("-ab") are split before parsing. When scanning is
// done, unset parameters take their defaults, or fail if required.
//
// The result is a *Result tree: parameter names map to values, and the
// selected subcommand's name maps to its own *Result. Invoke walks the tree
// and passes each handler the non-subcommand entries of its level as *Args.
//
// # Inheritance
//
// A subcommand built with Inherits shares the named parameters of its
// ancestors. The Parameter is not copied: it is filled at most once per parse
// and its value shows up at every level that declared it. Parameters marked
// InheritOnly are left out of their own command's arguments.
//
// # Aborts
//
// Every parse error, help request and early exit is an *ExitError carrying a
// status and an optional message. Run echoes the message, resets the tree so
// the Application can run again, and returns the error; ExitStatus maps it
// to a process exit status. Malformed command trees panic with a
// *DefinitionError when they are built.
//
// Parameters hold per-parse state, so one Application must not be parsed
// from several goroutines at once.
package clip
