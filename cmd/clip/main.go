// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command clip parses a command line against a definition file and prints
// what the parser made of it.
//
//	clip [--def FILE] [--format json|yaml] [--run] [--verbose] -- TOKENS...
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"slices"
	"strings"

	"github.com/shayne/yargs"
	"github.com/yeetrun/clip/pkg/clip"
	"github.com/yeetrun/clip/pkg/clipfile"
	"gopkg.in/yaml.v3"
)

type flagsParsed struct {
	Def     string `flag:"def" help:"Definition file (.toml, .yaml or .json); defaults to the nearest clip.toml"`
	Format  string `flag:"format" help:"Result format: json or yaml"`
	Run     bool   `flag:"run" help:"Invoke the handlers instead of printing the result"`
	Verbose bool   `flag:"verbose" help:"Log parser decisions to stderr"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// splitArgs separates our own flags from the tokens handed to the
// definition. Everything after the first "--" is a token.
func splitArgs(args []string) (own, tokens []string) {
	if i := slices.Index(args, "--"); i >= 0 {
		return args[:i], args[i+1:]
	}
	return args, nil
}

func parseFlags(args []string) (flagsParsed, []string, error) {
	result, err := yargs.ParseKnownFlags[flagsParsed](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return flagsParsed{}, nil, err
	}
	return result.Flags, result.RemainingArgs, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	own, tokens := splitArgs(args)
	flags, rest, err := parseFlags(own)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	tokens = append(slices.Clone(rest), tokens...)

	format := strings.ToLower(flags.Format)
	switch format {
	case "":
		format = clipfile.FormatJSON
	case clipfile.FormatJSON, clipfile.FormatYAML:
	default:
		fmt.Fprintf(stderr, "unknown format %q\n", flags.Format)
		return 2
	}

	path := flags.Def
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		if path, err = clipfile.Find(cwd); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(stderr, "no %s found; pass --def\n", clipfile.DefaultName)
			} else {
				fmt.Fprintln(stderr, err)
			}
			return 1
		}
	}
	def, err := clipfile.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	opts := []clip.Option{
		clip.WithName(def.Name),
		clip.WithOutput(stdout),
		clip.WithErrorOutput(stderr),
	}
	if flags.Verbose {
		opts = append(opts, clip.WithLogf(log.New(stderr, "clip: ", 0).Printf))
	}
	app := clip.New(opts...)

	var fallback clip.Handler
	if flags.Run {
		fallback = clip.HandlerFunc(echoInvocation)
	}
	root, err := clipfile.Build(def, nil, fallback)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	app.SetMain(root)

	if tokens == nil {
		tokens = []string{}
	}
	if flags.Run {
		return clip.ExitStatus(app.Run(tokens))
	}
	return printResult(app, tokens, format, stdout, stderr)
}

// echoInvocation prints the command path and its arguments as JSON.
func echoInvocation(ctx *clip.Context, args *clip.Args) error {
	b, err := json.Marshal(args)
	if err != nil {
		return err
	}
	ctx.Echof("%s %s", strings.Join(ctx.Command.Path(), " "), b)
	return nil
}

func printResult(app *clip.Application, tokens []string, format string, stdout, stderr io.Writer) int {
	defer app.Reset()
	res, err := app.Parse(tokens)
	if err != nil {
		var ee *clip.ExitError
		if errors.As(err, &ee) && ee.Message != "" {
			w := stderr
			if ee.Status == 0 {
				w = stdout
			}
			fmt.Fprintln(w, ee.Message)
		}
		return clip.ExitStatus(err)
	}

	var b []byte
	switch format {
	case clipfile.FormatYAML:
		b, err = yaml.Marshal(res)
	default:
		b, err = json.MarshalIndent(res, "", "  ")
		b = append(b, '\n')
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	stdout.Write(b)
	return 0
}
