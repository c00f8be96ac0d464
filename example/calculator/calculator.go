// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command calculator folds a list of numbers with one of four operators.
//
//	calculator add 1 2 3
//	calculator div --round floor 7 2
package main

import (
	"io"
	"math"
	"os"
	"strconv"

	"github.com/yeetrun/clip/pkg/clip"
)

var roundings = map[string]func(float64) float64{
	"none":    func(f float64) float64 { return f },
	"floor":   math.Floor,
	"ceil":    math.Ceil,
	"nearest": math.Round,
}

type op func(acc, n float64) (float64, error)

func fold(f op) clip.HandlerFunc {
	return func(ctx *clip.Context, args *clip.Args) error {
		nums := args.Floats("numbers")
		acc := nums[0]
		for _, n := range nums[1:] {
			var err error
			if acc, err = f(acc, n); err != nil {
				return err
			}
		}
		acc = roundings[args.String("round")](acc)
		ctx.Echo(strconv.FormatFloat(acc, 'f', -1, 64))
		return nil
	}
}

func newApp(out, errOut io.Writer) *clip.Application {
	app := clip.New(clip.WithOutput(out), clip.WithErrorOutput(errOut))
	root := app.Main("calculator", nil, []*clip.Parameter{
		clip.Opt("-r --round", clip.Choices("none", "floor", "ceil", "nearest"), clip.InheritOnly(),
			clip.Help("How to round the result")),
	},
		clip.Description("Fold numbers with an operator"),
		clip.DefaultInvocation("--help"),
	)

	ops := []struct {
		name, desc string
		f          op
	}{
		{"add", "Add the numbers", func(a, n float64) (float64, error) { return a + n, nil }},
		{"sub", "Subtract the rest from the first number", func(a, n float64) (float64, error) { return a - n, nil }},
		{"mul", "Multiply the numbers", func(a, n float64) (float64, error) { return a * n, nil }},
		{"div", "Divide the first number by the rest", func(a, n float64) (float64, error) {
			if n == 0 {
				return 0, clip.Exit(1, "Error: Division by zero.")
			}
			return a / n, nil
		}},
	}
	for _, o := range ops {
		root.Subcommand(o.name, fold(o.f), []*clip.Parameter{
			clip.Arg("numbers", clip.Nargs(clip.Unbounded), clip.Type(clip.Float), clip.Required(),
				clip.Help("Numbers to fold, left to right")),
		},
			clip.Description(o.desc),
			clip.Inherits("round"),
		)
	}
	return app
}

func main() {
	app := newApp(os.Stdout, os.Stderr)
	os.Exit(clip.ExitStatus(app.Run(nil)))
}
