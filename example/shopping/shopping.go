// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command shopping is a very unhelpful shopping list. Run it with no
// arguments for an interactive session; the list lives as long as the
// process does.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/yeetrun/clip/pkg/clip"
	"github.com/yeetrun/clip/pkg/prompt"
)

type item struct {
	name     string
	quantity int
}

type list struct {
	items []item
	in    io.Reader
}

func (l *list) index(name string) int {
	return slices.IndexFunc(l.items, func(it item) bool { return it.name == name })
}

func (l *list) add(ctx *clip.Context, args *clip.Args) error {
	name, n := args.String("item"), args.Int("quantity")
	if n < 1 {
		return clip.Exit(1, "Error: Quantity must be at least 1.")
	}
	if i := l.index(name); i >= 0 {
		l.items[i].quantity += n
	} else {
		l.items = append(l.items, item{name, n})
	}
	if args.Bool("verbose") {
		ctx.Echof("Added %d x %s", n, name)
	}
	return nil
}

func (l *list) remove(ctx *clip.Context, args *clip.Args) error {
	name := args.String("item")
	i := l.index(name)
	if i < 0 {
		return clip.Exit(1, fmt.Sprintf("Error: %q is not on the list.", name))
	}
	if !args.Bool("yes") {
		ok, err := prompt.Confirm(fmt.Sprintf("Remove %s?", name), prompt.Default("no"), prompt.WithIO(l.in, ctx.App.Output()))
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
	l.items = slices.Delete(l.items, i, i+1)
	if args.Bool("verbose") {
		ctx.Echof("Removed %s", name)
	}
	return nil
}

func (l *list) view(ctx *clip.Context, args *clip.Args) error {
	items := slices.Clone(l.items)
	if args.Bool("sorted") {
		slices.SortFunc(items, func(a, b item) int { return strings.Compare(a.name, b.name) })
	}
	if len(items) == 0 {
		ctx.Echo("The list is empty.")
	}
	for _, it := range items {
		ctx.Echof("%s x%d", it.name, it.quantity)
	}
	return nil
}

func newApp(in io.Reader, out, errOut io.Writer) *clip.Application {
	l := &list{in: in}
	app := clip.New(clip.WithOutput(out), clip.WithErrorOutput(errOut))
	root := app.Main("shopping", nil, []*clip.Parameter{
		clip.Flag("-v --verbose", clip.InheritOnly(), clip.Help("Say what changed")),
		clip.VersionFlag("shopping", "1.0.0"),
		clip.Flag("--tree", clip.Hidden(), clip.Help("Show the command tree and exit")),
	},
		clip.Description("A very unhelpful shopping list CLI program"),
		clip.Epilogue("Items are forgotten when the program exits."),
		clip.TreeView("--tree"),
	)
	root.Subcommand("add", clip.HandlerFunc(l.add), []*clip.Parameter{
		clip.Arg("item", clip.Required(), clip.Help("What to get")),
		clip.Opt("-q --quantity", clip.Default(1), clip.Help("How many of the item to get")),
	}, clip.Description("Add an item to the list"), clip.Inherits("verbose"))
	root.Subcommand("remove", clip.HandlerFunc(l.remove), []*clip.Parameter{
		clip.Arg("item", clip.Required(), clip.Help("What not to get")),
		clip.Flag("-y --yes", clip.Help("Do not ask for confirmation")),
	}, clip.Description("Remove an item from the list"), clip.Inherits("verbose"))
	root.Subcommand("view", clip.HandlerFunc(l.view), []*clip.Parameter{
		clip.Flag("-s --sorted", clip.Help("Sort items by name")),
	}, clip.Description("See all items on the list"))
	return app
}

func main() {
	// One reader serves both the session loop and confirmations.
	in := bufio.NewReader(os.Stdin)
	app := newApp(in, os.Stdout, os.Stderr)
	if len(os.Args) > 1 {
		os.Exit(clip.ExitStatus(app.Run(nil)))
	}

	// Interactive session: every line is a separate run against the same list.
	for {
		fmt.Print("shopping> ")
		line, err := in.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "quit" || line == "exit" {
			return
		}
		if line != "" {
			app.RunString(line)
		}
		if err != nil {
			fmt.Println()
			return
		}
	}
}
