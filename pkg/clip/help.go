// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/yeetrun/clip/pkg/tui"
)

// HelpRenderer turns command metadata into help text. The help flag echoes
// RenderHelp; a tree-view flag echoes each line of RenderTree.
type HelpRenderer interface {
	RenderHelp(c *Command) string
	RenderTree(c *Command) []string
}

// DefaultHelp is the renderer used unless WithHelp installs another.
type DefaultHelp struct {
	Color tui.Colorizer
}

var _ HelpRenderer = DefaultHelp{}

func (h DefaultHelp) RenderHelp(c *Command) string {
	var sections []string

	title := strings.Join(c.Path(), " ")
	if c.description != "" {
		title += ": " + c.description
	}
	sections = append(sections, title)

	var args, opts [][2]string
	for _, p := range c.params.All() {
		if p.hidden && p != c.help {
			continue
		}
		if p.positional {
			args = append(args, [2]string{p.name + " " + typeLabel(p), describe(p)})
		} else {
			opts = append(opts, [2]string{optionLabel(p), describe(p)})
		}
	}
	var subs [][2]string
	for _, s := range c.order {
		subs = append(subs, [2]string{s.name, s.description})
	}

	usage := h.Color.Bold("Usage:") + " " + c.name
	if len(args) > 0 {
		usage += " [arguments]"
	}
	usage += " [options]"
	if len(subs) > 0 {
		usage += " [subcommand]"
	}
	sections = append(sections, usage)

	if len(args) > 0 {
		sections = append(sections, h.table("Arguments:", args))
	}
	sections = append(sections, h.table("Options:", opts))
	if len(subs) > 0 {
		sections = append(sections, h.table("Subcommands:", subs))
	}
	if c.epilogue != "" {
		sections = append(sections, c.epilogue)
	}
	return strings.Join(sections, "\n\n")
}

// RenderTree lists c and its descendants, two spaces of indent per level.
func (h DefaultHelp) RenderTree(c *Command) []string {
	var lines []string
	var walk func(*Command, int)
	walk = func(n *Command, depth int) {
		lines = append(lines, strings.Repeat("  ", depth)+n.name)
		for _, s := range n.order {
			walk(s, depth+1)
		}
	}
	walk(c, 0)
	return lines
}

func (h DefaultHelp) table(heading string, rows [][2]string) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		fmt.Fprintf(tw, "  %s\t%s\n", r[0], r[1])
	}
	tw.Flush()
	return h.Color.Bold(heading) + "\n" + strings.TrimSuffix(b.String(), "\n")
}

func typeLabel(p *Parameter) string {
	if p.flag {
		return ""
	}
	label := p.typ.label()
	if p.nargs != 1 {
		label += "..."
	}
	return "[" + label + "]"
}

func optionLabel(p *Parameter) string {
	s := strings.Join(p.decls, ", ")
	if t := typeLabel(p); t != "" {
		s += " " + t
	}
	return s
}

func describe(p *Parameter) string {
	text := p.help
	if p.flag || p.required || p.def == nil {
		return text
	}
	def := fmt.Sprintf("(default: %s)", formatValue(p.def))
	if text == "" {
		return def
	}
	return text + " " + def
}
