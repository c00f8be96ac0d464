// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sahilm/fuzzy"
	"tailscale.com/util/mak"
	"tailscale.com/util/set"
)

// Handler receives the arguments of the command it is attached to.
type Handler interface {
	Invoke(ctx *Context, args *Args) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx *Context, args *Args) error

func (f HandlerFunc) Invoke(ctx *Context, args *Args) error { return f(ctx, args) }

// CommandOption configures a Command at construction.
type CommandOption func(*commandConfig)

type commandConfig struct {
	description string
	epilogue    string
	invocation  string
	hasDefault  bool
	inherits    []string
	treeView    string
}

// Description sets the one-line summary shown in help and subcommand lists.
func Description(s string) CommandOption {
	return func(c *commandConfig) { c.description = s }
}

// Epilogue sets text printed at the end of the command's help.
func Epilogue(s string) CommandOption {
	return func(c *commandConfig) { c.epilogue = s }
}

// DefaultInvocation sets a command line substituted when no tokens reach the
// command. It is split with shell quoting rules.
func DefaultInvocation(s string) CommandOption {
	return func(c *commandConfig) { c.invocation, c.hasDefault = s, true }
}

// Inherits pulls parameters of ancestors into the command, by declaration or
// by name. Only subcommands may inherit.
func Inherits(refs ...string) CommandOption {
	return func(c *commandConfig) { c.inherits = append(c.inherits, refs...) }
}

// TreeView turns one of the command's own flags, by declaration, into a flag
// that prints the command tree and exits.
func TreeView(decl string) CommandOption {
	return func(c *commandConfig) { c.treeView = decl }
}

// Command is a node of the command tree. Its structure is fixed once built;
// parsing only mutates the per-parse state of its parameters.
type Command struct {
	name        string
	description string
	epilogue    string
	handler     Handler
	parent      *Command

	params    ParameterSet
	children  map[string]*Command
	order     []*Command // insertion order, for help
	inherited set.Set[string]

	invocation []string // nil when unset
	treeView   *Parameter
	help       *Parameter
}

// NewCommand builds a root command. A nil handler makes a pure grouping node.
func NewCommand(name string, h Handler, params []*Parameter, opts ...CommandOption) *Command {
	cfg := buildCommandConfig(opts)
	if len(cfg.inherits) > 0 {
		definitionf("root command %q cannot inherit parameters", name)
	}
	return newCommand(nil, name, h, params, cfg)
}

// Subcommand builds a command and attaches it under c. Inherited references
// are resolved immediately, against c and its ancestors.
func (c *Command) Subcommand(name string, h Handler, params []*Parameter, opts ...CommandOption) *Command {
	if _, ok := c.children[name]; ok {
		definitionf("duplicate subcommand %q in %q", name, c.pathString())
	}
	if p, ok := c.params.byName[name]; ok && c.reports(p) {
		definitionf("subcommand %q clashes with parameter %q in %q", name, p.name, c.pathString())
	}
	sub := newCommand(c, name, h, params, buildCommandConfig(opts))
	mak.Set(&c.children, name, sub)
	c.order = append(c.order, sub)
	return sub
}

func buildCommandConfig(opts []CommandOption) commandConfig {
	var cfg commandConfig
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

func newCommand(parent *Command, name string, h Handler, params []*Parameter, cfg commandConfig) *Command {
	if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, " \t") {
		definitionf("invalid command name %q", name)
	}
	c := &Command{
		name:        name,
		description: cfg.description,
		epilogue:    cfg.epilogue,
		handler:     h,
		parent:      parent,
	}

	c.help = Flag("-h --help",
		Hidden(),
		Help("Show this help message and exit"),
		Callback(func(ctx *Context, _ any) error {
			ctx.Echo(ctx.App.help.RenderHelp(c))
			return Exit(0, "")
		}),
	)
	c.own(c.help)
	for _, p := range params {
		if p == nil {
			definitionf("nil parameter in %q", name)
		}
		c.own(p)
	}
	for _, ref := range cfg.inherits {
		c.inherit(ref)
	}

	if cfg.treeView != "" {
		p, ok := c.params.byDecl[cfg.treeView]
		if !ok || !p.flag || p.owner != c || p == c.help {
			definitionf("invalid tree-view target %q in %q", cfg.treeView, name)
		}
		c.treeView = p
	}
	if cfg.hasDefault {
		toks, err := shellquote.Split(cfg.invocation)
		if err != nil {
			definitionf("invalid default invocation %q: %v", cfg.invocation, err)
		}
		c.invocation = ExpandClusters(toks)
	}
	return c
}

// reports reports whether p gets an entry in c's results.
func (c *Command) reports(p *Parameter) bool {
	return !p.hidden && !(p.owner == c && p.inheritOnly)
}

func (c *Command) own(p *Parameter) {
	if p.owner != nil {
		definitionf("parameter %q already belongs to %q", p.name, p.owner.pathString())
	}
	c.params.add(p, true)
	p.owner = c
}

// inherit resolves ref against c's own set first, then strictly upward.
func (c *Command) inherit(ref string) {
	if _, ok := c.params.Lookup(ref); ok {
		return
	}
	for a := c.parent; a != nil; a = a.parent {
		p, ok := a.params.Lookup(ref)
		if !ok {
			continue
		}
		if p == a.help {
			definitionf("%q cannot inherit the help flag", c.name)
		}
		c.params.add(p, false)
		if c.inherited == nil {
			c.inherited = set.Set[string]{}
		}
		c.inherited.Add(p.name)
		return
	}
	definitionf("%q cannot inherit %q: no ancestor declares it", c.name, ref)
}

// parse scans ts for c. Once a subcommand name is seen the rest of the stream
// belongs to that subcommand.
func (c *Command) parse(ctx *Context, ts *TokenStream) (*Result, error) {
	ctx = ctx.with(c)
	if ts.Len() == 0 && c.invocation != nil {
		ctx.logf("%s: default invocation %q", c.name, c.invocation)
		ts.Push(c.invocation...)
	}

	var (
		sub       *Command
		subResult *Result
	)
	for ts.Len() > 0 {
		tok, _ := ts.Peek()
		if s, ok := c.children[tok]; ok {
			ts.Next()
			ctx.logf("%s: delegating to %s", c.name, s.name)
			r, err := s.parse(ctx, ts)
			if err != nil {
				return nil, err
			}
			sub, subResult = s, r
			break
		}

		p := c.params.match(tok)
		if p == nil {
			return nil, c.unrecognized(tok)
		}
		if err := p.consume(ctx, ts); err != nil {
			return nil, err
		}
		if p == c.treeView {
			for _, line := range ctx.App.help.RenderTree(c) {
				ctx.Echo(line)
			}
			return nil, Exit(0, "")
		}
	}

	for _, e := range c.params.entries {
		if e.owned && e.p.inheritOnly {
			continue
		}
		if err := e.p.resolveDefault(ctx); err != nil {
			return nil, err
		}
	}

	res := newResult()
	for _, e := range c.params.entries {
		if c.reports(e.p) {
			res.set(e.p.name, e.p.value)
		}
	}
	if sub != nil {
		res.set(sub.name, subResult)
	}
	return res, nil
}

func (c *Command) unrecognized(tok string) error {
	var candidates []string
	for _, s := range c.order {
		candidates = append(candidates, s.name)
	}
	for _, e := range c.params.entries {
		if !e.p.positional && !e.p.satisfied && (!e.p.hidden || e.p == c.help) {
			candidates = append(candidates, e.p.decls...)
		}
	}
	var suggestion string
	if matches := fuzzy.Find(tok, candidates); len(matches) > 0 {
		suggestion = matches[0].Str
	}
	return unrecognizedToken(tok, suggestion)
}

// invoke calls c's handler with the non-subcommand entries of res, then
// descends into every subcommand entry.
func (c *Command) invoke(ctx *Context, res *Result) error {
	ctx = ctx.with(c)
	args := newArgs()
	for k, v := range res.All() {
		if _, ok := c.children[k]; !ok {
			args.set(k, v)
		}
	}
	if c.handler != nil {
		ctx.logf("%s: invoking with %d argument(s)", c.pathString(), args.Len())
		if err := c.handler.Invoke(ctx, args); err != nil {
			return asExit(err)
		}
	}
	for k, v := range res.All() {
		s, ok := c.children[k]
		if !ok {
			continue
		}
		sr, err := asResult(v)
		if err != nil {
			return asExit(fmt.Errorf("subcommand %q: %w", k, err))
		}
		if err := s.invoke(ctx, sr); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the per-parse state of every parameter c owns and recurses
// into all subcommands, selected or not.
func (c *Command) Reset() {
	for _, e := range c.params.entries {
		if e.owned {
			e.p.reset()
		}
	}
	for _, s := range c.order {
		s.Reset()
	}
}

// Name returns the command name.
func (c *Command) Name() string { return c.name }

// Path returns the names from the root down to c.
func (c *Command) Path() []string {
	var path []string
	for n := c; n != nil; n = n.parent {
		path = append(path, n.name)
	}
	slices.Reverse(path)
	return path
}

func (c *Command) pathString() string { return strings.Join(c.Path(), " ") }

func (c *Command) Description() string { return c.description }
func (c *Command) Epilogue() string    { return c.epilogue }

// Parent returns the enclosing command, nil for a root.
func (c *Command) Parent() *Command { return c.parent }

// Root returns the top of c's tree.
func (c *Command) Root() *Command {
	n := c
	for n.parent != nil {
		n = n.parent
	}
	return n
}

// Params returns c's parameter set, inherited entries included.
func (c *Command) Params() *ParameterSet { return &c.params }

// Subcommands returns the direct children in insertion order.
func (c *Command) Subcommands() []*Command { return slices.Clone(c.order) }

// Child returns the direct subcommand called name.
func (c *Command) Child(name string) (*Command, bool) {
	s, ok := c.children[name]
	return s, ok
}

// InheritedNames returns the names of the parameters c took from ancestors,
// in the order they were requested.
func (c *Command) InheritedNames() []string {
	var names []string
	for _, e := range c.params.entries {
		if !e.owned {
			names = append(names, e.p.name)
		}
	}
	return names
}

// IsInherited reports whether the parameter called name came from an ancestor.
func (c *Command) IsInherited(name string) bool { return c.inherited.Contains(name) }

// DefaultTokens returns the tokenized default invocation, nil if none.
func (c *Command) DefaultTokens() []string { return slices.Clone(c.invocation) }

// HasHandler reports whether c does anything beyond grouping subcommands.
func (c *Command) HasHandler() bool { return c.handler != nil }
