// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Unbounded is the arity of a parameter that consumes every remaining token.
const Unbounded = -1

// CallbackFunc is invoked as soon as a parameter has consumed its tokens.
// Returning an error (usually from Exit) aborts the parse.
type CallbackFunc func(ctx *Context, value any) error

// ParamOption configures a Parameter at construction.
type ParamOption func(*Parameter)

// Parameter is one positional argument, option or flag of a command.
//
// Structural fields are fixed after construction. The satisfied/resolved/value
// fields hold per-parse state and are cleared by reset.
type Parameter struct {
	decls       []string
	name        string
	positional  bool
	flag        bool
	nargs       int
	def         any
	defFunc     func(*Context) (any, error)
	typ         ValueType
	typed       bool
	required    bool
	callback    CallbackFunc
	hidden      bool
	inheritOnly bool
	help        string
	owner       *Command

	choiceDefault bool // Choices was given; first choice defaults

	satisfied bool // tokens were consumed
	resolved  bool // value is final, from tokens or default
	value     any
}

// Arg declares a positional parameter. decl is its single declaration, which
// is also its name.
func Arg(decl string, opts ...ParamOption) *Parameter {
	return newParameter(splitDecls(decl), true, false, opts)
}

// Opt declares an option. decls lists its surface forms separated by spaces
// or commas, e.g. "-q --quantity".
func Opt(decls string, opts ...ParamOption) *Parameter {
	return newParameter(splitDecls(decls), false, false, opts)
}

// Flag declares a zero-arity option that is true iff one of its declarations
// appears. Nargs and Default options are ignored.
func Flag(decls string, opts ...ParamOption) *Parameter {
	return newParameter(splitDecls(decls), false, true, opts)
}

// VersionFlag returns a hidden --version flag that aborts with status 0 and
// the message "<program> <version>". version must be a semantic version.
func VersionFlag(program, version string) *Parameter {
	v, err := semver.NewVersion(version)
	if err != nil {
		definitionf("invalid version %q: %v", version, err)
	}
	msg := program + " " + v.String()
	return Flag("--version",
		Hidden(),
		Help("Show the version and exit"),
		Callback(func(*Context, any) error { return Exit(0, msg) }),
	)
}

// Name overrides the derived parameter name.
func Name(name string) ParamOption { return func(p *Parameter) { p.name = name } }

// Nargs sets the number of tokens consumed; Unbounded consumes the rest.
func Nargs(n int) ParamOption { return func(p *Parameter) { p.nargs = n } }

// Default sets a literal default. With an arity other than one it must be a
// slice. Unless Type is given, the value type is inferred from it.
func Default(v any) ParamOption {
	return func(p *Parameter) { p.def, p.defFunc = v, nil }
}

// DefaultFunc sets a default computed lazily, at most once per parse.
func DefaultFunc(f func(*Context) (any, error)) ParamOption {
	return func(p *Parameter) { p.def, p.defFunc = nil, f }
}

// Type sets the coercion applied to each consumed token.
func Type(t ValueType) ParamOption {
	return func(p *Parameter) { p.typ, p.typed = t, true }
}

// Choices restricts tokens to the listed values. The first choice becomes
// the default unless one is set; with an arity other than one the default is
// a one-element sequence.
func Choices(choices ...string) ParamOption {
	return func(p *Parameter) {
		p.typ, p.typed, p.choiceDefault = Choice(choices...), true, true
	}
}

// Required makes a missing parameter a parse error.
func Required() ParamOption { return func(p *Parameter) { p.required = true } }

// Callback registers a function run right after the parameter matched.
func Callback(f CallbackFunc) ParamOption { return func(p *Parameter) { p.callback = f } }

// Hidden keeps the parameter out of results, handler arguments and help.
func Hidden() ParamOption { return func(p *Parameter) { p.hidden = true } }

// InheritOnly keeps the parameter out of its own command's results; it only
// shows up in descendants that inherit it.
func InheritOnly() ParamOption { return func(p *Parameter) { p.inheritOnly = true } }

// Help sets the help text.
func Help(text string) ParamOption { return func(p *Parameter) { p.help = text } }

func splitDecls(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
}

func newParameter(decls []string, positional, flag bool, opts []ParamOption) *Parameter {
	p := &Parameter{decls: decls, positional: positional, flag: flag, nargs: 1}
	for _, o := range opts {
		o(p)
	}

	if positional {
		if len(decls) != 1 {
			definitionf("arguments take exactly 1 parameter declaration, got %d", len(decls))
		}
		if strings.HasPrefix(decls[0], "-") {
			definitionf("argument declaration %q must not start with a dash", decls[0])
		}
		if p.name == "" {
			p.name = decls[0]
		}
	} else {
		if len(decls) == 0 {
			definitionf("options take at least 1 parameter declaration")
		}
		for i, d := range decls {
			if len(d) < 2 || !strings.HasPrefix(d, "-") {
				definitionf("option declaration %q must start with a dash", d)
			}
			if slices.Contains(decls[:i], d) {
				definitionf("duplicate option declaration %q", d)
			}
		}
		if p.name == "" {
			p.name = optionName(decls)
		}
	}

	if flag {
		p.nargs, p.def, p.defFunc = 0, false, nil
		p.typ, p.typed = Bool, true
	}
	if p.nargs < Unbounded {
		definitionf("invalid nargs %d for %q", p.nargs, p.name)
	}

	if p.choiceDefault && len(p.typ.Choices) > 0 && p.def == nil && p.defFunc == nil && !flag {
		if p.nargs == 1 {
			p.def = p.typ.Choices[0]
		} else {
			p.def = []any{p.typ.Choices[0]}
		}
	}
	if p.def != nil && !flag {
		if !p.typed {
			if t, ok := inferType(p.def); ok {
				p.typ, p.typed = t, true
			}
		}
		if p.nargs != 1 {
			seq, ok := asSequence(p.def)
			if !ok {
				definitionf("default of %q must be a sequence when nargs is %d", p.name, p.nargs)
			}
			p.def = seq
		} else {
			p.def = normalizeScalar(p.def)
		}
	}
	return p
}

// optionName derives a name from the longest declaration: "--long-thing"
// becomes "long_thing" and "-t" becomes "t".
func optionName(decls []string) string {
	longest := decls[0]
	for _, d := range decls[1:] {
		if len(d) >= len(longest) {
			longest = d
		}
	}
	if strings.HasPrefix(longest, "--") {
		return strings.ToLower(strings.ReplaceAll(longest[2:], "-", "_"))
	}
	return longest[1:]
}

// matches reports whether token can be consumed by p now.
func (p *Parameter) matches(token string) bool {
	if p.satisfied {
		return false
	}
	if p.positional {
		return !strings.HasPrefix(token, "-")
	}
	return slices.Contains(p.decls, token)
}

// consume takes p's tokens from the front of ts. For options the option
// token itself is discarded first.
func (p *Parameter) consume(ctx *Context, ts *TokenStream) error {
	if !p.positional {
		ts.Next()
	}

	var value any
	switch {
	case p.flag:
		value = true
	case p.nargs == Unbounded:
		seq, err := p.coerceAll(ts.Drain())
		if err != nil {
			return err
		}
		value = seq
	default:
		if ts.Len() < p.nargs {
			return tooFewTokens(p.name, p.nargs, ts.Len())
		}
		seq, err := p.coerceAll(ts.Take(p.nargs))
		if err != nil {
			return err
		}
		if p.nargs == 1 {
			value = seq[0]
		} else {
			value = seq
		}
	}

	p.satisfied, p.resolved, p.value = true, true, value
	ctx.logf("%s: %s = %s", ctx.Command.Name(), p.name, formatValue(value))
	if p.callback != nil {
		return asExit(p.callback(ctx, value))
	}
	return nil
}

func (p *Parameter) coerceAll(raw []string) ([]any, error) {
	out := make([]any, len(raw))
	for i, r := range raw {
		v, err := p.typ.coerce(r)
		if err != nil {
			if len(p.typ.Choices) > 0 {
				return nil, invalidChoice(r, p.typ.Choices, err)
			}
			return nil, invalidType(p.name, p.typ.Name, err)
		}
		out[i] = v
	}
	return out, nil
}

// resolveDefault fixes the value of a parameter that consumed no tokens.
func (p *Parameter) resolveDefault(ctx *Context) error {
	if p.resolved {
		return nil
	}
	if p.required {
		return missingParameter(p.name)
	}
	v := p.def
	if p.defFunc != nil {
		var err error
		if v, err = p.defFunc(ctx); err != nil {
			return asExit(err)
		}
	} else if seq, ok := v.([]any); ok {
		v = slices.Clone(seq)
	}
	p.value, p.resolved = v, true
	return nil
}

func (p *Parameter) reset() {
	p.satisfied, p.resolved, p.value = false, false, nil
}

// Name returns the key under which the value appears in results.
func (p *Parameter) Name() string { return p.name }

// Decls returns the surface forms of the parameter.
func (p *Parameter) Decls() []string { return slices.Clone(p.decls) }

// Nargs returns the arity; Unbounded for parameters taking the rest.
func (p *Parameter) Nargs() int { return p.nargs }

// IsPositional reports whether p is matched by position.
func (p *Parameter) IsPositional() bool { return p.positional }

// IsFlag reports whether p is a zero-arity flag.
func (p *Parameter) IsFlag() bool { return p.flag }

func (p *Parameter) Required() bool    { return p.required }
func (p *Parameter) Hidden() bool      { return p.hidden }
func (p *Parameter) InheritOnly() bool { return p.inheritOnly }
func (p *Parameter) HelpText() string  { return p.help }

// TypeName returns the help label of the value type.
func (p *Parameter) TypeName() string { return p.typ.label() }

// DefaultValue returns the literal default, or nil for none or a function.
func (p *Parameter) DefaultValue() any { return p.def }

// Satisfied reports whether p consumed tokens in the current parse.
func (p *Parameter) Satisfied() bool { return p.satisfied }

// Value returns the current per-parse value.
func (p *Parameter) Value() any { return p.value }
