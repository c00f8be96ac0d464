// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package clipfile builds clip command trees from TOML, YAML or JSON
// definition files.
package clipfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/clip/pkg/clip"
	"gopkg.in/yaml.v3"
)

// DefaultName is the file Find looks for.
const DefaultName = "clip.toml"

// Formats understood by Decode.
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Definition describes one command and, recursively, its subcommands.
type Definition struct {
	Name        string       `toml:"name" yaml:"name" json:"name"`
	Description string       `toml:"description,omitempty" yaml:"description,omitempty" json:"description,omitempty"`
	Epilogue    string       `toml:"epilogue,omitempty" yaml:"epilogue,omitempty" json:"epilogue,omitempty"`
	Default     string       `toml:"default,omitempty" yaml:"default,omitempty" json:"default,omitempty"`
	TreeView    string       `toml:"tree_view,omitempty" yaml:"tree_view,omitempty" json:"tree_view,omitempty"`
	Version     string       `toml:"version,omitempty" yaml:"version,omitempty" json:"version,omitempty"`
	Inherits    []string     `toml:"inherits,omitempty" yaml:"inherits,omitempty" json:"inherits,omitempty"`
	Params      []ParamDef   `toml:"params,omitempty" yaml:"params,omitempty" json:"params,omitempty"`
	Commands    []Definition `toml:"commands,omitempty" yaml:"commands,omitempty" json:"commands,omitempty"`
}

// ParamDef describes one parameter. Kind is "arg", "opt" (the default) or
// "flag"; Decls is a space or comma separated declaration list.
type ParamDef struct {
	Kind        string   `toml:"kind,omitempty" yaml:"kind,omitempty" json:"kind,omitempty"`
	Decls       string   `toml:"decls" yaml:"decls" json:"decls"`
	Name        string   `toml:"name,omitempty" yaml:"name,omitempty" json:"name,omitempty"`
	Nargs       *int     `toml:"nargs,omitempty" yaml:"nargs,omitempty" json:"nargs,omitempty"`
	Type        string   `toml:"type,omitempty" yaml:"type,omitempty" json:"type,omitempty"`
	Choices     []string `toml:"choices,omitempty" yaml:"choices,omitempty" json:"choices,omitempty"`
	Default     any      `toml:"default,omitempty" yaml:"default,omitempty" json:"default,omitempty"`
	Required    bool     `toml:"required,omitempty" yaml:"required,omitempty" json:"required,omitempty"`
	Hidden      bool     `toml:"hidden,omitempty" yaml:"hidden,omitempty" json:"hidden,omitempty"`
	InheritOnly bool     `toml:"inherit_only,omitempty" yaml:"inherit_only,omitempty" json:"inherit_only,omitempty"`
	Help        string   `toml:"help,omitempty" yaml:"help,omitempty" json:"help,omitempty"`
}

// FormatOf picks a format from a file extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown definition format for %s", path)
}

// Load reads and decodes the definition at path.
func Load(path string) (*Definition, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	def, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return def, nil
}

// Decode reads a definition. Unknown keys are errors in every format.
func Decode(r io.Reader, format string) (*Definition, error) {
	var def Definition
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&def)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		dec.UseNumber()
		if err := dec.Decode(&def); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown definition format %q", format)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if d.Name == "" {
		return errors.New("command without a name")
	}
	for _, p := range d.Params {
		switch p.Kind {
		case "", "arg", "opt", "flag":
		default:
			return fmt.Errorf("command %q: unknown parameter kind %q", d.Name, p.Kind)
		}
		if p.Type != "" {
			if _, ok := clip.TypeByName(p.Type); !ok {
				return fmt.Errorf("command %q: unknown type %q", d.Name, p.Type)
			}
		}
	}
	for i := range d.Commands {
		if err := d.Commands[i].validate(); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
	}
	return nil
}

// Find looks for DefaultName in startDir and its parents.
func Find(startDir string) (string, error) {
	dir := filepath.Clean(startDir)
	for {
		path := filepath.Join(dir, DefaultName)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", os.ErrNotExist
}

// Handlers maps a command path such as "shopping add" to its handler.
type Handlers map[string]clip.Handler

// Build turns def into a root command. Commands without an entry in handlers
// get fallback, which may be nil. Definition mistakes that clip reports by
// panicking are returned as errors.
func Build(def *Definition, handlers Handlers, fallback clip.Handler) (root *clip.Command, err error) {
	defer func() {
		if r := recover(); r != nil {
			de, ok := r.(*clip.DefinitionError)
			if !ok {
				panic(r)
			}
			root, err = nil, de
		}
	}()

	params, err := def.params()
	if err != nil {
		return nil, err
	}
	if def.Version != "" {
		params = append(params, clip.VersionFlag(def.Name, def.Version))
	}
	root = clip.NewCommand(def.Name, pick(handlers, fallback, def.Name), params, def.options()...)
	if err := buildChildren(root, def, handlers, fallback); err != nil {
		return nil, err
	}
	return root, nil
}

func buildChildren(parent *clip.Command, def *Definition, handlers Handlers, fallback clip.Handler) error {
	for i := range def.Commands {
		sd := &def.Commands[i]
		params, err := sd.params()
		if err != nil {
			return err
		}
		path := strings.Join(append(parent.Path(), sd.Name), " ")
		sub := parent.Subcommand(sd.Name, pick(handlers, fallback, path), params, sd.options()...)
		if err := buildChildren(sub, sd, handlers, fallback); err != nil {
			return err
		}
	}
	return nil
}

func pick(handlers Handlers, fallback clip.Handler, path string) clip.Handler {
	if h, ok := handlers[path]; ok {
		return h
	}
	return fallback
}

func (d *Definition) options() []clip.CommandOption {
	var opts []clip.CommandOption
	if d.Description != "" {
		opts = append(opts, clip.Description(d.Description))
	}
	if d.Epilogue != "" {
		opts = append(opts, clip.Epilogue(d.Epilogue))
	}
	if d.Default != "" {
		opts = append(opts, clip.DefaultInvocation(d.Default))
	}
	if d.TreeView != "" {
		opts = append(opts, clip.TreeView(d.TreeView))
	}
	if len(d.Inherits) > 0 {
		opts = append(opts, clip.Inherits(d.Inherits...))
	}
	return opts
}

func (d *Definition) params() ([]*clip.Parameter, error) {
	out := make([]*clip.Parameter, 0, len(d.Params))
	for _, pd := range d.Params {
		p, err := pd.build()
		if err != nil {
			return nil, fmt.Errorf("command %q: %w", d.Name, err)
		}
		out = append(out, p)
	}
	return out, nil
}

func (pd ParamDef) build() (*clip.Parameter, error) {
	var opts []clip.ParamOption
	if pd.Name != "" {
		opts = append(opts, clip.Name(pd.Name))
	}
	if pd.Nargs != nil {
		opts = append(opts, clip.Nargs(*pd.Nargs))
	}
	if pd.Type != "" {
		t, ok := clip.TypeByName(pd.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %q", pd.Type)
		}
		opts = append(opts, clip.Type(t))
	}
	if len(pd.Choices) > 0 {
		opts = append(opts, clip.Choices(slices.Clone(pd.Choices)...))
	}
	if pd.Default != nil {
		opts = append(opts, clip.Default(normalize(pd.Default)))
	}
	if pd.Required {
		opts = append(opts, clip.Required())
	}
	if pd.Hidden {
		opts = append(opts, clip.Hidden())
	}
	if pd.InheritOnly {
		opts = append(opts, clip.InheritOnly())
	}
	if pd.Help != "" {
		opts = append(opts, clip.Help(pd.Help))
	}

	switch pd.Kind {
	case "arg":
		return clip.Arg(pd.Decls, opts...), nil
	case "flag":
		return clip.Flag(pd.Decls, opts...), nil
	case "", "opt":
		return clip.Opt(pd.Decls, opts...), nil
	}
	return nil, fmt.Errorf("unknown parameter kind %q", pd.Kind)
}

// normalize turns decoded numbers into int or float64.
func normalize(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return f
	case int64:
		return int(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = normalize(e)
		}
		return out
	}
	return v
}
