// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kballard/go-shellquote"
	"github.com/yeetrun/clip/pkg/broadcast"
	"github.com/yeetrun/clip/pkg/tui"
)

// LogFunc receives parse and invocation traces.
type LogFunc func(format string, a ...any)

// Option configures an Application.
type Option func(*Application)

// WithName sets the program name used for sink registration. It defaults to
// the main command's name.
func WithName(name string) Option {
	return func(a *Application) { a.name = name }
}

// WithOutput sets the sink for echoed lines, help and status 0 messages.
func WithOutput(w io.Writer) Option {
	return func(a *Application) { a.out = w }
}

// WithErrorOutput sets the sink for error messages.
func WithErrorOutput(w io.Writer) Option {
	return func(a *Application) { a.errOut = w }
}

// WithHelp replaces the help renderer.
func WithHelp(h HelpRenderer) Option {
	return func(a *Application) { a.help = h }
}

// WithLogf installs a trace logger, e.g. log.Printf.
func WithLogf(f LogFunc) Option {
	return func(a *Application) { a.logFn = f }
}

// WithColor forces colour on or off instead of detecting a terminal.
func WithColor(enabled bool) Option {
	return func(a *Application) {
		a.color, a.errColor = tui.NewColorizer(enabled), tui.NewColorizer(enabled)
		a.colorSet = true
	}
}

// WithRegistry registers the output sink in r under the application name
// once a main command is assigned. Context.Broadcast then writes to every
// sink of r.
func WithRegistry(r *broadcast.Registry) Option {
	return func(a *Application) { a.registry = r }
}

// Application drives one command tree. It is not safe for concurrent parses;
// independent Applications are.
type Application struct {
	name     string
	main     *Command
	out      io.Writer
	errOut   io.Writer
	help     HelpRenderer
	logFn    LogFunc
	color    tui.Colorizer
	errColor tui.Colorizer
	colorSet bool
	registry *broadcast.Registry
}

// New returns an Application writing to os.Stdout and os.Stderr.
func New(opts ...Option) *Application {
	a := &Application{out: os.Stdout, errOut: os.Stderr}
	for _, o := range opts {
		o(a)
	}
	if !a.colorSet {
		a.color, a.errColor = tui.ForWriter(a.out), tui.ForWriter(a.errOut)
	}
	if a.help == nil {
		a.help = DefaultHelp{Color: a.color}
	}
	return a
}

// SetMain assigns the root command. Assigning twice panics.
func (a *Application) SetMain(c *Command) {
	if a.main != nil {
		definitionf("main command already assigned (%q)", a.main.name)
	}
	if c == nil || c.parent != nil {
		definitionf("main command must be a root command")
	}
	a.main = c
	if a.registry != nil {
		a.registry.Register(a.Name(), a.out)
	}
}

// Main builds a root command and assigns it.
func (a *Application) Main(name string, h Handler, params []*Parameter, opts ...CommandOption) *Command {
	c := NewCommand(name, h, params, opts...)
	a.SetMain(c)
	return c
}

// Command returns the main command, nil if unassigned.
func (a *Application) Command() *Command { return a.main }

// Name returns the program name.
func (a *Application) Name() string {
	switch {
	case a.name != "":
		return a.name
	case a.main != nil:
		return a.main.name
	}
	return filepath.Base(os.Args[0])
}

var errNoMain = &ExitError{Status: 1, Message: "Error: No main command assigned.", Err: ErrNoMain}

// Parse expands clustered short options in tokens and parses them against
// the main command. Parameter state is left in place until Reset.
func (a *Application) Parse(tokens []string) (*Result, error) {
	return a.ParseContext(context.Background(), tokens)
}

func (a *Application) ParseContext(ctx context.Context, tokens []string) (*Result, error) {
	if a.main == nil {
		return nil, errNoMain
	}
	a.logf("parsing %q", tokens)
	return a.main.parse(a.context(ctx), NewTokenStream(ExpandClusters(tokens)))
}

// Invoke calls the handlers along the path recorded in res.
func (a *Application) Invoke(res *Result) error {
	return a.InvokeContext(context.Background(), res)
}

func (a *Application) InvokeContext(ctx context.Context, res *Result) error {
	if a.main == nil {
		return errNoMain
	}
	if res == nil {
		return asExit(errors.New("nil result"))
	}
	return a.main.invoke(a.context(ctx), res)
}

// Reset clears the per-parse state of the whole tree.
func (a *Application) Reset() error {
	if a.main == nil {
		return errNoMain
	}
	a.main.Reset()
	return nil
}

// Run parses and invokes tokens, or os.Args[1:] when tokens is nil. The tree
// is reset afterwards whatever happened, so the Application can run again.
// An abort's message is echoed (status 0 to the output sink, otherwise to
// the error sink) and the abort is returned.
func (a *Application) Run(tokens []string) error {
	return a.RunContext(context.Background(), tokens)
}

func (a *Application) RunContext(ctx context.Context, tokens []string) error {
	if tokens == nil {
		tokens = os.Args[1:]
	}
	err := a.run(ctx, tokens)
	a.report(err)
	return err
}

// RunString splits line with shell quoting rules and runs the tokens.
func (a *Application) RunString(line string) error {
	tokens, err := shellquote.Split(line)
	if err != nil {
		err = &ExitError{
			Status:  1,
			Message: fmt.Sprintf("Error: Cannot split command line: %v.", err),
			Err:     err,
		}
		a.report(err)
		return err
	}
	if tokens == nil {
		tokens = []string{}
	}
	return a.RunContext(context.Background(), tokens)
}

func (a *Application) run(ctx context.Context, tokens []string) error {
	if a.main == nil {
		return errNoMain
	}
	defer a.main.Reset()
	res, err := a.ParseContext(ctx, tokens)
	if err != nil {
		return err
	}
	return a.InvokeContext(ctx, res)
}

func (a *Application) report(err error) {
	var ee *ExitError
	if !errors.As(err, &ee) || ee.Message == "" {
		return
	}
	if ee.Status == 0 {
		a.Echo(ee.Message)
		return
	}
	a.EchoErr(a.errColor.Red(ee.Message))
}

// Output returns the output sink.
func (a *Application) Output() io.Writer { return a.out }

// ErrorOutput returns the error sink.
func (a *Application) ErrorOutput() io.Writer { return a.errOut }

// Echo writes one line to the output sink.
func (a *Application) Echo(v ...any) {
	fmt.Fprintln(a.out, v...)
}

// EchoErr writes one line to the error sink.
func (a *Application) EchoErr(v ...any) {
	fmt.Fprintln(a.errOut, v...)
}

func (a *Application) logf(format string, v ...any) {
	if a.logFn != nil {
		a.logFn(format, v...)
	}
}

func (a *Application) context(ctx context.Context) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{Context: ctx, App: a, Command: a.main}
}
