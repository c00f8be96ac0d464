// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package prompt asks the user for confirmations and values on a terminal,
// for use inside command handlers.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yeetrun/clip/pkg/clip"
	"github.com/yeetrun/clip/pkg/tui"
	"golang.org/x/term"
)

// InputFunc shows prompt and returns one line of input without the newline.
type InputFunc func(prompt string) (string, error)

type config struct {
	def       string
	hasDef    bool
	abort     bool
	typ       clip.ValueType
	verify    bool
	invisible bool
	skip      bool
	in        io.Reader
	out       io.Writer
	input     InputFunc
}

// Option configures Confirm or Ask.
type Option func(*config)

// Default is used when the input is empty. For Confirm it must be a yes or
// no answer.
func Default(v string) Option {
	return func(c *config) { c.def, c.hasDef = v, true }
}

// Abort makes a "no" to Confirm a status 1 abort.
func Abort() Option { return func(c *config) { c.abort = true } }

// Type coerces the answer to Ask; failures ask again.
func Type(t clip.ValueType) Option { return func(c *config) { c.typ = t } }

// Verify asks a second time and requires both answers to match.
func Verify() Option { return func(c *config) { c.verify = true } }

// Invisible hides the typed input when reading from a terminal.
func Invisible() Option { return func(c *config) { c.invisible = true } }

// Skip lets Ask return nil on empty input.
func Skip() Option { return func(c *config) { c.skip = true } }

// WithIO reads answers from r and writes prompts and complaints to w.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(c *config) { c.in, c.out = r, w }
}

// WithInput replaces line reading, e.g. when embedding in another UI.
// Complaints still go to the configured writer.
func WithInput(f InputFunc) Option {
	return func(c *config) { c.input = f }
}

func newConfig(opts []Option) *config {
	c := &config{in: os.Stdin, out: os.Stdout}
	for _, o := range opts {
		o(c)
	}
	if c.input == nil {
		c.input = c.readLine()
	}
	return c
}

func (c *config) readLine() InputFunc {
	br := bufio.NewReader(c.in)
	return func(prompt string) (string, error) {
		fmt.Fprint(c.out, prompt)
		if c.invisible {
			if f, ok := c.in.(*os.File); ok && tui.IsTerminal(f) {
				b, err := term.ReadPassword(int(f.Fd()))
				fmt.Fprintln(c.out)
				return string(b), err
			}
		}
		line, err := br.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

func (c *config) complain(msg string) {
	fmt.Fprintln(c.out, tui.ForWriter(c.out).Red(msg))
}

func aborted(err error) error {
	return &clip.ExitError{Status: 1, Message: "Error: Aborted!", Err: err}
}

// Confirm asks a yes/no question. y, yes, n and no are accepted in any case;
// anything else is complained about and asked again.
func Confirm(text string, opts ...Option) (bool, error) {
	c := newConfig(opts)

	suffix := "[y/n]"
	var def *bool
	if c.hasDef {
		v, ok := parseYesNo(c.def)
		if !ok {
			return false, fmt.Errorf("invalid default %q for a confirmation", c.def)
		}
		def = &v
		if v {
			suffix = "[Y/n]"
		} else {
			suffix = "[y/N]"
		}
	}

	for {
		line, err := c.input(text + " " + suffix + ": ")
		if err != nil {
			return false, aborted(err)
		}
		var answer bool
		if strings.TrimSpace(line) == "" && def != nil {
			answer = *def
		} else if v, ok := parseYesNo(line); ok {
			answer = v
		} else {
			c.complain("Error: Please answer yes or no.")
			continue
		}
		if !answer && c.abort {
			return false, aborted(nil)
		}
		return answer, nil
	}
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes":
		return true, true
	case "n", "no":
		return false, true
	}
	return false, false
}

// Ask prompts for a value. Empty input takes the default, returns nil with
// Skip, and is asked again otherwise.
func Ask(text string, opts ...Option) (any, error) {
	c := newConfig(opts)

	prompt := text
	if c.hasDef && !c.invisible {
		prompt += " [" + c.def + "]"
	}
	prompt += ": "

	for {
		v, raw, retry, err := c.askOnce(prompt)
		if err != nil {
			return nil, err
		}
		if retry {
			continue
		}
		if v == nil || !c.verify {
			return v, nil
		}
		// Answers are compared as typed; coerced values need not be comparable.
		_, again, retry, err := c.askOnce("Repeat for confirmation: ")
		if err != nil {
			return nil, err
		}
		if !retry && again == raw {
			return v, nil
		}
		c.complain("Error: The two entered values do not match.")
	}
}

// askOnce reads and coerces one answer. raw is the line that was coerced,
// after default substitution; retry reports a complaint was shown.
func (c *config) askOnce(prompt string) (v any, raw string, retry bool, err error) {
	line, err := c.input(prompt)
	if err != nil {
		return nil, "", false, aborted(err)
	}
	if line == "" {
		switch {
		case c.hasDef:
			line = c.def
		case c.skip:
			return nil, "", false, nil
		default:
			c.complain("Error: A value is required.")
			return nil, "", true, nil
		}
	}
	if c.typ.Parse == nil {
		return line, line, false, nil
	}
	v, err = c.typ.Parse(line)
	if err != nil {
		c.complain(fmt.Sprintf("Error: %q is not a valid %s.", line, c.typ.Name))
		return nil, "", true, nil
	}
	return v, line, false, nil
}
