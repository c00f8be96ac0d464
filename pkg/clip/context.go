// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"context"
	"fmt"
)

// Context is handed to handlers, parameter callbacks and default functions.
// It carries the caller's context.Context, the running Application and the
// Command whose tokens are being scanned or whose handler is being invoked.
type Context struct {
	context.Context
	App     *Application
	Command *Command
}

func (c *Context) with(cmd *Command) *Context {
	cp := *c
	cp.Command = cmd
	return &cp
}

// Echo writes one line to the application's output sink.
func (c *Context) Echo(a ...any) {
	c.App.Echo(a...)
}

// Echof formats and writes one line to the application's output sink.
func (c *Context) Echof(format string, a ...any) {
	c.App.Echo(fmt.Sprintf(format, a...))
}

// EchoErr writes one line to the application's error sink.
func (c *Context) EchoErr(a ...any) {
	c.App.EchoErr(a...)
}

func (c *Context) logf(format string, a ...any) {
	c.App.logf(format, a...)
}

// Broadcast writes one line to every sink of the application's registry, or
// to the output sink when no registry is configured.
func (c *Context) Broadcast(a ...any) error {
	if r := c.App.registry; r != nil {
		return r.Broadcast(a...)
	}
	c.App.Echo(a...)
	return nil
}
