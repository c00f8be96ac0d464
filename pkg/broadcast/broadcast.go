// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package broadcast keeps a registry of named output sinks. A Registry can be
// passed around explicitly, or a process-wide one can be set up with Init and
// released with Teardown.
package broadcast

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"tailscale.com/util/mak"
)

// ErrUnknownSink is returned by Echo for a name that was never registered.
var ErrUnknownSink = errors.New("unknown sink")

// Registry maps sink names to writers. It is safe for concurrent use.
type Registry struct {
	mu    sync.Mutex
	sinks map[string]io.Writer
	order []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Register adds w under name, replacing any writer already registered there.
func (r *Registry) Register(name string, w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[name]; !ok {
		r.order = append(r.order, name)
	}
	mak.Set(&r.sinks, name, w)
}

// Unregister removes name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sinks[name]; !ok {
		return false
	}
	delete(r.sinks, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.order)
}

// Echo writes one line to the sink called name.
func (r *Registry) Echo(name string, a ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.sinks[name]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownSink, name)
	}
	_, err := fmt.Fprintln(w, a...)
	return err
}

// Broadcast writes one line to every sink, in registration order. Failing
// sinks do not stop the others.
func (r *Registry) Broadcast(a ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	line := fmt.Sprintln(a...)
	var errs []error
	for _, name := range r.order {
		if _, err := io.WriteString(r.sinks[name], line); err != nil {
			errs = append(errs, fmt.Errorf("sink %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

var (
	defaultMu sync.Mutex
	defaultR  *Registry
)

// Init creates the process-wide registry if needed and returns it.
func Init() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultR == nil {
		defaultR = New()
	}
	return defaultR
}

// Default returns the process-wide registry, nil before Init or after
// Teardown.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultR
}

// Teardown drops the process-wide registry.
func Teardown() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultR = nil
}
