// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import "tailscale.com/util/mak"

// entry is a parameter slot in a set. Inherited entries reference a
// Parameter owned by an ancestor; only the owner's slot has owned set.
type entry struct {
	p     *Parameter
	owned bool
}

// ParameterSet is the ordered parameter collection of one command.
type ParameterSet struct {
	entries []entry
	byDecl  map[string]*Parameter // option declarations
	byName  map[string]*Parameter
}

func (s *ParameterSet) add(p *Parameter, owned bool) {
	if _, ok := s.byName[p.name]; ok {
		definitionf("duplicate parameter name %q", p.name)
	}
	if !p.positional {
		for _, d := range p.decls {
			if _, ok := s.byDecl[d]; ok {
				definitionf("duplicate parameter declaration %q", d)
			}
		}
		for _, d := range p.decls {
			mak.Set(&s.byDecl, d, p)
		}
	}
	mak.Set(&s.byName, p.name, p)
	s.entries = append(s.entries, entry{p: p, owned: owned})
}

// Lookup finds a parameter by option declaration or by name.
func (s *ParameterSet) Lookup(ref string) (*Parameter, bool) {
	if p, ok := s.byDecl[ref]; ok {
		return p, true
	}
	p, ok := s.byName[ref]
	return p, ok
}

// match returns the parameter that should consume token, or nil. Options are
// looked up by declaration first; otherwise the first positional, in
// declaration order, that still accepts tokens wins.
func (s *ParameterSet) match(token string) *Parameter {
	if p, ok := s.byDecl[token]; ok && p.matches(token) {
		return p
	}
	for _, e := range s.entries {
		if e.p.positional && e.p.matches(token) {
			return e.p
		}
	}
	return nil
}

// All returns every parameter in declaration order, inherited ones included.
func (s *ParameterSet) All() []*Parameter {
	out := make([]*Parameter, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.p
	}
	return out
}

// Positionals returns the positional parameters in declaration order.
func (s *ParameterSet) Positionals() []*Parameter {
	return s.filter(func(p *Parameter) bool { return p.positional })
}

// Options returns the options and flags in declaration order.
func (s *ParameterSet) Options() []*Parameter {
	return s.filter(func(p *Parameter) bool { return !p.positional })
}

// Unsatisfied returns the parameters that consumed no tokens this parse.
func (s *ParameterSet) Unsatisfied() []*Parameter {
	return s.filter(func(p *Parameter) bool { return !p.satisfied })
}

// Len returns the number of parameters.
func (s *ParameterSet) Len() int { return len(s.entries) }

func (s *ParameterSet) filter(keep func(*Parameter) bool) []*Parameter {
	var out []*Parameter
	for _, e := range s.entries {
		if keep(e.p) {
			out = append(out, e.p)
		}
	}
	return out
}
