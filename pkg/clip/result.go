// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"fmt"
	"iter"
	"slices"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// bag is an insertion-ordered mapping from parameter name to value.
type bag struct {
	values *orderedmap.OrderedMap[string, any]
}

func newBag() bag {
	return bag{values: orderedmap.New[string, any]()}
}

func (b *bag) set(key string, v any) {
	b.values.Set(key, v)
}

// Get returns the value stored under key.
func (b *bag) Get(key string) (any, bool) {
	return b.values.Get(key)
}

// Len returns the number of entries.
func (b *bag) Len() int { return b.values.Len() }

// Keys returns the keys in insertion order.
func (b *bag) Keys() []string {
	keys := make([]string, 0, b.values.Len())
	for p := b.values.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All iterates over the entries in insertion order.
func (b *bag) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for p := b.values.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Map returns a plain copy, nested results converted to maps.
func (b *bag) Map() map[string]any {
	m := make(map[string]any, b.values.Len())
	for k, v := range b.All() {
		m[k] = plain(v)
	}
	return m
}

func (b *bag) MarshalJSON() ([]byte, error) {
	return b.values.MarshalJSON()
}

// MarshalYAML encodes the bag as a mapping that keeps insertion order.
func (b *bag) MarshalYAML() (any, error) {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range b.All() {
		var kn, vn yaml.Node
		if err := kn.Encode(k); err != nil {
			return nil, err
		}
		if err := vn.Encode(v); err != nil {
			return nil, fmt.Errorf("encoding %q: %w", k, err)
		}
		n.Content = append(n.Content, &kn, &vn)
	}
	return n, nil
}

func plain(v any) any {
	switch v := v.(type) {
	case *Result:
		return v.Map()
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = plain(e)
		}
		return out
	}
	return v
}

// Result is the tree produced by a parse: parameter names map to scalars or
// []any sequences, and the selected subcommand's name maps to its own
// *Result.
type Result struct {
	bag
}

func newResult() *Result { return &Result{bag: newBag()} }

// NewResult builds a result tree from plain maps, for invoking without
// parsing. Keys are ordered lexically and nested maps become nested results.
func NewResult(m map[string]any) *Result {
	r := newResult()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		v := m[k]
		if sub, ok := v.(map[string]any); ok {
			r.set(k, NewResult(sub))
			continue
		}
		r.set(k, v)
	}
	return r
}

// Sub returns the nested result of the subcommand called name.
func (r *Result) Sub(name string) (*Result, bool) {
	v, ok := r.Get(name)
	if !ok {
		return nil, false
	}
	sub, ok := v.(*Result)
	return sub, ok
}

func asResult(v any) (*Result, error) {
	switch v := v.(type) {
	case *Result:
		return v, nil
	case map[string]any:
		return NewResult(v), nil
	}
	return nil, fmt.Errorf("expected nested result, got %T", v)
}

// Args is the argument bag handed to a Handler: the command's own visible
// parameters followed by the ones it inherited.
type Args struct {
	bag
}

func newArgs() *Args { return &Args{bag: newBag()} }

// NewArgs builds a bag from name/value pairs, for calling handlers directly.
func NewArgs(kv ...any) *Args {
	if len(kv)%2 != 0 {
		panic("clip: NewArgs needs name/value pairs")
	}
	a := newArgs()
	for i := 0; i < len(kv); i += 2 {
		a.set(fmt.Sprint(kv[i]), kv[i+1])
	}
	return a
}

// Value returns the raw value of name, nil if absent.
func (a *Args) Value(name string) any {
	v, _ := a.Get(name)
	return v
}

// String returns name as a string; non-string values are formatted.
func (a *Args) String(name string) string {
	switch v := a.Value(name).(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return formatValue(v)
	}
}

// Int returns name as an int, 0 when absent or not an int.
func (a *Args) Int(name string) int {
	i, _ := a.Value(name).(int)
	return i
}

// Float returns name as a float64. Int values are widened.
func (a *Args) Float(name string) float64 {
	switch v := a.Value(name).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Bool returns name as a bool, false when absent.
func (a *Args) Bool(name string) bool {
	b, _ := a.Value(name).(bool)
	return b
}

// Duration returns name as a time.Duration.
func (a *Args) Duration(name string) time.Duration {
	d, _ := a.Value(name).(time.Duration)
	return d
}

// Strings returns a sequence value with every element formatted as text.
func (a *Args) Strings(name string) []string {
	seq, _ := a.Value(name).([]any)
	if seq == nil {
		return nil
	}
	out := make([]string, len(seq))
	for i, e := range seq {
		if s, ok := e.(string); ok {
			out[i] = s
		} else {
			out[i] = fmt.Sprint(e)
		}
	}
	return out
}

// Ints returns the int elements of a sequence value.
func (a *Args) Ints(name string) []int {
	seq, _ := a.Value(name).([]any)
	var out []int
	for _, e := range seq {
		if i, ok := e.(int); ok {
			out = append(out, i)
		}
	}
	return out
}

// Floats returns a sequence value as float64s, widening ints.
func (a *Args) Floats(name string) []float64 {
	seq, _ := a.Value(name).([]any)
	var out []float64
	for _, e := range seq {
		switch v := e.(type) {
		case float64:
			out = append(out, v)
		case int:
			out = append(out, float64(v))
		}
	}
	return out
}
