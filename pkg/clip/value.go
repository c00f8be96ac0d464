// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ValueType coerces a raw token into a typed value. The zero ValueType keeps
// tokens as strings.
type ValueType struct {
	// Name is shown in help and in InvalidType messages (e.g. "int").
	Name string
	// Parse converts one raw token.
	Parse func(string) (any, error)
	// Choices lists the accepted tokens of a Choice type.
	Choices []string
}

// Built-in value types.
var (
	String = ValueType{Name: "text", Parse: func(s string) (any, error) { return s, nil }}

	Int = ValueType{Name: "int", Parse: func(s string) (any, error) {
		i, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid int value %q: %w", s, err)
		}
		return i, nil
	}}

	Float = ValueType{Name: "float", Parse: func(s string) (any, error) {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid float value %q: %w", s, err)
		}
		return f, nil
	}}

	Bool = ValueType{Name: "bool", Parse: func(s string) (any, error) {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("invalid bool value %q: %w", s, err)
		}
		return b, nil
	}}

	Duration = ValueType{Name: "duration", Parse: func(s string) (any, error) {
		d, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		return d, nil
	}}
)

// Choice returns a type accepting only the listed tokens.
func Choice(choices ...string) ValueType {
	if len(choices) == 0 {
		definitionf("choice type needs at least one choice")
	}
	choices = slices.Clone(choices)
	return ValueType{
		Name:    "one of " + strings.Join(choices, ", "),
		Choices: choices,
		Parse: func(s string) (any, error) {
			if !slices.Contains(choices, s) {
				return nil, fmt.Errorf("%q is not a valid choice", s)
			}
			return s, nil
		},
	}
}

// TypeByName returns the built-in type with the given help name.
func TypeByName(name string) (ValueType, bool) {
	switch name {
	case "", "text", "string", "str":
		return String, true
	case "int", "integer":
		return Int, true
	case "float", "number":
		return Float, true
	case "bool", "boolean":
		return Bool, true
	case "duration":
		return Duration, true
	}
	return ValueType{}, false
}

func (t ValueType) label() string {
	if len(t.Choices) > 0 {
		return strings.Join(t.Choices, "|")
	}
	if t.Name == "" {
		return String.Name
	}
	return t.Name
}

func (t ValueType) coerce(raw string) (any, error) {
	if t.Parse == nil {
		return raw, nil
	}
	return t.Parse(raw)
}

// inferType derives a value type from the Go type of a default literal.
func inferType(v any) (ValueType, bool) {
	switch d := v.(type) {
	case string, []string:
		return String, true
	case int, int64, []int, []int64:
		return Int, true
	case float64, []float64:
		return Float, true
	case bool, []bool:
		return Bool, true
	case time.Duration, []time.Duration:
		return Duration, true
	case []any:
		if len(d) > 0 {
			return inferType(d[0])
		}
	}
	return ValueType{}, false
}

// asSequence normalizes a slice default to []any.
func asSequence(v any) ([]any, bool) {
	switch d := v.(type) {
	case []any:
		out := make([]any, len(d))
		for i, e := range d {
			out[i] = normalizeScalar(e)
		}
		return out, true
	case []string:
		return toAny(d), true
	case []int:
		return toAny(d), true
	case []int64:
		out := make([]any, len(d))
		for i, e := range d {
			out[i] = int(e)
		}
		return out, true
	case []float64:
		return toAny(d), true
	case []bool:
		return toAny(d), true
	case []time.Duration:
		return toAny(d), true
	}
	return nil, false
}

func normalizeScalar(v any) any {
	if i, ok := v.(int64); ok {
		return int(i)
	}
	return v
}

func toAny[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}

func formatValue(v any) string {
	if seq, ok := v.([]any); ok {
		parts := make([]string, len(seq))
		for i, e := range seq {
			parts[i] = formatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
