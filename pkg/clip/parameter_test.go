// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParameterNames(t *testing.T) {
	tests := []struct {
		name string
		p    *Parameter
		want string
	}{
		{"positional", Arg("donut"), "donut"},
		{"short", Opt("-t"), "t"},
		{"longest wins", Opt("-q --quantity"), "quantity"},
		{"dash to underscore", Flag("--long-thing"), "long_thing"},
		{"lower case", Opt("--File-Name, -f"), "file_name"},
		{"explicit", Opt("--file", Name("filename")), "filename"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParameterDefinitionErrors(t *testing.T) {
	tests := []struct {
		name      string
		build     func()
		wantPanic string
	}{
		{"arg with two decls", func() { Arg("a b") },
			"clip: arguments take exactly 1 parameter declaration, got 2"},
		{"arg with dash", func() { Arg("-a") },
			`clip: argument declaration "-a" must not start with a dash`},
		{"opt without decls", func() { Opt(" ") },
			"clip: options take at least 1 parameter declaration"},
		{"opt without dash", func() { Opt("x") },
			`clip: option declaration "x" must start with a dash`},
		{"opt repeated decl", func() { Opt("-a, -a") },
			`clip: duplicate option declaration "-a"`},
		{"scalar default with nargs", func() { Opt("-n", Nargs(2), Default("x")) },
			`clip: default of "n" must be a sequence when nargs is 2`},
		{"bad nargs", func() { Opt("-n", Nargs(-2)) },
			`clip: invalid nargs -2 for "n"`},
		{"empty choices", func() { Choice() },
			"clip: choice type needs at least one choice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer checkRecover(t, tt.name, tt.wantPanic)
			tt.build()
		})
	}
}

func TestFlagIsForced(t *testing.T) {
	p := Flag("-f --force", Nargs(3), Default(true))
	if p.Nargs() != 0 {
		t.Errorf("Nargs() = %d, want 0", p.Nargs())
	}
	if p.DefaultValue() != false {
		t.Errorf("DefaultValue() = %v, want false", p.DefaultValue())
	}
	if !p.IsFlag() || p.IsPositional() {
		t.Errorf("IsFlag() = %v, IsPositional() = %v", p.IsFlag(), p.IsPositional())
	}
}

func TestTypeInference(t *testing.T) {
	tests := []struct {
		name string
		p    *Parameter
		want string
	}{
		{"none", Opt("--s"), "text"},
		{"string", Opt("--s", Default("x")), "text"},
		{"int", Opt("--n", Default(3)), "int"},
		{"int64", Opt("--n", Default(int64(3))), "int"},
		{"float seq", Arg("f", Nargs(Unbounded), Default([]float64{1.5})), "float"},
		{"any seq", Arg("f", Nargs(2), Default([]any{true, false})), "bool"},
		{"duration", Opt("--d", Default(time.Second)), "duration"},
		{"explicit wins", Opt("--n", Default(3), Type(String)), "text"},
		{"choices", Opt("--algo", Choices("quick", "bubble")), "quick|bubble"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.TypeName(); got != tt.want {
				t.Errorf("TypeName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSequenceDefaultsNormalized(t *testing.T) {
	p := Arg("n", Nargs(Unbounded), Default([]int64{1, 2}))
	if diff := cmp.Diff([]any{1, 2}, p.DefaultValue()); diff != "" {
		t.Errorf("DefaultValue() mismatch (-want +got):\n%s", diff)
	}
}

func TestChoicesDefaultToFirst(t *testing.T) {
	if got := Opt("--algo", Choices("quick", "bubble")).DefaultValue(); got != "quick" {
		t.Errorf("DefaultValue() = %v, want quick", got)
	}
	if got := Opt("--algo", Default("bubble"), Choices("quick", "bubble")).DefaultValue(); got != "bubble" {
		t.Errorf("DefaultValue() = %v, want bubble", got)
	}
}

func TestChoicesWithSequenceArity(t *testing.T) {
	algo := Opt("--algo", Nargs(Unbounded), Choices("a", "b"))
	if diff := cmp.Diff([]any{"a"}, algo.DefaultValue()); diff != "" {
		t.Errorf("default mismatch (-want +got):\n%s", diff)
	}

	app, _, _ := embed()
	app.Main("f", HandlerFunc(nop), []*Parameter{algo})
	for _, tt := range []struct {
		tokens []string
		want   []any
	}{
		{[]string{"--algo", "a", "b"}, []any{"a", "b"}},
		{[]string{}, []any{"a"}},
	} {
		res, err := app.Parse(tt.tokens)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.tokens, err)
		}
		got, _ := res.Get("algo")
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.tokens, diff)
		}
		app.Reset()
	}

	if _, err := app.Parse([]string{"--algo", "a", "c"}); !errors.Is(err, ErrInvalidType) {
		t.Errorf("err = %v, want an invalid type error", err)
	}
	app.Reset()
}

func TestVersionFlag(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		app, out, _ := embed()
		app.Main("prog", HandlerFunc(nop), []*Parameter{VersionFlag("prog", "v1.2.3")})
		err := app.Run([]string{"--version"})
		wantExit(t, err, 0, "prog 1.2.3")
		if diff := cmp.Diff([]string{"prog 1.2.3"}, lines(out)); diff != "" {
			t.Errorf("output mismatch (-want +got):\n%s", diff)
		}
	})
	t.Run("invalid", func(t *testing.T) {
		defer func() {
			err, _ := recover().(error)
			if !errors.Is(err, ErrDefinition) {
				t.Errorf("panic = %v, want a definition error", err)
			}
		}()
		VersionFlag("prog", "not a version")
	})
}

func TestTypeByName(t *testing.T) {
	for _, name := range []string{"", "str", "int", "float", "bool", "duration"} {
		if _, ok := TypeByName(name); !ok {
			t.Errorf("TypeByName(%q) not found", name)
		}
	}
	if _, ok := TypeByName("complex"); ok {
		t.Error("TypeByName(complex) found")
	}
}
