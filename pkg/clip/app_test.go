// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/clip/pkg/broadcast"
	"golang.org/x/sync/errgroup"
)

func TestRunResetsBetweenRuns(t *testing.T) {
	app, out, _ := embed()
	f := app.Main("f", nil, nil)
	f.Subcommand("b", HandlerFunc(func(ctx *Context, args *Args) error {
		ctx.Echo(strings.Join(args.Strings("letters"), " "))
		return nil
	}), []*Parameter{Arg("letters", Nargs(Unbounded))})

	for _, line := range []string{"b a n a n a", "b o o p"} {
		if err := app.RunString(line); err != nil {
			t.Fatalf("RunString(%q): %v", line, err)
		}
	}
	if diff := cmp.Diff([]string{"a n a n a", "o o p"}, lines(out)); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestResetAfterAbort(t *testing.T) {
	app, out, errOut := embed()
	app.Main("f", HandlerFunc(func(ctx *Context, args *Args) error {
		ctx.Echo(args.Value("stuff"))
		return nil
	}), []*Parameter{Opt("-s --stuff", Nargs(2), Type(Int))})

	// The first run fails after -s was consumed; nothing may leak into the
	// second one.
	if err := app.RunString("-s 1 2 extra"); ExitStatus(err) != 1 {
		t.Fatalf("first run = %v, want status 1", err)
	}
	if err := app.RunString(""); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff([]string{"<nil>"}, lines(out)); diff != "" {
		t.Errorf("out mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Error: Unrecognized token "extra".`}, lines(errOut)); diff != "" {
		t.Errorf("err mismatch (-want +got):\n%s", diff)
	}
}

func TestRunAbortsEcho(t *testing.T) {
	tests := []struct {
		name    string
		handler HandlerFunc
		status  int
		out     []string
		err     []string
	}{
		{
			name:    "ok",
			handler: func(ctx *Context, _ *Args) error { ctx.Echo("hi"); return nil },
			out:     []string{"hi"},
		},
		{
			name:    "exit zero",
			handler: func(*Context, *Args) error { return Exit(0, "done") },
			out:     []string{"done"},
		},
		{
			name:    "exit nonzero",
			handler: func(*Context, *Args) error { return Exit(3, "nope") },
			status:  3,
			err:     []string{"nope"},
		},
		{
			name:    "plain error",
			handler: func(*Context, *Args) error { return errors.New("boom") },
			status:  1,
			err:     []string{"Error: boom."},
		},
		{
			name:    "silent exit",
			handler: func(*Context, *Args) error { return Exit(2, "") },
			status:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, out, errOut := embed()
			app.Main("f", tt.handler, nil)
			err := app.Run([]string{})
			if got := ExitStatus(err); got != tt.status {
				t.Errorf("ExitStatus = %d, want %d", got, tt.status)
			}
			if diff := cmp.Diff(tt.out, lines(out)); diff != "" {
				t.Errorf("out mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.err, lines(errOut)); diff != "" {
				t.Errorf("err mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNoMain(t *testing.T) {
	app, _, errOut := embed()
	if _, err := app.Parse(nil); !errors.Is(err, ErrNoMain) {
		t.Errorf("Parse err = %v, want ErrNoMain", err)
	}
	if err := app.Invoke(NewResult(nil)); !errors.Is(err, ErrNoMain) {
		t.Errorf("Invoke err = %v, want ErrNoMain", err)
	}
	if err := app.Reset(); !errors.Is(err, ErrNoMain) {
		t.Errorf("Reset err = %v, want ErrNoMain", err)
	}
	err := app.Run([]string{})
	wantExit(t, err, 1, "Error: No main command assigned.")
	if diff := cmp.Diff([]string{"Error: No main command assigned."}, lines(errOut)); diff != "" {
		t.Errorf("err mismatch (-want +got):\n%s", diff)
	}
}

func TestParameterCallbacks(t *testing.T) {
	var seen []string
	app, _, _ := embed()
	app.Main("f", HandlerFunc(func(*Context, *Args) error {
		seen = append(seen, "handler")
		return nil
	}), []*Parameter{
		Flag("-v", Callback(func(ctx *Context, v any) error {
			seen = append(seen, fmt.Sprintf("%s -v=%v", ctx.Command.Name(), v))
			return nil
		})),
		Opt("--stop", Callback(func(*Context, any) error {
			return errors.New("stopped")
		})),
	})

	if err := app.Run([]string{"-v"}); err != nil {
		t.Fatal(err)
	}
	err := app.Run([]string{"-v", "--stop", "now"})
	wantExit(t, err, 1, "Error: stopped.")
	want := []string{"f -v=true", "handler", "f -v=true"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults(t *testing.T) {
	calls := 0
	app, out, errOut := embed()
	app.Main("f", HandlerFunc(func(ctx *Context, args *Args) error {
		ctx.Echof("Hello %s! %d %v", args.String("name"), sum(args.Ints("numbers")), args.Value("token"))
		return nil
	}), []*Parameter{
		Opt("--name", Default("Joe")),
		Arg("numbers", Nargs(Unbounded), Default([]int{1, 2, 3})),
		Opt("--token", DefaultFunc(func(*Context) (any, error) {
			calls++
			return fmt.Sprintf("t%d", calls), nil
		})),
	})

	for _, line := range []string{"", "--name Dave 2 4 6 8 10", "--token x", "wuuutttt"} {
		app.RunString(line)
	}
	want := []string{"Hello Joe! 6 t1", "Hello Dave! 30 t2", "Hello Joe! 6 x"}
	if diff := cmp.Diff(want, lines(out)); diff != "" {
		t.Errorf("out mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{`Error: Invalid type given to "numbers", expected int.`}, lines(errOut)); diff != "" {
		t.Errorf("err mismatch (-want +got):\n%s", diff)
	}
	if calls != 2 {
		t.Errorf("default func ran %d times, want 2", calls)
	}
}

func sum(ns []int) int {
	total := 0
	for _, n := range ns {
		total += n
	}
	return total
}

func TestDefaultsAreNotShared(t *testing.T) {
	app, _, _ := embed()
	app.Main("f", HandlerFunc(func(_ *Context, args *Args) error {
		seq := args.Value("xs").([]any)
		seq[0] = "mutated"
		return nil
	}), []*Parameter{Opt("--xs", Nargs(2), Default([]string{"a", "b"}))})

	for range 2 {
		if err := app.Run([]string{}); err != nil {
			t.Fatal(err)
		}
	}
	p, _ := app.Command().Params().Lookup("xs")
	if diff := cmp.Diff([]any{"a", "b"}, p.DefaultValue()); diff != "" {
		t.Errorf("default mutated (-want +got):\n%s", diff)
	}
}

func TestInvokeWithoutParse(t *testing.T) {
	var got []string
	app, _, _ := embed()
	record := func(ctx *Context, args *Args) error {
		got = append(got, fmt.Sprintf("%s %v", ctx.Command.Name(), args.Map()))
		return nil
	}
	f := app.Main("f", HandlerFunc(record), []*Parameter{Arg("donut")})
	f.Subcommand("b", HandlerFunc(record), []*Parameter{Flag("-t")})

	parsed, err := app.Parse([]string{"x", "b", "-t"})
	if err != nil {
		t.Fatal(err)
	}
	if err := app.Invoke(parsed); err != nil {
		t.Fatal(err)
	}
	app.Reset()
	direct := NewResult(map[string]any{"donut": "x", "b": map[string]any{"t": true}})
	if err := app.Invoke(direct); err != nil {
		t.Fatal(err)
	}
	want := []string{"f map[donut:x]", "b map[t:true]", "f map[donut:x]", "b map[t:true]"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestHelp(t *testing.T) {
	app, out, _ := embed()
	f := app.Main("f", HandlerFunc(nop), []*Parameter{
		Arg("yo"),
		Opt("-s --something", Type(Int), Nargs(3), Default([]int{1, 2, 3}), Help("Does stuff")),
		Flag("-n --nothing"),
		Flag("--secret", Hidden()),
	}, Description("Description"), Epilogue("So long and thanks for all the fish!"))
	f.Subcommand("x", HandlerFunc(nop), nil, Description("Oh lookee! A subcommand!"))

	err := app.Run([]string{"-h"})
	wantExit(t, err, 0, "")
	want := `f: Description

Usage: f [arguments] [options] [subcommand]

Arguments:
  yo [text]  

Options:
  -h, --help                Show this help message and exit
  -s, --something [int...]  Does stuff (default: [1, 2, 3])
  -n, --nothing             

Subcommands:
  x  Oh lookee! A subcommand!

So long and thanks for all the fish!
`
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("help mismatch (-want +got):\n%s", diff)
	}
}

func TestBasicHelp(t *testing.T) {
	app, out, _ := embed()
	app.Main("f", HandlerFunc(nop), nil)
	app.RunString("--help")
	want := "f\n\nUsage: f [options]\n\nOptions:\n  -h, --help  Show this help message and exit\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("help mismatch (-want +got):\n%s", diff)
	}
}

func TestHelpSkipsHandlers(t *testing.T) {
	called := false
	app, _, _ := embed()
	app.Main("f", HandlerFunc(func(*Context, *Args) error {
		called = true
		return nil
	}), []*Parameter{Arg("needed", Required())})
	if err := app.Run([]string{"-h"}); ExitStatus(err) != 0 {
		t.Fatalf("Run = %v", err)
	}
	if called {
		t.Error("handler ran after help")
	}
}

func TestLogf(t *testing.T) {
	var logs []string
	app, _, _ := embed(WithLogf(func(format string, a ...any) {
		logs = append(logs, fmt.Sprintf(format, a...))
	}))
	kitchenSink(app)
	if err := app.RunString("-a x b yum"); err != nil {
		t.Fatal(err)
	}
	joined := strings.Join(logs, "\n")
	for _, want := range []string{"f: apple = true", "f: delegating to b", "b: args = [yum]", "f b: invoking"} {
		if !strings.Contains(joined, want) {
			t.Errorf("logs missing %q:\n%s", want, joined)
		}
	}
}

func TestRunStringQuoting(t *testing.T) {
	app, out, errOut := embed()
	app.Main("f", HandlerFunc(func(ctx *Context, args *Args) error {
		ctx.Echo(args.String("msg"))
		return nil
	}), []*Parameter{Arg("msg")})

	if err := app.RunString(`"hello world"`); err != nil {
		t.Fatal(err)
	}
	err := app.RunString(`"unterminated`)
	if ExitStatus(err) != 1 {
		t.Errorf("unterminated quote status = %d, want 1", ExitStatus(err))
	}
	if diff := cmp.Diff([]string{"hello world"}, lines(out)); diff != "" {
		t.Errorf("out mismatch (-want +got):\n%s", diff)
	}
	if errOut.Len() == 0 {
		t.Error("no error echoed for unterminated quote")
	}
}

func TestRegistryBroadcast(t *testing.T) {
	r := broadcast.New()
	var other bytes.Buffer
	r.Register("audit", &other)

	app, out, _ := embed(WithRegistry(r), WithName("shop"))
	app.Main("f", HandlerFunc(func(ctx *Context, _ *Args) error {
		return ctx.Broadcast("bought")
	}), nil)
	if err := app.Run([]string{}); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"audit", "shop"}, r.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
	if out.String() != "bought\n" || other.String() != "bought\n" {
		t.Errorf("out = %q, other = %q", out.String(), other.String())
	}
}

func TestIndependentAppsConcurrently(t *testing.T) {
	var g errgroup.Group
	for i := range 8 {
		g.Go(func() error {
			app, out, _ := embed()
			kitchenSink(app)
			f := app.Command()
			f.Subcommand("n", HandlerFunc(func(ctx *Context, args *Args) error {
				ctx.Echo(args.Int("i"))
				return nil
			}), []*Parameter{Arg("i", Type(Int))})
			for range 50 {
				if err := app.RunContext(context.Background(), []string{"n", fmt.Sprint(i)}); err != nil {
					return err
				}
			}
			if want := strings.Repeat(fmt.Sprintf("%d\n", i), 50); out.String() != want {
				return fmt.Errorf("app %d wrote %q", i, out.String())
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
