// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// embed returns an Application writing into buffers, with colour off.
func embed(opts ...Option) (*Application, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	opts = append([]Option{WithOutput(&out), WithErrorOutput(&errOut), WithColor(false)}, opts...)
	return New(opts...), &out, &errOut
}

// lines splits buffered output into lines, dropping the final newline.
func lines(b *bytes.Buffer) []string {
	s := strings.TrimSuffix(b.String(), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func nop(*Context, *Args) error { return nil }

func checkRecover(t *testing.T, name, wantPanic string) {
	t.Helper()
	r := recover()
	err, ok := r.(error)
	if !ok || !errors.Is(err, ErrDefinition) || err.Error() != wantPanic {
		t.Errorf("%s: panic = %v; wantPanic %v", name, r, wantPanic)
	}
}

func wantExit(t *testing.T, err error, status int, message string) {
	t.Helper()
	var ee *ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if ee.Status != status || ee.Message != message {
		t.Errorf("exit = (%d, %q), want (%d, %q)", ee.Status, ee.Message, status, message)
	}
}
