// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package clip

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classifying aborts with errors.Is.
var (
	// ErrUnrecognizedToken is returned when a token matches neither a
	// subcommand nor a parameter of the command being scanned.
	ErrUnrecognizedToken = errors.New("unrecognized token")

	// ErrTooFewTokens is returned when a fixed-arity parameter needs more
	// tokens than remain.
	ErrTooFewTokens = errors.New("not enough arguments")

	// ErrInvalidType is returned when a raw token cannot be coerced.
	ErrInvalidType = errors.New("invalid type")

	// ErrMissingParameter is returned when a required parameter was not given.
	ErrMissingParameter = errors.New("missing parameter")

	// ErrNoMain is returned when an Application is used before a main
	// command was assigned.
	ErrNoMain = errors.New("no main command assigned")

	// ErrDefinition classifies programmer mistakes in a command tree.
	ErrDefinition = errors.New("invalid definition")
)

// ExitError is the abort signal shared by parsing, invocation and callbacks.
// A zero Status means a successful early exit (help, version); any other
// status is a failure. Message, if set, is echoed by Application.Run.
type ExitError struct {
	Status  int
	Message string
	Err     error // classification and cause, may be nil
}

func (e *ExitError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("clip exiting with status %d", e.Status)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit returns an abort with the given status and optional message. Handlers
// and parameter callbacks return it to stop the run early.
func Exit(status int, message string) error {
	return &ExitError{Status: status, Message: message}
}

// ExitStatus maps err to a process exit status.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Status
	}
	return 1
}

// asExit converts an arbitrary callback error into an abort.
func asExit(err error) error {
	if err == nil {
		return nil
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return err
	}
	return &ExitError{
		Status:  1,
		Message: fmt.Sprintf("Error: %s.", strings.TrimSuffix(err.Error(), ".")),
		Err:     err,
	}
}

func unrecognizedToken(token, suggestion string) *ExitError {
	msg := fmt.Sprintf("Error: Unrecognized token %q.", token)
	if suggestion != "" {
		msg += fmt.Sprintf(" Did you mean %q?", suggestion)
	}
	return &ExitError{Status: 1, Message: msg, Err: ErrUnrecognizedToken}
}

func tooFewTokens(name string, want, got int) *ExitError {
	return &ExitError{
		Status:  1,
		Message: fmt.Sprintf("Error: Not enough arguments for %q.", name),
		Err:     fmt.Errorf("%w: %q wants %d, got %d", ErrTooFewTokens, name, want, got),
	}
}

func invalidType(name, typeName string, cause error) *ExitError {
	return &ExitError{
		Status:  1,
		Message: fmt.Sprintf("Error: Invalid type given to %q, expected %s.", name, typeName),
		Err:     fmt.Errorf("%w: %w", ErrInvalidType, cause),
	}
}

func invalidChoice(token string, choices []string, cause error) *ExitError {
	return &ExitError{
		Status:  1,
		Message: fmt.Sprintf("Error: %q is not a valid choice (choose from %s).", token, strings.Join(choices, ", ")),
		Err:     fmt.Errorf("%w: %w", ErrInvalidType, cause),
	}
}

func missingParameter(name string) *ExitError {
	return &ExitError{
		Status:  1,
		Message: fmt.Sprintf("Error: Missing parameter %q.", name),
		Err:     ErrMissingParameter,
	}
}

// DefinitionError reports a malformed command tree. It is raised with panic
// at definition time, never returned from a parse.
type DefinitionError struct {
	Msg string
}

func (e *DefinitionError) Error() string {
	return "clip: " + e.Msg
}

func (e *DefinitionError) Is(target error) bool {
	return target == ErrDefinition
}

func definitionf(format string, a ...any) {
	panic(&DefinitionError{Msg: fmt.Sprintf(format, a...)})
}
