// Package cmd is a transport-agnostic command core. A command has a name,
// a description and Run(ctx, invocation); the chat adapter decides how text
// becomes an invocation and how errors become replies.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing required argument")
	ErrBadArgument     = errors.New("invalid argument")
)

// Invocation carries the arguments after the command name and an opaque
// payload set by the adapter (the chat context).
type Invocation struct {
	Name string
	Args []string
	Data any
}

// Command is identity plus execution.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// UsageProvider is implemented by commands that take arguments.
type UsageProvider interface {
	Usage() string
}

// Rest joins every argument back into one string, or fails with
// ErrMissingArgument when there are none.
func (inv *Invocation) Rest() (string, error) {
	rest := strings.TrimSpace(strings.Join(inv.Args, " "))
	if rest == "" {
		return "", ErrMissingArgument
	}
	return rest, nil
}

// Int parses argument i as an integer.
func (inv *Invocation) Int(i int) (int, error) {
	if i >= len(inv.Args) {
		return 0, ErrMissingArgument
	}
	n, err := strconv.Atoi(inv.Args[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", ErrBadArgument, inv.Args[i])
	}
	return n, nil
}

// Parse splits a prefixed message into a lower-cased command name and its
// arguments. ok is false when content does not start with prefix or names
// no command.
func Parse(prefix, content string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}
