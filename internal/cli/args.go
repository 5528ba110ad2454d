package cli

import (
	"fmt"

	"github.com/google/shlex"
)

// protocolArgs are always passed first so that the process is controllable
// exclusively through the line protocol: no UI key bindings, no user config.
var protocolArgs = []string{
	"-slave",
	"-idle",
	"-quiet",
	"-input", "nodefault-bindings",
	"-noconfig", "all",
}

// BuildArgs returns the full argument list for a slave-mode invocation:
// the protocol-enabling flags followed by the caller-supplied arguments.
func BuildArgs(extra []string) []string {
	args := make([]string, 0, len(protocolArgs)+len(extra))
	args = append(args, protocolArgs...)
	args = append(args, extra...)

	return args
}

// SplitArgs splits a shell-style argument string using shell quoting rules.
func SplitArgs(s string) ([]string, error) {
	args, err := shlex.Split(s)
	if err != nil {
		return nil, fmt.Errorf("split arguments: %w", err)
	}

	return args, nil
}

// CoerceArgs renders an explicit ordered argument list to text.
func CoerceArgs(vals []any) []string {
	args := make([]string, 0, len(vals))
	for _, v := range vals {
		args = append(args, fmt.Sprint(v))
	}

	return args
}
