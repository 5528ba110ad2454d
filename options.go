package mplayersdk

import (
	"log/slog"

	"github.com/wagiedev/mplayer-sdk-go/internal/cli"
)

// PlayerOptions holds the configuration for a player instance.
// Use the With* functional options to populate it.
type PlayerOptions struct {
	// Logger receives debug, info, warn, and error messages during
	// operations. If nil, logging is disabled.
	Logger *slog.Logger

	// Path is an explicit path to the mplayer executable. If empty, the
	// executable is searched in PATH and common install locations.
	Path string

	// Args are extra arguments passed after the protocol-enabling flags.
	Args []string

	// ArgString is a shell-style argument string, split with shell quoting
	// rules and appended after Args.
	ArgString string

	// DefaultPrefix is the command prefix used when a call does not
	// override it. Defaults to PausingKeepForce.
	DefaultPrefix Prefix

	// Schema injects a pre-built capability schema, skipping executable
	// introspection entirely.
	Schema *CapabilitySchema

	// Autospawn starts the process during New.
	Autospawn bool
}

// Option configures PlayerOptions using the functional options pattern.
type Option func(*PlayerOptions)

// applyOptions applies functional options over the defaults.
func applyOptions(opts []Option) *PlayerOptions {
	options := &PlayerOptions{DefaultPrefix: PausingKeepForce}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *PlayerOptions) {
		o.Logger = logger
	}
}

// WithPath sets the explicit path to the mplayer executable.
// If not set, the executable is searched in PATH.
func WithPath(path string) Option {
	return func(o *PlayerOptions) {
		o.Path = path
	}
}

// WithArgs sets extra mplayer arguments as an explicit ordered list.
func WithArgs(args ...string) Option {
	return func(o *PlayerOptions) {
		o.Args = append(o.Args, args...)
	}
}

// WithArgValues sets extra mplayer arguments from arbitrary values, each
// rendered to text.
func WithArgValues(vals ...any) Option {
	return func(o *PlayerOptions) {
		o.Args = append(o.Args, cli.CoerceArgs(vals)...)
	}
}

// WithArgString sets extra mplayer arguments as a single shell-style string,
// split using shell quoting rules.
func WithArgString(s string) Option {
	return func(o *PlayerOptions) {
		o.ArgString = s
	}
}

// WithPrefix sets the default command prefix for the player.
func WithPrefix(prefix Prefix) Option {
	return func(o *PlayerOptions) {
		o.DefaultPrefix = prefix
	}
}

// WithSchema injects a pre-built capability schema, skipping introspection.
func WithSchema(s *CapabilitySchema) Option {
	return func(o *PlayerOptions) {
		o.Schema = s
	}
}

// WithAutospawn starts the mplayer process during New.
func WithAutospawn() Option {
	return func(o *PlayerOptions) {
		o.Autospawn = true
	}
}
