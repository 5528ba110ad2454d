// Package cli locates the mplayer executable and builds the argument list
// that puts it into slave mode.
//
// Discovery checks an explicit path first, then $PATH, then a small set of
// common installation directories. The argument builder always prepends the
// protocol-enabling flags (slave, idle, quiet, no default key bindings, no
// config file) so that all control happens through the line protocol.
package cli
