package wire

import (
	"context"
	"log/slog"
	"strings"

	"github.com/wagiedev/mplayer-sdk-go/internal/broadcast"
	"github.com/wagiedev/mplayer-sdk-go/internal/errors"
	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
)

// getterMarker identifies commands that expect a correlated answer line.
const getterMarker = "get_"

// noValueSentinels are answer payloads that denote the absence of a value.
var noValueSentinels = map[string]bool{
	"(null)":               true,
	"PROPERTY_UNAVAILABLE": true,
	"PROPERTY_UNKNOWN":     true,
}

// Transport is the minimal write surface the channel needs. It is satisfied
// by subprocess.Process and by test fakes.
type Transport interface {
	Alive() bool
	WriteLine(line string) error
}

// Channel formats and transmits command lines over a transport.
//
// Getter commands additionally perform a synchronous request/response
// exchange against the stdout broadcaster under exclusive access, so that
// concurrent getters are serialized and each reads its own answer.
type Channel struct {
	log    *slog.Logger
	trans  Transport
	stdout *broadcast.Broadcaster
	defPfx Prefix
}

// NewChannel creates a command channel with the given default prefix.
// The stdout broadcaster may be nil when answers are not expected at all.
func NewChannel(log *slog.Logger, trans Transport, stdout *broadcast.Broadcaster, defaultPrefix Prefix) *Channel {
	return &Channel{
		log:    log.With("component", "wire"),
		trans:  trans,
		stdout: stdout,
		defPfx: defaultPrefix,
	}
}

// DefaultPrefix returns the channel's configured default prefix.
func (c *Channel) DefaultPrefix() Prefix {
	return c.defPfx
}

// Send transmits one command.
//
// The call is a silent no-op when the process is not alive or name is empty:
// call sites racing with process exit should not have to handle an error for
// a command that has become meaningless.
//
// Absent (nil) optional arguments are dropped. If argTypes is non-empty, each
// remaining argument is validated against the corresponding expected type;
// the first mismatch fails with a ValidationError naming the 1-based
// position. A zero prefix falls back to the channel default.
//
// For getter commands Send returns the answer payload and ok=true, or
// ok=false when the answer denotes no value. An ANS_ERROR answer returns an
// AnswerError. The context is consulted between answer lines only; a child
// that stops producing output blocks the calling goroutine.
func (c *Channel) Send(
	ctx context.Context,
	name string,
	args []any,
	argTypes []schema.Type,
	prefix Prefix,
) (string, bool, error) {
	if name == "" || !c.trans.Alive() {
		return "", false, nil
	}

	if prefix == PrefixNone {
		prefix = c.defPfx
	}

	// Drop absent optional arguments (trailing-optional semantics).
	kept := make([]any, 0, len(args))

	for _, a := range args {
		if a != nil {
			kept = append(kept, a)
		}
	}

	for i, a := range kept {
		if i >= len(argTypes) {
			break
		}

		if !argTypes[i].Matches(a) {
			return "", false, &errors.ValidationError{
				Expected: argTypes[i].String(),
				Position: i + 1,
			}
		}
	}

	line := formatLine(prefix, name, kept)

	if !strings.HasPrefix(name, getterMarker) {
		c.log.Debug("Sending command", "line", line)

		return "", false, c.trans.WriteLine(line)
	}

	if c.stdout == nil || !c.stdout.Attached() {
		// No answer stream: the exchange cannot happen, so the getter is
		// not transmitted at all.
		return "", false, nil
	}

	return c.exchange(ctx, line, kept)
}

// exchange performs the synchronous getter exchange: claim the stream, write
// the command, read until the correlated answer arrives.
func (c *Channel) exchange(ctx context.Context, line string, args []any) (string, bool, error) {
	key := "ANS_"
	if len(args) > 0 {
		key += FormatArg(args[0])
	}

	excl := c.stdout.Exclusive()
	defer excl.Release()

	c.log.Debug("Sending query", "line", line, "answer_key", key)

	if err := c.trans.WriteLine(line); err != nil {
		return "", false, err
	}

	var answer string

	for {
		if err := ctx.Err(); err != nil {
			return "", false, err
		}

		res, err := excl.ReadLine()
		if err != nil {
			return "", false, err
		}

		if strings.HasPrefix(res, key) {
			answer = res

			break
		}

		if strings.HasPrefix(res, "ANS_ERROR") {
			c.log.Debug("Query answered with error", "line", res)

			return "", false, &errors.AnswerError{Message: payload(res)}
		}
	}

	ans := payload(answer)
	if noValueSentinels[ans] {
		return "", false, nil
	}

	return ans, true, nil
}

// payload extracts the value after the first '=' and strips surrounding
// quote characters.
func payload(line string) string {
	_, value, _ := strings.Cut(line, "=")

	return strings.Trim(value, `'"`)
}
