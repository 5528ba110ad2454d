package mplayersdk

import (
	"io"

	"github.com/wagiedev/mplayer-sdk-go/internal/broadcast"
	"github.com/wagiedev/mplayer-sdk-go/internal/schema"
	"github.com/wagiedev/mplayer-sdk-go/internal/wire"
)

// Prefix is a modifier token prepended to a command line, controlling how
// the command interacts with the pause state. A default prefix is configured
// per player and may be overridden per call with CallWith.
type Prefix = wire.Prefix

// Command prefixes understood by the slave protocol.
const (
	// PrefixNone selects the player's configured default prefix.
	PrefixNone = wire.PrefixNone

	// Pausing pauses playback before running the command.
	Pausing = wire.Pausing

	// PausingToggle toggles the pause state around the command.
	PausingToggle = wire.PausingToggle

	// PausingKeep keeps the pause state if the player was paused.
	PausingKeep = wire.PausingKeep

	// PausingKeepForce keeps the pause state unconditionally. This is the
	// default prefix for new players.
	PausingKeepForce = wire.PausingKeepForce
)

// Step requests a relative adjustment of a settable property instead of an
// absolute assignment. Value is the step magnitude and Direction its sign;
// the zero Step means "step by the property's default".
//
// Passing a Step to Set emits the step variant of the wire command and
// bypasses bounds validation entirely.
type Step struct {
	Value     float64
	Direction int
}

// Subscriber is a callback receiving one unsolicited output line.
type Subscriber = broadcast.Subscriber

// Broadcaster fans unsolicited output lines out to subscribers. See the
// Stdout and Stderr methods on Player.
type Broadcaster = broadcast.Broadcaster

// CapabilitySchema is the property/command surface discovered from an
// executable. It can be injected into a player with WithSchema, which is how
// tests run against a fixed capability set without a real mplayer binary.
type CapabilitySchema = schema.Schema

// PropertySpec describes one discovered property.
type PropertySpec = schema.PropertySpec

// CommandSpec describes one discovered command.
type CommandSpec = schema.CommandSpec

// LoadCapabilitySchema reads and validates a capability schema document
// previously produced by CapabilitySchema.MarshalJSON, or written by hand as
// a test fixture.
func LoadCapabilitySchema(r io.Reader) (*CapabilitySchema, error) {
	return schema.Load(r)
}
